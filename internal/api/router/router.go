package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classhub/backend/config"
	"classhub/backend/internal/api/handler"
	"classhub/backend/internal/api/middleware"
	"classhub/backend/pkg/jwt"
	"classhub/backend/pkg/metrics"
	"classhub/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录注册走限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 邀请码预检（无需认证：落地页在登录前展示班级信息）
		v1.GET("/invites/:code", middleware.RateLimit(rdb, 30, time.Minute), h.Invite.PreviewInvite)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth("admin", "coordinator"), h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser) // admin 或本人（Service 层鉴权）
				users.PUT("/:id/role", middleware.RoleAuth("admin"), h.User.AssignRole)
				users.DELETE("/:id", middleware.RoleAuth("admin"), h.User.DeleteUser)
			}

			// 班级模块
			classes := authorized.Group("/classes")
			{
				classes.POST("", middleware.RoleAuth("admin", "coordinator", "teacher"), h.Class.CreateClass)
				classes.GET("", h.Class.ListMyClasses)
				classes.GET("/:id", h.Class.GetClass)
				classes.PUT("/:id", h.Class.UpdateClass)
				classes.POST("/:id/archive", h.Class.ArchiveClass)
				classes.GET("/:id/members", h.Class.ListMembers)

				// 邀请码（创建/列表归属班级；归属权在 Service 层校验）
				classes.POST("/:id/invites", h.Invite.CreateInvite)
				classes.GET("/:id/invites", h.Invite.ListInvites)

				// 资料与测验按班级组织
				classes.POST("/:id/materials", h.Material.CreateMaterial)
				classes.GET("/:id/materials", h.Material.ListMaterials)
				classes.POST("/:id/exams", h.Exam.CreateExam)
				classes.GET("/:id/exams", h.Exam.ListExams)

				classes.GET("/:id/export/roster", h.Export.ExportRoster)
			}

			// 邀请码兑换
			authorized.POST("/invites/:code/redeem", h.Invite.RedeemInvite)

			// 资料模块
			materials := authorized.Group("/materials")
			{
				materials.GET("/:id", h.Material.GetMaterial)
				materials.PUT("/:id", h.Material.UpdateMaterial)
				materials.DELETE("/:id", h.Material.DeleteMaterial)
			}

			// 测验模块
			exams := authorized.Group("/exams")
			{
				exams.GET("/:id", h.Exam.GetExam)
				exams.POST("/:id/publish", h.Exam.PublishExam)
				exams.POST("/:id/close", h.Exam.CloseExam)
				exams.POST("/:id/attempts", h.Exam.SubmitAttempt)
				exams.GET("/:id/attempts/me", h.Exam.GetMyAttempt)
				exams.GET("/:id/attempts", h.Exam.ListAttempts)
				exams.GET("/:id/pending-answers", h.Exam.ListPendingAnswers)
				exams.GET("/:id/grading-progress", h.Exam.GetGradingProgress)
				exams.GET("/:id/export/results", h.Export.ExportExamResults)
			}

			// 批改
			authorized.PUT("/answers/:id/grade", h.Exam.GradeAnswer)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
