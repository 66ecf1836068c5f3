package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classhub/backend/internal/dto"
	"classhub/backend/internal/service"
	pkgerrors "classhub/backend/pkg/errors"
	"classhub/backend/pkg/response"
)

// ExamHandler 模拟考试模块 HTTP 处理器
type ExamHandler struct {
	examSvc service.ExamService
}

// NewExamHandler 创建 ExamHandler
func NewExamHandler(examSvc service.ExamService) *ExamHandler {
	return &ExamHandler{examSvc: examSvc}
}

// CreateExam 创建考试（含题目）
// POST /api/v1/classes/:id/exams
func (h *ExamHandler) CreateExam(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.examSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID, callerRole)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClassNotFound),
			errors.Is(err, service.ErrClassArchived),
			errors.Is(err, service.ErrNoPermission):
			h.handleExamError(c, err)
		default:
			// 题目结构校验错误直接回传给前端
			response.BadRequest(c, 16001, err.Error())
		}
		return
	}

	response.Created(c, result)
}

// GetExam 查询考试详情
// GET /api/v1/exams/:id
func (h *ExamHandler) GetExam(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.examSvc.GetByID(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, result)
}

// ListExams 班级考试列表
// GET /api/v1/classes/:id/exams
func (h *ExamHandler) ListExams(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.examSvc.ListByClass(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, result)
}

// PublishExam 发布考试
// POST /api/v1/exams/:id/publish
func (h *ExamHandler) PublishExam(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	if err := h.examSvc.Publish(c.Request.Context(), c.Param("id"), callerID, callerRole); err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, nil)
}

// CloseExam 关闭考试
// POST /api/v1/exams/:id/close
func (h *ExamHandler) CloseExam(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	if err := h.examSvc.Close(c.Request.Context(), c.Param("id"), callerID, callerRole); err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, nil)
}

// SubmitAttempt 提交作答
// POST /api/v1/exams/:id/attempts
func (h *ExamHandler) SubmitAttempt(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.examSvc.SubmitAttempt(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound),
			errors.Is(err, service.ErrExamNotPublished),
			errors.Is(err, service.ErrAttemptExists),
			errors.Is(err, service.ErrNotEnrolled):
			h.handleExamError(c, err)
		default:
			response.BadRequest(c, 16001, err.Error())
		}
		return
	}

	response.Created(c, result)
}

// GetMyAttempt 查询自己的作答与成绩
// GET /api/v1/exams/:id/attempts/me
func (h *ExamHandler) GetMyAttempt(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.examSvc.GetMyAttempt(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, result)
}

// ListAttempts 考试作答列表（管理者）
// GET /api/v1/exams/:id/attempts
func (h *ExamHandler) ListAttempts(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.examSvc.ListAttempts(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, result)
}

// ListPendingAnswers 待批改队列（管理者）
// GET /api/v1/exams/:id/pending-answers
func (h *ExamHandler) ListPendingAnswers(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.examSvc.ListPendingAnswers(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, result)
}

// GradeAnswer 批改单题（管理者）
// PUT /api/v1/answers/:id/grade
func (h *ExamHandler) GradeAnswer(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	var req dto.GradeAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.examSvc.GradeAnswer(c.Request.Context(), c.Param("id"), &req, callerID, callerRole)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, result)
}

// GetGradingProgress 批改进度（管理者）
// GET /api/v1/exams/:id/grading-progress
func (h *ExamHandler) GetGradingProgress(c *gin.Context) {
	callerID, callerRole, ok := mustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.examSvc.GetProgress(c.Request.Context(), c.Param("id"), callerID, callerRole)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ExamHandler) handleExamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.NotFound(c, 16001, "考试不存在")
	case errors.Is(err, service.ErrExamNotDraft):
		response.Conflict(c, 16002, "只有草稿状态的考试可以发布")
	case errors.Is(err, service.ErrExamNotPublished):
		response.Conflict(c, 16003, "考试未发布")
	case errors.Is(err, service.ErrAttemptExists):
		response.Conflict(c, 16004, "该考试已提交过作答")
	case errors.Is(err, service.ErrAttemptNotFound):
		response.NotFound(c, 16005, "作答记录不存在")
	case errors.Is(err, service.ErrAnswerNotFound):
		response.NotFound(c, 16006, "答案不存在")
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 16007, "未加入该班级")
	case errors.Is(err, service.ErrPointsExceedMax):
		response.BadRequest(c, 16008, "给分不能超过题目满分")
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 14001, "班级不存在")
	case errors.Is(err, service.ErrClassArchived):
		response.Conflict(c, 14002, "班级已归档")
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "无权操作")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10004, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
