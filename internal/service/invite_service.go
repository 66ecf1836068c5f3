package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classhub/backend/config"
	"classhub/backend/internal/dto"
	"classhub/backend/internal/model"
	"classhub/backend/internal/repository"
	"classhub/backend/pkg/invitecode"
)

// ── 邀请码模块业务错误 ──

var (
	ErrInviteNotFound      = errors.New("邀请码不存在")
	ErrInviteExpired       = errors.New("邀请码已过期")
	ErrInviteExhausted     = errors.New("邀请码使用次数已用尽")
	ErrAlreadyEnrolled     = errors.New("已是该班级成员")
	ErrGenerationExhausted = errors.New("邀请码生成冲突次数过多，请稍后重试")
)

// InviteService 邀请码业务接口
type InviteService interface {
	Create(ctx context.Context, classID string, req *dto.CreateInviteRequest, callerID, callerRole string) (*dto.InviteResponse, error)
	ListByClass(ctx context.Context, classID string, callerID, callerRole string) ([]dto.InviteResponse, error)
	// Preview 预检邀请码有效性，无任何副作用
	Preview(ctx context.Context, code string) (*dto.InvitePreviewResponse, error)
	// Redeem 兑换邀请码：校验、原子扣减、写入成员记录，整体在一个数据库事务内
	Redeem(ctx context.Context, code string, userID string) (*dto.RedeemResponse, error)
}

type inviteService struct {
	cfg    *config.InviteConfig
	gen    *invitecode.Generator
	repo   *repository.Repository
	logger *zap.Logger
}

// NewInviteService 创建 InviteService 实例
func NewInviteService(cfg *config.InviteConfig, repo *repository.Repository, logger *zap.Logger) InviteService {
	return &inviteService{
		cfg:    cfg,
		gen:    invitecode.NewGenerator(cfg.CodeLength),
		repo:   repo,
		logger: logger,
	}
}

// ────────────────────── Create ──────────────────────

// Create 签发邀请码
// 唯一性以存储层唯一索引为准：插入冲突时重新抽取，超过重试上限返回 ErrGenerationExhausted
func (s *inviteService) Create(ctx context.Context, classID string, req *dto.CreateInviteRequest, callerID, callerRole string) (*dto.InviteResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("id", classID), zap.Error(err))
		return nil, err
	}
	if !canManageClass(class, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	if class.IsArchived {
		return nil, ErrClassArchived
	}

	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}

	var expiresAt *time.Time
	if req.ExpiresInMinutes > 0 {
		t := time.Now().Add(time.Duration(req.ExpiresInMinutes) * time.Minute)
		expiresAt = &t
	}

	maxRetries := s.cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}

	var invite *model.InviteCode
	for attempt := 0; attempt < maxRetries; attempt++ {
		code, err := s.gen.Generate()
		if err != nil {
			s.logger.Error("生成邀请码随机串失败", zap.Error(err))
			return nil, err
		}

		invite = &model.InviteCode{
			Code:      code,
			ClassID:   classID,
			Role:      role,
			ExpiresAt: expiresAt,
			MaxUses:   req.MaxUses,
			UsedCount: 0,
		}
		invite.CreatedBy = &callerID
		invite.UpdatedBy = &callerID

		err = s.repo.InviteCode.Create(ctx, invite)
		if err == nil {
			return s.toInviteResponse(invite), nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Error("写入邀请码失败", zap.Error(err))
			return nil, err
		}
		// 码值碰撞，重新抽取
		s.logger.Warn("邀请码碰撞，重试", zap.Int("attempt", attempt+1))
	}

	return nil, ErrGenerationExhausted
}

// ────────────────────── ListByClass ──────────────────────

func (s *inviteService) ListByClass(ctx context.Context, classID string, callerID, callerRole string) ([]dto.InviteResponse, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if !canManageClass(class, callerID, callerRole) {
		return nil, ErrNoPermission
	}

	invites, err := s.repo.InviteCode.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询邀请码列表失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.InviteResponse, 0, len(invites))
	for i := range invites {
		result = append(result, *s.toInviteResponse(&invites[i]))
	}

	return result, nil
}

// ────────────────────── Preview ──────────────────────

func (s *inviteService) Preview(ctx context.Context, code string) (*dto.InvitePreviewResponse, error) {
	invite, err := s.repo.InviteCode.GetByCode(ctx, invitecode.Normalize(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		s.logger.Error("查询邀请码失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.InvitePreviewResponse{
		Valid:   true,
		ClassID: invite.ClassID,
		Role:    invite.Role,
	}
	if invite.Class != nil {
		resp.ClassName = invite.Class.Name
	}
	if invite.ExpiresAt != nil {
		resp.ExpiresAt = invite.ExpiresAt.Format(time.RFC3339)
	}

	switch {
	case invite.IsExpired(time.Now()):
		resp.Valid = false
		resp.Reason = "expired"
	case invite.IsExhausted():
		resp.Valid = false
		resp.Reason = "exhausted"
	}

	return resp, nil
}

// ────────────────────── Redeem ──────────────────────

// Redeem 兑换流程（每一步失败都不产生副作用）：
//  1. 查码，不存在则 ErrInviteNotFound
//  2. 过期检查
//  3. 重复加入检查（不消耗使用次数）
//  4. 条件自增 used_count，零行命中表示名额已被并发兑换占完
//  5. 写入成员记录，唯一约束兜底重复加入
func (s *inviteService) Redeem(ctx context.Context, code string, userID string) (*dto.RedeemResponse, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	normalized := invitecode.Normalize(code)

	// 1. 查码
	invite, err := txRepo.InviteCode.GetByCode(ctx, normalized)
	if err != nil {
		rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		s.logger.Error("查询邀请码失败", zap.Error(err))
		return nil, err
	}

	// 2. 过期检查
	if invite.IsExpired(time.Now()) {
		rollback()
		return nil, ErrInviteExpired
	}

	// 3. 预检使用次数（快速失败；真正的并发兜底在第 4 步）
	if invite.IsExhausted() {
		rollback()
		return nil, ErrInviteExhausted
	}

	// 归档班级不再接受兑换
	if invite.Class != nil && invite.Class.IsArchived {
		rollback()
		return nil, ErrClassArchived
	}

	// 4. 重复加入检查：在扣减之前执行，重复兑换不消耗名额
	if _, err := txRepo.Enrollment.GetByUserAndClass(ctx, userID, invite.ClassID); err == nil {
		rollback()
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		rollback()
		s.logger.Error("查询成员记录失败", zap.Error(err))
		return nil, err
	}

	// 5. 原子扣减：并发竞争最后一个名额时只有一方成功
	consumed, err := txRepo.InviteCode.ConsumeUse(ctx, normalized)
	if err != nil {
		rollback()
		s.logger.Error("扣减邀请码使用次数失败", zap.Error(err))
		return nil, err
	}
	if !consumed {
		rollback()
		return nil, ErrInviteExhausted
	}

	// 6. 写入成员记录
	enrollment := &model.Enrollment{
		UserID:          userID,
		ClassID:         invite.ClassID,
		Role:            invite.Role,
		EnrolledViaCode: &normalized,
	}
	enrollment.CreatedBy = &userID
	enrollment.UpdatedBy = &userID

	if err := txRepo.Enrollment.Create(ctx, enrollment); err != nil {
		rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		s.logger.Error("写入成员记录失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	resp := &dto.RedeemResponse{
		ClassID: invite.ClassID,
		Role:    invite.Role,
	}
	if invite.Class != nil {
		resp.ClassName = invite.Class.Name
	}

	return resp, nil
}

// ── 内部辅助方法 ──

func (s *inviteService) toInviteResponse(invite *model.InviteCode) *dto.InviteResponse {
	resp := &dto.InviteResponse{
		Code:          invite.Code,
		ClassID:       invite.ClassID,
		Role:          invite.Role,
		MaxUses:       invite.MaxUses,
		UsedCount:     invite.UsedCount,
		RemainingUses: invite.RemainingUses(),
		CreatedAt:     invite.CreatedAt.Format(time.RFC3339),
	}
	if invite.ExpiresAt != nil {
		resp.ExpiresAt = invite.ExpiresAt.Format(time.RFC3339)
	}
	return resp
}
