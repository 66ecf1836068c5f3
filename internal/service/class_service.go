package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classhub/backend/internal/dto"
	"classhub/backend/internal/model"
	"classhub/backend/internal/repository"
)

// ── 班级模块业务错误 ──

var (
	ErrClassNotFound = errors.New("班级不存在")
	ErrClassArchived = errors.New("班级已归档")
)

// ClassService 班级业务接口
type ClassService interface {
	Create(ctx context.Context, req *dto.CreateClassRequest, callerID string) (*dto.ClassResponse, error)
	GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.ClassResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateClassRequest, callerID, callerRole string) (*dto.ClassResponse, error)
	Archive(ctx context.Context, id string, callerID, callerRole string) error
	ListMine(ctx context.Context, callerID string) ([]dto.ClassResponse, error)
	ListMembers(ctx context.Context, id string, callerID, callerRole string) ([]dto.ClassMemberResponse, error)
}

type classService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(repo *repository.Repository, logger *zap.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

// canManageClass 班级管理权限：班主任本人、协调员或管理员
func canManageClass(class *model.Class, callerID, callerRole string) bool {
	if class.OwnerID == callerID {
		return true
	}
	return callerRole == model.RoleCoordinator || callerRole == model.RoleAdmin
}

// ────────────────────── Create ──────────────────────

func (s *classService) Create(ctx context.Context, req *dto.CreateClassRequest, callerID string) (*dto.ClassResponse, error) {
	class := &model.Class{
		Name:        req.Name,
		Subject:     req.Subject,
		Description: req.Description,
		OwnerID:     callerID,
	}
	class.CreatedBy = &callerID
	class.UpdatedBy = &callerID

	if err := s.repo.Class.Create(ctx, class); err != nil {
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}

	return s.toClassResponse(class), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *classService) GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.ClassResponse, error) {
	class, err := s.getClass(ctx, id)
	if err != nil {
		return nil, err
	}

	// 管理者或班级成员可见
	if !canManageClass(class, callerID, callerRole) {
		if _, err := s.repo.Enrollment.GetByUserAndClass(ctx, callerID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoPermission
			}
			return nil, err
		}
	}

	return s.toClassResponse(class), nil
}

// ────────────────────── Update ──────────────────────

func (s *classService) Update(ctx context.Context, id string, req *dto.UpdateClassRequest, callerID, callerRole string) (*dto.ClassResponse, error) {
	class, err := s.getClass(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageClass(class, callerID, callerRole) {
		return nil, ErrNoPermission
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Subject != nil {
		class.Subject = *req.Subject
	}
	if req.Description != nil {
		class.Description = *req.Description
	}
	class.UpdatedBy = &callerID

	if err := s.repo.Class.Update(ctx, class); err != nil {
		s.logger.Error("更新班级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toClassResponse(class), nil
}

// ────────────────────── Archive ──────────────────────

// Archive 归档班级：保留数据，阻止新的邀请与兑换
func (s *classService) Archive(ctx context.Context, id string, callerID, callerRole string) error {
	class, err := s.getClass(ctx, id)
	if err != nil {
		return err
	}
	if !canManageClass(class, callerID, callerRole) {
		return ErrNoPermission
	}
	if class.IsArchived {
		return ErrClassArchived
	}

	class.IsArchived = true
	class.UpdatedBy = &callerID

	if err := s.repo.Class.Update(ctx, class); err != nil {
		s.logger.Error("归档班级失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── ListMine ──────────────────────

// ListMine 列出与当前用户相关的班级：自己创建的 + 已加入的
func (s *classService) ListMine(ctx context.Context, callerID string) ([]dto.ClassResponse, error) {
	owned, err := s.repo.Class.ListByOwner(ctx, callerID)
	if err != nil {
		s.logger.Error("查询所属班级失败", zap.Error(err))
		return nil, err
	}

	enrollments, err := s.repo.Enrollment.ListByUser(ctx, callerID)
	if err != nil {
		s.logger.Error("查询已加入班级失败", zap.Error(err))
		return nil, err
	}

	seen := make(map[string]bool, len(owned))
	result := make([]dto.ClassResponse, 0, len(owned)+len(enrollments))
	for i := range owned {
		seen[owned[i].ClassID] = true
		result = append(result, *s.toClassResponse(&owned[i]))
	}
	for i := range enrollments {
		if enrollments[i].Class == nil || seen[enrollments[i].ClassID] {
			continue
		}
		seen[enrollments[i].ClassID] = true
		result = append(result, *s.toClassResponse(enrollments[i].Class))
	}

	return result, nil
}

// ────────────────────── ListMembers ──────────────────────

func (s *classService) ListMembers(ctx context.Context, id string, callerID, callerRole string) ([]dto.ClassMemberResponse, error) {
	class, err := s.getClass(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManageClass(class, callerID, callerRole) {
		return nil, ErrNoPermission
	}

	enrollments, err := s.repo.Enrollment.ListByClass(ctx, id)
	if err != nil {
		s.logger.Error("查询班级成员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ClassMemberResponse, 0, len(enrollments))
	for i := range enrollments {
		e := &enrollments[i]
		member := dto.ClassMemberResponse{
			UserID:     e.UserID,
			Role:       e.Role,
			EnrolledAt: e.CreatedAt.Format(time.RFC3339),
		}
		if e.User != nil {
			member.Name = e.User.Name
			member.RegistrationNo = e.User.RegistrationNo
			member.Email = e.User.Email
		}
		result = append(result, member)
	}

	return result, nil
}

// ── 内部辅助方法 ──

func (s *classService) getClass(ctx context.Context, id string) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return class, nil
}

func (s *classService) toClassResponse(class *model.Class) *dto.ClassResponse {
	resp := &dto.ClassResponse{
		ID:          class.ClassID,
		Name:        class.Name,
		Subject:     class.Subject,
		Description: class.Description,
		OwnerID:     class.OwnerID,
		IsArchived:  class.IsArchived,
		CreatedAt:   class.CreatedAt.Format(time.RFC3339),
	}
	if class.Owner != nil {
		resp.OwnerName = class.Owner.Name
	}
	return resp
}
