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

// ── 资料模块业务错误 ──

var ErrMaterialNotFound = errors.New("资料不存在")

// MaterialService 班级资料业务接口
type MaterialService interface {
	Create(ctx context.Context, classID string, req *dto.CreateMaterialRequest, callerID, callerRole string) (*dto.MaterialResponse, error)
	GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.MaterialResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateMaterialRequest, callerID, callerRole string) (*dto.MaterialResponse, error)
	Delete(ctx context.Context, id string, callerID, callerRole string) error
	ListByClass(ctx context.Context, classID string, callerID, callerRole string) ([]dto.MaterialResponse, error)
}

type materialService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMaterialService 创建 MaterialService 实例
func NewMaterialService(repo *repository.Repository, logger *zap.Logger) MaterialService {
	return &materialService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *materialService) Create(ctx context.Context, classID string, req *dto.CreateMaterialRequest, callerID, callerRole string) (*dto.MaterialResponse, error) {
	class, err := s.getClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !canManageClass(class, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	if class.IsArchived {
		return nil, ErrClassArchived
	}

	material := &model.Material{
		ClassID:     classID,
		Title:       req.Title,
		Description: req.Description,
		FileURL:     req.FileURL,
		UploadedBy:  callerID,
	}
	material.CreatedBy = &callerID
	material.UpdatedBy = &callerID

	if err := s.repo.Material.Create(ctx, material); err != nil {
		s.logger.Error("创建资料失败", zap.Error(err))
		return nil, err
	}

	return toMaterialResponse(material), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *materialService) GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.MaterialResponse, error) {
	material, err := s.getMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRead(ctx, material.ClassID, callerID, callerRole); err != nil {
		return nil, err
	}
	return toMaterialResponse(material), nil
}

// ────────────────────── Update ──────────────────────

func (s *materialService) Update(ctx context.Context, id string, req *dto.UpdateMaterialRequest, callerID, callerRole string) (*dto.MaterialResponse, error) {
	material, err := s.getMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	class, err := s.getClass(ctx, material.ClassID)
	if err != nil {
		return nil, err
	}
	if !canManageClass(class, callerID, callerRole) {
		return nil, ErrNoPermission
	}

	if req.Title != nil {
		material.Title = *req.Title
	}
	if req.Description != nil {
		material.Description = *req.Description
	}
	if req.FileURL != nil {
		material.FileURL = *req.FileURL
	}
	material.UpdatedBy = &callerID

	if err := s.repo.Material.Update(ctx, material); err != nil {
		s.logger.Error("更新资料失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toMaterialResponse(material), nil
}

// ────────────────────── Delete ──────────────────────

func (s *materialService) Delete(ctx context.Context, id string, callerID, callerRole string) error {
	material, err := s.getMaterial(ctx, id)
	if err != nil {
		return err
	}
	class, err := s.getClass(ctx, material.ClassID)
	if err != nil {
		return err
	}
	if !canManageClass(class, callerID, callerRole) {
		return ErrNoPermission
	}

	if err := s.repo.Material.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除资料失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── ListByClass ──────────────────────

func (s *materialService) ListByClass(ctx context.Context, classID string, callerID, callerRole string) ([]dto.MaterialResponse, error) {
	if err := s.checkRead(ctx, classID, callerID, callerRole); err != nil {
		return nil, err
	}

	materials, err := s.repo.Material.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询资料列表失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.MaterialResponse, 0, len(materials))
	for i := range materials {
		result = append(result, *toMaterialResponse(&materials[i]))
	}

	return result, nil
}

// ── 内部辅助方法 ──

// checkRead 读权限：班级管理者或班级成员
func (s *materialService) checkRead(ctx context.Context, classID, callerID, callerRole string) error {
	class, err := s.getClass(ctx, classID)
	if err != nil {
		return err
	}
	if canManageClass(class, callerID, callerRole) {
		return nil
	}
	if _, err := s.repo.Enrollment.GetByUserAndClass(ctx, callerID, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoPermission
		}
		return err
	}
	return nil
}

func (s *materialService) getClass(ctx context.Context, id string) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

func (s *materialService) getMaterial(ctx context.Context, id string) (*model.Material, error) {
	material, err := s.repo.Material.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		s.logger.Error("查询资料失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return material, nil
}

func toMaterialResponse(material *model.Material) *dto.MaterialResponse {
	return &dto.MaterialResponse{
		ID:          material.MaterialID,
		ClassID:     material.ClassID,
		Title:       material.Title,
		Description: material.Description,
		FileURL:     material.FileURL,
		UploadedBy:  material.UploadedBy,
		CreatedAt:   material.CreatedAt.Format(time.RFC3339),
	}
}
