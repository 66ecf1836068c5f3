package repository

import (
	"context"

	"gorm.io/gorm"

	"classhub/backend/internal/model"
)

// MaterialRepository 班级资料数据访问接口
type MaterialRepository interface {
	Create(ctx context.Context, material *model.Material) error
	GetByID(ctx context.Context, id string) (*model.Material, error)
	Update(ctx context.Context, material *model.Material) error
	Delete(ctx context.Context, id string, deletedBy string) error
	ListByClass(ctx context.Context, classID string) ([]model.Material, error)
}

// materialRepo MaterialRepository 的 GORM 实现
type materialRepo struct {
	db *gorm.DB
}

// NewMaterialRepo 创建 MaterialRepository 实例
func NewMaterialRepo(db *gorm.DB) MaterialRepository {
	return &materialRepo{db: db}
}

func (r *materialRepo) Create(ctx context.Context, material *model.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *materialRepo) GetByID(ctx context.Context, id string) (*model.Material, error) {
	var material model.Material
	err := r.db.WithContext(ctx).
		Where("material_id = ?", id).
		First(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *materialRepo) Update(ctx context.Context, material *model.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

func (r *materialRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Material{}).
		Where("material_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"deleted_by": deletedBy,
		}).Error
}

func (r *materialRepo) ListByClass(ctx context.Context, classID string) ([]model.Material, error) {
	var materials []model.Material
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&materials).Error
	if err != nil {
		return nil, err
	}
	return materials, nil
}
