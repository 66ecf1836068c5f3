package repository

import (
	"context"

	"gorm.io/gorm"

	"classhub/backend/internal/model"
	pkgerrors "classhub/backend/pkg/errors"
)

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) error
	GetByID(ctx context.Context, id string) (*model.Class, error)
	Update(ctx context.Context, class *model.Class) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Class, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Class, error)
}

// classRepo ClassRepository 的 GORM 实现
type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepo) GetByID(ctx context.Context, id string) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// Update 带乐观锁的更新：version 不匹配时返回 ErrOptimisticLock
func (r *classRepo) Update(ctx context.Context, class *model.Class) error {
	oldVersion := class.Version
	result := r.db.WithContext(ctx).
		Model(class).
		Where("class_id = ? AND version = ?", class.ClassID, oldVersion).
		Updates(map[string]interface{}{
			"name":        class.Name,
			"subject":     class.Subject,
			"description": class.Description,
			"is_archived": class.IsArchived,
			"updated_by":  class.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	class.Version = oldVersion + 1
	return nil
}

func (r *classRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Class, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Where("class_id IN ?", ids).
		Order("created_at DESC").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}
