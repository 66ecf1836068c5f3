package repository

import (
	"context"

	"gorm.io/gorm"

	"classhub/backend/internal/model"
)

// EnrollmentRepository 班级成员数据访问接口
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	GetByUserAndClass(ctx context.Context, userID, classID string) (*model.Enrollment, error)
	ListByClass(ctx context.Context, classID string) ([]model.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]model.Enrollment, error)
	CountByClass(ctx context.Context, classID string) (int64, error)
}

// enrollmentRepo EnrollmentRepository 的 GORM 实现
type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

// Create 插入成员记录；(user_id, class_id) 唯一冲突时返回 gorm.ErrDuplicatedKey
func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepo) GetByUserAndClass(ctx context.Context, userID, classID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND class_id = ?", userID, classID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) ListByClass(ctx context.Context, classID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("class_id = ?", classID).
		Order("created_at ASC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, userID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Class").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepo) CountByClass(ctx context.Context, classID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("class_id = ?", classID).
		Count(&total).Error
	return total, err
}
