package repository

import (
	"context"

	"gorm.io/gorm"

	"classhub/backend/internal/model"
)

// InviteCodeRepository 邀请码数据访问接口
type InviteCodeRepository interface {
	Create(ctx context.Context, code *model.InviteCode) error
	GetByCode(ctx context.Context, code string) (*model.InviteCode, error)
	ListByClass(ctx context.Context, classID string) ([]model.InviteCode, error)
	// ConsumeUse 原子地消耗一次使用额度。
	// 单条条件 UPDATE 保证兑换按邀请码串行：两个并发兑换竞争最后一个名额时，
	// 数据库层面只有一条语句能命中 used_count < max_uses，落败方得到 false。
	// 多实例部署下同样成立，无需进程内锁。
	ConsumeUse(ctx context.Context, code string) (bool, error)
}

// inviteCodeRepo InviteCodeRepository 的 GORM 实现
type inviteCodeRepo struct {
	db *gorm.DB
}

// NewInviteCodeRepo 创建 InviteCodeRepository 实例
func NewInviteCodeRepo(db *gorm.DB) InviteCodeRepository {
	return &inviteCodeRepo{db: db}
}

func (r *inviteCodeRepo) Create(ctx context.Context, code *model.InviteCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

// GetByCode 根据邀请码字符串查询（仅返回未软删除的记录）
func (r *inviteCodeRepo) GetByCode(ctx context.Context, code string) (*model.InviteCode, error) {
	var invite model.InviteCode
	err := r.db.WithContext(ctx).
		Preload("Class").
		Where("code = ?", code).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteCodeRepo) ListByClass(ctx context.Context, classID string) ([]model.InviteCode, error) {
	var invites []model.InviteCode
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

// ConsumeUse 条件自增 used_count，返回是否成功占到名额
func (r *inviteCodeRepo) ConsumeUse(ctx context.Context, code string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.InviteCode{}).
		Where("code = ? AND deleted_at IS NULL AND (max_uses = 0 OR used_count < max_uses)", code).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
