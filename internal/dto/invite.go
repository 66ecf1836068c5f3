package dto

// ── 邀请码模块 DTO ──

// CreateInviteRequest 签发邀请码请求
// expires_in_minutes=0 表示永不过期；max_uses=0 表示不限次数
type CreateInviteRequest struct {
	ExpiresInMinutes int    `json:"expires_in_minutes" binding:"omitempty,min=0,max=527040"`
	MaxUses          int    `json:"max_uses"           binding:"omitempty,min=0,max=10000"`
	Role             string `json:"role"               binding:"omitempty,oneof=student teacher"`
}

// InviteResponse 邀请码响应
type InviteResponse struct {
	Code          string `json:"code"`
	ClassID       string `json:"class_id"`
	Role          string `json:"role"`
	ExpiresAt     string `json:"expires_at,omitempty"` // 空表示永不过期
	MaxUses       int    `json:"max_uses"`
	UsedCount     int    `json:"used_count"`
	RemainingUses int    `json:"remaining_uses"` // -1 表示不限
	CreatedAt     string `json:"created_at"`
}

// InvitePreviewResponse 邀请码预检响应（无副作用）
type InvitePreviewResponse struct {
	Valid     bool   `json:"valid"`
	Reason    string `json:"reason,omitempty"` // expired | exhausted
	ClassID   string `json:"class_id,omitempty"`
	ClassName string `json:"class_name,omitempty"`
	Role      string `json:"role,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RedeemResponse 兑换成功响应
type RedeemResponse struct {
	ClassID   string `json:"class_id"`
	ClassName string `json:"class_name,omitempty"`
	Role      string `json:"role"`
}
