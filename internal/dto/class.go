package dto

// ── 班级模块 DTO ──

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Subject     string `json:"subject"     binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateClassRequest 更新班级请求
type UpdateClassRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Subject     *string `json:"subject"     binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

// ClassResponse 班级信息响应
type ClassResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
	OwnerName   string `json:"owner_name,omitempty"`
	IsArchived  bool   `json:"is_archived"`
	CreatedAt   string `json:"created_at"`
}

// ClassMemberResponse 班级成员响应
type ClassMemberResponse struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	RegistrationNo string `json:"registration_no"`
	Email          string `json:"email"`
	Role           string `json:"role"` // 在该班级中的角色
	EnrolledAt     string `json:"enrolled_at"`
}
