package dto

// ── 用户模块 DTO ──

// PaginationRequest 通用分页查询参数
type PaginationRequest struct {
	Page     int `form:"page,default=1"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// Offset 计算分页偏移
func (p *PaginationRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=student teacher coordinator admin"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=2,max=50"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student teacher coordinator admin"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	RegistrationNo string `json:"registration_no"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	CreatedAt      string `json:"created_at,omitempty"`
}
