package dto

// ── 资料模块 DTO ──

// CreateMaterialRequest 创建资料请求
type CreateMaterialRequest struct {
	Title       string `json:"title"       binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	FileURL     string `json:"file_url"    binding:"required,url"`
}

// UpdateMaterialRequest 更新资料请求
type UpdateMaterialRequest struct {
	Title       *string `json:"title"       binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	FileURL     *string `json:"file_url"    binding:"omitempty,url"`
}

// MaterialResponse 资料信息响应
type MaterialResponse struct {
	ID          string `json:"id"`
	ClassID     string `json:"class_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
	UploadedBy  string `json:"uploaded_by"`
	CreatedAt   string `json:"created_at"`
}
