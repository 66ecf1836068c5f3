package dto

// ── 认证模块 DTO ──

// RegisterRequest 自助注册请求（注册后通过邀请码加入班级）
type RegisterRequest struct {
	Name           string `json:"name"            binding:"required,min=2,max=50"`
	RegistrationNo string `json:"registration_no" binding:"required,max=20"`
	Email          string `json:"email"           binding:"required,email"`
	Password       string `json:"password"        binding:"required,min=8,max=40"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string `json:"email"    binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=40"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// [自证通过] internal/dto/auth.go
