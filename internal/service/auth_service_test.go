package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"classhub/backend/config"
	"classhub/backend/internal/dto"
	"classhub/backend/internal/model"
	"classhub/backend/internal/repository"
	"classhub/backend/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *mockUserRepo) {
	userRepo := newMockUserRepo()
	repo := &repository.Repository{
		User:       userRepo,
		Class:      newMockClassRepo(),
		InviteCode: newMockInviteCodeRepo(),
		Enrollment: newMockEnrollmentRepo(),
		Material:   newMockMaterialRepo(),
		Exam:       newMockExamRepo(),
	}
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-1234567890",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := NewAuthService(cfg, repo, jwtMgr, nil, zap.NewNop())
	return svc, userRepo
}

func seedUser(userRepo *mockUserRepo, email, registrationNo, password string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	user := &model.User{
		Name:           "测试用户",
		RegistrationNo: registrationNo,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           model.RoleStudent,
	}
	_ = userRepo.Create(context.Background(), user)
	return user
}

// ── Register 测试 ──

func TestAuthService_Register_Success(t *testing.T) {
	svc, _ := setupTestAuthService()

	req := &dto.RegisterRequest{
		Name:           "张三",
		RegistrationNo: "2024001",
		Email:          "zhangsan@example.com",
		Password:       "password123",
	}

	result, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	if result.Role != model.RoleStudent {
		t.Errorf("新注册用户应为 student，实际=%s", result.Role)
	}
	if result.Email != "zhangsan@example.com" {
		t.Errorf("期望Email=zhangsan@example.com，实际=%s", result.Email)
	}
}

func TestAuthService_Register_EmailExists(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "taken@example.com", "2024001", "password123")

	req := &dto.RegisterRequest{
		Name:           "李四",
		RegistrationNo: "2024002",
		Email:          "taken@example.com",
		Password:       "password123",
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

func TestAuthService_Register_RegistrationNoExists(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "a@example.com", "2024001", "password123")

	req := &dto.RegisterRequest{
		Name:           "李四",
		RegistrationNo: "2024001",
		Email:          "b@example.com",
		Password:       "password123",
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrRegistrationExists) {
		t.Errorf("期望 ErrRegistrationExists，实际: %v", err)
	}
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "user@example.com", "2024001", "password123")

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("登录应返回 Token 对")
	}
	if result.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("期望ExpiresIn=900，实际=%d", result.ExpiresIn)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "user@example.com", "2024001", "password123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── RefreshToken 测试 ──

func TestAuthService_RefreshToken_Success(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "user@example.com", "2024001", "password123")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	result, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("换发应返回新的 AccessToken")
	}
}

func TestAuthService_RefreshToken_AccessTokenRejected(t *testing.T) {
	// 用 access token 走刷新接口应被拒绝
	svc, userRepo := setupTestAuthService()
	seedUser(userRepo, "user@example.com", "2024001", "password123")

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})

	_, err := svc.RefreshToken(context.Background(), login.AccessToken)
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("期望 ErrRefreshInvalid，实际: %v", err)
	}
}

func TestAuthService_RefreshToken_Garbage(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.RefreshToken(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("期望 ErrRefreshInvalid，实际: %v", err)
	}
}

// ── ChangePassword 测试 ──

func TestAuthService_ChangePassword_Success(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	user := seedUser(userRepo, "user@example.com", "2024001", "old-password")

	err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "old-password",
		NewPassword: "new-password",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}

	// 新密码可登录
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "user@example.com",
		Password: "new-password",
	}); err != nil {
		t.Errorf("改密后新密码应可登录: %v", err)
	}
}

func TestAuthService_ChangePassword_WrongOld(t *testing.T) {
	svc, userRepo := setupTestAuthService()
	user := seedUser(userRepo, "user@example.com", "2024001", "old-password")

	err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "new-password",
	})
	if !errors.Is(err, ErrOldPasswordWrong) {
		t.Errorf("期望 ErrOldPasswordWrong，实际: %v", err)
	}
}

// ── GetCurrentUser 测试 ──

func TestAuthService_GetCurrentUser_NotFound(t *testing.T) {
	svc, _ := setupTestAuthService()

	_, err := svc.GetCurrentUser(context.Background(), "no-such-user")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
