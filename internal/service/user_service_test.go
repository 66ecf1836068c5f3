package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"classhub/backend/internal/dto"
	"classhub/backend/internal/model"
	"classhub/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestUserService() (UserService, *mockUserRepo) {
	userRepo := newMockUserRepo()
	repo := &repository.Repository{
		User:       userRepo,
		Class:      newMockClassRepo(),
		InviteCode: newMockInviteCodeRepo(),
		Enrollment: newMockEnrollmentRepo(),
		Material:   newMockMaterialRepo(),
		Exam:       newMockExamRepo(),
	}
	svc := NewUserService(repo, zap.NewNop())
	return svc, userRepo
}

// ── AssignRole 测试 ──

func TestUserService_AssignRole_Success(t *testing.T) {
	svc, userRepo := setupTestUserService()
	user := seedUser(userRepo, "user@example.com", "2024001", "password123")

	err := svc.AssignRole(context.Background(), user.UserID, &dto.AssignRoleRequest{
		Role: model.RoleTeacher,
	}, "admin-001")
	if err != nil {
		t.Fatalf("AssignRole 应成功: %v", err)
	}

	stored, _ := userRepo.GetByID(context.Background(), user.UserID)
	if stored.Role != model.RoleTeacher {
		t.Errorf("期望Role=teacher，实际=%s", stored.Role)
	}
}

func TestUserService_AssignRole_Self(t *testing.T) {
	svc, userRepo := setupTestUserService()
	user := seedUser(userRepo, "admin@example.com", "2024001", "password123")

	err := svc.AssignRole(context.Background(), user.UserID, &dto.AssignRoleRequest{
		Role: model.RoleStudent,
	}, user.UserID)
	if !errors.Is(err, ErrUserSelfRoleChange) {
		t.Errorf("期望 ErrUserSelfRoleChange，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestUserService_Update_SelfAllowed(t *testing.T) {
	svc, userRepo := setupTestUserService()
	user := seedUser(userRepo, "user@example.com", "2024001", "password123")

	newName := "新名字"
	result, err := svc.Update(context.Background(), user.UserID, &dto.UpdateUserRequest{
		Name: &newName,
	}, user.UserID, model.RoleStudent)
	if err != nil {
		t.Fatalf("本人更新应成功: %v", err)
	}
	if result.Name != "新名字" {
		t.Errorf("期望Name=新名字，实际=%s", result.Name)
	}
}

func TestUserService_Update_OtherDenied(t *testing.T) {
	svc, userRepo := setupTestUserService()
	user := seedUser(userRepo, "user@example.com", "2024001", "password123")

	newName := "越权改名"
	_, err := svc.Update(context.Background(), user.UserID, &dto.UpdateUserRequest{
		Name: &newName,
	}, "someone-else", model.RoleStudent)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestUserService_Delete_Self(t *testing.T) {
	svc, userRepo := setupTestUserService()
	user := seedUser(userRepo, "admin@example.com", "2024001", "password123")

	err := svc.Delete(context.Background(), user.UserID, user.UserID)
	if !errors.Is(err, ErrUserSelfDelete) {
		t.Errorf("期望 ErrUserSelfDelete，实际: %v", err)
	}
}

// ── List 测试 ──

func TestUserService_List_FilterByRole(t *testing.T) {
	svc, userRepo := setupTestUserService()
	seedUser(userRepo, "s1@example.com", "2024001", "password123")
	seedUser(userRepo, "s2@example.com", "2024002", "password123")
	teacher := seedUser(userRepo, "t1@example.com", "2024003", "password123")
	teacher.Role = model.RoleTeacher

	req := &dto.UserListRequest{Role: model.RoleTeacher}
	req.Page = 1
	req.PageSize = 10

	result, total, err := svc.List(context.Background(), req)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(result) != 1 {
		t.Errorf("期望 1 名教师，实际 total=%d len=%d", total, len(result))
	}
}
