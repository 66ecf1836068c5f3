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

func setupTestClassService() (ClassService, *mockClassRepo, *mockEnrollmentRepo) {
	classRepo := newMockClassRepo()
	enrollmentRepo := newMockEnrollmentRepo()
	repo := &repository.Repository{
		User:       newMockUserRepo(),
		Class:      classRepo,
		InviteCode: newMockInviteCodeRepo(),
		Enrollment: enrollmentRepo,
		Material:   newMockMaterialRepo(),
		Exam:       newMockExamRepo(),
	}
	svc := NewClassService(repo, zap.NewNop())
	return svc, classRepo, enrollmentRepo
}

// ── Create 测试 ──

func TestClassService_Create_Success(t *testing.T) {
	svc, _, _ := setupTestClassService()

	req := &dto.CreateClassRequest{
		Name:    "高三 2 班",
		Subject: "数学",
	}
	result, err := svc.Create(context.Background(), req, "teacher-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.OwnerID != "teacher-001" {
		t.Errorf("期望OwnerID=teacher-001，实际=%s", result.OwnerID)
	}
	if result.IsArchived {
		t.Error("新建班级不应处于归档状态")
	}
}

// ── GetByID 测试 ──

func TestClassService_GetByID_AsMember(t *testing.T) {
	svc, classRepo, enrollmentRepo := setupTestClassService()
	class := seedClass(classRepo, "teacher-001")
	_ = enrollmentRepo.Create(context.Background(), &model.Enrollment{
		UserID:  "student-001",
		ClassID: class.ClassID,
		Role:    model.RoleStudent,
	})

	result, err := svc.GetByID(context.Background(), class.ClassID, "student-001", model.RoleStudent)
	if err != nil {
		t.Fatalf("班级成员应可查看班级: %v", err)
	}
	if result.Name != "高三 2 班" {
		t.Errorf("期望Name=高三 2 班，实际=%s", result.Name)
	}
}

func TestClassService_GetByID_Outsider(t *testing.T) {
	svc, classRepo, _ := setupTestClassService()
	class := seedClass(classRepo, "teacher-001")

	_, err := svc.GetByID(context.Background(), class.ClassID, "student-999", model.RoleStudent)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

func TestClassService_GetByID_Coordinator(t *testing.T) {
	svc, classRepo, _ := setupTestClassService()
	class := seedClass(classRepo, "teacher-001")

	if _, err := svc.GetByID(context.Background(), class.ClassID, "coord-001", model.RoleCoordinator); err != nil {
		t.Errorf("协调员应可查看任意班级: %v", err)
	}
}

// ── Archive 测试 ──

func TestClassService_Archive_Success(t *testing.T) {
	svc, classRepo, _ := setupTestClassService()
	class := seedClass(classRepo, "teacher-001")

	if err := svc.Archive(context.Background(), class.ClassID, "teacher-001", model.RoleTeacher); err != nil {
		t.Fatalf("Archive 应成功: %v", err)
	}

	stored, _ := classRepo.GetByID(context.Background(), class.ClassID)
	if !stored.IsArchived {
		t.Error("归档后 IsArchived 应为 true")
	}
}

func TestClassService_Archive_Twice(t *testing.T) {
	svc, classRepo, _ := setupTestClassService()
	class := seedClass(classRepo, "teacher-001")

	_ = svc.Archive(context.Background(), class.ClassID, "teacher-001", model.RoleTeacher)
	err := svc.Archive(context.Background(), class.ClassID, "teacher-001", model.RoleTeacher)
	if !errors.Is(err, ErrClassArchived) {
		t.Errorf("重复归档期望 ErrClassArchived，实际: %v", err)
	}
}

func TestClassService_Archive_NotOwner(t *testing.T) {
	svc, classRepo, _ := setupTestClassService()
	class := seedClass(classRepo, "teacher-001")

	err := svc.Archive(context.Background(), class.ClassID, "teacher-002", model.RoleTeacher)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

// ── ListMine 测试 ──

func TestClassService_ListMine_OwnedAndEnrolled(t *testing.T) {
	svc, classRepo, enrollmentRepo := setupTestClassService()

	owned := seedClass(classRepo, "teacher-001")
	other := &model.Class{Name: "高一 1 班", Subject: "语文", OwnerID: "teacher-002"}
	_ = classRepo.Create(context.Background(), other)
	_ = enrollmentRepo.Create(context.Background(), &model.Enrollment{
		UserID:  "teacher-001",
		ClassID: other.ClassID,
		Role:    model.RoleTeacher,
		Class:   other,
	})

	result, err := svc.ListMine(context.Background(), "teacher-001")
	if err != nil {
		t.Fatalf("ListMine 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("期望 2 个班级，实际=%d", len(result))
	}
	ids := map[string]bool{result[0].ID: true, result[1].ID: true}
	if !ids[owned.ClassID] || !ids[other.ClassID] {
		t.Error("结果应同时包含自建班级与已加入班级")
	}
}

// ── ListMembers 测试 ──

func TestClassService_ListMembers_Success(t *testing.T) {
	svc, classRepo, enrollmentRepo := setupTestClassService()
	class := seedClass(classRepo, "teacher-001")
	for _, sid := range []string{"student-001", "student-002"} {
		_ = enrollmentRepo.Create(context.Background(), &model.Enrollment{
			UserID:  sid,
			ClassID: class.ClassID,
			Role:    model.RoleStudent,
		})
	}

	result, err := svc.ListMembers(context.Background(), class.ClassID, "teacher-001", model.RoleTeacher)
	if err != nil {
		t.Fatalf("ListMembers 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("期望 2 个成员，实际=%d", len(result))
	}
}

func TestClassService_ListMembers_StudentDenied(t *testing.T) {
	svc, classRepo, enrollmentRepo := setupTestClassService()
	class := seedClass(classRepo, "teacher-001")
	_ = enrollmentRepo.Create(context.Background(), &model.Enrollment{
		UserID:  "student-001",
		ClassID: class.ClassID,
		Role:    model.RoleStudent,
	})

	_, err := svc.ListMembers(context.Background(), class.ClassID, "student-001", model.RoleStudent)
	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}
