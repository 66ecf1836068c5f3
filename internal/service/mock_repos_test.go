package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"classhub/backend/internal/model"
	"classhub/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[string]*model.User
	idCounter int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email || u.RegistrationNo == user.RegistrationNo {
			return gorm.ErrDuplicatedKey
		}
	}
	m.idCounter++
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", m.idCounter)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByRegistrationNo(_ context.Context, registrationNo string) (*model.User, error) {
	for _, u := range m.users {
		if u.RegistrationNo == registrationNo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if filters.Role != "" && u.Role != filters.Role {
			continue
		}
		if filters.Keyword != "" &&
			!strings.Contains(u.Name, filters.Keyword) &&
			!strings.Contains(u.Email, filters.Keyword) {
			continue
		}
		result = append(result, *u)
	}
	return result, int64(len(result)), nil
}

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes   map[string]*model.Class
	idCounter int
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*model.Class)}
}

func (m *mockClassRepo) Create(_ context.Context, class *model.Class) error {
	m.idCounter++
	if class.ClassID == "" {
		class.ClassID = fmt.Sprintf("class-%d", m.idCounter)
	}
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id string) (*model.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClassRepo) Update(_ context.Context, class *model.Class) error {
	if _, ok := m.classes[class.ClassID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.classes[class.ClassID] = class
	return nil
}

func (m *mockClassRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.classes {
		if c.OwnerID == ownerID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockClassRepo) ListByIDs(_ context.Context, ids []string) ([]model.Class, error) {
	var result []model.Class
	for _, id := range ids {
		if c, ok := m.classes[id]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

// ── Mock InviteCodeRepository ──

// mockInviteCodeRepo 用互斥锁模拟数据库的原子条件更新，
// 供并发兑换测试验证名额不会超卖
type mockInviteCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.InviteCode
}

func newMockInviteCodeRepo() *mockInviteCodeRepo {
	return &mockInviteCodeRepo{codes: make(map[string]*model.InviteCode)}
}

func (m *mockInviteCodeRepo) Create(_ context.Context, code *model.InviteCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[code.Code]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.codes[code.Code] = code
	return nil
}

func (m *mockInviteCodeRepo) GetByCode(_ context.Context, code string) (*model.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.codes[code]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteCodeRepo) ListByClass(_ context.Context, classID string) ([]model.InviteCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.InviteCode
	for _, c := range m.codes {
		if c.ClassID == classID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockInviteCodeRepo) ConsumeUse(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[code]
	if !ok {
		return false, nil
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return false, nil
	}
	c.UsedCount++
	return true, nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[string]*model.Enrollment // key: userID:classID
	idCounter   int
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrollments: make(map[string]*model.Enrollment)}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *model.Enrollment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := enrollment.UserID + ":" + enrollment.ClassID
	if _, ok := m.enrollments[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.idCounter++
	if enrollment.EnrollmentID == "" {
		enrollment.EnrollmentID = fmt.Sprintf("enr-%d", m.idCounter)
	}
	m.enrollments[key] = enrollment
	return nil
}

func (m *mockEnrollmentRepo) GetByUserAndClass(_ context.Context, userID, classID string) (*model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.enrollments[userID+":"+classID]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListByClass(_ context.Context, classID string) ([]model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.ClassID == classID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) ListByUser(_ context.Context, userID string) ([]model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.UserID == userID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) CountByClass(_ context.Context, classID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, e := range m.enrollments {
		if e.ClassID == classID {
			count++
		}
	}
	return count, nil
}

// ── Mock MaterialRepository ──

type mockMaterialRepo struct {
	materials map[string]*model.Material
	idCounter int
}

func newMockMaterialRepo() *mockMaterialRepo {
	return &mockMaterialRepo{materials: make(map[string]*model.Material)}
}

func (m *mockMaterialRepo) Create(_ context.Context, material *model.Material) error {
	m.idCounter++
	if material.MaterialID == "" {
		material.MaterialID = fmt.Sprintf("mat-%d", m.idCounter)
	}
	m.materials[material.MaterialID] = material
	return nil
}

func (m *mockMaterialRepo) GetByID(_ context.Context, id string) (*model.Material, error) {
	if mat, ok := m.materials[id]; ok {
		return mat, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMaterialRepo) Update(_ context.Context, material *model.Material) error {
	m.materials[material.MaterialID] = material
	return nil
}

func (m *mockMaterialRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.materials, id)
	return nil
}

func (m *mockMaterialRepo) ListByClass(_ context.Context, classID string) ([]model.Material, error) {
	var result []model.Material
	for _, mat := range m.materials {
		if mat.ClassID == classID {
			result = append(result, *mat)
		}
	}
	return result, nil
}

// ── Mock ExamRepository ──

type mockExamRepo struct {
	mu        sync.Mutex
	exams     map[string]*model.Exam
	attempts  map[string]*model.Attempt
	answers   map[string]*model.Answer
	idCounter int
}

func newMockExamRepo() *mockExamRepo {
	return &mockExamRepo{
		exams:    make(map[string]*model.Exam),
		attempts: make(map[string]*model.Attempt),
		answers:  make(map[string]*model.Answer),
	}
}

func (m *mockExamRepo) nextID(prefix string) string {
	m.idCounter++
	return fmt.Sprintf("%s-%d", prefix, m.idCounter)
}

func (m *mockExamRepo) Create(_ context.Context, exam *model.Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if exam.ExamID == "" {
		exam.ExamID = m.nextID("exam")
	}
	for i := range exam.Questions {
		if exam.Questions[i].QuestionID == "" {
			exam.Questions[i].QuestionID = m.nextID("q")
		}
		exam.Questions[i].ExamID = exam.ExamID
	}
	m.exams[exam.ExamID] = exam
	return nil
}

func (m *mockExamRepo) GetByID(_ context.Context, id string) (*model.Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.exams[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamRepo) GetWithQuestions(ctx context.Context, id string) (*model.Exam, error) {
	return m.GetByID(ctx, id)
}

func (m *mockExamRepo) UpdateStatus(_ context.Context, exam *model.Exam) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[exam.ExamID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.exams[exam.ExamID] = exam
	exam.Version++
	return nil
}

func (m *mockExamRepo) ListByClass(_ context.Context, classID string) ([]model.Exam, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Exam
	for _, e := range m.exams {
		if e.ClassID == classID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockExamRepo) CreateAttempt(_ context.Context, attempt *model.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attempts {
		if a.ExamID == attempt.ExamID && a.StudentID == attempt.StudentID {
			return gorm.ErrDuplicatedKey
		}
	}
	if attempt.AttemptID == "" {
		attempt.AttemptID = m.nextID("att")
	}
	for i := range attempt.Answers {
		if attempt.Answers[i].AnswerID == "" {
			attempt.Answers[i].AnswerID = m.nextID("ans")
		}
		attempt.Answers[i].AttemptID = attempt.AttemptID
		answer := attempt.Answers[i]
		m.answers[answer.AnswerID] = &answer
	}
	m.attempts[attempt.AttemptID] = attempt
	return nil
}

func (m *mockExamRepo) GetAttempt(_ context.Context, attemptID string) (*model.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.attempts[attemptID]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamRepo) GetAttemptByStudent(_ context.Context, examID, studentID string) (*model.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attempts {
		if a.ExamID == examID && a.StudentID == studentID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamRepo) UpdateAttempt(_ context.Context, attempt *model.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attempts[attempt.AttemptID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.attempts[attempt.AttemptID] = attempt
	return nil
}

func (m *mockExamRepo) ListAttempts(_ context.Context, examID string) ([]model.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Attempt
	for _, a := range m.attempts {
		if a.ExamID == examID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockExamRepo) GetAnswer(_ context.Context, answerID string) (*model.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.answers[answerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	m.attachQuestion(a)
	return a, nil
}

func (m *mockExamRepo) UpdateAnswer(_ context.Context, answer *model.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.answers[answer.AnswerID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.answers[answer.AnswerID] = answer
	return nil
}

func (m *mockExamRepo) ListAnswers(_ context.Context, attemptID string) ([]model.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Answer
	for _, a := range m.answers {
		if a.AttemptID == attemptID {
			copied := *a
			m.attachQuestion(&copied)
			result = append(result, copied)
		}
	}
	return result, nil
}

func (m *mockExamRepo) ListPendingAnswers(_ context.Context, examID string) ([]model.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Answer
	for _, a := range m.answers {
		if a.Status != model.AnswerStatusPending {
			continue
		}
		attempt, ok := m.attempts[a.AttemptID]
		if !ok || attempt.ExamID != examID {
			continue
		}
		copied := *a
		m.attachQuestion(&copied)
		result = append(result, copied)
	}
	return result, nil
}

func (m *mockExamRepo) CountGrading(_ context.Context, examID string) (*repository.GradingCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := &repository.GradingCounts{}
	for _, a := range m.attempts {
		if a.ExamID != examID {
			continue
		}
		counts.TotalAttempts++
		if a.Status == model.AttemptStatusGraded {
			counts.GradedAttempts++
		}
	}
	for _, ans := range m.answers {
		attempt, ok := m.attempts[ans.AttemptID]
		if !ok || attempt.ExamID != examID {
			continue
		}
		if ans.Status == model.AnswerStatusPending {
			counts.PendingAnswers++
		} else {
			counts.GradedAnswers++
		}
	}
	return counts, nil
}

// attachQuestion 补齐答案的题目关联，调用方需持有锁
func (m *mockExamRepo) attachQuestion(answer *model.Answer) {
	for _, e := range m.exams {
		for i := range e.Questions {
			if e.Questions[i].QuestionID == answer.QuestionID {
				answer.Question = &e.Questions[i]
				return
			}
		}
	}
}
