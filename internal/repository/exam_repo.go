package repository

import (
	"context"

	"gorm.io/gorm"

	"classhub/backend/internal/model"
	pkgerrors "classhub/backend/pkg/errors"
)

// GradingCounts 批改进度统计
type GradingCounts struct {
	TotalAttempts  int64
	GradedAttempts int64
	PendingAnswers int64
	GradedAnswers  int64
}

// ExamRepository 模拟考试数据访问接口
// 考试、题目、作答、答案同属一个聚合，统一由该接口管理
type ExamRepository interface {
	Create(ctx context.Context, exam *model.Exam) error
	GetByID(ctx context.Context, id string) (*model.Exam, error)
	GetWithQuestions(ctx context.Context, id string) (*model.Exam, error)
	UpdateStatus(ctx context.Context, exam *model.Exam) error
	ListByClass(ctx context.Context, classID string) ([]model.Exam, error)

	CreateAttempt(ctx context.Context, attempt *model.Attempt) error
	GetAttempt(ctx context.Context, attemptID string) (*model.Attempt, error)
	GetAttemptByStudent(ctx context.Context, examID, studentID string) (*model.Attempt, error)
	UpdateAttempt(ctx context.Context, attempt *model.Attempt) error
	ListAttempts(ctx context.Context, examID string) ([]model.Attempt, error)

	GetAnswer(ctx context.Context, answerID string) (*model.Answer, error)
	UpdateAnswer(ctx context.Context, answer *model.Answer) error
	ListAnswers(ctx context.Context, attemptID string) ([]model.Answer, error)
	ListPendingAnswers(ctx context.Context, examID string) ([]model.Answer, error)
	CountGrading(ctx context.Context, examID string) (*GradingCounts, error)
}

// examRepo ExamRepository 的 GORM 实现
type examRepo struct {
	db *gorm.DB
}

// NewExamRepo 创建 ExamRepository 实例
func NewExamRepo(db *gorm.DB) ExamRepository {
	return &examRepo{db: db}
}

// ── Exam ──

// Create 创建考试及其题目（题目通过关联一并写入）
func (r *examRepo) Create(ctx context.Context, exam *model.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepo) GetByID(ctx context.Context, id string) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.WithContext(ctx).
		Where("exam_id = ?", id).
		First(&exam).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepo) GetWithQuestions(ctx context.Context, id string) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("exam_id = ?", id).
		First(&exam).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

// UpdateStatus 带乐观锁的状态更新：version 不匹配时返回 ErrOptimisticLock
func (r *examRepo) UpdateStatus(ctx context.Context, exam *model.Exam) error {
	oldVersion := exam.Version
	result := r.db.WithContext(ctx).
		Model(exam).
		Where("exam_id = ? AND version = ?", exam.ExamID, oldVersion).
		Updates(map[string]interface{}{
			"status":     exam.Status,
			"updated_by": exam.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	exam.Version = oldVersion + 1
	return nil
}

func (r *examRepo) ListByClass(ctx context.Context, classID string) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&exams).Error
	if err != nil {
		return nil, err
	}
	return exams, nil
}

// ── Attempt ──

// CreateAttempt 插入作答及其答案；(exam_id, student_id) 唯一冲突时返回 gorm.ErrDuplicatedKey
func (r *examRepo) CreateAttempt(ctx context.Context, attempt *model.Attempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

func (r *examRepo) GetAttempt(ctx context.Context, attemptID string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("attempt_id = ?", attemptID).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *examRepo) GetAttemptByStudent(ctx context.Context, examID, studentID string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *examRepo) UpdateAttempt(ctx context.Context, attempt *model.Attempt) error {
	return r.db.WithContext(ctx).
		Model(attempt).
		Where("attempt_id = ?", attempt.AttemptID).
		Updates(map[string]interface{}{
			"status":    attempt.Status,
			"score":     attempt.Score,
			"graded_at": attempt.GradedAt,
		}).Error
}

func (r *examRepo) ListAttempts(ctx context.Context, examID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("exam_id = ?", examID).
		Order("submitted_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// ── Answer ──

func (r *examRepo) GetAnswer(ctx context.Context, answerID string) (*model.Answer, error) {
	var answer model.Answer
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("answer_id = ?", answerID).
		First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *examRepo) UpdateAnswer(ctx context.Context, answer *model.Answer) error {
	return r.db.WithContext(ctx).
		Model(answer).
		Where("answer_id = ?", answer.AnswerID).
		Updates(map[string]interface{}{
			"status":         answer.Status,
			"awarded_points": answer.AwardedPoints,
			"graded_by":      answer.GradedBy,
			"graded_at":      answer.GradedAt,
			"feedback":       answer.Feedback,
		}).Error
}

func (r *examRepo) ListAnswers(ctx context.Context, attemptID string) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("attempt_id = ?", attemptID).
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// ListPendingAnswers 列出考试下所有待人工批改的主观题答案
func (r *examRepo) ListPendingAnswers(ctx context.Context, examID string) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.WithContext(ctx).
		Preload("Question").
		Joins("JOIN attempts ON attempts.attempt_id = answers.attempt_id").
		Where("attempts.exam_id = ? AND answers.status = ?", examID, model.AnswerStatusPending).
		Order("answers.created_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *examRepo) CountGrading(ctx context.Context, examID string) (*GradingCounts, error) {
	var counts GradingCounts

	if err := r.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("exam_id = ?", examID).
		Count(&counts.TotalAttempts).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&model.Attempt{}).
		Where("exam_id = ? AND status = ?", examID, model.AttemptStatusGraded).
		Count(&counts.GradedAttempts).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&model.Answer{}).
		Joins("JOIN attempts ON attempts.attempt_id = answers.attempt_id").
		Where("attempts.exam_id = ? AND answers.status = ?", examID, model.AnswerStatusPending).
		Count(&counts.PendingAnswers).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&model.Answer{}).
		Joins("JOIN attempts ON attempts.attempt_id = answers.attempt_id").
		Where("attempts.exam_id = ? AND answers.status = ?", examID, model.AnswerStatusGraded).
		Count(&counts.GradedAnswers).Error; err != nil {
		return nil, err
	}

	return &counts, nil
}
