package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classhub/backend/internal/dto"
	"classhub/backend/internal/model"
	"classhub/backend/internal/repository"
)

// ── 模拟考试模块业务错误 ──

var (
	ErrExamNotFound     = errors.New("考试不存在")
	ErrExamNotDraft     = errors.New("只有草稿状态的考试可以发布")
	ErrExamNotPublished = errors.New("考试未发布")
	ErrAttemptExists    = errors.New("该考试已提交过作答")
	ErrAttemptNotFound  = errors.New("作答记录不存在")
	ErrAnswerNotFound   = errors.New("答案不存在")
	ErrNotEnrolled      = errors.New("未加入该班级")
	ErrPointsExceedMax  = errors.New("给分不能超过题目满分")
)

// ExamService 模拟考试业务接口
// 覆盖出卷、发布、作答、人工批改全流程
type ExamService interface {
	Create(ctx context.Context, classID string, req *dto.CreateExamRequest, callerID, callerRole string) (*dto.ExamResponse, error)
	GetByID(ctx context.Context, examID string, callerID, callerRole string) (*dto.ExamResponse, error)
	ListByClass(ctx context.Context, classID string, callerID, callerRole string) ([]dto.ExamResponse, error)
	Publish(ctx context.Context, examID string, callerID, callerRole string) error
	Close(ctx context.Context, examID string, callerID, callerRole string) error

	// SubmitAttempt 提交作答：选择题即时判分，主观题进入待批改队列
	SubmitAttempt(ctx context.Context, examID string, req *dto.SubmitAttemptRequest, studentID string) (*dto.AttemptResponse, error)
	GetMyAttempt(ctx context.Context, examID string, studentID string) (*dto.AttemptResponse, error)
	ListAttempts(ctx context.Context, examID string, callerID, callerRole string) ([]dto.AttemptResponse, error)

	ListPendingAnswers(ctx context.Context, examID string, callerID, callerRole string) ([]dto.PendingAnswerResponse, error)
	// GradeAnswer 批改单题；该作答的全部答案批改完毕后自动汇总成绩
	GradeAnswer(ctx context.Context, answerID string, req *dto.GradeAnswerRequest, callerID, callerRole string) (*dto.AttemptResponse, error)
	GetProgress(ctx context.Context, examID string, callerID, callerRole string) (*dto.GradingProgressResponse, error)
}

type examService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExamService 创建 ExamService 实例
func NewExamService(repo *repository.Repository, logger *zap.Logger) ExamService {
	return &examService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *examService) Create(ctx context.Context, classID string, req *dto.CreateExamRequest, callerID, callerRole string) (*dto.ExamResponse, error) {
	class, err := s.getClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !canManageClass(class, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	if class.IsArchived {
		return nil, ErrClassArchived
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, q := range req.Questions {
		if err := validateQuestion(i, &q); err != nil {
			return nil, err
		}
		points := q.Points
		if points == 0 {
			points = 1
		}
		question := model.Question{
			Kind:      q.Kind,
			Statement: q.Statement,
			Points:    points,
			Position:  i,
		}
		if q.Kind == model.QuestionKindChoice {
			question.Options = model.StringArray(q.Options)
			question.CorrectOption = q.CorrectOption
		}
		questions = append(questions, question)
	}

	exam := &model.Exam{
		ClassID:         classID,
		Title:           req.Title,
		Description:     req.Description,
		Status:          model.ExamStatusDraft,
		DurationMinutes: req.DurationMinutes,
		Questions:       questions,
	}
	exam.CreatedBy = &callerID
	exam.UpdatedBy = &callerID

	if err := s.repo.Exam.Create(ctx, exam); err != nil {
		s.logger.Error("创建考试失败", zap.Error(err))
		return nil, err
	}

	return s.toExamResponse(exam, true), nil
}

// validateQuestion 题目结构校验：选择题必须有选项与正确项
func validateQuestion(index int, q *dto.CreateQuestionRequest) error {
	if q.Kind != model.QuestionKindChoice {
		return nil
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("第 %d 题：选择题至少需要 2 个选项", index+1)
	}
	if q.CorrectOption == nil {
		return fmt.Errorf("第 %d 题：选择题缺少正确答案", index+1)
	}
	if *q.CorrectOption < 0 || *q.CorrectOption >= len(q.Options) {
		return fmt.Errorf("第 %d 题：正确答案下标超出选项范围", index+1)
	}
	return nil
}

// ────────────────────── GetByID ──────────────────────

func (s *examService) GetByID(ctx context.Context, examID string, callerID, callerRole string) (*dto.ExamResponse, error) {
	exam, err := s.getExamWithQuestions(ctx, examID)
	if err != nil {
		return nil, err
	}

	class, err := s.getClass(ctx, exam.ClassID)
	if err != nil {
		return nil, err
	}

	if canManageClass(class, callerID, callerRole) {
		return s.toExamResponse(exam, true), nil
	}

	// 学生视角：必须已加入班级，且只可见已发布的考试
	if _, err := s.repo.Enrollment.GetByUserAndClass(ctx, callerID, exam.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoPermission
		}
		return nil, err
	}
	if exam.Status == model.ExamStatusDraft {
		return nil, ErrExamNotFound
	}

	return s.toExamResponse(exam, true), nil
}

// ────────────────────── ListByClass ──────────────────────

func (s *examService) ListByClass(ctx context.Context, classID string, callerID, callerRole string) ([]dto.ExamResponse, error) {
	class, err := s.getClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	manager := canManageClass(class, callerID, callerRole)
	if !manager {
		if _, err := s.repo.Enrollment.GetByUserAndClass(ctx, callerID, classID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoPermission
			}
			return nil, err
		}
	}

	exams, err := s.repo.Exam.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询考试列表失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ExamResponse, 0, len(exams))
	for i := range exams {
		if !manager && exams[i].Status == model.ExamStatusDraft {
			continue
		}
		result = append(result, *s.toExamResponse(&exams[i], false))
	}

	return result, nil
}

// ────────────────────── Publish ──────────────────────

func (s *examService) Publish(ctx context.Context, examID string, callerID, callerRole string) error {
	return s.transition(ctx, examID, callerID, callerRole, model.ExamStatusDraft, model.ExamStatusPublished)
}

// ────────────────────── Close ──────────────────────

func (s *examService) Close(ctx context.Context, examID string, callerID, callerRole string) error {
	return s.transition(ctx, examID, callerID, callerRole, model.ExamStatusPublished, model.ExamStatusClosed)
}

// transition 带乐观锁的状态流转 draft → published → closed
func (s *examService) transition(ctx context.Context, examID, callerID, callerRole, from, to string) error {
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return err
	}

	class, err := s.getClass(ctx, exam.ClassID)
	if err != nil {
		return err
	}
	if !canManageClass(class, callerID, callerRole) {
		return ErrNoPermission
	}

	if exam.Status != from {
		if from == model.ExamStatusDraft {
			return ErrExamNotDraft
		}
		return ErrExamNotPublished
	}

	exam.Status = to
	exam.UpdatedBy = &callerID

	if err := s.repo.Exam.UpdateStatus(ctx, exam); err != nil {
		s.logger.Error("更新考试状态失败", zap.String("id", examID), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── SubmitAttempt ──────────────────────

func (s *examService) SubmitAttempt(ctx context.Context, examID string, req *dto.SubmitAttemptRequest, studentID string) (*dto.AttemptResponse, error) {
	exam, err := s.getExamWithQuestions(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotPublished
	}

	if _, err := s.repo.Enrollment.GetByUserAndClass(ctx, studentID, exam.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	submitted := make(map[string]*dto.SubmitAnswerRequest, len(req.Answers))
	for i := range req.Answers {
		a := &req.Answers[i]
		submitted[a.QuestionID] = a
	}
	for questionID := range submitted {
		if !examHasQuestion(exam, questionID) {
			return nil, fmt.Errorf("题目 %s 不属于该考试", questionID)
		}
	}

	now := time.Now()
	var (
		maxScore  float64
		autoScore float64
		pending   int
		answers   = make([]model.Answer, 0, len(exam.Questions))
	)
	for i := range exam.Questions {
		q := &exam.Questions[i]
		maxScore += q.Points

		answer := model.Answer{QuestionID: q.QuestionID}
		sub := submitted[q.QuestionID]

		switch q.Kind {
		case model.QuestionKindChoice:
			// 选择题即时判分，未作答计零分
			answer.Status = model.AnswerStatusGraded
			answer.GradedAt = &now
			if sub != nil && sub.SelectedOption != nil {
				answer.SelectedOption = sub.SelectedOption
				if q.CorrectOption != nil && *sub.SelectedOption == *q.CorrectOption {
					answer.AwardedPoints = q.Points
					autoScore += q.Points
				}
			}
		default:
			// 主观题进入待批改队列；未作答同样交教师裁定
			answer.Status = model.AnswerStatusPending
			pending++
			if sub != nil {
				answer.Text = sub.Text
			}
		}

		answers = append(answers, answer)
	}

	status := model.AttemptStatusGraded
	var gradedAt *time.Time
	if pending > 0 {
		status = model.AttemptStatusGrading
	} else {
		gradedAt = &now
	}

	attempt := &model.Attempt{
		ExamID:      examID,
		StudentID:   studentID,
		Status:      status,
		Score:       autoScore,
		MaxScore:    maxScore,
		SubmittedAt: now,
		GradedAt:    gradedAt,
		Answers:     answers,
	}

	if err := s.repo.Exam.CreateAttempt(ctx, attempt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAttemptExists
		}
		s.logger.Error("提交作答失败", zap.Error(err))
		return nil, err
	}

	return s.toAttemptResponse(attempt, true), nil
}

// ────────────────────── GetMyAttempt ──────────────────────

func (s *examService) GetMyAttempt(ctx context.Context, examID string, studentID string) (*dto.AttemptResponse, error) {
	attempt, err := s.repo.Exam.GetAttemptByStudent(ctx, examID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		s.logger.Error("查询作答记录失败", zap.Error(err))
		return nil, err
	}
	return s.toAttemptResponse(attempt, true), nil
}

// ────────────────────── ListAttempts ──────────────────────

func (s *examService) ListAttempts(ctx context.Context, examID string, callerID, callerRole string) ([]dto.AttemptResponse, error) {
	if err := s.checkManage(ctx, examID, callerID, callerRole); err != nil {
		return nil, err
	}

	attempts, err := s.repo.Exam.ListAttempts(ctx, examID)
	if err != nil {
		s.logger.Error("查询作答列表失败", zap.String("exam_id", examID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttemptResponse, 0, len(attempts))
	for i := range attempts {
		result = append(result, *s.toAttemptResponse(&attempts[i], false))
	}

	return result, nil
}

// ────────────────────── ListPendingAnswers ──────────────────────

func (s *examService) ListPendingAnswers(ctx context.Context, examID string, callerID, callerRole string) ([]dto.PendingAnswerResponse, error) {
	if err := s.checkManage(ctx, examID, callerID, callerRole); err != nil {
		return nil, err
	}

	answers, err := s.repo.Exam.ListPendingAnswers(ctx, examID)
	if err != nil {
		s.logger.Error("查询待批改答案失败", zap.String("exam_id", examID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.PendingAnswerResponse, 0, len(answers))
	for i := range answers {
		a := &answers[i]
		item := dto.PendingAnswerResponse{
			AnswerID:  a.AnswerID,
			AttemptID: a.AttemptID,
		}
		if a.Question != nil {
			item.QuestionID = a.Question.QuestionID
			item.Statement = a.Question.Statement
			item.MaxPoints = a.Question.Points
		}
		if a.Text != nil {
			item.Text = *a.Text
		}
		if attempt, err := s.repo.Exam.GetAttempt(ctx, a.AttemptID); err == nil {
			item.StudentID = attempt.StudentID
			if attempt.Student != nil {
				item.StudentName = attempt.Student.Name
			}
		}
		result = append(result, item)
	}

	return result, nil
}

// ────────────────────── GradeAnswer ──────────────────────

func (s *examService) GradeAnswer(ctx context.Context, answerID string, req *dto.GradeAnswerRequest, callerID, callerRole string) (*dto.AttemptResponse, error) {
	answer, err := s.repo.Exam.GetAnswer(ctx, answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerNotFound
		}
		s.logger.Error("查询答案失败", zap.String("id", answerID), zap.Error(err))
		return nil, err
	}

	attempt, err := s.repo.Exam.GetAttempt(ctx, answer.AttemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}

	if err := s.checkManage(ctx, attempt.ExamID, callerID, callerRole); err != nil {
		return nil, err
	}

	if answer.Question != nil && req.AwardedPoints > answer.Question.Points {
		return nil, ErrPointsExceedMax
	}

	now := time.Now()
	answer.Status = model.AnswerStatusGraded
	answer.AwardedPoints = req.AwardedPoints
	answer.GradedBy = &callerID
	answer.GradedAt = &now
	if req.Feedback != "" {
		answer.Feedback = &req.Feedback
	}

	if err := s.repo.Exam.UpdateAnswer(ctx, answer); err != nil {
		s.logger.Error("保存批改结果失败", zap.String("id", answerID), zap.Error(err))
		return nil, err
	}

	// 汇总该作答的成绩；全部批改完即置为 graded
	answers, err := s.repo.Exam.ListAnswers(ctx, attempt.AttemptID)
	if err != nil {
		s.logger.Error("汇总成绩失败", zap.Error(err))
		return nil, err
	}

	var score float64
	allGraded := true
	for i := range answers {
		if answers[i].Status != model.AnswerStatusGraded {
			allGraded = false
			continue
		}
		score += answers[i].AwardedPoints
	}

	attempt.Score = score
	if allGraded {
		attempt.Status = model.AttemptStatusGraded
		attempt.GradedAt = &now
	} else {
		attempt.Status = model.AttemptStatusGrading
	}

	if err := s.repo.Exam.UpdateAttempt(ctx, attempt); err != nil {
		s.logger.Error("更新作答状态失败", zap.Error(err))
		return nil, err
	}

	attempt.Answers = answers
	return s.toAttemptResponse(attempt, true), nil
}

// ────────────────────── GetProgress ──────────────────────

func (s *examService) GetProgress(ctx context.Context, examID string, callerID, callerRole string) (*dto.GradingProgressResponse, error) {
	if err := s.checkManage(ctx, examID, callerID, callerRole); err != nil {
		return nil, err
	}

	counts, err := s.repo.Exam.CountGrading(ctx, examID)
	if err != nil {
		s.logger.Error("统计批改进度失败", zap.String("exam_id", examID), zap.Error(err))
		return nil, err
	}

	return &dto.GradingProgressResponse{
		ExamID:         examID,
		TotalAttempts:  counts.TotalAttempts,
		GradedAttempts: counts.GradedAttempts,
		PendingAnswers: counts.PendingAnswers,
		GradedAnswers:  counts.GradedAnswers,
	}, nil
}

// ── 内部辅助方法 ──

func (s *examService) checkManage(ctx context.Context, examID, callerID, callerRole string) error {
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return err
	}
	class, err := s.getClass(ctx, exam.ClassID)
	if err != nil {
		return err
	}
	if !canManageClass(class, callerID, callerRole) {
		return ErrNoPermission
	}
	return nil
}

func (s *examService) getExam(ctx context.Context, id string) (*model.Exam, error) {
	exam, err := s.repo.Exam.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		s.logger.Error("查询考试失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return exam, nil
}

func (s *examService) getExamWithQuestions(ctx context.Context, id string) (*model.Exam, error) {
	exam, err := s.repo.Exam.GetWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		s.logger.Error("查询考试失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return exam, nil
}

func (s *examService) getClass(ctx context.Context, id string) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

func examHasQuestion(exam *model.Exam, questionID string) bool {
	for i := range exam.Questions {
		if exam.Questions[i].QuestionID == questionID {
			return true
		}
	}
	return false
}

func (s *examService) toExamResponse(exam *model.Exam, withQuestions bool) *dto.ExamResponse {
	resp := &dto.ExamResponse{
		ID:              exam.ExamID,
		ClassID:         exam.ClassID,
		Title:           exam.Title,
		Description:     exam.Description,
		Status:          exam.Status,
		DurationMinutes: exam.DurationMinutes,
		CreatedAt:       exam.CreatedAt.Format(time.RFC3339),
	}
	if withQuestions {
		resp.Questions = make([]dto.QuestionResponse, 0, len(exam.Questions))
		for i := range exam.Questions {
			q := &exam.Questions[i]
			resp.Questions = append(resp.Questions, dto.QuestionResponse{
				ID:        q.QuestionID,
				Kind:      q.Kind,
				Statement: q.Statement,
				Options:   []string(q.Options),
				Points:    q.Points,
				Position:  q.Position,
			})
		}
	}
	return resp
}

func (s *examService) toAttemptResponse(attempt *model.Attempt, withAnswers bool) *dto.AttemptResponse {
	resp := &dto.AttemptResponse{
		ID:          attempt.AttemptID,
		ExamID:      attempt.ExamID,
		StudentID:   attempt.StudentID,
		Status:      attempt.Status,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		SubmittedAt: attempt.SubmittedAt.Format(time.RFC3339),
	}
	if attempt.GradedAt != nil {
		resp.GradedAt = attempt.GradedAt.Format(time.RFC3339)
	}
	if attempt.Student != nil {
		resp.StudentName = attempt.Student.Name
	}
	if withAnswers {
		resp.Answers = make([]dto.AnswerResponse, 0, len(attempt.Answers))
		for i := range attempt.Answers {
			a := &attempt.Answers[i]
			item := dto.AnswerResponse{
				ID:             a.AnswerID,
				QuestionID:     a.QuestionID,
				SelectedOption: a.SelectedOption,
				Text:           a.Text,
				Status:         a.Status,
				AwardedPoints:  a.AwardedPoints,
			}
			if a.Feedback != nil {
				item.Feedback = *a.Feedback
			}
			resp.Answers = append(resp.Answers, item)
		}
	}
	return resp
}
