package dto

// ── 模拟考试模块 DTO ──

// CreateQuestionRequest 题目定义
// kind=choice 时 options 与 correct_option 必填；kind=essay 时忽略
type CreateQuestionRequest struct {
	Kind          string   `json:"kind"           binding:"required,oneof=choice essay"`
	Statement     string   `json:"statement"      binding:"required,min=1"`
	Options       []string `json:"options"        binding:"omitempty,min=2,max=10,dive,min=1"`
	CorrectOption *int     `json:"correct_option" binding:"omitempty,min=0"`
	Points        float64  `json:"points"         binding:"omitempty,gt=0"`
}

// CreateExamRequest 创建模拟考试请求
type CreateExamRequest struct {
	Title           string                  `json:"title"            binding:"required,min=2,max=200"`
	Description     string                  `json:"description"      binding:"omitempty,max=2000"`
	DurationMinutes int                     `json:"duration_minutes" binding:"omitempty,min=0,max=600"`
	Questions       []CreateQuestionRequest `json:"questions"        binding:"required,min=1,dive"`
}

// SubmitAnswerRequest 单题作答
type SubmitAnswerRequest struct {
	QuestionID     string  `json:"question_id"     binding:"required,uuid"`
	SelectedOption *int    `json:"selected_option" binding:"omitempty,min=0"`
	Text           *string `json:"text"            binding:"omitempty,max=20000"`
}

// SubmitAttemptRequest 提交作答请求
type SubmitAttemptRequest struct {
	Answers []SubmitAnswerRequest `json:"answers" binding:"required,min=1,dive"`
}

// GradeAnswerRequest 批改单题请求
type GradeAnswerRequest struct {
	AwardedPoints float64 `json:"awarded_points" binding:"min=0"`
	Feedback      string  `json:"feedback"       binding:"omitempty,max=5000"`
}

// QuestionResponse 题目响应（不含正确答案）
type QuestionResponse struct {
	ID        string   `json:"id"`
	Kind      string   `json:"kind"`
	Statement string   `json:"statement"`
	Options   []string `json:"options,omitempty"`
	Points    float64  `json:"points"`
	Position  int      `json:"position"`
}

// ExamResponse 考试信息响应
type ExamResponse struct {
	ID              string             `json:"id"`
	ClassID         string             `json:"class_id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Status          string             `json:"status"`
	DurationMinutes int                `json:"duration_minutes"`
	Questions       []QuestionResponse `json:"questions,omitempty"`
	CreatedAt       string             `json:"created_at"`
}

// AnswerResponse 答案响应
type AnswerResponse struct {
	ID             string  `json:"id"`
	QuestionID     string  `json:"question_id"`
	SelectedOption *int    `json:"selected_option,omitempty"`
	Text           *string `json:"text,omitempty"`
	Status         string  `json:"status"`
	AwardedPoints  float64 `json:"awarded_points"`
	Feedback       string  `json:"feedback,omitempty"`
}

// AttemptResponse 作答记录响应
type AttemptResponse struct {
	ID          string           `json:"id"`
	ExamID      string           `json:"exam_id"`
	StudentID   string           `json:"student_id"`
	StudentName string           `json:"student_name,omitempty"`
	Status      string           `json:"status"`
	Score       float64          `json:"score"`
	MaxScore    float64          `json:"max_score"`
	SubmittedAt string           `json:"submitted_at"`
	GradedAt    string           `json:"graded_at,omitempty"`
	Answers     []AnswerResponse `json:"answers,omitempty"`
}

// PendingAnswerResponse 待批改答案响应
type PendingAnswerResponse struct {
	AnswerID    string  `json:"answer_id"`
	AttemptID   string  `json:"attempt_id"`
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name,omitempty"`
	QuestionID  string  `json:"question_id"`
	Statement   string  `json:"statement"`
	MaxPoints   float64 `json:"max_points"`
	Text        string  `json:"text"`
}

// GradingProgressResponse 批改进度响应
type GradingProgressResponse struct {
	ExamID         string `json:"exam_id"`
	TotalAttempts  int64  `json:"total_attempts"`
	GradedAttempts int64  `json:"graded_attempts"`
	PendingAnswers int64  `json:"pending_answers"`
	GradedAnswers  int64  `json:"graded_answers"`
}
