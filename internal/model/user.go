package model

// ── 角色常量 ──

const (
	RoleStudent     = "student"
	RoleTeacher     = "teacher"
	RoleCoordinator = "coordinator"
	RoleAdmin       = "admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID         string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name           string `gorm:"type:varchar(100);not null"                     json:"name"`
	RegistrationNo string `gorm:"type:varchar(20);not null"                      json:"registration_no"`
	Email          string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash   string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role           string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
