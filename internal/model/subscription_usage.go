package model

import "time"

// SubscriptionUsage 订阅用户访问课程的使用记录，按(student, course)去重，结算用
// swagger:model
type SubscriptionUsage struct {
	BaseModel
	StudentID      uint      `gorm:"uniqueIndex:idx_usage_student_course;type:bigint unsigned;not null" json:"studentId"`
	CourseID       uint      `gorm:"uniqueIndex:idx_usage_student_course;type:bigint unsigned;not null" json:"courseId"`
	LastAccessedAt time.Time `gorm:"autoCreateTime" json:"lastAccessedAt"`
}

func (SubscriptionUsage) TableName() string {
	return "course_subscription_usage"
}
