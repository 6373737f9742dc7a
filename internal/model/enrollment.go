package model

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
)

// swagger:model
type Enrollment struct {
	BaseModel
	StudentID     uint          `gorm:"uniqueIndex:idx_enrollment_student_course;type:bigint unsigned;not null" json:"studentId"`
	CourseID      uint          `gorm:"uniqueIndex:idx_enrollment_student_course;type:bigint unsigned;not null" json:"courseId"`
	TuitionAmount float64       `gorm:"default:0" json:"tuitionAmount"`
	PaymentStatus PaymentStatus `gorm:"type:enum('pending','paid','partial');default:'pending'" json:"paymentStatus"`
	EnrolledAt    time.Time     `gorm:"autoCreateTime" json:"enrolledAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
