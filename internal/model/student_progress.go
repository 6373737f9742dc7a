package model

import "time"

type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// swagger:model
type StudentProgress struct {
	BaseModel
	StudentID           uint           `gorm:"uniqueIndex:idx_progress_student_lesson;type:bigint unsigned;not null" json:"studentId"`
	LessonID            uint           `gorm:"uniqueIndex:idx_progress_student_lesson;type:bigint unsigned;not null" json:"lessonId"`
	Status              ProgressStatus `gorm:"type:enum('in_progress','completed');default:'in_progress'" json:"status"`
	LastPositionSeconds int            `gorm:"default:0" json:"lastPositionSeconds"`
	CompletedAt         *time.Time     `json:"completedAt,omitempty"`
}

func (StudentProgress) TableName() string {
	return "student_progress"
}
