package repository

import (
	"edu_market_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionUsageRepository struct {
	DB *gorm.DB
}

func NewSubscriptionUsageRepository(db *gorm.DB) *SubscriptionUsageRepository {
	return &SubscriptionUsageRepository{DB: db}
}

// Record 订阅访问记一笔，重复访问只刷新last_accessed_at
func (r *SubscriptionUsageRepository) Record(studentID, courseID uint) error {
	usage := model.SubscriptionUsage{
		StudentID:      studentID,
		CourseID:       courseID,
		LastAccessedAt: time.Now(),
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_accessed_at": time.Now(),
		}),
	}).Create(&usage).Error
}
