package repository

import (
	"edu_market_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 以(student, lesson)为冲突键写进度；completed只写一次completed_at
func (r *ProgressRepository) Upsert(studentID, lessonID uint, status model.ProgressStatus) error {
	progress := model.StudentProgress{
		StudentID: studentID,
		LessonID:  lessonID,
		Status:    status,
	}
	assignments := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == model.ProgressCompleted {
		assignments["completed_at"] = gorm.Expr("COALESCE(completed_at, ?)", time.Now())
	}

	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&progress).Error
}

func (r *ProgressRepository) FindByStudentAndLesson(studentID, lessonID uint) (*model.StudentProgress, error) {
	var progress model.StudentProgress
	err := r.DB.Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) CountCompletedByStudentAndCourse(studentID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.StudentProgress{}).
		Joins("JOIN course_lessons ON course_lessons.id = student_progress.lesson_id").
		Where("student_progress.student_id = ? AND course_lessons.course_id = ? AND student_progress.status = ?",
			studentID, courseID, model.ProgressCompleted).
		Count(&count).Error
	return count, err
}
