package repository

import (
	"edu_market_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindLessonByID(id uint) (*model.CourseLesson, error) {
	var lesson model.CourseLesson
	err := r.DB.First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CourseRepository) ListLessonsByCourse(courseID uint) ([]model.CourseLesson, error) {
	var lessons []model.CourseLesson
	err := r.DB.Where("course_id = ?", courseID).
		Order("position asc, id asc").
		Find(&lessons).Error
	return lessons, err
}

func (r *CourseRepository) ListSectionsByCourse(courseID uint) ([]model.CourseSection, error) {
	var sections []model.CourseSection
	err := r.DB.Where("course_id = ?", courseID).
		Order("position asc, id asc").
		Find(&sections).Error
	return sections, err
}
