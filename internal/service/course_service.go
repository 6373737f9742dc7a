package service

import (
	"edu_market_backend/internal/model"
	"edu_market_backend/internal/repository"
)

type CourseService struct {
	CourseRepo   *repository.CourseRepository
	ProgressRepo *repository.ProgressRepository
}

func NewCourseService(courseRepo *repository.CourseRepository, progressRepo *repository.ProgressRepository) *CourseService {
	return &CourseService{
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
	}
}

func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	sections, err := s.CourseRepo.ListSectionsByCourse(course.ID)
	if err != nil {
		return nil, err
	}
	course.Sections = sections

	lessons, err := s.CourseRepo.ListLessonsByCourse(course.ID)
	if err != nil {
		return nil, err
	}
	course.Lessons = lessons

	return course, nil
}

func (s *CourseService) ListLessons(courseID uint) ([]model.CourseLesson, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		return nil, err
	}
	return s.CourseRepo.ListLessonsByCourse(courseID)
}

// LessonProgress 学生在某课程下的完成度汇总
type LessonProgress struct {
	CourseID       uint  `json:"courseId"`
	LessonCount    int   `json:"lessonCount"`
	CompletedCount int64 `json:"completedCount"`
}

func (s *CourseService) GetStudentCourseProgress(studentID, courseID uint) (*LessonProgress, error) {
	lessons, err := s.ListLessons(courseID)
	if err != nil {
		return nil, err
	}

	completed, err := s.ProgressRepo.CountCompletedByStudentAndCourse(studentID, courseID)
	if err != nil {
		return nil, err
	}

	return &LessonProgress{
		CourseID:       courseID,
		LessonCount:    len(lessons),
		CompletedCount: completed,
	}, nil
}
