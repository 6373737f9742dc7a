package service

import (
	"context"
	"edu_market_backend/internal/model"
	"edu_market_backend/internal/repository"
	"edu_market_backend/pkg/logger"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	AccessSourceEnrollment   = "enrollment"
	AccessSourceSubscription = "subscription"

	accessCacheTTL = 5 * time.Minute
)

// CourseAccessService 判定学生能否访问课程：按课付费enrollment优先，
// 其次是账号级订阅。命中订阅来源时顺带记一条使用记录。
type CourseAccessService struct {
	UserRepo       *repository.UserRepository
	EnrollmentRepo *repository.EnrollmentRepository
	UsageRepo      *repository.SubscriptionUsageRepository
	Redis          *redis.Client
}

func NewCourseAccessService(
	userRepo *repository.UserRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	usageRepo *repository.SubscriptionUsageRepository,
	rdb *redis.Client,
) *CourseAccessService {
	return &CourseAccessService{
		UserRepo:       userRepo,
		EnrollmentRepo: enrollmentRepo,
		UsageRepo:      usageRepo,
		Redis:          rdb,
	}
}

func accessCacheKey(studentID, courseID uint) string {
	return fmt.Sprintf("course_access:%d:%d", studentID, courseID)
}

// CheckAccess 返回 (是否可访问, 访问来源)。只有正向结果进缓存，
// 退订/退款后的拒绝判定始终走数据库。
func (s *CourseAccessService) CheckAccess(ctx context.Context, studentID, courseID uint) (bool, string, error) {
	if s.Redis != nil {
		if source, err := s.Redis.Get(ctx, accessCacheKey(studentID, courseID)).Result(); err == nil {
			if source == AccessSourceSubscription {
				s.recordUsage(studentID, courseID)
			}
			return true, source, nil
		}
	}

	enrollment, err := s.EnrollmentRepo.FindByStudentAndCourse(studentID, courseID)
	if err == nil && enrollment.PaymentStatus == model.PaymentPaid {
		s.cacheAccess(ctx, studentID, courseID, AccessSourceEnrollment)
		return true, AccessSourceEnrollment, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, "", err
	}

	user, err := s.UserRepo.FindByID(studentID)
	if err != nil {
		return false, "", err
	}
	if user.HasActiveSubscription(time.Now()) {
		s.cacheAccess(ctx, studentID, courseID, AccessSourceSubscription)
		s.recordUsage(studentID, courseID)
		return true, AccessSourceSubscription, nil
	}

	return false, "", nil
}

func (s *CourseAccessService) cacheAccess(ctx context.Context, studentID, courseID uint, source string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Set(ctx, accessCacheKey(studentID, courseID), source, accessCacheTTL).Err(); err != nil {
		logger.Log.Warn("course access cache write failed", zap.Error(err))
	}
}

func (s *CourseAccessService) recordUsage(studentID, courseID uint) {
	if err := s.UsageRepo.Record(studentID, courseID); err != nil {
		// 使用记录是旁路数据，失败不阻断访问
		logger.Log.Warn("subscription usage record failed",
			zap.Uint("studentId", studentID),
			zap.Uint("courseId", courseID),
			zap.Error(err))
	}
}
