package repository

import (
	"edu_market_backend/internal/model"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ScormAttemptRepository struct {
	DB *gorm.DB
}

func NewScormAttemptRepository(db *gorm.DB) *ScormAttemptRepository {
	return &ScormAttemptRepository{DB: db}
}

func (r *ScormAttemptRepository) Create(attempt *model.ScormAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *ScormAttemptRepository) FindByStudentAndLesson(studentID, lessonID uint) (*model.ScormAttempt, error) {
	var attempt model.ScormAttempt
	err := r.DB.Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindByIDAndToken 运行时/资源请求的唯一鉴权入口：attempt id和当前launch_token
// 必须同时匹配，miss与“不存在”不作区分
func (r *ScormAttemptRepository) FindByIDAndToken(attemptID uint, token string) (*model.ScormAttempt, error) {
	var attempt model.ScormAttempt
	err := r.DB.Where("id = ? AND launch_token = ?", attemptID, token).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// RotateLaunchToken 单条UPDATE完成轮换：旧token失效和新token可见在同一语句里，
// 不存在两个token同时有效的窗口
func (r *ScormAttemptRepository) RotateLaunchToken(attemptID uint, token string) (*model.ScormAttempt, error) {
	err := r.DB.Model(&model.ScormAttempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"launch_token":     token,
			"last_accessed_at": time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}

	var attempt model.ScormAttempt
	if err := r.DB.First(&attempt, attemptID).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// RuntimeUpdate 一次状态提交要落库的全部字段
type RuntimeUpdate struct {
	RuntimeState     datatypes.JSON
	Status           model.ScormAttemptStatus
	CompletionStatus *string
	SuccessStatus    *string
	ScoreRaw         *float64
	TotalTimeSeconds int
	LessonLocation   *string
	SuspendData      *string
	EnteredFinal     bool
}

// UpdateRuntime completed_at用COALESCE在SQL里只写一次，并发提交也不会把它挪走
func (r *ScormAttemptRepository) UpdateRuntime(attemptID uint, update RuntimeUpdate) (*model.ScormAttempt, error) {
	values := map[string]interface{}{
		"runtime_state":      update.RuntimeState,
		"status":             update.Status,
		"completion_status":  update.CompletionStatus,
		"success_status":     update.SuccessStatus,
		"score_raw":          update.ScoreRaw,
		"total_time_seconds": update.TotalTimeSeconds,
		"lesson_location":    update.LessonLocation,
		"suspend_data":       update.SuspendData,
		"last_accessed_at":   time.Now(),
	}
	if update.EnteredFinal {
		values["completed_at"] = gorm.Expr("COALESCE(completed_at, ?)", time.Now())
	}

	result := r.DB.Model(&model.ScormAttempt{}).
		Where("id = ?", attemptID).
		Updates(values)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var attempt model.ScormAttempt
	if err := r.DB.First(&attempt, attemptID).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}
