package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type ScormAttemptStatus string

const (
	AttemptNotStarted ScormAttemptStatus = "not_started"
	AttemptInProgress ScormAttemptStatus = "in_progress"
	AttemptCompleted  ScormAttemptStatus = "completed"
	AttemptPassed     ScormAttemptStatus = "passed"
	AttemptFailed     ScormAttemptStatus = "failed"
)

// IsCompletedStatus completed/passed 算作“已完成”进度，failed 只体现在 attempt 本身
func IsCompletedStatus(s ScormAttemptStatus) bool {
	return s == AttemptCompleted || s == AttemptPassed
}

// IsFinalStatus 是否进入完成族状态（首次进入时固化 completed_at）
func IsFinalStatus(s ScormAttemptStatus) bool {
	return s == AttemptCompleted || s == AttemptPassed || s == AttemptFailed
}

// ScormAttempt 每个(student, lesson)只有一行；launch_token是访问运行时
// 接口和课件资源的唯一凭证，每次重新启动都会整行轮换
// swagger:model
type ScormAttempt struct {
	BaseModel
	ScormPackageID uint `gorm:"index;type:bigint unsigned;not null" json:"scormPackageId"`
	LessonID       uint `gorm:"uniqueIndex:idx_attempt_student_lesson,priority:2;type:bigint unsigned;not null" json:"lessonId"`
	StudentID      uint `gorm:"uniqueIndex:idx_attempt_student_lesson,priority:1;type:bigint unsigned;not null" json:"studentId"`

	LaunchToken string             `gorm:"size:64;index;not null" json:"-"`
	Status      ScormAttemptStatus `gorm:"type:enum('not_started','in_progress','completed','passed','failed');default:'not_started'" json:"status"`

	CompletionStatus *string  `gorm:"size:50" json:"completionStatus,omitempty"`
	SuccessStatus    *string  `gorm:"size:50" json:"successStatus,omitempty"`
	ScoreRaw         *float64 `json:"scoreRaw,omitempty"`
	TotalTimeSeconds int      `gorm:"default:0" json:"totalTimeSeconds"`
	LessonLocation   *string  `gorm:"size:1024" json:"lessonLocation,omitempty"`
	SuspendData      *string  `gorm:"type:text" json:"suspendData,omitempty"`

	// SCORM数据模型的完整快照 key→string
	RuntimeState datatypes.JSON `gorm:"type:json" json:"runtimeState"`

	StartedAt      time.Time  `gorm:"autoCreateTime" json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	LastAccessedAt time.Time  `gorm:"autoCreateTime" json:"lastAccessedAt"`
}

func (ScormAttempt) TableName() string {
	return "scorm_attempts"
}

// RuntimeStateMap 解出key→string快照，空或损坏时返回空map
func (a *ScormAttempt) RuntimeStateMap() map[string]string {
	state := map[string]string{}
	if len(a.RuntimeState) == 0 {
		return state
	}
	if err := json.Unmarshal(a.RuntimeState, &state); err != nil {
		return map[string]string{}
	}
	return state
}

func (a *ScormAttempt) SetRuntimeState(state map[string]string) error {
	if state == nil {
		state = map[string]string{}
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	a.RuntimeState = datatypes.JSON(raw)
	return nil
}
