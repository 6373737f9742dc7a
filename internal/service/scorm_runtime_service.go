package service

import (
	"context"
	"crypto/rand"
	"edu_market_backend/internal/model"
	"edu_market_backend/internal/repository"
	"edu_market_backend/internal/scorm"
	"edu_market_backend/internal/util"
	"edu_market_backend/pkg/logger"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ScormRuntimeService attempt生命周期和运行时状态提交。
// token是运行时接口的唯一凭证，查不到(attemptId, token)一律当不存在处理。
type ScormRuntimeService struct {
	CourseRepo   *repository.CourseRepository
	PackageRepo  *repository.ScormPackageRepository
	AttemptRepo  *repository.ScormAttemptRepository
	ProgressRepo *repository.ProgressRepository
	Access       *CourseAccessService
}

func NewScormRuntimeService(
	courseRepo *repository.CourseRepository,
	packageRepo *repository.ScormPackageRepository,
	attemptRepo *repository.ScormAttemptRepository,
	progressRepo *repository.ProgressRepository,
	access *CourseAccessService,
) *ScormRuntimeService {
	return &ScormRuntimeService{
		CourseRepo:   courseRepo,
		PackageRepo:  packageRepo,
		AttemptRepo:  attemptRepo,
		ProgressRepo: progressRepo,
		Access:       access,
	}
}

type StartAttemptResult struct {
	AttemptID uint                     `json:"attemptId"`
	LaunchURL string                   `json:"launchUrl"`
	Status    model.ScormAttemptStatus `json:"status"`
}

// newLaunchToken 256位随机数的hex编码
func newLaunchToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// nextTotalTime total_time_seconds只增不减：快照里没有时长或时长倒退时保留旧值
func nextTotalTime(prev int, parsed *int) int {
	if parsed != nil && *parsed > prev {
		return *parsed
	}
	return prev
}

// StartAttempt 同一(student, lesson)只有一行attempt：已存在就原地轮换token，
// 不存在才新建。重新启动不清空已累计的进度和状态。
func (s *ScormRuntimeService) StartAttempt(ctx context.Context, studentID, lessonID uint) (*StartAttemptResult, error) {
	lesson, err := s.CourseRepo.FindLessonByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if lesson.Type != model.LessonScorm {
		return nil, util.ErrNotScormLesson
	}

	pkg, err := s.PackageRepo.FindByLessonID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPackageNotFound
		}
		return nil, err
	}

	hasAccess, _, err := s.Access.CheckAccess(ctx, studentID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if !hasAccess {
		return nil, util.ErrNoCourseAccess
	}

	token, err := newLaunchToken()
	if err != nil {
		return nil, err
	}

	var attempt *model.ScormAttempt
	existing, err := s.AttemptRepo.FindByStudentAndLesson(studentID, lessonID)
	switch {
	case err == nil:
		attempt, err = s.AttemptRepo.RotateLaunchToken(existing.ID, token)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		attempt = &model.ScormAttempt{
			ScormPackageID: pkg.ID,
			LessonID:       lessonID,
			StudentID:      studentID,
			LaunchToken:    token,
			Status:         model.AttemptNotStarted,
		}
		if err := s.AttemptRepo.Create(attempt); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.upsertProgress(studentID, lessonID, attempt.Status)

	return &StartAttemptResult{
		AttemptID: attempt.ID,
		LaunchURL: fmt.Sprintf("/api/scorm/runtime/%s/%d/launch", token, attempt.ID),
		Status:    attempt.Status,
	}, nil
}

func (s *ScormRuntimeService) upsertProgress(studentID, lessonID uint, status model.ScormAttemptStatus) {
	progress := model.ProgressInProgress
	if model.IsCompletedStatus(status) {
		progress = model.ProgressCompleted
	}
	if err := s.ProgressRepo.Upsert(studentID, lessonID, progress); err != nil {
		logger.Log.Warn("lesson progress upsert failed",
			zap.Uint("studentId", studentID),
			zap.Uint("lessonId", lessonID),
			zap.Error(err))
	}
}

func (s *ScormRuntimeService) findAttempt(attemptID uint, token string) (*model.ScormAttempt, error) {
	if token == "" {
		return nil, util.ErrAttemptNotFound
	}
	attempt, err := s.AttemptRepo.FindByIDAndToken(attemptID, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return attempt, nil
}

// LaunchHTML 组装自包含启动页；资源URL逐段转义，路径里带空格/中文的课件也能加载
func (s *ScormRuntimeService) LaunchHTML(token string, attemptID uint) (string, error) {
	attempt, err := s.findAttempt(attemptID, token)
	if err != nil {
		return "", err
	}

	pkg, err := s.PackageRepo.FindByID(attempt.ScormPackageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrAttemptNotFound
		}
		return "", err
	}

	segments := strings.Split(pkg.LaunchPath, "/")
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	launchAssetURL := fmt.Sprintf("/api/scorm/runtime/%s/%d/assets/%s",
		token, attempt.ID, strings.Join(escaped, "/"))

	return scorm.SerializeLaunchHTML(scorm.LaunchPage{
		AttemptID:      attempt.ID,
		Token:          token,
		LaunchAssetURL: launchAssetURL,
		PackageTitle:   pkg.Title,
		RuntimeState:   attempt.RuntimeStateMap(),
	})
}

type RuntimeStateView struct {
	RuntimeState     map[string]string        `json:"runtimeState"`
	Status           model.ScormAttemptStatus `json:"status"`
	CompletionStatus *string                  `json:"completion_status"`
	SuccessStatus    *string                  `json:"success_status"`
}

func (s *ScormRuntimeService) GetState(token string, attemptID uint) (*RuntimeStateView, error) {
	attempt, err := s.findAttempt(attemptID, token)
	if err != nil {
		return nil, err
	}
	return &RuntimeStateView{
		RuntimeState:     attempt.RuntimeStateMap(),
		Status:           attempt.Status,
		CompletionStatus: attempt.CompletionStatus,
		SuccessStatus:    attempt.SuccessStatus,
	}, nil
}

// CommitState 客户端提交的完整数据模型快照：限幅归一化后整体落库（每次提交
// 以最后落地者为准，多tab并发不做合并），再从快照推导attempt状态。
// total_time_seconds只增不减，completed_at由SQL的COALESCE保证只写一次。
func (s *ScormRuntimeService) CommitState(token string, attemptID uint, rawState interface{}) (*RuntimeStateView, error) {
	attempt, err := s.findAttempt(attemptID, token)
	if err != nil {
		return nil, err
	}

	normalized := scorm.NormalizeRuntimeState(rawState)
	derived := scorm.DeriveAttemptStatus(normalized, string(attempt.Status))

	total := nextTotalTime(attempt.TotalTimeSeconds, derived.TotalTimeSeconds)

	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}

	status := model.ScormAttemptStatus(derived.Status)
	updated, err := s.AttemptRepo.UpdateRuntime(attempt.ID, repository.RuntimeUpdate{
		RuntimeState:     datatypes.JSON(raw),
		Status:           status,
		CompletionStatus: derived.CompletionStatus,
		SuccessStatus:    derived.SuccessStatus,
		ScoreRaw:         derived.ScoreRaw,
		TotalTimeSeconds: total,
		LessonLocation:   derived.LessonLocation,
		SuspendData:      derived.SuspendData,
		EnteredFinal:     model.IsFinalStatus(status),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}

	s.upsertProgress(updated.StudentID, updated.LessonID, updated.Status)

	return &RuntimeStateView{
		RuntimeState:     updated.RuntimeStateMap(),
		Status:           updated.Status,
		CompletionStatus: updated.CompletionStatus,
		SuccessStatus:    updated.SuccessStatus,
	}, nil
}

// ResolveAsset 请求期的独立沙箱校验。目录自动回退到其下的index.html，
// 永远不产生目录列表。
func (s *ScormRuntimeService) ResolveAsset(token string, attemptID uint, rawPath string) (string, error) {
	attempt, err := s.findAttempt(attemptID, token)
	if err != nil {
		return "", err
	}

	pkg, err := s.PackageRepo.FindByID(attempt.ScormPackageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrAttemptNotFound
		}
		return "", err
	}

	rel, err := scorm.SanitizeRelativePath(rawPath)
	if err != nil {
		return "", err
	}

	resolved, err := scorm.ResolveInsideRoot(pkg.StoragePath, rel)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", util.ErrAssetNotFound
	}
	if info.IsDir() {
		resolved, err = scorm.ResolveInsideRoot(pkg.StoragePath, rel+"/index.html")
		if err != nil {
			return "", err
		}
		info, err = os.Stat(resolved)
		if err != nil || info.IsDir() {
			return "", util.ErrAssetNotFound
		}
	}
	return resolved, nil
}
