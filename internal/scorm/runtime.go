package scorm

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxStateKeyLen   = 255
	maxStateValueLen = 20000
)

const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusPassed     = "passed"
	StatusFailed     = "failed"
)

// NormalizeRuntimeState 客户端提交的数据模型快照先限幅再入库：
// 只接受对象；空键或超过255字符的键丢弃；值一律转成字符串并截断到两万字符
func NormalizeRuntimeState(input interface{}) map[string]string {
	normalized := map[string]string{}

	obj, ok := input.(map[string]interface{})
	if !ok {
		return normalized
	}

	for key, value := range obj {
		if key == "" || utf8.RuneCountInString(key) > maxStateKeyLen {
			continue
		}
		normalized[key] = truncateRunes(stateValueString(value), maxStateValueLen)
	}
	return normalized
}

func stateValueString(input interface{}) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// Derived 一次提交归并出的attempt状态
type Derived struct {
	Status           string
	CompletionStatus *string
	SuccessStatus    *string
	LessonLocation   *string
	SuspendData      *string
	ScoreRaw         *float64
	TotalTimeSeconds *int
}

func normalizeStatusValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

var (
	hhmmssRe = regexp.MustCompile(`^(\d{1,4}):([0-5]?\d):([0-5]?\d)(?:\.(\d+))?$`)
	isoRe    = regexp.MustCompile(`(?i)^P(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)$`)
)

// ParseDurationSeconds 支持两种时长格式：1.2的 HHHH:MM:SS[.ff]（小时不限位数）
// 和2004的 ISO-8601 PT#H#M#S；其余一概返回nil
func ParseDurationSeconds(rawValue string) *int {
	value := strings.TrimSpace(rawValue)
	if value == "" {
		return nil
	}

	if m := hhmmssRe.FindStringSubmatch(value); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		seconds, _ := strconv.Atoi(m[3])
		total := hours*3600 + minutes*60 + seconds
		return &total
	}

	if m := isoRe.FindStringSubmatch(value); m != nil {
		hours := parseFloatDefault(m[1], 0)
		minutes := parseFloatDefault(m[2], 0)
		seconds := parseFloatDefault(m[3], 0)
		total := int(math.Round(hours*3600 + minutes*60 + seconds))
		return &total
	}

	return nil
}

func parseFloatDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func parseScore(value string) *float64 {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	return &parsed
}

func lookupEither(state map[string]string, primary, fallback string) *string {
	if v, ok := state[primary]; ok {
		return &v
	}
	if v, ok := state[fallback]; ok {
		return &v
	}
	return nil
}

// DeriveAttemptStatus 把1.2/2004两套互不兼容的字段词汇归并成统一的attempt状态。
// 优先级：failed > passed > completed > in_progress——判定出passed/failed的提交
// 永远压过裸的completed（学员可以“完成但不及格”）。
func DeriveAttemptStatus(runtimeState map[string]string, fallbackStatus string) Derived {
	lessonStatus := normalizeStatusValue(runtimeState["cmi.core.lesson_status"])

	var completionStatus *string
	if explicit := normalizeStatusValue(runtimeState["cmi.completion_status"]); explicit != "" {
		completionStatus = &explicit
	} else if lessonStatus == "completed" || lessonStatus == "passed" {
		v := "completed"
		completionStatus = &v
	} else if lessonStatus == "incomplete" || lessonStatus == "browsed" {
		v := "incomplete"
		completionStatus = &v
	}

	var successStatus *string
	if explicit := normalizeStatusValue(runtimeState["cmi.success_status"]); explicit != "" {
		successStatus = &explicit
	} else if lessonStatus == "passed" || lessonStatus == "failed" {
		v := lessonStatus
		successStatus = &v
	}

	status := StatusInProgress
	switch {
	case derefEq(successStatus, "failed") || lessonStatus == "failed":
		status = StatusFailed
	case derefEq(successStatus, "passed") || lessonStatus == "passed":
		status = StatusPassed
	case derefEq(completionStatus, "completed") || lessonStatus == "completed":
		status = StatusCompleted
	}

	var scoreRaw *float64
	if raw := lookupEither(runtimeState, "cmi.score.raw", "cmi.core.score.raw"); raw != nil {
		scoreRaw = parseScore(*raw)
	}

	var totalTimeSeconds *int
	if raw := lookupEither(runtimeState, "cmi.total_time", "cmi.core.total_time"); raw != nil {
		totalTimeSeconds = ParseDurationSeconds(*raw)
	}

	lessonLocation := lookupEither(runtimeState, "cmi.location", "cmi.core.lesson_location")

	var suspendData *string
	if v, ok := runtimeState["cmi.suspend_data"]; ok {
		suspendData = &v
	}

	return Derived{
		Status:           status,
		CompletionStatus: completionStatus,
		SuccessStatus:    successStatus,
		LessonLocation:   lessonLocation,
		SuspendData:      suspendData,
		ScoreRaw:         scoreRaw,
		TotalTimeSeconds: totalTimeSeconds,
	}
}

func derefEq(p *string, want string) bool {
	return p != nil && *p == want
}
