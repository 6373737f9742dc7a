package scorm

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeRuntimeStateNonObject(t *testing.T) {
	for _, input := range []interface{}{nil, "string", 42.0, []interface{}{"a"}, true} {
		got := NormalizeRuntimeState(input)
		if len(got) != 0 {
			t.Errorf("input %v: expected empty map, got %v", input, got)
		}
	}
}

func TestNormalizeRuntimeStateBounds(t *testing.T) {
	longKey := strings.Repeat("a", 300)
	longValue := strings.Repeat("y", 30000)

	got := NormalizeRuntimeState(map[string]interface{}{
		longKey: "x",
		"":      "dropped too",
		"ok":    longValue,
	})

	if _, exists := got[longKey]; exists {
		t.Error("oversized key should be dropped")
	}
	if _, exists := got[""]; exists {
		t.Error("empty key should be dropped")
	}
	if utf8.RuneCountInString(got["ok"]) != maxStateValueLen {
		t.Errorf("value length = %d, want %d", utf8.RuneCountInString(got["ok"]), maxStateValueLen)
	}
}

func TestNormalizeRuntimeStateCoercion(t *testing.T) {
	got := NormalizeRuntimeState(map[string]interface{}{
		"str":  "hello",
		"num":  87.5,
		"int":  42.0,
		"bool": true,
		"null": nil,
	})

	cases := map[string]string{
		"str":  "hello",
		"num":  "87.5",
		"int":  "42",
		"bool": "true",
		"null": "",
	}
	for key, want := range cases {
		if got[key] != want {
			t.Errorf("key %q = %q, want %q", key, got[key], want)
		}
	}

	// 255字符的键恰好在界内
	got2 := NormalizeRuntimeState(map[string]interface{}{strings.Repeat("k", 255): "v"})
	if got2[strings.Repeat("k", 255)] != "v" {
		t.Error("255-char key should be kept")
	}
}

func TestParseDurationSeconds(t *testing.T) {
	ptr := func(n int) *int { return &n }

	cases := []struct {
		input string
		want  *int
	}{
		{"0000:05:30", ptr(330)},
		{"1:02:03", ptr(3723)},
		{"0000:05:30.55", ptr(330)},
		{"9999:00:00", ptr(9999 * 3600)},
		{"PT1H30M15S", ptr(5415)},
		{"PT30S", ptr(30)},
		{"pt2h", ptr(7200)},
		{"PT0.5H", ptr(1800)},
		{"", nil},
		{"garbage", nil},
		{"12:99:00", nil},
		{"1h30m", nil},
	}

	for _, tc := range cases {
		got := ParseDurationSeconds(tc.input)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("%q: got %d, want nil", tc.input, *got)
		case tc.want != nil && got == nil:
			t.Errorf("%q: got nil, want %d", tc.input, *tc.want)
		case tc.want != nil && got != nil && *got != *tc.want:
			t.Errorf("%q: got %d, want %d", tc.input, *got, *tc.want)
		}
	}
}

func TestDeriveAttemptStatusPrecedence(t *testing.T) {
	cases := []struct {
		name  string
		state map[string]string
		want  string
	}{
		{
			"failed outranks completed",
			map[string]string{"cmi.core.lesson_status": "completed", "cmi.success_status": "failed"},
			StatusFailed,
		},
		{
			"failed outranks passed",
			map[string]string{"cmi.core.lesson_status": "passed", "cmi.success_status": "failed"},
			StatusFailed,
		},
		{
			"passed outranks completed",
			map[string]string{"cmi.completion_status": "completed", "cmi.success_status": "passed"},
			StatusPassed,
		},
		{
			"legacy passed",
			map[string]string{"cmi.core.lesson_status": "passed"},
			StatusPassed,
		},
		{
			"legacy failed",
			map[string]string{"cmi.core.lesson_status": "failed"},
			StatusFailed,
		},
		{
			"2004 completed",
			map[string]string{"cmi.completion_status": "completed"},
			StatusCompleted,
		},
		{
			"incomplete stays in progress",
			map[string]string{"cmi.core.lesson_status": "incomplete"},
			StatusInProgress,
		},
		{
			"empty state",
			map[string]string{},
			StatusInProgress,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			derived := DeriveAttemptStatus(tc.state, StatusNotStarted)
			if derived.Status != tc.want {
				t.Errorf("status = %q, want %q", derived.Status, tc.want)
			}
		})
	}
}

func TestDeriveAttemptStatusIncomplete(t *testing.T) {
	derived := DeriveAttemptStatus(map[string]string{"cmi.core.lesson_status": "incomplete"}, StatusNotStarted)
	if derived.Status != StatusInProgress {
		t.Errorf("status = %q, want in_progress", derived.Status)
	}
	if derived.CompletionStatus == nil || *derived.CompletionStatus != "incomplete" {
		t.Errorf("completionStatus = %v, want incomplete", derived.CompletionStatus)
	}
}

func TestDeriveAttemptStatusInferredFields(t *testing.T) {
	derived := DeriveAttemptStatus(map[string]string{"cmi.core.lesson_status": "passed"}, StatusNotStarted)
	if derived.CompletionStatus == nil || *derived.CompletionStatus != "completed" {
		t.Errorf("completionStatus = %v, want inferred completed", derived.CompletionStatus)
	}
	if derived.SuccessStatus == nil || *derived.SuccessStatus != "passed" {
		t.Errorf("successStatus = %v, want inferred passed", derived.SuccessStatus)
	}
}

func TestDeriveAttemptStatusScore(t *testing.T) {
	derived := DeriveAttemptStatus(map[string]string{"cmi.score.raw": "87.5"}, StatusNotStarted)
	if derived.ScoreRaw == nil || *derived.ScoreRaw != 87.5 {
		t.Errorf("scoreRaw = %v, want 87.5", derived.ScoreRaw)
	}

	// 2004字段缺失时回退1.2
	derived = DeriveAttemptStatus(map[string]string{"cmi.core.score.raw": "60"}, StatusNotStarted)
	if derived.ScoreRaw == nil || *derived.ScoreRaw != 60 {
		t.Errorf("scoreRaw = %v, want 60", derived.ScoreRaw)
	}

	derived = DeriveAttemptStatus(map[string]string{"cmi.score.raw": "not-a-number"}, StatusNotStarted)
	if derived.ScoreRaw != nil {
		t.Errorf("scoreRaw = %v, want nil for non-numeric", derived.ScoreRaw)
	}
}

func TestDeriveAttemptStatusLocationAndSuspend(t *testing.T) {
	derived := DeriveAttemptStatus(map[string]string{
		"cmi.location":     "page-7",
		"cmi.suspend_data": "blob",
		"cmi.total_time":   "PT10M",
	}, StatusNotStarted)

	if derived.LessonLocation == nil || *derived.LessonLocation != "page-7" {
		t.Errorf("lessonLocation = %v", derived.LessonLocation)
	}
	if derived.SuspendData == nil || *derived.SuspendData != "blob" {
		t.Errorf("suspendData = %v", derived.SuspendData)
	}
	if derived.TotalTimeSeconds == nil || *derived.TotalTimeSeconds != 600 {
		t.Errorf("totalTimeSeconds = %v, want 600", derived.TotalTimeSeconds)
	}

	// 1.2字段名回退
	derived = DeriveAttemptStatus(map[string]string{"cmi.core.lesson_location": "bookmark"}, StatusNotStarted)
	if derived.LessonLocation == nil || *derived.LessonLocation != "bookmark" {
		t.Errorf("lessonLocation = %v, want 1.2 fallback", derived.LessonLocation)
	}
}
