package service

import (
	"encoding/hex"
	"testing"
)

func TestNextTotalTimeMonotonic(t *testing.T) {
	ptr := func(n int) *int { return &n }

	cases := []struct {
		name   string
		prev   int
		parsed *int
		want   int
	}{
		{"snapshot without duration keeps previous", 330, nil, 330},
		{"lower value never shrinks total", 330, ptr(120), 330},
		{"equal value keeps total", 330, ptr(330), 330},
		{"higher value advances total", 330, ptr(450), 450},
		{"fresh attempt takes first value", 0, ptr(60), 60},
		{"fresh attempt without duration stays zero", 0, nil, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextTotalTime(tc.prev, tc.parsed); got != tc.want {
				t.Errorf("nextTotalTime(%d, %v) = %d, want %d", tc.prev, tc.parsed, got, tc.want)
			}
		})
	}
}

func TestNewLaunchToken(t *testing.T) {
	first, err := newLaunchToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("token length = %d, want 64 hex chars (256 bits)", len(first))
	}
	if _, err := hex.DecodeString(first); err != nil {
		t.Errorf("token is not valid hex: %v", err)
	}

	second, err := newLaunchToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Error("consecutive tokens must differ")
	}
}
