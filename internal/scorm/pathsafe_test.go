package scorm

import (
	"edu_market_backend/internal/util"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeRelativePath(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "content/index.html", "content/index.html", false},
		{"backslashes", `content\media\video.mp4`, "content/media/video.mp4", false},
		{"leading slash", "/content/index.html", "content/index.html", false},
		{"many leading slashes", "///content/index.html", "content/index.html", false},
		{"dot segments collapsed", "content/./a/../index.html", "content/index.html", false},
		{"leading dotdot stripped", "../content/index.html", "content/index.html", false},
		{"repeated dotdot stripped", "../../../etc/passwd", "etc/passwd", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"dot only", ".", "", true},
		{"dotdot only", "..", "", true},
		{"dotdot climbing past segment", "a/../../secret", "secret", false},
		{"windows traversal", `..\..\windows\system32`, "windows/system32", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SanitizeRelativePath(tc.input)
			if tc.wantErr {
				if !errors.Is(err, util.ErrPathViolation) {
					t.Fatalf("expected path violation, got %v (result %q)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveInsideRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "content"), 0755); err != nil {
		t.Fatal(err)
	}

	resolved, err := ResolveInsideRoot(root, "content/index.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(root, "content", "index.html")
	if resolved != want {
		t.Fatalf("got %q, want %q", resolved, want)
	}
}

func TestResolveInsideRootRejectsEscape(t *testing.T) {
	root := t.TempDir()

	for _, rel := range []string{"..", "../outside", "content/../../outside"} {
		if _, err := ResolveInsideRoot(root, rel); !errors.Is(err, util.ErrPathViolation) {
			t.Fatalf("path %q: expected path violation, got %v", rel, err)
		}
	}
}

func TestResolveInsideRootRejectsSiblingPrefix(t *testing.T) {
	// /tmp/xxx 与 /tmp/xxx-evil 有共同前缀但不是子目录
	root := t.TempDir()
	sibling := root + "-evil"
	if err := os.MkdirAll(sibling, 0755); err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(sibling)

	if _, err := ResolveInsideRoot(root, "../"+filepath.Base(sibling)); !errors.Is(err, util.ErrPathViolation) {
		t.Fatalf("expected path violation for sibling dir, got %v", err)
	}
}
