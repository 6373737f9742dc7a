package scorm

import (
	"strings"
	"testing"
)

func TestSerializeLaunchHTML(t *testing.T) {
	html, err := SerializeLaunchHTML(LaunchPage{
		AttemptID:      42,
		Token:          "deadbeef",
		LaunchAssetURL: "/api/scorm/runtime/deadbeef/42/assets/content/index.html",
		PackageTitle:   "Golf Explained",
		RuntimeState:   map[string]string{"cmi.core.lesson_status": "incomplete"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"<title>Golf Explained</title>",
		`"/api/scorm/runtime/deadbeef/42/state"`,
		`"/api/scorm/runtime/deadbeef/42/assets/content/index.html"`,
		`"cmi.core.lesson_status":"incomplete"`,
		"window.API =",
		"window.API_1484_11 =",
		"LMSInitialize",
		"Terminate",
		"beforeunload",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("launch html missing %q", want)
		}
	}
}

func TestSerializeLaunchHTMLEscapesTitle(t *testing.T) {
	html, err := SerializeLaunchHTML(LaunchPage{
		AttemptID:      1,
		Token:          "t",
		LaunchAssetURL: "/a",
		PackageTitle:   `<script>alert("x")</script>`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(html, `<script>alert`) {
		t.Error("title must be HTML-escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("escaped title not found")
	}
}

func TestSerializeLaunchHTMLNilState(t *testing.T) {
	html, err := SerializeLaunchHTML(LaunchPage{
		AttemptID:      1,
		Token:          "t",
		LaunchAssetURL: "/a",
		PackageTitle:   "Untitled",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "Object.assign({}, {})") {
		t.Error("nil runtime state should serialize as empty object")
	}
}
