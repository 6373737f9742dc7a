package service

import (
	"edu_market_backend/internal/config"
	"edu_market_backend/internal/util"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestDeriveCourseTitle(t *testing.T) {
	cases := []struct {
		name          string
		override      string
		manifestTitle string
		fileName      string
		want          string
	}{
		{"override wins", "My Course", "Manifest Title", "pkg.zip", "My Course"},
		{"manifest fallback", "", "Manifest Title", "pkg.zip", "Manifest Title"},
		{"filename separators become spaces", "", "", "golf_explained.zip", "golf explained"},
		{"separator runs collapse", "", "", "my--course__pack.zip", "my course pack"},
		{"whitespace override ignored", "   ", "Manifest Title", "pkg.zip", "Manifest Title"},
		{"everything empty", "", "", "", "SCORM Course"},
		{"extension only", "", "", ".zip", "SCORM Course"},
		{"separators only", "", "", "___.zip", "SCORM Course"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := deriveCourseTitle(tc.override, tc.manifestTitle, tc.fileName)
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFindManifest(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "scorm"), 0755); err != nil {
		t.Fatal(err)
	}
	// 大小写不敏感匹配
	if err := os.WriteFile(filepath.Join(root, "scorm", "IMSManifest.XML"), []byte("<manifest/>"), 0644); err != nil {
		t.Fatal(err)
	}

	rel, err := findManifest(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel != "scorm/IMSManifest.XML" {
		t.Errorf("got %q, want %q", rel, "scorm/IMSManifest.XML")
	}
}

func TestFindManifestMissing(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "other.xml"), []byte("<x/>"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := findManifest(root); !errors.Is(err, util.ErrManifestMissing) {
		t.Fatalf("expected ErrManifestMissing, got %v", err)
	}
}

func TestScormImportServiceReloadConfig(t *testing.T) {
	svc := NewScormImportService(nil, &config.Config{
		Scorm: config.ScormConfig{DownloadTimeoutSeconds: 30},
	})

	newCfg := &config.Config{Scorm: config.ScormConfig{DownloadTimeoutSeconds: 5}}
	svc.ReloadConfig(newCfg)

	cfg, client := svc.snapshot()
	if cfg != newCfg {
		t.Error("snapshot should return the reloaded config")
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("client timeout = %v, want 5s", client.Timeout)
	}
}

// 热更新换入新指针，并发读快照不会撞上半写状态
func TestScormImportServiceReloadConfigConcurrent(t *testing.T) {
	svc := NewScormImportService(nil, &config.Config{
		Scorm: config.ScormConfig{DownloadTimeoutSeconds: 30},
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				cfg, client := svc.snapshot()
				if cfg == nil || client == nil {
					t.Error("snapshot returned nil")
					return
				}
			}
		}()
	}
	for i := 0; i < 200; i++ {
		svc.ReloadConfig(&config.Config{
			Scorm: config.ScormConfig{DownloadTimeoutSeconds: i%60 + 1},
		})
	}
	wg.Wait()
}
