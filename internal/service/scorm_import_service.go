package service

import (
	"context"
	"edu_market_backend/internal/config"
	"edu_market_backend/internal/model"
	"edu_market_backend/internal/scorm"
	"edu_market_backend/internal/util"
	"edu_market_backend/pkg/logger"
	"edu_market_backend/pkg/monitoring"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ScormImportService 课件包导入：下载→解压→解析manifest→校验启动文件→
// 一个事务里建课程/章节/课时/包记录。任何一步失败都回滚并清掉已落盘的文件。
type ScormImportService struct {
	DB *gorm.DB

	mu     sync.RWMutex
	cfg    *config.Config
	client *http.Client
}

func NewScormImportService(db *gorm.DB, cfg *config.Config) *ScormImportService {
	return &ScormImportService{
		DB:  db,
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Scorm.DownloadTimeout(),
		},
	}
}

// snapshot 每次导入取一份一致的配置和client，导入中途热更新不影响进行中的请求
func (s *ScormImportService) snapshot() (*config.Config, *http.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.client
}

// ReloadConfig 热更新整体换入新配置和新client，不在正在被请求读取的对象上改字段
func (s *ScormImportService) ReloadConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.client = &http.Client{Timeout: cfg.Scorm.DownloadTimeout()}
}

type ImportParams struct {
	InstructorID uint
	PackageURL   string
	FileName     string
	Title        string
	Description  string
	Price        float64
}

type ImportResult struct {
	Course  *model.Course        `json:"course"`
	Section *model.CourseSection `json:"section"`
	Lesson  *model.CourseLesson  `json:"lesson"`
	Package *model.ScormPackage  `json:"scormPackage"`
}

func (s *ScormImportService) Import(ctx context.Context, params ImportParams) (*ImportResult, error) {
	start := time.Now()
	result, err := s.doImport(ctx, params)

	monitoring.ScormImportDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		monitoring.ScormImportCounter.WithLabelValues("failure").Inc()
	} else {
		monitoring.ScormImportCounter.WithLabelValues("success").Inc()
	}
	return result, err
}

func (s *ScormImportService) doImport(ctx context.Context, params ImportParams) (*ImportResult, error) {
	cfg, client := s.snapshot()

	workDir := filepath.Join(cfg.Scorm.StorageRoot, uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, err
	}

	result, err := s.importInto(ctx, cfg, client, workDir, params)
	if err != nil {
		// 磁盘清理是advisory的，失败只记日志；DB一致性由事务回滚保证
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logger.Log.Warn("scorm import cleanup failed",
				zap.String("workDir", workDir),
				zap.Error(rmErr))
		}
		return nil, err
	}
	return result, nil
}

func (s *ScormImportService) importInto(ctx context.Context, cfg *config.Config, client *http.Client, workDir string, params ImportParams) (*ImportResult, error) {
	archivePath := filepath.Join(workDir, "package.zip")
	if err := fetchArchive(ctx, cfg, client, params.PackageURL, archivePath); err != nil {
		return nil, err
	}

	extractDir := filepath.Join(workDir, "content")
	if err := extractArchive(ctx, archivePath, extractDir); err != nil {
		return nil, err
	}
	os.Remove(archivePath)

	manifestRel, err := findManifest(extractDir)
	if err != nil {
		return nil, err
	}

	manifestXML, err := os.ReadFile(filepath.Join(extractDir, filepath.FromSlash(manifestRel)))
	if err != nil {
		return nil, util.ErrManifestMissing
	}

	manifest, err := scorm.ParseManifest(string(manifestXML), manifestRel)
	if err != nil {
		return nil, err
	}

	// 导入期的独立沙箱校验：manifest声明的启动文件必须真实存在于解压根内
	launchRel, err := scorm.SanitizeRelativePath(manifest.LaunchPath)
	if err != nil {
		return nil, err
	}
	launchAbs, err := scorm.ResolveInsideRoot(extractDir, launchRel)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(launchAbs); err != nil || info.IsDir() {
		return nil, util.ErrManifestBadLaunch
	}

	storagePath, err := filepath.Abs(extractDir)
	if err != nil {
		return nil, err
	}

	title := deriveCourseTitle(params.Title, manifest.Title, params.FileName)

	var out ImportResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		course := &model.Course{
			Title:        title,
			Description:  params.Description,
			Category:     "SCORM",
			Price:        params.Price,
			Status:       model.CourseDraft,
			InstructorID: params.InstructorID,
		}
		if err := tx.Create(course).Error; err != nil {
			return err
		}

		section := &model.CourseSection{
			CourseID: course.ID,
			Title:    "SCORM Package",
			Position: 0,
		}
		if err := tx.Create(section).Error; err != nil {
			return err
		}

		lesson := &model.CourseLesson{
			CourseID:  course.ID,
			SectionID: section.ID,
			Title:     title,
			Type:      model.LessonScorm,
			Position:  0,
		}
		if err := tx.Create(lesson).Error; err != nil {
			return err
		}

		instructorID := params.InstructorID
		pkg := &model.ScormPackage{
			CourseID:     course.ID,
			SectionID:    section.ID,
			LessonID:     lesson.ID,
			Title:        title,
			PackageURL:   params.PackageURL,
			StoragePath:  storagePath,
			ManifestPath: manifestRel,
			LaunchPath:   launchRel,
			ScormVersion: model.ScormVersion(manifest.Version),
			CreatedBy:    &instructorID,
		}
		if manifest.ManifestIdentifier != "" {
			identifier := manifest.ManifestIdentifier
			pkg.ManifestIdentifier = &identifier
		}
		if err := tx.Create(pkg).Error; err != nil {
			return err
		}

		// 课时content回填一个小描述符，前端靠它定位运行时入口
		descriptor, err := json.Marshal(map[string]interface{}{
			"scorm_package_id": pkg.ID,
			"launch_path":      pkg.LaunchPath,
			"version":          pkg.ScormVersion,
		})
		if err != nil {
			return err
		}
		content := string(descriptor)
		if err := tx.Model(lesson).Update("content", content).Error; err != nil {
			return err
		}
		lesson.Content = &content

		out = ImportResult{Course: course, Section: section, Lesson: lesson, Package: pkg}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("scorm package imported",
		zap.Uint("courseId", out.Course.ID),
		zap.Uint("packageId", out.Package.ID),
		zap.String("version", string(out.Package.ScormVersion)),
		zap.String("launchPath", out.Package.LaunchPath))

	return &out, nil
}

// fetchArchive 把包拉到本地：http(s) URL走带超时的下载，其余按本地上传路径处理。
// 体积超限和空包都是导入期错误。
func fetchArchive(ctx context.Context, cfg *config.Config, client *http.Client, packageURL, dst string) error {
	maxBytes := cfg.Scorm.MaxPackageBytes()

	var source io.ReadCloser
	if strings.HasPrefix(packageURL, "http://") || strings.HasPrefix(packageURL, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, packageURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("download SCORM package: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("download SCORM package: unexpected status %d", resp.StatusCode)
		}
		if resp.ContentLength > maxBytes {
			resp.Body.Close()
			return util.ErrPackageTooLarge
		}
		source = resp.Body
	} else {
		// 上传接口返回的本地URL（/uploads/...）直接从磁盘读
		localPath := filepath.Join(cfg.Storage.LocalPath,
			strings.TrimPrefix(strings.TrimPrefix(packageURL, "/api/uploads/"), "/uploads/"))
		f, err := os.Open(localPath)
		if err != nil {
			return fmt.Errorf("open local SCORM package: %w", err)
		}
		source = f
	}
	defer source.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(source, maxBytes+1))
	if err != nil {
		return err
	}
	if written == 0 {
		return util.ErrPackageEmpty
	}
	if written > maxBytes {
		return util.ErrPackageTooLarge
	}
	return nil
}

// extractArchive 解压交给外部unzip进程，工具缺失和解压失败是两类错误
func extractArchive(ctx context.Context, archivePath, extractDir string) error {
	if _, err := exec.LookPath("unzip"); err != nil {
		return util.ErrExtractionUnavailable
	}
	if err := os.MkdirAll(extractDir, 0755); err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "unzip", "-qq", "-o", archivePath, "-d", extractDir)
	if output, err := cmd.CombinedOutput(); err != nil {
		logger.Log.Warn("unzip failed",
			zap.String("archive", archivePath),
			zap.ByteString("output", output),
			zap.Error(err))
		return util.ErrExtractionFailed
	}
	return nil
}

// findManifest 大小写不敏感地在解压根下递归找imsmanifest.xml，返回POSIX相对路径
func findManifest(root string) (string, error) {
	found := ""
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(d.Name(), "imsmanifest.xml") {
			rel, relErr := filepath.Rel(root, p)
			if relErr != nil {
				return relErr
			}
			found = filepath.ToSlash(rel)
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", util.ErrManifestMissing
	}
	return found, nil
}

var fileNameSeparators = regexp.MustCompile(`[_-]+`)

// deriveCourseTitle 调用方覆盖 > manifest标题 > 文件名去扩展名（下划线/连字符转空格）
func deriveCourseTitle(override, manifestTitle, fileName string) string {
	if t := strings.TrimSpace(override); t != "" {
		return t
	}
	if t := strings.TrimSpace(manifestTitle); t != "" {
		return t
	}
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	base = strings.TrimSpace(fileNameSeparators.ReplaceAllString(base, " "))
	if base == "" {
		return "SCORM Course"
	}
	return base
}
