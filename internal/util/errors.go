package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrPermissionDenied = errors.New("permission denied")

	ErrLessonNotFound  = errors.New("lesson not found")
	ErrNotScormLesson  = errors.New("lesson is not a SCORM lesson")
	ErrPackageNotFound = errors.New("SCORM package not found for lesson")
	ErrAttemptNotFound = errors.New("SCORM attempt not found")
	ErrNoCourseAccess  = errors.New("no active access for this course")
	ErrAssetNotFound   = errors.New("SCORM asset not found")

	// 导入失败族：全部以400+消息返回给调用方
	ErrPackageEmpty          = errors.New("downloaded SCORM package is empty")
	ErrPackageTooLarge       = errors.New("SCORM package exceeds maximum supported size")
	ErrExtractionUnavailable = errors.New("SCORM extractor is not available on the server (missing unzip)")
	ErrExtractionFailed      = errors.New("failed to extract SCORM package archive")
	ErrManifestMissing       = errors.New("SCORM package is missing imsmanifest.xml")
	ErrManifestNoLaunch      = errors.New("SCORM manifest does not contain a launch href")
	ErrManifestBadLaunch     = errors.New("invalid launch path in SCORM manifest")

	// 路径越界：对外永远折叠成404，不回显细节
	ErrPathViolation = errors.New("invalid path")
)

// IsImportError 导入失败族错误（对外表现为400+原因）
func IsImportError(err error) bool {
	for _, target := range []error{
		ErrPackageEmpty,
		ErrPackageTooLarge,
		ErrExtractionUnavailable,
		ErrExtractionFailed,
		ErrManifestMissing,
		ErrManifestNoLaunch,
		ErrManifestBadLaunch,
		ErrPathViolation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
