package scorm

import (
	"edu_market_backend/internal/util"
	"path"
	"path/filepath"
	"strings"
)

// SanitizeRelativePath 规范化不可信的相对路径：反斜杠统一成正斜杠、去掉前导斜杠、
// 词法折叠 "."/".."。结果为空、以".."开头或是绝对路径时判为越界。
func SanitizeRelativePath(raw string) (string, error) {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, "\\", "/")
	normalized = strings.TrimLeft(normalized, "/")

	safe := path.Clean(normalized)
	for strings.HasPrefix(safe, "../") {
		safe = strings.TrimPrefix(safe, "../")
	}

	if safe == "" || safe == "." || safe == ".." || strings.HasPrefix(safe, "..") || path.IsAbs(safe) {
		return "", util.ErrPathViolation
	}
	return safe, nil
}

// ResolveInsideRoot 把相对路径落到root下并保证解析结果不越出root。
// 导入时校验manifest声明的启动文件、请求时校验资源路径，两处各自独立调用。
func ResolveInsideRoot(root, relativePath string) (string, error) {
	resolvedRoot, err := filepath.Abs(root)
	if err != nil {
		return "", util.ErrPathViolation
	}

	segments := strings.Split(relativePath, "/")
	target := filepath.Join(append([]string{resolvedRoot}, segments...)...)
	resolvedTarget, err := filepath.Abs(target)
	if err != nil {
		return "", util.ErrPathViolation
	}

	if resolvedTarget == resolvedRoot {
		return resolvedTarget, nil
	}
	if !strings.HasPrefix(resolvedTarget, resolvedRoot+string(filepath.Separator)) {
		return "", util.ErrPathViolation
	}
	return resolvedTarget, nil
}
