package scorm

import (
	"edu_market_backend/internal/util"
	"path"
	"regexp"
	"strings"
)

const (
	Version12   = "1.2"
	Version2004 = "2004"
)

// Manifest imsmanifest.xml 解析结果
type Manifest struct {
	Title              string // 默认organization内的第一个<title>，可能为空
	LaunchPath         string // 相对解压根目录的POSIX路径
	ManifestPath       string
	ManifestIdentifier string
	Version            string // "1.2" | "2004"
}

var (
	attrRe          = regexp.MustCompile(`([\w:-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	manifestTagRe   = regexp.MustCompile(`(?i)<manifest\b([^>]*)>`)
	scorm2004Re     = regexp.MustCompile(`(?i)adlcp_v1p3|adlseq_v1p3|imsss_v1p0|2004`)
	organizationsRe = regexp.MustCompile(`(?i)<organizations\b([^>]*)>`)
	titleRe         = regexp.MustCompile(`(?is)<title>([^<]+)</title>`)
	itemTagRe       = regexp.MustCompile(`(?i)<item\b([^>]*)>`)
	resourceRe      = regexp.MustCompile(`(?is)<resource\b([^>]*)>(.*?)</resource>|<resource\b([^>]*)/>`)
	fileHrefRe      = regexp.MustCompile(`(?i)<file\b[^>]*href=(?:"([^"]*)"|'([^']*)')[^>]*/?>`)
)

// parseXMLAttributes 从一段标签属性文本里抓 key="value" / key='value' 对
func parseXMLAttributes(raw string) map[string]string {
	attributes := map[string]string{}
	for _, m := range attrRe.FindAllStringSubmatch(raw, -1) {
		value := m[2]
		if value == "" && m[3] != "" {
			value = m[3]
		}
		attributes[m[1]] = value
	}
	return attributes
}

func firstGroup(m []string, idx ...int) string {
	for _, i := range idx {
		if i < len(m) && m[i] != "" {
			return m[i]
		}
	}
	return ""
}

type resourceEntry struct {
	href     string
	fileHref string
}

// organizationBlock 按 <organizations default="X"> 把解析范围收窄到对应的
// <organization identifier="X">…</organization>；找不到就用整个文档
func organizationBlock(manifestXML string) string {
	orgsMatch := organizationsRe.FindStringSubmatch(manifestXML)
	if orgsMatch == nil {
		return manifestXML
	}
	defaultOrg := parseXMLAttributes(orgsMatch[1])["default"]
	if defaultOrg == "" {
		return manifestXML
	}

	quoted := regexp.QuoteMeta(defaultOrg)
	orgRe, err := regexp.Compile(`(?is)<organization\b[^>]*identifier=(?:"` + quoted + `"|'` + quoted + `')[^>]*>(.*?)</organization>`)
	if err != nil {
		return manifestXML
	}
	if m := orgRe.FindStringSubmatch(manifestXML); m != nil && m[1] != "" {
		return m[1]
	}
	return manifestXML
}

// ParseManifest 用定向正则抓取而不是完整XML解析——SCORM包事先没有经过
// schema校验，对残缺XML要尽量容忍；唯一致命的缺失是找不到启动href。
func ParseManifest(manifestXML, manifestPath string) (*Manifest, error) {
	manifestAttrs := map[string]string{}
	if m := manifestTagRe.FindStringSubmatch(manifestXML); m != nil {
		manifestAttrs = parseXMLAttributes(m[1])
	}

	version := Version12
	if scorm2004Re.MatchString(manifestXML) {
		version = Version2004
	}

	orgBlock := organizationBlock(manifestXML)

	title := ""
	if m := titleRe.FindStringSubmatch(orgBlock); m != nil {
		title = strings.TrimSpace(m[1])
	}

	targetRef := ""
	if m := itemTagRe.FindStringSubmatch(orgBlock); m != nil {
		targetRef = parseXMLAttributes(m[1])["identifierref"]
	}

	// resource identifier → {href, 第一个<file href>}；同名后者覆盖，
	// 无identifierref时回退到文档中最先声明的resource
	resources := map[string]resourceEntry{}
	firstResourceID := ""
	for _, m := range resourceRe.FindAllStringSubmatch(manifestXML, -1) {
		rawAttrs := firstGroup(m, 1, 3)
		attrs := parseXMLAttributes(rawAttrs)
		identifier := attrs["identifier"]
		if identifier == "" {
			continue
		}
		entry := resourceEntry{href: attrs["href"]}
		if fm := fileHrefRe.FindStringSubmatch(m[2]); fm != nil {
			entry.fileHref = firstGroup(fm, 1, 2)
		}
		if firstResourceID == "" {
			firstResourceID = identifier
		}
		resources[identifier] = entry
	}

	resource, ok := resources[targetRef]
	if targetRef == "" {
		resource, ok = resources[firstResourceID]
	}

	href := resource.href
	if href == "" {
		href = resource.fileHref
	}
	if !ok || href == "" {
		return nil, util.ErrManifestNoLaunch
	}

	manifestDir := path.Dir(manifestPath)
	relativeRoot := ""
	if manifestDir != "." {
		relativeRoot = manifestDir
	}
	normalizedHref := strings.TrimSpace(strings.ReplaceAll(href, "\\", "/"))
	launchPath := path.Clean(path.Join(relativeRoot, normalizedHref))

	if launchPath == "" || launchPath == "." || strings.HasPrefix(launchPath, "..") || path.IsAbs(launchPath) {
		return nil, util.ErrManifestBadLaunch
	}

	return &Manifest{
		Title:              title,
		LaunchPath:         launchPath,
		ManifestPath:       manifestPath,
		ManifestIdentifier: manifestAttrs["identifier"],
		Version:            version,
	}, nil
}
