package service

import (
	"edu_market_backend/internal/config"
	"strings"
	"testing"
)

func TestLocalStorageProviderGetURL(t *testing.T) {
	p := &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: "uploads"}}
	if got := p.GetURL("scorm/pkg.zip"); got != "/uploads/scorm/pkg.zip" {
		t.Errorf("got %q, want %q", got, "/uploads/scorm/pkg.zip")
	}
}

// minio的URL必须是绝对地址，导入服务才会走HTTP下载而不是当成本地上传路径
func TestMinioStorageProviderGetURLAbsolute(t *testing.T) {
	p := &MinioStorageProvider{Config: &config.StorageConfig{
		MinioEndpoint: "localhost:9000",
		MinioBucket:   "edu-market",
	}}

	got := p.GetURL("scorm/pkg.zip")
	if got != "http://localhost:9000/edu-market/scorm/pkg.zip" {
		t.Errorf("got %q, want %q", got, "http://localhost:9000/edu-market/scorm/pkg.zip")
	}
	if !strings.HasPrefix(got, "http://") {
		t.Error("minio URL must carry a scheme")
	}
}

func TestOSSStorageProviderGetURLAbsolute(t *testing.T) {
	p := &OSSStorageProvider{Config: &config.StorageConfig{
		OSSEndpoint: "oss-cn-hangzhou.aliyuncs.com",
		OSSBucket:   "edu-market",
	}}

	got := p.GetURL("scorm/pkg.zip")
	if got != "https://edu-market.oss-cn-hangzhou.aliyuncs.com/scorm/pkg.zip" {
		t.Errorf("got %q", got)
	}
}
