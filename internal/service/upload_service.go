package service

import (
	"context"
	"edu_market_backend/internal/config"
	"edu_market_backend/internal/util"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadService 导入流程的上游：课件zip和课时媒体先上传到存储，
// 拿到packageUrl再走导入
type UploadService struct {
	Storage *StorageService
	Cfg     *config.Config
}

func NewUploadService(storage *StorageService, cfg *config.Config) *UploadService {
	return &UploadService{Storage: storage, Cfg: cfg}
}

type ScormUploadResult struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

func (s *UploadService) UploadScormPackage(ctx context.Context, file *multipart.FileHeader) (*ScormUploadResult, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedScormExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("unsupported SCORM package extension: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	mimeType, err := util.ValidateMimeType(src, []string{util.MimeZip, "application/x-zip-compressed", util.MimeOctetStream})
	src.Close()
	if err != nil {
		return nil, err
	}
	if !util.IsZip(mimeType) {
		return nil, fmt.Errorf("invalid file type: %s", mimeType)
	}

	// MIME探测消耗了前512字节，重新打开再上传
	src, err = file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	objectName := "scorm/" + uuid.NewString() + ext
	url, err := s.Storage.Upload(ctx, objectName, src, file.Size, util.MimeZip)
	if err != nil {
		return nil, err
	}

	return &ScormUploadResult{
		URL:      url,
		FileName: file.Filename,
		Size:     file.Size,
	}, nil
}

type MediaUploadResult struct {
	URL             string `json:"url"`
	FileName        string `json:"fileName"`
	MimeType        string `json:"mimeType"`
	DurationSeconds *int   `json:"durationSeconds,omitempty"`
}

// UploadMedia 课时媒体上传；视频先落临时文件探测时长再传存储
func (s *UploadService) UploadMedia(ctx context.Context, file *multipart.FileHeader) (*MediaUploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	mimeType, err := util.ValidateMimeType(src, []string{util.MimeVideo, util.MimeImage})
	src.Close()
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	objectName := "media/" + uuid.NewString() + ext

	if !util.IsVideo(mimeType) {
		src, err = file.Open()
		if err != nil {
			return nil, err
		}
		defer src.Close()

		url, err := s.Storage.Upload(ctx, objectName, src, file.Size, mimeType)
		if err != nil {
			return nil, err
		}
		return &MediaUploadResult{URL: url, FileName: file.Filename, MimeType: mimeType}, nil
	}

	tmp, err := os.CreateTemp("", "media-*"+ext)
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	src, err = file.Open()
	if err != nil {
		tmp.Close()
		return nil, err
	}
	_, err = io.Copy(tmp, src)
	src.Close()
	tmp.Close()
	if err != nil {
		return nil, err
	}

	result := &MediaUploadResult{FileName: file.Filename, MimeType: mimeType}
	if info, err := util.GetVideoInfo(tmpPath); err == nil && info.Duration > 0 {
		duration := int(info.Duration)
		result.DurationSeconds = &duration
	}

	url, err := s.Storage.UploadFile(ctx, objectName, tmpPath, mimeType)
	if err != nil {
		return nil, err
	}
	result.URL = url
	return result, nil
}
