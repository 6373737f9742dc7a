package controller

import (
	"edu_market_backend/internal/service"
	"edu_market_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	UploadService *service.UploadService
}

func NewUploadController(uploadService *service.UploadService) *UploadController {
	return &UploadController{UploadService: uploadService}
}

// UploadScorm godoc
// @Summary 上传SCORM课件zip
// @Description 上传后返回的url作为导入接口的packageUrl
// @Tags 上传
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "SCORM zip包"
// @Success 200 {object} util.Response{data=service.ScormUploadResult}
// @Failure 400 {object} util.Response "文件类型不合法"
// @Router /api/uploads/scorm [post]
func (c *UploadController) UploadScorm(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}

	result, err := c.UploadService.UploadScormPackage(ctx.Request.Context(), file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, result)
}

// UploadMedia godoc
// @Summary 上传课时媒体
// @Description 视频会探测时长回填durationSeconds
// @Tags 上传
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "视频或图片"
// @Success 200 {object} util.Response{data=service.MediaUploadResult}
// @Failure 400 {object} util.Response "文件类型不合法"
// @Router /api/uploads/media [post]
func (c *UploadController) UploadMedia(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}

	result, err := c.UploadService.UploadMedia(ctx.Request.Context(), file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, result)
}
