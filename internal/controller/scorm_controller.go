package controller

import (
	"edu_market_backend/internal/model"
	"edu_market_backend/internal/service"
	"edu_market_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ScormController struct {
	ImportService  *service.ScormImportService
	RuntimeService *service.ScormRuntimeService
}

func NewScormController(importService *service.ScormImportService, runtimeService *service.ScormRuntimeService) *ScormController {
	return &ScormController{
		ImportService:  importService,
		RuntimeService: runtimeService,
	}
}

// swagger:model ScormImportRequest
type ScormImportRequest struct {
	PackageURL   string  `json:"packageUrl" binding:"required"`
	FileName     string  `json:"fileName" binding:"required"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	InstructorID uint    `json:"instructor_id"`
}

// ImportPackage godoc
// @Summary 导入SCORM课件包
// @Description 下载并解压SCORM包，解析manifest，创建课程/章节/课时/包记录
// @Tags SCORM
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ScormImportRequest true "包地址与元信息"
// @Success 201 {object} util.Response{data=service.ImportResult} "导入成功"
// @Failure 400 {object} util.Response "包或manifest无效"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/scorm/import [post]
func (c *ScormController) ImportPackage(ctx *gin.Context) {
	var req ScormImportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	// 讲师只能以自己的身份导入，管理员可以代指定讲师
	instructorID := claims.UserID
	if claims.Role == model.Admin && req.InstructorID != 0 {
		instructorID = req.InstructorID
	}

	result, err := c.ImportService.Import(ctx.Request.Context(), service.ImportParams{
		InstructorID: instructorID,
		PackageURL:   req.PackageURL,
		FileName:     req.FileName,
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
	})
	if err != nil {
		if util.IsImportError(err) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, result)
}

// StartAttempt godoc
// @Summary 启动SCORM课时
// @Description 为当前学生创建或轮换attempt，返回一次性启动URL
// @Tags SCORM
// @Produce  json
// @Security ApiKeyAuth
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=service.StartAttemptResult}
// @Failure 400 {object} util.Response "课时类型不是scorm"
// @Failure 403 {object} util.Response "没有课程访问权"
// @Failure 404 {object} util.Response "课时或包不存在"
// @Router /api/scorm/lessons/{lessonId}/attempt [post]
func (c *ScormController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	if lessonID == 0 {
		util.BadRequest(ctx, "invalid lesson id")
		return
	}

	result, err := c.RuntimeService.StartAttempt(ctx.Request.Context(), claims.UserID, lessonID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrPackageNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotScormLesson):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrNoCourseAccess):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// Launch godoc
// @Summary SCORM启动页
// @Description 返回内嵌运行时shim的自包含HTML；token不匹配一律404
// @Tags SCORM
// @Produce  html
// @Param   token path string true "launch token"
// @Param   attemptId path int true "attempt ID"
// @Success 200 {string} string "启动页HTML"
// @Failure 404 {object} util.Response
// @Router /api/scorm/runtime/{token}/{attemptId}/launch [get]
func (c *ScormController) Launch(ctx *gin.Context) {
	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	if attemptID == 0 {
		util.NotFound(ctx)
		return
	}

	html, err := c.RuntimeService.LaunchHTML(ctx.Param("token"), attemptID)
	if err != nil {
		c.runtimeError(ctx, err)
		return
	}

	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GetState godoc
// @Summary 读取attempt运行时状态
// @Tags SCORM
// @Produce  json
// @Param   token path string true "launch token"
// @Param   attemptId path int true "attempt ID"
// @Success 200 {object} util.Response{data=service.RuntimeStateView}
// @Failure 404 {object} util.Response
// @Router /api/scorm/runtime/{token}/{attemptId}/state [get]
func (c *ScormController) GetState(ctx *gin.Context) {
	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	if attemptID == 0 {
		util.NotFound(ctx)
		return
	}

	view, err := c.RuntimeService.GetState(ctx.Param("token"), attemptID)
	if err != nil {
		c.runtimeError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

type commitStateRequest struct {
	RuntimeState interface{} `json:"runtimeState"`
}

// CommitState godoc
// @Summary 提交attempt运行时状态
// @Description shim的Commit/Terminate回传完整数据模型快照
// @Tags SCORM
// @Accept  json
// @Produce  json
// @Param   token path string true "launch token"
// @Param   attemptId path int true "attempt ID"
// @Success 200 {object} util.Response{data=service.RuntimeStateView}
// @Failure 404 {object} util.Response
// @Router /api/scorm/runtime/{token}/{attemptId}/state [post]
func (c *ScormController) CommitState(ctx *gin.Context) {
	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	if attemptID == 0 {
		util.NotFound(ctx)
		return
	}

	var req commitStateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.RuntimeService.CommitState(ctx.Param("token"), attemptID, req.RuntimeState)
	if err != nil {
		c.runtimeError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// ServeAsset godoc
// @Summary 课件静态资源
// @Description 在包的解压根内沙箱解析路径；目录回退index.html；任何失败都是404
// @Tags SCORM
// @Param   token path string true "launch token"
// @Param   attemptId path int true "attempt ID"
// @Param   assetPath path string true "包内相对路径"
// @Success 200 {file} file
// @Failure 404 {object} util.Response
// @Router /api/scorm/runtime/{token}/{attemptId}/assets/{assetPath} [get]
func (c *ScormController) ServeAsset(ctx *gin.Context) {
	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	if attemptID == 0 {
		util.NotFound(ctx)
		return
	}

	resolved, err := c.RuntimeService.ResolveAsset(ctx.Param("token"), attemptID, ctx.Param("assetPath"))
	if err != nil {
		c.runtimeError(ctx, err)
		return
	}

	ctx.File(resolved)
}

// runtimeError token不匹配、路径越界和资源缺失全部折叠成404，不给探测者任何区分信号
func (c *ScormController) runtimeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrAssetNotFound),
		errors.Is(err, util.ErrPathViolation):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
