package controller

import (
	"edu_market_backend/internal/service"
	"edu_market_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// GetCourse godoc
// @Summary 课程详情
// @Description 返回课程及其章节、课时
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	course, err := c.CourseService.GetCourse(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}

// GetCourseLessons godoc
// @Summary 课程课时列表
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.CourseLesson}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/lessons [get]
func (c *CourseController) GetCourseLessons(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	lessons, err := c.CourseService.ListLessons(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lessons)
}

// GetCourseProgress godoc
// @Summary 当前学生的课程完成度
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.LessonProgress}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/progress [get]
func (c *CourseController) GetCourseProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	progress, err := c.CourseService.GetStudentCourseProgress(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, progress)
}
