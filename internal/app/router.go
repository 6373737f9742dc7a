package app

import (
	"edu_market_backend/docs"
	"edu_market_backend/internal/config"
	"edu_market_backend/internal/middleware"
	"edu_market_backend/internal/model"
	"edu_market_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// SCORM运行时：launch token本身就是凭证，不走JWT
	runtime := router.Group("/api/scorm/runtime/:token/:attemptId")
	{
		runtime.GET("/launch", c.scorm.Launch)
		runtime.GET("/state", c.scorm.GetState)
		runtime.POST("/state", c.scorm.CommitState)
		runtime.GET("/assets/*assetPath", c.scorm.ServeAsset)
	}

	// 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.GET("/courses/:id", c.course.GetCourse)
		authGroup.GET("/courses/:id/lessons", c.course.GetCourseLessons)
		authGroup.GET("/courses/:id/progress", c.course.GetCourseProgress)

		authGroup.POST("/scorm/lessons/:lessonId/attempt", c.scorm.StartAttempt)

		// 导入与上传仅限讲师/管理员
		instructor := authGroup.Group("")
		instructor.Use(middleware.RoleMiddleware(model.Instructor, model.Admin))
		{
			instructor.POST("/scorm/import", c.scorm.ImportPackage)
			instructor.POST("/uploads/scorm", c.upload.UploadScorm)
			instructor.POST("/uploads/media", c.upload.UploadMedia)
		}
	}
}
