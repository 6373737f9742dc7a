package app

import (
	"context"
	"edu_market_backend/internal/config"
	"edu_market_backend/internal/controller"
	"edu_market_backend/internal/repository"
	"edu_market_backend/internal/service"
	"edu_market_backend/pkg/database"
	"edu_market_backend/pkg/logger"
	"edu_market_backend/pkg/monitoring"
	"edu_market_backend/pkg/security"
	"edu_market_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user              *repository.UserRepository
	course            *repository.CourseRepository
	enrollment        *repository.EnrollmentRepository
	progress          *repository.ProgressRepository
	subscriptionUsage *repository.SubscriptionUsageRepository
	scormPackage      *repository.ScormPackageRepository
	scormAttempt      *repository.ScormAttemptRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	upload       *service.UploadService
	course       *service.CourseService
	courseAccess *service.CourseAccessService
	scormImport  *service.ScormImportService
	scormRuntime *service.ScormRuntimeService
}

type controllers struct {
	auth   *controller.AuthController
	course *controller.CourseController
	scorm  *controller.ScormController
	upload *controller.UploadController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// OnConfigReload 配置热更新入口，由configwatcher回调
func (a *App) OnConfigReload(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:              repository.NewUserRepository(db),
		course:            repository.NewCourseRepository(db),
		enrollment:        repository.NewEnrollmentRepository(db),
		progress:          repository.NewProgressRepository(db),
		subscriptionUsage: repository.NewSubscriptionUsageRepository(db),
		scormPackage:      repository.NewScormPackageRepository(db),
		scormAttempt:      repository.NewScormAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.upload = service.NewUploadService(s.storage, cfg)
	s.course = service.NewCourseService(repos.course, repos.progress)
	s.courseAccess = service.NewCourseAccessService(repos.user, repos.enrollment, repos.subscriptionUsage, rdb)
	s.scormImport = service.NewScormImportService(db, cfg)
	s.scormRuntime = service.NewScormRuntimeService(
		repos.course,
		repos.scormPackage,
		repos.scormAttempt,
		repos.progress,
		s.courseAccess,
	)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth),
		course: controller.NewCourseController(s.course),
		scorm:  controller.NewScormController(s.scormImport, s.scormRuntime),
		upload: controller.NewUploadController(s.upload),
		health: controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 缓存不可用时降级为直查数据库
		logger.Log.Warn("Failed to initialize redis, access cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db, rdb)

	// 热更新只覆盖请求期读取的配置；中间件和连接池仍以启动值为准。
	// 各服务用ReloadConfig整体换入新指针，正在处理的请求继续用自己的快照
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.scormImport.ReloadConfig(newCfg)
		services.auth.ReloadConfig(newCfg)
	})

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("edu-market", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
		router.Static("/api/uploads/files", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
