package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"safety_training_backend/internal/config"
	"safety_training_backend/internal/controller"
	"safety_training_backend/internal/repository"
	"safety_training_backend/internal/service"
	"safety_training_backend/pkg/configwatcher"
	"safety_training_backend/pkg/database"
	"safety_training_backend/pkg/logger"
	"safety_training_backend/pkg/monitoring"
	"safety_training_backend/pkg/security"
	"safety_training_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	company     *repository.CompanyRepository
	worker      *repository.WorkerRepository
	training    *repository.TrainingRepository
	enrollment  *repository.EnrollmentRepository
	certificate *repository.CertificateRepository
	dashboard   *repository.DashboardRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	training    *service.TrainingService
	gate        *service.SlideGateService
	randomizer  *service.QuizRandomizer
	certificate *service.CertificateService
	enrollment  *service.EnrollmentService
	dashboard   *service.DashboardService
}

type controllers struct {
	auth        *controller.AuthController
	training    *controller.TrainingController
	enrollment  *controller.EnrollmentController
	certificate *controller.CertificateController
	dashboard   *controller.DashboardController
	health      *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		company:     repository.NewCompanyRepository(db),
		worker:      repository.NewWorkerRepository(db),
		training:    repository.NewTrainingRepository(db),
		enrollment:  repository.NewEnrollmentRepository(db),
		certificate: repository.NewCertificateRepository(db),
		dashboard:   repository.NewDashboardRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.worker, cfg)
	s.training = service.NewTrainingService(repos.training)
	s.gate = service.NewSlideGateService()
	s.randomizer = service.NewQuizRandomizer()
	s.certificate = service.NewCertificateService(repos.certificate, &cfg.Certificate)
	s.enrollment = service.NewEnrollmentService(
		repos.enrollment,
		repos.training,
		repos.worker,
		s.randomizer,
		s.gate,
		s.certificate,
		s.storage,
	)
	s.dashboard = service.NewDashboardService(repos.dashboard, rdb)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		training:    controller.NewTrainingController(s.training),
		enrollment:  controller.NewEnrollmentController(s.enrollment),
		certificate: controller.NewCertificateController(s.enrollment, s.certificate),
		dashboard:   controller.NewDashboardController(s.dashboard),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	// 到期证书扫描：只读汇总加日志提醒，不回写任何状态
	interval := time.Duration(a.Config.Certificate.SweepIntervalMin) * time.Minute
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := s.certificate.ReportExpiring(); err != nil {
				logger.Log.Error("expiring certificate sweep error", zap.Error(err))
			}
		}
	}()

	// 配置热更新：仅替换运行期可以安全切换的字段
	go configwatcher.WatchConfig("configs/config.yaml", func(updated *config.Config) {
		a.Config.Certificate.ExpiryWarnDays = updated.Certificate.ExpiryWarnDays
		a.Config.Certificate.IssuedBy = updated.Certificate.IssuedBy
		logger.Log.Info("configuration reloaded",
			zap.Int("expiryWarnDays", updated.Certificate.ExpiryWarnDays))
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 报表缓存可降级，聚合直接走数据库
		logger.Log.Warn("Failed to initialize redis, dashboard caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("safety-training", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 关闭服务
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
