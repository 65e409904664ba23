package app

import (
	"safety_training_backend/docs"
	"safety_training_backend/internal/config"
	"safety_training_backend/internal/middleware"
	"safety_training_backend/internal/model"

	"safety_training_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 员工培训路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.worker))
	{
		a.registerWorkerRoutes(authGroup, c)
	}

	// 3. 管理端路由
	a.registerAdminRoutes(router, c, repos, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerWorkerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.Profile)

	rg.GET("/trainings", c.enrollment.ListMine)

	// 单个培训的学习闭环：会话 → 进度 → 考核 → 证书
	rg.GET("/trainings/:id/session", c.enrollment.OpenSession)
	rg.DELETE("/trainings/:id/session", c.enrollment.CloseSession)
	rg.POST("/trainings/:id/track", c.enrollment.Track)
	rg.POST("/trainings/:id/submit", c.enrollment.SubmitQuiz)
	rg.POST("/trainings/:id/complete", c.enrollment.CompleteWithoutQuiz)
	rg.POST("/trainings/:id/reenroll", c.enrollment.ReEnroll)
	rg.GET("/trainings/:id/certificate", c.certificate.Get)

	rg.GET("/certificates", c.certificate.History)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(a.Config), middleware.ActivityMiddleware(repos.worker))
	admin.Use(middleware.RoleMiddleware(model.RoleSupervisor, model.RoleAdmin))
	{
		// 培训管理
		admin.POST("/trainings", c.training.Create)
		admin.GET("/trainings", c.training.List)
		admin.GET("/trainings/:id", c.training.Get)
		admin.PUT("/trainings/:id", c.training.Update)
		admin.DELETE("/trainings/:id", c.training.Delete)

		// 指派与重置
		admin.POST("/trainings/:id/enrollments", c.enrollment.BulkEnroll)
		admin.GET("/trainings/:id/enrollments", c.enrollment.ListForTraining)
		admin.POST("/enrollments/:id/reset", c.enrollment.AdminReset)

		// 完成率看板
		admin.GET("/dashboard/completion", c.dashboard.Completion)
		admin.GET("/dashboard/not-enrolled", c.dashboard.NotEnrolled)
	}
}
