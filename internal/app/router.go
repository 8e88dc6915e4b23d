package app

import (
	"papershare_backend/docs"
	"papershare_backend/internal/config"
	"papershare_backend/internal/middleware"
	"papershare_backend/internal/model"
	"papershare_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		public.GET("/papers", c.paper.ListPapers)
		public.GET("/papers/filters", c.paper.GetFilters)
		public.GET("/papers/:id", c.paper.GetPaper)
		public.GET("/papers/submissions/:id/download", c.paper.DownloadSubmission)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.POST("/papers", c.submission.UploadPaper)
		authGroup.POST("/papers/submissions/:id/vote", c.vote.CastVote)
	}

	// 3. 管理员路由
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.PUT("/questions/:id/status", c.admin.UpdateQuestionStatus)
		admin.GET("/questions/:id/duplicate", c.admin.CheckDuplicate)
		admin.DELETE("/questions/:id", c.admin.DeleteQuestion)
		admin.DELETE("/submissions/:id", c.admin.DeleteSubmission)
	}
}
