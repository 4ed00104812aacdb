package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Aijiaobin/video-api/internal/application/container"
	"github.com/Aijiaobin/video-api/internal/interfaces/http/handlers"
	"github.com/Aijiaobin/video-api/internal/interfaces/http/middleware"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

// RoutesConfig 路由配置
type RoutesConfig struct {
	container *container.ServiceContainer
}

// NewRoutesConfig 创建路由配置
func NewRoutesConfig(c *container.ServiceContainer) *RoutesConfig {
	return &RoutesConfig{container: c}
}

// SetupRoutes 设置路由
func (rc *RoutesConfig) SetupRoutes(router *gin.Engine) {
	shareHandler := handlers.NewShareHandler(rc.container.GetIngestService())
	metadataHandler := handlers.NewMetadataHandler(rc.container.GetResolver())

	api := router.Group("/api/v1")
	{
		api.GET("/health", handlers.HealthCheck(rc.container.GetServiceHealth))

		shares := api.Group("/shares")
		{
			shares.POST("", shareHandler.CreateShare)
			shares.GET("", shareHandler.ListShares)
			shares.GET("/:id", shareHandler.GetShare)
			shares.PUT("/:id/override", shareHandler.SetOverride)
			shares.POST("/:id/scrape", shareHandler.Scrape)
			shares.POST("/:id/save", shareHandler.Save)
			shares.DELETE("/:id", shareHandler.DeleteShare)
		}

		meta := api.Group("/metadata")
		{
			meta.GET("/search", metadataHandler.Search)
			meta.GET("/:tmdb_id", metadataHandler.Get)
			meta.GET("/:tmdb_id/seasons", metadataHandler.Seasons)
			meta.GET("/:tmdb_id/seasons/:season_number", metadataHandler.Episodes)
		}

		scheduler, err := rc.container.GetSchedulerService()
		if err != nil {
			logger.Warn("Scheduler unavailable, task routes disabled", "error", err)
			return
		}
		taskHandler := handlers.NewTaskHandler(scheduler)
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.POST("/:id/run", taskHandler.RunTaskNow)
		}
	}
}

// NewRouter 创建带中间件的路由
func NewRouter(c *container.ServiceContainer) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RecoverMiddleware())
	router.Use(middleware.RequestLogMiddleware())
	router.Use(middleware.ErrorHandlerMiddleware())

	NewRoutesConfig(c).SetupRoutes(router)
	return router
}
