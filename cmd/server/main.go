package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aijiaobin/video-api/internal/application/container"
	"github.com/Aijiaobin/video-api/internal/infrastructure/config"
	"github.com/Aijiaobin/video-api/internal/interfaces/http/routes"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// 初始化日志
	if err := logger.Init(logger.Options{
		Level:     cfg.Log.Level,
		Output:    cfg.Log.Output,
		Format:    cfg.Log.Format,
		FilePath:  cfg.Log.FilePath,
		Colorize:  cfg.Log.Colorize,
		AddSource: cfg.Log.AddSource,
	}); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	c, err := container.NewServiceContainer(cfg)
	if err != nil {
		log.Fatal("Failed to initialize service container:", err)
	}

	router := routes.NewRouter(c)

	if cfg.Scheduler.Enabled {
		scheduler, err := c.GetSchedulerService()
		if err != nil {
			logger.Error("Failed to initialize scheduler", "error", err)
		} else if err := scheduler.Start(); err != nil {
			logger.Error("Failed to start scheduler", "error", err)
		}
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	c.Shutdown()

	logger.Info("Server stopped")
}
