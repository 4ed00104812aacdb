package container

import (
	"fmt"
	"sync"

	"github.com/Aijiaobin/video-api/internal/application/services/ingest"
	"github.com/Aijiaobin/video-api/internal/application/services/metadata"
	"github.com/Aijiaobin/video-api/internal/application/services/share"
	"github.com/Aijiaobin/video-api/internal/application/services/task"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	"github.com/Aijiaobin/video-api/internal/infrastructure/config"
	"github.com/Aijiaobin/video-api/internal/infrastructure/repository"
	"github.com/Aijiaobin/video-api/internal/infrastructure/tianyi"
	"github.com/Aijiaobin/video-api/internal/infrastructure/tmdb"
	"github.com/Aijiaobin/video-api/pkg/executor"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

// ServiceContainer 服务容器 - 实现依赖注入
type ServiceContainer struct {
	config *config.Config

	db         *repository.DB
	shareRepo  *repository.ShareRepository
	sharerRepo *repository.SharerRepository
	mediaRepo  *repository.MetadataRepository

	tmdbClient   *tmdb.Client
	tianyiClient *tianyi.Client

	walker        *share.Walker
	resolver      *metadata.Resolver
	ingestService *ingest.Service
	batchExecutor *executor.BatchExecutor

	// 调度器按需创建，CLI 不需要
	schedulerOnce    sync.Once
	schedulerErr     error
	taskRepo         *repository.TaskRepository
	schedulerService *task.SchedulerService
}

// NewServiceContainer 创建服务容器并打开数据库
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	logger.Info("Initializing service container", "database", cfg.Database.Driver)

	db, err := repository.Open(repository.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	c := &ServiceContainer{
		config:     cfg,
		db:         db,
		shareRepo:  repository.NewShareRepository(db),
		sharerRepo: repository.NewSharerRepository(db),
		mediaRepo:  repository.NewMetadataRepository(db),
	}

	c.tmdbClient = tmdb.NewClient(tmdb.Config{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Language:     cfg.TMDB.Language,
		QPS:          cfg.TMDB.QPS,
		Timeout:      cfg.TMDB.Timeout(),
	})
	if c.tmdbClient.APIKey == "" {
		logger.Warn("TMDB API key is not set, metadata resolution will find nothing")
	}
	c.tianyiClient = tianyi.NewClient(tianyi.Config{
		BaseURL:  cfg.Tianyi.BaseURL,
		QPS:      cfg.Tianyi.QPS,
		Timeout:  cfg.Tianyi.Timeout(),
		PageSize: cfg.Tianyi.PageSize,
	})

	c.walker = share.NewWalker(share.Config{
		ProbeFolderLimit: cfg.Walker.ProbeFolderLimit,
		ProbeVideoTarget: cfg.Walker.ProbeVideoTarget,
	})
	c.walker.Register(valueobjects.DriveTypeTianyi, c.tianyiClient)

	c.resolver = metadata.NewResolver(c.tmdbClient, c.mediaRepo)
	c.ingestService = ingest.NewService(c.walker, c.resolver, c.shareRepo, c.sharerRepo, c.mediaRepo)

	delay := cfg.Batch.Delay()
	if delay == 0 {
		delay = -1
	}
	c.batchExecutor = executor.NewBatchExecutor(executor.Config{
		Concurrency: cfg.Batch.Concurrency,
		Delay:       delay,
	})

	logger.Info("Service container initialized successfully")
	return c, nil
}

// GetIngestService 获取入库服务
func (c *ServiceContainer) GetIngestService() *ingest.Service {
	return c.ingestService
}

// GetResolver 获取元数据解析器
func (c *ServiceContainer) GetResolver() *metadata.Resolver {
	return c.resolver
}

// GetBatchExecutor 获取批量执行器
func (c *ServiceContainer) GetBatchExecutor() *executor.BatchExecutor {
	return c.batchExecutor
}

// GetSchedulerService 获取调度服务，首次调用时登记配置中的任务
func (c *ServiceContainer) GetSchedulerService() (*task.SchedulerService, error) {
	c.schedulerOnce.Do(func() {
		c.taskRepo, c.schedulerErr = repository.NewTaskRepository(c.config.Scheduler.DataDir)
		if c.schedulerErr != nil {
			return
		}
		c.schedulerService = task.NewSchedulerService(c.taskRepo, c.ingestService, c.batchExecutor)
		c.schedulerErr = c.schedulerService.Sync(c.config.Scheduler.TaskDefinitions())
	})
	return c.schedulerService, c.schedulerErr
}

// Shutdown 关闭服务容器
func (c *ServiceContainer) Shutdown() {
	logger.Info("Shutting down service container")

	if c.schedulerService != nil {
		c.schedulerService.Stop()
	}
	c.ingestService.Wait()
	if err := c.db.Close(); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}

	logger.Info("Service container shutdown completed")
}

// GetServiceHealth 获取服务健康状态
func (c *ServiceContainer) GetServiceHealth() map[string]interface{} {
	health := map[string]interface{}{
		"database": "ok",
		"tmdb":     c.tmdbClient.APIKey != "",
	}
	if err := c.db.Ping(); err != nil {
		health["database"] = err.Error()
	}
	if c.schedulerService != nil {
		tasks, _ := c.schedulerService.GetAllTasks()
		health["scheduled_tasks"] = len(tasks)
	}
	return health
}
