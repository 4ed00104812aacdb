package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/Aijiaobin/video-api/internal/application/container"
	"github.com/Aijiaobin/video-api/internal/infrastructure/config"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	containerOnce sync.Once
	container     *container.ServiceContainer
	containerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := logger.Init(logger.Options{
			Level:     cfg.Log.Level,
			Output:    cfg.Log.Output,
			Format:    cfg.Log.Format,
			FilePath:  cfg.Log.FilePath,
			Colorize:  cfg.Log.Colorize,
			AddSource: cfg.Log.AddSource,
		}); err != nil {
			c.configErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) services() (*container.ServiceContainer, error) {
	c.containerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.containerErr = err
			return
		}
		c.container, c.containerErr = container.NewServiceContainer(cfg)
	})
	return c.container, c.containerErr
}

func (c *commandContext) close() {
	if c.container != nil {
		c.container.Shutdown()
	}
}

// withBatchLock 同一数据目录下同时只允许一个批处理
func (c *commandContext) withBatchLock(name string, fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Scheduler.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	lockPath := filepath.Join(cfg.Scheduler.DataDir, "sharectl-"+name+".lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another %s batch is already running (lock %s)", name, lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("Failed to release batch lock", "lock", lockPath, "error", err)
		}
	}()
	return fn()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
