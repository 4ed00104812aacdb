package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
)

// EnvPrefix 环境变量前缀，如 VIDEO_API_DATABASE_DSN
const EnvPrefix = "VIDEO_API"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	Tianyi    TianyiConfig    `mapstructure:"tianyi"`
	Walker    WalkerConfig    `mapstructure:"walker"`
	Batch     BatchConfig     `mapstructure:"batch"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// Addr 监听地址
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type LogConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"` // console, file, both
	Format    string `mapstructure:"format"` // text, json
	FilePath  string `mapstructure:"file_path"`
	Colorize  bool   `mapstructure:"colorize"`
	AddSource bool   `mapstructure:"add_source"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // sqlite 或 postgres
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type TMDBConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	ImageBaseURL   string `mapstructure:"image_base_url"`
	Language       string `mapstructure:"language"`
	QPS            int    `mapstructure:"qps"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout 单次请求超时
func (t TMDBConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

type TianyiConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	QPS            int    `mapstructure:"qps"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	PageSize       int    `mapstructure:"page_size"`
}

// Timeout 单次请求超时
func (t TianyiConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

type WalkerConfig struct {
	ProbeFolderLimit int `mapstructure:"probe_folder_limit"` // 浅层探测最多进入的子目录数
	ProbeVideoTarget int `mapstructure:"probe_video_target"` // 探测到这么多视频即停止
}

type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	DelayMS     int `mapstructure:"delay_ms"` // 每个单元完成后的等待
}

// Delay 单元间隔
func (b BatchConfig) Delay() time.Duration {
	return time.Duration(b.DelayMS) * time.Millisecond
}

type SchedulerConfig struct {
	Enabled bool            `mapstructure:"enabled"`
	DataDir string          `mapstructure:"data_dir"` // 任务状态文件和批处理锁所在目录
	Tasks   []ScheduledTask `mapstructure:"tasks"`
}

type ScheduledTask struct {
	Name    string `mapstructure:"name"`    // 任务名称
	Enabled bool   `mapstructure:"enabled"` // 是否启用
	Cron    string `mapstructure:"cron"`    // cron表达式，如 "0 2 * * *" 每天凌晨2点
	Action  string `mapstructure:"action"`  // parse 或 scrape
	Limit   int    `mapstructure:"limit"`   // 单次最多处理的分享数，0 不限
}

// TaskDefinitions 转为任务实体
func (s SchedulerConfig) TaskDefinitions() []*entities.ScheduledTask {
	defs := make([]*entities.ScheduledTask, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		defs = append(defs, &entities.ScheduledTask{
			Name:    t.Name,
			Enabled: t.Enabled,
			Cron:    t.Cron,
			Action:  entities.TaskAction(strings.ToLower(t.Action)),
			Limit:   t.Limit,
		})
	}
	return defs
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file_path", "logs/video-api.log")
	v.SetDefault("log.colorize", true)
	v.SetDefault("log.add_source", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/video-api.db")
	v.SetDefault("database.max_open_conns", 25)

	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("tmdb.language", "zh-CN")
	v.SetDefault("tmdb.qps", 40)
	v.SetDefault("tmdb.timeout_seconds", 10)

	v.SetDefault("tianyi.base_url", "https://cloud.189.cn")
	v.SetDefault("tianyi.qps", 5)
	v.SetDefault("tianyi.timeout_seconds", 30)
	v.SetDefault("tianyi.page_size", 1000)

	v.SetDefault("walker.probe_folder_limit", 10)
	v.SetDefault("walker.probe_video_target", 4)

	v.SetDefault("batch.concurrency", 5)
	v.SetDefault("batch.delay_ms", 200)

	// 调度器配置默认值
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.data_dir", "data")
	v.SetDefault("scheduler.tasks", []ScheduledTask{})
}

// LoadConfig 在 ./configs 和当前目录查找 config.yaml
func LoadConfig() (*Config, error) {
	return Load("")
}

// Load 读取配置；path 为空时按默认位置查找，找不到文件时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.TMDB.APIKey == "" {
		cfg.TMDB.APIKey = os.Getenv("TMDB_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.TMDB.TimeoutSeconds <= 0 || c.Tianyi.TimeoutSeconds <= 0 {
		return fmt.Errorf("remote timeouts must be positive, got tmdb=%d tianyi=%d",
			c.TMDB.TimeoutSeconds, c.Tianyi.TimeoutSeconds)
	}
	if c.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be positive, got %d", c.Batch.Concurrency)
	}
	if c.Batch.DelayMS < 0 {
		return fmt.Errorf("batch.delay_ms must not be negative, got %d", c.Batch.DelayMS)
	}
	for _, t := range c.Scheduler.Tasks {
		if !entities.TaskAction(strings.ToLower(t.Action)).IsValid() {
			return fmt.Errorf("scheduler task %q: unsupported action %q", t.Name, t.Action)
		}
	}
	return nil
}
