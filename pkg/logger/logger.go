package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Options 日志初始化选项
type Options struct {
	Level     string // debug, info, warn, error
	Output    string // console, file, both
	Format    string // text, json
	FilePath  string // Output 包含 file 时必填
	Colorize  bool   // 仅在控制台为终端时生效
	AddSource bool
}

var (
	defaultLogger *slog.Logger
	levelVar      = new(slog.LevelVar)
	mu            sync.Mutex
	logFile       *os.File
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

// Init 初始化全局日志
func Init(opts Options) error {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	levelVar.Set(level)

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	colorize := false

	output := strings.ToLower(opts.Output)
	if output == "" {
		output = "console"
	}

	if output == "console" || output == "both" {
		writers = append(writers, os.Stdout)
		colorize = opts.Colorize && isatty.IsTerminal(os.Stdout.Fd())
	}

	if output == "file" || output == "both" {
		if opts.FilePath == "" {
			return fmt.Errorf("log file path is required for output %q", output)
		}
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		writers = append(writers, f)
		// 文件中不写入颜色控制符
		colorize = false
	}

	if len(writers) == 0 {
		return fmt.Errorf("unsupported log output: %s", opts.Output)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     levelVar,
		AddSource: opts.AddSource,
	}
	if colorize {
		handlerOpts.ReplaceAttr = colorizeLevel
	}

	w := io.MultiWriter(writers...)
	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	defaultLogger = slog.New(handler)
	return nil
}

// SetLevel 动态调整日志级别
func SetLevel(level string) error {
	l, err := parseLevel(level)
	if err != nil {
		return err
	}
	levelVar.Set(l)
	return nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

func colorizeLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) > 0 {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	color := colorBlue
	switch {
	case level >= slog.LevelError:
		color = colorRed
	case level >= slog.LevelWarn:
		color = colorYellow
	case level < slog.LevelInfo:
		color = colorGray
	}
	return slog.String(a.Key, color+level.String()+colorReset)
}

func get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		levelVar.Set(slog.LevelInfo)
		defaultLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: levelVar}))
	}
	return defaultLogger
}

// With 返回附带固定字段的子日志器
func With(args ...any) *slog.Logger {
	return get().With(SanitizeArgs(args...)...)
}

func Debug(msg string, args ...any) {
	get().Debug(msg, SanitizeArgs(args...)...)
}

func Info(msg string, args ...any) {
	get().Info(msg, SanitizeArgs(args...)...)
}

func Warn(msg string, args ...any) {
	get().Warn(msg, SanitizeArgs(args...)...)
}

func Error(msg string, args ...any) {
	get().Error(msg, SanitizeArgs(args...)...)
}
