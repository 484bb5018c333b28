package logger // 应用统一的 zerolog 日志组件

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Logger 全局日志实例，未调用 Init 时沿用 zerolog 默认 logger
	Logger = log.Logger
)

// Config 日志配置
type Config struct {
	Level        string `json:"level" yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal disabled"`
	Format       string `json:"format" yaml:"format" validate:"omitempty,oneof=json pretty"` // json 或 pretty（控制台）
	TimeFormat   string `json:"time_format" yaml:"time_format"`
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"`
}

// Init 按配置初始化全局日志，输出到标准错误，CLI 的标准输出留给结果表格
func Init(cfg Config) {
	InitWithWriter(cfg, os.Stderr)
}

// InitWithWriter 与 Init 相同，但可以指定输出目标（测试中使用）
func InitWithWriter(cfg Config, out io.Writer) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	writer := out
	if cfg.Format == "pretty" {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: cfg.TimeFormat,
		}
	}

	ctxLogger := zerolog.New(writer).Level(level).With().Timestamp()
	if cfg.ReportCaller {
		ctxLogger = ctxLogger.Caller()
	}

	Logger = ctxLogger.Logger()
	log.Logger = Logger
}

// For 返回带 component 字段的子 logger
func For(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// Debug 开始一条调试级别的日志事件
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info 开始一条信息级别的日志事件
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn 开始一条警告级别的日志事件
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error 开始一条错误级别的日志事件
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal 记录后程序退出
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// Ctx 从上下文中取出 logger；上下文中没有时返回全局 logger
func Ctx(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &Logger
	}
	return l
}

// WithContext 把全局 logger 放进上下文
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}
