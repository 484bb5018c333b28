package screening

import (
	"context"

	"github.com/rs/zerolog"

	"resume-screener/internal/cache"
	"resume-screener/internal/ner"
	"resume-screener/internal/types"
)

// DocumentParser 把上传文件解析为文本，失败时返回空字符串
type DocumentParser interface {
	Parse(ctx context.Context, doc types.RawDocument) string
}

// Components 筛选流程依赖的外部组件
type Components struct {
	Parser   DocumentParser
	Cache    cache.TextCache
	Registry *ner.Registry
}

// Settings 筛选流程的运行参数
type Settings struct {
	// Workers 并发处理的文档数，1 表示严格顺序处理
	Workers int
	// PreviewChars 结果中保留的清洗后文本前缀长度
	PreviewChars int
	// MaxFiles 单次运行允许的最大文件数，0 表示不限制
	MaxFiles int
	Logger   zerolog.Logger
}

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// WithParser 设置文档解析器
func WithParser(p DocumentParser) ComponentOpt {
	return func(c *Components) {
		c.Parser = p
	}
}

// WithCache 设置解析文本缓存
func WithCache(tc cache.TextCache) ComponentOpt {
	return func(c *Components) {
		if tc != nil {
			c.Cache = tc
		}
	}
}

// WithRegistry 设置实体识别模型注册表
func WithRegistry(r *ner.Registry) ComponentOpt {
	return func(c *Components) {
		c.Registry = r
	}
}

// WithWorkers 设置并发数，小于 1 时按 1 处理
func WithWorkers(n int) SettingOpt {
	return func(s *Settings) {
		if n < 1 {
			n = 1
		}
		s.Workers = n
	}
}

// WithPreviewChars 设置预览长度
func WithPreviewChars(n int) SettingOpt {
	return func(s *Settings) {
		if n >= 0 {
			s.PreviewChars = n
		}
	}
}

// WithMaxFiles 设置单次运行的文件数上限
func WithMaxFiles(n int) SettingOpt {
	return func(s *Settings) {
		if n >= 0 {
			s.MaxFiles = n
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l zerolog.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = l
	}
}

// RunOptions 单次 Screen 调用的参数
type RunOptions struct {
	Model string
}

// RunOption 单次运行的选项
type RunOption func(*RunOptions)

// WithModel 选择本次运行使用的实体识别模型，空字符串表示默认模型
func WithModel(name string) RunOption {
	return func(o *RunOptions) {
		o.Model = name
	}
}

// ApplyRunOptions 合并选项
func ApplyRunOptions(opts ...RunOption) RunOptions {
	var ro RunOptions
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}
