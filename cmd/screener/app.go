package main

import (
	"context"
	"fmt"
	"time"

	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/rs/zerolog"

	"resume-screener/internal/cache"
	"resume-screener/internal/config"
	"resume-screener/internal/llm"
	appLogger "resume-screener/internal/logger"
	"resume-screener/internal/ner"
	"resume-screener/internal/parser"
	"resume-screener/internal/screening"
	"resume-screener/internal/tracing"
	"resume-screener/internal/types"
)

// application 组装好的运行时依赖
type application struct {
	cfg      *config.Config
	screener *screening.Screener
	cache    cache.TextCache
	shutdown tracing.ShutdownFunc
}

// Close 释放缓存连接并刷新 trace
func (a *application) Close(ctx context.Context) {
	if err := a.cache.Close(); err != nil {
		appLogger.Warn().Err(err).Msg("关闭解析缓存失败")
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			appLogger.Warn().Err(err).Msg("关闭 TracerProvider 失败")
		}
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	return cfg, nil
}

// initLogger 初始化 zerolog，并让 Hertz 的 hlog 共用同一个 logger
func initLogger(cfg appLogger.Config) {
	appLogger.Init(cfg)
	glog.SetLogger(hertzadapter.From(appLogger.Logger))
	glog.SetLevel(hlogLevel(zerolog.GlobalLevel()))
}

func hlogLevel(l zerolog.Level) glog.Level {
	switch l {
	case zerolog.TraceLevel:
		return glog.LevelTrace
	case zerolog.DebugLevel:
		return glog.LevelDebug
	case zerolog.WarnLevel:
		return glog.LevelWarn
	case zerolog.ErrorLevel:
		return glog.LevelError
	case zerolog.FatalLevel, zerolog.PanicLevel, zerolog.Disabled:
		return glog.LevelFatal
	default:
		return glog.LevelInfo
	}
}

// buildApp 按配置创建解析器、缓存、模型注册表和筛选器
func buildApp(ctx context.Context, cfg *config.Config, workers int) (*application, error) {
	a := &application{cfg: cfg, cache: cache.NopCache{}}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitProvider(ctx, tracing.ProviderConfig{
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.Tracing.ServiceName,
			Insecure:    cfg.Tracing.Insecure,
		})
		if err != nil {
			return nil, err
		}
		a.shutdown = shutdown
		appLogger.Info().Str("endpoint", cfg.Tracing.Endpoint).Msg("OpenTelemetry 导出已启用")
	}

	docParser, err := buildParser(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled {
		ttl := config.Seconds(cfg.Screening.CacheTTLSeconds, time.Hour)
		redisCache, err := cache.NewRedisTextCache(&cfg.Redis, ttl)
		if err != nil {
			// 缓存不可用不影响筛选
			appLogger.Warn().Err(err).Msg("Redis 不可用，不使用解析缓存")
		} else {
			a.cache = redisCache
			appLogger.Info().Str("address", cfg.Redis.Address).Dur("ttl", ttl).Msg("解析缓存已启用")
		}
	}

	if workers <= 0 {
		workers = cfg.Screening.Workers
	}
	s, err := screening.NewScreener(
		[]screening.ComponentOpt{
			screening.WithParser(docParser),
			screening.WithCache(a.cache),
			screening.WithRegistry(registry),
		},
		[]screening.SettingOpt{
			screening.WithWorkers(workers),
			screening.WithPreviewChars(cfg.Screening.PreviewChars),
			screening.WithMaxFiles(cfg.Screening.MaxFiles),
		},
	)
	if err != nil {
		return nil, err
	}
	a.screener = s
	return a, nil
}

func buildParser(ctx context.Context, cfg *config.Config) (*parser.DocumentParser, error) {
	var pdfOpts []parser.EinoPDFOption
	if cfg.Tika.Enabled {
		ocr := parser.NewTikaOCR(cfg.Tika.ServerURL,
			parser.WithOCRLanguage(cfg.Tika.OCRLanguage),
			parser.WithOCRDPI(cfg.Tika.OCRDPI),
			parser.WithTimeout(config.Seconds(cfg.Tika.Timeout, parser.DefaultTikaTimeout)),
		)
		pdfOpts = append(pdfOpts, parser.WithPageRecognizer(ocr))
		appLogger.Info().Str("server", cfg.Tika.ServerURL).Msg("扫描件 OCR 已启用")
	}

	pdfExtractor, err := parser.NewEinoPDFExtractor(ctx, pdfOpts...)
	if err != nil {
		return nil, fmt.Errorf("创建 PDF 提取器失败: %w", err)
	}
	return parser.NewDocumentParser(pdfExtractor, docxOptions(cfg.DOCX)...), nil
}

// docxOptions 配置了许可证时让 DOCX 解析走 unioffice
func docxOptions(cfg config.DOCXConfig) []parser.DocumentOption {
	if cfg.LicenseKey == "" {
		return nil
	}
	if err := parser.SetUniofficeLicense(cfg.LicenseKey); err != nil {
		appLogger.Warn().Err(err).Msg("unioffice 许可证无效，DOCX 改为直接读取 XML")
		return nil
	}
	appLogger.Info().Msg("DOCX 解析使用 unioffice")
	return []parser.DocumentOption{
		parser.WithExtractor(types.FileTypeDOCX, parser.NewDOCXExtractor(parser.WithUnioffice(true))),
	}
}

// buildRegistry 注册配置中启用的实体识别模型。llm 模型缺少 API Key 时跳过。
func buildRegistry(cfg *config.Config) (*ner.Registry, error) {
	registry := ner.NewRegistry(cfg.NER.DefaultModel)

	models := cfg.NER.Models
	if len(models) == 0 {
		models = []string{cfg.NER.DefaultModel}
	}
	for _, name := range models {
		switch name {
		case "prose":
			registry.Register("prose", ner.Combine(ner.NewProseRecognizer(), ner.DatePatternRecognizer{}))
		case "llm":
			if !cfg.LLMEnabled() {
				appLogger.Warn().Msg("未配置 LLM API Key，跳过 llm 模型")
				continue
			}
			chatModel, err := llm.NewOpenAIChatModel(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.APIURL,
				llm.WithTimeout(config.Seconds(cfg.LLM.TimeoutSecond, time.Minute)),
			)
			if err != nil {
				return nil, fmt.Errorf("创建 LLM 客户端失败: %w", err)
			}
			limited := llm.NewRateLimitedChatModel(chatModel, cfg.LLM.QPMLimit)
			registry.Register("llm", ner.NewLLMRecognizer(limited, ner.WithMaxInputChars(cfg.LLM.MaxInputChars)))
		}
	}

	if _, _, err := registry.Get(""); err != nil {
		return nil, fmt.Errorf("默认模型 %q 不可用: %w", cfg.NER.DefaultModel, err)
	}
	return registry, nil
}
