package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"resume-screener/internal/logger"
)

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Address          string   `yaml:"address" validate:"required"`
	MaxRequestBodyMB int      `yaml:"max_request_body_mb" validate:"gte=0"`
	APIKeys          []string `yaml:"api_keys,omitempty"` // 为空时不启用 API Key 校验
}

// TikaConfig Tika 服务配置，用于扫描件 PDF 的 OCR 兜底
type TikaConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServerURL   string `yaml:"server_url" validate:"required_if=Enabled true"`
	Timeout     int    `yaml:"timeout_seconds" validate:"gte=0"`
	OCRLanguage string `yaml:"ocr_language"`
	OCRDPI      int    `yaml:"ocr_dpi" validate:"gte=0"`
}

// DOCXConfig DOCX 解析配置。设置许可证后才使用 unioffice，否则直接读取 document.xml
type DOCXConfig struct {
	LicenseKey string `yaml:"license_key"`
}

// NERConfig 实体识别模型配置
type NERConfig struct {
	DefaultModel string   `yaml:"default_model" validate:"required,oneof=prose llm"`
	Models       []string `yaml:"models" validate:"dive,oneof=prose llm"`
}

// LLMConfig OpenAI 兼容的对话模型配置
type LLMConfig struct {
	APIKey        string `yaml:"api_key"`
	APIURL        string `yaml:"api_url" validate:"omitempty,url"`
	Model         string `yaml:"model"`
	QPMLimit      int    `yaml:"qpm_limit" validate:"gte=0"`
	TimeoutSecond int    `yaml:"timeout_seconds" validate:"gte=0"`
	MaxInputChars int    `yaml:"max_input_chars" validate:"gte=0"`
}

// ScreeningConfig 批量筛选配置
type ScreeningConfig struct {
	Workers         int `yaml:"workers" validate:"gte=1,lte=64"`
	PreviewChars    int `yaml:"preview_chars" validate:"gte=0"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" validate:"gte=0"`
	MaxFiles        int `yaml:"max_files" validate:"gte=0"`
}

// RedisConfig 解析文本缓存（带过期时间，不做持久化）
type RedisConfig struct {
	Enabled             bool   `yaml:"enabled"`
	Address             string `yaml:"address" validate:"required_if=Enabled true"`
	Password            string `yaml:"password"`
	DB                  int    `yaml:"db" validate:"gte=0"`
	KeyPrefix           string `yaml:"key_prefix"`
	PoolSize            int    `yaml:"pool_size" validate:"gte=0"`
	DialTimeoutSeconds  int    `yaml:"dial_timeout_seconds" validate:"gte=0"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds" validate:"gte=0"`
}

// TracingConfig OpenTelemetry 导出配置
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint" validate:"required_if=Enabled true"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// Config 应用程序配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logger    logger.Config   `yaml:"logger"`
	Tika      TikaConfig      `yaml:"tika"`
	DOCX      DOCXConfig      `yaml:"docx"`
	NER       NERConfig       `yaml:"ner"`
	LLM       LLMConfig       `yaml:"llm"`
	Screening ScreeningConfig `yaml:"screening"`
	Redis     RedisConfig     `yaml:"redis"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ErrConfigNotFound 指定的配置文件不存在
var ErrConfigNotFound = errors.New("配置文件不存在")

var validate = validator.New()

// 环境变量覆盖
const (
	EnvLLMAPIKey = "SCREENER_LLM_API_KEY"
	EnvLLMAPIURL = "SCREENER_LLM_API_URL"
	EnvLLMModel  = "SCREENER_LLM_MODEL"
	EnvTikaURL   = "SCREENER_TIKA_URL"
	EnvRedisAddr = "SCREENER_REDIS_ADDR"
	EnvDOCXKey   = "SCREENER_DOCX_LICENSE_KEY"
)

// LoadConfig 加载配置。configPath 为空时在常见位置查找，找不到则使用默认配置；
// 显式指定的文件不存在时返回 ErrConfigNotFound。最后应用环境变量覆盖并校验。
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
	}

	cfg := createDefaultConfig()
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		if err := readInto(configPath, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFromFileOnly 只从文件加载，不查找默认路径，也不读取环境变量
func LoadConfigFromFileOnly(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}
	cfg := createDefaultConfig()
	if err := readInto(configPath, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 按结构体标签校验配置
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}

// LLMEnabled LLM 实体识别是否可用
func (c *Config) LLMEnabled() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}

func readInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}
	return nil
}

func findConfigFile() string {
	searchPaths := []string{
		"config.yaml",
		filepath.Join("config", "config.yaml"),
		filepath.Join("internal", "config", "config.yaml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".resume-screener", "config.yaml"))
	}
	if execPath, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(filepath.Dir(execPath), "config.yaml"))
	}
	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvLLMAPIKey); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv(EnvLLMAPIURL); v != "" {
		cfg.LLM.APIURL = v
	}
	if v := os.Getenv(EnvLLMModel); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv(EnvTikaURL); v != "" {
		cfg.Tika.ServerURL = v
		cfg.Tika.Enabled = true
	}
	if v := os.Getenv(EnvDOCXKey); v != "" {
		cfg.DOCX.LicenseKey = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Redis.Address = v
		cfg.Redis.Enabled = true
	}
}

// createDefaultConfig 无配置文件时的默认值：离线 prose 模型、顺序处理、不启用外部服务
func createDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:          ":8080",
			MaxRequestBodyMB: 32,
		},
		Logger: logger.Config{
			Level:      "info",
			Format:     "pretty",
			TimeFormat: "15:04:05",
		},
		Tika: TikaConfig{
			ServerURL:   "http://localhost:9998",
			Timeout:     120,
			OCRLanguage: "eng",
			OCRDPI:      300,
		},
		NER: NERConfig{
			DefaultModel: "prose",
			Models:       []string{"prose"},
		},
		LLM: LLMConfig{
			QPMLimit:      30,
			TimeoutSecond: 60,
			MaxInputChars: 12000,
		},
		Screening: ScreeningConfig{
			Workers:         1,
			PreviewChars:    300,
			CacheTTLSeconds: 3600,
			MaxFiles:        50,
		},
		Redis: RedisConfig{
			Address:   "localhost:6379",
			KeyPrefix: "screener:",
			PoolSize:  10,
		},
		Tracing: TracingConfig{
			ServiceName: "resume-screener",
			Insecure:    true,
		},
	}
}

// CreateSampleConfig 把默认配置写到指定路径
func CreateSampleConfig(filePath string) error {
	data, err := yaml.Marshal(createDefaultConfig())
	if err != nil {
		return fmt.Errorf("序列化默认配置失败: %w", err)
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}
	return os.WriteFile(filePath, data, 0o644)
}

// Seconds 把秒数转换为 time.Duration，非正数时返回默认值
func Seconds(n int, def time.Duration) time.Duration {
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

// GetDuration 解析时间字符串，失败时返回默认值
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
