// Package llm 提供 OpenAI 兼容的 eino ChatModel 实现、限流代理和测试用的模拟模型
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	appLogger "resume-screener/internal/logger"
)

const (
	defaultAPIURL    = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	defaultModelName = "qwen-plus"
	defaultTimeout   = 60 * time.Second
)

// ErrEmptyAPIKey 未配置 API 密钥
var ErrEmptyAPIKey = errors.New("llm: API 密钥不能为空")

// chatCompletionRequest OpenAI 兼容的请求体
type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []*schema.Message `json:"messages"`
	Temperature    float32           `json:"temperature"`
	ResponseFormat *responseFormat   `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// OpenAIChatModel 通过 OpenAI 兼容接口（如 DashScope compatible-mode）调用对话模型
type OpenAIChatModel struct {
	apiKey     string
	modelName  string
	apiURL     string
	jsonMode   bool
	httpClient *http.Client
	logger     zerolog.Logger
}

// ChatModelOption OpenAIChatModel 的可选配置
type ChatModelOption func(*OpenAIChatModel)

// WithHTTPClient 替换默认 HTTP 客户端
func WithHTTPClient(c *http.Client) ChatModelOption {
	return func(m *OpenAIChatModel) {
		if c != nil {
			m.httpClient = c
		}
	}
}

// WithJSONMode 要求模型以 JSON 对象格式回复
func WithJSONMode(enabled bool) ChatModelOption {
	return func(m *OpenAIChatModel) {
		m.jsonMode = enabled
	}
}

// WithChatLogger 设置日志记录器
func WithChatLogger(l zerolog.Logger) ChatModelOption {
	return func(m *OpenAIChatModel) {
		m.logger = l
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) ChatModelOption {
	return func(m *OpenAIChatModel) {
		if d > 0 {
			m.httpClient.Timeout = d
		}
	}
}

// NewOpenAIChatModel 创建模型客户端；modelName 和 apiURL 为空时使用默认值
func NewOpenAIChatModel(apiKey, modelName, apiURL string, opts ...ChatModelOption) (*OpenAIChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrEmptyAPIKey
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultModelName
	}
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultAPIURL
	}

	m := &OpenAIChatModel{
		apiKey:     apiKey,
		modelName:  modelName,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     appLogger.Logger.With().Str("component", "llm").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Generate 实现 model.ChatModel 接口
func (m *OpenAIChatModel) Generate(ctx context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	payload := chatCompletionRequest{
		Model:    m.modelName,
		Messages: messages,
	}
	if m.jsonMode {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}
	m.logger.Debug().
		Str("model", m.modelName).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("LLM 请求完成")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API 请求失败，状态 %s: %s", resp.Status, truncate(string(respBody), 512))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("API 响应中没有 choices")
	}

	msg := parsed.Choices[0].Message
	content := ""
	if msg.Content != nil {
		content = *msg.Content
	}
	role := schema.RoleType(msg.Role)
	if role == "" {
		role = schema.Assistant
	}
	return &schema.Message{Role: role, Content: content}, nil
}

// Stream 不支持流式输出
func (m *OpenAIChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("llm: OpenAIChatModel 不支持 Stream")
}

// BindTools 实体识别场景不使用工具调用
func (m *OpenAIChatModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) > 0 {
		return errors.New("llm: OpenAIChatModel 不支持工具调用")
	}
	return nil
}

var _ model.ChatModel = (*OpenAIChatModel)(nil)

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
