package ner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	appLogger "resume-screener/internal/logger"
	"resume-screener/internal/tracing"
	"resume-screener/internal/types"
)

// ErrInvalidLLMResponse 模型回复中没有可解析的 JSON
var ErrInvalidLLMResponse = errors.New("ner: invalid LLM response")

const defaultEntityPrompt = `You are a named-entity recognizer for resumes.
Extract every entity of these types from the user's text, in order of appearance, keeping duplicates:
- PERSON: names of people
- ORG: companies, universities, agencies, institutions
- FAC: buildings, airports, campuses and other facilities
- DATE: absolute or relative dates and periods
Copy each entity's text exactly as it appears. Do not invent entities.
Reply with a single JSON object: {"entities": [{"text": "...", "label": "PERSON|ORG|FAC|DATE"}]}`

// 单次请求发送给模型的最大字符数
const defaultMaxInputChars = 12000

type llmEntityResponse struct {
	Entities []struct {
		Text  string `json:"text"`
		Label string `json:"label"`
	} `json:"entities"`
}

// LLMRecognizer 通过对话模型做实体识别
type LLMRecognizer struct {
	llm           model.ChatModel
	prompt        string
	maxInputChars int
	logger        zerolog.Logger
}

// LLMOption LLMRecognizer 的可选配置
type LLMOption func(*LLMRecognizer)

// WithSystemPrompt 替换默认的系统提示词
func WithSystemPrompt(prompt string) LLMOption {
	return func(r *LLMRecognizer) {
		if strings.TrimSpace(prompt) != "" {
			r.prompt = prompt
		}
	}
}

// WithMaxInputChars 限制发送给模型的文本长度
func WithMaxInputChars(n int) LLMOption {
	return func(r *LLMRecognizer) {
		if n > 0 {
			r.maxInputChars = n
		}
	}
}

// WithLLMLogger 设置日志记录器
func WithLLMLogger(l zerolog.Logger) LLMOption {
	return func(r *LLMRecognizer) {
		r.logger = l
	}
}

// NewLLMRecognizer 创建基于对话模型的识别器
func NewLLMRecognizer(llm model.ChatModel, opts ...LLMOption) *LLMRecognizer {
	r := &LLMRecognizer{
		llm:           llm,
		prompt:        defaultEntityPrompt,
		maxInputChars: defaultMaxInputChars,
		logger:        appLogger.For("ner-llm"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var tracer = otel.Tracer("resume-screener/ner")

// Recognize 调用模型并解析 JSON 回复
func (r *LLMRecognizer) Recognize(ctx context.Context, text string) (entities []types.Entity, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "ner.LLMRecognize")
	defer func() {
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		} else {
			span.SetAttributes(attribute.Int("ner.entities", len(entities)))
		}
		span.End()
	}()

	input := text
	if runes := []rune(input); len(runes) > r.maxInputChars {
		input = string(runes[:r.maxInputChars])
		r.logger.Debug().Int("max_chars", r.maxInputChars).Msg("文本过长，已截断后再识别")
	}

	messages := []*schema.Message{
		schema.SystemMessage(r.prompt),
		schema.UserMessage(input),
	}
	resp, err := r.llm.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("ner: LLM 调用失败: %w", err)
	}

	raw := extractJSON(resp.Content)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object found", ErrInvalidLLMResponse)
	}
	var parsed llmEntityResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLLMResponse, err)
	}

	out := make([]types.Entity, 0, len(parsed.Entities))
	cursor := 0
	for _, e := range parsed.Entities {
		entText := strings.TrimSpace(e.Text)
		if entText == "" {
			continue
		}
		start, end := locate(text, entText, cursor)
		if start >= 0 {
			cursor = end
		}
		out = append(out, types.Entity{
			Text:  entText,
			Label: strings.ToUpper(strings.TrimSpace(e.Label)),
			Start: start,
			End:   end,
		})
	}
	return out, nil
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// extractJSON 从模型回复中取出第一个完整的 JSON 对象
func extractJSON(text string) string {
	if m := fencedJSON.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	level := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			level++
		case c == '}':
			level--
			if level == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
