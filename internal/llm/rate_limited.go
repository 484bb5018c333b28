package llm

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"
)

const defaultQPM = 30

// RateLimitedChatModel 对模型调用做限流和重试的代理
type RateLimitedChatModel struct {
	original      model.ChatModel
	limiter       *rate.Limiter
	retryWaitTime time.Duration
	maxRetries    int
}

// NewRateLimitedChatModel 按每分钟请求数创建限流代理，突发容量为 QPM 的一半
func NewRateLimitedChatModel(original model.ChatModel, qpm int) *RateLimitedChatModel {
	if qpm <= 0 {
		qpm = defaultQPM
	}
	burst := qpm / 2
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedChatModel{
		original:      original,
		limiter:       rate.NewLimiter(rate.Limit(float64(qpm)/60.0), burst),
		retryWaitTime: time.Second,
		maxRetries:    3,
	}
}

// WithRetryPolicy 设置重试策略
func (rl *RateLimitedChatModel) WithRetryPolicy(waitTime time.Duration, maxRetries int) *RateLimitedChatModel {
	rl.retryWaitTime = waitTime
	if maxRetries >= 0 {
		rl.maxRetries = maxRetries
	}
	return rl
}

// Generate 代理 Generate，增加限流和指数退避重试
func (rl *RateLimitedChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	var out *schema.Message
	err := rl.retryWithBackoff(ctx, func() error {
		var genErr error
		out, genErr = rl.original.Generate(ctx, messages, opts...)
		return genErr
	})
	return out, err
}

// Stream 代理 Stream
func (rl *RateLimitedChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	var out *schema.StreamReader[*schema.Message]
	err := rl.retryWithBackoff(ctx, func() error {
		var streamErr error
		out, streamErr = rl.original.Stream(ctx, messages, opts...)
		return streamErr
	})
	return out, err
}

// BindTools 直接转发
func (rl *RateLimitedChatModel) BindTools(tools []*schema.ToolInfo) error {
	return rl.original.BindTools(tools)
}

func (rl *RateLimitedChatModel) retryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= rl.maxRetries; attempt++ {
		if err = rl.limiter.Wait(ctx); err != nil {
			return err
		}
		if err = fn(); err == nil {
			return nil
		}
		if !isRetryableError(err) || attempt >= rl.maxRetries {
			return err
		}

		backoff := rl.retryWaitTime * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}

var retryableMessages = []string{
	"timeout",
	"deadline exceeded",
	"connection reset",
	"EOF",
	"connection refused",
	"429",
	"rate limit",
	"no such host",
}

// isRetryableError 根据错误信息判断是否值得重试
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range retryableMessages {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

var _ model.ChatModel = (*RateLimitedChatModel)(nil)
