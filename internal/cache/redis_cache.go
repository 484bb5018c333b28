package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resume-screener/internal/config"
	appLogger "resume-screener/internal/logger"
	"resume-screener/internal/tracing"
	"resume-screener/internal/types"
)

var redisTracer = otel.Tracer("resume-screener/cache/redis")

// RedisTextCache 把解析文本写入 Redis 字符串键并设置过期时间
type RedisTextCache struct {
	Client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    zerolog.Logger
}

var _ TextCache = (*RedisTextCache)(nil)

// NewRedisTextCache 按配置创建客户端、挂载 OpenTelemetry 钩子并检查连通性
func NewRedisTextCache(cfg *config.RedisConfig, ttl time.Duration) (*RedisTextCache, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  config.Seconds(cfg.DialTimeoutSeconds, 5*time.Second),
		ReadTimeout:  config.Seconds(cfg.ReadTimeoutSeconds, 3*time.Second),
		WriteTimeout: config.Seconds(cfg.WriteTimeoutSeconds, 3*time.Second),
	})

	if err := redisotel.InstrumentTracing(client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return NewRedisTextCacheFromClient(client, cfg.KeyPrefix, ttl), nil
}

// NewRedisTextCacheFromClient 使用已有客户端，ttl 为 0 表示不过期
func NewRedisTextCacheFromClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisTextCache {
	return &RedisTextCache{
		Client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    appLogger.For("cache"),
	}
}

func (c *RedisTextCache) key(doc types.RawDocument) string {
	return c.keyPrefix + DocumentKey(doc)
}

// Get 读取缓存文本
func (c *RedisTextCache) Get(ctx context.Context, doc types.RawDocument) (string, error) {
	key := c.key(doc)
	ctx, span := redisTracer.Start(ctx, "cache.Get")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", tracing.SafeRedisKey(key)))

	text, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return "", ErrCacheMiss
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return "", fmt.Errorf("读取解析缓存失败: %w", err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", true))
	return text, nil
}

// Set 写入缓存。空文本不缓存，下次请求会重新解析（例如 OCR 服务恢复后）。
func (c *RedisTextCache) Set(ctx context.Context, doc types.RawDocument, text string) error {
	if text == "" {
		return nil
	}
	key := c.key(doc)
	ctx, span := redisTracer.Start(ctx, "cache.Set")
	defer span.End()
	span.SetAttributes(
		attribute.String("cache.key", tracing.SafeRedisKey(key)),
		attribute.Int("cache.value_length", len(text)),
	)

	if err := c.Client.Set(ctx, key, text, c.ttl).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入解析缓存失败: %w", err)
	}
	c.logger.Debug().Str("filename", doc.Filename).Dur("ttl", c.ttl).Msg("解析文本已缓存")
	return nil
}

// Close closes the Redis client connection
func (c *RedisTextCache) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
