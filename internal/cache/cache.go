// Package cache 缓存已解析的简历文本，按文件内容的 MD5 寻址
package cache

import (
	"context"
	"errors"

	"resume-screener/internal/textutil"
	"resume-screener/internal/types"
)

// ErrCacheMiss 缓存中没有对应条目
var ErrCacheMiss = errors.New("cache miss")

// TextCache 解析文本缓存。实现必须可以被多个 goroutine 同时使用。
type TextCache interface {
	// Get 命中时返回文本，未命中返回 ErrCacheMiss
	Get(ctx context.Context, doc types.RawDocument) (string, error)
	Set(ctx context.Context, doc types.RawDocument, text string) error
	Close() error
}

// DocumentKey 由文件类型和内容 MD5 组成，同一份内容换扩展名上传会走不同的解析器
func DocumentKey(doc types.RawDocument) string {
	return "parsed:" + string(doc.FileType()) + ":" + textutil.CalculateMD5(doc.Content)
}

// NopCache 未启用缓存时使用，永远未命中
type NopCache struct{}

var _ TextCache = NopCache{}

func (NopCache) Get(context.Context, types.RawDocument) (string, error) { return "", ErrCacheMiss }

func (NopCache) Set(context.Context, types.RawDocument, string) error { return nil }

func (NopCache) Close() error { return nil }
