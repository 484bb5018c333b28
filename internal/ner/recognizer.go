// Package ner 封装命名实体识别引擎。引擎对调用方是不透明的：输入文本，输出带标签的实体片段。
package ner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"resume-screener/internal/types"
)

// ErrUnknownModel 模型选择控件中不存在该模型
var ErrUnknownModel = errors.New("ner: unknown model")

// Recognizer 命名实体识别能力
type Recognizer interface {
	// Recognize 返回按出现顺序排列的实体，允许重复
	Recognize(ctx context.Context, text string) ([]types.Entity, error)
}

// RecognizerFunc 让普通函数满足 Recognizer
type RecognizerFunc func(ctx context.Context, text string) ([]types.Entity, error)

// Recognize 调用函数本身
func (f RecognizerFunc) Recognize(ctx context.Context, text string) ([]types.Entity, error) {
	return f(ctx, text)
}

// Registry 模型选择控件背后的注册表，名称到识别器的映射
type Registry struct {
	mu          sync.RWMutex
	recognizers map[string]Recognizer
	defaultName string
}

// NewRegistry 创建注册表，defaultName 为未指定模型时使用的名称
func NewRegistry(defaultName string) *Registry {
	return &Registry{
		recognizers: make(map[string]Recognizer),
		defaultName: defaultName,
	}
}

// Register 注册一个模型，同名覆盖
func (r *Registry) Register(name string, rec Recognizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recognizers[name] = rec
}

// Get 按名称取识别器，name 为空时取默认模型
func (r *Registry) Get(name string) (Recognizer, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.defaultName
	}
	rec, ok := r.recognizers[name]
	if !ok {
		return nil, name, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return rec, name, nil
}

// Default 默认模型名称
func (r *Registry) Default() string {
	return r.defaultName
}

// Names 返回已注册模型名称（字典序）
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.recognizers))
	for name := range r.recognizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
