// Package extractor 从清洗后的简历文本中抽取实体列表和章节
package extractor

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	appLogger "resume-screener/internal/logger"
	"resume-screener/internal/ner"
	"resume-screener/internal/types"
)

// FieldExtractor 组合实体识别器和章节切分策略
type FieldExtractor struct {
	recognizer ner.Recognizer
	sections   SectionStrategy
	logger     zerolog.Logger
}

// Option FieldExtractor 的可选配置
type Option func(*FieldExtractor)

// WithSectionStrategy 替换默认的关键字章节策略
func WithSectionStrategy(s SectionStrategy) Option {
	return func(e *FieldExtractor) {
		if s != nil {
			e.sections = s
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(l zerolog.Logger) Option {
	return func(e *FieldExtractor) {
		e.logger = l
	}
}

// New 创建字段抽取器；recognizer 为 nil 时不做实体识别
func New(recognizer ner.Recognizer, opts ...Option) *FieldExtractor {
	e := &FieldExtractor{
		recognizer: recognizer,
		sections:   NewKeywordSectionStrategy(),
		logger:     appLogger.For("extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract 返回 ResumeFields。实体识别失败时实体列表为空，章节仍然照常抽取，
// 同时返回包装后的错误供调用方记录。
func (e *FieldExtractor) Extract(ctx context.Context, text string) (types.ResumeFields, error) {
	fields := types.ResumeFields{
		Persons: []string{},
		Orgs:    []string{},
		Dates:   []string{},
	}

	var recErr error
	if e.recognizer != nil {
		entities, err := e.recognizer.Recognize(ctx, text)
		if err != nil {
			recErr = fmt.Errorf("extractor: entity recognition: %w", err)
			e.logger.Warn().Err(err).Msg("实体识别失败，实体列表置空")
		}
		for _, ent := range entities {
			switch ent.Label {
			case types.LabelOrg, types.LabelFac:
				fields.Orgs = append(fields.Orgs, ent.Text)
			case types.LabelPerson:
				fields.Persons = append(fields.Persons, ent.Text)
			case types.LabelDate:
				fields.Dates = append(fields.Dates, ent.Text)
			}
		}
	}

	for _, sec := range types.AllSections() {
		if v, ok := e.sections.Section(text, sec); ok {
			fields.SetSection(sec, v)
		}
	}
	return fields, recErr
}
