// Package parser 把上传的简历文件（PDF / DOCX / TXT）解析为纯文本
package parser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	appLogger "resume-screener/internal/logger"
	"resume-screener/internal/tracing"
	"resume-screener/internal/types"
)

// TextExtractor 把一种格式的文件内容转换为纯文本
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, uri string) (string, error)
}

// PageRecognizer 对 PDF 逐页做光学字符识别，返回的切片下标与页码（从 0 开始）对应
type PageRecognizer interface {
	RecognizePages(ctx context.Context, data []byte, uri string) ([]string, error)
}

var (
	// ErrUnsupportedFileType 文件扩展名不在 pdf/docx/txt 之列
	ErrUnsupportedFileType = errors.New("不支持的文件类型")
	// ErrExtractorPanic 提取器内部 panic
	ErrExtractorPanic = errors.New("提取器 panic")
)

var tracer = otel.Tracer("resume-screener/parser")

// DocumentParser 按文件类型分发到具体的提取器
type DocumentParser struct {
	extractors map[types.FileType]TextExtractor
	logger     zerolog.Logger
}

// DocumentOption DocumentParser 的配置选项
type DocumentOption func(*DocumentParser)

// WithExtractor 为某种文件类型注册（或替换）提取器
func WithExtractor(ft types.FileType, e TextExtractor) DocumentOption {
	return func(p *DocumentParser) {
		if e != nil {
			p.extractors[ft] = e
		}
	}
}

// WithParserLogger 设置日志记录器
func WithParserLogger(l zerolog.Logger) DocumentOption {
	return func(p *DocumentParser) {
		p.logger = l
	}
}

// NewDocumentParser 创建文档解析器。pdf 为 nil 时 PDF 文件一律视为无法解析，
// DOCX 与 TXT 默认使用内置提取器。
func NewDocumentParser(pdf TextExtractor, opts ...DocumentOption) *DocumentParser {
	p := &DocumentParser{
		extractors: map[types.FileType]TextExtractor{
			types.FileTypeDOCX: NewDOCXExtractor(),
			types.FileTypeTXT:  PlainTextExtractor{},
		},
		logger: appLogger.For("parser"),
	}
	if pdf != nil {
		p.extractors[types.FileTypePDF] = pdf
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseWithError 解析文档并返回底层错误，调用方需要区分失败原因时使用
func (p *DocumentParser) ParseWithError(ctx context.Context, doc types.RawDocument) (text string, err error) {
	ft := doc.FileType()
	extractor, ok := p.extractors[ft]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, doc.Filename)
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: 解析 %s 时发生 panic: %v", ErrExtractorPanic, doc.Filename, r)
		}
	}()

	return extractor.ExtractText(ctx, doc.Content, doc.Filename)
}

// Parse 解析文档为纯文本。任何失败（包括不支持的类型）都只记录日志并返回空字符串，
// 由调用方把空文本当作"无法解析"处理。
func (p *DocumentParser) Parse(ctx context.Context, doc types.RawDocument) string {
	ctx, span := tracer.Start(ctx, "parser.Parse")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.filename", tracing.SafeAttributeValue("document.filename", doc.Filename, tracing.DefaultMaxLength)),
		attribute.String("document.type", string(doc.FileType())),
		attribute.Int("document.bytes", len(doc.Content)),
	)

	start := time.Now()
	text, err := p.ParseWithError(ctx, doc)
	if err != nil {
		errType := tracing.ErrorTypeParse
		if errors.Is(err, ErrExtractorPanic) {
			errType = tracing.ErrorTypeInternal
		}
		tracing.RecordError(span, err, errType)
		p.logger.Warn().Err(err).
			Str("filename", doc.Filename).
			Dur("elapsed", time.Since(start)).
			Msg("文档解析失败，按空文本处理")
		return ""
	}

	span.SetAttributes(attribute.Int("document.text_length", len(text)))
	p.logger.Debug().
		Str("filename", doc.Filename).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("文档解析完成")
	return text
}
