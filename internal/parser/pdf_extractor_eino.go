package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	appLogger "resume-screener/internal/logger"
	"resume-screener/internal/tracing"
)

// DefaultPDFTimeout 单个 PDF 嵌入文本提取的默认超时
const DefaultPDFTimeout = 30 * time.Second

// EinoPDFExtractor 使用 Eino PDF Parser 逐页提取嵌入文本，
// 没有文本层的页面交给 PageRecognizer 做 OCR 补齐
type EinoPDFExtractor struct {
	parser  einoParser.Parser
	ocr     PageRecognizer
	timeout time.Duration
	logger  zerolog.Logger
}

// EinoPDFOption PDF 提取器的配置选项
type EinoPDFOption func(*EinoPDFExtractor)

// WithEinoLogger 配置日志记录器
func WithEinoLogger(l zerolog.Logger) EinoPDFOption {
	return func(e *EinoPDFExtractor) {
		e.logger = l
	}
}

// WithPageRecognizer 配置空白页的 OCR 兜底
func WithPageRecognizer(r PageRecognizer) EinoPDFOption {
	return func(e *EinoPDFExtractor) {
		e.ocr = r
	}
}

// WithParseTimeout 单个文件嵌入文本提取的超时时间（不含 OCR）
func WithParseTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// withEinoParser 替换底层解析器，测试使用
func withEinoParser(p einoParser.Parser) EinoPDFOption {
	return func(e *EinoPDFExtractor) {
		e.parser = p
	}
}

// NewEinoPDFExtractor 初始化 PDF 提取器，按页输出以便识别缺少文本层的页面
func NewEinoPDFExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	extractor := &EinoPDFExtractor{
		parser:  p,
		timeout: DefaultPDFTimeout,
		logger:  appLogger.For("parser-pdf"),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractText 实现 TextExtractor。页面按文档顺序以换行拼接；
// 嵌入文本为空的页面用 OCR 结果替换，OCR 对每个文件最多调用一次。
func (e *EinoPDFExtractor) ExtractText(ctx context.Context, data []byte, uri string) (string, error) {
	startTime := time.Now()

	pages, err := e.embeddedPages(ctx, data, uri)
	if err != nil {
		return "", err
	}

	blank := blankPages(pages)
	if len(blank) > 0 && e.ocr != nil {
		e.logger.Info().
			Str("uri", uri).
			Int("pages", len(pages)).
			Int("blank_pages", len(blank)).
			Msg("存在无文本层的页面，开始 OCR")

		recognized, err := e.ocr.RecognizePages(ctx, data, uri)
		if err != nil {
			// 已有的嵌入文本仍然可用
			tracing.RecordErrorWithInfo(trace.SpanFromContext(ctx), err, tracing.ErrorTypeOCR,
				attribute.Int("pdf.blank_pages", len(blank)))
			e.logger.Warn().Err(err).Str("uri", uri).Msg("OCR 失败，仅使用嵌入文本")
		} else {
			pages = fillBlankPages(pages, recognized)
		}
	}

	text := strings.Join(pages, "\n")
	e.logger.Debug().
		Str("uri", uri).
		Int("pages", len(pages)).
		Int("chars", len(text)).
		Dur("elapsed", time.Since(startTime)).
		Msg("PDF 文本提取完成")
	return text, nil
}

func (e *EinoPDFExtractor) embeddedPages(ctx context.Context, data []byte, uri string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	extraMeta := map[string]any{
		"source_file_path": uri,
		"extraction_time":  time.Now().Format(time.RFC3339),
	}
	docs, err := e.parser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(extraMeta),
	)
	if err != nil {
		return nil, fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}

	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, doc.Content)
	}
	return pages, nil
}

func blankPages(pages []string) []int {
	var idx []int
	for i, p := range pages {
		if strings.TrimSpace(p) == "" {
			idx = append(idx, i)
		}
	}
	// 解析器一页都没返回时整份文件都需要 OCR
	if len(pages) == 0 {
		idx = append(idx, 0)
	}
	return idx
}

// fillBlankPages 用 OCR 结果替换空白页；OCR 页数多于嵌入页时，多出的页追加在末尾
func fillBlankPages(pages, recognized []string) []string {
	out := make([]string, 0, max(len(pages), len(recognized)))
	for i := 0; i < max(len(pages), len(recognized)); i++ {
		var embedded, ocr string
		if i < len(pages) {
			embedded = pages[i]
		}
		if i < len(recognized) {
			ocr = recognized[i]
		}
		if strings.TrimSpace(embedded) == "" {
			out = append(out, strings.TrimSpace(ocr))
			continue
		}
		out = append(out, embedded)
	}
	return out
}
