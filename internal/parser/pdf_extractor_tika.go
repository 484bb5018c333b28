package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	appLogger "resume-screener/internal/logger"
)

// DefaultTikaTimeout OCR 请求的默认超时，整份扫描件逐页识别耗时较长
const DefaultTikaTimeout = 120 * time.Second

// TikaOCR 基于 Apache Tika 服务的逐页 OCR。
// 以 ocr_only 策略把每一页渲染为图片后识别，结果为 XHTML，每页一个 div.page。
type TikaOCR struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	Client    *http.Client
	language  string
	dpi       int
	logger    zerolog.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaOCR)

// WithOCRLanguage 设置 Tesseract 语言，例如 eng、chi_sim+eng
func WithOCRLanguage(lang string) TikaOption {
	return func(t *TikaOCR) {
		if lang != "" {
			t.language = lang
		}
	}
}

// WithOCRDPI 设置页面渲染分辨率
func WithOCRDPI(dpi int) TikaOption {
	return func(t *TikaOCR) {
		if dpi > 0 {
			t.dpi = dpi
		}
	}
}

// WithTikaLogger 配置日志记录器
func WithTikaLogger(l zerolog.Logger) TikaOption {
	return func(t *TikaOCR) {
		t.logger = l
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(t *TikaOCR) {
		if timeout > 0 {
			t.Client.Timeout = timeout
		}
	}
}

// WithHTTPClient 替换 HTTP 客户端
func WithHTTPClient(c *http.Client) TikaOption {
	return func(t *TikaOCR) {
		if c != nil {
			t.Client = c
		}
	}
}

var _ PageRecognizer = (*TikaOCR)(nil)

// NewTikaOCR 创建 Tika OCR 客户端，默认 300 DPI、英文识别、120 秒超时
func NewTikaOCR(serverURL string, options ...TikaOption) *TikaOCR {
	t := &TikaOCR{
		ServerURL: strings.TrimRight(serverURL, "/"),
		Client:    &http.Client{Timeout: DefaultTikaTimeout},
		language:  "eng",
		dpi:       300,
		logger:    appLogger.For("parser-ocr"),
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// RecognizePages 实现 PageRecognizer
func (t *TikaOCR) RecognizePages(ctx context.Context, data []byte, uri string) ([]string, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.ServerURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", "text/html")
	req.Header.Set("X-Tika-PDFOcrStrategy", "ocr_only")
	req.Header.Set("X-Tika-PDFOcrDPI", strconv.Itoa(t.dpi))
	req.Header.Set("X-Tika-OCRLanguage", t.language)
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	pages, err := splitTikaPages(resp.Body)
	if err != nil {
		return nil, err
	}

	t.logger.Debug().
		Str("uri", uri).
		Int("pages", len(pages)).
		Dur("elapsed", time.Since(startTime)).
		Msg("OCR 完成")
	return pages, nil
}

// splitTikaPages 从 Tika 的 XHTML 输出中按 div.page 切分页面文本；
// 没有分页标记时整个 body 作为一页
func splitTikaPages(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("解析Tika响应失败: %w", err)
	}

	var pages []string
	doc.Find("div.page").Each(func(_ int, s *goquery.Selection) {
		pages = append(pages, strings.TrimSpace(s.Text()))
	})
	if len(pages) == 0 {
		if body := strings.TrimSpace(doc.Find("body").Text()); body != "" {
			pages = append(pages, body)
		}
	}
	return pages, nil
}
