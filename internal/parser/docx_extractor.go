package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"

	appLogger "resume-screener/internal/logger"
)

// ErrDOCXBodyNotFound DOCX 压缩包里没有 word/document.xml
var ErrDOCXBodyNotFound = errors.New("docx 中缺少 word/document.xml")

// ErrEmptyLicenseKey 未提供 unioffice 许可证
var ErrEmptyLicenseKey = errors.New("unioffice 许可证为空")

// SetUniofficeLicense 安装 unioffice 计量许可证，进程启动时调用一次
func SetUniofficeLicense(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyLicenseKey
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("设置 unioffice 许可证失败: %w", err)
	}
	return nil
}

// DOCXExtractor 按文档顺序读取全部段落，段落之间以换行分隔。
// 启用 unioffice 时优先使用它，失败或取不到正文时退回到直接读取 word/document.xml。
// 未安装许可证的 unioffice 会向标准输出打印提示，所以默认不启用。
type DOCXExtractor struct {
	useUnioffice bool
	logger       zerolog.Logger
}

// DOCXOption DOCX 提取器的配置选项
type DOCXOption func(*DOCXExtractor)

// WithUnioffice 已调用 SetUniofficeLicense 时启用 unioffice
func WithUnioffice(enabled bool) DOCXOption {
	return func(e *DOCXExtractor) {
		e.useUnioffice = enabled
	}
}

// WithDOCXLogger 配置日志记录器
func WithDOCXLogger(l zerolog.Logger) DOCXOption {
	return func(e *DOCXExtractor) {
		e.logger = l
	}
}

// NewDOCXExtractor 创建 DOCX 提取器
func NewDOCXExtractor(opts ...DOCXOption) *DOCXExtractor {
	e := &DOCXExtractor{logger: appLogger.For("parser-docx")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractText 实现 TextExtractor
func (e *DOCXExtractor) ExtractText(ctx context.Context, data []byte, uri string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var libErr error
	if e.useUnioffice {
		text, err := extractDOCXWithUnioffice(data)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		libErr = err
		e.logger.Debug().Err(err).Str("uri", uri).Msg("unioffice 未取到正文，改用 XML 直读")
	}

	text, err := extractDOCXParagraphs(data)
	if err != nil {
		if libErr == nil {
			return "", fmt.Errorf("解析 DOCX 失败: %w", err)
		}
		return "", fmt.Errorf("解析 DOCX 失败: %w", errors.Join(libErr, err))
	}
	return text, nil
}

func extractDOCXWithUnioffice(data []byte) (text string, err error) {
	// unioffice 对结构异常的文件可能直接 panic
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unioffice panic: %v", r)
		}
	}()

	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	paragraphs := doc.Paragraphs()
	lines := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		var sb strings.Builder
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n"), nil
}

// extractDOCXParagraphs 把 docx 当作 zip 读取，按 <w:p> 聚合其中的 <w:t> 文本
func extractDOCXParagraphs(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", ErrDOCXBodyNotFound
	}

	rc, err := body.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var (
		lines   []string
		current strings.Builder
		inPara  bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				var content string
				if err := decoder.DecodeElement(&content, &el); err != nil {
					return "", err
				}
				current.WriteString(content)
			case "tab":
				current.WriteString("\t")
			}
		case xml.EndElement:
			if el.Name.Local == "p" && inPara {
				lines = append(lines, current.String())
				inPara = false
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
