package parser

import (
	"context"
	"strings"
)

// PlainTextExtractor 按 UTF-8 解码纯文本文件，无法解码的字节直接丢弃
type PlainTextExtractor struct{}

// ExtractText 实现 TextExtractor
func (PlainTextExtractor) ExtractText(_ context.Context, data []byte, _ string) (string, error) {
	text := strings.ToValidUTF8(string(data), "")
	return strings.TrimPrefix(text, "\ufeff"), nil
}
