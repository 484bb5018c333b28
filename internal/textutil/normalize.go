// Package textutil 提供解析后文本的清洗与辅助函数
package textutil

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// controlRunes 非空白的控制字符，例如 PDF 提取时混入的 \x00、\x0c 之外的杂字符
var controlRunes = runes.Predicate(func(r rune) bool {
	return unicode.IsControl(r) && !unicode.IsSpace(r)
})

// CleanText 删除控制字符，把所有空白（含换行）折叠为单个空格并去掉首尾空白。
// 解析完成后只调用一次，下游所有组件看到的都是清洗后的文本。
func CleanText(raw string) string {
	if raw == "" {
		return ""
	}
	stripped, _, err := transform.String(runes.Remove(controlRunes), raw)
	if err != nil {
		stripped = raw
	}
	// Go 的 \s 只覆盖 ASCII 空白，这里先把 Unicode 空白统一成空格
	stripped = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, stripped)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(stripped, " "))
}

// Preview 返回文本前 n 个字符（按 rune 计）
func Preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// CalculateMD5 计算字节切片的 MD5，作为解析缓存的键
func CalculateMD5(data []byte) string {
	hasher := md5.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}
