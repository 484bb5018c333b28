// Package contact 用正则启发式从简历文本中提取邮箱、电话和姓名
package contact

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	// 宽松的国际/本地号码格式，可能误匹配其他长数字串
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-]{7,}\d`)
	lineBreak    = regexp.MustCompile(`\r\n|[\n\r\v\f\x1c\x1d\x1e\x{85}\x{2028}\x{2029}]`)
)

const (
	minNameWords = 2
	maxNameWords = 6
)

// Contact 提取结果，缺失字段为 nil
type Contact struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// Extract 独立运行三个启发式规则
func Extract(text string) Contact {
	var c Contact
	if v, ok := NormalizeName(text); ok {
		c.Name = &v
	}
	if v, ok := NormalizeEmail(text); ok {
		c.Email = &v
	}
	if v, ok := NormalizePhone(text); ok {
		c.Phone = &v
	}
	return c
}

// NormalizeEmail 返回第一个匹配的邮箱地址
func NormalizeEmail(text string) (string, bool) {
	m := emailPattern.FindString(text)
	return m, m != ""
}

// NormalizePhone 返回第一个匹配的电话号码
func NormalizePhone(text string) (string, bool) {
	m := phonePattern.FindString(text)
	return m, m != ""
}

// NormalizeName 取第一行非空文本，词数在 2 到 6 之间时作为候选姓名原样返回。
// 纯版式假设，不做语义校验。
func NormalizeName(text string) (string, bool) {
	for _, line := range lineBreak.Split(text, -1) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if n := len(strings.Fields(line)); n >= minNameWords && n <= maxNameWords {
			return line, true
		}
		return "", false
	}
	return "", false
}
