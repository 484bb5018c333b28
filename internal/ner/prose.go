package ner

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"

	"resume-screener/internal/types"
)

// ProseRecognizer 基于 prose 内置英文模型的离线实体识别。
// prose 的模型只产出 PERSON 和 GPE 一类标签，日期由 DatePatternRecognizer 补充。
type ProseRecognizer struct{}

// NewProseRecognizer 创建 prose 识别器
func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

// Recognize 对整段文本做分词、词性标注和实体抽取
func (p *ProseRecognizer) Recognize(ctx context.Context, text string) ([]types.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, fmt.Errorf("prose: %w", err)
	}

	ents := doc.Entities()
	out := make([]types.Entity, 0, len(ents))
	cursor := 0
	for _, e := range ents {
		start, end := locate(text, e.Text, cursor)
		if start >= 0 {
			cursor = end
		}
		out = append(out, types.Entity{Text: e.Text, Label: e.Label, Start: start, End: end})
	}
	return out, nil
}

// locate 从 cursor 开始查找实体文本的位置，找不到时从头查找
func locate(text, needle string, cursor int) (int, int) {
	if needle == "" {
		return -1, -1
	}
	if cursor < len(text) {
		if i := strings.Index(text[cursor:], needle); i >= 0 {
			return cursor + i, cursor + i + len(needle)
		}
	}
	if i := strings.Index(text, needle); i >= 0 {
		return i, i + len(needle)
	}
	return -1, -1
}

const monthName = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`

var datePattern = regexp.MustCompile(`(?i)\b(?:` +
	monthName + `\s+\d{1,2},?\s+\d{4}` + // March 5, 2021
	`|` + monthName + `\s+\d{4}` + // Mar 2021
	`|\d{1,2}/\d{4}` + // 03/2021
	`|\d{4}-\d{2}(?:-\d{2})?` + // 2021-03 / 2021-03-05
	`|(?:19|20)\d{2}\s*[-–]\s*(?:(?:19|20)\d{2}|present|current|now)` + // 2019 - 2021
	`)\b`)

// DatePatternRecognizer 用正则识别常见的简历日期写法，标签为 DATE
type DatePatternRecognizer struct{}

// Recognize 返回所有不重叠的日期片段
func (DatePatternRecognizer) Recognize(ctx context.Context, text string) ([]types.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locs := datePattern.FindAllStringIndex(text, -1)
	out := make([]types.Entity, 0, len(locs))
	for _, loc := range locs {
		out = append(out, types.Entity{Text: text[loc[0]:loc[1]], Label: types.LabelDate, Start: loc[0], End: loc[1]})
	}
	return out, nil
}

// Combine 依次运行多个识别器并按起始位置稳定排序合并结果。
// 任一识别器失败即返回错误。
func Combine(recognizers ...Recognizer) Recognizer {
	return RecognizerFunc(func(ctx context.Context, text string) ([]types.Entity, error) {
		var all []types.Entity
		for _, r := range recognizers {
			ents, err := r.Recognize(ctx, text)
			if err != nil {
				return nil, err
			}
			all = append(all, ents...)
		}
		sort.SliceStable(all, func(i, j int) bool {
			return all[i].Start < all[j].Start
		})
		return all, nil
	})
}
