package extractor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-screener/internal/types"
)

// 各章节的标题关键字，按小写做子串匹配
var (
	EducationKeywords = []string{
		"education", "qualifications", "academic", "degree", "bachelor", "master",
		"phd", "university", "college", "coursework",
	}
	ExperienceKeywords = []string{
		"experience", "employment", "work history", "professional experience",
		"projects", "roles", "responsibilities",
	}
	SkillKeywords = []string{
		"skills", "technical skills", "key skills", "core competencies",
		"tools", "technologies",
	}
)

// SectionStrategy 把简历文本切分出指定章节，可替换为更好的分段算法
type SectionStrategy interface {
	// Section 返回章节原文（已 trim）；找不到时 ok 为 false
	Section(text string, section types.SectionType) (string, bool)
}

// KeywordSectionStrategy 按关键字标题切分章节：
// 起点是本章节任一关键字最早出现的位置，终点是三组关键字中任一个在起点之后最早出现的位置。
// 关键字可能是标题自身的子串，因此允许出现极短的章节。
type KeywordSectionStrategy struct {
	keywords map[types.SectionType][]string
	boundary []string
}

// NewKeywordSectionStrategy 使用默认关键字表
func NewKeywordSectionStrategy() *KeywordSectionStrategy {
	return NewKeywordSectionStrategyWith(map[types.SectionType][]string{
		types.SectionEducation:  EducationKeywords,
		types.SectionExperience: ExperienceKeywords,
		types.SectionSkills:     SkillKeywords,
	})
}

// NewKeywordSectionStrategyWith 使用自定义关键字表，边界关键字为所有章节关键字的并集
func NewKeywordSectionStrategyWith(keywords map[types.SectionType][]string) *KeywordSectionStrategy {
	s := &KeywordSectionStrategy{keywords: make(map[types.SectionType][]string, len(keywords))}
	for _, sec := range types.AllSections() {
		kws, ok := keywords[sec]
		if !ok {
			continue
		}
		lowered := make([]string, len(kws))
		for i, kw := range kws {
			lowered[i] = strings.ToLower(kw)
		}
		s.keywords[sec] = lowered
		s.boundary = append(s.boundary, lowered...)
	}
	return s
}

// Section 实现 SectionStrategy
func (s *KeywordSectionStrategy) Section(text string, section types.SectionType) (string, bool) {
	return ExtractSection(text, s.keywords[section], s.boundary)
}

// ExtractSection 在 text 中定位以 keywords 开头、以 boundary 中下一个关键字结束的片段。
// 匹配大小写不敏感，不考虑单词边界。
func ExtractSection(text string, keywords, boundary []string) (string, bool) {
	lower := lowerKeepOffsets(text)

	start := -1
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if idx := strings.Index(lower, kw); idx != -1 && (start == -1 || idx < start) {
			start = idx
		}
	}
	if start == -1 {
		return "", false
	}

	end := len(text)
	// 从 start 之后一个字符开始找下一个标题，与起点所在的关键字本身可能重叠
	from := start + 1
	for _, kw := range boundary {
		if kw == "" || from > len(lower) {
			continue
		}
		if idx := strings.Index(lower[from:], kw); idx != -1 && from+idx < end {
			end = from + idx
		}
	}

	section := strings.TrimSpace(text[start:end])
	if section == "" {
		return "", false
	}
	return section, true
}

// lowerKeepOffsets 逐个 rune 转小写，只在 UTF-8 长度不变时替换，
// 保证小写文本中的下标可以直接用于原文切片。
func lowerKeepOffsets(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			b.WriteByte(s[i])
			i++
			continue
		}
		lr := unicode.ToLower(r)
		if utf8.RuneLen(lr) != size {
			lr = r
		}
		b.WriteRune(lr)
		i += size
	}
	return b.String()
}
