// Package matcher 计算简历与职位描述之间的相似度信号并按固定权重合成基础分
package matcher

import (
	"strings"

	"resume-screener/internal/types"
)

// 基础分权重，三者之和为 1
const (
	WeightTFIDF   = 0.5
	WeightFuzzy   = 0.3
	WeightKeyword = 0.2
)

// Keywords 关键字比例所用的固定列表
var Keywords = []string{"Python", "Java", "SQL", "Machine Learning", "Streamlit", "NLP"}

// KeywordScore 同时出现在两段文本中的关键字占比（大小写不敏感的子串匹配）
func KeywordScore(resumeText, jdText string) float64 {
	resumeLower, jdLower := strings.ToLower(resumeText), strings.ToLower(jdText)
	hits := 0
	for _, kw := range Keywords {
		kw = strings.ToLower(kw)
		if strings.Contains(resumeLower, kw) && strings.Contains(jdLower, kw) {
			hits++
		}
	}
	return float64(hits) / float64(len(Keywords))
}

// MatchText 计算三个信号和加权基础分
func MatchText(resumeText, jdText string) types.ScoreBreakdown {
	s := types.ScoreBreakdown{
		TFIDF:   TFIDFCosine(resumeText, jdText),
		Fuzzy:   FuzzySimilarity(resumeText, jdText),
		Keyword: KeywordScore(resumeText, jdText),
	}
	s.Final = clamp01(WeightTFIDF*s.TFIDF + WeightFuzzy*s.Fuzzy + WeightKeyword*s.Keyword)
	return s
}

// MatchResume 把字段记录拍平后与职位描述比较
func MatchResume(fields types.ResumeFields, jdText string) types.ScoreBreakdown {
	return MatchText(fields.String(), jdText)
}
