// Package scoring 技能加分与总分聚合
package scoring

import (
	"math"
	"strings"

	"resume-screener/internal/types"
)

// MaxBonus 加分上限
const MaxBonus = 0.1

// BonusRule 一个加分关键字及其权重
type BonusRule struct {
	Keyword string
	Weight  float64
}

// BonusRules 固定加分表，关键字为小写
var BonusRules = []BonusRule{
	{"python", 0.03},
	{"machine learning", 0.04},
	{"nlp", 0.03},
	{"flask", 0.02},
	{"streamlit", 0.02},
	{"docker", 0.02},
	{"aws", 0.03},
}

// FeatureBonus 关键字同时出现在技能章节和职位描述中时累加权重，总和不超过 MaxBonus。
// 技能章节缺失时按空文本处理。
func FeatureBonus(fields types.ResumeFields, jdText string) float64 {
	skills, _ := fields.Section(types.SectionSkills)
	skills = strings.ToLower(skills)
	jd := strings.ToLower(jdText)

	bonus := 0.0
	for _, rule := range BonusRules {
		if strings.Contains(skills, rule.Keyword) && strings.Contains(jd, rule.Keyword) {
			bonus += rule.Weight
		}
	}
	return math.Min(bonus, MaxBonus)
}

// AggregateScore 基础分加上加分，结果限制在 [0,1]
func AggregateScore(base, bonus float64) float64 {
	return math.Max(0, math.Min(base+bonus, 1.0))
}
