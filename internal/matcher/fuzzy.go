package matcher

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil/metrics"
)

// indel 只允许插入和删除的编辑距离（替换代价等于一删一插）
var indel = &metrics.Levenshtein{
	CaseSensitive: true,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   2,
}

// FuzzySimilarity token-set ratio 缩放到 [0,1]
func FuzzySimilarity(resumeText, jdText string) float64 {
	return TokenSetRatio(resumeText, jdText) / 100
}

// TokenSetRatio 比较两段文本按空白切分后的词集合，对词序和部分重叠不敏感，返回 [0,100]。
// 区分大小写，不做预处理。
func TokenSetRatio(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	var intersect, diffAB, diffBA []string
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersect = append(intersect, tok)
		} else {
			diffAB = append(diffAB, tok)
		}
	}
	for tok := range setB {
		if _, ok := setA[tok]; !ok {
			diffBA = append(diffBA, tok)
		}
	}

	// 一方的词集合是另一方的子集
	if len(intersect) > 0 && (len(diffAB) == 0 || len(diffBA) == 0) {
		return 100
	}

	sort.Strings(diffAB)
	sort.Strings(diffBA)
	abJoined := strings.Join(diffAB, " ")
	baJoined := strings.Join(diffBA, " ")
	abLen := utf8.RuneCountInString(abJoined)
	baLen := utf8.RuneCountInString(baJoined)
	sectLen := utf8.RuneCountInString(strings.Join(intersect, " "))

	sep := 0
	if sectLen != 0 {
		sep = 1
	}
	sectABLen := sectLen + sep + abLen
	sectBALen := sectLen + sep + baLen

	result := normDistance(indel.Distance(abJoined, baJoined), sectABLen+sectBALen)
	if sectLen == 0 {
		return result
	}

	// sect 与 sect+ab 只在 ab 部分不同，距离可以直接由长度差得出
	sectABRatio := normDistance(sep+abLen, sectLen+sectABLen)
	sectBARatio := normDistance(sep+baLen, sectLen+sectBALen)
	return math.Max(result, math.Max(sectABRatio, sectBARatio))
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func normDistance(dist, lenSum int) float64 {
	if lenSum == 0 {
		return 100
	}
	return 100 - 100*float64(dist)/float64(lenSum)
}
