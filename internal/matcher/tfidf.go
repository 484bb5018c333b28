package matcher

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// 两个及以上字符的词（字母、数字、下划线），与常见 TF-IDF 分词器默认规则一致
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize 小写化后切分词项
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// tfidfVectorizer 只在一次比较内有效：在给定的文档集合上拟合词表和 IDF
type tfidfVectorizer struct {
	vocab []string
	index map[string]int
	idf   []float64
}

// fitTFIDF 在 docs 上拟合，IDF 采用平滑公式 ln((1+n)/(1+df)) + 1
func fitTFIDF(docs [][]string) *tfidfVectorizer {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, term := range doc {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	v := &tfidfVectorizer{
		vocab: make([]string, 0, len(df)),
		index: make(map[string]int, len(df)),
	}
	for term := range df {
		v.vocab = append(v.vocab, term)
	}
	sort.Strings(v.vocab)

	n := float64(len(docs))
	v.idf = make([]float64, len(v.vocab))
	for i, term := range v.vocab {
		v.index[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v
}

// transform 原始词频乘以 IDF 后做 L2 归一化
func (v *tfidfVectorizer) transform(doc []string) []float64 {
	vec := make([]float64, len(v.vocab))
	for _, term := range doc {
		if i, ok := v.index[term]; ok {
			vec[i]++
		}
	}
	floats.Mul(vec, v.idf)
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec
}

// CosineSimilarity 两个向量夹角的余弦；任一向量为零向量时返回 0
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// TFIDFCosine 仅用这两段文本拟合 TF-IDF，返回职位描述向量与简历向量的余弦相似度。
// 每次调用都重新拟合，分值只在同一职位描述内可比较。两段文本都没有词项时返回 0。
func TFIDFCosine(resumeText, jdText string) float64 {
	resumeTokens, jdTokens := Tokenize(resumeText), Tokenize(jdText)
	v := fitTFIDF([][]string{resumeTokens, jdTokens})
	if len(v.vocab) == 0 {
		return 0
	}
	return clamp01(CosineSimilarity(v.transform(jdTokens), v.transform(resumeTokens)))
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
