package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-screener/internal/types"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"python", "c_plus", "go", "2024"}, Tokenize("Python, C_plus & Go! a 2024 x"))
	assert.Empty(t, Tokenize("a b c"))
}

func TestTFIDFCosine(t *testing.T) {
	assert.InDelta(t, 0.3360969272762574, TFIDFCosine("python sql", "python java"), 1e-9)
	assert.InDelta(t, 1.0, TFIDFCosine("Go developer with SQL", "go developer with sql"), 1e-9)
	assert.Equal(t, 0.0, TFIDFCosine("python", "java"))
	assert.Equal(t, 0.0, TFIDFCosine("", ""))
	assert.Equal(t, 0.0, TFIDFCosine("a b c", "d e f"), "single-character tokens are ignored")
	assert.Equal(t, 0.0, TFIDFCosine("", "python"))
}

func TestTFIDFCosine_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Senior Python engineer, NLP and SQL", "We need an engineer who knows python"},
		{"machine learning machine learning", "learning"},
		{"docker aws", "aws docker kubernetes"},
	}
	for _, p := range pairs {
		assert.InDelta(t, TFIDFCosine(p[0], p[1]), TFIDFCosine(p[1], p[0]), 1e-12)
	}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-12)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1}, []float64{1, 2}))
}

func TestTokenSetRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"subset", "fuzzy was a bear", "fuzzy fuzzy was a bear", 100},
		{"reordered", "bear was fuzzy", "fuzzy was bear", 100},
		{"case sensitive", "Python developer", "python developer", 93.75},
		{"disjoint", "abc", "xyz", 0},
		{"one shared token", "a b", "a c", 100 - 100*2.0/6},
		{"empty", "", "python", 0},
		{"whitespace only", "   ", "  ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TokenSetRatio(tt.a, tt.b), 1e-9)
		})
	}
}

func TestFuzzySimilarity_SelfIsMaximal(t *testing.T) {
	for _, s := range []string{"Jane Doe", "Python SQL NLP", "x"} {
		assert.Equal(t, 1.0, FuzzySimilarity(s, s))
	}
}

func TestKeywordScore(t *testing.T) {
	assert.Equal(t, 0.0, KeywordScore("", ""))
	assert.InDelta(t, 1.0/6, KeywordScore("python", "PYTHON"), 1e-12)
	// "javascript" 包含子串 "java"
	assert.InDelta(t, 2.0/6, KeywordScore("JavaScript and SQL", "java, sql, nlp"), 1e-12)
	all := "Python Java SQL Machine Learning Streamlit NLP"
	assert.Equal(t, 1.0, KeywordScore(all, all))

	for _, pair := range [][2]string{{"python nlp", "nlp"}, {"sql", "python"}, {all, "streamlit"}} {
		score := KeywordScore(pair[0], pair[1])
		steps := score * 6
		assert.InDelta(t, float64(int(steps+0.5)), steps, 1e-9, "score must be a multiple of 1/6")
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestMatchText(t *testing.T) {
	s := MatchText("Python SQL", "Python SQL")
	assert.InDelta(t, 1.0, s.TFIDF, 1e-9)
	assert.Equal(t, 1.0, s.Fuzzy)
	assert.InDelta(t, 2.0/6, s.Keyword, 1e-12)
	assert.InDelta(t, 0.5+0.3+0.2*2.0/6, s.Final, 1e-9)

	empty := MatchText("", "Python developer")
	assert.Equal(t, types.ScoreBreakdown{}, empty)
}

func TestMatchText_FinalInRange(t *testing.T) {
	inputs := []string{"", "Python", "Machine Learning engineer with NLP, SQL, Java and Streamlit", "x y z"}
	for _, a := range inputs {
		for _, b := range inputs {
			s := MatchText(a, b)
			for _, v := range []float64{s.TFIDF, s.Fuzzy, s.Keyword, s.Final} {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

func TestMatchResume_FlattensFields(t *testing.T) {
	fields := types.ResumeFields{Persons: []string{"Jane"}, Orgs: []string{}, Dates: []string{}}
	fields.SetSection(types.SectionSkills, "Skills: Python, SQL")

	got := MatchResume(fields, "Python SQL developer")
	want := MatchText("Jane Skills: Python, SQL", "Python SQL developer")
	require.Equal(t, want, got)
	assert.Greater(t, got.Final, 0.0)
}
