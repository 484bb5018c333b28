package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"resume-screener/internal/types"
)

func withSkills(s string) types.ResumeFields {
	var f types.ResumeFields
	f.SetSection(types.SectionSkills, s)
	return f
}

func TestFeatureBonus(t *testing.T) {
	tests := []struct {
		name   string
		skills string
		jd     string
		want   float64
	}{
		{"no skills section", "", "python aws docker", 0},
		{"single match", "Skills: Python", "Looking for PYTHON devs", 0.03},
		{"only in skills", "Skills: Docker, Flask", "Java shop", 0},
		{"two matches", "Skills: Flask, Docker", "flask and docker", 0.04},
		{"capped", "Skills: Python, Machine Learning, NLP, AWS, Docker", "python machine learning nlp aws docker", MaxBonus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FeatureBonus(withSkills(tt.skills), tt.jd), 1e-12)
		})
	}
}

func TestFeatureBonus_NeverExceedsCap(t *testing.T) {
	everything := "python machine learning nlp flask streamlit docker aws"
	bonus := FeatureBonus(withSkills(everything), everything)
	assert.LessOrEqual(t, bonus, MaxBonus)
	assert.Equal(t, MaxBonus, bonus)
}

func TestFeatureBonus_IgnoresOtherSections(t *testing.T) {
	f := types.ResumeFields{Persons: []string{"python"}}
	f.SetSection(types.SectionExperience, "Experience: python, aws")
	assert.Equal(t, 0.0, FeatureBonus(f, "python aws"))
}

func TestAggregateScore(t *testing.T) {
	assert.InDelta(t, 0.55, AggregateScore(0.5, 0.05), 1e-12)
	assert.Equal(t, 1.0, AggregateScore(1.0, 0.1))
	assert.Equal(t, 1.0, AggregateScore(0.95, 0.1))
	assert.Equal(t, 0.0, AggregateScore(0, 0))
	assert.Equal(t, 0.0, AggregateScore(-0.2, 0.1))
}
