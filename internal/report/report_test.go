package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-screener/internal/types"
)

func strPtr(s string) *string { return &s }

func sampleReport() *types.Report {
	jane := types.CandidateResult{
		Filename:   "jane.pdf",
		Name:       strPtr("Jane Doe"),
		Email:      strPtr("jane@example.com"),
		Scores:     types.ScoreBreakdown{TFIDF: 0.33609, Fuzzy: 0.81249, Keyword: 0.5, Final: 0.5},
		Bonus:      0.07,
		FinalScore: 0.66666,
		Fields: types.ResumeFields{
			Persons: []string{"Jane Doe"},
			Orgs:    []string{"Acme"},
			Dates:   []string{"2021"},
		},
		Preview: "Jane Doe ...",
		Parsed:  true,
	}
	jane.Fields.SetSection(types.SectionSkills, "Skills: Go, Python")

	return &types.Report{
		RunID: "run-1",
		Model: "prose",
		Results: []types.CandidateResult{
			jane,
			{Filename: "scan.pdf"},
		},
		Warnings: []types.Warning{{Filename: "scan.pdf", Message: "Could not parse scan.pdf. Try saving/exporting as a text-based PDF or DOCX."}},
	}
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 0.336, Round3(0.33609))
	assert.Equal(t, 0.667, Round3(0.66666))
	assert.Equal(t, 1.0, Round3(0.99996))
	assert.Equal(t, "0.070", FormatScore(0.07))
}

func TestOrNA(t *testing.T) {
	assert.Equal(t, NA, OrNA(nil))
	assert.Equal(t, NA, OrNA(strPtr("  ")))
	assert.Equal(t, "x", OrNA(strPtr("x")))
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows(sampleReport())
	require.Len(t, rows, 2)
	assert.Equal(t, Row{
		Filename: "jane.pdf", Name: "Jane Doe", Email: "jane@example.com", Phone: NA,
		TFIDF: 0.336, Fuzzy: 0.812, Bonus: 0.07, Final: 0.667,
	}, rows[0])
	assert.Equal(t, NA, rows[1].Name)
	assert.Equal(t, 0.0, rows[1].Final)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTable(&buf, sampleReport()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Filename"))
	assert.Contains(t, lines[0], "Final score")
	assert.Contains(t, lines[1], "jane.pdf")
	assert.Contains(t, lines[1], "0.667")
	assert.Contains(t, lines[2], "scan.pdf")
	assert.Contains(t, lines[2], "N/A")
}

func TestRenderDetails(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDetails(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "Details: jane.pdf")
	assert.Contains(t, out, "Skills: Skills: Go, Python")
	assert.Contains(t, out, "Education: N/A")
	assert.Contains(t, out, `"orgs":["Acme"]`)
	assert.Contains(t, out, `"persons":[]`, "缺失的列表按空列表显示")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, sampleReport(), false))

	var out Output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "run-1", out.RunID)
	assert.Len(t, out.Rows, 2)
	assert.Nil(t, out.Details)
	require.Len(t, out.Warnings, 1)

	withDetails := NewOutput(sampleReport(), true)
	require.Len(t, withDetails.Details, 2)
	assert.Equal(t, "Skills: Go, Python", withDetails.Details[0].Skills)
}

func TestRenderWarnings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderWarnings(&buf, sampleReport().Warnings))
	assert.Equal(t, "warning: Could not parse scan.pdf. Try saving/exporting as a text-based PDF or DOCX.\n", buf.String())
}
