package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-screener/internal/config"
	"resume-screener/internal/ner"
	"resume-screener/internal/types"
)

func TestBuildRegistry_SkipsLLMWithoutKey(t *testing.T) {
	cfg := &config.Config{NER: config.NERConfig{DefaultModel: "prose", Models: []string{"prose", "llm"}}}
	reg, err := buildRegistry(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"prose"}, reg.Names())
	assert.Equal(t, "prose", reg.Default())
}

func TestBuildRegistry_WithLLM(t *testing.T) {
	cfg := &config.Config{
		NER: config.NERConfig{DefaultModel: "llm", Models: []string{"prose", "llm"}},
		LLM: config.LLMConfig{APIKey: "sk-test", QPMLimit: 10},
	}
	reg, err := buildRegistry(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"llm", "prose"}, reg.Names())
}

func TestBuildRegistry_DefaultUnavailable(t *testing.T) {
	cfg := &config.Config{NER: config.NERConfig{DefaultModel: "llm"}}
	_, err := buildRegistry(cfg)
	require.ErrorIs(t, err, ner.ErrUnknownModel)
}

func TestReadDocuments(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "jane.txt")
	require.NoError(t, os.WriteFile(p, []byte("Jane Doe"), 0o600))

	docs, err := readDocuments([]string{p})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "jane.txt", docs[0].Filename)
	assert.Equal(t, types.FileTypeTXT, docs[0].FileType())

	_, err = readDocuments([]string{filepath.Join(dir, "missing.pdf")})
	require.Error(t, err)
}

func TestReadJobDescription(t *testing.T) {
	defer func() { screenJDFile, screenJDText = "", "" }()

	screenJDFile = "-"
	jd, err := readJobDescription(bytes.NewBufferString("python developer"))
	require.NoError(t, err)
	assert.Equal(t, "python developer", jd)

	screenJDFile, screenJDText = "", "nlp engineer"
	jd, err = readJobDescription(nil)
	require.NoError(t, err)
	assert.Equal(t, "nlp engineer", jd)

	screenJDText = ""
	_, err = readJobDescription(nil)
	require.Error(t, err)
}

func TestHlogLevel(t *testing.T) {
	assert.Equal(t, glog.LevelDebug, hlogLevel(zerolog.DebugLevel))
	assert.Equal(t, glog.LevelInfo, hlogLevel(zerolog.InfoLevel))
	assert.Equal(t, glog.LevelError, hlogLevel(zerolog.ErrorLevel))
	assert.Equal(t, glog.LevelFatal, hlogLevel(zerolog.Disabled))
}

func TestWriteReport(t *testing.T) {
	defer func() { screenFormat, screenDetails = formatTable, false }()
	name := "Jane Doe"
	r := &types.Report{
		Model: "prose",
		Results: []types.CandidateResult{
			{Filename: "jane.txt", Name: &name, FinalScore: 0.5, Parsed: true},
		},
		Warnings: []types.Warning{{Filename: "x.pdf", Message: "Could not parse x.pdf. Try saving/exporting as a text-based PDF or DOCX."}},
	}

	var out, errOut bytes.Buffer
	screenFormat = formatTable
	require.NoError(t, writeReport(&out, &errOut, r))
	assert.Contains(t, out.String(), "jane.txt")
	assert.Contains(t, out.String(), "Final score")
	assert.Contains(t, errOut.String(), "warning: Could not parse x.pdf")

	out.Reset()
	screenFormat = formatJSON
	require.NoError(t, writeReport(&out, &errOut, r))
	assert.Contains(t, out.String(), `"filename": "jane.txt"`)
}

func TestDOCXOptions_NoLicenseKey(t *testing.T) {
	assert.Empty(t, docxOptions(config.DOCXConfig{}))
}
