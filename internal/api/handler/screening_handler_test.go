package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"resume-screener/internal/ner"
	"resume-screener/internal/report"
	"resume-screener/internal/screening"
	"resume-screener/internal/tracing"
	"resume-screener/internal/types"
)

// stubScreener 记录收到的参数并返回预设结果
type stubScreener struct {
	gotJD    string
	gotDocs  []types.RawDocument
	gotModel string
	report   *types.Report
	err      error
}

func (s *stubScreener) Screen(_ context.Context, jd string, docs []types.RawDocument, opts ...screening.RunOption) (*types.Report, error) {
	s.gotJD = jd
	s.gotDocs = docs
	s.gotModel = screening.ApplyRunOptions(opts...).Model
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func (s *stubScreener) Models() ([]string, string) {
	return []string{"llm", "prose"}, "prose"
}

func newTestEngine(s Screener) *server.Hertz {
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	sh := NewScreeningHandler(s)
	h.POST("/api/v1/screenings", sh.HandleScreen)
	h.GET("/api/v1/models", sh.HandleModels)
	return h
}

type upload struct {
	name    string
	content string
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(FieldFiles, f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func performScreen(h *server.Hertz, body *bytes.Buffer, contentType string) *ut.ResponseRecorder {
	return ut.PerformRequest(h.Engine, "POST", "/api/v1/screenings",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)
}

func TestHandleScreen_Success(t *testing.T) {
	name := "Jane Doe"
	stub := &stubScreener{report: &types.Report{
		RunID: "run-1",
		Model: "llm",
		Results: []types.CandidateResult{
			{Filename: "b.txt", Name: &name, FinalScore: 0.71234},
			{Filename: "a.txt"},
		},
		Warnings: []types.Warning{{Filename: "a.txt", Message: screening.UnparseableMessage("a.txt")}},
	}}
	h := newTestEngine(stub)

	body, ct := multipartBody(t,
		map[string]string{FieldJobDescription: "Python engineer", FieldModel: " llm ", FieldShowDetails: "true"},
		upload{"a.txt", "first"}, upload{"b.txt", "second"},
	)
	resp := performScreen(h, body, ct)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var out report.Output
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, "run-1", out.RunID)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "Jane Doe", out.Rows[0].Name)
	assert.Equal(t, 0.712, out.Rows[0].Final)
	assert.Equal(t, report.NA, out.Rows[1].Name)
	assert.Len(t, out.Details, 2)
	require.Len(t, out.Warnings, 1)

	assert.Equal(t, "Python engineer", stub.gotJD)
	assert.Equal(t, "llm", stub.gotModel)
	require.Len(t, stub.gotDocs, 2)
	assert.Equal(t, "a.txt", stub.gotDocs[0].Filename)
	assert.Equal(t, []byte("second"), stub.gotDocs[1].Content)
}

func TestHandleScreen_DetailsHiddenByDefault(t *testing.T) {
	stub := &stubScreener{report: &types.Report{Results: []types.CandidateResult{{Filename: "a.txt"}}}}
	h := newTestEngine(stub)

	body, ct := multipartBody(t, map[string]string{FieldJobDescription: "jd"}, upload{"a.txt", "x"})
	resp := performScreen(h, body, ct)
	require.Equal(t, http.StatusOK, resp.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	assert.NotContains(t, raw, "details")
	assert.Equal(t, []any{}, raw["warnings"])
}

func TestHandleScreen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		warning string
	}{
		{"missing jd", screening.ErrMissingJobDescription, http.StatusBadRequest, screening.MsgMissingJobDescription},
		{"no files", screening.ErrNoDocuments, http.StatusBadRequest, screening.MsgNoDocuments},
		{"unknown model", ner.ErrUnknownModel, http.StatusBadRequest, ner.ErrUnknownModel.Error()},
		{"canceled", context.Canceled, http.StatusServiceUnavailable, context.Canceled.Error()},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestEngine(&stubScreener{err: tt.err})
			body, ct := multipartBody(t, map[string]string{FieldJobDescription: "jd"}, upload{"a.txt", "x"})
			resp := performScreen(h, body, ct)
			assert.Equal(t, tt.status, resp.Code)

			var out WarningResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
			assert.Equal(t, tt.warning, out.Warning)
		})
	}
}

func TestHandleScreen_NotMultipart(t *testing.T) {
	h := newTestEngine(&stubScreener{})
	body := bytes.NewBufferString(`{"job_description":"x"}`)
	resp := performScreen(h, body, "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandleModels(t *testing.T) {
	h := newTestEngine(&stubScreener{})
	resp := ut.PerformRequest(h.Engine, "GET", "/api/v1/models", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var out ModelsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, []string{"llm", "prose"}, out.Models)
	assert.Equal(t, "prose", out.Default)
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("true"))
	assert.True(t, parseBool(" 1 "))
	assert.False(t, parseBool(""))
	assert.False(t, parseBool("yes"))
}

func TestHandleScreen_ErrorRecordedOnRequestSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		c, span := tp.Tracer("test").Start(c, "http")
		ctx.Next(c)
		span.End()
	})
	h.POST("/api/v1/screenings", NewScreeningHandler(&stubScreener{err: screening.ErrNoDocuments}).HandleScreen)

	body, ct := multipartBody(t, map[string]string{FieldJobDescription: "python"})
	resp := performScreen(h, body, ct)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String("error.type", string(tracing.ErrorTypeHTTP)))
	assert.Contains(t, attrs, attribute.Int("http.status_code", http.StatusBadRequest))
	assert.Contains(t, attrs, attribute.String("error.category", "client_error"))
}
