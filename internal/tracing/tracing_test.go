package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpan(t *testing.T, fn func(ctx context.Context, tp *sdktrace.TracerProvider)) sdktrace.ReadOnlySpan {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	fn(context.Background(), tp)
	spans := recorder.Ended()
	require.Len(t, spans, 1)
	return spans[0]
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestRecordError(t *testing.T) {
	span := recordSpan(t, func(ctx context.Context, tp *sdktrace.TracerProvider) {
		_, s := tp.Tracer("test").Start(ctx, "parse")
		RecordError(s, errors.New("corrupt pdf"), ErrorTypeParse)
		s.End()
	})

	assert.Equal(t, codes.Error, span.Status().Code)
	attrs := attrMap(span)
	assert.Equal(t, "parse", attrs["error.type"].AsString())
	assert.Equal(t, "corrupt pdf", attrs["error.message"].AsString())
	require.Len(t, span.Events(), 1, "RecordError 应产生 exception 事件")
}

func TestRecordError_NilIsNoop(t *testing.T) {
	span := recordSpan(t, func(ctx context.Context, tp *sdktrace.TracerProvider) {
		_, s := tp.Tracer("test").Start(ctx, "noop")
		RecordError(s, nil, ErrorTypeInternal)
		RecordError(nil, errors.New("x"), ErrorTypeInternal)
		s.End()
	})
	assert.Equal(t, codes.Unset, span.Status().Code)
	assert.Empty(t, span.Attributes())
}

func TestRecordHTTPError(t *testing.T) {
	span := recordSpan(t, func(ctx context.Context, tp *sdktrace.TracerProvider) {
		_, s := tp.Tracer("test").Start(ctx, "http")
		RecordHTTPError(s, errors.New("bad request"), 400)
		s.End()
	})
	attrs := attrMap(span)
	assert.Equal(t, int64(400), attrs["http.status_code"].AsInt64())
	assert.Equal(t, "client_error", attrs["error.category"].AsString())
	assert.Equal(t, "http", attrs["error.type"].AsString())
}

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "", MaskPII(""))
	assert.Equal(t, "*", MaskPII("a"))
	assert.Equal(t, "J*", MaskPII("Jo"))
	assert.Equal(t, "J**e", MaskPII("Jane"))
	assert.Equal(t, "ja************om", MaskPII("jane@example.com"))
}

func TestSafeAttributeValue(t *testing.T) {
	assert.Equal(t, MaskPII("jane@example.com"), SafeAttributeValue("candidate.email", "jane@example.com", 50))
	assert.Equal(t, MaskPII("jane.pdf"), SafeAttributeValue("document.filename", "jane.pdf", 50))
	assert.Equal(t, "prose", SafeAttributeValue("ner.model", "prose", 50))
	assert.Equal(t, "abc...xyz", SafeAttributeValue("run.note", "abcdefghijklmnopqrstuvwxyz", 9))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
	assert.Equal(t, "a...f", TruncateString("abcdef", 5))
	assert.Len(t, []rune(SafeRedisKey(string(make([]rune, 1000)))), MaxRedisLength-1)
}
