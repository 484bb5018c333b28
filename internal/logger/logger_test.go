package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "info", Format: "json"}, &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	Debug().Msg("hidden")
	l := For("matcher")
	l.Info().Str("file", "a.pdf").Msg("scored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "matcher", entry["component"])
	assert.Equal(t, "a.pdf", entry["file"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestInitWithWriter_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "verbose"}, &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "debug"}, &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	Ctx(context.Background()).Info().Msg("from global")
	assert.Contains(t, buf.String(), "from global")

	ctx := WithContext(context.Background())
	Ctx(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}
