package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		ctx := SetCorrelationID(context.Background(), "cid-1")

		assert.Equal(t, "cid-1", GetCorrelationID(ctx))
	})

	t.Run("generated when empty", func(t *testing.T) {
		ctx := SetCorrelationID(context.Background(), "")

		assert.Len(t, GetCorrelationID(ctx), 36)
	})

	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, GetCorrelationID(context.Background()))
	})
}

func TestNewHandler(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, "reminder-svc", slog.LevelInfo, nil, []string{"Token"}))
	ctx := SetCorrelationID(context.Background(), "cid-42")

	// Act
	logger.DebugContext(ctx, "hidden")
	logger.InfoContext(ctx, "run finished",
		"token", "secret",
		"payload", map[string]any{"token": "x", "unit_id": 7},
	)

	// Assert
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run finished", got["msg"])
	assert.Equal(t, "INFO", got["severity"])
	assert.Equal(t, "cid-42", got["_cID"])
	assert.Equal(t, "reminder-svc", got["service"])
	assert.Equal(t, "***", got["token"])
	assert.Equal(t, map[string]any{"token": "***", "unit_id": float64(7)}, got["payload"])
	assert.Contains(t, got["file"], "internal/pkg/instrument/instrument_test.go:")
}

func TestNew_Disabled(t *testing.T) {
	ins, err := New(context.Background(), &Config{Enabled: false, LogLevel: "warn"})

	require.NoError(t, err)
	assert.NotNil(t, ins.Tracer("x"))
	assert.NotNil(t, ins.Meter("x"))
	assert.NoError(t, ins.Shutdown(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}
