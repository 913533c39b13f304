package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json format with level filtering", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := New(Config{Level: "warn", Format: "json"}, WithOutput(&buf))

		log.Info("dropped")
		log.Warn("kept")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "kept", record["msg"])
		assert.NotContains(t, buf.String(), "dropped")
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := New(Config{Level: "info", Format: "text"}, WithOutput(&buf))
		log.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("static attributes appear on every record", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := New(Config{Format: "json"}, WithOutput(&buf), WithAttr(slog.String("service", "payments")))
		log.Info("x")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "payments", record["service"])
	})
}

func TestContextExtractors(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	extractor := func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(ctxKey{}).(string); ok {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}

	var buf bytes.Buffer
	log := New(Config{Format: "json"}, WithOutput(&buf), WithContextExtractors(extractor))

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.InfoContext(ctx, "with id")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-1", record["request_id"])

	// Without the value in context the attribute is simply absent.
	buf.Reset()
	log.Info("without id")
	var plain map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &plain))
	assert.NotContains(t, plain, "request_id")
}
