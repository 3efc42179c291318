package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONWritesStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSON(&buf)
	logger.Info().Str("feed", "delimited").Msg("batch committed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "batch committed", entry["message"])
	assert.Equal(t, "delimited", entry["feed"])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))
	assert.Equal(t, Default(), FromContext(nil)) //nolint:staticcheck // nil context fallback is part of the contract
}

func TestWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSON(&buf)
	ctx := WithLogger(context.Background(), &logger)

	FromContext(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}

func TestWithFeedAddsField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSON(&buf)
	ctx := WithLogger(context.Background(), &logger)
	ctx = WithFeed(ctx, "hierarchical")

	FromContext(ctx).Info().Msg("record merged")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hierarchical", entry["feed"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}
