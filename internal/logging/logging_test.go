package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelTrace)
	l.Log(context.Background(), LevelTrace, "rule applied", slog.String("rule", "AddZero"))
	assert.Contains(t, buf.String(), "level=TRACE")
	assert.Contains(t, buf.String(), "rule=AddZero")
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
	assert.Same(t, Discard(), Or(nil))
	l := New(&bytes.Buffer{}, slog.LevelInfo)
	assert.Same(t, l, Or(l))
}
