package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{"production uses json", "production", true},
		{"development uses pretty", "development", false},
		{"staging uses pretty", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: slog.LevelInfo, Environment: tt.environment, Writer: &buf})
			log.Info("post created")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"post created"`)
			} else {
				assert.Contains(t, buf.String(), "post created")
				assert.Contains(t, buf.String(), colorReset)
			}
		})
	}
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Environment: "development", Writer: &buf})
	log.Info("test")

	assert.Contains(t, buf.String(), `"msg":"test"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	log.Info("comment added", "post_id", "abc", "count", 42, "title", "two words")

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "comment added")
	assert.Contains(t, out, "post_id=abc")
	assert.Contains(t, out, "count=42")
	assert.Contains(t, out, `title="two words"`)
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WRN")
}

func TestPrettyHandler_WithGroupPrefixesKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil))

	log.WithGroup("stats").Info("event broadcast", "delivered", 3)
	assert.Contains(t, buf.String(), "stats.delivered=3")

	buf.Reset()
	log.Info("event broadcast", slog.Group("stats", slog.Int("dropped", 1)))
	assert.Contains(t, buf.String(), "stats.dropped=1")
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).With("user_id", "u-1")

	log.Info("handled")
	assert.Contains(t, buf.String(), "user_id=u-1")
}

func TestPrettyHandler_RequestTag(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).With("request_id", "1f3a9c0d-77aa-4b1e-9d1c-0c1e6b8f2a44")

	log.Warn("failed to notify post owner", "error", "store down")

	out := buf.String()
	assert.Contains(t, out, "[1f3a9c0d]")
	assert.NotContains(t, out, "request_id=")
	assert.Contains(t, out, colorRed+`error="store down"`)
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2025-01-02T03:04:05Z", formatValue(slog.TimeValue(ts)))
	assert.Equal(t, "1.5s", formatValue(slog.DurationValue(1500*time.Millisecond)))
	assert.Equal(t, "true", formatValue(slog.BoolValue(true)))
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `""`, formatValue(slog.StringValue("")))
	assert.Equal(t, `"a=b"`, formatValue(slog.StringValue("a=b")))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	log.WithError(errors.New("boom")).WithField("post_id", "p1").WithFields(map[string]any{"user_id": "u1"}).Info("failed")

	out := buf.String()
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"post_id":"p1"`)
	assert.Contains(t, out, `"user_id":"u1"`)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf}).Logger
	scoped := base.With("request_id", "abc")

	ctx := WithContext(context.Background(), scoped)
	FromContext(ctx, base).Info("scoped")
	assert.Contains(t, buf.String(), `"request_id":"abc"`)

	assert.Same(t, base, FromContext(context.Background(), base))
	assert.NotNil(t, FromContext(context.Background(), nil))
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.NotNil(t, log)
	log.Error("nothing happens")
}
