package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelDebug, "text", &buf)

	New("engine").Info("ritual performed")

	out := buf.String()
	if !strings.Contains(out, "component=engine") {
		t.Errorf("Expected component=engine in output, got: %s", out)
	}
	if !strings.Contains(out, "ritual performed") {
		t.Errorf("Expected message in output, got: %s", out)
	}
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelInfo, "json", &buf)

	New("store").Info("opened")

	out := buf.String()
	if !strings.Contains(out, `"component":"store"`) {
		t.Errorf("Expected JSON component field, got: %s", out)
	}
}

func TestInitLevelGating(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelWarn, "text", &buf)

	logger := New("gate")
	logger.Info("suppressed")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Error("Info message should be suppressed at Warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("Warn message should appear at Warn level")
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("Expected discard logger to be disabled")
	}
}
