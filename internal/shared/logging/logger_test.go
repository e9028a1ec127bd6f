package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"err":     slog.LevelError,
		"trace":   slog.LevelDebug - 2,
		"verbose": slog.LevelInfo,
	}
	for input, expected := range cases {
		if got := ParseLevel(input); got != expected {
			t.Fatalf("ParseLevel(%q) expected %v got %v", input, expected, got)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Format: "json"})
	logger.Info("booking submitted", slog.String("slotId", "slot-1"))

	out := buf.String()
	if !strings.Contains(out, `"slotId":"slot-1"`) {
		t.Fatalf("expected json attribute, got %s", out)
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "warn"})
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info suppressed at warn level, got %q", buf.String())
	}
}

func TestOpenDailyCreatesDatedFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)

	file, logger, err := OpenDaily(dir, now, Config{Level: "info"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { file.Close() })
	logger.Info("hello")

	if _, err := os.Stat(filepath.Join(dir, "2024-01-02.log")); err != nil {
		t.Fatalf("expected dated log file: %v", err)
	}
}
