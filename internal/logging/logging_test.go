package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":    slog.LevelError,
		" WARN ":   slog.LevelWarn,
		"warning":  slog.LevelWarn,
		"info":     slog.LevelInfo,
		"debug":    slog.LevelDebug,
		"nonsense": slog.LevelDebug,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Errorf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("review stored", "status", "approved")

	line := strings.TrimSpace(buf.String())
	if strings.Contains(line, "hidden") {
		t.Fatalf("debug line must be filtered: %s", line)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", line, err)
	}
	if entry["msg"] != "review stored" || entry["status"] != "approved" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}
