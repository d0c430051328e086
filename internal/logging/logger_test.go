package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestForTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, slog.LevelInfo)

	For("store").Info("history corrupt, starting empty")
	For("store").Debug("hidden below the level")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["component"] != "store" || rec["msg"] != "history corrupt, starting empty" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestSetupFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "agrigpt.log")
	if err := SetupFile(path, slog.LevelDebug); err != nil {
		t.Fatalf("SetupFile: %v", err)
	}
	t.Cleanup(func() { Close() })

	For("main").Debug("started")
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
