package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewHandler(t *testing.T) {
	t.Run("JSON respects level", func(t *testing.T) {
		var buf bytes.Buffer
		h, err := NewHandler(&buf, "warn", "json")
		if err != nil {
			t.Fatalf("NewHandler failed: %v", err)
		}
		logger := slog.New(h)
		logger.Info("dropped")
		logger.Warn("kept", "session_id", 7)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 1 {
			t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if rec["msg"] != "kept" || rec["session_id"] != float64(7) {
			t.Errorf("unexpected record: %v", rec)
		}
	})

	t.Run("Text uses tint", func(t *testing.T) {
		var buf bytes.Buffer
		h, err := NewHandler(&buf, "info", "")
		if err != nil {
			t.Fatalf("NewHandler failed: %v", err)
		}
		slog.New(h).Info("hello", "role", "tally")
		if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "role") {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})

	t.Run("Unknown format", func(t *testing.T) {
		if _, err := NewHandler(&bytes.Buffer{}, "info", "xml"); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}
