package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("Level_"+tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetInitializes(t *testing.T) {
	logger = nil
	if Get() == nil {
		t.Fatal("Get() returned nil logger")
	}
}

func TestInitWithWriter(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("warn", &buf)
	defer Init("info")

	Info("dropped")
	Warn("kept", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("Expected a single JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "kept" {
		t.Errorf("Expected msg 'kept', got %v", entry["msg"])
	}
	if entry["key"] != "value" {
		t.Errorf("Expected key=value, got %v", entry["key"])
	}
	if entry["service"] != "travisconnect" {
		t.Errorf("Expected service attribute, got %v", entry["service"])
	}
}
