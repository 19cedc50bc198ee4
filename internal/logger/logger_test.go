package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

// TestParseLevel はParseLevel関数を検証する。
func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestNewWithWriter はJSON形式でログが出力されることを検証する。
func TestNewWithWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Info("出力されない")
	if buf.Len() != 0 {
		t.Fatalf("warnレベルでinfoログが出力された: %s", buf.String())
	}

	l.Warn("警告", slog.Int("notification_id", 7))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("ログのJSONデコードに失敗: %v, body=%s", err, buf.String())
	}
	if entry["msg"] != "警告" {
		t.Errorf("msg = %v, want 警告", entry["msg"])
	}
	if entry["notification_id"] != float64(7) {
		t.Errorf("notification_id = %v, want 7", entry["notification_id"])
	}
}
