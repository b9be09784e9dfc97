package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "examscore.log")
	logger := New(Options{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1})
	logger.Info("model artifact loaded", zap.String("version", "v1"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"model artifact loaded"`) {
		t.Fatalf("unexpected log contents: %s", data)
	}
	if !strings.Contains(string(data), `"version":"v1"`) {
		t.Fatalf("expected structured field, got %s", data)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	logger := New(Options{Level: "error"})
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be disabled at error level")
	}
}
