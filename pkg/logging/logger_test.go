package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewHonorsLevel(t *testing.T) {
	ctx := context.Background()

	logger := New("warn")
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatalf("warn logger should not enable info")
	}
	if !logger.Enabled(ctx, slog.LevelWarn) {
		t.Fatalf("warn logger should enable warn")
	}
}

func TestDefaultIsInfoLevel(t *testing.T) {
	ctx := context.Background()

	logger := Default()
	if logger.Logger == nil {
		t.Fatal("expected wrapped slog.Logger")
	}
	if !logger.Enabled(ctx, slog.LevelInfo) {
		t.Fatalf("default logger should enable info")
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("default logger should not enable debug")
	}
}

func TestWithReturnsChildLogger(t *testing.T) {
	parent := New("info")
	child := parent.With("component", "appointments")
	if child == nil || child.Logger == nil {
		t.Fatal("expected child logger")
	}
	if child == parent {
		t.Fatal("expected a new wrapper, not the parent")
	}
}
