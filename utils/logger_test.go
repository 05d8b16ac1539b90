package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want Level
	}{
		{"debug", LevelDebug},
		{" WARN ", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.raw); got != tt.want {
			t.Errorf("ParseLevel(%q) = %d; want %d", tt.raw, got, tt.want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLoggerTo(&out, &errOut, LevelWarn)

	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("shown %s", "warning")
	l.Error("shown %d", 42)

	if strings.Contains(out.String(), "hidden") {
		t.Errorf("messages below warn leaked: %q", out.String())
	}
	if !strings.Contains(out.String(), "shown warning") {
		t.Errorf("warning missing from stdout: %q", out.String())
	}
	if !strings.Contains(errOut.String(), "shown 42") {
		t.Errorf("error missing from stderr: %q", errOut.String())
	}
}
