package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"DEBUG", zapcore.DebugLevel, false},
		{" warn ", zapcore.WarnLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"trace", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNewBuildsJSONLogger(t *testing.T) {
	logger, err := New(Options{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level to be enabled")
	}
}

func TestNewLoggerVerbose(t *testing.T) {
	quiet := NewLogger(false)
	if quiet.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("non-verbose logger should not enable debug")
	}

	loud := NewLogger(true)
	if !loud.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose logger should enable debug")
	}
}

func TestNopNamedWith(t *testing.T) {
	logger := NewNop().Named("server").With("request_id", "abc")
	logger.Infow("discarded", "key", "value")
}
