package logger

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(Config{Level: tt.level})
			if log == nil {
				t.Error("New() returned nil")
			}
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})

	log.Debug(ctx, "debug message")
	log.Info(ctx, "info message")
	log.Warn(ctx, "warn message")
	log.Error(ctx, "error message")
	log.Info(ctx, "formatted message: %s %d", "test", 123)

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Errorf("debug line logged at info level: %q", out)
	}
	for _, want := range []string{"info message", "warn message", "error message", "formatted message: test 123"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name        string
		configLevel string
		logLevel    logrus.Level
		shouldLog   bool
	}{
		{"debug logs at debug level", "debug", logrus.DebugLevel, true},
		{"info logs at debug level", "debug", logrus.InfoLevel, true},
		{"debug doesn't log at info level", "info", logrus.DebugLevel, false},
		{"info logs at info level", "info", logrus.InfoLevel, true},
		{"error always logs", "debug", logrus.ErrorLevel, true},
		{"unknown level falls back to info", "loud", logrus.DebugLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(Config{Level: tt.configLevel}).(*implLogger)
			if got := log.entry.Logger.IsLevelEnabled(tt.logLevel); got != tt.shouldLog {
				t.Errorf("IsLevelEnabled() = %v, want %v", got, tt.shouldLog)
			}
		})
	}
}

func TestJSONFormatWithField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf}).WithField("job_id", "abc")

	log.Info(context.Background(), "done")

	out := buf.String()
	if !strings.Contains(out, `"job_id":"abc"`) || !strings.Contains(out, `"msg":"done"`) {
		t.Errorf("unexpected json output: %s", out)
	}
}

func TestLogBufferKeepsLastLines(t *testing.T) {
	lb := NewLogBuffer(3)
	for i := 0; i < 5; i++ {
		fmt.Fprintf(lb, "line %d", i)
	}

	got := lb.Lines()
	if len(got) != 3 || got[0] != "line 2" || got[2] != "line 4" {
		t.Errorf("Lines() = %v", got)
	}
}
