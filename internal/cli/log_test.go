package cli

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/impactgraph/pkg/observability"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("inserted", "name", "Alpha") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("using file database") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("using file database") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("skipped", "outcome", "skipped_duplicate") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Processed 2 projects")

	if !regexp.MustCompile(`Processed 2 projects \(\d+(\.\d+)?m?s\)`).Match(buf.Bytes()) {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext should fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	got := loggerFromContext(withLogger(context.Background(), custom))
	if got != custom {
		t.Fatal("loggerFromContext should return the attached logger")
	}
	got.Info("attached")
	if buf.Len() == 0 {
		t.Error("attached logger should write to its buffer")
	}
}

func TestSetLogLevelRegistersHooks(t *testing.T) {
	t.Cleanup(observability.Reset)
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.SetLogLevel(LogDebug)
	if _, ok := observability.Cache().(*observability.LogHooks); !ok {
		t.Fatal("debug level should register log hooks")
	}
	observability.Cache().OnCacheMiss(context.Background(), "elements")
	if !bytes.Contains(buf.Bytes(), []byte("cache miss")) {
		t.Errorf("hook output missing: %q", buf.String())
	}

	c.SetLogLevel(LogInfo)
	if _, ok := observability.Cache().(observability.NoopCacheHooks); !ok {
		t.Error("info level should restore no-op hooks")
	}
}
