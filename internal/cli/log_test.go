package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("added word") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("cache miss") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("cache miss") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("no generator") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgress_Done(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.start = prog.start.Add(-1500 * time.Millisecond)

	prog.done("Organized 7 words")

	out := buf.String()
	if !strings.Contains(out, "Organized 7 words") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.Contains(out, "1.5") {
		t.Errorf("output %q missing elapsed time", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should fall back to log.Default()")
	}

	var buf bytes.Buffer
	reqLogger := newLogger(&buf, log.InfoLevel).With("request_id", "abc")
	ctx := withLogger(context.Background(), reqLogger)

	got := loggerFromContext(ctx)
	if got != reqLogger {
		t.Fatal("loggerFromContext did not return the attached logger")
	}
	got.Info("expand")
	if !strings.Contains(buf.String(), "request_id=abc") {
		t.Errorf("output %q missing request field", buf.String())
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnLayoutComplete(ctx, 12, true, 3*time.Millisecond, nil)
	h.OnCacheMiss(ctx, "render")
	h.OnGenerateComplete(ctx, "related", "rose", 0, time.Second, errors.New("quota"))

	out := buf.String()
	for _, want := range []string{"layout done", "cached=true", "cache miss", "type=render", "generate failed", "error=quota"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooks_QuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{logger: newLogger(&buf, log.InfoLevel)}
	h.OnLayoutStart(context.Background(), 3)
	h.OnCacheSet(context.Background(), "layout", 128)
	if buf.Len() != 0 {
		t.Errorf("hooks should only log at debug level, got %q", buf.String())
	}
}
