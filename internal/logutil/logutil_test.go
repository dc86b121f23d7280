package logutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"trace": LevelTrace,
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelTrace)
	Trace(logger, "parsed", "offset", 12)

	out := buf.String()
	if !strings.Contains(out, "level=TRACE") {
		t.Errorf("output %q has no TRACE level", out)
	}
	if !strings.Contains(out, "offset=12") {
		t.Errorf("output %q has no offset", out)
	}
	if !strings.Contains(out, "logutil_test.go") {
		t.Errorf("output %q does not point at the caller", out)
	}
}

func TestTraceDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)
	Trace(logger, "parsed")
	if buf.Len() != 0 {
		t.Errorf("trace logged at info level: %q", buf.String())
	}
}
