package taskrt

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTextLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, LevelWarn)

	l.Log(Entry{Level: LevelInfo, Category: "x", Message: "should be dropped"})
	if buf.Len() != 0 {
		t.Fatalf("expected nothing logged below minimum level, got %q", buf.String())
	}

	l.Log(Entry{Level: LevelWarn, Category: "x", Message: "should appear"})
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected message logged, got %q", buf.String())
	}
}

func TestTextLogger_Enabled(t *testing.T) {
	l := NewTextLogger(nil, LevelInfo)
	if l.Enabled(LevelDebug) {
		t.Fatal("LevelDebug should not be enabled at LevelInfo threshold")
	}
	if !l.Enabled(LevelError) {
		t.Fatal("LevelError should be enabled at LevelInfo threshold")
	}
	l.SetLevel(LevelError)
	if l.Enabled(LevelInfo) {
		t.Fatal("LevelInfo should not be enabled after raising threshold to LevelError")
	}
}

func TestTextLogger_FormatsFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, LevelDebug)
	l.Log(Entry{
		Level:    LevelError,
		Category: "executor",
		Message:  "task panicked",
		Err:      errors.New("boom"),
		Fields:   map[string]any{"executor": "single-thread"},
	})

	out := buf.String()
	for _, want := range []string{"ERROR", "executor", "task panicked", "executor=single-thread", "err=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q does not contain %q", out, want)
		}
	}
}

func TestNoopLogger_NeverEnabled(t *testing.T) {
	var l noopLogger
	if l.Enabled(LevelError) {
		t.Fatal("noopLogger should never be enabled")
	}
	l.Log(Entry{Level: LevelError, Message: "ignored"})
}

func TestSetLogger_ChangesDefault(t *testing.T) {
	var buf bytes.Buffer
	custom := NewTextLogger(&buf, LevelDebug)
	SetLogger(custom)
	defer SetLogger(nil)

	if defaultLogger() != Logger(custom) {
		t.Fatal("defaultLogger() did not return the installed logger")
	}
}

func TestLevel_String(t *testing.T) {
	cases := map[Level]string{LevelDebug: "DEBUG", LevelInfo: "INFO", LevelWarn: "WARN", LevelError: "ERROR"}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}
