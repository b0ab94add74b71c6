package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New("test")
	l.SetWriter(&buf)
	l.SetLevel(WARN)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("suppressed levels leaked: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("enabled levels missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"Warning": WARN,
		"error":   ERROR,
		"bogus":   INFO,
	}
	for s, want := range cases {
		if got := ParseLevel(s); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New("planner")
	l.SetWriter(&buf)

	l.Info("queued", Fields{"line": 7, "kind": "move"})

	out := buf.String()
	for _, want := range []string{"[INFO]", "planner:", "queued", "kind=move", "line=7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New("exec")
	l.SetWriter(&buf)
	l.SetFormat(FormatJSON)

	l.Error("alarm", Fields{"code": "BUFFER_FULL_FATAL"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "ERROR" || entry["msg"] != "alarm" ||
		entry["component"] != "exec" || entry["code"] != "BUFFER_FULL_FATAL" {
		t.Errorf("entry = %v", entry)
	}
}

func TestWithFieldsPersist(t *testing.T) {
	var buf bytes.Buffer
	l := New("")
	l.SetWriter(&buf)

	child := l.WithFields(Fields{"motor": 2})
	child.Info("step")

	if !strings.Contains(buf.String(), "motor=2") {
		t.Errorf("persistent field missing: %q", buf.String())
	}
}

func TestComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := New("plannerd")
	l.SetWriter(&buf)

	l.Component("stepper").Info("hello")

	if !strings.Contains(buf.String(), "plannerd.stepper:") {
		t.Errorf("component prefix missing: %q", buf.String())
	}
}

func TestFormattedVariants(t *testing.T) {
	var buf bytes.Buffer
	l := New("")
	l.SetWriter(&buf)

	l.Infof("line %d of %s", 42, "job")
	if !strings.Contains(buf.String(), "line 42 of job") {
		t.Errorf("formatted message missing: %q", buf.String())
	}
}
