package status

import (
	"errors"
	"testing"
)

func TestDone(t *testing.T) {
	if Again.Done() {
		t.Error("Again reported done")
	}
	for _, c := range []Code{OK, Noop, BufferFullFatal} {
		if !c.Done() {
			t.Errorf("%s not reported done", c)
		}
	}
}

func TestErrorFormatting(t *testing.T) {
	err := Newf(Kinematics, "unknown model '%s'", "delta")
	if err.Error() != "[KINEMATICS] unknown model 'delta'" {
		t.Errorf("message = %q", err.Error())
	}
	if err.Axis != -1 || err.Motor != -1 {
		t.Error("axis/motor not initialized to -1")
	}

	err.SetAxis(2).SetMotor(1)
	if err.Axis != 2 || err.Motor != 1 {
		t.Error("fluent setters did not apply")
	}
}

func TestWrapUnwrap(t *testing.T) {
	inner := errors.New("no such file")
	err := Wrap(inner, ConfigParse, "unable to read machine.json")
	if !errors.Is(err, inner) {
		t.Error("wrapped error lost the cause")
	}
	if !Is(err, ConfigParse) {
		t.Error("wrapped error lost the code")
	}
}

func TestClassifiers(t *testing.T) {
	if !IsAlarm(New(BufferFullFatal, "pool exhausted")) {
		t.Error("buffer full not classified as alarm")
	}
	if IsAlarm(New(ConfigInvalid, "")) {
		t.Error("config error classified as alarm")
	}
	if !IsConfig(ConfigError("plan-buffers", "must be at least 2")) {
		t.Error("ConfigError not classified as config")
	}
	if Is(errors.New("plain"), InternalError) {
		t.Error("plain error matched a code")
	}
}
