// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package executor

import (
	"sync"
	"testing"
	"time"

	"github.com/leadgtr7/bbctrl-firmware/pkg/axis"
	"github.com/leadgtr7/bbctrl-firmware/pkg/kinematics"
	"github.com/leadgtr7/bbctrl-firmware/pkg/planner"
	"github.com/leadgtr7/bbctrl-firmware/pkg/reactor"
	"github.com/leadgtr7/bbctrl-firmware/pkg/status"
)

type xyzMotors struct{}

func (xyzMotors) MotorAxis(motor int) int {
	if motor < 3 {
		return motor
	}
	return -1
}

func (xyzMotors) MotorEnabled(int) bool { return true }

// recordSink collects segments and dwells under a lock: the executor
// goroutine writes while the test reads.
type recordSink struct {
	mu       sync.Mutex
	segments []planner.Segment
	dwells   []uint32
}

func (s *recordSink) Segment(seg planner.Segment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = append(s.segments, seg)
	return nil
}

func (s *recordSink) Dwell(usec uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dwells = append(s.dwells, usec)
}

func (s *recordSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.segments), len(s.dwells)
}

// testMachine signals on cycle end so tests can wait for the drain.
type testMachine struct {
	drained chan struct{}
}

func (m *testMachine) HardAlarm(code status.Code) {}
func (m *testMachine) SetMotionStopped()          {}
func (m *testMachine) AbortArc()                  {}

func (m *testMachine) CycleEnd() {
	select {
	case m.drained <- struct{}{}:
	default:
	}
}

func kin() kinematics.Kinematics {
	return kinematics.NewCartesian(axis.NewMap(xyzMotors{}),
		[axis.Motors]float64{80, 80, 400, 0})
}

func TestExecutorDrainsQueue(t *testing.T) {
	r := reactor.New()
	r.Run()
	defer func() {
		r.End()
		r.Wait()
	}()

	sink := &recordSink{}
	m := &testMachine{drained: make(chan struct{}, 1)}
	exec := New(r, sink, nil)

	p := planner.New(8, 0.005, planner.Deps{
		Kinematics: kin(),
		Stepper:    exec,
		Machine:    m,
	})
	exec.Attach(p)
	exec.Start()
	defer exec.Stop()

	p.QueueMove(planner.MovePayload{
		Target:         [axis.Axes]float64{1, 0, 0},
		Unit:           [axis.Axes]float64{1, 0, 0},
		Length:         1,
		CruiseVelocity: 100,
		MoveTime:       0.01,
	}, 1)

	select {
	case <-m.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("queue did not drain")
	}

	segs, _ := sink.counts()
	if segs != 2 {
		t.Errorf("segments = %d, want 2", segs)
	}
	if p.BuffersAvailable() != 8 {
		t.Errorf("available = %d, want 8 after drain", p.BuffersAvailable())
	}
}

func TestExecutorDwellHoldsDequeue(t *testing.T) {
	r := reactor.New()
	r.Run()
	defer func() {
		r.End()
		r.Wait()
	}()

	sink := &recordSink{}
	m := &testMachine{drained: make(chan struct{}, 1)}
	exec := New(r, sink, nil)

	p := planner.New(8, 0.005, planner.Deps{
		Kinematics: kin(),
		Stepper:    exec,
		Machine:    m,
	})
	exec.Attach(p)
	exec.Start()
	defer exec.Stop()

	start := time.Now()
	p.Dwell(0.05)
	p.Dwell(0.05)

	select {
	case <-m.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("queue did not drain")
	}

	// The second dwell cannot dequeue before the first one's hold expires.
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("drained in %v, want at least 50ms", elapsed)
	}
	if _, dwells := sink.counts(); dwells != 2 {
		t.Errorf("dwells = %d, want 2", dwells)
	}
}

func TestSynchronousDrainsOnCommit(t *testing.T) {
	sink := &recordSink{}
	m := &testMachine{drained: make(chan struct{}, 1)}
	exec := NewSynchronous(sink)

	p := planner.New(4, 0.005, planner.Deps{
		Kinematics: kin(),
		Stepper:    exec,
		Machine:    m,
	})
	exec.Attach(p)

	ran := false
	var zero [axis.Axes]float64
	p.QueueCommand(func(_, _ [axis.Axes]float64) { ran = true }, zero, zero)

	if !ran {
		t.Fatal("command did not run during commit")
	}
	if p.BuffersAvailable() != 4 {
		t.Errorf("available = %d, want 4 right after commit", p.BuffersAvailable())
	}
}

// A command callback that queues more work must not re-enter the dequeue
// loop; the nested commit's work runs after the callback returns.
func TestSynchronousNoRecursiveDrain(t *testing.T) {
	sink := &recordSink{}
	m := &testMachine{drained: make(chan struct{}, 1)}
	exec := NewSynchronous(sink)

	p := planner.New(4, 0.005, planner.Deps{
		Kinematics: kin(),
		Stepper:    exec,
		Machine:    m,
	})
	exec.Attach(p)

	order := []string{}
	var zero [axis.Axes]float64
	p.QueueCommand(func(_, _ [axis.Axes]float64) {
		order = append(order, "outer")
		p.QueueCommand(func(_, _ [axis.Axes]float64) {
			order = append(order, "inner")
		}, zero, zero)
		order = append(order, "outer done")
	}, zero, zero)

	want := []string{"outer", "outer done", "inner"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if p.BuffersAvailable() != 4 {
		t.Errorf("available = %d, want 4", p.BuffersAvailable())
	}
}

func TestSynchronousUnattachedIsSafe(t *testing.T) {
	exec := NewSynchronous(NullSink{})
	exec.RequestExecMove() // must not panic
}
