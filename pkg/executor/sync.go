// Synchronous executor: priority-preemption simulation
//
// The firmware's consumer ran at interrupt priority, so committing a block
// could execute and free it before the commit returned to the producer.
// Synchronous reproduces that ordering exactly by draining the queue inline
// from RequestExecMove. Used by tests that pin down the commit reentrancy
// guarantee and by embeddings that want single-context execution.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package executor

import (
	"github.com/leadgtr7/bbctrl-firmware/pkg/planner"
	"github.com/leadgtr7/bbctrl-firmware/pkg/status"
)

// Synchronous implements planner.Stepper with inline execution.
type Synchronous struct {
	planner *planner.Planner
	sink    SegmentSink

	// draining guards against recursive drains: a commit performed by a
	// command callback must not re-enter the dequeue loop.
	draining bool
}

// NewSynchronous creates a synchronous executor over a segment sink.
// Attach the planner before the first commit.
func NewSynchronous(sink SegmentSink) *Synchronous {
	return &Synchronous{sink: sink}
}

// Attach binds the planner whose queue this executor drains.
func (s *Synchronous) Attach(p *planner.Planner) {
	s.planner = p
}

// RequestExecMove drains the queue before returning, mimicking the
// interrupt preempting the producer at commit time.
func (s *Synchronous) RequestExecMove() {
	if s.planner == nil || s.draining {
		return
	}
	s.draining = true
	defer func() { s.draining = false }()

	for {
		switch s.planner.ExecMove() {
		case status.OK, status.Again:
		default:
			return
		}
	}
}

// PrepDwell forwards the dwell to the sink. There is no separate execution
// context to hold, so the sink alone owns the timing.
func (s *Synchronous) PrepDwell(usec uint32) {
	s.sink.Dwell(usec)
}

// PrepSegment forwards a prepared segment to the sink.
func (s *Synchronous) PrepSegment(seg planner.Segment) error {
	return s.sink.Segment(seg)
}
