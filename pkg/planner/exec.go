// Move execution: the segment-emitting continuation
//
// A move block is executed as a continuation: each invocation prepares one
// and only one segment and returns Again until the final segment, which
// returns OK and frees the run buffer. The contents of the block no longer
// affect execution once the move state is initialized, so a flush cannot
// corrupt a segment already in flight.
//
// Velocity shaping happens upstream; here the move's total time is sliced
// into nominal fixed-duration segments at the carried cruise velocity. The
// final segment lands exactly on the move target to cancel accumulated
// floating point error.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package planner

import (
	"math"

	"github.com/leadgtr7/bbctrl-firmware/pkg/axis"
	"github.com/leadgtr7/bbctrl-firmware/pkg/status"
)

// execState is the consumer-side move runtime, isolated from the block so
// the buffer can be freed while the last segment still runs at the hardware.
type execState struct {
	unit        [axis.Axes]float64
	finalTarget [axis.Axes]float64

	segmentCount    int
	segmentTime     float64
	segmentVelocity float64
	traveled        float64
}

// execMove runs one invocation of the move continuation for the run buffer.
func (p *Planner) execMove(b *Block) status.Code {
	if !p.rt.busy {
		if b.Move.Length == 0 {
			// Zero length moves queue as position markers; nothing to emit.
			p.freeRunBuffer()
			return status.Noop
		}
		if c := p.execMoveInit(b); c != status.OK {
			return c
		}
	}

	// One segment per invocation.
	p.ex.segmentCount--
	p.ex.traveled += p.ex.segmentVelocity * p.ex.segmentTime

	var target [axis.Axes]float64
	if p.ex.segmentCount == 0 {
		// Land exactly on the endpoint.
		target = p.ex.finalTarget
	} else {
		for i := 0; i < axis.Axes; i++ {
			target[i] = p.rt.position[i] + p.ex.unit[i]*p.ex.segmentVelocity*p.ex.segmentTime
		}
	}

	if err := p.moveToTarget(target, p.ex.segmentVelocity, p.ex.segmentTime, b.line); err != nil {
		p.rt.busy = false
		p.freeRunBuffer()
		return p.hardAlarm(status.InternalError)
	}

	if p.ex.segmentCount > 0 {
		return status.Again
	}

	p.rt.busy = false
	p.freeRunBuffer()
	return status.OK
}

// execMoveInit takes control of the block and initializes the move runtime.
func (p *Planner) execMoveInit(b *Block) status.Code {
	moveTime := b.Move.MoveTime
	if moveTime <= 0 {
		if b.Move.CruiseVelocity <= 0 {
			return p.hardAlarm(status.InternalError)
		}
		moveTime = b.Move.Length / b.Move.CruiseVelocity
	}

	segments := int(math.Ceil(moveTime / p.segmentTime))
	if segments < 1 {
		segments = 1
	}

	p.ex = execState{
		unit:            b.Move.Unit,
		finalTarget:     b.Move.Target,
		segmentCount:    segments,
		segmentTime:     moveTime / float64(segments),
		segmentVelocity: b.Move.Length / moveTime,
	}

	p.rt.busy = true
	p.rt.endpoint = b.Move.Target
	p.rt.line = b.line

	return status.OK
}

// moveToTarget advances the runtime position model by one segment and hands
// the prepared segment to the stepper layer. The target steps come from
// inverse kinematics on the tool-space target.
func (p *Planner) moveToTarget(target [axis.Axes]float64, velocity, seconds float64, line int32) error {
	p.rt.target = target
	steps := p.kin.StepsFromPosition(target)

	seg := Segment{
		Target:   target,
		Steps:    steps,
		Velocity: velocity,
		Time:     seconds,
		Line:     line,
	}
	if err := p.stepper.PrepSegment(seg); err != nil {
		return err
	}

	// Open loop: once the segment is prepped the commanded counts advance
	// to the previous targets and the new targets take the fresh counts.
	p.rt.commandedSteps = p.rt.targetSteps
	p.rt.targetSteps = steps
	p.rt.positionSteps = steps
	p.rt.position = target

	if p.met != nil {
		p.met.Segments.Inc()
	}

	return nil
}
