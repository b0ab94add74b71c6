// Position bridge between the planner, runtime and step state layers
//
// Moves exist in several reference frames. The scheme to keep this straight:
//
//   - planner position — start and end position for planning
//   - runtime position — current position of the runtime segment
//   - runtime target   — target position of the runtime segment
//   - runtime endpoint — final target position of the runtime segment
//
// The planner position is set immediately when a move is queued and is not
// an accurate representation of the tool position: the motors are still
// processing earlier work and the real tool position is close to the
// starting point.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package planner

import "github.com/leadgtr7/bbctrl-firmware/pkg/axis"

// SetPlannerPosition sets the planner-layer position for a single axis.
// Producer side only.
func (p *Planner) SetPlannerPosition(a int, position float64) {
	p.position[a] = position
}

// PlannerPosition returns the planner-layer position vector.
func (p *Planner) PlannerPosition() [axis.Axes]float64 {
	return p.position
}

// SetRuntimePosition sets the runtime-layer position for a single axis.
// Consumer side only.
func (p *Planner) SetRuntimePosition(a int, position float64) {
	p.rt.position[a] = position
}

// RuntimePosition returns the runtime-layer position vector.
func (p *Planner) RuntimePosition() [axis.Axes]float64 {
	return p.rt.position
}

// RuntimeTarget returns the in-progress segment's immediate target.
func (p *Planner) RuntimeTarget() [axis.Axes]float64 {
	return p.rt.target
}

// RuntimeEndpoint returns the current move's final target.
func (p *Planner) RuntimeEndpoint() [axis.Axes]float64 {
	return p.rt.endpoint
}

// RuntimeLine returns the source line of the block currently executing.
func (p *Planner) RuntimeLine() int32 {
	return p.rt.line
}

// RuntimeBusy reports whether a move continuation is mid-flight.
func (p *Planner) RuntimeBusy() bool {
	return p.rt.busy
}

// FollowingError returns the accumulated following error for a motor.
func (p *Planner) FollowingError(motor int) float64 {
	return p.rt.followingError[motor]
}

// CorrectedSteps returns the pending step correction for a motor.
func (p *Planner) CorrectedSteps(motor int) float64 {
	return p.rt.correctedSteps[motor]
}

// UpdateFollowingError records the difference between the commanded step
// count and an encoder readback for a motor. Consumer side only.
func (p *Planner) UpdateFollowingError(motor int, encoderSteps float64) {
	p.rt.followingError[motor] = p.rt.commandedSteps[motor] - encoderSteps
}

// SetStepsToRuntimePosition realigns the motor step registers with the
// runtime position. Since steps are in motor space the position vector must
// run through inverse kinematics: on a non-Cartesian machine changing any
// position can change multiple step values, so this is a single whole-vector
// operation.
//
// Every motor's target, position and commanded step registers take the new
// count, the same count is written to the physical encoder register, and the
// following error and pending step correction are zeroed. Used to realign
// mechanical tracking after a discontinuity (homing, hold release, external
// reset); bypasses incremental motion.
func (p *Planner) SetStepsToRuntimePosition() {
	steps := p.kin.StepsFromPosition(p.rt.position)

	for motor := 0; motor < axis.Motors; motor++ {
		p.rt.targetSteps[motor] = steps[motor]
		p.rt.positionSteps[motor] = steps[motor]
		p.rt.commandedSteps[motor] = steps[motor]
		if p.encoder != nil {
			p.encoder.SetEncoderSteps(motor, steps[motor])
		}

		// These must be zero:
		p.rt.followingError[motor] = 0
		p.rt.correctedSteps[motor] = 0
	}
}

// VectorDistance returns the Euclidean distance between two position vectors
// over the six axes. Used by upstream feed-rate and time computations.
func VectorDistance(a, b [axis.Axes]float64) float64 {
	return axis.VectorLength(a, b)
}
