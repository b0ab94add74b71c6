// Package kinematics converts tool-space positions to per-motor step counts.
//
// The planner runtime uses the inverse transform to keep motor step registers
// in sync with the interpolated tool position. The forward transform is the
// mathematical inverse and is used to recover a position from step counts,
// e.g. after homing against an encoder.
package kinematics

import (
	"github.com/leadgtr7/bbctrl-firmware/pkg/axis"
	"github.com/leadgtr7/bbctrl-firmware/pkg/status"
)

// Kinematics transforms between tool space and motor space.
type Kinematics interface {
	// Type returns the kinematic model name (e.g. "cartesian", "corexy").
	Type() string

	// StepsFromPosition runs the inverse transform: a tool-space position
	// vector to per-motor step counts.
	StepsFromPosition(pos [axis.Axes]float64) [axis.Motors]float64

	// PositionFromSteps runs the forward transform: per-motor step counts
	// back to a tool-space position vector.
	PositionFromSteps(steps [axis.Motors]float64) [axis.Axes]float64
}

// base holds the per-motor step scaling shared by all models.
type base struct {
	stepsPerUnit [axis.Motors]float64
	m            *axis.Map
}

// motorSteps converts a travel distance on a motor channel to steps.
func (b *base) motorSteps(motor int, travel float64) float64 {
	return travel * b.stepsPerUnit[motor]
}

// motorTravel converts a step count on a motor channel to travel distance.
func (b *base) motorTravel(motor int, steps float64) float64 {
	if b.stepsPerUnit[motor] == 0 {
		return 0
	}
	return steps / b.stepsPerUnit[motor]
}

// New creates a kinematics model by name.
func New(model string, m *axis.Map, stepsPerUnit [axis.Motors]float64) (Kinematics, error) {
	switch model {
	case "cartesian", "":
		return NewCartesian(m, stepsPerUnit), nil
	case "corexy":
		return NewCoreXY(m, stepsPerUnit), nil
	}
	return nil, status.Newf(status.Kinematics, "unknown kinematic model '%s'", model)
}
