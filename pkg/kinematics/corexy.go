// CoreXY kinematics: the X and Y motors move the carriage diagonally.
//
//   - Motor A travel = X + Y
//   - Motor B travel = X - Y
//   - X = 0.5 * (A + B)
//   - Y = 0.5 * (A - B)
//
// Remaining axes map directly through the axis mapping.
package kinematics

import "github.com/leadgtr7/bbctrl-firmware/pkg/axis"

// CoreXY implements the CoreXY belt transform on the X/Y pair.
type CoreXY struct {
	base
}

// NewCoreXY creates a CoreXY kinematics model over an axis mapping.
func NewCoreXY(m *axis.Map, stepsPerUnit [axis.Motors]float64) *CoreXY {
	return &CoreXY{base{stepsPerUnit: stepsPerUnit, m: m}}
}

// Type returns the kinematic model name.
func (c *CoreXY) Type() string { return "corexy" }

// StepsFromPosition converts a position vector to per-motor steps.
func (c *CoreXY) StepsFromPosition(pos [axis.Axes]float64) [axis.Motors]float64 {
	var steps [axis.Motors]float64

	ma, mb := c.m.Motor(axis.X), c.m.Motor(axis.Y)
	if ma != -1 {
		steps[ma] = c.motorSteps(ma, pos[axis.X]+pos[axis.Y])
	}
	if mb != -1 {
		steps[mb] = c.motorSteps(mb, pos[axis.X]-pos[axis.Y])
	}

	for a := axis.Z; a < axis.Axes; a++ {
		motor := c.m.Motor(a)
		if motor == -1 {
			continue
		}
		steps[motor] = c.motorSteps(motor, pos[a])
	}

	return steps
}

// PositionFromSteps converts per-motor steps back to a position vector.
func (c *CoreXY) PositionFromSteps(steps [axis.Motors]float64) [axis.Axes]float64 {
	var pos [axis.Axes]float64

	ma, mb := c.m.Motor(axis.X), c.m.Motor(axis.Y)
	if ma != -1 && mb != -1 {
		a := c.motorTravel(ma, steps[ma])
		b := c.motorTravel(mb, steps[mb])
		pos[axis.X] = 0.5 * (a + b)
		pos[axis.Y] = 0.5 * (a - b)
	}

	for a := axis.Z; a < axis.Axes; a++ {
		motor := c.m.Motor(a)
		if motor == -1 {
			continue
		}
		pos[a] = c.motorTravel(motor, steps[motor])
	}

	return pos
}
