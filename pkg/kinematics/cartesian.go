// Cartesian kinematics: each motor tracks exactly one axis.
package kinematics

import "github.com/leadgtr7/bbctrl-firmware/pkg/axis"

// Cartesian implements a direct axis-per-motor transform.
type Cartesian struct {
	base
}

// NewCartesian creates a cartesian kinematics model over an axis mapping.
func NewCartesian(m *axis.Map, stepsPerUnit [axis.Motors]float64) *Cartesian {
	return &Cartesian{base{stepsPerUnit: stepsPerUnit, m: m}}
}

// Type returns the kinematic model name.
func (c *Cartesian) Type() string { return "cartesian" }

// StepsFromPosition converts a position vector to per-motor steps.
// Unmapped motors keep a zero step count.
func (c *Cartesian) StepsFromPosition(pos [axis.Axes]float64) [axis.Motors]float64 {
	var steps [axis.Motors]float64
	for a := 0; a < axis.Axes; a++ {
		motor := c.m.Motor(a)
		if motor == -1 {
			continue
		}
		steps[motor] = c.motorSteps(motor, pos[a])
	}
	return steps
}

// PositionFromSteps converts per-motor steps back to a position vector.
func (c *Cartesian) PositionFromSteps(steps [axis.Motors]float64) [axis.Axes]float64 {
	var pos [axis.Axes]float64
	for a := 0; a < axis.Axes; a++ {
		motor := c.m.Motor(a)
		if motor == -1 {
			continue
		}
		pos[a] = c.motorTravel(motor, steps[motor])
	}
	return pos
}
