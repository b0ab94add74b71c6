// Package axis maps machine axes to motors and exposes per-axis motion limits.
//
// Each axis is driven by at most one motor. The mapping is computed by a
// first-match scan over the motor configuration and must be recomputed when
// the motor configuration changes. Limit queries route through the mapping:
// an unmapped axis reports a zero limit and is considered disabled.
package axis

import "math"

// Axes is the number of machine axes (X, Y, Z, A, B, C).
const Axes = 6

// Motors is the number of motor channels.
const Motors = 4

// Axis indices
const (
	X = iota
	Y
	Z
	A
	B
	C
)

// Limit scale factors. Velocity and acceleration are configured in
// units/min scaled down by 1,000; jerk in units/min^3 scaled by 1,000,000.
const (
	VelocityMultiplier = 1000
	AccelMultiplier    = 1000
	JerkMultiplier     = 1000000
)

const axisChars = "XYZABC"

// Char returns the letter for an axis index, or '?' if out of range.
func Char(axis int) byte {
	if axis < 0 || Axes <= axis {
		return '?'
	}
	return axisChars[axis]
}

// ID returns the axis index for a letter, or -1 if unknown.
func ID(c byte) int {
	if 'a' <= c && c <= 'z' {
		c -= 'a' - 'A'
	}
	for i := 0; i < Axes; i++ {
		if axisChars[i] == c {
			return i
		}
	}
	return -1
}

// MotorSource provides the motor configuration the mapping is derived from.
type MotorSource interface {
	// MotorAxis returns the axis a motor is assigned to, or -1.
	MotorAxis(motor int) int

	// MotorEnabled reports whether a motor channel is powered.
	MotorEnabled(motor int) bool
}

// limits holds per-motor maximums in configuration units (unscaled).
type limits struct {
	velocityMax float64
	accelMax    float64
	jerkMax     float64
}

// Map is the axis to motor mapping plus per-motor limit storage.
type Map struct {
	src    MotorSource
	motors [Axes]int
	axes   [Motors]limits
}

// NewMap builds a mapping from the given motor source.
func NewMap(src MotorSource) *Map {
	m := &Map{src: src}
	m.Remap()
	return m
}

// Remap recomputes the axis to motor mapping with a first-match scan.
// Call after any change to motor axis assignments.
func (m *Map) Remap() {
	for axis := 0; axis < Axes; axis++ {
		m.motors[axis] = -1
		for motor := 0; motor < Motors; motor++ {
			if m.src.MotorAxis(motor) == axis {
				m.motors[axis] = motor
				break
			}
		}
	}
}

// Motor returns the motor driving an axis, or -1 if the axis is unmapped.
func (m *Map) Motor(axis int) int {
	if axis < 0 || Axes <= axis {
		return -1
	}
	return m.motors[axis]
}

// Enabled reports whether an axis is usable: mapped to an enabled motor
// with a nonzero velocity limit.
func (m *Map) Enabled(axis int) bool {
	motor := m.Motor(axis)
	return motor != -1 && m.src.MotorEnabled(motor) && m.VelocityMax(axis) != 0
}

// VelocityMax returns the scaled velocity limit for an axis, 0 if unmapped.
func (m *Map) VelocityMax(axis int) float64 {
	motor := m.Motor(axis)
	if motor == -1 {
		return 0
	}
	return m.axes[motor].velocityMax * VelocityMultiplier
}

// AccelMax returns the scaled acceleration limit for an axis, 0 if unmapped.
func (m *Map) AccelMax(axis int) float64 {
	motor := m.Motor(axis)
	if motor == -1 {
		return 0
	}
	return m.axes[motor].accelMax * AccelMultiplier
}

// JerkMax returns the scaled jerk limit for an axis, 0 if unmapped.
func (m *Map) JerkMax(axis int) float64 {
	motor := m.Motor(axis)
	if motor == -1 {
		return 0
	}
	return m.axes[motor].jerkMax * JerkMultiplier
}

// SetVelocityMax sets the unscaled velocity limit for a motor.
func (m *Map) SetVelocityMax(motor int, v float64) {
	if 0 <= motor && motor < Motors {
		m.axes[motor].velocityMax = v
	}
}

// SetAccelMax sets the unscaled acceleration limit for a motor.
func (m *Map) SetAccelMax(motor int, v float64) {
	if 0 <= motor && motor < Motors {
		m.axes[motor].accelMax = v
	}
}

// SetJerkMax sets the unscaled jerk limit for a motor.
func (m *Map) SetJerkMax(motor int, v float64) {
	if 0 <= motor && motor < Motors {
		m.axes[motor].jerkMax = v
	}
}

// VectorLength returns the Euclidean distance between two positions over
// all six axes.
func VectorLength(a, b [Axes]float64) float64 {
	var sum float64
	for i := 0; i < Axes; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
