// Machine configuration
//
// The controller is configured from a single JSON document: buffer pool
// sizing, segment timing, the kinematic model and per-motor settings (axis
// assignment, step scaling, motion limits). Decoding uses the sonnet codec,
// a drop-in replacement for encoding/json.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package config

import (
	"fmt"
	"os"

	"github.com/sugawarayuuta/sonnet"

	"github.com/leadgtr7/bbctrl-firmware/pkg/axis"
	"github.com/leadgtr7/bbctrl-firmware/pkg/status"
)

// Motor configures one motor channel.
type Motor struct {
	// Axis is the axis letter this motor drives ("X".."C"), empty if unused.
	Axis string `json:"axis"`

	// Enabled powers the motor channel.
	Enabled bool `json:"enabled"`

	// StepsPerUnit converts travel distance to steps.
	StepsPerUnit float64 `json:"steps-per-unit"`

	// Limits in configuration units (see axis scale multipliers).
	VelocityMax float64 `json:"velocity-max"`
	AccelMax    float64 `json:"accel-max"`
	JerkMax     float64 `json:"jerk-max"`
}

// Config is the root configuration document.
type Config struct {
	// PlanBuffers is the buffer pool capacity.
	PlanBuffers int `json:"plan-buffers"`

	// SegmentTime is the nominal motion segment duration in seconds.
	SegmentTime float64 `json:"segment-time"`

	// Kinematics selects the kinematic model ("cartesian", "corexy").
	Kinematics string `json:"kinematics"`

	// Motors configures up to axis.Motors motor channels.
	Motors []Motor `json:"motors"`
}

// Default returns a runnable default configuration: a 3-motor cartesian
// machine with a 32-deep plan queue.
func Default() *Config {
	return &Config{
		PlanBuffers: 32,
		SegmentTime: 0.005,
		Kinematics:  "cartesian",
		Motors: []Motor{
			{Axis: "X", Enabled: true, StepsPerUnit: 80, VelocityMax: 10, AccelMax: 2.5, JerkMax: 50},
			{Axis: "Y", Enabled: true, StepsPerUnit: 80, VelocityMax: 10, AccelMax: 2.5, JerkMax: 50},
			{Axis: "Z", Enabled: true, StepsPerUnit: 400, VelocityMax: 3, AccelMax: 1, JerkMax: 20},
		},
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, status.Wrap(err, status.ConfigParse,
			fmt.Sprintf("unable to read %s", path))
	}
	return Parse(data)
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := sonnet.Unmarshal(data, c); err != nil {
		return nil, status.Wrap(err, status.ConfigParse, "invalid config document")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.PlanBuffers < 2 {
		return status.ConfigError("plan-buffers", "must be at least 2")
	}
	if c.SegmentTime <= 0 {
		return status.ConfigError("segment-time", "must be positive")
	}
	if len(c.Motors) > axis.Motors {
		return status.ConfigError("motors",
			fmt.Sprintf("at most %d motor channels", axis.Motors))
	}

	for i, m := range c.Motors {
		opt := fmt.Sprintf("motors[%d]", i)
		if m.Axis != "" && axis.ID(m.Axis[0]) == -1 {
			return status.ConfigError(opt, fmt.Sprintf("unknown axis '%s'", m.Axis))
		}
		if m.StepsPerUnit < 0 {
			return status.ConfigError(opt, "steps-per-unit must not be negative")
		}
		if m.VelocityMax < 0 || m.AccelMax < 0 || m.JerkMax < 0 {
			return status.ConfigError(opt, "limits must not be negative")
		}
	}
	return nil
}

// MotorAxis implements axis.MotorSource.
func (c *Config) MotorAxis(motor int) int {
	if motor < 0 || len(c.Motors) <= motor || c.Motors[motor].Axis == "" {
		return -1
	}
	return axis.ID(c.Motors[motor].Axis[0])
}

// MotorEnabled implements axis.MotorSource.
func (c *Config) MotorEnabled(motor int) bool {
	return 0 <= motor && motor < len(c.Motors) && c.Motors[motor].Enabled
}

// StepsPerUnit returns the per-motor step scaling vector.
func (c *Config) StepsPerUnit() [axis.Motors]float64 {
	var spu [axis.Motors]float64
	for i := 0; i < len(c.Motors) && i < axis.Motors; i++ {
		spu[i] = c.Motors[i].StepsPerUnit
	}
	return spu
}

// AxisMap builds the axis to motor mapping, including the per-motor limits.
func (c *Config) AxisMap() *axis.Map {
	m := axis.NewMap(c)
	for i := 0; i < len(c.Motors) && i < axis.Motors; i++ {
		m.SetVelocityMax(i, c.Motors[i].VelocityMax)
		m.SetAccelMax(i, c.Motors[i].AccelMax)
		m.SetJerkMax(i, c.Motors[i].JerkMax)
	}
	return m
}

// Dump re-encodes the configuration, e.g. for status reporting.
func (c *Config) Dump() ([]byte, error) {
	return sonnet.MarshalIndent(c, "", "  ")
}
