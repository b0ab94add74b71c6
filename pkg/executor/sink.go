// Segment sinks
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package executor

import (
	"github.com/leadgtr7/bbctrl-firmware/pkg/log"
	"github.com/leadgtr7/bbctrl-firmware/pkg/planner"
)

// NullSink discards segments and dwells. Useful in tests.
type NullSink struct{}

// Segment discards the segment.
func (NullSink) Segment(planner.Segment) error { return nil }

// Dwell discards the dwell.
func (NullSink) Dwell(uint32) {}

// LogSink logs segments and dwells at DEBUG level. The plannerd binary uses
// it in place of real stepper hardware.
type LogSink struct {
	Log *log.Logger
}

// Segment logs the segment.
func (s *LogSink) Segment(seg planner.Segment) error {
	s.Log.Debug("segment", log.Fields{
		"line":     seg.Line,
		"x":        seg.Target[0],
		"y":        seg.Target[1],
		"z":        seg.Target[2],
		"velocity": seg.Velocity,
		"time":     seg.Time,
	})
	return nil
}

// Dwell logs the dwell.
func (s *LogSink) Dwell(usec uint32) {
	s.Log.Debug("dwell", log.Fields{"usec": usec})
}
