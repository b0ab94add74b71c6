// Status codes and unified error handling for the motion controller
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package status

import (
	"fmt"
)

// Code identifies the outcome of a planner or executor operation. The
// continuation codes (OK, Again, Noop) are returned by run handlers; the
// remaining codes identify fatal alarm and error conditions.
type Code string

const (
	// Continuation results
	OK    Code = "OK"    // operation complete
	Again Code = "AGAIN" // operation has more work, re-invoke later
	Noop  Code = "NOOP"  // nothing to do

	// Fatal alarms
	BufferFullFatal Code = "BUFFER_FULL_FATAL"
	InternalError   Code = "INTERNAL_ERROR"
	MachineAlarmed  Code = "MACHINE_ALARMED"

	// Configuration errors
	ConfigInvalid Code = "CONFIG_INVALID"
	ConfigParse   Code = "CONFIG_PARSE"

	// Queue errors
	QueueOperation Code = "QUEUE_OPERATION"

	// Kinematics errors
	Kinematics Code = "KINEMATICS"
)

// Done reports whether a continuation code represents a finished handler
// invocation (anything other than Again).
func (c Code) Done() bool {
	return c != Again
}

// Error is the unified error type for the planner host.
type Error struct {
	// Code is the error category
	Code Code

	// Message is a human-readable error description
	Message string

	// Axis is the axis index involved, or -1
	Axis int

	// Motor is the motor index involved, or -1
	Motor int

	// Err wraps the underlying error
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// SetAxis sets the axis index
func (e *Error) SetAxis(axis int) *Error {
	e.Axis = axis
	return e
}

// SetMotor sets the motor index
func (e *Error) SetMotor(motor int) *Error {
	e.Motor = motor
	return e
}

// New creates a new Error
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Axis: -1, Motor: -1}
}

// Newf creates a new Error with a formatted message
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a code and message
func Wrap(err error, code Code, message string) *Error {
	e := New(code, message)
	e.Err = err
	return e
}

// Is checks if an error carries the given code
func Is(err error, code Code) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == code
	}
	return false
}

// IsAlarm checks if an error is a fatal alarm condition
func IsAlarm(err error) bool {
	return Is(err, BufferFullFatal) ||
		Is(err, InternalError) ||
		Is(err, MachineAlarmed)
}

// IsConfig checks if an error is a configuration error
func IsConfig(err error) bool {
	return Is(err, ConfigInvalid) || Is(err, ConfigParse)
}

// ConfigError creates a configuration validation error
func ConfigError(option, reason string) *Error {
	return Newf(ConfigInvalid, "option '%s': %s", option, reason)
}

// QueueError creates an error for a queue operation failure
func QueueError(operation, reason string) *Error {
	return Newf(QueueOperation, "queue %s failed: %s", operation, reason)
}

// KinematicsError creates a kinematics error
func KinematicsError(message string) *Error {
	return New(Kinematics, message)
}
