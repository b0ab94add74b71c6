// Planner core: queueing and execution of motion blocks
//
// The planner sits below the command interpreter and above the motor mapping
// and stepper execution layers. Long-running operations (moves, dwells) are
// coded as non-blocking continuations: state machines re-entered on every
// execution attempt until the operation completes.
//
// Three layers of positional state are kept isolated and never cross-read:
// the planner position (where the tool will be once queued work completes),
// the runtime position (the in-progress segment state) and the per-motor
// step state. Each field has exactly one writer role.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package planner

import (
	"github.com/leadgtr7/bbctrl-firmware/pkg/axis"
	"github.com/leadgtr7/bbctrl-firmware/pkg/kinematics"
	"github.com/leadgtr7/bbctrl-firmware/pkg/log"
	"github.com/leadgtr7/bbctrl-firmware/pkg/metrics"
	"github.com/leadgtr7/bbctrl-firmware/pkg/status"
)

// DefaultSegmentTime is the nominal duration of one motion segment in
// seconds when the configuration does not override it.
const DefaultSegmentTime = 0.005

// Segment is one fixed-duration slice of a move handed to the stepper layer.
type Segment struct {
	Target   [axis.Axes]float64   // tool-space position at segment end
	Steps    [axis.Motors]float64 // motor-space step counts at segment end
	Velocity float64              // segment velocity
	Time     float64              // segment duration in seconds
	Line     int32                // source line of the owning block
}

// Stepper is the low-level step sequencing and timer subsystem.
type Stepper interface {
	// RequestExecMove asks the execution context to attempt a dequeue.
	// Fire and forget; the attempt may run synchronously.
	RequestExecMove()

	// PrepDwell holds motion for the given number of microseconds.
	PrepDwell(usec uint32)

	// PrepSegment hands one prepared motion segment to the pulse generator.
	PrepSegment(seg Segment) error
}

// Encoder writes motor step counts to the physical encoder registers.
type Encoder interface {
	SetEncoderSteps(motor int, steps float64)
}

// Machine is the upstream controller the planner reports into.
type Machine interface {
	// HardAlarm raises a fatal alarm with a specific status code.
	HardAlarm(code status.Code)

	// SetMotionStopped forces the machine's motion state to stopped.
	SetMotionStopped()

	// CycleEnd signals that the planner queue has drained.
	CycleEnd()

	// AbortArc aborts any in-flight arc generation.
	AbortArc()
}

// Deps are the planner's collaborators. Kinematics, Stepper and Machine are
// required; Encoder, Log and Metrics may be nil.
type Deps struct {
	Kinematics kinematics.Kinematics
	Stepper    Stepper
	Encoder    Encoder
	Machine    Machine
	Log        *log.Logger
	Metrics    *metrics.PlannerMetrics
}

// runtimeState is the consumer-side position model: the in-progress segment
// state and the per-motor step registers.
type runtimeState struct {
	busy bool
	line int32

	position [axis.Axes]float64 // current interpolated position
	target   [axis.Axes]float64 // immediate target of the current segment
	endpoint [axis.Axes]float64 // final target of the current move

	targetSteps    [axis.Motors]float64
	positionSteps  [axis.Motors]float64
	commandedSteps [axis.Motors]float64
	followingError [axis.Motors]float64
	correctedSteps [axis.Motors]float64 // pending step correction
}

// Planner owns the buffer pool and the three position-state layers for one
// physical machine. Construct one instance at startup and pass it explicitly;
// there is no implicit global.
type Planner struct {
	pool *Pool

	kin     kinematics.Kinematics
	stepper Stepper
	encoder Encoder
	machine Machine
	logger  *log.Logger
	met     *metrics.PlannerMetrics

	segmentTime float64

	// Producer-side position model: per-axis target of all queued work.
	position [axis.Axes]float64

	rt runtimeState
	ex execState
}

// New creates a planner with a pool of the given capacity. segmentTime is
// the nominal motion segment duration in seconds; <= 0 selects the default.
func New(capacity int, segmentTime float64, deps Deps) *Planner {
	if segmentTime <= 0 {
		segmentTime = DefaultSegmentTime
	}
	p := &Planner{
		kin:         deps.Kinematics,
		stepper:     deps.Stepper,
		encoder:     deps.Encoder,
		machine:     deps.Machine,
		logger:      deps.Log,
		met:         deps.Metrics,
		segmentTime: segmentTime,
	}
	p.pool = NewPool(capacity, deps.Stepper.RequestExecMove)
	p.updateAvailableGauge()
	return p
}

// Pool returns the planner's buffer pool.
func (p *Planner) Pool() *Pool {
	return p.pool
}

// BuffersAvailable returns the number of empty blocks in the pool. Callers
// must check this before queueing; exhaustion is fatal.
func (p *Planner) BuffersAvailable() int {
	return p.pool.BuffersAvailable()
}

// QueueCommand queues a synchronous command (e.g. an M-code side effect).
// The value and flag vectors are captured by value; the caller's arrays may
// be mutated freely afterwards. Raises a fatal alarm if the pool is
// exhausted: availability must have been checked upstream.
func (p *Planner) QueueCommand(exec CommandFunc, values, flags [axis.Axes]float64) status.Code {
	b := p.pool.GetWriteBuffer()
	if b == nil {
		return p.hardAlarm(status.BufferFullFatal)
	}

	b.Command = CommandPayload{Exec: exec, Values: values, Flags: flags}

	p.commit(KindCommand) // must be the final operation before return
	return status.OK
}

// Dwell queues a hold of the given duration in seconds. Raises a fatal alarm
// if the pool is exhausted.
func (p *Planner) Dwell(seconds float64) status.Code {
	b := p.pool.GetWriteBuffer()
	if b == nil {
		return p.hardAlarm(status.BufferFullFatal)
	}

	b.Dwell.Seconds = seconds

	p.commit(KindDwell) // must be the final operation before return
	return status.OK
}

// QueueMove queues a move block carrying trajectory data computed upstream.
// The planner position advances to the move target immediately, before any
// physical motion. Raises a fatal alarm if the pool is exhausted.
func (p *Planner) QueueMove(m MovePayload, line int32) status.Code {
	b := p.pool.GetWriteBuffer()
	if b == nil {
		return p.hardAlarm(status.BufferFullFatal)
	}

	b.Move = m
	b.line = line
	p.position = m.Target

	p.commit(KindMove) // must be the final operation before return
	return status.OK
}

// UngetWriteBuffer rolls back the most recent write buffer acquisition.
// For producers that populate a block directly through Pool and fail partway.
func (p *Planner) UngetWriteBuffer() {
	p.pool.UngetWriteBuffer()
	if p.met != nil {
		p.met.Ungets.Inc()
	}
	p.updateAvailableGauge()
}

// ExecMove dequeues the run buffer and dispatches on its kind. Called by the
// execution context; returns Noop when nothing is queued, Again when the
// current block has more work, OK when a block completed.
func (p *Planner) ExecMove() status.Code {
	if p.met != nil {
		p.met.ExecCalls.Inc()
	}

	b := p.pool.GetRunBuffer()
	if b == nil {
		return status.Noop
	}

	p.rt.line = b.line

	switch b.Kind() {
	case KindMove:
		return p.execMove(b)
	case KindDwell:
		return p.runDwell(b)
	case KindCommand:
		return p.runCommand(b)
	}

	return p.hardAlarm(status.InternalError)
}

// runCommand invokes the stored command callback with the stored vectors,
// then frees the run buffer.
func (p *Planner) runCommand(b *Block) status.Code {
	if b.Command.Exec != nil {
		b.Command.Exec(b.Command.Values, b.Command.Flags)
	}

	p.freeRunBuffer()
	return status.OK
}

// runDwell hands the dwell duration to the stepper timer, then frees the
// run buffer. The stepper layer owns the timing.
func (p *Planner) runDwell(b *Block) status.Code {
	p.stepper.PrepDwell(uint32(b.Dwell.Seconds * 1000000))
	if p.met != nil {
		p.met.Dwells.Inc()
	}

	p.freeRunBuffer()
	return status.OK
}

// Flush unconditionally resets the pool, discarding all queued and pending
// work. A block already executing at the hardware layer is not affected;
// the motion state is forced to stopped through the machine collaborator.
// Position vectors are not touched.
func (p *Planner) Flush() {
	p.machine.AbortArc()
	p.pool.Init()
	p.ex = execState{}
	p.rt.busy = false
	p.machine.SetMotionStopped()

	if p.met != nil {
		p.met.Flushes.Inc()
	}
	p.updateAvailableGauge()

	if p.logger != nil {
		p.logger.Info("planner queue flushed")
	}
}

// commit publishes the populated write buffer and records metrics. After
// this call the block belongs to the consumer.
func (p *Planner) commit(kind BlockKind) {
	if p.met != nil {
		p.met.Commits.Inc()
	}
	p.pool.CommitWriteBuffer(kind)
	p.updateAvailableGauge()
}

// freeRunBuffer returns the run buffer to the pool and signals cycle end if
// the queue drained.
func (p *Planner) freeRunBuffer() {
	empty := p.pool.FreeRunBuffer()

	if p.met != nil {
		p.met.Frees.Inc()
	}
	p.updateAvailableGauge()

	if empty {
		if p.met != nil {
			p.met.CycleEnds.Inc()
		}
		p.machine.CycleEnd()
	}
}

// hardAlarm raises a fatal alarm through the machine collaborator.
func (p *Planner) hardAlarm(code status.Code) status.Code {
	if p.met != nil {
		p.met.Alarms.Inc()
	}
	if p.logger != nil {
		p.logger.Error("fatal alarm", log.Fields{"code": string(code)})
	}
	p.machine.HardAlarm(code)
	return code
}

func (p *Planner) updateAvailableGauge() {
	if p.met != nil {
		p.met.BuffersAvailable.Set(float64(p.pool.BuffersAvailable()))
	}
}
