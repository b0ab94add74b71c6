// Planner block definitions
//
// A block is one queued unit of work: a move, a dwell, or a command that must
// execute synchronously with motion. Blocks are recycled through the buffer
// pool and never allocated individually.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package planner

import (
	"sync/atomic"

	"github.com/leadgtr7/bbctrl-firmware/pkg/axis"
)

// BlockKind is the tagged-variant discriminator for a block's payload.
type BlockKind int32

const (
	KindNone BlockKind = iota
	KindMove
	KindDwell
	KindCommand
)

func (k BlockKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindMove:
		return "move"
	case KindDwell:
		return "dwell"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// BlockState is a block's lifecycle tag. Transitions are unidirectional:
// Empty -> Loading -> Queued -> (Pending ->) Running -> Empty. Loading may
// revert directly to Empty only through UngetWriteBuffer.
type BlockState int32

const (
	StateEmpty BlockState = iota
	StateLoading
	StateQueued
	StatePending
	StateRunning
)

func (s BlockState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateQueued:
		return "queued"
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// CommandFunc is a machine-state side effect synchronized to the motion
// sequence, e.g. a spindle speed change. It receives the value and flag
// vectors captured when the command was queued.
type CommandFunc func(values, flags [axis.Axes]float64)

// MovePayload carries the per-block trajectory data computed by the upstream
// planner. This core only transports it; velocity blending happens elsewhere.
type MovePayload struct {
	Target [axis.Axes]float64 // final target position
	Unit   [axis.Axes]float64 // unit direction vector
	Length float64            // total travel distance

	EntryVelocity  float64
	CruiseVelocity float64
	ExitVelocity   float64

	HeadLength float64
	BodyLength float64
	TailLength float64

	MoveTime float64 // total move time in seconds
}

// DwellPayload holds a dwell's duration in seconds.
type DwellPayload struct {
	Seconds float64
}

// CommandPayload holds a stored command callback plus by-value copies of the
// caller's value and flag vectors. The caller's arrays may be freely mutated
// after queueing without affecting the stored copies.
type CommandPayload struct {
	Exec   CommandFunc
	Values [axis.Axes]float64
	Flags  [axis.Axes]float64
}

// Block is one slot in the buffer pool ring. The prev/next links are fixed at
// pool construction; only state, kind and payload vary afterwards.
//
// The state field is the producer/consumer synchronization point: the
// producer publishes a block by storing StateQueued after the payload is
// written, and the consumer acquires it by loading the state before reading
// the payload.
type Block struct {
	state atomic.Int32

	kind BlockKind
	line int32 // source line for status reporting

	prev, next int

	Move    MovePayload
	Dwell   DwellPayload
	Command CommandPayload
}

// State returns the block's lifecycle state.
func (b *Block) State() BlockState {
	return BlockState(b.state.Load())
}

// Kind returns the block's payload kind. Valid once the block is committed.
func (b *Block) Kind() BlockKind {
	return b.kind
}

// Line returns the source line recorded for the block.
func (b *Block) Line() int32 {
	return b.line
}

// SetLine records the source line for the block. Producer side, before commit.
func (b *Block) SetLine(line int32) {
	b.line = line
}

// clear resets kind, line and payload. Ring links and state are preserved.
func (b *Block) clear() {
	b.kind = KindNone
	b.line = 0
	b.Move = MovePayload{}
	b.Dwell = DwellPayload{}
	b.Command = CommandPayload{}
}
