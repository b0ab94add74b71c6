// Planner buffer pool
//
// Blocks live in a fixed-capacity ring managed by three cursors. New blocks
// are populated by (1) getting a write buffer, (2) filling it in, then
// (3) committing it to the queue. If population fails partway the write
// buffer can be ungotten, returning it to the pool.
//
// The run buffer is the block currently executing. It may be retrieved once
// for simple commands, or many times for long-running continuations. When the
// work is complete the run buffer is returned to the pool by freeing it.
//
// There is no lock. The producer only advances the write and queued cursors
// and only touches blocks whose state it owns (Empty at the write cursor,
// Loading before commit); the consumer only advances the run cursor and only
// touches the block at it. Block state fields are atomic so a commit
// publishes the payload to the consumer context.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package planner

import "sync/atomic"

// DefaultPoolSize is the ring capacity used when the configuration does not
// override it.
const DefaultPoolSize = 32

// Pool is the fixed-capacity ring of blocks shared by the producer and
// consumer execution contexts.
type Pool struct {
	blocks []Block

	write  atomic.Int32 // next block eligible for population (producer)
	queued atomic.Int32 // oldest not-yet-committed populated block (producer)
	run    atomic.Int32 // block currently or next to be executed (consumer)

	available atomic.Int32

	// notify requests an execution attempt after every commit. It may run
	// the consumer synchronously; see CommitWriteBuffer.
	notify func()
}

// NewPool creates a pool of the given capacity. The notify callback is
// invoked after every commit to request an execution attempt; it may be nil.
func NewPool(capacity int, notify func()) *Pool {
	if capacity < 1 {
		capacity = DefaultPoolSize
	}
	p := &Pool{
		blocks: make([]Block, capacity),
		notify: notify,
	}
	p.Init()
	return p
}

// Init resets every block to Empty, forms the fixed ring links and rewinds
// all cursors to block zero. Also used by Flush to discard queued work.
func (p *Pool) Init() {
	n := len(p.blocks)
	for i := range p.blocks {
		b := &p.blocks[i]
		b.clear()
		b.state.Store(int32(StateEmpty))
		b.next = (i + 1) % n
		b.prev = (i - 1 + n) % n
	}
	p.write.Store(0)
	p.queued.Store(0)
	p.run.Store(0)
	p.available.Store(int32(n))
}

// Capacity returns the number of blocks in the ring.
func (p *Pool) Capacity() int {
	return len(p.blocks)
}

// BuffersAvailable returns the number of Empty blocks. O(1); the counter is
// maintained, not derived.
func (p *Pool) BuffersAvailable() int {
	return int(p.available.Load())
}

// GetWriteBuffer returns the next block for population, or nil if the block
// at the write cursor is not Empty (pool exhausted). The block's payload is
// cleared, its state becomes Loading, and the write cursor advances.
func (p *Pool) GetWriteBuffer() *Block {
	b := &p.blocks[p.write.Load()]
	if b.State() != StateEmpty {
		return nil
	}

	b.clear()
	b.state.Store(int32(StateLoading))
	p.available.Add(-1)
	p.write.Store(int32(b.next))

	return b
}

// UngetWriteBuffer rolls back the most recent GetWriteBuffer. Valid only
// between a get and its matching commit, when population fails partway.
func (p *Pool) UngetWriteBuffer() {
	prev := p.blocks[p.write.Load()].prev
	p.write.Store(int32(prev))
	p.blocks[prev].state.Store(int32(StateEmpty)) // not loading anymore
	p.available.Add(1)
}

// CommitWriteBuffer places the oldest populated block in the queue with the
// given kind and requests an execution attempt.
//
// WARNING: the caller must not read or write the committed block once this
// is called. The notification may run the consumer synchronously, so the
// block may be executed and freed (wiped) before this function returns.
func (p *Pool) CommitWriteBuffer(kind BlockKind) {
	q := &p.blocks[p.queued.Load()]
	q.kind = kind
	p.queued.Store(int32(q.next))
	q.state.Store(int32(StateQueued))

	if p.notify != nil {
		p.notify()
	}
}

// GetRunBuffer returns the block at the run cursor, promoting it to Running
// if it was Queued or Pending. Calling again before FreeRunBuffer returns the
// same block, still Running; this is what makes continuation re-entry safe.
// Returns nil if no block is ready (queue empty).
func (p *Pool) GetRunBuffer() *Block {
	b := &p.blocks[p.run.Load()]

	switch b.State() {
	case StateQueued, StatePending:
		b.state.Store(int32(StateRunning))
		return b
	case StateRunning:
		return b
	}

	return nil
}

// FreeRunBuffer clears the block at the run cursor back to Empty and advances
// the cursor. If the new run block is already Queued it is promoted to
// Pending, marking it ready without waiting for further commits. Returns true
// iff the queue is now fully empty (write == run).
func (p *Pool) FreeRunBuffer() bool {
	b := &p.blocks[p.run.Load()]
	b.clear()
	b.state.Store(int32(StateEmpty))
	p.run.Store(int32(b.next))

	nb := &p.blocks[b.next]
	if nb.State() == StateQueued {
		nb.state.Store(int32(StatePending))
	}

	p.available.Add(1)

	return p.write.Load() == p.run.Load()
}

// countActive sums blocks in the Loading, Queued, Pending or Running states.
// Used by invariant checks in tests.
func (p *Pool) countActive() int {
	n := 0
	for i := range p.blocks {
		switch p.blocks[i].State() {
		case StateLoading, StateQueued, StatePending, StateRunning:
			n++
		}
	}
	return n
}
