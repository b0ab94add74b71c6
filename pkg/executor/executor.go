// Real-time execution context for the planner queue
//
// The original firmware ran the consumer inside a low-priority interrupt, so
// a commit could preempt the producer and free the committed block before the
// commit returned. Here the consumer is a dedicated goroutine signaled
// through a channel: RequestExecMove wakes it, and it drains the queue by
// invoking planner.ExecMove until the queue reports empty, honoring the
// Again continuation status by re-invoking immediately. The producer-facing
// ordering guarantee is unchanged: a committed block must be treated as gone
// the instant commit returns.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package executor

import (
	"sync"

	"github.com/leadgtr7/bbctrl-firmware/pkg/log"
	"github.com/leadgtr7/bbctrl-firmware/pkg/planner"
	"github.com/leadgtr7/bbctrl-firmware/pkg/reactor"
	"github.com/leadgtr7/bbctrl-firmware/pkg/rt"
	"github.com/leadgtr7/bbctrl-firmware/pkg/status"
)

// SegmentSink is the pulse-generator backend segments and dwells land in.
type SegmentSink interface {
	// Segment consumes one prepared motion segment.
	Segment(seg planner.Segment) error

	// Dwell holds motion for the given number of microseconds. The sink
	// owns the timing; Executor additionally pauses its own dequeue loop
	// for the same interval.
	Dwell(usec uint32)
}

// Executor runs the consumer context. It implements planner.Stepper.
type Executor struct {
	mu      sync.Mutex
	planner *planner.Planner

	reactor *reactor.Reactor
	sink    SegmentSink
	logger  *log.Logger

	wake chan struct{}
	quit chan struct{}
	wg   sync.WaitGroup

	// holdUntil delays the next dequeue past a dwell. Only the executor
	// goroutine touches it: PrepDwell is invoked from within ExecMove.
	holdUntil float64
}

// New creates an executor over the given reactor and segment sink.
// Attach the planner before Start.
func New(r *reactor.Reactor, sink SegmentSink, logger *log.Logger) *Executor {
	return &Executor{
		reactor: r,
		sink:    sink,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
}

// Attach binds the planner whose queue this executor drains. The planner and
// executor reference each other, so construction is two-phase.
func (e *Executor) Attach(p *planner.Planner) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.planner = p
}

// Start launches the consumer goroutine.
func (e *Executor) Start() {
	e.wg.Add(1)
	go e.run()
}

// StartRealtime launches the consumer goroutine pinned to an OS thread with
// SCHED_FIFO scheduling. Falls back to normal scheduling with a warning if
// the process lacks the privilege.
func (e *Executor) StartRealtime(priority int) {
	e.wg.Add(1)
	go func() {
		if err := rt.LockThread(priority); err != nil && e.logger != nil {
			e.logger.Warn("real-time scheduling unavailable", log.Fields{"err": err})
		}
		e.run()
	}()
}

// Stop terminates the consumer goroutine and waits for it to exit.
func (e *Executor) Stop() {
	close(e.quit)
	e.wg.Wait()
}

// RequestExecMove wakes the consumer. Fire and forget: a wakeup is already
// pending when the channel is full, so the signal coalesces.
func (e *Executor) RequestExecMove() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// PrepDwell holds the dequeue loop for the given interval and forwards the
// dwell to the sink.
func (e *Executor) PrepDwell(usec uint32) {
	e.holdUntil = e.reactor.Monotonic() + float64(usec)/1e6
	e.sink.Dwell(usec)
}

// PrepSegment forwards a prepared segment to the sink.
func (e *Executor) PrepSegment(seg planner.Segment) error {
	return e.sink.Segment(seg)
}

func (e *Executor) run() {
	defer e.wg.Done()

	for {
		select {
		case <-e.quit:
			return
		case <-e.wake:
		}
		e.drain()
	}
}

// drain executes queued blocks until the queue reports empty or a fatal
// status stops the cycle.
func (e *Executor) drain() {
	for {
		select {
		case <-e.quit:
			return
		default:
		}

		if hold := e.holdUntil; hold > e.reactor.Monotonic() {
			e.reactor.Pause(hold)
		}

		p := e.attached()
		if p == nil {
			return
		}

		switch code := p.ExecMove(); code {
		case status.OK, status.Again:
			// More work may follow immediately.
		case status.Noop:
			return
		default:
			if e.logger != nil {
				e.logger.Error("execution stopped", log.Fields{"code": string(code)})
			}
			return
		}
	}
}

func (e *Executor) attached() *planner.Planner {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.planner
}
