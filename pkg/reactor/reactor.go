// Package reactor provides a timer-driven dispatch loop for the execution
// context. Timers fire callbacks on the reactor goroutine; other goroutines
// may queue async callbacks. Times are float64 seconds on a monotonic clock.
package reactor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Clock sentinels
const (
	NOW   = 0.0
	NEVER = 9999999999999999.0
)

// TimerCallback is called when a timer fires. It receives the event time and
// returns the next wake time; return NEVER to idle the timer.
type TimerCallback func(eventtime float64) float64

// Timer represents a registered timer.
type Timer struct {
	id       uint64
	callback TimerCallback
	waketime float64
	firing   bool
	mu       sync.Mutex
}

// Waketime returns the timer's current wake time.
func (t *Timer) Waketime() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.waketime
}

// Reactor manages timers and async callbacks for one dispatch goroutine.
type Reactor struct {
	mu          sync.Mutex
	timers      []*Timer
	nextTimerID uint64
	nextWake    float64

	asyncQueue chan func()

	ctx    context.Context
	cancel context.CancelFunc

	running   atomic.Bool
	wg        sync.WaitGroup
	startTime time.Time
}

// New creates a new Reactor.
func New() *Reactor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Reactor{
		nextWake:   NEVER,
		asyncQueue: make(chan func(), 256),
		ctx:        ctx,
		cancel:     cancel,
		startTime:  time.Now(),
	}
}

// Monotonic returns the current monotonic time in seconds.
func (r *Reactor) Monotonic() float64 {
	return time.Since(r.startTime).Seconds()
}

// RegisterTimer registers a timer with the given callback and wake time.
func (r *Reactor) RegisterTimer(callback TimerCallback, waketime float64) *Timer {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &Timer{
		id:       atomic.AddUint64(&r.nextTimerID, 1),
		callback: callback,
		waketime: waketime,
	}
	r.timers = append(r.timers, t)
	if waketime < r.nextWake {
		r.nextWake = waketime
	}
	return t
}

// UnregisterTimer removes a timer.
func (r *Reactor) UnregisterTimer(timer *Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timer.mu.Lock()
	timer.waketime = NEVER
	timer.mu.Unlock()

	for i, t := range r.timers {
		if t.id == timer.id {
			r.timers = append(r.timers[:i], r.timers[i+1:]...)
			break
		}
	}
}

// UpdateTimer updates a timer's wake time. A timer currently firing keeps
// the wake time its callback returns.
func (r *Reactor) UpdateTimer(timer *Timer, waketime float64) {
	timer.mu.Lock()
	if timer.firing {
		timer.mu.Unlock()
		return
	}
	timer.waketime = waketime
	timer.mu.Unlock()

	r.mu.Lock()
	if waketime < r.nextWake {
		r.nextWake = waketime
	}
	r.mu.Unlock()
}

// RunAsync queues a function to run on the reactor goroutine. Safe from any
// goroutine; drops the call if the reactor is shutting down.
func (r *Reactor) RunAsync(fn func()) {
	select {
	case r.asyncQueue <- fn:
	case <-r.ctx.Done():
	}
}

// Pause sleeps until the given wake time or shutdown. Returns the time on
// wake. Callable from any goroutine.
func (r *Reactor) Pause(waketime float64) float64 {
	now := r.Monotonic()
	if waketime <= now {
		return now
	}
	if waketime >= NEVER {
		<-r.ctx.Done()
		return r.Monotonic()
	}

	select {
	case <-time.After(time.Duration((waketime - now) * float64(time.Second))):
	case <-r.ctx.Done():
	}
	return r.Monotonic()
}

// Run starts the dispatch loop on its own goroutine.
func (r *Reactor) Run() {
	if r.running.Swap(true) {
		return // already running
	}
	r.wg.Add(1)
	go r.dispatchLoop()
}

// End signals the reactor to stop.
func (r *Reactor) End() {
	r.running.Store(false)
	r.cancel()
}

// Wait blocks until the dispatch loop exits.
func (r *Reactor) Wait() {
	r.wg.Wait()
}

func (r *Reactor) dispatchLoop() {
	defer r.wg.Done()

	for r.running.Load() {
		r.processAsync()

		timeout := r.checkTimers(r.Monotonic())
		if timeout <= 0 {
			continue
		}

		delay := time.Duration(timeout * float64(time.Second))
		if delay > time.Second {
			delay = time.Second
		}

		select {
		case <-time.After(delay):
		case fn := <-r.asyncQueue:
			fn()
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Reactor) processAsync() {
	for {
		select {
		case fn := <-r.asyncQueue:
			fn()
		default:
			return
		}
	}
}

// checkTimers fires due timers and returns the delay until the next one.
func (r *Reactor) checkTimers(eventtime float64) float64 {
	r.mu.Lock()
	if eventtime < r.nextWake {
		delay := r.nextWake - eventtime
		r.mu.Unlock()
		return delay
	}

	timers := make([]*Timer, len(r.timers))
	copy(timers, r.timers)
	r.nextWake = NEVER
	r.mu.Unlock()

	next := NEVER
	for _, t := range timers {
		t.mu.Lock()
		if eventtime >= t.waketime {
			t.waketime = NEVER
			t.firing = true
			t.mu.Unlock()

			waketime := t.callback(eventtime)

			t.mu.Lock()
			t.firing = false
			if waketime < t.waketime {
				t.waketime = waketime
			}
		}
		if t.waketime < next {
			next = t.waketime
		}
		t.mu.Unlock()
	}

	r.mu.Lock()
	if next < r.nextWake {
		r.nextWake = next
	}
	delay := r.nextWake - eventtime
	r.mu.Unlock()

	if delay < 0 {
		delay = 0
	}
	return delay
}
