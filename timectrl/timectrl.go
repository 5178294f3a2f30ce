package timectrl

import (
	"context"
	"sync"
	"time"
)

// SimClock is the read side of simulation time. Components that only need
// the current time or a sim-time timer depend on this rather than on the
// controller.
type SimClock interface {
	Now() time.Time
	// After fires once simulation time has advanced by at least d.
	After(d time.Duration) <-chan time.Time
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances one Tick per wall-clock Tick.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still stepping by Tick.
	Accelerated
)

// ModeFor returns Accelerated when accelerated is set.
func ModeFor(accelerated bool) Mode {
	if accelerated {
		return Accelerated
	}
	return RealTime
}

type timer struct {
	deadline time.Time
	ch       chan time.Time
}

// TimeController drives simulation time and notifies registered listeners
// after each tick. It implements SimClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	listeners   []func(time.Time)
	timers      []timer
}

// NewTimeController constructs a controller positioned at start.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime jumps simulation time to t without notifying listeners. Pending
// timers whose deadline has passed fire.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	tc.currentTime = t
	due := tc.dueTimersLocked()
	tc.mu.Unlock()
	fire(due, t)
}

// After returns a channel that receives the simulation time once it has
// advanced by at least d. Non-positive d fires immediately.
func (tc *TimeController) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)

	tc.mu.Lock()
	defer tc.mu.Unlock()
	now := tc.currentTime
	if d <= 0 {
		ch <- now
		return ch
	}
	tc.timers = append(tc.timers, timer{deadline: now.Add(d), ch: ch})
	return ch
}

// AddListener registers a callback invoked with the new simulation time
// after every tick.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Advance moves simulation time forward by one Tick and notifies listeners
// synchronously.
func (tc *TimeController) Advance() time.Time {
	tc.mu.Lock()
	tc.currentTime = tc.currentTime.Add(tc.Tick)
	now := tc.currentTime
	listeners := append([]func(time.Time){}, tc.listeners...)
	due := tc.dueTimersLocked()
	tc.mu.Unlock()

	for _, fn := range listeners {
		fn(now)
	}
	fire(due, now)
	return now
}

func (tc *TimeController) dueTimersLocked() []timer {
	var due []timer
	pending := tc.timers[:0]
	for _, t := range tc.timers {
		if !tc.currentTime.Before(t.deadline) {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	tc.timers = pending
	return due
}

func fire(due []timer, now time.Time) {
	for _, t := range due {
		t.ch <- now
	}
}

// Run advances time until ctx is done or, when duration is positive, until
// that much simulation time has elapsed since StartTime.
func (tc *TimeController) Run(ctx context.Context, duration time.Duration) error {
	tc.mu.Lock()
	tc.currentTime = tc.StartTime
	tc.mu.Unlock()

	var tick <-chan time.Time
	if tc.Mode == RealTime {
		ticker := time.NewTicker(tc.Tick)
		defer ticker.Stop()
		tick = ticker.C
	}

	elapsed := time.Duration(0)
	for {
		if duration > 0 && elapsed >= duration {
			return nil
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		tc.Advance()
		elapsed += tc.Tick
	}
}

// Start runs the controller for duration in a separate goroutine. The
// returned channel is closed when it finishes.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	return tc.StartContext(context.Background(), duration)
}

// StartContext is Start with cancellation.
func (tc *TimeController) StartContext(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = tc.Run(ctx, duration)
	}()
	return done
}
