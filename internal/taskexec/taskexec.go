package taskexec

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	// ErrStillRunning is returned by Outcome while the task has not finished.
	ErrStillRunning = errors.New("task still running")
	// ErrOutcomeConsumed is returned by Outcome after the result was already taken.
	ErrOutcomeConsumed = errors.New("task outcome already consumed")
)

// Fn is the unit of work a Handle runs. The executor does not know or care
// what it does; it only isolates the call on its own goroutine and delivers
// its outcome exactly once.
type Fn func() (string, error)

type outcome struct {
	value string
	err   error
}

// Handle tracks one background task. There is no cancellation: once started,
// the task always runs to completion.
type Handle struct {
	running atomic.Bool
	result  chan outcome
}

// Start launches fn on a dedicated goroutine and returns immediately.
func Start(fn Fn) *Handle {
	h := &Handle{result: make(chan outcome, 1)}
	h.running.Store(true)
	go func() {
		v, err := run(fn)
		// The outcome must be in the channel before the running flag
		// clears, so IsRunning()==false implies Outcome() can read it.
		h.result <- outcome{value: v, err: err}
		h.running.Store(false)
	}()
	return h
}

func run(fn Fn) (v string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task panicked: %v", rec)
		}
	}()
	return fn()
}

// IsRunning reports whether the task is still executing. Non-blocking and
// safe to poll repeatedly.
func (h *Handle) IsRunning() bool {
	return h.running.Load()
}

// Outcome delivers the task result exactly once. It fails with
// ErrStillRunning while the task runs and ErrOutcomeConsumed on a second
// call. A task error is returned as-is, not rewrapped.
func (h *Handle) Outcome() (string, error) {
	if h.IsRunning() {
		return "", ErrStillRunning
	}
	select {
	case o := <-h.result:
		return o.value, o.err
	default:
		return "", ErrOutcomeConsumed
	}
}

// Await polls IsRunning at the given interval until the task completes, then
// consumes the outcome. onTick, if non-nil, is invoked with the tick count on
// each poll so callers can drive progress feedback. Cancelling ctx abandons
// the wait but does not stop the underlying task.
func (h *Handle) Await(ctx context.Context, interval time.Duration, onTick func(int)) (string, error) {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := 0
	for h.IsRunning() {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			tick++
			if onTick != nil {
				onTick(tick)
			}
		}
	}
	return h.Outcome()
}
