// Package poll implements the client-side completion wait as an explicit
// cancellable task with a configurable interval, attempt cap and backoff,
// replacing ad-hoc sleep loops.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when the attempt budget is exhausted. The job may
// still be running on the provider side; giving up here only stops watching.
var ErrTimeout = errors.New("poll: attempts exhausted")

// CheckFunc inspects the job once. done=true stops the poller and returns
// err (nil for success). A non-nil err with done=false is treated as
// transient and retried.
type CheckFunc func(ctx context.Context) (done bool, err error)

// Poller runs a CheckFunc at a fixed interval until it reports done, the
// context is cancelled, or MaxAttempts is reached.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
	// Backoff multiplies the interval after each attempt. <= 1 keeps the
	// interval fixed.
	Backoff float64
}

// Wait drives the polling loop. The first check runs immediately.
func (p Poller) Wait(ctx context.Context, check CheckFunc) error {
	interval := p.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 100
	}

	for i := 0; i < attempts; i++ {
		done, err := check(ctx)
		if done {
			return err
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if p.Backoff > 1 {
			interval = time.Duration(float64(interval) * p.Backoff)
		}
	}
	return ErrTimeout
}
