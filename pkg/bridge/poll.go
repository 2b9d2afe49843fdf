package bridge

import (
	"context"
	"errors"
	"time"
)

// Probe is evaluated on every poll tick. It returns the value and true once
// the condition is met; an error stops the poll.
type Probe[T any] func(ctx context.Context) (T, bool, error)

type probeResult[T any] struct {
	v   T
	ok  bool
	err error
}

// PollUntil evaluates probe immediately and then once per interval until it
// reports a match, the probe fails, ctx ends, or timeout elapses. A zero
// timeout polls until ctx ends. Waiting between ticks yields to the
// scheduler; nothing spins.
//
// The timeout bounds the whole call, including a tick that is still running:
// the probe's ctx carries the deadline, and a probe that ignores it is
// abandoned once the deadline passes.
//
// On timeout it returns the zero T and a *TimeoutError named after op. The
// describe func, if non-nil, supplies the TimeoutError's Last field.
func PollUntil[T any](ctx context.Context, op string, interval, timeout time.Duration, probe Probe[T], describe func() string) (T, error) {
	var zero T
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	pctx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// expired reports whether pctx ended on its own deadline rather than
	// through the caller's ctx.
	expired := func() bool {
		return timeout > 0 && ctx.Err() == nil && errors.Is(pctx.Err(), context.DeadlineExceeded)
	}

	timedOut := func() error {
		te := &TimeoutError{Op: op, Timeout: timeout}
		if describe != nil {
			te.Last = describe()
		}
		return te
	}

	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if expired() {
			return zero, timedOut()
		}

		done := make(chan probeResult[T], 1)
		go func() {
			v, ok, err := probe(pctx)
			done <- probeResult[T]{v: v, ok: ok, err: err}
		}()

		select {
		case <-pctx.Done():
			if expired() {
				return zero, timedOut()
			}
			return zero, ctx.Err()
		case r := <-done:
			if r.err != nil {
				if expired() {
					return zero, timedOut()
				}
				return zero, r.err
			}
			if r.ok {
				return r.v, nil
			}
		}

		select {
		case <-pctx.Done():
			if expired() {
				return zero, timedOut()
			}
			return zero, ctx.Err()
		case <-ticker.C:
		}
	}
}
