package bridge

import (
	"context"
	"time"
)

// Page is the automation capability the bridge drives. It is bound to one
// browser page for its lifetime and owns no state the bridge relies on.
//
// Implementations must return an error wrapping ErrPageClosed once the page
// is gone, and a *PageError when the script itself threw inside the page.
// Any other error is treated as the page being unreachable.
type Page interface {
	// Evaluate runs script (a function expression) in the page with arg as
	// its single argument and returns the awaited, JSON-compatible result.
	Evaluate(ctx context.Context, script string, arg any) (any, error)

	// WaitForPredicate re-runs script every opts.Interval until it returns a
	// truthy value, which is returned. A zero opts.Timeout waits forever;
	// an elapsed timeout returns an error wrapping ErrTimeout.
	WaitForPredicate(ctx context.Context, script string, arg any, opts WaitOptions) (any, error)
}

// WaitOptions configures predicate polling.
type WaitOptions struct {
	// Interval between predicate evaluations. Zero means DefaultPollInterval.
	Interval time.Duration

	// Timeout for the whole wait. Zero waits indefinitely.
	Timeout time.Duration
}

// DefaultPollInterval is the tick used by polls that do not specify one.
const DefaultPollInterval = 100 * time.Millisecond

func (o WaitOptions) interval() time.Duration {
	if o.Interval <= 0 {
		return DefaultPollInterval
	}
	return o.Interval
}
