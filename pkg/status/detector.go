package status

import (
	"context"
	"sync"
	"time"

	"github.com/entrhq/wppgo/pkg/bridge"
	"github.com/entrhq/wppgo/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("status")
	if err != nil {
		debugLog.Warnf("Failed to initialize status logger, using stderr fallback: %v", err)
	}
}

// Detector classifies the connection phase of one session by polling.
type Detector struct {
	inv         bridge.Invoker
	interval    time.Duration
	classifiers []Classifier
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithPollInterval sets the delay between ticks (default 100ms).
func WithPollInterval(d time.Duration) DetectorOption {
	return func(det *Detector) {
		if d > 0 {
			det.interval = d
		}
	}
}

// WithClassifiers replaces the ordered classifier list.
func WithClassifiers(cs ...Classifier) DetectorOption {
	return func(det *Detector) {
		det.classifiers = cs
	}
}

// NewDetector returns a detector reading through inv.
func NewDetector(inv bridge.Invoker, opts ...DetectorOption) *Detector {
	d := &Detector{
		inv:         inv,
		interval:    bridge.DefaultPollInterval,
		classifiers: DefaultClassifiers,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectOptions bounds a Detect call.
type DetectOptions struct {
	// Timeout ends detection with a *bridge.TimeoutError. Zero polls until ctx ends.
	Timeout time.Duration
}

// Snapshot reads the current signals once.
func (d *Detector) Snapshot(ctx context.Context) (Signals, error) {
	return bridge.Call[Signals](ctx, d.inv, signalsOp, nil)
}

// Detect polls until the page classifies into a phase.
//
// It returns PhaseUnknown with a *bridge.TimeoutError when opts.Timeout
// elapses, PhaseUnknown with ctx.Err() when ctx ends, and PhaseUnknown with a
// *bridge.DispatchError when the page is unreachable. In-page failures on a
// live page (a navigation tearing down the context, say) count as an
// undetermined tick.
func (d *Detector) Detect(ctx context.Context, opts DetectOptions) (Phase, error) {
	// A tick cut off by the timeout may still finish after Detect returns.
	var (
		mu    sync.Mutex
		last  string
		ticks int
	)
	setLast := func(v string) {
		mu.Lock()
		last = v
		mu.Unlock()
	}

	tick := func(ctx context.Context) (Phase, bool, error) {
		mu.Lock()
		ticks++
		n := ticks
		mu.Unlock()

		s, err := d.Snapshot(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return PhaseUnknown, false, ctx.Err()
			}
			if bridge.IsUnreachable(err) {
				return PhaseUnknown, false, err
			}
			debugLog.Debugf("detect tick %d: snapshot failed: %v", n, err)
			setLast(err.Error())
			return PhaseUnknown, false, nil
		}

		setLast(s.String())

		phase, ok := Classify(s, d.classifiers)
		if ok {
			debugLog.Debugf("detect tick %d: %s -> %s", n, s, phase)
		}
		return phase, ok, nil
	}

	describe := func() string {
		mu.Lock()
		defer mu.Unlock()
		return last
	}

	phase, err := bridge.PollUntil(ctx, "detect phase", d.interval, opts.Timeout, tick, describe)
	if err != nil {
		return PhaseUnknown, err
	}
	return phase, nil
}

// Watch calls onChange with every newly determined phase until ctx ends or
// the page becomes unreachable. It returns ctx.Err() or the dispatch error.
// Undetermined ticks do not reset the last reported phase.
func (d *Detector) Watch(ctx context.Context, onChange func(Phase)) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	current := PhaseUnknown
	for {
		s, err := d.Snapshot(ctx)
		switch {
		case err == nil:
			if phase, ok := Classify(s, d.classifiers); ok && phase != current {
				debugLog.Infof("phase %s -> %s", current, phase)
				current = phase
				onChange(phase)
			}
		case ctx.Err() != nil:
			return ctx.Err()
		case bridge.IsUnreachable(err):
			return err
		default:
			debugLog.Debugf("watch snapshot failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DetectPhase is Detect with the default detector.
func DetectPhase(ctx context.Context, inv bridge.Invoker, opts DetectOptions) (Phase, error) {
	return NewDetector(inv).Detect(ctx, opts)
}
