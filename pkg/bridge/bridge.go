package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/entrhq/wppgo/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("bridge")
	if err != nil {
		debugLog.Warnf("Failed to initialize bridge logger, using stderr fallback: %v", err)
	}
}

// Args maps argument names to JSON-serializable values.
type Args map[string]any

// Invoker executes operations inside a page. *Bridge implements it; feature
// packages accept it so they can be exercised against a simulated page.
type Invoker interface {
	Invoke(ctx context.Context, op Operation, args Args) (json.RawMessage, error)
}

// Waiter blocks until an in-page predicate holds.
type Waiter interface {
	WaitFor(ctx context.Context, op Operation, args Args, opts WaitOptions) (json.RawMessage, error)
}

// Bridge dispatches operations into a single page. It holds no state beyond
// the page reference; concurrent calls race on the page's single execution
// context and callers needing mutual exclusion must serialize them.
type Bridge struct {
	page Page
}

// New returns a bridge bound to page.
func New(page Page) *Bridge {
	return &Bridge{page: page}
}

// Page returns the capability this bridge drives.
func (b *Bridge) Page() Page {
	return b.page
}

// Invoke runs op inside the page with args and returns its JSON result.
// Every failure is a *DispatchError.
func (b *Bridge) Invoke(ctx context.Context, op Operation, args Args) (json.RawMessage, error) {
	plain, err := encodeArgs(args)
	if err != nil {
		return nil, &DispatchError{Op: op.Name, Kind: KindArgument, Err: err}
	}

	p := payload{Op: op.Name, Standalone: op.Standalone, Args: plain}
	result, err := b.page.Evaluate(ctx, invokeScript(op.Source), p.toMap())
	if err != nil {
		debugLog.Debugf("invoke %s failed: %v", op.Name, err)
		return nil, evaluateError(op.Name, err)
	}

	return decodeEnvelope(op.Name, result)
}

// WaitFor re-evaluates op in the page until it returns a truthy value and
// returns that value. An elapsed opts.Timeout yields a *TimeoutError.
func (b *Bridge) WaitFor(ctx context.Context, op Operation, args Args, opts WaitOptions) (json.RawMessage, error) {
	plain, err := encodeArgs(args)
	if err != nil {
		return nil, &DispatchError{Op: op.Name, Kind: KindArgument, Err: err}
	}

	opts.Interval = opts.interval()
	p := payload{Op: op.Name, Standalone: op.Standalone, Args: plain}
	result, err := b.page.WaitForPredicate(ctx, predicateScript(op.Source), p.toMap(), opts)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return nil, &TimeoutError{Op: op.Name, Timeout: opts.Timeout}
		}
		return nil, evaluateError(op.Name, err)
	}

	return decodeEnvelope(op.Name, result)
}

// Call invokes op and decodes the result into T.
func Call[T any](ctx context.Context, inv Invoker, op Operation, args Args) (T, error) {
	var out T
	raw, err := inv.Invoke(ctx, op, args)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &DispatchError{Op: op.Name, Kind: KindDecode, Err: fmt.Errorf("decode %s into %T: %w", raw, out, err)}
	}
	return out, nil
}

// encodeArgs round-trips args through JSON so only plain values cross the
// boundary. Functions, channels and cycles are rejected here.
func encodeArgs(args Args) (map[string]any, error) {
	if len(args) == 0 {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("arguments are not JSON-serializable: %w", err)
	}
	var plain map[string]any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, fmt.Errorf("re-decode arguments: %w", err)
	}
	return plain, nil
}

func evaluateError(op string, err error) error {
	var pe *PageError
	if errors.As(err, &pe) {
		return &DispatchError{Op: op, Kind: KindThrown, Page: pe}
	}
	return &DispatchError{Op: op, Kind: KindUnreachable, Err: err}
}

type envelope struct {
	OK    bool            `json:"ok"`
	Stage string          `json:"stage"`
	Value json.RawMessage `json:"value"`
	Error *PageError      `json:"error"`
}

func decodeEnvelope(op string, result any) (json.RawMessage, error) {
	text, ok := result.(string)
	if !ok {
		return nil, &DispatchError{Op: op, Kind: KindDecode, Err: fmt.Errorf("unexpected result type %T", result)}
	}

	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil, &DispatchError{Op: op, Kind: KindDecode, Err: fmt.Errorf("decode envelope: %w", err)}
	}

	if !env.OK {
		kind := KindThrown
		switch env.Stage {
		case "api":
			kind = KindAPIUnavailable
		case "serialize":
			kind = KindSerialize
		}
		if env.Error == nil {
			env.Error = &PageError{Message: "unknown in-page failure"}
		}
		return nil, &DispatchError{Op: op, Kind: kind, Page: env.Error}
	}

	if len(env.Value) == 0 {
		return json.RawMessage("null"), nil
	}
	return env.Value, nil
}
