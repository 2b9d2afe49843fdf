// Package bridgetest provides a simulated Page for exercising the bridge and
// the packages built on it without a browser.
//
// The simulated page answers the same JSON envelope the real in-page wrapper
// produces. Instead of running JavaScript it routes each call to a Go handler
// registered under the operation's name.
package bridgetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/wppgo/pkg/bridge"
)

// Handler plays the part of an in-page function. args holds the decoded
// JSON arguments. Returning an error simulates a throw; return a
// *bridge.PageError to control the thrown name and stack.
type Handler func(args map[string]any) (any, error)

// Page is a simulated bridge.Page. The zero value is not usable; call New.
type Page struct {
	mu        sync.Mutex
	handlers  map[string]Handler
	apiLoaded bool
	closed    bool
	calls     []Call
}

// Call records one dispatch observed by the page.
type Call struct {
	Op   string
	Args map[string]any
}

// New returns an open page with the in-page API loaded.
func New() *Page {
	return &Page{
		handlers:  make(map[string]Handler),
		apiLoaded: true,
	}
}

// Handle registers h for the operation named op.
func (p *Page) Handle(op string, h Handler) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[op] = h
	return p
}

// Return registers a handler that always returns v.
func (p *Page) Return(op string, v any) *Page {
	return p.Handle(op, func(map[string]any) (any, error) { return v, nil })
}

// Sequence registers a handler returning values in order, repeating the last
// one once the list is exhausted.
func (p *Page) Sequence(op string, values ...any) *Page {
	var mu sync.Mutex
	i := 0
	return p.Handle(op, func(map[string]any) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(values) == 0 {
			return nil, nil
		}
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v, nil
	})
}

// Throw registers a handler that throws an error with the given name and message.
func (p *Page) Throw(op, name, message string) *Page {
	return p.Handle(op, func(map[string]any) (any, error) {
		return nil, &bridge.PageError{Name: name, Message: message, Stack: name + ": " + message + "\n    at <anonymous>"}
	})
}

// SetAPILoaded toggles whether window.WPP exists.
func (p *Page) SetAPILoaded(loaded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.apiLoaded = loaded
}

// Close simulates the tab going away. Later calls fail with bridge.ErrPageClosed.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Calls returns every dispatch seen so far, in order.
func (p *Page) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns how many times op was dispatched.
func (p *Page) CallCount(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Evaluate implements bridge.Page.
func (p *Page) Evaluate(ctx context.Context, _ string, arg any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env, _, err := p.run(arg)
	if err != nil {
		return nil, err
	}
	return env, nil
}

// WaitForPredicate implements bridge.Page.
func (p *Page) WaitForPredicate(ctx context.Context, _ string, arg any, opts bridge.WaitOptions) (any, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = bridge.DefaultPollInterval
	}
	var deadline <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		env, value, err := p.run(arg)
		if err != nil {
			return nil, err
		}
		if value != nil {
			if truthy(value) {
				return env, nil
			}
		} else {
			var e failure
			_ = json.Unmarshal([]byte(env), &e)
			// a missing API keeps the predicate false; a throw rejects the wait
			if e.Stage != "api" && e.Error != nil {
				return nil, e.Error
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, fmt.Errorf("wait for %v: %w", opName(arg), bridge.ErrTimeout)
		case <-time.After(interval):
		}
	}
}

type success struct {
	OK    bool `json:"ok"`
	Value any  `json:"value"`
}

type failure struct {
	OK    bool              `json:"ok"`
	Stage string            `json:"stage"`
	Error *bridge.PageError `json:"error"`
}

// run imitates the in-page wrapper. It returns the envelope text and, on
// success, a non-nil pointer to the raw handler result.
func (p *Page) run(arg any) (string, *any, error) {
	m, ok := arg.(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("bridgetest: unexpected argument %T", arg)
	}
	op, _ := m["op"].(string)
	standalone, _ := m["standalone"].(bool)
	args, _ := m["args"].(map[string]any)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return "", nil, fmt.Errorf("evaluate %s: %w", op, bridge.ErrPageClosed)
	}
	p.calls = append(p.calls, Call{Op: op, Args: args})
	h, found := p.handlers[op]
	loaded := p.apiLoaded
	p.mu.Unlock()

	if !standalone && !loaded {
		return encode(failure{Stage: "api", Error: &bridge.PageError{Message: "window.WPP is not defined"}}), nil, nil
	}
	if !found {
		return encode(failure{Stage: "call", Error: &bridge.PageError{
			Name:    "TypeError",
			Message: fmt.Sprintf("wpp.%s is not a function", op),
		}}), nil, nil
	}

	value, err := h(args)
	if err != nil {
		pe, ok := err.(*bridge.PageError)
		if !ok {
			pe = &bridge.PageError{Name: "Error", Message: err.Error()}
		}
		return encode(failure{Stage: "call", Error: pe}), nil, nil
	}

	raw, err := json.Marshal(success{OK: true, Value: value})
	if err != nil {
		return encode(failure{Stage: "serialize", Error: &bridge.PageError{
			Name:    "TypeError",
			Message: "Converting circular structure to JSON: " + err.Error(),
		}}), nil, nil
	}
	return string(raw), &value, nil
}

func encode(e failure) string {
	raw, _ := json.Marshal(e)
	return string(raw)
}

func opName(arg any) any {
	if m, ok := arg.(map[string]any); ok {
		return m["op"]
	}
	return "?"
}

// truthy follows JavaScript truthiness for JSON-compatible values.
func truthy(v *any) bool {
	switch x := (*v).(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}
