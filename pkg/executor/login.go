// Package executor drives a WhatsApp Web session from first load to an open
// chat list. The tui and headless subpackages present the same Login flow
// interactively or as plain log output.
package executor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/entrhq/wppgo/pkg/bridge"
	"github.com/entrhq/wppgo/pkg/logging"
	"github.com/entrhq/wppgo/pkg/pairing"
	"github.com/entrhq/wppgo/pkg/status"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("executor")
	if err != nil {
		debugLog.Warnf("Failed to initialize executor logger, using stderr fallback: %v", err)
	}
}

// Event is emitted by Login.Run as the session progresses.
type Event interface {
	event()
}

// PhaseChanged reports a new connection phase.
type PhaseChanged struct {
	Phase status.Phase
}

// CodeRotated carries a fresh pairing payload and its terminal rendering.
type CodeRotated struct {
	Payload string
	QR      string
}

// Ready reports that the session is connected and the chat list is usable.
type Ready struct {
	Elapsed time.Duration
}

func (PhaseChanged) event() {}
func (CodeRotated) event()  {}
func (Ready) event()        {}

// DefaultCodeInterval is how often the pairing payload is re-read.
const DefaultCodeInterval = time.Second

// Login watches a session until it is connected.
type Login struct {
	// Bridge dispatches into the session's page.
	Bridge *bridge.Bridge

	// Detector classifies the page. Nil means a detector over Bridge with
	// default settings.
	Detector *status.Detector

	// CodeInterval between pairing payload reads.
	CodeInterval time.Duration

	// QRMode selects the QR rendering.
	QRMode pairing.Mode

	// Timeout bounds the whole login. Zero waits indefinitely.
	Timeout time.Duration
}

// Run emits events until the session reaches the chat list, the page goes
// away, or ctx ends. emit is never called concurrently and never after Run
// returns. An elapsed Timeout yields a *bridge.TimeoutError.
func (l *Login) Run(ctx context.Context, emit func(Event)) error {
	start := time.Now()
	detector := l.Detector
	if detector == nil {
		detector = status.NewDetector(l.Bridge)
	}

	parent := ctx
	if l.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		parent, cancelTimeout = context.WithTimeout(ctx, l.Timeout)
		defer cancelTimeout()
	}
	watchCtx, cancel := context.WithCancel(parent)

	var (
		mu        sync.Mutex
		last      = status.PhaseUnknown
		connected = make(chan struct{})
		once      sync.Once
		wg        sync.WaitGroup
		errc      = make(chan error, 2)
	)
	send := func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		if watchCtx.Err() == nil {
			emit(e)
		}
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		errc <- detector.Watch(watchCtx, func(p status.Phase) {
			mu.Lock()
			last = p
			mu.Unlock()
			send(PhaseChanged{Phase: p})
			if p == status.PhaseConnected {
				once.Do(func() { close(connected) })
			}
		})
	}()
	go func() {
		defer wg.Done()
		errc <- l.watchCodes(watchCtx, send)
	}()

	var err error
	select {
	case <-connected:
	case err = <-errc:
	}
	cancel()
	wg.Wait()

	if err == nil {
		err = status.WaitForInChat(parent, l.Bridge, 0)
	}
	if err != nil {
		return l.loginError(ctx, parent, err, last)
	}

	debugLog.Infof("login complete after %s", time.Since(start).Round(time.Millisecond))
	emit(Ready{Elapsed: time.Since(start)})
	return nil
}

func (l *Login) loginError(ctx, parent context.Context, err error, last status.Phase) error {
	if ctx.Err() == nil && errors.Is(parent.Err(), context.DeadlineExceeded) {
		return &bridge.TimeoutError{Op: "login", Timeout: l.Timeout, Last: "phase " + last.String()}
	}
	return err
}

// watchCodes re-arms pairing.Watch each time a payload disappears, since the
// login screen can come back after a failed pairing.
func (l *Login) watchCodes(ctx context.Context, emit func(Event)) error {
	interval := l.CodeInterval
	if interval <= 0 {
		interval = DefaultCodeInterval
	}

	for {
		err := pairing.Watch(ctx, l.Bridge, interval, func(payload string) {
			qr, err := pairing.RenderWith(payload, l.QRMode)
			if err != nil {
				debugLog.Warnf("render pairing payload: %v", err)
				return
			}
			emit(CodeRotated{Payload: payload, QR: qr})
		})
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
