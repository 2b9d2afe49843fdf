package pairing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/entrhq/wppgo/pkg/bridge"
	"github.com/entrhq/wppgo/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("pairing")
	if err != nil {
		debugLog.Warnf("Failed to initialize pairing logger, using stderr fallback: %v", err)
	}
}

var authCodeOp = bridge.Op("conn.getAuthCode", `async (wpp) => {
  const code = await wpp.conn.getAuthCode();
  return code && code.fullCode ? code.fullCode : null;
}`)

// FetchPayload returns the current pairing payload. It fails with
// ErrNoPairingCode when the page reports none.
func FetchPayload(ctx context.Context, inv bridge.Invoker) (string, error) {
	code, err := bridge.Call[*string](ctx, inv, authCodeOp, nil)
	if err != nil {
		return "", err
	}
	if code == nil || *code == "" {
		return "", ErrNoPairingCode
	}
	return *code, nil
}

// Watch polls for the pairing payload every interval and calls onCode with
// each distinct value. Payloads go stale when they rotate or the session
// leaves UNPAIRED, so only the latest one is meaningful.
//
// Watch returns nil once a payload has been seen and the page stops
// reporting one, ctx.Err() when ctx ends, or the dispatch error when the
// page is unreachable. Other in-page failures (API still loading) are retried
// on the next tick.
func Watch(ctx context.Context, inv bridge.Invoker, interval time.Duration, onCode func(payload string)) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	for {
		code, err := FetchPayload(ctx, inv)
		switch {
		case err == nil:
			if code != last {
				debugLog.Debugf("pairing payload rotated (%d bytes)", len(code))
				last = code
				onCode(code)
			}
		case errors.Is(err, ErrNoPairingCode):
			if last != "" {
				return nil
			}
		case ctx.Err() != nil:
			return ctx.Err()
		case bridge.IsUnreachable(err):
			return err
		default:
			debugLog.Debugf("fetch pairing payload: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// CopyToClipboard places payload on the system clipboard.
func CopyToClipboard(payload string) error {
	if payload == "" {
		return ErrEmptyPayload
	}
	if clipboard.Unsupported {
		return fmt.Errorf("copy pairing payload: clipboard not supported on this system")
	}
	if err := clipboard.WriteAll(payload); err != nil {
		return fmt.Errorf("copy pairing payload: %w", err)
	}
	return nil
}
