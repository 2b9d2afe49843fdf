package status

import (
	"context"
	"time"

	"github.com/entrhq/wppgo/pkg/bridge"
)

var (
	isRegisteredOp = bridge.Op("conn.isRegistered", `(wpp) => wpp.conn.isRegistered()`)
	isMainReadyOp  = bridge.Op("conn.isMainReady", `(wpp) => wpp.conn.isMainReady()`)
	mainStateOp    = bridge.Op("conn.mainState",
		`(wpp) => ({ loaded: !!wpp.conn.isMainLoaded(), ready: !!wpp.conn.isMainReady() })`)
)

// MainState is the loading state of the main UI.
type MainState struct {
	Loaded bool `json:"loaded"`
	Ready  bool `json:"ready"`
}

// ConnectingToPhone reports the phone handshake window: loaded but not ready.
func (m MainState) ConnectingToPhone() bool {
	return m.Loaded && !m.Ready
}

// IsAuthenticated reports whether the in-page API considers the session registered.
func IsAuthenticated(ctx context.Context, inv bridge.Invoker) (bool, error) {
	return bridge.Call[bool](ctx, inv, isRegisteredOp, nil)
}

// NeedsToScan is the negation of IsAuthenticated.
func NeedsToScan(ctx context.Context, inv bridge.Invoker) (bool, error) {
	authenticated, err := IsAuthenticated(ctx, inv)
	if err != nil {
		return false, err
	}
	return !authenticated, nil
}

// IsInsideChat reports whether the main UI is fully ready.
func IsInsideChat(ctx context.Context, inv bridge.Invoker) (bool, error) {
	return bridge.Call[bool](ctx, inv, isMainReadyOp, nil)
}

// GetMainState reads both main UI flags in one dispatch so they come from
// the same instant.
func GetMainState(ctx context.Context, inv bridge.Invoker) (MainState, error) {
	return bridge.Call[MainState](ctx, inv, mainStateOp, nil)
}

// IsConnectingToPhone reports whether the main UI has loaded but is not yet ready.
func IsConnectingToPhone(ctx context.Context, inv bridge.Invoker) (bool, error) {
	state, err := GetMainState(ctx, inv)
	if err != nil {
		return false, err
	}
	return state.ConnectingToPhone(), nil
}

// WaitForInChat blocks until the main UI reports ready, using the page's own
// predicate polling. A zero timeout waits until ctx ends.
func WaitForInChat(ctx context.Context, w bridge.Waiter, timeout time.Duration) error {
	_, err := w.WaitFor(ctx, isMainReadyOp, nil, bridge.WaitOptions{Timeout: timeout})
	return err
}
