package bridge

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrPageClosed reports that the page behind a session is gone.
	// Page implementations wrap it when the target is closed or crashed.
	ErrPageClosed = errors.New("page closed")

	// ErrAPIUnavailable reports that the in-page API global is not loaded.
	ErrAPIUnavailable = errors.New("in-page API not available")

	// ErrTimeout is wrapped by every TimeoutError and returned by Page
	// implementations when WaitForPredicate runs out of time.
	ErrTimeout = errors.New("timeout")
)

// ErrorKind classifies where a dispatch failed.
type ErrorKind string

const (
	// KindUnreachable means the page could not be reached (closed, crashed, driver gone).
	KindUnreachable ErrorKind = "unreachable"

	// KindAPIUnavailable means the page answered but the in-page API was not loaded.
	KindAPIUnavailable ErrorKind = "api-unavailable"

	// KindThrown means the operation threw (or rejected) inside the page.
	KindThrown ErrorKind = "thrown"

	// KindSerialize means the in-page result could not be turned into JSON.
	KindSerialize ErrorKind = "serialize"

	// KindArgument means the caller's arguments could not be encoded as JSON.
	KindArgument ErrorKind = "argument"

	// KindDecode means the result arrived but did not fit the caller's type.
	KindDecode ErrorKind = "decode"
)

// PageError is the error detail captured inside the page.
type PageError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack"`
}

// DispatchError is returned for every failed Invoke.
type DispatchError struct {
	// Op is the operation name, e.g. "community.create".
	Op string

	// Kind tells the caller which side of the boundary failed.
	Kind ErrorKind

	// Page holds the in-page error for KindThrown, KindSerialize and KindAPIUnavailable.
	Page *PageError

	// Err is the Go-side cause, if any.
	Err error
}

func (e *DispatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dispatch %s: %s", e.Op, e.Kind)
	if e.Page != nil {
		if e.Page.Name != "" {
			fmt.Fprintf(&b, ": %s: %s", e.Page.Name, e.Page.Message)
		} else {
			fmt.Fprintf(&b, ": %s", e.Page.Message)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DispatchError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Kind == KindAPIUnavailable {
		return ErrAPIUnavailable
	}
	return nil
}

// Message returns the in-page error message, or "" when the failure was Go-side.
func (e *DispatchError) Message() string {
	if e.Page == nil {
		return ""
	}
	return e.Page.Message
}

// TimeoutError is returned when a deadline passes before a poll or wait
// reaches a determinable result.
type TimeoutError struct {
	// Op names what was being waited for.
	Op string

	// Timeout is the deadline the caller supplied.
	Timeout time.Duration

	// Last describes the last observation, for diagnosis. May be empty.
	Last string
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s: timed out after %s", e.Op, e.Timeout)
	if e.Last != "" {
		msg += " (last observed: " + e.Last + ")"
	}
	return msg
}

func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// IsUnreachable reports whether err is a dispatch failure caused by a dead page.
func IsUnreachable(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Kind == KindUnreachable
	}
	return errors.Is(err, ErrPageClosed)
}

func (e *PageError) Error() string {
	if e.Name != "" {
		return e.Name + ": " + e.Message
	}
	return e.Message
}
