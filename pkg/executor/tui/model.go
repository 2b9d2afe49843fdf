package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/entrhq/wppgo/pkg/executor"
	"github.com/entrhq/wppgo/pkg/status"
)

// loginEventMsg wraps an event from the login flow.
type loginEventMsg struct {
	event executor.Event
}

// loginDoneMsg is sent once the login flow has returned.
type loginDoneMsg struct {
	err error
}

// copyResultMsg reports the outcome of a clipboard copy.
type copyResultMsg struct {
	err error
}

// model is the login screen state.
type model struct {
	spinner spinner.Model

	session  string
	copyCode bool
	copy     func(string) error
	cancel   func()

	phase   status.Phase
	qr      string
	codes   int
	notice  string
	elapsed time.Duration

	connected bool
	aborted   bool
	err       error

	width  int
	height int
}

func newModel(session string, copyCode bool, copy func(string) error, cancel func()) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = headerStyle

	return &model{
		spinner:  s,
		session:  session,
		copyCode: copyCode,
		copy:     copy,
		cancel:   cancel,
		phase:    status.PhaseUnknown,
	}
}
