// Package tui presents the login flow as an interactive terminal screen:
// the current connection phase, the pairing QR code while unpaired, and a
// final confirmation once the chat list is open.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/wppgo/pkg/executor"
	"github.com/entrhq/wppgo/pkg/logging"
	"github.com/entrhq/wppgo/pkg/pairing"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("tui")
	if err != nil {
		debugLog.Warnf("Failed to initialize tui logger, using stderr fallback: %v", err)
	}
}

// ErrAborted is returned when the user quits before login completes.
var ErrAborted = errors.New("login aborted by user")

// Executor runs the login flow behind a Bubble Tea program.
type Executor struct {
	login    *executor.Login
	session  string
	copyCode bool
	opts     []tea.ProgramOption
}

// NewExecutor creates a TUI executor for login. With copyCode set, every new
// pairing payload is also copied to the clipboard.
func NewExecutor(login *executor.Login, session string, copyCode bool) *Executor {
	return &Executor{
		login:    login,
		session:  session,
		copyCode: copyCode,
		opts:     []tea.ProgramOption{tea.WithAltScreen()},
	}
}

// Run shows the login screen and blocks until the session is connected, the
// login fails, or the user quits.
func (e *Executor) Run(ctx context.Context) error {
	debugLog.Infof("TUI login starting for session %s", e.session)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(e.session, e.copyCode, pairing.CopyToClipboard, cancel)
	program := tea.NewProgram(m, append(e.opts, tea.WithContext(ctx))...)

	go func() {
		err := e.login.Run(ctx, func(ev executor.Event) {
			debugLog.Debugf("Forwarding login event to TUI: %T", ev)
			program.Send(loginEventMsg{event: ev})
		})
		program.Send(loginDoneMsg{err: err})
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI program: %w", err)
	}

	switch {
	case m.aborted:
		return ErrAborted
	case m.err != nil:
		return m.err
	case !m.connected:
		return ctx.Err()
	}

	fmt.Printf("✓ Session %s connected in %s\n", e.session, m.elapsed)
	return nil
}
