package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/wppgo/pkg/executor"
	"github.com/entrhq/wppgo/pkg/pairing"
	"github.com/entrhq/wppgo/pkg/status"
)

// Config configures a headless login run.
type Config struct {
	// Session is the session name shown in the summary.
	Session string

	// CopyCode copies each new pairing payload to the clipboard.
	CopyCode bool
}

// LoginSummary is printed when the run ends.
type LoginSummary struct {
	Session    string
	LastPhase  status.Phase
	Duration   time.Duration
	CodesShown int
	Error      string
}

// Executor prints the login flow to a Logger.
type Executor struct {
	login  *executor.Login
	config Config
	logger *Logger

	// copy is swapped in tests.
	copy func(string) error

	summary *LoginSummary
}

// NewExecutor creates a headless executor for login.
func NewExecutor(login *executor.Login, config Config, logger *Logger) *Executor {
	return &Executor{
		login:   login,
		config:  config,
		logger:  logger,
		copy:    pairing.CopyToClipboard,
		summary: &LoginSummary{Session: config.Session},
	}
}

// Run blocks until the session is connected or the login fails, then prints
// a summary. The login error, if any, is returned unchanged.
func (e *Executor) Run(ctx context.Context) error {
	start := time.Now()
	e.logger.Header(fmt.Sprintf("WhatsApp Web login: %s", e.config.Session))
	e.logger.Step("Detecting connection state")

	err := e.login.Run(ctx, e.handle)

	e.summary.Duration = time.Since(start)
	if err != nil {
		e.summary.Error = err.Error()
		e.logger.Errorf("login failed: %v", err)
	}
	e.logger.Summary(e.summary)
	return err
}

// Summary returns the summary of the last Run.
func (e *Executor) Summary() LoginSummary {
	return *e.summary
}

func (e *Executor) handle(ev executor.Event) {
	switch ev := ev.(type) {
	case executor.PhaseChanged:
		e.summary.LastPhase = ev.Phase
		e.logger.Phase(ev.Phase)
		if ev.Phase == status.PhasePairing {
			e.logger.Step("Linking device")
		}
	case executor.CodeRotated:
		e.summary.CodesShown++
		e.logger.Verbosef("pairing payload rotated (%d bytes)", len(ev.Payload))
		e.logger.QR(ev.QR)
		if e.config.CopyCode {
			if err := e.copy(ev.Payload); err != nil {
				e.logger.Warningf("could not copy pairing code: %v", err)
			} else {
				e.logger.Infof("Pairing code copied to clipboard")
			}
		}
	case executor.Ready:
		e.logger.Successf("Connected in %s", ev.Elapsed.Round(time.Millisecond))
	}
}
