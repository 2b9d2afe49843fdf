package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/wppgo/pkg/executor"
	"github.com/entrhq/wppgo/pkg/status"
)

// Init starts the spinner.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles Bubble Tea messages.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.aborted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginEventMsg:
		return m, m.handleEvent(msg.event)

	case copyResultMsg:
		if msg.err != nil {
			m.notice = "Could not copy pairing code: " + msg.err.Error()
		} else {
			m.notice = "Pairing code copied to clipboard"
		}
		return m, nil

	case loginDoneMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m *model) handleEvent(ev executor.Event) tea.Cmd {
	switch ev := ev.(type) {
	case executor.PhaseChanged:
		m.phase = ev.Phase
		if ev.Phase != status.PhaseUnpaired {
			m.qr = ""
		}
	case executor.CodeRotated:
		m.qr = ev.QR
		m.codes++
		if m.copyCode && m.copy != nil {
			payload := ev.Payload
			return func() tea.Msg {
				return copyResultMsg{err: m.copy(payload)}
			}
		}
	case executor.Ready:
		m.connected = true
		m.elapsed = ev.Elapsed.Round(time.Millisecond)
	}
	return nil
}
