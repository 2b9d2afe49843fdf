package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/wppgo/pkg/status"
)

// View renders the login screen.
func (m *model) View() string {
	sections := []string{
		m.buildHeader(),
		m.buildStatus(),
	}
	if qr := m.buildQR(); qr != "" {
		sections = append(sections, qr)
	}
	if m.notice != "" {
		sections = append(sections, "  "+noticeStyle.Render(m.notice))
	}
	if m.err != nil {
		sections = append(sections, "  "+errorStyle.Render("✗ "+m.err.Error()))
	}
	sections = append(sections, m.buildBottomBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m *model) buildHeader() string {
	return headerStyle.Render("  wppgo") + tipsStyle.Render(" · WhatsApp Web session ") + sessionStyle.Render(m.session)
}

func (m *model) buildStatus() string {
	if m.connected {
		return "  " + successStyle.Render(fmt.Sprintf("✓ Connected in %s", m.elapsed))
	}
	label := phaseStyle(m.phase).Render(m.phase.String())
	return fmt.Sprintf("  %s %s %s", m.spinner.View(), label, tipsStyle.Render(phaseTip(m.phase)))
}

func (m *model) buildQR() string {
	if m.qr == "" || m.connected {
		return ""
	}
	box := qrBoxStyle.Render(strings.TrimRight(m.qr, "\n"))
	hint := tipsStyle.Render("  Open WhatsApp > Settings > Linked devices > Link a device")
	if m.codes > 1 {
		hint += tipsStyle.Render(fmt.Sprintf(" (code refreshed %d times)", m.codes-1))
	}
	return lipgloss.JoinVertical(lipgloss.Left, box, hint)
}

func (m *model) buildBottomBar() string {
	return statusBarStyle.Render("q or Ctrl+C to quit")
}

func phaseTip(p status.Phase) string {
	switch p {
	case status.PhaseUnpaired:
		return "scan the QR code with your phone"
	case status.PhasePairing:
		return "linking device, keep the phone online"
	case status.PhaseConnected:
		return "opening chats"
	default:
		return "waiting for WhatsApp Web to load"
	}
}
