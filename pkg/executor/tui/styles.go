package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/wppgo/pkg/status"
)

// Color Palette
// This is the single source of truth for all TUI colors.
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // Soft pastel salmon pink - primary accent
	coralPink   = lipgloss.Color("#FFCCCB") // Lighter coral accent - secondary
	mintGreen   = lipgloss.Color("#A8E6CF") // Soft mint green - success states
	mutedGray   = lipgloss.Color("#6B7280") // Muted gray - secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // Bright white - primary text
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	sessionStyle = lipgloss.NewStyle().
			Foreground(coralPink).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	successStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	qrBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)
)

// phaseStyle colors the phase label.
func phaseStyle(p status.Phase) lipgloss.Style {
	switch p {
	case status.PhaseConnected:
		return successStyle
	case status.PhasePairing:
		return lipgloss.NewStyle().Foreground(coralPink).Bold(true)
	case status.PhaseUnpaired:
		return lipgloss.NewStyle().Foreground(salmonPink).Bold(true)
	default:
		return tipsStyle
	}
}
