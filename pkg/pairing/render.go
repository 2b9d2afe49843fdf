// Package pairing turns the pairing payload issued by the in-page API into
// something a phone can scan from a terminal.
package pairing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"
)

var (
	// ErrEmptyPayload is returned for blank payloads instead of a blank block.
	ErrEmptyPayload = errors.New("pairing payload is empty")

	// ErrNoPairingCode is returned when the page has no current pairing code,
	// usually because the session is already authenticated.
	ErrNoPairingCode = errors.New("no pairing code available")
)

// Mode selects how modules are drawn.
type Mode int

const (
	// ModeCompact packs two rows per line with half-block glyphs.
	ModeCompact Mode = iota

	// ModeFull draws every module as two ANSI-coloured cells.
	ModeFull
)

// Render draws payload as a compact QR block.
func Render(payload string) (string, error) {
	return RenderWith(payload, ModeCompact)
}

// RenderWith draws payload in the given mode. Output is deterministic for a
// given payload and mode.
func RenderWith(payload string, mode Mode) (string, error) {
	if strings.TrimSpace(payload) == "" {
		return "", ErrEmptyPayload
	}
	// qrterminal drops encoder errors, so check encodability first
	if _, err := qr.Encode(payload, qr.L); err != nil {
		return "", fmt.Errorf("encode pairing payload: %w", err)
	}

	var b strings.Builder
	cfg := qrterminal.Config{
		Level:     qr.L,
		Writer:    &b,
		QuietZone: 1,
	}
	switch mode {
	case ModeFull:
		cfg.BlackChar = qrterminal.BLACK
		cfg.WhiteChar = qrterminal.WHITE
	default:
		cfg.HalfBlocks = true
		cfg.BlackChar = qrterminal.BLACK_BLACK
		cfg.BlackWhiteChar = qrterminal.BLACK_WHITE
		cfg.WhiteChar = qrterminal.WHITE_WHITE
		cfg.WhiteBlackChar = qrterminal.WHITE_BLACK
	}
	qrterminal.GenerateWithConfig(payload, cfg)

	return b.String(), nil
}
