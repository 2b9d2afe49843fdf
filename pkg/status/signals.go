package status

import (
	"fmt"

	"github.com/entrhq/wppgo/pkg/bridge"
)

const (
	loginWrapperSelector = "body > div > div > .landing-wrapper"
	qrCanvasSelector     = "canvas"
	chatSelector         = ".app,.two"
)

// Signals is one snapshot of the page-visible state the detector looks at.
type Signals struct {
	LoginWrapper bool   `json:"loginWrapper"`
	QRCanvas     bool   `json:"qrCanvas"`
	StreamInfo   string `json:"streamInfo"`

	// ChatTabIndex is the tab index of the main chat node, nil when absent.
	ChatTabIndex *int `json:"chatTabIndex"`
}

func (s Signals) String() string {
	chat := "absent"
	if s.ChatTabIndex != nil {
		chat = fmt.Sprintf("tabIndex=%d", *s.ChatTabIndex)
	}
	stream := s.StreamInfo
	if stream == "" {
		stream = "none"
	}
	return fmt.Sprintf("loginWrapper=%t qrCanvas=%t stream=%s chat=%s", s.LoginWrapper, s.QRCanvas, stream, chat)
}

// signalsOp reads every signal in a single evaluation. It only reads: no
// in-page state is allocated while detecting.
var signalsOp = bridge.Operation{
	Name:       "status.signals",
	Standalone: true,
	Source: fmt.Sprintf(`(wpp) => {
  const chat = document.querySelector(%q);
  const stream = wpp && wpp.whatsapp && wpp.whatsapp.Stream ? wpp.whatsapp.Stream.displayInfo : null;
  return {
    loginWrapper: !!document.querySelector(%q),
    qrCanvas: !!document.querySelector(%q),
    streamInfo: typeof stream === 'string' ? stream : '',
    chatTabIndex: chat && chat.attributes ? chat.tabIndex : null
  };
}`, chatSelector, loginWrapperSelector, qrCanvasSelector),
}

// Classifier maps a snapshot to a phase. ok is false when the classifier
// does not apply.
type Classifier func(s Signals) (phase Phase, ok bool)

// DefaultClassifiers are evaluated in order; the first match wins. The
// login DOM outranks a transitional stream label even when both are
// observed in the same snapshot.
var DefaultClassifiers = []Classifier{
	ClassifyUnpaired,
	ClassifyPairing,
	ClassifyConnected,
}

// ClassifyUnpaired matches when the login wrapper and the QR canvas are both present.
func ClassifyUnpaired(s Signals) (Phase, bool) {
	if s.LoginWrapper && s.QRCanvas {
		return PhaseUnpaired, true
	}
	return PhaseUnknown, false
}

// ClassifyPairing matches a transitional stream label.
func ClassifyPairing(s Signals) (Phase, bool) {
	if IsTransitionalStream(s.StreamInfo) {
		return PhasePairing, true
	}
	return PhaseUnknown, false
}

// ClassifyConnected matches when the main chat node exists with a non-zero
// tab index. -1 counts as usable; 0 does not.
func ClassifyConnected(s Signals) (Phase, bool) {
	if s.ChatTabIndex != nil && *s.ChatTabIndex != 0 {
		return PhaseConnected, true
	}
	return PhaseUnknown, false
}

// Classify runs classifiers in order over s.
func Classify(s Signals, classifiers []Classifier) (Phase, bool) {
	for _, c := range classifiers {
		if p, ok := c(s); ok {
			return p, true
		}
	}
	return PhaseUnknown, false
}
