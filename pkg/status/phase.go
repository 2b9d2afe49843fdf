// Package status classifies a WhatsApp Web session into its connection
// phase and answers narrower questions about its authentication state.
//
// Everything here reads page state through a bridge.Invoker; nothing is
// cached between calls because the page can change at any moment (for
// example when the phone disconnects).
package status

// Phase is the coarse connection state of a session.
type Phase string

const (
	// PhaseUnknown means no phase could be determined. It is never returned
	// together with a nil error.
	PhaseUnknown Phase = ""

	// PhaseUnpaired means the login screen with a QR code is showing.
	PhaseUnpaired Phase = "UNPAIRED"

	// PhasePairing means the stream is in a transitional state.
	PhasePairing Phase = "PAIRING"

	// PhaseConnected means the main application is present and focusable.
	PhaseConnected Phase = "CONNECTED"
)

func (p Phase) String() string {
	if p == PhaseUnknown {
		return "UNKNOWN"
	}
	return string(p)
}

// transitionalStreams are the Stream.displayInfo values reported while a
// session is pairing, resuming or syncing with the phone.
var transitionalStreams = map[string]bool{
	"PAIRING":  true,
	"RESUMING": true,
	"SYNCING":  true,
}

// IsTransitionalStream reports whether info is one of the stream labels that
// classify as PhasePairing.
func IsTransitionalStream(info string) bool {
	return transitionalStreams[info]
}
