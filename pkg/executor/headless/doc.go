// Package headless runs the login flow without a TUI, for servers, CI jobs
// and piped output.
//
// Progress is printed as ANSI-colored lines, filtered by verbosity:
//
//	logger := headless.NewLogger(headless.ParseLogLevel("verbose"))
//	exec := headless.NewExecutor(login, headless.Config{Session: "default"}, logger)
//	if err := exec.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// The pairing QR code is printed every time the payload rotates. At quiet
// verbosity only warnings, errors and the final summary are shown, so the
// QR is suppressed; pass CopyCode to receive the payload on the clipboard
// instead.
package headless
