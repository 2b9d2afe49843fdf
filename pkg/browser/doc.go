// Package browser runs WhatsApp Web inside Playwright-driven Chromium.
//
// A SessionManager owns the Playwright driver and any number of named
// sessions. Each session keeps a persistent profile directory so a paired
// device survives restarts:
//
//	manager := browser.NewSessionManager()
//	if err := manager.Initialize(); err != nil {
//		return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.StartSession("default", browser.SessionOptions{
//		UserDataDir: "/home/me/.wppgo/profiles/default",
//	})
//	if err != nil {
//		return err
//	}
//	if err := session.Open(ctx, browser.OpenOptions{
//		URL:       "https://web.whatsapp.com/",
//		ScriptURL: config.DefaultAPIScriptURL,
//	}); err != nil {
//		return err
//	}
//	phase, err := status.DetectPhase(ctx, session.Bridge(), status.DetectOptions{})
//
// Session.Page adapts the Playwright page to bridge.Page; everything above
// this package talks to the page only through the bridge.
package browser
