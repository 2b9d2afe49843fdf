package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/wppgo/pkg/bridge"
)

// ErrNoScript is returned by Open when no API script source is given.
var ErrNoScript = errors.New("no API script path or URL")

// UpdateLastUsed updates the last used timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.mu.Lock()
	s.lastUsedAt = time.Now()
	s.mu.Unlock()
}

// LastUsedAt returns the time of the last operation on this session.
func (s *Session) LastUsedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsedAt
}

// CurrentURL returns the URL of the active page as of the last navigation.
func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL
}

// Open navigates the session to opts.URL and injects the in-page API script.
func (s *Session) Open(ctx context.Context, opts OpenOptions) error {
	if opts.ScriptPath == "" && opts.ScriptURL == "" {
		return ErrNoScript
	}
	page, err := s.activePage()
	if err != nil {
		return err
	}
	s.UpdateLastUsed()

	waitUntil := playwright.WaitUntilState(opts.WaitUntil)
	if opts.WaitUntil == "" {
		waitUntil = playwright.WaitUntilState(DefaultWaitUntil)
	}

	_, err = await(ctx, page, func() (any, error) {
		return page.Goto(opts.URL, playwright.PageGotoOptions{WaitUntil: &waitUntil})
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.mu.Lock()
	s.currentURL = page.URL()
	s.mu.Unlock()

	tag := playwright.PageAddScriptTagOptions{}
	if opts.ScriptPath != "" {
		tag.Path = playwright.String(opts.ScriptPath)
	} else {
		tag.URL = playwright.String(opts.ScriptURL)
	}

	s.mu.Lock()
	s.script = tag
	if s.hooked != page {
		s.hooked = page
		page.OnLoad(func(p playwright.Page) { go s.reinject(p) })
	}
	s.mu.Unlock()

	if _, err := await(ctx, page, func() (any, error) { return nil, s.ensureAPI(page, tag) }); err != nil {
		return fmt.Errorf("failed to inject API script: %w", err)
	}

	debugLog.Infof("session %s opened %s", s.Name, s.CurrentURL())
	return nil
}

const apiPresentScript = `() => typeof window.WPP !== 'undefined'`

// ensureAPI injects tag into page unless the API global is already there.
func (s *Session) ensureAPI(page playwright.Page, tag playwright.PageAddScriptTagOptions) error {
	s.injectMu.Lock()
	defer s.injectMu.Unlock()

	if present, err := page.Evaluate(apiPresentScript); err == nil && present == true {
		return nil
	}
	_, err := page.AddScriptTag(tag)
	return err
}

// reinject restores the API after page reloads. A reload discards every
// script injected into the previous document.
func (s *Session) reinject(page playwright.Page) {
	s.mu.Lock()
	tag := s.script
	s.mu.Unlock()

	if tag.Path == nil && tag.URL == nil {
		return
	}
	if err := s.ensureAPI(page, tag); err != nil {
		debugLog.Warnf("session %s: failed to re-inject API script: %v", s.Name, err)
		return
	}
	debugLog.Debugf("session %s: API script re-injected after load", s.Name)
}

// Page returns the active page as a bridge.Page.
func (s *Session) Page() bridge.Page {
	return &pageAdapter{session: s}
}

// Bridge returns a bridge bound to the session's active page.
func (s *Session) Bridge() *bridge.Bridge {
	return bridge.New(s.Page())
}

// activePage returns the current page, reattaching to another open page of
// the context (or creating one) when the previous page has closed.
func (s *Session) activePage() (playwright.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != nil && !s.page.IsClosed() {
		return s.page, nil
	}
	if s.Context == nil {
		return nil, bridge.ErrPageClosed
	}

	for _, p := range s.Context.Pages() {
		if !p.IsClosed() {
			s.page = p
			return p, nil
		}
	}

	page, err := s.Context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create page: %v", bridge.ErrPageClosed, err)
	}
	s.page = page
	return page, nil
}

// currentPage returns the page the session last attached to, without
// reattaching. A closed page stays closed for bridge callers.
func (s *Session) currentPage() playwright.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// close releases the session's Playwright resources.
func (s *Session) close() []error {
	var errs []error
	if s.Context != nil {
		if err := s.Context.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (s *Session) info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		Name:        s.Name,
		CurrentURL:  s.currentURL,
		UserDataDir: s.UserDataDir,
		Headless:    s.Headless,
		CreatedAt:   s.CreatedAt,
		LastUsedAt:  s.lastUsedAt,
	}
}
