package browser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/wppgo/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("browser")
	if err != nil {
		debugLog.Warnf("Failed to initialize browser logger, using stderr fallback: %v", err)
	}
}

var (
	// ErrNotInitialized is returned when sessions are requested before Initialize.
	ErrNotInitialized = errors.New("session manager not initialized")

	// ErrSessionNotFound is returned for unknown session names.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionManager owns the Playwright driver and all active sessions.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	maxSessions int
	idleTimeout time.Duration
	initialized bool
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: DefaultMaxSessions,
		idleTimeout: DefaultIdleTimeout,
	}
}

// Initialize installs the browser driver if needed and starts Playwright.
// It must be called before StartSession.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Driver output would corrupt the TUI.
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	debugLog.Infof("playwright started")
	return nil
}

// StartSession launches a browser for a new session. An empty name gets a
// generated one. With opts.UserDataDir set the session uses a persistent
// context so login state survives restarts.
func (m *SessionManager) StartSession(name string, opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		name = "session-" + uuid.NewString()[:8]
	}
	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}
	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("maximum number of sessions (%d) reached", m.maxSessions)
	}
	if !m.initialized {
		return nil, ErrNotInitialized
	}

	opts = withDefaults(opts)

	var (
		session *Session
		err     error
	)
	if opts.UserDataDir != "" {
		session, err = m.launchPersistent(name, opts)
	} else {
		session, err = m.launchEphemeral(name, opts)
	}
	if err != nil {
		return nil, err
	}

	m.sessions[name] = session
	debugLog.Infof("started session %s (headless=%t, profile=%q)", name, opts.Headless, opts.UserDataDir)
	return session, nil
}

func (m *SessionManager) launchPersistent(name string, opts SessionOptions) (*Session, error) {
	if err := os.MkdirAll(opts.UserDataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	context, err := m.playwright.Chromium.LaunchPersistentContext(opts.UserDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Viewport: &playwright.Size{Width: opts.Viewport.Width, Height: opts.Viewport.Height},
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch persistent context: %w", err)
	}

	var page playwright.Page
	if pages := context.Pages(); len(pages) > 0 {
		page = pages[0]
	} else if page, err = context.NewPage(); err != nil {
		context.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return newSession(name, nil, context, page, opts), nil
}

func (m *SessionManager) launchEphemeral(name string, opts SessionOptions) (*Session, error) {
	browser, err := m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: opts.Viewport.Width, Height: opts.Viewport.Height},
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return newSession(name, browser, context, page, opts), nil
}

func newSession(name string, browser playwright.Browser, context playwright.BrowserContext, page playwright.Page, opts SessionOptions) *Session {
	page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))

	now := time.Now()
	return &Session{
		Name:        name,
		Browser:     browser,
		Context:     context,
		UserDataDir: opts.UserDataDir,
		Headless:    opts.Headless,
		CreatedAt:   now,
		page:        page,
		lastUsedAt:  now,
		currentURL:  "about:blank",
	}
}

func withDefaults(opts SessionOptions) SessionOptions {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return opts
}

// CloseSession closes and removes a browser session.
func (m *SessionManager) CloseSession(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[name]
	if !exists {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, name)
	}

	// Errors are ignored so the entry is always released.
	_ = session.close()
	delete(m.sessions, name)
	return nil
}

// GetSession retrieves an active session by name.
func (m *SessionManager) GetSession(name string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, name)
	}
	return session, nil
}

// ListSessions returns information about all active sessions, sorted by name.
func (m *SessionManager) ListSessions() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, session := range m.sessions {
		infos = append(infos, session.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// HasSessions returns true if there are any active sessions.
func (m *SessionManager) HasSessions() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions) > 0
}

// CloseAll closes all active sessions.
func (m *SessionManager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeWhere(func(*Session) bool { return true }, "errors closing sessions")
}

// CleanupIdleSessions closes sessions unused for longer than the idle timeout.
func (m *SessionManager) CleanupIdleSessions() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-m.idleTimeout)
	return m.closeWhere(func(s *Session) bool { return s.LastUsedAt().Before(cutoff) }, "errors during cleanup")
}

// closeWhere closes every session match accepts. Caller holds m.mu.
func (m *SessionManager) closeWhere(match func(*Session) bool, msg string) error {
	var errs []error
	for name, session := range m.sessions {
		if !match(session) {
			continue
		}
		errs = append(errs, session.close()...)
		delete(m.sessions, name)
		debugLog.Infof("closed session %s", name)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", msg, errors.Join(errs...))
	}
	return nil
}

// Shutdown closes all sessions and stops Playwright.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_ = m.closeWhere(func(*Session) bool { return true }, "")

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}
	return nil
}

// SetMaxSessions sets the maximum number of concurrent sessions.
func (m *SessionManager) SetMaxSessions(max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSessions = max
}

// SetIdleTimeout sets the idle timeout duration.
func (m *SessionManager) SetIdleTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idleTimeout = timeout
}
