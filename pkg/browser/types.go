package browser

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session represents an active browser session with its associated resources.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// Browser is the Playwright browser instance. It is nil for sessions
	// backed by a persistent profile, which own only a context.
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// UserDataDir is the profile directory, empty for ephemeral sessions.
	UserDataDir string

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	mu         sync.Mutex
	page       playwright.Page
	lastUsedAt time.Time
	currentURL string

	// script is re-injected on every load of the hooked page.
	script   playwright.PageAddScriptTagOptions
	hooked   playwright.Page
	injectMu sync.Mutex
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// UserDataDir enables a persistent profile stored in this directory.
	UserDataDir string

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for page operations.
	Timeout time.Duration
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// OpenOptions configures Session.Open.
type OpenOptions struct {
	// URL to navigate to.
	URL string

	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// ScriptPath is a local file injected once the page has loaded and again
	// after every reload or navigation of that page.
	ScriptPath string

	// ScriptURL is injected when ScriptPath is empty.
	ScriptURL string
}

// SessionInfo contains metadata about a browser session.
type SessionInfo struct {
	Name        string
	CurrentURL  string
	UserDataDir string
	Headless    bool
	CreatedAt   time.Time
	LastUsedAt  time.Time
}

// Default values for sessions
const (
	DefaultTimeout        = 30 * time.Second
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultMaxSessions    = 5
	DefaultIdleTimeout    = 30 * time.Minute
	DefaultWaitUntil      = "domcontentloaded"
)
