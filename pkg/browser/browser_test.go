package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/wppgo/pkg/bridge"
)

// fakePage implements the slice of playwright.Page the adapter touches.
// Calling anything else panics on the nil embedded interface.
type fakePage struct {
	playwright.Page
	closed   bool
	evaluate func(expression string, arg ...interface{}) (interface{}, error)
	injected []playwright.PageAddScriptTagOptions
}

func (f *fakePage) IsClosed() bool { return f.closed }

func (f *fakePage) AddScriptTag(opts playwright.PageAddScriptTagOptions) (playwright.ElementHandle, error) {
	f.injected = append(f.injected, opts)
	return nil, nil
}

func (f *fakePage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	return f.evaluate(expression, arg...)
}

func sessionWith(page playwright.Page) *Session {
	now := time.Now()
	return &Session{Name: "test", CreatedAt: now, page: page, lastUsedAt: now}
}

func TestTranslateError(t *testing.T) {
	open := &fakePage{}

	tests := []struct {
		name  string
		page  playwright.Page
		err   error
		check func(t *testing.T, err error)
	}{
		{
			name: "target closed",
			page: open,
			err:  fmt.Errorf("evaluate: %w", playwright.ErrTargetClosed),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, bridge.ErrPageClosed)
			},
		},
		{
			name: "timeout",
			page: open,
			err:  fmt.Errorf("wait: %w", playwright.ErrTimeout),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, bridge.ErrTimeout)
			},
		},
		{
			name: "page closed underneath",
			page: &fakePage{closed: true},
			err:  errors.New("socket hang up"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, bridge.ErrPageClosed)
			},
		},
		{
			name: "script error",
			page: open,
			err:  &playwright.Error{Name: "TypeError", Message: "x is undefined", Stack: "at <anonymous>"},
			check: func(t *testing.T, err error) {
				var pe *bridge.PageError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, "TypeError", pe.Name)
				assert.Equal(t, "x is undefined", pe.Message)
				assert.Equal(t, "at <anonymous>", pe.Stack)
			},
		},
		{
			name: "other error passes through",
			page: open,
			err:  errors.New("driver exited"),
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "driver exited")
				assert.NotErrorIs(t, err, bridge.ErrPageClosed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, translateError(tt.page, tt.err))
		})
	}
}

func TestPageAdapterEvaluate(t *testing.T) {
	page := &fakePage{evaluate: func(expression string, arg ...interface{}) (interface{}, error) {
		require.Len(t, arg, 1)
		return `{"ok":true,"value":"pong"}`, nil
	}}
	session := sessionWith(page)
	before := session.LastUsedAt()

	got, err := session.Page().Evaluate(context.Background(), "() => 1", map[string]any{"op": "ping"})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true,"value":"pong"}`, got)
	assert.False(t, session.LastUsedAt().Before(before))
}

func TestPageAdapterClosedPage(t *testing.T) {
	session := sessionWith(&fakePage{closed: true})

	_, err := session.Page().Evaluate(context.Background(), "() => 1", nil)
	assert.ErrorIs(t, err, bridge.ErrPageClosed)

	_, err = session.Page().WaitForPredicate(context.Background(), "() => true", nil, bridge.WaitOptions{})
	assert.ErrorIs(t, err, bridge.ErrPageClosed)

	_, err = sessionWith(nil).Page().Evaluate(context.Background(), "() => 1", nil)
	assert.ErrorIs(t, err, bridge.ErrPageClosed)
}

func TestPageAdapterThroughBridge(t *testing.T) {
	page := &fakePage{evaluate: func(string, ...interface{}) (interface{}, error) {
		return nil, fmt.Errorf("evaluate: %w", playwright.ErrTargetClosed)
	}}

	_, err := sessionWith(page).Bridge().Invoke(context.Background(), bridge.Op("conn.isRegistered", "wpp => wpp.conn.isRegistered()"), nil)
	require.Error(t, err)
	assert.True(t, bridge.IsUnreachable(err))
	assert.ErrorIs(t, err, bridge.ErrPageClosed)
}

func TestAwaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := await(ctx, &fakePage{}, func() (any, error) {
		<-release
		return nil, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestOpenRequiresScript(t *testing.T) {
	err := sessionWith(&fakePage{}).Open(context.Background(), OpenOptions{URL: "https://web.whatsapp.com/"})
	assert.ErrorIs(t, err, ErrNoScript)
}

func TestManagerRequiresInitialize(t *testing.T) {
	m := NewSessionManager()
	_, err := m.StartSession("default", SessionOptions{})
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.False(t, m.HasSessions())
}

func TestManagerSessionBookkeeping(t *testing.T) {
	m := NewSessionManager()
	m.sessions["b"] = sessionWith(&fakePage{})
	m.sessions["b"].Name = "b"
	m.sessions["a"] = sessionWith(&fakePage{})
	m.sessions["a"].Name = "a"

	infos := m.ListSessions()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Name)
	assert.Equal(t, "b", infos[1].Name)

	_, err := m.StartSession("a", SessionOptions{})
	assert.ErrorContains(t, err, `session "a" already exists`)

	m.SetMaxSessions(2)
	_, err = m.StartSession("c", SessionOptions{})
	assert.ErrorContains(t, err, "maximum number of sessions (2) reached")

	got, err := m.GetSession("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)

	_, err = m.GetSession("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.CloseSession("missing"), ErrSessionNotFound)

	require.NoError(t, m.CloseSession("a"))
	require.NoError(t, m.CloseAll())
	assert.False(t, m.HasSessions())
}

func TestCleanupIdleSessions(t *testing.T) {
	m := NewSessionManager()
	m.SetIdleTimeout(time.Minute)

	idle := sessionWith(&fakePage{})
	idle.lastUsedAt = time.Now().Add(-2 * time.Minute)
	m.sessions["idle"] = idle
	m.sessions["busy"] = sessionWith(&fakePage{})

	require.NoError(t, m.CleanupIdleSessions())

	_, err := m.GetSession("idle")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.GetSession("busy")
	assert.NoError(t, err)
}

func TestWithDefaults(t *testing.T) {
	opts := withDefaults(SessionOptions{})
	require.NotNil(t, opts.Viewport)
	assert.Equal(t, DefaultViewportWidth, opts.Viewport.Width)
	assert.Equal(t, DefaultViewportHeight, opts.Viewport.Height)
	assert.Equal(t, DefaultTimeout, opts.Timeout)

	opts = withDefaults(SessionOptions{Viewport: &Viewport{Width: 800, Height: 600}, Timeout: time.Second})
	assert.Equal(t, 800, opts.Viewport.Width)
	assert.Equal(t, time.Second, opts.Timeout)
}

func TestReinjectRestoresMissingAPI(t *testing.T) {
	present := false
	page := &fakePage{evaluate: func(expression string, arg ...interface{}) (interface{}, error) {
		return present, nil
	}}
	session := sessionWith(page)
	session.script = playwright.PageAddScriptTagOptions{Path: playwright.String("/tmp/wppconnect-wa.js")}

	session.reinject(page)
	require.Len(t, page.injected, 1)
	assert.Equal(t, "/tmp/wppconnect-wa.js", *page.injected[0].Path)

	present = true
	session.reinject(page)
	assert.Len(t, page.injected, 1)
}

func TestReinjectWithoutScriptIsNoop(t *testing.T) {
	page := &fakePage{evaluate: func(string, ...interface{}) (interface{}, error) {
		t.Fatal("page evaluated without a script to inject")
		return nil, nil
	}}
	sessionWith(page).reinject(page)
	assert.Empty(t, page.injected)
}

func TestEnsureAPIInjectsWhenCheckFails(t *testing.T) {
	page := &fakePage{evaluate: func(string, ...interface{}) (interface{}, error) {
		return nil, errors.New("Execution context was destroyed")
	}}
	tag := playwright.PageAddScriptTagOptions{URL: playwright.String("https://example.test/wa.js")}

	require.NoError(t, sessionWith(page).ensureAPI(page, tag))
	require.Len(t, page.injected, 1)
	assert.Equal(t, "https://example.test/wa.js", *page.injected[0].URL)
}

// TestBrowserIntegration drives a real Chromium. It needs the Playwright
// driver and is opt-in through WPPGO_BROWSER_TESTS=1.
func TestBrowserIntegration(t *testing.T) {
	if testing.Short() || os.Getenv("WPPGO_BROWSER_TESTS") == "" {
		t.Skip("set WPPGO_BROWSER_TESTS=1 to run browser integration tests")
	}

	m := NewSessionManager()
	require.NoError(t, m.Initialize())
	defer m.Shutdown()

	session, err := m.StartSession("", SessionOptions{Headless: true, UserDataDir: t.TempDir()})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	script := t.TempDir() + "/wpp.js"
	require.NoError(t, os.WriteFile(script, []byte(`window.WPP = { conn: { isRegistered: () => false } };`), 0600))
	require.NoError(t, session.Open(ctx, OpenOptions{URL: "data:text/html,<div class=app></div>", ScriptPath: script}))

	b := session.Bridge()
	registered, err := bridge.Call[bool](ctx, b, bridge.Op("conn.isRegistered", "wpp => wpp.conn.isRegistered()"), nil)
	require.NoError(t, err)
	assert.False(t, registered)

	appShell := bridge.Op("dom.app", "() => !!document.querySelector('.app')")
	appShell.Standalone = true
	_, err = b.WaitFor(ctx, appShell, nil, bridge.WaitOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)

	_, err = session.currentPage().Reload()
	require.NoError(t, err)
	apiLoaded := bridge.Op("api.loaded", "() => typeof window.WPP !== 'undefined'")
	apiLoaded.Standalone = true
	_, err = b.WaitFor(ctx, apiLoaded, nil, bridge.WaitOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)
	registered, err = bridge.Call[bool](ctx, b, bridge.Op("conn.isRegistered", "wpp => wpp.conn.isRegistered()"), nil)
	require.NoError(t, err)
	assert.False(t, registered)

	require.NoError(t, m.CloseSession(session.Name))
	_, err = b.Invoke(ctx, bridge.Op("conn.isRegistered", "wpp => wpp.conn.isRegistered()"), nil)
	assert.True(t, bridge.IsUnreachable(err))
}
