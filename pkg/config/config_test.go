package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"WPPGO_HEADLESS", "WPPGO_USER_DATA_DIR", "WPPGO_DETECT_TIMEOUT"} {
		t.Setenv(k, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultWhatsAppURL, cfg.WhatsApp.URL)
	assert.Equal(t, 100*time.Millisecond, cfg.Detection.PollInterval)
	assert.Equal(t, time.Duration(0), cfg.Detection.Timeout)
	assert.Equal(t, 1280, cfg.Browser.Viewport.Width)
	assert.Equal(t, 720, cfg.Browser.Viewport.Height)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
browser:
  headless: true
  user_data_dir: /tmp/profile
  timeout: 45s
whatsapp:
  api_script_path: ./wppconnect-wa.js
detection:
  poll_interval: 250ms
  timeout: 2m
logging:
  verbosity: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "/tmp/profile", cfg.Browser.UserDataDir)
	assert.Equal(t, 45*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, 1280, cfg.Browser.Viewport.Width, "unset fields keep defaults")
	assert.Equal(t, DefaultWhatsAppURL, cfg.WhatsApp.URL)
	assert.Equal(t, 250*time.Millisecond, cfg.Detection.PollInterval)
	assert.Equal(t, 2*time.Minute, cfg.Detection.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Verbosity)

	path2, url := cfg.APIScript()
	assert.Equal(t, "./wppconnect-wa.js", path2)
	assert.Empty(t, url)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "browser:\n  headless: false\n")
	t.Setenv("WPPGO_HEADLESS", "true")
	t.Setenv("WPPGO_USER_DATA_DIR", "/env/profile")
	t.Setenv("WPPGO_DETECT_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "/env/profile", cfg.Browser.UserDataDir)
	assert.Equal(t, 5*time.Second, cfg.Detection.Timeout)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeConfig(t, "browser: [not, a, map"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = Load(writeConfig(t, "logging:\n  verbosity: loud\n"))
	assert.ErrorContains(t, err, "invalid logging.verbosity")
}

func TestApplyEnvRejectsBadValues(t *testing.T) {
	cfg := Default()
	assert.ErrorContains(t, cfg.ApplyEnv(envMap(map[string]string{"WPPGO_HEADLESS": "maybe"})), "WPPGO_HEADLESS")
	assert.ErrorContains(t, cfg.ApplyEnv(envMap(map[string]string{"WPPGO_DETECT_TIMEOUT": "soon"})), "WPPGO_DETECT_TIMEOUT")
	require.NoError(t, cfg.ApplyEnv(noEnv))
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"non-http url", func(c *Config) { c.WhatsApp.URL = "file:///tmp/wa.html" }, "whatsapp.url"},
		{"both script sources", func(c *Config) {
			c.WhatsApp.APIScriptPath = "wa.js"
			c.WhatsApp.APIScriptURL = "https://example.com/wa.js"
		}, "mutually exclusive"},
		{"poll too fast", func(c *Config) { c.Detection.PollInterval = time.Millisecond }, "poll_interval"},
		{"poll too slow", func(c *Config) { c.Detection.PollInterval = 10 * time.Second }, "poll_interval"},
		{"poll at lower bound", func(c *Config) { c.Detection.PollInterval = 10 * time.Millisecond }, ""},
		{"negative detect timeout", func(c *Config) { c.Detection.Timeout = -time.Second }, "detection.timeout"},
		{"negative browser timeout", func(c *Config) { c.Browser.Timeout = -time.Second }, "browser.timeout"},
		{"negative viewport", func(c *Config) { c.Browser.Viewport.Width = -1 }, "viewport"},
		{"quiet verbosity", func(c *Config) { c.Logging.Verbosity = "quiet" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestAPIScriptDefaultsToPublishedBundle(t *testing.T) {
	path, url := Default().APIScript()
	assert.Empty(t, path)
	assert.Equal(t, DefaultAPIScriptURL, url)

	cfg := Default()
	cfg.WhatsApp.APIScriptURL = "https://example.com/wa.js"
	_, url = cfg.APIScript()
	assert.Equal(t, "https://example.com/wa.js", url)
}

func TestProfileDir(t *testing.T) {
	cfg := Default()
	dir, err := cfg.ProfileDir("work")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(dir, filepath.Join(".wppgo", "profiles", "work")), dir)

	cfg.Browser.UserDataDir = "/custom"
	dir, err = cfg.ProfileDir("work")
	require.NoError(t, err)
	assert.Equal(t, "/custom", dir)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Browser.Headless = true
	cfg.Detection.PollInterval = 500 * time.Millisecond
	require.NoError(t, Save(path, cfg))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not remain")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
