// Package config loads wppgo settings from a YAML file, environment
// variables and defaults, in that order of precedence after CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultWhatsAppURL is the page the session opens.
	DefaultWhatsAppURL = "https://web.whatsapp.com/"

	// DefaultAPIScriptURL is the published wa-js bundle injected as window.WPP.
	DefaultAPIScriptURL = "https://github.com/wppconnect-team/wa-js/releases/latest/download/wppconnect-wa.js"

	defaultViewportWidth  = 1280
	defaultViewportHeight = 720
	defaultTimeout        = 30 * time.Second
	defaultPollInterval   = 100 * time.Millisecond

	minPollInterval = 10 * time.Millisecond
	maxPollInterval = 5 * time.Second
)

// Config is the full wppgo configuration.
type Config struct {
	Browser   BrowserConfig   `yaml:"browser" json:"browser"`
	WhatsApp  WhatsAppConfig  `yaml:"whatsapp" json:"whatsapp"`
	Detection DetectionConfig `yaml:"detection" json:"detection"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// BrowserConfig controls the browser that hosts the session.
type BrowserConfig struct {
	Headless bool `yaml:"headless" json:"headless"`

	// UserDataDir holds the persistent profile. Empty means
	// ~/.wppgo/profiles/<session>.
	UserDataDir string `yaml:"user_data_dir" json:"user_data_dir"`

	Viewport ViewportConfig `yaml:"viewport" json:"viewport"`

	// Timeout is the default timeout for browser operations.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// ViewportConfig is the page size.
type ViewportConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// WhatsAppConfig locates the web client and the in-page API bundle.
type WhatsAppConfig struct {
	URL           string `yaml:"url" json:"url"`
	APIScriptPath string `yaml:"api_script_path" json:"api_script_path"`
	APIScriptURL  string `yaml:"api_script_url" json:"api_script_url"`
}

// DetectionConfig tunes connection phase detection.
type DetectionConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"`

	// Timeout bounds phase detection. Zero waits indefinitely.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls logging level: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			Viewport: ViewportConfig{Width: defaultViewportWidth, Height: defaultViewportHeight},
			Timeout:  defaultTimeout,
		},
		WhatsApp: WhatsAppConfig{
			URL: DefaultWhatsAppURL,
		},
		Detection: DetectionConfig{
			PollInterval: defaultPollInterval,
		},
		Logging: LoggingConfig{Verbosity: "normal"},
	}
}

// DefaultPath returns ~/.wppgo/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".wppgo", "config.yaml"), nil
}

// Load reads path (DefaultPath when empty), applies environment overrides
// and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from WPPGO_* variables looked up with lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("WPPGO_HEADLESS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("WPPGO_HEADLESS: %w", err)
		}
		c.Browser.Headless = b
	}
	if v, ok := lookup("WPPGO_USER_DATA_DIR"); ok && v != "" {
		c.Browser.UserDataDir = v
	}
	if v, ok := lookup("WPPGO_DETECT_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WPPGO_DETECT_TIMEOUT: %w", err)
		}
		c.Detection.Timeout = d
	}
	return nil
}

// fillDefaults restores defaults for zero values a file left blank.
func (c *Config) fillDefaults() {
	if c.Browser.Viewport.Width == 0 {
		c.Browser.Viewport.Width = defaultViewportWidth
	}
	if c.Browser.Viewport.Height == 0 {
		c.Browser.Viewport.Height = defaultViewportHeight
	}
	if c.Browser.Timeout == 0 {
		c.Browser.Timeout = defaultTimeout
	}
	if c.WhatsApp.URL == "" {
		c.WhatsApp.URL = DefaultWhatsAppURL
	}
	if c.Detection.PollInterval == 0 {
		c.Detection.PollInterval = defaultPollInterval
	}
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Browser.Viewport.Width < 0 || c.Browser.Viewport.Height < 0 {
		return fmt.Errorf("browser.viewport must not be negative")
	}
	if c.Browser.Timeout < 0 {
		return fmt.Errorf("browser.timeout cannot be negative")
	}

	if !strings.HasPrefix(c.WhatsApp.URL, "http://") && !strings.HasPrefix(c.WhatsApp.URL, "https://") {
		return fmt.Errorf("whatsapp.url must be an http(s) URL, got %q", c.WhatsApp.URL)
	}
	if c.WhatsApp.APIScriptPath != "" && c.WhatsApp.APIScriptURL != "" {
		return fmt.Errorf("whatsapp.api_script_path and whatsapp.api_script_url are mutually exclusive")
	}

	if c.Detection.PollInterval < minPollInterval || c.Detection.PollInterval > maxPollInterval {
		return fmt.Errorf("detection.poll_interval must be between %s and %s, got %s", minPollInterval, maxPollInterval, c.Detection.PollInterval)
	}
	if c.Detection.Timeout < 0 {
		return fmt.Errorf("detection.timeout cannot be negative")
	}

	switch c.Logging.Verbosity {
	case "quiet", "normal", "verbose", "debug":
	default:
		return fmt.Errorf("invalid logging.verbosity: %s (must be quiet, normal, verbose or debug)", c.Logging.Verbosity)
	}

	return nil
}

// APIScript returns the in-page API source location: a file path when set,
// otherwise a URL (DefaultAPIScriptURL when neither is configured).
func (c *Config) APIScript() (path, url string) {
	if c.WhatsApp.APIScriptPath != "" {
		return c.WhatsApp.APIScriptPath, ""
	}
	if c.WhatsApp.APIScriptURL != "" {
		return "", c.WhatsApp.APIScriptURL
	}
	return "", DefaultAPIScriptURL
}

// ProfileDir returns the browser profile directory for session.
func (c *Config) ProfileDir(session string) (string, error) {
	if c.Browser.UserDataDir != "" {
		return c.Browser.UserDataDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".wppgo", "profiles", session), nil
}
