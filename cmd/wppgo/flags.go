package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/entrhq/wppgo/pkg/config"
)

// Options holds the command line options
type Options struct {
	ConfigPath    string
	Session       string
	Headless      bool
	DetectTimeout time.Duration
	CopyCode      bool
	Participants  string
	Filter        string
	InitConfig    bool
	ShowVersion   bool

	// set records which flags were given explicitly, so only those
	// override the config file and environment.
	set map[string]bool
}

// parseFlags parses args into Options using fs
func parseFlags(fs *flag.FlagSet, args []string) (*Options, error) {
	opts := &Options{set: make(map[string]bool)}

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to the configuration file (default ~/.wppgo/config.yaml)")
	fs.StringVar(&opts.Session, "session", "default", "Session name; each session keeps its own browser profile")
	fs.BoolVar(&opts.Headless, "headless", false, "Run the browser headless and print progress instead of the TUI")
	fs.DurationVar(&opts.DetectTimeout, "detect-timeout", 0, "Give up if the session is not connected within this duration (0 waits forever)")
	fs.BoolVar(&opts.CopyCode, "copy-code", false, "Copy each new pairing code to the clipboard")
	fs.StringVar(&opts.Participants, "community-participants", "", "After login, print the participants of this community as JSON")
	fs.StringVar(&opts.Filter, "filter", "", "Glob pattern applied to participant ids (with -community-participants)")
	fs.BoolVar(&opts.InitConfig, "init-config", false, "Write a default configuration file and exit")
	fs.BoolVar(&opts.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "wppgo - WhatsApp Web session runner\n\n")
		fmt.Fprintf(out, "Usage: wppgo [options]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nEnvironment Variables:\n")
		fmt.Fprintf(out, "  WPPGO_HEADLESS        Run the browser headless (true/false)\n")
		fmt.Fprintf(out, "  WPPGO_USER_DATA_DIR   Browser profile directory\n")
		fmt.Fprintf(out, "  WPPGO_DETECT_TIMEOUT  Login timeout, e.g. 5m\n")
		fmt.Fprintf(out, "  WPPGO_LOG_DIR         Directory for debug logs\n")
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  wppgo                                     # Pair or resume the default session\n")
		fmt.Fprintf(out, "  wppgo -session work -copy-code\n")
		fmt.Fprintf(out, "  wppgo -headless -detect-timeout 2m\n")
		fmt.Fprintf(out, "  wppgo -community-participants 1203630@g.us -filter '55*'\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// validate checks that the options are consistent
func (o *Options) validate() error {
	if o.Session == "" {
		return fmt.Errorf("-session must not be empty")
	}
	if o.DetectTimeout < 0 {
		return fmt.Errorf("-detect-timeout cannot be negative")
	}
	if o.Filter != "" && o.Participants == "" {
		return fmt.Errorf("-filter requires -community-participants")
	}
	return nil
}

// apply overrides cfg with explicitly given flags and revalidates it
func (o *Options) apply(cfg *config.Config) error {
	if o.set["headless"] {
		cfg.Browser.Headless = o.Headless
	}
	if o.set["detect-timeout"] {
		cfg.Detection.Timeout = o.DetectTimeout
	}
	return cfg.Validate()
}
