// Package main provides the wppgo command: it opens a WhatsApp Web session
// in Chromium, walks the user through pairing, and optionally runs a
// community query once connected.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/wppgo/pkg/bridge"
	"github.com/entrhq/wppgo/pkg/browser"
	"github.com/entrhq/wppgo/pkg/community"
	"github.com/entrhq/wppgo/pkg/config"
	"github.com/entrhq/wppgo/pkg/executor"
	"github.com/entrhq/wppgo/pkg/executor/headless"
	"github.com/entrhq/wppgo/pkg/executor/tui"
	"github.com/entrhq/wppgo/pkg/logging"
	"github.com/entrhq/wppgo/pkg/status"
)

const version = "0.1.0"

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if opts.ShowVersion {
		fmt.Printf("wppgo v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		cancel()
	}()

	runErr := run(ctx, opts)
	cancel()
	if runErr != nil && !errors.Is(runErr, tui.ErrAborted) && !errors.Is(runErr, context.Canceled) {
		log.Fatalf("Application error: %v", runErr)
	}
}

// run executes the main application logic
func run(ctx context.Context, opts *Options) error {
	if opts.InitConfig {
		return writeDefaultConfig(opts.ConfigPath)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Logging.Verbosity)
	if err != nil {
		return err
	}
	logging.SetLevel(level)

	manager := browser.NewSessionManager()
	if err := manager.Initialize(); err != nil {
		return err
	}
	defer manager.Shutdown()

	session, err := startSession(ctx, manager, cfg, opts.Session)
	if err != nil {
		return err
	}

	b := session.Bridge()
	login := &executor.Login{
		Bridge:   b,
		Detector: status.NewDetector(b, status.WithPollInterval(cfg.Detection.PollInterval)),
		Timeout:  cfg.Detection.Timeout,
	}

	if cfg.Browser.Headless {
		logger := headless.NewLogger(headless.ParseLogLevel(cfg.Logging.Verbosity))
		err = headless.NewExecutor(login, headless.Config{Session: session.Name, CopyCode: opts.CopyCode}, logger).Run(ctx)
	} else {
		err = tui.NewExecutor(login, session.Name, opts.CopyCode).Run(ctx)
	}
	if err != nil {
		return err
	}

	if opts.Participants != "" {
		return printParticipants(ctx, b, opts.Participants, opts.Filter)
	}
	return nil
}

func startSession(ctx context.Context, manager *browser.SessionManager, cfg *config.Config, name string) (*browser.Session, error) {
	profile, err := cfg.ProfileDir(name)
	if err != nil {
		return nil, err
	}

	session, err := manager.StartSession(name, browser.SessionOptions{
		Headless:    cfg.Browser.Headless,
		UserDataDir: profile,
		Viewport:    &browser.Viewport{Width: cfg.Browser.Viewport.Width, Height: cfg.Browser.Viewport.Height},
		Timeout:     cfg.Browser.Timeout,
	})
	if err != nil {
		return nil, err
	}

	scriptPath, scriptURL := cfg.APIScript()
	if err := session.Open(ctx, browser.OpenOptions{
		URL:        cfg.WhatsApp.URL,
		ScriptPath: scriptPath,
		ScriptURL:  scriptURL,
	}); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.WhatsApp.URL, err)
	}
	return session, nil
}

func printParticipants(ctx context.Context, inv bridge.Invoker, communityID, pattern string) error {
	wids, err := community.GetParticipants(ctx, inv, communityID)
	if err != nil {
		return err
	}
	if pattern != "" {
		if wids, err = community.FilterParticipants(wids, pattern); err != nil {
			return err
		}
	}
	return printJSON(os.Stdout, wids, isTerminal(os.Stdout))
}

func writeDefaultConfig(path string) error {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Printf("Wrote default configuration to %s\n", path)
	return nil
}
