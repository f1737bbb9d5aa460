// Package browser starts or attaches to Chrome and opens the quiz tab.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Config configures the browser.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome, e.g. one
	// started with --remote-debugging-port and already logged in.
	// Empty launches a local Chrome.
	RemoteURL string

	// Headless launches Chrome without a window. Ignored for RemoteURL.
	Headless bool

	// Stealth opens tabs with the go-rod/stealth evasions.
	Stealth bool

	// ResourceBlocking lists resource types to block (images, fonts, media,
	// stylesheets).
	ResourceBlocking []string

	// NavigateTimeout bounds the initial navigation. Default: 30s.
	NavigateTimeout time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavigateTimeout <= 0 {
		c.NavigateTimeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Browser is a connected Chrome.
type Browser struct {
	cfg  Config
	rod  *rod.Browser
	lnch *launcher.Launcher
}

// Start launches Chrome, or connects to cfg.RemoteURL.
func Start(ctx context.Context, cfg Config) (*Browser, error) {
	cfg.defaults()
	log := cfg.Logger

	b := &Browser{cfg: cfg}
	wsURL := cfg.RemoteURL
	if wsURL != "" {
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Headless(cfg.Headless)
		// Anti-detection flag.
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		b.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "headless", cfg.Headless)
	}

	rb := rod.New().Context(ctx).ControlURL(wsURL)
	if err := rb.Connect(); err != nil {
		b.cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	b.rod = rb
	return b, nil
}

// Close disconnects, and kills Chrome when it was launched here.
func (b *Browser) Close() error {
	return b.cleanup()
}

func (b *Browser) cleanup() error {
	var err error
	if b.rod != nil && b.lnch != nil {
		err = b.rod.Close()
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
	b.rod = nil
	return err
}
