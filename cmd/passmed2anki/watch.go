package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/passmed2anki/anki"
	"github.com/hazyhaar/passmed2anki/control"
	"github.com/hazyhaar/passmed2anki/dom/live"
	"github.com/hazyhaar/passmed2anki/engine"
	"github.com/hazyhaar/passmed2anki/internal/browser"
	"github.com/hazyhaar/passmed2anki/internal/config"
	"github.com/hazyhaar/passmed2anki/internal/idgen"
)

func watchCmd(a *app) *cobra.Command {
	var pageURL, remote string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the quiz page in Chrome and offer an Add to Anki button",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if pageURL != "" {
				cfg.Page.URL = pageURL
			}
			if remote != "" {
				cfg.Browser.Remote = remote
			}
			return a.runWatch(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "quiz page URL (overrides config)")
	cmd.Flags().StringVar(&remote, "remote", "", "DevTools WebSocket URL of a running Chrome")
	return cmd
}

func (a *app) runWatch(ctx context.Context, cfg *config.Config) error {
	log := a.logger
	session := idgen.Session()

	store, prefs := a.openPrefs(ctx, cfg.Store.Path)
	if store != nil {
		defer store.Close()
	}

	relay := newRelay(cfg, a)
	if v, err := anki.NewClient(cfg.Relay.Endpoint, anki.WithTimeout(2*time.Second)).Version(ctx); err != nil {
		log.Warn("watch: AnkiConnect not reachable, exports will fail until it is", "endpoint", cfg.Relay.Endpoint, "error", err)
	} else {
		log.Info("watch: AnkiConnect ready", "version", v)
	}

	b, err := browser.Start(ctx, browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		Headless:         cfg.Browser.Headless,
		Stealth:          cfg.Browser.Stealth,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		Logger:           log,
	})
	if err != nil {
		return err
	}
	defer b.Close()

	tab, err := b.OpenTab(ctx, cfg.Page.URL)
	if err != nil {
		return err
	}

	doc := live.New(tab.Page, log).Context(ctx)
	if err := doc.Install(); err != nil {
		return err
	}

	eng := engine.New(doc, relay, engine.Config{
		Window:     cfg.Debounce.Window,
		Controller: controllerConfig(cfg, a),
		Settings:   prefs,
		Logger:     log,
		Level:      a.level,
		Debug:      cfg.Debug || a.logLevel == "debug",
		Session:    session,
	})

	if store != nil {
		go store.Watch(ctx, cfg.Store.WatchInterval, eng.SetSettings)
	}
	go doc.Listen(ctx, func(ev engine.Event) {
		if err := eng.Post(ctx, ev); err != nil && ctx.Err() == nil {
			log.Warn("watch: event dropped", "kind", ev.Kind.String(), "error", err)
		}
	})

	if cfg.Control.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Control.Addr,
			Handler:           control.New(eng, relay, log).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("watch: control API listening", "addr", cfg.Control.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("watch: control API", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info("watch: started", "session", session, "url", tab.PageURL)
	err = eng.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return fmt.Errorf("watch: %w", err)
}
