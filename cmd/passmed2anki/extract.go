package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/passmed2anki/anki"
	"github.com/hazyhaar/passmed2anki/dom/htmldoc"
	"github.com/hazyhaar/passmed2anki/engine"
	"github.com/hazyhaar/passmed2anki/internal/config"
	"github.com/hazyhaar/passmed2anki/preview"
)

func extractCmd(a *app) *cobra.Command {
	var send, asJSON bool
	cmd := &cobra.Command{
		Use:   "extract <page.html>",
		Short: "Run one detection pass over a saved quiz page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}
			doc, err := htmldoc.Parse(f)
			f.Close()
			if err != nil {
				return err
			}

			store, prefs := a.openPrefs(ctx, cfg.Store.Path)
			if store != nil {
				store.Close()
			}

			cc := controllerConfig(cfg, a)
			ctrl := engine.NewController(doc, cc)
			p := preview.Collect(ctx, doc, ctrl, cc.Builder, prefs)

			out := cmd.OutOrStdout()
			if asJSON {
				if p.Request == nil {
					return p.BuildErr
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(p.Request); err != nil {
					return err
				}
			} else {
				md, err := preview.NewRenderer(cfg.Page.URL).Markdown(p)
				if err != nil {
					return err
				}
				fmt.Fprint(out, md)
			}

			if !send {
				return nil
			}
			resp := ctrl.Export(ctx, newRelay(cfg, a), prefs)
			if !resp.OK {
				return errors.New("extract: export: " + resp.Error)
			}
			fmt.Fprintf(out, "saved to Anki: note %s\n", resp.Result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&send, "send", false, "export the note to AnkiConnect")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the addNote request instead of the Markdown preview")
	return cmd
}

func controllerConfig(cfg *config.Config, a *app) engine.ControllerConfig {
	cc := engine.ControllerConfig{
		Heuristics: cfg.Heuristics,
		Logger:     a.logger,
	}
	if cfg.Relay.Sanitize {
		cc.Builder = engine.SanitizingBuilder()
	}
	return cc
}

func newRelay(cfg *config.Config, a *app) *anki.Relay {
	client := anki.NewClient(cfg.Relay.Endpoint,
		anki.WithTimeout(cfg.Relay.Timeout),
		anki.WithLogger(a.logger),
	)
	return anki.NewRelay(client, a.logger)
}
