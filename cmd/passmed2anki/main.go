// Command passmed2anki watches the Passmedicine quiz page and exports
// answered questions to Anki through AnkiConnect.
//
// Usage:
//
//	passmed2anki watch -config passmed2anki.yaml   # drive a Chrome tab
//	passmed2anki extract page.html --send          # one pass over a saved page
//	passmed2anki settings set --deck Cardiology    # export preferences
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/passmed2anki/internal/config"
)

// app carries the persistent flags and the process logger.
type app struct {
	configPath string
	logLevel   string
	storePath  string

	level  *slog.LevelVar
	logger *slog.Logger
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "passmed2anki",
		Short:         "Export answered Passmedicine questions to Anki",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.level.Set(parseLevel(a.logLevel))
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to passmed2anki.yaml")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.storePath, "store", "", "preference database (overrides config)")

	root.AddCommand(watchCmd(a), extractCmd(a), settingsCmd(a))
	return root
}

func main() {
	a := &app{level: new(slog.LevelVar)}
	a.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: a.level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRoot(a).ExecuteContext(ctx); err != nil {
		a.logger.Error("passmed2anki: fatal", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig reads --config, or the defaults without one. --store wins
// over the file.
func (a *app) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(a.configPath); err != nil {
			return nil, err
		}
	}
	if a.storePath != "" {
		cfg.Store.Path = a.storePath
	}
	return cfg, nil
}
