package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/passmed2anki/settings"
)

func settingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change export preferences",
	}
	cmd.AddCommand(settingsShowCmd(a), settingsSetCmd(a))
	return cmd
}

func (a *app) openStore() (*settings.Store, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return settings.Open(cfg.Store.Path, a.logger)
}

// openPrefs opens the preference store for a long-running command. A store
// that cannot be opened is not fatal: the returned store is nil and the
// preferences are the defaults.
func (a *app) openPrefs(ctx context.Context, path string) (*settings.Store, settings.Settings) {
	store, err := settings.Open(path, a.logger)
	if err != nil {
		a.logger.Warn("settings: store unavailable, using defaults", "path", path, "error", err)
		return nil, settings.Defaults()
	}
	return store, store.Load(ctx)
}

func settingsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(store.Load(cmd.Context()))
		},
	}
}

func settingsSetCmd(a *app) *cobra.Command {
	var deck, noteType, tags string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("deck") && !flags.Changed("note-type") && !flags.Changed("tags") {
				return fmt.Errorf("settings: nothing to set")
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			s := store.Load(cmd.Context())
			if flags.Changed("deck") {
				s.DeckName = deck
			}
			if flags.Changed("note-type") {
				s.NoteType = noteType
			}
			if flags.Changed("tags") {
				s.Tags = tags
			}
			if err := store.Save(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved: deck=%q note-type=%q tags=%q\n",
				s.Normalize().DeckName, s.Normalize().NoteType, s.Normalize().Tags)
			return nil
		},
	}
	cmd.Flags().StringVar(&deck, "deck", "", "target deck (blank restores the default)")
	cmd.Flags().StringVar(&noteType, "note-type", "", "note type (blank restores the default)")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	return cmd
}
