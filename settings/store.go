package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/passmed2anki/internal/dbopen"
)

// Schema for the preferences table. One row per key.
const Schema = `
CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

const (
	keyDeckName = "deckName"
	keyNoteType = "noteType"
	keyTags     = "tags"
)

// Store reads and writes Settings in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore wraps an open database. The schema must already be applied
// (dbopen.WithSchema(settings.Schema)).
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Open opens the preference database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return NewStore(db, logger), nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Load returns the normalised preferences. Storage failures are logged and
// yield the defaults; Load never fails.
func (s *Store) Load(ctx context.Context) Settings {
	if s == nil {
		return Defaults()
	}
	raw, err := s.read(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "settings: load failed, using defaults", "error", err)
		return Defaults()
	}
	return raw.Normalize()
}

func (s *Store) read(ctx context.Context) (Settings, error) {
	if s.db == nil {
		return Settings{}, errors.New("no database")
	}
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return Settings{}, err
	}
	defer rows.Close()

	var out Settings
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Settings{}, err
		}
		switch k {
		case keyDeckName:
			out.DeckName = v
		case keyNoteType:
			out.NoteType = v
		case keyTags:
			out.Tags = v
		}
	}
	return out, rows.Err()
}

// Save writes the trimmed values. Blank fields are stored blank and read
// back as defaults, matching what the options form submits.
func (s *Store) Save(ctx context.Context, in Settings) error {
	now := time.Now().UnixMilli()
	values := map[string]string{
		keyDeckName: strings.TrimSpace(in.DeckName),
		keyNoteType: strings.TrimSpace(in.NoteType),
		keyTags:     strings.TrimSpace(in.Tags),
	}
	err := dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		for k, v := range values {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`, k, v, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	s.logger.InfoContext(ctx, "settings: saved", "deck", values[keyDeckName], "note_type", values[keyNoteType])
	return nil
}
