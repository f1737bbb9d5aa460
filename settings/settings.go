// Package settings holds the export preferences (deck, note type, tags) and
// their SQLite-backed store.
package settings

import "strings"

// Defaults applied to blank or missing values.
const (
	DefaultDeckName = "Passmedicine"
	DefaultNoteType = "Basic"
	DefaultTags     = "passmedicine,passmed2anki"
)

// Settings are the user's export preferences. Tags is comma-separated.
type Settings struct {
	DeckName string `json:"deckName"`
	NoteType string `json:"noteType"`
	Tags     string `json:"tags"`
}

// Defaults returns the built-in preferences.
func Defaults() Settings {
	return Settings{
		DeckName: DefaultDeckName,
		NoteType: DefaultNoteType,
		Tags:     DefaultTags,
	}
}

// Normalize trims every field and replaces blank ones with the default.
func (s Settings) Normalize() Settings {
	d := Defaults()
	return Settings{
		DeckName: orDefault(s.DeckName, d.DeckName),
		NoteType: orDefault(s.NoteType, d.NoteType),
		Tags:     orDefault(s.Tags, d.Tags),
	}
}

// TagList splits Tags into trimmed, non-empty tags.
func (s Settings) TagList() []string {
	return ParseTags(s.Tags)
}

// ParseTags splits a comma-separated tag string, dropping blanks.
func ParseTags(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
