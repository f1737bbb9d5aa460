// Package anki holds the AnkiConnect note request shapes and the export
// relay that forwards them to a local AnkiConnect endpoint.
package anki

// AnkiConnect protocol constants.
const (
	ActionAddNote = "addNote"
	ActionVersion = "version"
	APIVersion    = 6
)

// NoteRequest is the addNote call sent to AnkiConnect.
type NoteRequest struct {
	Action  string     `json:"action"`
	Version int        `json:"version"`
	Params  NoteParams `json:"params"`
}

// NoteParams wraps the note.
type NoteParams struct {
	Note Note `json:"note"`
}

// Note is one flashcard.
type Note struct {
	DeckName  string      `json:"deckName"`
	ModelName string      `json:"modelName"`
	Fields    Fields      `json:"fields"`
	Tags      []string    `json:"tags"`
	Options   NoteOptions `json:"options"`
}

// Fields are the Basic note type fields.
type Fields struct {
	Front string `json:"Front"`
	Back  string `json:"Back"`
}

// NoteOptions controls AnkiConnect duplicate handling.
type NoteOptions struct {
	AllowDuplicate bool `json:"allowDuplicate"`
}

// NewAddNote wraps note in an addNote request. Duplicates are refused.
func NewAddNote(note Note) *NoteRequest {
	note.Options.AllowDuplicate = false
	return &NoteRequest{
		Action:  ActionAddNote,
		Version: APIVersion,
		Params:  NoteParams{Note: note},
	}
}
