package anki

import (
	"context"
	"encoding/json"
	"log/slog"
)

// KindExport is the only message kind the relay answers.
const KindExport = "EXPORT_REQUEST"

// Message is an inbound relay request.
type Message struct {
	Kind    string       `json:"kind"`
	Payload *NoteRequest `json:"payload"`
}

// Response is the relay answer: {ok:true,result} or {ok:false,error}.
type Response struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Relay forwards export requests to AnkiConnect and folds every failure
// into a Response. It never retries.
type Relay struct {
	client *Client
	logger *slog.Logger
}

// NewRelay creates a Relay over client.
func NewRelay(client *Client, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{client: client, logger: logger}
}

// Export sends one note request.
func (r *Relay) Export(ctx context.Context, req *NoteRequest) Response {
	if req == nil {
		return Response{Error: "Missing payload"}
	}
	result, err := r.client.Invoke(ctx, req)
	if err != nil {
		r.logger.WarnContext(ctx, "relay: export failed", "error", err)
		return Response{Error: err.Error()}
	}
	return Response{OK: true, Result: result}
}

// Handle answers a raw JSON message. The second return is false when the
// message is not an export request (malformed, another kind); such
// messages are ignored and get no answer.
func (r *Relay) Handle(ctx context.Context, raw []byte) ([]byte, bool) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, false
	}
	if msg.Kind != KindExport {
		return nil, false
	}
	out, err := json.Marshal(r.Export(ctx, msg.Payload))
	if err != nil {
		return nil, false
	}
	return out, true
}
