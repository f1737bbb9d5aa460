package live

import (
	"context"
	"encoding/json"

	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/passmed2anki/engine"
)

// bridgeMessage is one call of the runtime binding.
type bridgeMessage struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Translate maps a binding payload to an engine event. ok is false for
// payloads the engine ignores, including window messages that are not a
// well-formed debug toggle.
func Translate(payload string) (engine.Event, bool) {
	var msg bridgeMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return engine.Event{}, false
	}
	switch msg.Kind {
	case "mutation":
		return engine.Event{Kind: engine.EventMutation}, true
	case "navigate":
		return engine.Event{Kind: engine.EventNavigate}, true
	case "activate":
		return engine.Event{Kind: engine.EventActivate}, true
	case "message":
		debug, ok := engine.ParseDebugMessage(msg.Data)
		if !ok {
			return engine.Event{}, false
		}
		return engine.Event{Kind: engine.EventDebug, Debug: debug}, true
	}
	return engine.Event{}, false
}

// Listen forwards bridge calls to post until ctx is cancelled. Page loads
// are forwarded as navigation so a fresh document is evaluated.
func (d *Document) Listen(ctx context.Context, post func(engine.Event)) {
	d.page.Context(ctx).EachEvent(
		func(e *proto.RuntimeBindingCalled) {
			if e.Name != BindingName {
				return
			}
			if ev, ok := Translate(e.Payload); ok {
				post(ev)
			}
		},
		func(e *proto.PageLoadEventFired) {
			post(engine.Event{Kind: engine.EventNavigate})
		},
	)()
}
