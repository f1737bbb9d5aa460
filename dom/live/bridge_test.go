package live

import (
	"testing"

	"github.com/hazyhaar/passmed2anki/engine"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		payload string
		want    engine.Event
		ok      bool
	}{
		{`{"kind":"mutation"}`, engine.Event{Kind: engine.EventMutation}, true},
		{`{"kind":"navigate"}`, engine.Event{Kind: engine.EventNavigate}, true},
		{`{"kind":"activate"}`, engine.Event{Kind: engine.EventActivate}, true},
		{`{"kind":"message","data":{"__passmed2anki":{"debug":true}}}`, engine.Event{Kind: engine.EventDebug, Debug: true}, true},
		{`{"kind":"message","data":{"__passmed2anki":{"debug":false}}}`, engine.Event{Kind: engine.EventDebug}, true},
		{`{"kind":"message","data":{"__passmed2anki":{"debug":1}}}`, engine.Event{}, false},
		{`{"kind":"message"}`, engine.Event{}, false},
		{`{"kind":"reload"}`, engine.Event{}, false},
		{`garbage`, engine.Event{}, false},
	}
	for _, tt := range tests {
		got, ok := Translate(tt.payload)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s: got (%+v, %v), want (%+v, %v)", tt.payload, got, ok, tt.want, tt.ok)
		}
	}
}
