package engine

import "encoding/json"

// DebugMarker is the envelope key of debug control messages:
// {"__passmed2anki":{"debug":true}}.
const DebugMarker = "__passmed2anki"

// ParseDebugMessage extracts the debug flag. ok is false for anything that
// is not an object carrying the marker with a boolean debug field.
func ParseDebugMessage(raw []byte) (debug, ok bool) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil || env == nil {
		return false, false
	}
	body, found := env[DebugMarker]
	if !found {
		return false, false
	}
	var ctl struct {
		Debug *bool `json:"debug"`
	}
	if err := json.Unmarshal(body, &ctl); err != nil || ctl.Debug == nil {
		return false, false
	}
	return *ctl.Debug, true
}
