// Package idgen produces the identifiers attached to watch sessions and
// control API requests.
package idgen

import (
	"time"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns RFC 9562 UUID v7 strings: time-sortable, so session ids
// in the logs order by start time.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends prefix to every id of gen.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Generators in use.
var (
	Session = Prefixed("sess_", UUIDv7())
	Request = Prefixed("req_", UUIDv7())
)

// SessionTime extracts the creation time of a session id. ok is false for
// ids that are not prefixed UUIDv7s.
func SessionTime(id string) (time.Time, bool) {
	const prefix = "sess_"
	if len(id) <= len(prefix) || id[:len(prefix)] != prefix {
		return time.Time{}, false
	}
	u, err := uuid.Parse(id[len(prefix):])
	if err != nil || u.Version() != 7 {
		return time.Time{}, false
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec), true
}
