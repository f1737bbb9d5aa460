package settings

import (
	"context"
	"time"
)

// DefaultWatchInterval is how often Watch polls for edits.
const DefaultWatchInterval = time.Second

func (s *Store) version(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(updated_at), 0) FROM preferences`).Scan(&v)
	return v, err
}

// Watch blocks until ctx is cancelled, polling the preferences table. When
// another writer (the settings command) saves new values, fn receives the
// freshly loaded Settings. A failed poll is logged and retried on the next
// tick.
func (s *Store) Watch(ctx context.Context, interval time.Duration, fn func(Settings)) {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	seen, err := s.version(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "settings: initial version check failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur, err := s.version(ctx)
			if err != nil {
				s.logger.WarnContext(ctx, "settings: version check failed", "error", err)
				continue
			}
			if cur == seen {
				continue
			}
			seen = cur
			s.logger.InfoContext(ctx, "settings: reloading", "version", cur)
			fn(s.Load(ctx))
		}
	}
}
