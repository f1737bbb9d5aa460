// Package debounce coalesces bursts of change notifications into a single
// evaluation after a quiet window.
//
// The Scheduler is not safe for concurrent use. It is owned by one event
// loop which calls Notify on every notification and selects on C.
package debounce

import (
	"time"

	"github.com/hazyhaar/passmed2anki/internal/clock"
)

// DefaultWindow is the quiet period before an evaluation runs.
const DefaultWindow = 250 * time.Millisecond

// Config controls the scheduler.
type Config struct {
	// Window is the quiet period. Default: 250ms.
	Window time.Duration
	// Clock drives the timers. Default: wall clock.
	Clock clock.Clock
}

func (c *Config) defaults() {
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.Clock == nil {
		c.Clock = clock.Real()
	}
}

// Scheduler holds at most one armed timer.
type Scheduler struct {
	cfg     Config
	timer   clock.Timer
	timerCh <-chan time.Time
	pending int
}

// New creates an idle Scheduler.
func New(cfg Config) *Scheduler {
	cfg.defaults()
	return &Scheduler{cfg: cfg}
}

// Notify cancels any pending evaluation and arms a new one for the full
// window.
func (s *Scheduler) Notify() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.cfg.Clock.NewTimer(s.cfg.Window)
	s.timerCh = s.timer.C()
	s.pending++
}

// C fires once when the window elapses without a new notification. It is
// nil while idle, which blocks forever inside a select.
func (s *Scheduler) C() <-chan time.Time {
	return s.timerCh
}

// Fired must be called after receiving from C. It returns how many
// notifications the evaluation coalesces and resets the scheduler to idle.
func (s *Scheduler) Fired() int {
	n := s.pending
	s.pending = 0
	s.timer = nil
	s.timerCh = nil
	return n
}

// Cancel drops any pending evaluation.
func (s *Scheduler) Cancel() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.Fired()
}

// Pending reports whether an evaluation is scheduled.
func (s *Scheduler) Pending() bool {
	return s.timerCh != nil
}
