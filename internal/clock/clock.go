// Package clock abstracts timers so debounce behaviour can be driven by a
// fake clock in tests.
package clock

import (
	"sync"
	"time"
)

// Clock creates timers.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

// Timer is the subset of *time.Timer the scheduler needs.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// Real returns the wall clock.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTimer(d time.Duration) Timer { return realTimer{time.NewTimer(d)} }

type realTimer struct{ t *time.Timer }

func (r realTimer) C() <-chan time.Time { return r.t.C }
func (r realTimer) Stop() bool          { return r.t.Stop() }

// Fake is a manually advanced clock. Timers fire synchronously inside
// Advance, each delivering at most one value on a buffered channel.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

// NewFake returns a fake clock starting at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) NewTimer(d time.Duration) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{
		fake:     f,
		deadline: f.now.Add(d),
		ch:       make(chan time.Time, 1),
	}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward and fires every armed timer whose
// deadline has been reached.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)

	armed := f.timers[:0]
	for _, t := range f.timers {
		if t.stopped {
			continue
		}
		if !t.deadline.After(f.now) {
			t.stopped = true
			t.ch <- f.now
			continue
		}
		armed = append(armed, t)
	}
	f.timers = armed
}

// Pending reports how many timers are armed.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type fakeTimer struct {
	fake     *Fake
	deadline time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) Stop() bool {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}
