package testutil

import (
	"time"

	"kiosk-go/internal/kiosk"
)

type scheduled struct {
	due time.Time
	seq int
	fn  func()
}

// ManualScheduler runs callbacks only when the test advances time.
// It drives a StubClock so that callbacks observe their due time.
type ManualScheduler struct {
	clock *StubClock
	queue []scheduled
	seq   int
}

// NewManualScheduler creates a scheduler driving clock.
func NewManualScheduler(clock *StubClock) *ManualScheduler {
	return &ManualScheduler{clock: clock}
}

func (s *ManualScheduler) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	s.seq++
	s.queue = append(s.queue, scheduled{due: s.clock.Now().Add(d), seq: s.seq, fn: fn})
}

// Advance moves the clock forward by d, running every callback that falls
// due on the way in due-time order. Callbacks scheduled by callbacks run too
// if they fall within the window. The clock never moves backwards, so a test
// may Set it ahead between Advances.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.clock.Now().Add(d)
	for {
		i, ok := s.next(target)
		if !ok {
			break
		}
		item := s.queue[i]
		s.queue = append(s.queue[:i], s.queue[i+1:]...)
		if item.due.After(s.clock.Now()) {
			s.clock.Set(item.due)
		}
		item.fn()
	}
	s.clock.Set(target)
}

// Pending returns the number of callbacks waiting to run.
func (s *ManualScheduler) Pending() int {
	return len(s.queue)
}

func (s *ManualScheduler) next(limit time.Time) (int, bool) {
	best := -1
	for i, item := range s.queue {
		if item.due.After(limit) {
			continue
		}
		if best < 0 || item.due.Before(s.queue[best].due) ||
			(item.due.Equal(s.queue[best].due) && item.seq < s.queue[best].seq) {
			best = i
		}
	}
	return best, best >= 0
}

// Compile-time check that ManualScheduler implements kiosk.Scheduler interface
var _ kiosk.Scheduler = (*ManualScheduler)(nil)
