package app

import (
	"context"
	"sync"
	"time"

	"kiosk-go/internal/kiosk"
)

// EventLoop runs callbacks one at a time on the goroutine that calls Run.
// Timers and console input post into it, so the controller never sees
// concurrent calls.
type EventLoop struct {
	tasks    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewEventLoop creates a loop. Callbacks posted before Run are kept until it starts.
func NewEventLoop() *EventLoop {
	return &EventLoop{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// After queues fn to run on the loop once d has elapsed. It never blocks.
func (l *EventLoop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { l.Post(fn) })
}

// Post queues fn to run on the loop. It blocks while the queue is full and
// returns false once the loop has stopped.
func (l *EventLoop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run executes posted callbacks until ctx is cancelled. Callbacks still
// queued at that point are dropped.
func (l *EventLoop) Run(ctx context.Context) {
	defer l.stopOnce.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Compile-time check that EventLoop implements kiosk.Scheduler interface
var _ kiosk.Scheduler = (*EventLoop)(nil)
