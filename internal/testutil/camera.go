package testutil

import (
	"kiosk-go/internal/kiosk"
)

// FakeCamera replays queued frames, one per ReadFrame. When the queue is
// empty it repeats Idle if set, and otherwise reports no frame.
type FakeCamera struct {
	queue  []kiosk.Frame
	Idle   *kiosk.Frame
	Err    error
	Reads  int
	Closed bool
}

func NewFakeCamera() *FakeCamera {
	return &FakeCamera{}
}

// Push queues frames for subsequent reads.
func (c *FakeCamera) Push(frames ...kiosk.Frame) {
	c.queue = append(c.queue, frames...)
}

func (c *FakeCamera) ReadFrame() (kiosk.Frame, bool, error) {
	c.Reads++
	if c.Err != nil {
		return kiosk.Frame{}, false, c.Err
	}
	if len(c.queue) > 0 {
		f := c.queue[0]
		c.queue = c.queue[1:]
		return f, true, nil
	}
	if c.Idle != nil {
		return *c.Idle, true, nil
	}
	return kiosk.Frame{}, false, nil
}

func (c *FakeCamera) Close() error {
	c.Closed = true
	return nil
}

// Compile-time check that FakeCamera implements kiosk.Camera interface
var _ kiosk.Camera = (*FakeCamera)(nil)
