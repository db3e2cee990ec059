package testutil

import (
	"context"
	"time"

	"kiosk-go/internal/kiosk"
)

// StubAuthority is a TimeAuthority returning a fixed offset from a clock, or Err.
type StubAuthority struct {
	Clock  kiosk.Clock
	Offset time.Duration
	Err    error
	Calls  int
}

func (a *StubAuthority) Now(context.Context) (time.Time, error) {
	a.Calls++
	if a.Err != nil {
		return time.Time{}, a.Err
	}
	return a.Clock.Now().Add(a.Offset), nil
}

// Compile-time check that StubAuthority implements kiosk.TimeAuthority interface
var _ kiosk.TimeAuthority = (*StubAuthority)(nil)
