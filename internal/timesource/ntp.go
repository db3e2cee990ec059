package timesource

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"

	"kiosk-go/internal/kiosk"
)

// DefaultTimeout bounds a single NTP query.
const DefaultTimeout = 5 * time.Second

// NTPAuthority reports network time from an NTP server.
type NTPAuthority struct {
	server  string
	timeout time.Duration
	query   func(server string, opts ntp.QueryOptions) (*ntp.Response, error)
}

// NewNTPAuthority creates an authority querying server.
func NewNTPAuthority(server string, timeout time.Duration) *NTPAuthority {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &NTPAuthority{server: server, timeout: timeout, query: ntp.QueryWithOptions}
}

// Now returns the server's time corrected for the local clock offset.
// Any network or protocol failure wraps kiosk.ErrTimeAuthorityUnavailable.
func (a *NTPAuthority) Now(ctx context.Context) (time.Time, error) {
	timeout := a.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return time.Time{}, fmt.Errorf("%w: %v", kiosk.ErrTimeAuthorityUnavailable, context.DeadlineExceeded)
	}

	resp, err := a.query(a.server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: querying %s: %v", kiosk.ErrTimeAuthorityUnavailable, a.server, err)
	}
	if err := resp.Validate(); err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", kiosk.ErrTimeAuthorityUnavailable, a.server, err)
	}

	return time.Now().Add(resp.ClockOffset), nil
}

// Compile-time check that NTPAuthority implements kiosk.TimeAuthority interface
var _ kiosk.TimeAuthority = (*NTPAuthority)(nil)
