package kiosk

import (
	"context"
	"errors"
	"time"
)

// DefaultMaxDrift is the largest tolerated difference between the local clock
// and the time authority.
const DefaultMaxDrift = 60 * time.Second

// TimeAuthority reports authoritative wall-clock time.
// Implementations return an error wrapping ErrTimeAuthorityUnavailable when unreachable.
type TimeAuthority interface {
	Now(ctx context.Context) (time.Time, error)
}

// TimeVerifier checks the local clock before a login is allowed.
type TimeVerifier struct {
	authority TimeAuthority
	clock     Clock
	maxDrift  time.Duration
	logger    Logger
}

// NewTimeVerifier creates a verifier. A nil authority disables the check.
func NewTimeVerifier(authority TimeAuthority, clock Clock, maxDrift time.Duration, logger Logger) *TimeVerifier {
	if maxDrift <= 0 {
		maxDrift = DefaultMaxDrift
	}
	return &TimeVerifier{authority: authority, clock: clock, maxDrift: maxDrift, logger: logger}
}

// Verify returns ErrTimeDriftExceeded when the local clock differs from the
// authority by more than the allowed drift. Any failure to reach the
// authority is treated as a valid clock.
func (v *TimeVerifier) Verify(ctx context.Context) error {
	if v.authority == nil {
		return nil
	}

	authoritative, err := v.authority.Now(ctx)
	if err != nil {
		if !errors.Is(err, ErrTimeAuthorityUnavailable) {
			v.logger.Warn("time authority query failed", "error", err)
		} else {
			v.logger.Info("time authority unavailable, assuming local time is valid", "error", err)
		}
		return nil
	}

	drift := authoritative.Sub(v.clock.Now())
	if drift < 0 {
		drift = -drift
	}
	if drift > v.maxDrift {
		v.logger.Warn("local clock drift exceeded", "drift", drift.String(), "max", v.maxDrift.String())
		return ErrTimeDriftExceeded
	}

	v.logger.Debug("local clock verified", "drift", drift.String())
	return nil
}
