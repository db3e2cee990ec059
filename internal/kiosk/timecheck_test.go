package kiosk_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"kiosk-go/internal/kiosk"
	"kiosk-go/internal/testutil"
)

func TestTimeVerifier_Verify(t *testing.T) {
	clock := testutil.FixedClock()

	tests := []struct {
		name      string
		authority kiosk.TimeAuthority
		wantErr   error
	}{
		{name: "no authority", authority: nil},
		{name: "in sync", authority: &testutil.StubAuthority{Clock: clock}},
		{name: "within drift", authority: &testutil.StubAuthority{Clock: clock, Offset: 30 * time.Second}},
		{name: "exactly max drift", authority: &testutil.StubAuthority{Clock: clock, Offset: 60 * time.Second}},
		{name: "90s ahead", authority: &testutil.StubAuthority{Clock: clock, Offset: 90 * time.Second}, wantErr: kiosk.ErrTimeDriftExceeded},
		{name: "90s behind", authority: &testutil.StubAuthority{Clock: clock, Offset: -90 * time.Second}, wantErr: kiosk.ErrTimeDriftExceeded},
		{
			name:      "authority unreachable",
			authority: &testutil.StubAuthority{Err: fmt.Errorf("%w: dial udp: timeout", kiosk.ErrTimeAuthorityUnavailable)},
		},
		{
			name:      "authority broken",
			authority: &testutil.StubAuthority{Err: errors.New("malformed reply")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := kiosk.NewTimeVerifier(tt.authority, clock, kiosk.DefaultMaxDrift, kiosk.NewNopLogger())
			err := v.Verify(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
