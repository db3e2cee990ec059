package timesource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beevik/ntp"

	"kiosk-go/internal/config"
	"kiosk-go/internal/kiosk"
)

func TestNTPAuthority_Now(t *testing.T) {
	t.Run("applies clock offset", func(t *testing.T) {
		a := NewNTPAuthority("time.test", time.Second)
		a.query = func(server string, opts ntp.QueryOptions) (*ntp.Response, error) {
			if server != "time.test" {
				t.Errorf("server = %q, want %q", server, "time.test")
			}
			now := time.Now()
			return &ntp.Response{
				Time:           now,
				ReferenceTime:  now.Add(-time.Minute),
				ClockOffset:    90 * time.Second,
				Stratum:        2,
				Leap:           ntp.LeapNoWarning,
				RootDelay:      time.Millisecond,
				RootDispersion: time.Millisecond,
			}, nil
		}

		got, err := a.Now(context.Background())
		if err != nil {
			t.Fatalf("Now() error = %v", err)
		}
		offset := time.Until(got)
		if offset < 85*time.Second || offset > 95*time.Second {
			t.Errorf("offset = %v, want about 90s", offset)
		}
	})

	t.Run("network failure wraps unavailable", func(t *testing.T) {
		a := NewNTPAuthority("time.test", time.Second)
		a.query = func(string, ntp.QueryOptions) (*ntp.Response, error) {
			return nil, errors.New("i/o timeout")
		}

		_, err := a.Now(context.Background())
		if !errors.Is(err, kiosk.ErrTimeAuthorityUnavailable) {
			t.Errorf("Now() error = %v, want ErrTimeAuthorityUnavailable", err)
		}
	})

	t.Run("expired context is unavailable", func(t *testing.T) {
		a := NewNTPAuthority("time.test", time.Second)
		a.query = func(string, ntp.QueryOptions) (*ntp.Response, error) {
			t.Fatal("query should not be called")
			return nil, nil
		}
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()

		_, err := a.Now(ctx)
		if !errors.Is(err, kiosk.ErrTimeAuthorityUnavailable) {
			t.Errorf("Now() error = %v, want ErrTimeAuthorityUnavailable", err)
		}
	})
}

func TestNewTimeAuthorityFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.TimeConfig
		wantNil bool
		wantErr bool
	}{
		{name: "ntp", cfg: config.TimeConfig{Type: "ntp", Server: "pool.ntp.org"}},
		{name: "ntp without server", cfg: config.TimeConfig{Type: "ntp"}, wantErr: true},
		{name: "none", cfg: config.TimeConfig{Type: "none"}, wantNil: true},
		{name: "unknown", cfg: config.TimeConfig{Type: "gps"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeAuthorityFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTimeAuthorityFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("NewTimeAuthorityFromConfig() = %v, wantNil %v", got, tt.wantNil)
			}
		})
	}
}
