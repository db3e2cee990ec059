package kiosk_test

import (
	"errors"
	"testing"

	"kiosk-go/internal/kiosk"
)

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "upper-cases", raw: "alice", want: "ALICE"},
		{name: "strips line breaks", raw: "al\r\nice\n", want: "ALICE"},
		{name: "trims spaces", raw: "  Bob Smith  ", want: "BOB SMITH"},
		{name: "empty", raw: "", wantErr: kiosk.ErrEmptyUsername},
		{name: "only whitespace", raw: " \r\n\t", wantErr: kiosk.ErrEmptyUsername},
		{name: "slash", raw: "a/b", wantErr: kiosk.ErrInvalidUsername},
		{name: "backslash", raw: `a\b`, wantErr: kiosk.ErrInvalidUsername},
		{name: "dot", raw: ".", wantErr: kiosk.ErrInvalidUsername},
		{name: "dot dot", raw: "..", wantErr: kiosk.ErrInvalidUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := kiosk.NormalizeUsername(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NormalizeUsername(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeUsername(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
