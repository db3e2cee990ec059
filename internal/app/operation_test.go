package app

import (
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		operation string
	}{
		{name: "run", operation: "Run"},
		{name: "sync", operation: "Sync"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation(tt.operation, now)

			if op.Name != tt.operation {
				t.Errorf("Name = %q, want %q", op.Name, tt.operation)
			}
			if op.Status != "success" {
				t.Errorf("Status = %q, want %q", op.Status, "success")
			}
			if len(op.ID) != 8 {
				t.Errorf("ID = %q, want 8 characters", op.ID)
			}
			if !op.Started.Equal(now) {
				t.Errorf("Started = %v, want %v", op.Started, now)
			}
		})
	}
}

func TestOperation_FailAndElapsed(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	op := NewOperation("Sync", now)

	op.Fail()
	if op.Status != "error" {
		t.Errorf("Status = %q, want %q", op.Status, "error")
	}
	if got := op.Elapsed(now.Add(90 * time.Second)); got != 90*time.Second {
		t.Errorf("Elapsed() = %v, want 90s", got)
	}
	if a, b := NewOperation("Run", now), NewOperation("Run", now); a.ID == b.ID {
		t.Errorf("operations share ID %q", a.ID)
	}
}
