package kiosk

import (
	"fmt"
	"time"
)

// Direction is the kind of attendance mark a login produces.
type Direction int

const (
	InTime Direction = iota
	OutTime
)

// String returns the marker used in clip names and ledger headers.
func (d Direction) String() string {
	if d == OutTime {
		return "OUT TIME"
	}
	return "IN TIME"
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "IN TIME":
		return InTime, nil
	case "OUT TIME":
		return OutTime, nil
	default:
		return InTime, fmt.Errorf("unknown direction marker %q", s)
	}
}

// DirectionSource decides whether a user's next mark for the day is IN or OUT.
type DirectionSource interface {
	Direction(username string, now time.Time) (Direction, error)
}

// ArchiveDirection answers from the event clips: an IN clip for today means OUT.
type ArchiveDirection struct {
	archive *Archive
}

// NewArchiveDirection creates a DirectionSource backed by the video archive.
func NewArchiveDirection(archive *Archive) *ArchiveDirection {
	return &ArchiveDirection{archive: archive}
}

func (d *ArchiveDirection) Direction(username string, now time.Time) (Direction, error) {
	found, err := d.archive.HasEventClip(username, InTime, now)
	if err != nil {
		return InTime, fmt.Errorf("checking archive for in time: %w", err)
	}
	if found {
		return OutTime, nil
	}
	return InTime, nil
}

// LedgerDirection answers from the month table: a filled IN cell for today means OUT.
type LedgerDirection struct {
	ledger *Ledger
}

// NewLedgerDirection creates a DirectionSource backed by the attendance ledger.
func NewLedgerDirection(ledger *Ledger) *LedgerDirection {
	return &LedgerDirection{ledger: ledger}
}

func (d *LedgerDirection) Direction(username string, now time.Time) (Direction, error) {
	_, found, err := d.ledger.EventTime(username, InTime, now)
	if err != nil {
		return InTime, fmt.Errorf("checking ledger for in time: %w", err)
	}
	if found {
		return OutTime, nil
	}
	return InTime, nil
}
