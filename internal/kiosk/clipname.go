package kiosk

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	clipExt        = ".mp4"
	clipSep        = ", "
	clipDateLayout = "02 Jan 2006"
	clipTimeLayout = "03.04 PM"
)

// ClipName is the parsed form of an event clip file name:
//
//	USERNAME, DD Mon YYYY, {IN TIME|OUT TIME}, hh.mm AM.mp4
type ClipName struct {
	Username  string
	Date      string
	Direction Direction
	Time      string
}

// FormatClipName builds the event clip file name for a mark at ts.
func FormatClipName(username string, dir Direction, ts time.Time) string {
	return strings.ToUpper(username) + clipSep +
		ts.Format(clipDateLayout) + clipSep +
		dir.String() + clipSep +
		ts.Format(clipTimeLayout) + clipExt
}

// ParseClipName splits an event clip file name. Fields are taken from the
// right so a username containing the separator still parses.
func ParseClipName(name string) (ClipName, error) {
	if !strings.HasSuffix(name, clipExt) {
		return ClipName{}, fmt.Errorf("not a clip file: %q", name)
	}
	parts := strings.Split(strings.TrimSuffix(name, clipExt), clipSep)
	if len(parts) < 4 {
		return ClipName{}, fmt.Errorf("malformed clip name: %q", name)
	}

	n := len(parts)
	dir, err := ParseDirection(parts[n-2])
	if err != nil {
		return ClipName{}, fmt.Errorf("malformed clip name %q: %w", name, err)
	}
	if _, err := time.Parse(clipDateLayout, parts[n-3]); err != nil {
		return ClipName{}, fmt.Errorf("malformed clip date in %q: %w", name, err)
	}

	return ClipName{
		Username:  strings.Join(parts[:n-3], clipSep),
		Date:      parts[n-3],
		Direction: dir,
		Time:      parts[n-1],
	}, nil
}

// Matches reports whether the clip records dir on the calendar day of day.
func (c ClipName) Matches(dir Direction, day time.Time) bool {
	return c.Direction == dir && c.Date == day.Format(clipDateLayout)
}

// EventDir returns the directory holding a user's event clips for the month of ts.
func EventDir(username string, ts time.Time) []string {
	return []string{username, strconv.Itoa(ts.Year()), ts.Format("January")}
}

// EnrollmentClipName returns the file name of a user's enrollment clip.
func EnrollmentClipName(username string) string {
	return username + clipExt
}
