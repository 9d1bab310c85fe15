package entities

import (
	"fmt"
	"time"
)

// MinuteOfDay is a wall-clock time expressed as minutes since midnight.
// Physician work hours are stored this way so slot arithmetic never has to
// juggle partial time.Time values.
type MinuteOfDay int

// At anchors the minute on the calendar day of t, preserving t's location.
func (m MinuteOfDay) At(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, int(m)/60, int(m)%60, 0, 0, t.Location())
}

// MinuteOf returns the minute-of-day of t.
func MinuteOf(t time.Time) MinuteOfDay {
	return MinuteOfDay(t.Hour()*60 + t.Minute())
}

// String renders the minute as HH:MM.
func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// ParseMinuteOfDay parses an HH:MM string.
func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return MinuteOfDay(t.Hour()*60 + t.Minute()), nil
}
