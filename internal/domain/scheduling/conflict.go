package scheduling

import (
	"time"

	"github.com/smartmed/consultas/internal/domain/entities"
)

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not overlap, so back-to-back bookings never conflict.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// BookedIntervals maps appointments to the intervals they occupy.
// Cancelled appointments never occupy time, and the appointment whose id
// equals excludeID is skipped (used when rescheduling against oneself).
// defaultDurationMin supplies the end of appointments that did not record
// their own duration.
func BookedIntervals(appointments []*entities.Appointment, defaultDurationMin int, excludeID string) []Interval {
	intervals := make([]Interval, 0, len(appointments))
	for _, a := range appointments {
		if a.Status == entities.AppointmentStatusCancelled {
			continue
		}
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		intervals = append(intervals, Interval{
			Start: a.ScheduledAt,
			End:   a.End(defaultDurationMin),
		})
	}
	return intervals
}

// HasConflict reports whether the candidate interval overlaps any booked
// interval.
func HasConflict(candidate Interval, booked []Interval) bool {
	for _, b := range booked {
		if Overlaps(candidate, b) {
			return true
		}
	}
	return false
}
