// Package scheduling holds the pure appointment-scheduling logic: slot
// generation, interval conflict detection and price computation. Nothing in
// this package touches storage or the clock.
package scheduling

import (
	"iter"
	"time"

	"github.com/smartmed/consultas/internal/domain/entities"
)

// Slots yields the candidate start times of one working day: work-start,
// then every slot-length step after it, stopping before any slot whose end
// would pass work-end. The sequence is lazy and restartable; ranging over
// it twice yields the same slots.
func Slots(day time.Time, workStart, workEnd entities.MinuteOfDay, slot time.Duration) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if slot <= 0 {
			return
		}
		start := workStart.At(day)
		end := workEnd.At(day)
		for cur := start; !cur.Add(slot).After(end); cur = cur.Add(slot) {
			if !yield(cur) {
				return
			}
		}
	}
}

// DaySlots materializes a physician's full agenda grid for one day using
// the physician's default duration.
func DaySlots(day time.Time, p *entities.Physician) []time.Time {
	var out []time.Time
	for s := range Slots(day, p.WorkStart, p.WorkEnd, p.DefaultDuration()) {
		out = append(out, s)
	}
	return out
}
