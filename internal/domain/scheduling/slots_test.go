package scheduling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartmed/consultas/internal/domain/entities"
	"github.com/smartmed/consultas/internal/domain/scheduling"
)

func mustMinute(t *testing.T, s string) entities.MinuteOfDay {
	t.Helper()
	m, err := entities.ParseMinuteOfDay(s)
	assert.NoError(t, err)
	return m
}

func TestSlots(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("standard working day yields 20 half-hour slots", func(t *testing.T) {
		start := mustMinute(t, "08:00")
		end := mustMinute(t, "18:00")

		var slots []time.Time
		for s := range scheduling.Slots(day, start, end, 30*time.Minute) {
			slots = append(slots, s)
		}

		assert.Len(t, slots, 20)
		assert.Equal(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), slots[0])
		assert.Equal(t, time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC), slots[1])
		assert.Equal(t, time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC), slots[19])

		closing := time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)
		for _, s := range slots {
			assert.False(t, s.Add(30*time.Minute).After(closing), "slot %v ends past work-end", s)
		}
	})

	t.Run("slot not fitting before work-end is dropped", func(t *testing.T) {
		start := mustMinute(t, "08:00")
		end := mustMinute(t, "09:10")

		var slots []time.Time
		for s := range scheduling.Slots(day, start, end, 30*time.Minute) {
			slots = append(slots, s)
		}

		// 08:00 and 08:30 fit; 09:00 would end at 09:30, past 09:10.
		assert.Len(t, slots, 2)
	})

	t.Run("sequence is restartable", func(t *testing.T) {
		seq := scheduling.Slots(day, mustMinute(t, "08:00"), mustMinute(t, "12:00"), time.Hour)

		var first, second []time.Time
		for s := range seq {
			first = append(first, s)
		}
		for s := range seq {
			second = append(second, s)
		}

		assert.Equal(t, first, second)
		assert.Len(t, first, 4)
	})

	t.Run("early break stops iteration", func(t *testing.T) {
		var seen int
		for range scheduling.Slots(day, mustMinute(t, "08:00"), mustMinute(t, "18:00"), 30*time.Minute) {
			seen++
			if seen == 3 {
				break
			}
		}
		assert.Equal(t, 3, seen)
	})

	t.Run("non-positive duration yields nothing", func(t *testing.T) {
		for range scheduling.Slots(day, mustMinute(t, "08:00"), mustMinute(t, "18:00"), 0) {
			t.Fatal("expected no slots")
		}
	})

	t.Run("day slots use the physician default duration", func(t *testing.T) {
		p := &entities.Physician{
			WorkStart:          mustMinute(t, "08:00"),
			WorkEnd:            mustMinute(t, "12:00"),
			DefaultDurationMin: 60,
		}
		slots := scheduling.DaySlots(day, p)
		assert.Len(t, slots, 4)
	})
}
