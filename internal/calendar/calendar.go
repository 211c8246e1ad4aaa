// Package calendar provides deterministic time arithmetic for slot
// scheduling: grid generation, interval overlap tests and buffer math.
// No side effects; everything here is purely functional.
package calendar

import (
	"fmt"
	"iter"
	"time"

	apperrors "slotbook/pkg/errors"
)

// ParseClock parses a 24h "HH:MM" string.
func ParseClock(s string) (hour, minute int, err error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, 0, apperrors.InvalidInput(fmt.Sprintf("malformed clock time %q, want HH:MM", s))
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, apperrors.InvalidInput(fmt.Sprintf("clock time %q out of range", s))
	}
	return h, m, nil
}

// At anchors a "HH:MM" clock time onto the given date, in the date's location.
func At(date time.Time, clock string) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location()), nil
}

// SlotStarts produces the candidate start instants between dayStart and
// dayEnd: starting at dayStart, advancing by step, stopping once
// start+slotDuration would run past dayEnd. The step is a fixed grid
// granularity independent of the slot duration, so services of different
// lengths align to a common grid. The returned sequence is lazy and may be
// ranged over multiple times.
func SlotStarts(dayStart, dayEnd time.Time, slotDuration, step time.Duration) (iter.Seq[time.Time], error) {
	if slotDuration <= 0 {
		return nil, apperrors.InvalidDuration(fmt.Sprintf("slot duration must be positive, got %s", slotDuration))
	}
	if step <= 0 {
		return nil, apperrors.InvalidDuration(fmt.Sprintf("grid step must be positive, got %s", step))
	}
	if !dayEnd.After(dayStart) {
		return nil, apperrors.InvalidInterval(fmt.Sprintf("day end %s is not after day start %s", dayEnd, dayStart))
	}

	return func(yield func(time.Time) bool) {
		for start := dayStart; !start.Add(slotDuration).After(dayEnd); start = start.Add(step) {
			if !yield(start) {
				return
			}
		}
	}, nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Used for both booking-conflict and
// buffer-window checks.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ApplyBuffers pads the interval with the before/after buffers. The padded
// interval is used only for conflict testing; it is never stored or shown
// to the user.
func ApplyBuffers(start, end time.Time, bufferBefore, bufferAfter time.Duration) (time.Time, time.Time) {
	return start.Add(-bufferBefore), end.Add(bufferAfter)
}

// Minutes converts a whole number of minutes to a Duration.
func Minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
