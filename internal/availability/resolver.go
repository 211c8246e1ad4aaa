// Package availability computes classified candidate slots for a
// specialist, service and date by combining working hours, existing
// bookings and active slot locks.
package availability

import (
	"time"

	"slotbook/internal/calendar"
	"slotbook/pkg/clock"
	"slotbook/pkg/model"
)

type Resolver struct {
	clock clock.Clock
	step  time.Duration
}

func NewResolver(clk clock.Clock, stepMinutes int) *Resolver {
	return &Resolver{
		clock: clk,
		step:  calendar.Minutes(stepMinutes),
	}
}

// Resolve produces the full day's time-ordered candidate sequence for the
// specialist and service. Free, locked and booked slots are all included
// so callers can render unavailability; only the status differs.
//
// Classification precedence, first match wins: booked when the buffered
// interval overlaps any non-cancelled booking; locked when another user
// holds a non-expired lock on the slot key; free otherwise. A slot locked
// by the requester reports as free so they see their own held slot as
// selectable.
//
// Only the raw [start, start+duration) is constrained to the working
// window; a buffered interval may extend past dayEnd. That is accepted
// product behavior, not clipped here.
func (r *Resolver) Resolve(
	specialist *model.Specialist,
	service *model.Service,
	date time.Time,
	existingBookings []*model.Booking,
	activeLocks map[string]model.SlotLock,
	requesterID string,
) ([]model.CandidateSlot, error) {
	hours := specialist.HoursFor(date.Weekday())
	if hours == nil {
		return nil, nil // specialist does not work this day
	}

	dayStart, err := calendar.At(date, hours.Start)
	if err != nil {
		return nil, err
	}
	dayEnd, err := calendar.At(date, hours.End)
	if err != nil {
		return nil, err
	}

	duration := calendar.Minutes(service.DurationMin)
	starts, err := calendar.SlotStarts(dayStart, dayEnd, duration, r.step)
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	bufBefore := calendar.Minutes(service.BufferBeforeMin)
	bufAfter := calendar.Minutes(service.BufferAfterMin)

	var slots []model.CandidateSlot
	for start := range starts {
		// Past slots are never offered, not even marked booked.
		if start.Before(now) && sameDay(start, now) {
			continue
		}

		end := start.Add(duration)
		slots = append(slots, model.CandidateSlot{
			StartTime: start,
			EndTime:   end,
			Status:    r.classify(specialist.ID, start, end, bufBefore, bufAfter, existingBookings, activeLocks, requesterID, now),
		})
	}
	return slots, nil
}

func (r *Resolver) classify(
	specialistID string,
	start, end time.Time,
	bufBefore, bufAfter time.Duration,
	bookings []*model.Booking,
	locks map[string]model.SlotLock,
	requesterID string,
	now time.Time,
) string {
	paddedStart, paddedEnd := calendar.ApplyBuffers(start, end, bufBefore, bufAfter)

	for _, b := range bookings {
		if b.Status == model.BookingStatusCancelled {
			continue
		}
		if calendar.Overlaps(paddedStart, paddedEnd, b.StartTime, b.EndTime) {
			return model.SlotStatusBooked
		}
	}

	key := model.NewSlotKey(specialistID, start).String()
	if lock, ok := locks[key]; ok && !lock.ExpiredAt(now) && lock.LockedBy != requesterID {
		return model.SlotStatusLocked
	}

	return model.SlotStatusFree
}

func sameDay(a, b time.Time) bool {
	ay, ad := a.Year(), a.YearDay()
	b = b.In(a.Location())
	return ay == b.Year() && ad == b.YearDay()
}
