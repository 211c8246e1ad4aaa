package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingserrors "slotbook/internal/bookings/errors"
	mongotx "slotbook/pkg/db/mongo"
	"slotbook/pkg/model"
)

// memoryBookingRepository keeps the ledger in a mutex-guarded map.
// ExecuteTransaction holds a dedicated transaction mutex for the whole
// callback, so a conflict check inside one transaction is never evaluated
// against a snapshot another transaction is mutating.
type memoryBookingRepository struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	bookings map[string]model.Booking
}

func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{
		bookings: make(map[string]model.Booking),
	}
}

func (r *memoryBookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *memoryBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return &booking, nil
}

func (r *memoryBookingRepository) FindAll(_ context.Context) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(model.Booking) bool { return true }), nil
}

func (r *memoryBookingRepository) FindForUser(_ context.Context, userID string) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(b model.Booking) bool { return b.UserID == userID }), nil
}

func (r *memoryBookingRepository) FindActiveForSpecialist(_ context.Context, specialistID string, windowStart, windowEnd *time.Time) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(b model.Booking) bool {
		if b.SpecialistID != specialistID || b.Status == model.BookingStatusCancelled {
			return false
		}
		if windowStart != nil && !b.EndTime.After(*windowStart) {
			return false
		}
		if windowEnd != nil && !b.StartTime.Before(*windowEnd) {
			return false
		}
		return true
	}), nil
}

func (r *memoryBookingRepository) collect(match func(model.Booking) bool) []*model.Booking {
	var result []*model.Booking
	for _, b := range r.bookings {
		if match(b) {
			copied := b
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result
}

func (r *memoryBookingRepository) UpdateStatus(_ context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	booking.Status = status
	r.bookings[id] = booking
	return nil
}

func (r *memoryBookingRepository) UpdateInterval(_ context.Context, id string, start, end time.Time, timeSlotID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	booking.StartTime = start
	booking.EndTime = end
	booking.TimeSlotID = timeSlotID
	r.bookings[id] = booking
	return nil
}

func (r *memoryBookingRepository) CountActiveByService(_ context.Context, serviceID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, b := range r.bookings {
		if b.ServiceID == serviceID && b.Status == model.BookingStatusActive {
			count++
		}
	}
	return count, nil
}

func (r *memoryBookingRepository) CountActiveBySpecialist(_ context.Context, specialistID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, b := range r.bookings {
		if b.SpecialistID == specialistID && b.Status == model.BookingStatusActive {
			count++
		}
	}
	return count, nil
}

func (r *memoryBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(ctx)
}
