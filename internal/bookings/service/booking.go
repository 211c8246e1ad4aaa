// Package service implements the booking ledger: the authoritative,
// conflict-free store of committed bookings. Slot locks are advisory UX;
// every write here re-checks conflicts regardless of lock state.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"slotbook/internal/bookings/repository"
	"slotbook/internal/bookings/validator"
	"slotbook/internal/calendar"
	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

type BookingService interface {
	Create(ctx context.Context, candidate *model.BookingCandidate) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	Reschedule(ctx context.Context, id string, newStart, newEnd time.Time) (*model.Booking, error)
	ListForSpecialist(ctx context.Context, specialistID string, windowStart, windowEnd *time.Time) ([]*model.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]*model.Booking, error)
	ListAll(ctx context.Context) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	cfg       *config.Config
	clock     clock.Clock
	events    Publisher

	// specialistMu serializes conflict-check-and-write per specialist so
	// two concurrent writes targeting overlapping intervals cannot both
	// pass the check before either lands.
	specialistMu keyedMutex
}

func NewBookingService(
	repo repository.BookingRepository,
	bookingValidator *validator.BookingValidator,
	cfg *config.Config,
	clk clock.Clock,
	events Publisher,
) BookingService {
	return &bookingService{
		repo:      repo,
		validator: bookingValidator,
		cfg:       cfg,
		clock:     clk,
		events:    events,
	}
}

func (s *bookingService) Create(ctx context.Context, candidate *model.BookingCandidate) (*model.Booking, error) {
	if err := s.validator.ValidateCandidate(candidate); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"specialist_id", candidate.SpecialistID,
			"error", err,
		)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	unlock := s.specialistMu.lock(candidate.SpecialistID)
	defer unlock()

	booking := &model.Booking{
		ID:           uuid.NewString(),
		ServiceID:    candidate.ServiceID,
		SpecialistID: candidate.SpecialistID,
		UserID:       candidate.UserID,
		TimeSlotID:   candidate.TimeSlotID,
		Status:       model.BookingStatusActive,
		StartTime:    candidate.StartTime.UTC(),
		EndTime:      candidate.EndTime.UTC(),
		CreatedAt:    s.clock.Now().UTC(),
	}

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.checkConflicts(txCtx, booking.SpecialistID, booking.StartTime, booking.EndTime, ""); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsCode(err, apperrors.CodeSlotConflict) {
			s.cfg.Log.Error("Failed to create booking",
				"specialist_id", booking.SpecialistID,
				"error", err,
			)
		}
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"specialist_id", booking.SpecialistID,
		"user_id", booking.UserID,
		"start_time", booking.StartTime,
	)
	s.publish(ctx, EventBookingCreated, booking)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

// Cancel moves an active booking to cancelled. Cancelling a booking that
// already reached a terminal state fails with INVALID_STATE; a terminal
// booking is immutable and history must not be overwritten silently.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var cancelled *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		booking, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to retrieve booking", err)
		}
		if booking.IsTerminal() {
			return apperrors.InvalidState("Booking is already " + booking.Status)
		}
		if err := s.repo.UpdateStatus(txCtx, id, model.BookingStatusCancelled); err != nil {
			return apperrors.Internal("Failed to cancel booking", err)
		}
		booking.Status = model.BookingStatusCancelled
		cancelled = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking cancelled",
		"id", cancelled.ID,
		"specialist_id", cancelled.SpecialistID,
	)
	s.publish(ctx, EventBookingCancelled, cancelled)
	return cancelled, nil
}

// Reschedule atomically moves a booking to a new interval after
// re-checking conflicts against all other non-cancelled bookings of the
// same specialist. On conflict the original times are left untouched.
func (s *bookingService) Reschedule(ctx context.Context, id string, newStart, newEnd time.Time) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if !newEnd.After(newStart) {
		return nil, apperrors.InvalidInterval("new end time must be after new start time")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := s.specialistMu.lock(existing.SpecialistID)
	defer unlock()

	newStart, newEnd = newStart.UTC(), newEnd.UTC()
	var rescheduled *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		// Re-read inside the transaction; the pre-lock read may be stale.
		booking, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to retrieve booking", err)
		}
		if booking.IsTerminal() {
			return apperrors.InvalidState("Cannot reschedule a " + booking.Status + " booking")
		}

		if err := s.checkConflicts(txCtx, booking.SpecialistID, newStart, newEnd, booking.ID); err != nil {
			return err
		}

		slotID := model.NewSlotKey(booking.SpecialistID, newStart).String()
		if err := s.repo.UpdateInterval(txCtx, id, newStart, newEnd, slotID); err != nil {
			return apperrors.Internal("Failed to reschedule booking", err)
		}
		booking.StartTime = newStart
		booking.EndTime = newEnd
		booking.TimeSlotID = slotID
		rescheduled = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking rescheduled",
		"id", rescheduled.ID,
		"specialist_id", rescheduled.SpecialistID,
		"start_time", rescheduled.StartTime,
	)
	s.publish(ctx, EventBookingRescheduled, rescheduled)
	return rescheduled, nil
}

func (s *bookingService) ListForSpecialist(ctx context.Context, specialistID string, windowStart, windowEnd *time.Time) ([]*model.Booking, error) {
	if specialistID == "" {
		return nil, apperrors.InvalidInput("Specialist ID cannot be empty")
	}
	bookings, err := s.repo.FindActiveForSpecialist(ctx, specialistID, windowStart, windowEnd)
	if err != nil {
		return nil, apperrors.Internal("Failed to list bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) ListForUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}
	bookings, err := s.repo.FindForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) ListAll(ctx context.Context) ([]*model.Booking, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to list bookings", err)
	}
	return bookings, nil
}

// checkConflicts is the authoritative double-booking guard: it fails with
// SLOT_CONFLICT when [start, end) overlaps any non-cancelled booking of
// the specialist, excluding excludeID (used by reschedule to skip the
// booking being moved). Callers must hold the specialist's mutex and run
// inside a repository transaction.
func (s *bookingService) checkConflicts(ctx context.Context, specialistID string, start, end time.Time, excludeID string) error {
	existing, err := s.repo.FindActiveForSpecialist(ctx, specialistID, &start, &end)
	if err != nil {
		return apperrors.Internal("Failed to check booking conflicts", err)
	}
	for _, b := range existing {
		if b.ID == excludeID {
			continue
		}
		if calendar.Overlaps(start, end, b.StartTime, b.EndTime) {
			return apperrors.SlotConflict("The slot is already booked. Please pick another time.").WithDetails(map[string]any{
				"specialist_id":  specialistID,
				"conflicting_id": b.ID,
			})
		}
	}
	return nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if s.events == nil {
		return
	}
	event := Event{
		Type:       eventType,
		Booking:    *booking,
		OccurredAt: s.clock.Now().UTC(),
	}
	if err := s.events.Publish(ctx, booking.SpecialistID, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

// keyedMutex hands out one mutex per key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
