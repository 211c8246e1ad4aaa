// Package workflow sequences the multi-step booking flow:
// resolve -> lock -> ledger write. Holding a lock never guarantees the
// ledger write will succeed; the ledger re-checks conflicts on every
// write and stays the final authority.
package workflow

import (
	"context"
	"time"

	bookingservice "slotbook/internal/bookings/service"
	"slotbook/internal/calendar"
	"slotbook/internal/locks"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

// Catalog is the slice of the catalog service the workflow needs.
type Catalog interface {
	GetServiceByID(ctx context.Context, id string) (*model.Service, error)
	GetSpecialistByID(ctx context.Context, id string) (*model.Specialist, error)
}

type ConfirmInput struct {
	SlotKey      string    `json:"slot_key"`
	ServiceID    string    `json:"service_id"`
	SpecialistID string    `json:"specialist_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

type WorkflowService interface {
	ConfirmBooking(ctx context.Context, identity model.Identity, in ConfirmInput) (*model.Booking, error)
	CancelBooking(ctx context.Context, identity model.Identity, bookingID string) (*model.Booking, error)
	RescheduleBooking(ctx context.Context, identity model.Identity, bookingID string, newStart, newEnd time.Time) (*model.Booking, error)
}

type workflowService struct {
	ledger  bookingservice.BookingService
	locks   *locks.Manager
	catalog Catalog
	cfg     *config.Config
}

func NewWorkflowService(ledger bookingservice.BookingService, lockManager *locks.Manager, catalog Catalog, cfg *config.Config) WorkflowService {
	return &workflowService{
		ledger:  ledger,
		locks:   lockManager,
		catalog: catalog,
		cfg:     cfg,
	}
}

// ConfirmBooking re-validates the selection against the catalog and writes
// to the ledger. On success the slot lock is released; on SLOT_CONFLICT
// the lock is discarded too, since the slot is gone either way and the
// user must re-resolve availability.
func (s *workflowService) ConfirmBooking(ctx context.Context, identity model.Identity, in ConfirmInput) (*model.Booking, error) {
	if !identity.Authenticated() {
		return nil, apperrors.Unauthorized("Sign in to confirm a booking")
	}

	key, err := model.ParseSlotKey(in.SlotKey)
	if err != nil {
		return nil, apperrors.InvalidInput("Malformed slot key")
	}
	if key.SpecialistID != in.SpecialistID || !key.Start.Equal(in.StartTime.UTC()) {
		return nil, apperrors.InvalidInput("Slot key does not match the requested slot")
	}

	service, err := s.catalog.GetServiceByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	specialist, err := s.catalog.GetSpecialistByID(ctx, in.SpecialistID)
	if err != nil {
		return nil, err
	}
	if !specialist.PerformsService(service.ID) {
		return nil, apperrors.InvalidInput("Specialist does not perform this service")
	}
	if in.EndTime.Sub(in.StartTime) != calendar.Minutes(service.DurationMin) {
		return nil, apperrors.InvalidInterval("Booking length does not match the service duration")
	}

	booking, err := s.ledger.Create(ctx, &model.BookingCandidate{
		ServiceID:    in.ServiceID,
		SpecialistID: in.SpecialistID,
		UserID:       identity.UserID,
		TimeSlotID:   key.String(),
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeSlotConflict) {
			// The slot is taken regardless of our lock; drop the hold so
			// availability reads settle once the user re-resolves.
			if relErr := s.locks.Release(ctx, key, identity.UserID); relErr != nil {
				s.cfg.Log.Warn("Failed to release lock after conflict",
					"slot_key", key.String(),
					"error", relErr,
				)
			}
		}
		return nil, err
	}

	if err := s.locks.Release(ctx, key, identity.UserID); err != nil {
		s.cfg.Log.Warn("Failed to release lock after commit",
			"slot_key", key.String(),
			"booking_id", booking.ID,
			"error", err,
		)
	}
	return booking, nil
}

func (s *workflowService) CancelBooking(ctx context.Context, identity model.Identity, bookingID string) (*model.Booking, error) {
	booking, err := s.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() && booking.UserID != identity.UserID {
		return nil, apperrors.Forbidden("You can only cancel your own bookings")
	}
	return s.ledger.Cancel(ctx, bookingID)
}

func (s *workflowService) RescheduleBooking(ctx context.Context, identity model.Identity, bookingID string, newStart, newEnd time.Time) (*model.Booking, error) {
	booking, err := s.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() && booking.UserID != identity.UserID {
		return nil, apperrors.Forbidden("You can only reschedule your own bookings")
	}
	return s.ledger.Reschedule(ctx, bookingID, newStart, newEnd)
}
