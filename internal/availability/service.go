package availability

import (
	"context"
	"time"

	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

// SpecialistSource and ServiceSource are satisfied by the catalog service.
type SpecialistSource interface {
	GetSpecialistByID(ctx context.Context, id string) (*model.Specialist, error)
}

type ServiceSource interface {
	GetServiceByID(ctx context.Context, id string) (*model.Service, error)
}

// BookingSource is satisfied by the booking ledger service.
type BookingSource interface {
	ListForSpecialist(ctx context.Context, specialistID string, windowStart, windowEnd *time.Time) ([]*model.Booking, error)
}

// LockSource is satisfied by the lock manager.
type LockSource interface {
	ActiveForSpecialist(ctx context.Context, specialistID string) (map[string]model.SlotLock, error)
}

type AvailabilityService interface {
	Resolve(ctx context.Context, specialistID, serviceID string, date time.Time, requesterID string) ([]model.CandidateSlot, error)
}

type availabilityService struct {
	resolver    *Resolver
	specialists SpecialistSource
	services    ServiceSource
	bookings    BookingSource
	locks       LockSource
	cfg         *config.Config
}

func NewAvailabilityService(
	resolver *Resolver,
	specialists SpecialistSource,
	services ServiceSource,
	bookings BookingSource,
	locks LockSource,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		resolver:    resolver,
		specialists: specialists,
		services:    services,
		bookings:    bookings,
		locks:       locks,
		cfg:         cfg,
	}
}

// Resolve is a read-only, best-effort snapshot: staleness between
// resolution and a later acquire or confirm is expected and handled by
// re-validation at those steps, not prevented here.
func (s *availabilityService) Resolve(ctx context.Context, specialistID, serviceID string, date time.Time, requesterID string) ([]model.CandidateSlot, error) {
	if specialistID == "" || serviceID == "" {
		return nil, apperrors.InvalidInput("Specialist ID and service ID are required")
	}

	specialist, err := s.specialists.GetSpecialistByID(ctx, specialistID)
	if err != nil {
		return nil, err
	}
	service, err := s.services.GetServiceByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !specialist.PerformsService(service.ID) {
		return nil, apperrors.InvalidInput("Specialist does not perform this service")
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	bookings, err := s.bookings.ListForSpecialist(ctx, specialistID, &dayStart, &dayEnd)
	if err != nil {
		return nil, err
	}

	activeLocks, err := s.locks.ActiveForSpecialist(ctx, specialistID)
	if err != nil {
		return nil, err
	}

	slots, err := s.resolver.Resolve(specialist, service, date, bookings, activeLocks, requesterID)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve availability",
			"specialist_id", specialistID,
			"service_id", serviceID,
			"error", err,
		)
		return nil, err
	}
	return slots, nil
}
