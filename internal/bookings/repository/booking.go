package repository

import (
	"context"
	"time"

	mongotx "slotbook/pkg/db/mongo"
	"slotbook/pkg/model"
)

// BookingRepository is the durable store behind the booking ledger.
// Conflict arbitration lives in the service layer; the repository only
// reads and writes.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context) ([]*model.Booking, error)
	FindForUser(ctx context.Context, userID string) ([]*model.Booking, error)

	// FindActiveForSpecialist returns the specialist's non-cancelled
	// bookings, optionally restricted to those intersecting
	// [windowStart, windowEnd).
	FindActiveForSpecialist(ctx context.Context, specialistID string, windowStart, windowEnd *time.Time) ([]*model.Booking, error)

	UpdateStatus(ctx context.Context, id string, status string) error
	UpdateInterval(ctx context.Context, id string, start, end time.Time, timeSlotID string) error

	CountActiveByService(ctx context.Context, serviceID string) (int64, error)
	CountActiveBySpecialist(ctx context.Context, specialistID string) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}
