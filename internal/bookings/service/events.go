package service

import (
	"context"
	"time"

	"slotbook/pkg/model"
)

const (
	EventBookingCreated     = "booking.created"
	EventBookingCancelled   = "booking.cancelled"
	EventBookingRescheduled = "booking.rescheduled"
)

// Event is published to the booking events topic on every ledger write,
// keyed by specialist id so consumers see one specialist's history in
// order.
type Event struct {
	Type       string        `json:"type"`
	Booking    model.Booking `json:"booking"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Publisher is satisfied by kafka.Producer. A nil publisher disables
// event emission.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
}
