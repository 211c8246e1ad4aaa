package model

import (
	"time"
)

const (
	BookingStatusActive    = "active"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

type Booking struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	ServiceID    string    `json:"service_id" bson:"service_id" validate:"required"`
	SpecialistID string    `json:"specialist_id" bson:"specialist_id" validate:"required"`
	UserID       string    `json:"user_id" bson:"user_id" validate:"required"`
	TimeSlotID   string    `json:"time_slot_id" bson:"time_slot_id" validate:"required"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=active cancelled completed"`
	StartTime    time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingCandidate carries the fields of a booking before the ledger
// assigns its id, created_at and status.
type BookingCandidate struct {
	ServiceID    string    `json:"service_id" validate:"required"`
	SpecialistID string    `json:"specialist_id" validate:"required"`
	UserID       string    `json:"user_id" validate:"required"`
	TimeSlotID   string    `json:"time_slot_id" validate:"required"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

// IsTerminal reports whether the booking reached a final state and may no
// longer transition.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCancelled || b.Status == BookingStatusCompleted
}
