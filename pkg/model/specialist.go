package model

import (
	"strconv"
	"time"
)

// DayHours is a specialist's working window for one weekday,
// in 24h "HH:MM" local time.
type DayHours struct {
	Start string `json:"start" bson:"start" validate:"required,hhmm"`
	End   string `json:"end" bson:"end" validate:"required,hhmm"`
}

type Specialist struct {
	ID             string `json:"id,omitempty" bson:"_id,omitempty"`
	Name           string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Specialization string `json:"specialization" bson:"specialization" validate:"required,min=2,max=100"`
	Avatar         string `json:"avatar,omitempty" bson:"avatar,omitempty" validate:"omitempty,max=500"`

	// WorkingHours maps weekday ("0" = Sunday .. "6" = Saturday) to that
	// day's window. A missing or nil entry means the specialist does not
	// work that day. String keys keep the map round-trippable through
	// both JSON and BSON.
	WorkingHours map[string]*DayHours `json:"working_hours" bson:"working_hours" validate:"required,working_hours"`

	ServiceIDs []string `json:"service_ids" bson:"service_ids" validate:"required,min=1,dive,required"`
}

type SpecialistUpdate struct {
	Name           string                `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Specialization string                `json:"specialization,omitempty" validate:"omitempty,min=2,max=100"`
	Avatar         *string               `json:"avatar,omitempty" validate:"omitempty,max=500"`
	WorkingHours   *map[string]*DayHours `json:"working_hours,omitempty" validate:"omitempty,working_hours_ptr"`
	ServiceIDs     *[]string             `json:"service_ids,omitempty" validate:"omitempty,min=1,dive,required"`
}

// HoursFor returns the working window for the given weekday, or nil when
// the specialist does not work that day.
func (s *Specialist) HoursFor(day time.Weekday) *DayHours {
	if s.WorkingHours == nil {
		return nil
	}
	return s.WorkingHours[strconv.Itoa(int(day))]
}

// PerformsService reports whether the specialist offers the given service.
func (s *Specialist) PerformsService(serviceID string) bool {
	for _, id := range s.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
