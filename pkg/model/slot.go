package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	SlotStatusFree   = "free"
	SlotStatusLocked = "locked"
	SlotStatusBooked = "booked"
)

// CandidateSlot is computed on demand by the availability resolver and
// never persisted. Status is derived, not stored state.
type CandidateSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

// SlotKey identifies one candidate slot of one specialist. The canonical
// string form is "<specialistID>@<start in RFC3339 UTC>"; slot starts are
// minute-aligned, so the representation round-trips exactly.
type SlotKey struct {
	SpecialistID string
	Start        time.Time
}

func NewSlotKey(specialistID string, start time.Time) SlotKey {
	return SlotKey{
		SpecialistID: specialistID,
		Start:        start.UTC(),
	}
}

func (k SlotKey) String() string {
	return k.SpecialistID + "@" + k.Start.UTC().Format(time.RFC3339)
}

// ParseSlotKey parses the canonical string form produced by String.
func ParseSlotKey(s string) (SlotKey, error) {
	specialistID, startStr, ok := strings.Cut(s, "@")
	if !ok || specialistID == "" {
		return SlotKey{}, fmt.Errorf("malformed slot key: %q", s)
	}
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return SlotKey{}, fmt.Errorf("malformed slot key time: %q: %w", s, err)
	}
	return SlotKey{SpecialistID: specialistID, Start: start.UTC()}, nil
}

// SlotLock is a short-lived exclusive hold on a slot key. Ephemeral: it is
// destroyed by explicit release or by expiry, never written to the ledger.
type SlotLock struct {
	Key         SlotKey   `json:"key"`
	LockedBy    string    `json:"locked_by"`
	LockedUntil time.Time `json:"locked_until"`
}

// ExpiredAt reports whether the lock is expired at the given instant.
func (l SlotLock) ExpiredAt(now time.Time) bool {
	return !l.LockedUntil.After(now)
}
