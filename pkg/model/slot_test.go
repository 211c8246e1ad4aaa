package model

import (
	"testing"
	"time"
)

func TestSlotKey_RoundTrip(t *testing.T) {
	start := time.Date(2025, time.March, 3, 14, 30, 0, 0, time.FixedZone("IST", 2*3600))
	key := NewSlotKey("spec-1", start)

	if key.String() != "spec-1@2025-03-03T12:30:00Z" {
		t.Fatalf("unexpected canonical form: %s", key.String())
	}

	parsed, err := ParseSlotKey(key.String())
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.SpecialistID != "spec-1" || !parsed.Start.Equal(key.Start) {
		t.Errorf("round trip mismatch: %+v vs %+v", parsed, key)
	}
}

func TestParseSlotKey_Malformed(t *testing.T) {
	for _, s := range []string{"", "spec-1", "@2025-03-03T12:30:00Z", "spec-1@not-a-time"} {
		if _, err := ParseSlotKey(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestSlotLock_ExpiredAt(t *testing.T) {
	until := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)
	lock := SlotLock{LockedUntil: until}

	if lock.ExpiredAt(until.Add(-time.Second)) {
		t.Error("lock should still be live before its deadline")
	}
	if !lock.ExpiredAt(until) {
		t.Error("lock expires exactly at its deadline")
	}
}
