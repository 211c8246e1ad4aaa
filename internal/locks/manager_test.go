package locks

import (
	"context"
	"sync"
	"testing"
	"time"

	"slotbook/pkg/clock"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Service: "test"})
}

func testKey(specialistID string, hour int) model.SlotKey {
	return model.NewSlotKey(specialistID, time.Date(2025, time.March, 3, hour, 0, 0, 0, time.UTC))
}

func TestAcquire_ContentionAndExpiry(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC))
	m := NewManager(NewMemoryStore(), clk, 5*time.Minute, testLogger())
	ctx := context.Background()
	key := testKey("spec-1", 14)

	// User A locks at t=0.
	lockA, err := m.Acquire(ctx, key, "user-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lockA.LockedUntil.Equal(clk.Now().Add(5 * time.Minute)) {
		t.Errorf("locked_until: expected now+5m, got %s", lockA.LockedUntil)
	}

	// User B at t=1min is rejected.
	clk.Advance(time.Minute)
	if _, err := m.Acquire(ctx, key, "user-b"); !apperrors.IsCode(err, apperrors.CodeSlotLocked) {
		t.Fatalf("expected SLOT_LOCKED, got %v", err)
	}

	// At t=6min the lock expired; user B succeeds.
	clk.Advance(5 * time.Minute)
	lockB, err := m.Acquire(ctx, key, "user-b")
	if err != nil {
		t.Fatalf("expected acquire after expiry to succeed, got %v", err)
	}
	if lockB.LockedBy != "user-b" {
		t.Errorf("expected holder user-b, got %s", lockB.LockedBy)
	}
}

func TestAcquire_SelfRenewalExtendsExpiry(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC))
	m := NewManager(NewMemoryStore(), clk, 5*time.Minute, testLogger())
	ctx := context.Background()
	key := testKey("spec-1", 14)

	first, err := m.Acquire(ctx, key, "user-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clk.Advance(2 * time.Minute)
	second, err := m.Acquire(ctx, key, "user-a")
	if err != nil {
		t.Fatalf("self re-acquire must succeed, got %v", err)
	}
	if !second.LockedUntil.After(first.LockedUntil) {
		t.Errorf("renewal must extend expiry: first %s, second %s", first.LockedUntil, second.LockedUntil)
	}
}

func TestAcquire_InvalidInputs(t *testing.T) {
	clk := clock.NewFake(time.Now())
	m := NewManager(NewMemoryStore(), clk, 5*time.Minute, testLogger())
	ctx := context.Background()

	if _, err := m.Acquire(ctx, testKey("spec-1", 10), ""); !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("empty requester: expected INVALID_INPUT, got %v", err)
	}
	if _, err := m.AcquireFor(ctx, testKey("spec-1", 10), "user-a", 0); !apperrors.IsCode(err, apperrors.CodeInvalidDuration) {
		t.Errorf("zero hold: expected INVALID_DURATION, got %v", err)
	}
}

func TestRelease_Semantics(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC))
	m := NewManager(NewMemoryStore(), clk, 5*time.Minute, testLogger())
	ctx := context.Background()
	key := testKey("spec-1", 14)

	if _, err := m.Acquire(ctx, key, "user-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Releasing someone else's lock is a no-op, never an error.
	if err := m.Release(ctx, key, "user-b"); err != nil {
		t.Fatalf("foreign release must be a no-op, got %v", err)
	}
	if _, err := m.Acquire(ctx, key, "user-b"); !apperrors.IsCode(err, apperrors.CodeSlotLocked) {
		t.Fatal("lock must survive a foreign release")
	}

	// Holder release frees the slot for others.
	if err := m.Release(ctx, key, "user-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Acquire(ctx, key, "user-b"); err != nil {
		t.Fatalf("expected acquire after release to succeed, got %v", err)
	}

	// Releasing an absent lock is harmless too.
	if err := m.Release(ctx, testKey("spec-1", 15), "user-a"); err != nil {
		t.Fatalf("absent release must be a no-op, got %v", err)
	}
}

func TestActiveForSpecialist_ScopesAndExpires(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC))
	m := NewManager(NewMemoryStore(), clk, 5*time.Minute, testLogger())
	ctx := context.Background()

	keyA := testKey("spec-1", 14)
	keyB := testKey("spec-1", 15)
	keyOther := testKey("spec-2", 14)

	mustAcquire := func(key model.SlotKey, holder string) {
		t.Helper()
		if _, err := m.Acquire(ctx, key, holder); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	mustAcquire(keyA, "user-a")
	mustAcquire(keyB, "user-b")
	mustAcquire(keyOther, "user-c")

	active, err := m.ActiveForSpecialist(ctx, "spec-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 locks for spec-1, got %d", len(active))
	}
	if _, ok := active[keyOther.String()]; ok {
		t.Error("lock for another specialist must not be included")
	}

	// After expiry the table reads as empty.
	clk.Advance(6 * time.Minute)
	active, err = m.ActiveForSpecialist(ctx, "spec-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("expected no active locks after expiry, got %d", len(active))
	}
}

func TestAcquire_MutualExclusionUnderConcurrency(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC))
	m := NewManager(NewMemoryStore(), clk, 5*time.Minute, testLogger())
	ctx := context.Background()
	key := testKey("spec-1", 14)

	const workers = 32
	var wg sync.WaitGroup
	granted := make(chan string, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			holder := "user-" + string(rune('a'+n%26)) + string(rune('0'+n/26))
			if _, err := m.Acquire(ctx, key, holder); err == nil {
				granted <- holder
			}
		}(i)
	}
	wg.Wait()
	close(granted)

	holders := make(map[string]bool)
	for h := range granted {
		holders[h] = true
	}
	if len(holders) != 1 {
		t.Errorf("expected exactly one distinct holder to win, got %d", len(holders))
	}
}
