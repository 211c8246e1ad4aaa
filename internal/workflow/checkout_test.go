package workflow

import (
	"context"
	"testing"
	"time"

	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

func newCheckoutEnv(t *testing.T) (*Checkout, *env) {
	t.Helper()
	e := newEnv(t)
	return NewCheckout(e.locks, e.workflow), e
}

func testService() *model.Service {
	return &model.Service{ID: "svc-1", Name: "Consultation", DurationMin: 60}
}

func testSpecialist() *model.Specialist {
	return &model.Specialist{ID: "spec-1", Name: "Dana", ServiceIDs: []string{"svc-1"}}
}

func freeSlot(start time.Time) model.CandidateSlot {
	return model.CandidateSlot{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    model.SlotStatusFree,
	}
}

func TestCheckout_HappyPath(t *testing.T) {
	c, e := newCheckoutEnv(t)
	ctx := context.Background()
	start := tuesday(10, 0)

	if step := c.SelectService(testService()); step != StepSelectingSpecialist {
		t.Fatalf("after service: expected %s, got %s", StepSelectingSpecialist, step)
	}
	if step := c.SelectSpecialist(testSpecialist()); step != StepSelectingSlot {
		t.Fatalf("after specialist: expected %s, got %s", StepSelectingSlot, step)
	}

	step, err := c.SelectSlot(ctx, start, freeSlot(start), "user-1")
	if err != nil {
		t.Fatalf("select slot failed: %v", err)
	}
	if step != StepLocked {
		t.Fatalf("after slot: expected %s, got %s", StepLocked, step)
	}

	booking, err := c.Confirm(ctx, model.Identity{UserID: "user-1", Role: model.RoleUser})
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if c.Step() != StepCommitted {
		t.Errorf("expected %s, got %s", StepCommitted, c.Step())
	}
	if c.Booking() == nil || c.Booking().ID != booking.ID {
		t.Error("expected committed booking retained in session")
	}

	// Lock is released by the commit.
	key := model.NewSlotKey("spec-1", start)
	if _, err := e.locks.Acquire(ctx, key, "user-2"); err != nil {
		t.Errorf("expected lock released, acquire failed: %v", err)
	}
}

func TestCheckout_ConfirmWithoutIdentityHalts(t *testing.T) {
	c, _ := newCheckoutEnv(t)
	ctx := context.Background()
	start := tuesday(10, 0)

	c.SelectService(testService())
	c.SelectSpecialist(testSpecialist())
	if _, err := c.SelectSlot(ctx, start, freeSlot(start), "user-1"); err != nil {
		t.Fatalf("select slot failed: %v", err)
	}

	_, err := c.Confirm(ctx, model.Identity{Role: model.RoleGuest})
	if !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if c.Step() != StepConfirming {
		t.Fatalf("expected session halted at %s, got %s", StepConfirming, c.Step())
	}

	// The same session resumes once the user signs in.
	if _, err := c.Confirm(ctx, model.Identity{UserID: "user-1", Role: model.RoleUser}); err != nil {
		t.Fatalf("confirm after sign-in failed: %v", err)
	}
	if c.Step() != StepCommitted {
		t.Errorf("expected %s, got %s", StepCommitted, c.Step())
	}
}

func TestCheckout_StepForFallsBackToMissingPrerequisite(t *testing.T) {
	c, _ := newCheckoutEnv(t)

	if got := c.StepFor(StepCommitted); got != StepSelectingService {
		t.Errorf("empty session: expected %s, got %s", StepSelectingService, got)
	}

	c.SelectService(testService())
	if got := c.StepFor(StepConfirming); got != StepSelectingSpecialist {
		t.Errorf("no specialist: expected %s, got %s", StepSelectingSpecialist, got)
	}

	c.SelectSpecialist(testSpecialist())
	if got := c.StepFor(StepLocked); got != StepSelectingSlot {
		t.Errorf("no lock: expected %s, got %s", StepSelectingSlot, got)
	}
}

func TestCheckout_SelectSlotContention(t *testing.T) {
	c, e := newCheckoutEnv(t)
	ctx := context.Background()
	start := tuesday(10, 0)

	if _, err := e.locks.Acquire(ctx, model.NewSlotKey("spec-1", start), "user-2"); err != nil {
		t.Fatalf("seed lock failed: %v", err)
	}

	c.SelectService(testService())
	c.SelectSpecialist(testSpecialist())

	step, err := c.SelectSlot(ctx, start, freeSlot(start), "user-1")
	if !apperrors.IsCode(err, apperrors.CodeSlotLocked) {
		t.Fatalf("expected SLOT_LOCKED, got %v", err)
	}
	if step != StepSelectingSlot {
		t.Errorf("expected %s after contention, got %s", StepSelectingSlot, step)
	}
}

func TestCheckout_ConflictReturnsToSlotSelection(t *testing.T) {
	c, e := newCheckoutEnv(t)
	ctx := context.Background()
	start := tuesday(10, 0)

	c.SelectService(testService())
	c.SelectSpecialist(testSpecialist())
	if _, err := c.SelectSlot(ctx, start, freeSlot(start), "user-1"); err != nil {
		t.Fatalf("select slot failed: %v", err)
	}

	// The interval fills while this session holds the lock.
	if _, err := e.ledger.Create(ctx, &model.BookingCandidate{
		ServiceID:    "svc-1",
		SpecialistID: "spec-1",
		UserID:       "user-2",
		TimeSlotID:   model.NewSlotKey("spec-1", start).String(),
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
	}); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	_, err := c.Confirm(ctx, model.Identity{UserID: "user-1", Role: model.RoleUser})
	if !apperrors.IsCode(err, apperrors.CodeSlotConflict) {
		t.Fatalf("expected SLOT_CONFLICT, got %v", err)
	}
	if c.Step() != StepSelectingSlot {
		t.Errorf("expected %s after conflict, got %s", StepSelectingSlot, c.Step())
	}
}

func TestCheckout_SelectServiceClearsDownstream(t *testing.T) {
	c, _ := newCheckoutEnv(t)
	ctx := context.Background()
	start := tuesday(10, 0)

	c.SelectService(testService())
	c.SelectSpecialist(testSpecialist())
	if _, err := c.SelectSlot(ctx, start, freeSlot(start), "user-1"); err != nil {
		t.Fatalf("select slot failed: %v", err)
	}

	if step := c.SelectService(testService()); step != StepSelectingSpecialist {
		t.Fatalf("expected %s, got %s", StepSelectingSpecialist, step)
	}
	if got := c.StepFor(StepLocked); got != StepSelectingSpecialist {
		t.Errorf("expected downstream selections cleared, StepFor(locked)=%s", got)
	}
}

func TestCheckout_ResetReleasesLock(t *testing.T) {
	c, e := newCheckoutEnv(t)
	ctx := context.Background()
	start := tuesday(10, 0)

	c.SelectService(testService())
	c.SelectSpecialist(testSpecialist())
	if _, err := c.SelectSlot(ctx, start, freeSlot(start), "user-1"); err != nil {
		t.Fatalf("select slot failed: %v", err)
	}

	c.Reset(ctx, "user-1")

	if c.Step() != StepSelectingService {
		t.Errorf("expected %s after reset, got %s", StepSelectingService, c.Step())
	}
	if _, err := e.locks.Acquire(ctx, model.NewSlotKey("spec-1", start), "user-2"); err != nil {
		t.Errorf("expected lock released by reset, acquire failed: %v", err)
	}
}
