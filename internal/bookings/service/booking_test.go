package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"slotbook/internal/bookings/repository"
	"slotbook/internal/bookings/validator"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *capturingPublisher) Publish(_ context.Context, _ string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, value.(Event))
	return nil
}

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func monday(hour, minute int) time.Time {
	return time.Date(2025, time.March, 3, hour, minute, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (BookingService, *capturingPublisher) {
	t.Helper()
	log := logger.New(logger.Config{Level: logger.LevelError, Service: "test"})
	cfg := &config.Config{Log: log}
	pub := &capturingPublisher{}
	svc := NewBookingService(
		repository.NewMemoryBookingRepository(),
		validator.NewBookingValidator(log),
		cfg,
		clock.NewFake(monday(8, 0)),
		pub,
	)
	return svc, pub
}

func candidate(userID string, start, end time.Time) *model.BookingCandidate {
	return &model.BookingCandidate{
		ServiceID:    "svc-1",
		SpecialistID: "spec-1",
		UserID:       userID,
		TimeSlotID:   model.NewSlotKey("spec-1", start).String(),
		StartTime:    start,
		EndTime:      end,
	}
}

func TestCreate_AssignsIdentityAndStatus(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	booking, err := svc.Create(ctx, candidate("user-1", monday(14, 0), monday(14, 45)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.ID == "" {
		t.Error("expected a fresh id to be assigned")
	}
	if booking.Status != model.BookingStatusActive {
		t.Errorf("expected status active, got %s", booking.Status)
	}
	if booking.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
	if got := pub.types(); len(got) != 1 || got[0] != EventBookingCreated {
		t.Errorf("expected one booking.created event, got %v", got)
	}
}

func TestCreate_OverlapFailsWithSlotConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, candidate("user-1", monday(14, 0), monday(14, 45))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Overlapping interval for the same specialist must be rejected.
	_, err := svc.Create(ctx, candidate("user-2", monday(14, 30), monday(15, 0)))
	if !apperrors.IsCode(err, apperrors.CodeSlotConflict) {
		t.Fatalf("expected SLOT_CONFLICT, got %v", err)
	}

	// A back-to-back interval is fine: [14:45, 15:30) does not overlap.
	if _, err := svc.Create(ctx, candidate("user-2", monday(14, 45), monday(15, 30))); err != nil {
		t.Fatalf("adjacent interval must succeed, got %v", err)
	}
}

func TestCreate_CancelledBookingDoesNotBlock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, candidate("user-1", monday(14, 0), monday(15, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Create(ctx, candidate("user-2", monday(14, 0), monday(15, 0))); err != nil {
		t.Fatalf("slot freed by cancellation must be bookable, got %v", err)
	}
}

func TestCreate_ValidationFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	bad := candidate("user-1", monday(15, 0), monday(14, 0)) // end before start
	if _, err := svc.Create(ctx, bad); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("inverted interval: expected VALIDATION_ERROR, got %v", err)
	}

	missing := candidate("", monday(14, 0), monday(15, 0))
	if _, err := svc.Create(ctx, missing); !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("missing user: expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCancel_Semantics(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	booking, err := svc.Create(ctx, candidate("user-1", monday(14, 0), monday(15, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != model.BookingStatusCancelled {
		t.Errorf("expected status cancelled, got %s", cancelled.Status)
	}

	// Cancelled bookings are retained for history, not deleted.
	got, err := svc.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("cancelled booking must remain readable: %v", err)
	}
	if got.Status != model.BookingStatusCancelled {
		t.Errorf("expected persisted status cancelled, got %s", got.Status)
	}

	// A terminal booking is immutable: re-cancel is INVALID_STATE.
	if _, err := svc.Cancel(ctx, booking.ID); !apperrors.IsCode(err, apperrors.CodeInvalidState) {
		t.Errorf("re-cancel: expected INVALID_STATE, got %v", err)
	}

	if _, err := svc.Cancel(ctx, "missing-id"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("unknown id: expected NOT_FOUND, got %v", err)
	}

	if got := pub.types(); len(got) != 2 || got[1] != EventBookingCancelled {
		t.Errorf("expected created+cancelled events, got %v", got)
	}
}

func TestReschedule_MovesAtomically(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	booking, err := svc.Create(ctx, candidate("user-1", monday(14, 0), monday(15, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	moved, err := svc.Reschedule(ctx, booking.ID, monday(16, 0), monday(17, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !moved.StartTime.Equal(monday(16, 0)) || !moved.EndTime.Equal(monday(17, 0)) {
		t.Errorf("expected 16:00-17:00, got %s-%s", moved.StartTime, moved.EndTime)
	}
	if moved.ID != booking.ID || !moved.CreatedAt.Equal(booking.CreatedAt) || moved.ServiceID != booking.ServiceID {
		t.Error("reschedule must keep id, created_at and service unchanged")
	}
	wantSlot := model.NewSlotKey("spec-1", monday(16, 0)).String()
	if moved.TimeSlotID != wantSlot {
		t.Errorf("expected slot id %s, got %s", wantSlot, moved.TimeSlotID)
	}

	// The old interval is free again.
	if _, err := svc.Create(ctx, candidate("user-2", monday(14, 0), monday(15, 0))); err != nil {
		t.Fatalf("vacated interval must be bookable, got %v", err)
	}
}

func TestReschedule_ConflictLeavesBookingUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	blocker, err := svc.Create(ctx, candidate("user-2", monday(10, 0), monday(11, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = blocker

	booking, err := svc.Create(ctx, candidate("user-1", monday(14, 0), monday(15, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Reschedule(ctx, booking.ID, monday(10, 30), monday(11, 30))
	if !apperrors.IsCode(err, apperrors.CodeSlotConflict) {
		t.Fatalf("expected SLOT_CONFLICT, got %v", err)
	}

	unchanged, err := svc.GetByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !unchanged.StartTime.Equal(monday(14, 0)) || !unchanged.EndTime.Equal(monday(15, 0)) {
		t.Errorf("failed reschedule must not change times, got %s-%s", unchanged.StartTime, unchanged.EndTime)
	}
}

func TestReschedule_OntoItsOwnIntervalSucceeds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	booking, err := svc.Create(ctx, candidate("user-1", monday(14, 0), monday(15, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shifting within its own current interval only conflicts with itself,
	// which is excluded from the check.
	if _, err := svc.Reschedule(ctx, booking.ID, monday(14, 30), monday(15, 30)); err != nil {
		t.Fatalf("self-overlapping move must succeed, got %v", err)
	}
}

func TestReschedule_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Reschedule(ctx, "missing-id", monday(10, 0), monday(11, 0)); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("unknown id: expected NOT_FOUND, got %v", err)
	}

	booking, err := svc.Create(ctx, candidate("user-1", monday(14, 0), monday(15, 0)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Reschedule(ctx, booking.ID, monday(11, 0), monday(10, 0)); !apperrors.IsCode(err, apperrors.CodeInvalidInterval) {
		t.Errorf("inverted interval: expected INVALID_INTERVAL, got %v", err)
	}

	if _, err := svc.Cancel(ctx, booking.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Reschedule(ctx, booking.ID, monday(16, 0), monday(17, 0)); !apperrors.IsCode(err, apperrors.CodeInvalidState) {
		t.Errorf("terminal booking: expected INVALID_STATE, got %v", err)
	}
}

func TestListScopes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, candidate("user-1", monday(9, 0), monday(10, 0))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(ctx, candidate("user-2", monday(11, 0), monday(12, 0))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := svc.ListAll(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListAll: expected 2 bookings, got %d (err %v)", len(all), err)
	}

	mine, err := svc.ListForUser(ctx, "user-1")
	if err != nil || len(mine) != 1 || mine[0].UserID != "user-1" {
		t.Fatalf("ListForUser: expected only user-1's booking, got %v (err %v)", mine, err)
	}

	windowStart, windowEnd := monday(0, 0), monday(10, 30)
	inWindow, err := svc.ListForSpecialist(ctx, "spec-1", &windowStart, &windowEnd)
	if err != nil || len(inWindow) != 1 {
		t.Fatalf("ListForSpecialist: expected 1 booking in window, got %d (err %v)", len(inWindow), err)
	}
}

func TestCreate_NoDoubleBookingUnderConcurrency(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			userID := "user-" + string(rune('a'+n))
			_, err := svc.Create(ctx, candidate(userID, monday(14, 0), monday(15, 0)))
			errCh <- err
		}(i)
	}
	wg.Wait()
	close(errCh)

	var created, conflicts int
	for err := range errCh {
		switch {
		case err == nil:
			created++
		case apperrors.IsCode(err, apperrors.CodeSlotConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 || conflicts != workers-1 {
		t.Errorf("expected exactly 1 success and %d conflicts, got %d/%d", workers-1, created, conflicts)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ledger must contain exactly 1 booking, got %d", len(all))
	}
}
