package workflow

import (
	"context"
	"sync"
	"time"

	"slotbook/internal/locks"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

type Step string

const (
	StepSelectingService    Step = "selecting_service"
	StepSelectingSpecialist Step = "selecting_specialist"
	StepSelectingSlot       Step = "selecting_slot"
	StepLocked              Step = "locked"
	StepConfirming          Step = "confirming"
	StepCommitted           Step = "committed"
)

// Checkout tracks one user's multi-step booking session. Each forward
// transition requires the prior step's selection; selecting upstream
// clears everything downstream.
type Checkout struct {
	mu sync.Mutex

	step       Step
	service    *model.Service
	specialist *model.Specialist
	date       time.Time
	slot       *model.CandidateSlot
	lock       *model.SlotLock
	booking    *model.Booking

	locks    *locks.Manager
	workflow WorkflowService
}

func NewCheckout(lockManager *locks.Manager, workflow WorkflowService) *Checkout {
	return &Checkout{
		step:     StepSelectingService,
		locks:    lockManager,
		workflow: workflow,
	}
}

func (c *Checkout) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Checkout) Booking() *model.Booking {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.booking
}

// StepFor resolves the step that may actually be rendered for the
// requested one: a step whose prerequisite selection is missing falls
// back to that prerequisite instead of erroring.
func (c *Checkout) StepFor(requested Step) Step {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := requested
	if step == StepCommitted && c.booking == nil {
		step = StepConfirming
	}
	if (step == StepConfirming || step == StepLocked) && c.lock == nil {
		step = StepSelectingSlot
	}
	if step == StepSelectingSlot && c.specialist == nil {
		step = StepSelectingSpecialist
	}
	if step == StepSelectingSpecialist && c.service == nil {
		step = StepSelectingService
	}
	return step
}

// SelectService sets the service and clears every downstream selection.
func (c *Checkout) SelectService(service *model.Service) Step {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.service = service
	c.specialist = nil
	c.slot = nil
	c.lock = nil
	c.booking = nil
	if service == nil {
		c.step = StepSelectingService
	} else {
		c.step = StepSelectingSpecialist
	}
	return c.step
}

func (c *Checkout) SelectSpecialist(specialist *model.Specialist) Step {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.service == nil {
		c.step = StepSelectingService
		return c.step
	}
	c.specialist = specialist
	c.slot = nil
	c.lock = nil
	if specialist == nil {
		c.step = StepSelectingSpecialist
	} else {
		c.step = StepSelectingSlot
	}
	return c.step
}

// SelectSlot locks the chosen slot for the requester. On contention the
// step stays at slot selection so the caller refreshes availability.
func (c *Checkout) SelectSlot(ctx context.Context, date time.Time, slot model.CandidateSlot, requesterID string) (Step, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.service == nil || c.specialist == nil {
		c.step = c.missingPrereqStep()
		return c.step, nil
	}

	key := model.NewSlotKey(c.specialist.ID, slot.StartTime)
	lock, err := c.locks.Acquire(ctx, key, requesterID)
	if err != nil {
		c.step = StepSelectingSlot
		return c.step, err
	}

	c.date = date
	c.slot = &slot
	c.lock = &lock
	c.step = StepLocked
	return c.step, nil
}

// Confirm commits the held slot to the ledger. Without an authenticated
// identity the session halts at Confirming and surfaces an auth-required
// condition rather than writing. A ledger SLOT_CONFLICT discards the lock
// state and returns the session to slot selection.
func (c *Checkout) Confirm(ctx context.Context, identity model.Identity) (*model.Booking, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lock == nil || c.slot == nil {
		c.step = c.missingPrereqStep()
		return nil, apperrors.InvalidState("No locked slot to confirm")
	}
	c.step = StepConfirming

	if !identity.Authenticated() {
		return nil, apperrors.Unauthorized("Sign in to confirm a booking")
	}

	booking, err := c.workflow.ConfirmBooking(ctx, identity, ConfirmInput{
		SlotKey:      c.lock.Key.String(),
		ServiceID:    c.service.ID,
		SpecialistID: c.specialist.ID,
		StartTime:    c.slot.StartTime,
		EndTime:      c.slot.EndTime,
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeSlotConflict) {
			c.slot = nil
			c.lock = nil
			c.step = StepSelectingSlot
		}
		return nil, err
	}

	c.booking = booking
	c.lock = nil
	c.step = StepCommitted
	return booking, nil
}

// Reset abandons the session, releasing any held lock.
func (c *Checkout) Reset(ctx context.Context, requesterID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lock != nil {
		_ = c.locks.Release(ctx, c.lock.Key, requesterID)
	}
	c.service = nil
	c.specialist = nil
	c.slot = nil
	c.lock = nil
	c.booking = nil
	c.step = StepSelectingService
}

func (c *Checkout) missingPrereqStep() Step {
	if c.service == nil {
		return StepSelectingService
	}
	if c.specialist == nil {
		return StepSelectingSpecialist
	}
	return StepSelectingSlot
}
