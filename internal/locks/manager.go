// Package locks implements time-boxed mutual exclusion over slot keys:
// a short-lived hold that gives one user a window to finish checkout
// without racing other users for the same visible slot. Locks are
// advisory; the booking ledger remains the final authority on conflicts.
package locks

import (
	"context"
	"time"

	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/clock"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

type Manager struct {
	store Store
	clock clock.Clock
	ttl   time.Duration
	log   *logger.Logger
}

func NewManager(store Store, clk clock.Clock, ttl time.Duration, log *logger.Logger) *Manager {
	return &Manager{
		store: store,
		clock: clk,
		ttl:   ttl,
		log:   log,
	}
}

// Acquire grants or renews the lock on key for requesterID using the
// manager's default hold duration. A repeated acquire by the current
// holder extends the expiry. A different non-expired holder causes
// SlotLockedByOther.
func (m *Manager) Acquire(ctx context.Context, key model.SlotKey, requesterID string) (model.SlotLock, error) {
	return m.AcquireFor(ctx, key, requesterID, m.ttl)
}

// AcquireFor is Acquire with an explicit hold duration.
func (m *Manager) AcquireFor(ctx context.Context, key model.SlotKey, requesterID string, hold time.Duration) (model.SlotLock, error) {
	if requesterID == "" {
		return model.SlotLock{}, apperrors.InvalidInput("requester ID cannot be empty")
	}
	if hold <= 0 {
		return model.SlotLock{}, apperrors.InvalidDuration("lock hold duration must be positive")
	}

	now := m.clock.Now()
	lock, err := m.store.Acquire(ctx, key, requesterID, now.Add(hold), now)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeSlotLocked) {
			m.log.Info("Slot lock contended",
				"slot_key", key.String(),
				"requester_id", requesterID,
			)
		}
		return model.SlotLock{}, err
	}

	m.log.Info("Slot lock acquired",
		"slot_key", key.String(),
		"locked_by", requesterID,
		"locked_until", lock.LockedUntil,
	)
	return lock, nil
}

// Release drops the lock if requesterID holds it. Releasing a lock you do
// not hold, or one that already expired, is harmless and never errors.
func (m *Manager) Release(ctx context.Context, key model.SlotKey, requesterID string) error {
	if err := m.store.Release(ctx, key, requesterID); err != nil {
		return apperrors.Internal("Failed to release slot lock", err)
	}
	m.log.Debug("Slot lock released",
		"slot_key", key.String(),
		"requester_id", requesterID,
	)
	return nil
}

// ActiveForSpecialist returns the non-expired locks scoped to the
// specialist, keyed by canonical slot key string.
func (m *Manager) ActiveForSpecialist(ctx context.Context, specialistID string) (map[string]model.SlotLock, error) {
	active, err := m.store.ActiveForSpecialist(ctx, specialistID, m.clock.Now())
	if err != nil {
		return nil, apperrors.Internal("Failed to list active slot locks", err)
	}
	return active, nil
}
