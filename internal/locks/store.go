package locks

import (
	"context"
	"time"

	"slotbook/pkg/model"
)

// Store is the lock table backing the manager. Implementations must make
// Acquire a single indivisible read-modify-write per key so two concurrent
// acquirers on the same key cannot both observe it as unlocked. Keys are
// fully independent of each other.
type Store interface {
	// Acquire grants or renews the lock on key. It succeeds when no lock
	// exists, the existing lock expired at now, or the existing lock is
	// already held by holder; otherwise it fails with SlotLockedByOther.
	Acquire(ctx context.Context, key model.SlotKey, holder string, until, now time.Time) (model.SlotLock, error)

	// Release removes the lock only if currently held by holder.
	// Releasing a lock you do not hold is a no-op, never an error.
	Release(ctx context.Context, key model.SlotKey, holder string) error

	// ActiveForSpecialist returns the non-expired locks scoped to the
	// specialist, keyed by the canonical slot key string. Expired entries
	// are treated as absent.
	ActiveForSpecialist(ctx context.Context, specialistID string, now time.Time) (map[string]model.SlotLock, error)
}
