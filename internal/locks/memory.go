package locks

import (
	"context"
	"sync"
	"time"

	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

// memoryStore keeps the lock table in a mutex-guarded map. Expiry is lazy:
// expired entries are overwritten on acquire and skipped on reads, no
// background sweeper is needed for correctness.
type memoryStore struct {
	mu    sync.Mutex
	locks map[string]model.SlotLock
}

func NewMemoryStore() Store {
	return &memoryStore{
		locks: make(map[string]model.SlotLock),
	}
}

func (s *memoryStore) Acquire(_ context.Context, key model.SlotKey, holder string, until, now time.Time) (model.SlotLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := key.String()
	if existing, ok := s.locks[id]; ok && !existing.ExpiredAt(now) && existing.LockedBy != holder {
		return model.SlotLock{}, apperrors.SlotLockedByOther(id)
	}

	lock := model.SlotLock{
		Key:         key,
		LockedBy:    holder,
		LockedUntil: until,
	}
	s.locks[id] = lock
	return lock, nil
}

func (s *memoryStore) Release(_ context.Context, key model.SlotKey, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := key.String()
	if existing, ok := s.locks[id]; ok && existing.LockedBy == holder {
		delete(s.locks, id)
	}
	return nil
}

func (s *memoryStore) ActiveForSpecialist(_ context.Context, specialistID string, now time.Time) (map[string]model.SlotLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make(map[string]model.SlotLock)
	for id, lock := range s.locks {
		if lock.Key.SpecialistID != specialistID {
			continue
		}
		if lock.ExpiredAt(now) {
			// Evict while we are here; correctness does not depend on it.
			delete(s.locks, id)
			continue
		}
		result[id] = lock
	}
	return result, nil
}
