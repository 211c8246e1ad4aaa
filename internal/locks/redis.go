package locks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

const redisKeyPrefix = "slotlock:"

// Lua keeps check-and-set atomic on the redis side: grant when the key is
// absent or already held by this holder, reject otherwise. Expiry is
// enforced by redis key TTL.
var acquireScript = redis.NewScript(`
local holder = redis.call('GET', KEYS[1])
if holder and holder ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PXAT', ARGV[2])
return 1
`)

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// redisStore backs the lock table with redis so multiple instances share
// one lock space.
type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Acquire(ctx context.Context, key model.SlotKey, holder string, until, _ time.Time) (model.SlotLock, error) {
	id := key.String()
	granted, err := acquireScript.Run(ctx, s.client,
		[]string{redisKeyPrefix + id},
		holder, until.UnixMilli(),
	).Int()
	if err != nil {
		return model.SlotLock{}, fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	if granted == 0 {
		return model.SlotLock{}, apperrors.SlotLockedByOther(id)
	}
	return model.SlotLock{Key: key, LockedBy: holder, LockedUntil: until}, nil
}

func (s *redisStore) Release(ctx context.Context, key model.SlotKey, holder string) error {
	if err := releaseScript.Run(ctx, s.client,
		[]string{redisKeyPrefix + key.String()},
		holder,
	).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}

func (s *redisStore) ActiveForSpecialist(ctx context.Context, specialistID string, now time.Time) (map[string]model.SlotLock, error) {
	result := make(map[string]model.SlotLock)

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+specialistID+"@*", 100).Iterator()
	for iter.Next(ctx) {
		redisKey := iter.Val()
		id := strings.TrimPrefix(redisKey, redisKeyPrefix)

		key, err := model.ParseSlotKey(id)
		if err != nil {
			continue
		}

		holder, err := s.client.Get(ctx, redisKey).Result()
		if err == redis.Nil {
			continue // expired between SCAN and GET
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read slot lock %s: %w", id, err)
		}

		ttl, err := s.client.PTTL(ctx, redisKey).Result()
		if err != nil || ttl <= 0 {
			continue
		}

		result[id] = model.SlotLock{
			Key:         key,
			LockedBy:    holder,
			LockedUntil: now.Add(ttl),
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan slot locks: %w", err)
	}
	return result, nil
}
