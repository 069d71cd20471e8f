package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func rentalLockKey(rentalID string) string {
	return fmt.Sprintf("lock:rental:payment:%s", rentalID)
}

// AcquireRentalLock attempts to acquire the checkout lock of a rental.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireRentalLock(ctx context.Context, rentalID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, rentalLockKey(rentalID), "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseRentalLock releases the checkout lock of a rental.
func (s *LockStore) ReleaseRentalLock(ctx context.Context, rentalID string) error {
	return s.client.Del(ctx, rentalLockKey(rentalID)).Err()
}
