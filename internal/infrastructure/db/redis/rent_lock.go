package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rentcar/rental-api/internal/core/domain"
)

const defaultRentLockTTL = 10 * time.Second

// releaseScript deletes the lock only when it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RentLock is a best-effort per-car mutex backed by SET NX with a TTL, so a
// crashed holder cannot block a car forever. Each acquire stores a fresh
// token and only that token can release the lock.
// Key format: lock:rent:<car_id>
type RentLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRentLock creates a RentLock; ttl <= 0 uses defaultRentLockTTL.
func NewRentLock(client *redis.Client, ttl time.Duration) *RentLock {
	if ttl <= 0 {
		ttl = defaultRentLockTTL
	}
	return &RentLock{client: client, ttl: ttl}
}

func (l *RentLock) Acquire(ctx context.Context, carID uint) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(carID), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("rent lock acquire: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release returns domain.ErrLockLost when the lock expired and is now gone
// or held by someone else; the key is left untouched in that case.
func (l *RentLock) Release(ctx context.Context, carID uint, token string) error {
	deleted, err := releaseScript.Run(ctx, l.client, []string{l.key(carID)}, token).Int64()
	if err != nil {
		return fmt.Errorf("rent lock release: %w", err)
	}
	if deleted == 0 {
		return domain.ErrLockLost
	}
	return nil
}

func (l *RentLock) key(carID uint) string {
	return fmt.Sprintf("lock:rent:%d", carID)
}
