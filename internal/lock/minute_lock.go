// internal/lock/minute_lock.go
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MinuteLock guarantees at-most-once billing per consultation per minute
// across processes. Acquire has set-if-absent semantics: it returns true for
// exactly one caller per key, and the key expires on its own so a holder
// that dies mid-cycle never blocks the next minute.
type MinuteLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MinuteKey builds the lock key for one consultation and one billing epoch.
// Two processes waking inside the same interval compute the same bucket and
// therefore contend on the same key.
func MinuteKey(consultationID int64, at time.Time, interval time.Duration) string {
	bucket := at.Unix() / int64(interval/time.Second)
	return fmt.Sprintf("bill:%d:%d", consultationID, bucket)
}

// RedisMinuteLock implements MinuteLock on Redis SET NX.
type RedisMinuteLock struct {
	rdb redis.UniversalClient
}

// NewRedisMinuteLock creates a new RedisMinuteLock.
func NewRedisMinuteLock(rdb redis.UniversalClient) *RedisMinuteLock {
	return &RedisMinuteLock{rdb: rdb}
}

// Acquire attempts to claim the key. It returns false when another holder
// already claimed it, which is expected contention, not an error.
func (l *RedisMinuteLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire minute lock %s: %w", key, err)
	}
	return ok, nil
}
