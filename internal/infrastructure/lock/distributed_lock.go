package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// Redis locks
// ============================================================================
//
// Acquire:  SET key value NX PX ttl
//   - NX keeps the lock exclusive
//   - the ttl frees a lock whose holder died
//   - value identifies the holder, so a late Unlock cannot free someone else's lock
//
// Release:  GET + DEL in one Lua script, only when the value still matches.
//
// ============================================================================

var ErrLockFailed = errors.New("failed to acquire distributed lock")

const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock makes one attempt and never blocks.
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
}

// Lock retries TryLock every retryInterval, at most maxRetries times.
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock releases the lock if this holder still owns it.
func (l *DistributedLock) Unlock(ctx context.Context) error {
	return l.client.Eval(ctx, unlockScript, []string{l.key}, l.value).Err()
}

// NewReversalLock serialises reversals of one transfer session across processes.
func NewReversalLock(client *redis.Client, sessionID, owner string, ttl time.Duration) *DistributedLock {
	return NewDistributedLock(client, fmt.Sprintf("reversal:lock:session:%s", sessionID), owner, ttl)
}

// NewTransferAdmission is never unlocked: the key expiring after window is what lets the
// user's next transfer in.
func NewTransferAdmission(client *redis.Client, userID int64, requestID string, window time.Duration) *DistributedLock {
	return NewDistributedLock(client, fmt.Sprintf("transfer:admit:user:%d", userID), requestID, window)
}
