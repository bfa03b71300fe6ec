// Package locks serializes webhook processing per order so a duplicate
// delivery cannot race the original through the reconciler. The database
// unique constraints remain the hard guarantee; the lock just avoids
// burning a transaction on the loser.
package locks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockBusy means another delivery for the same order is mid-flight. The
// webhook handler answers 5xx so the provider retries later.
var ErrLockBusy = errors.New("order is already being processed")

var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

type OrderLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewOrderLocker wraps a redis client. A nil client yields a locker whose
// Acquire is a no-op, so the service degrades instead of refusing webhooks.
func NewOrderLocker(rdb *redis.Client) *OrderLocker {
	return &OrderLocker{rdb: rdb, ttl: 30 * time.Second}
}

// Acquire takes the per-order lock, polling briefly if it is held. The
// returned release function is always safe to call. A redis outage is
// treated as "no lock available" rather than an error.
func (l *OrderLocker) Acquire(ctx context.Context, orderID uuid.UUID) (func(), error) {
	if l == nil || l.rdb == nil {
		return func() {}, nil
	}

	key := "webhook:order:" + orderID.String()
	token := uuid.New().String()
	deadline := time.Now().Add(5 * time.Second)

	for {
		acquired, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return func() {}, nil
		}
		if acquired {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	return func() {
		_ = releaseScript.Run(context.Background(), l.rdb, []string{key}, token).Err()
	}, nil
}
