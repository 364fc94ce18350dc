package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/Ashish-Kr-1/billing-sys-rkct-sub000/internal/tenant"
)

// Locker serializes number generation per company, document type and
// financial year through a redis lock. Optional: the unique index on the
// number column already guarantees correctness, the lock only trades a
// retry for a short wait under contention.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewLocker builds a Locker on top of an existing redis client.
func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{client: redislock.New(rdb), ttl: 10 * time.Second}
}

// Acquire obtains the lock for the given scope, waiting briefly behind a
// concurrent holder. The caller must Release the returned lock.
func (l *Locker) Acquire(ctx context.Context, t tenant.Tenant, docType DocType, now time.Time) (*redislock.Lock, error) {
	key := fmt.Sprintf("seq:%s:%s:%s", t.ShortName, docType, FinancialYear(now))
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 40),
	})
	if err != nil {
		return nil, fmt.Errorf("sequence: obtain lock %s: %w", key, err)
	}
	return lock, nil
}
