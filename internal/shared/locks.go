// Package shared holds small helpers used across service packages.
package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// BillingLockKey builds redis keys for per-customer billing critical
// sections. Concurrent runs for one customer must not interleave.
func BillingLockKey(customerID string) string {
	return fmt.Sprintf("billing:customer:%s:lock", customerID)
}

// RunLock is a best-effort Redis mutex. The TTL bounds how long a crashed
// run can block its customer.
type RunLock struct {
	client *redis.Client
}

// NewRunLock wraps a redis client as a lock provider.
func NewRunLock(client *redis.Client) *RunLock {
	return &RunLock{client: client}
}

// TryLock acquires the key if free. Returns false when another holder owns it.
func (l *RunLock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("shared: acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// Unlock releases the key.
func (l *RunLock) Unlock(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("shared: release lock %s: %w", key, err)
	}
	return nil
}
