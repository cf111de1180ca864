package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) (*RunLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRunLock(client), mr
}

func TestRunLockSerializesHolders(t *testing.T) {
	lock, _ := newTestLock(t)
	ctx := context.Background()
	key := BillingLockKey("C2201")

	ok, err := lock.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = lock.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, lock.Unlock(ctx, key))

	ok, err = lock.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRunLockIsPerCustomer(t *testing.T) {
	lock, _ := newTestLock(t)
	ctx := context.Background()

	ok, err := lock.TryLock(ctx, BillingLockKey("C2201"), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = lock.TryLock(ctx, BillingLockKey("C2105"), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRunLockExpires(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()
	key := BillingLockKey("C2201")

	ok, err := lock.TryLock(ctx, key, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = lock.TryLock(ctx, key, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
}
