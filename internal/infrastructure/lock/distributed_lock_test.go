package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestDistributedLock_TryLockAndUnlock(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()

	first := NewDistributedLock(client, "k", "a", time.Minute)
	second := NewDistributedLock(client, "k", "b", time.Minute)

	ok, err := first.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// Unlock by a non-holder leaves the lock alone.
	require.NoError(t, second.Unlock(ctx))
	ok, err = second.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Unlock(ctx))
	ok, err = second.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDistributedLock_LockGivesUp(t *testing.T) {
	_, client := newClient(t)
	ctx := context.Background()

	holder := NewDistributedLock(client, "k", "a", time.Minute)
	ok, err := holder.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	waiter := NewDistributedLock(client, "k", "b", time.Minute)
	err = waiter.Lock(ctx, time.Millisecond, 3)
	assert.ErrorIs(t, err, ErrLockFailed)
}

func TestTransferAdmission_Window(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	ok, err := NewTransferAdmission(client, 7, "r1", time.Second).TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewTransferAdmission(client, 7, "r2", time.Second).TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = NewTransferAdmission(client, 8, "r3", time.Second).TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(time.Second)
	ok, err = NewTransferAdmission(client, 7, "r4", time.Second).TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewReversalLock_Key(t *testing.T) {
	mr, client := newClient(t)
	ctx := context.Background()

	l := NewReversalLock(client, "abc", "owner", time.Second)
	ok, err := l.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("reversal:lock:session:abc"))

	require.NoError(t, l.Unlock(ctx))
	assert.False(t, mr.Exists("reversal:lock:session:abc"))
}
