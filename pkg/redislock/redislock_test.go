package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T, opts Options) (*Locker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, opts), mr
}

func TestLocker_SecondHolderIsExcluded(t *testing.T) {
	locker, mr := newTestLocker(t, Options{
		Prefix:     "slot:",
		MaxWait:    50 * time.Millisecond,
		RetryDelay: 10 * time.Millisecond,
	})
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "t1|2025-10-07|15:00")
	require.NoError(t, err)
	assert.True(t, mr.Exists("slot:t1|2025-10-07|15:00"))

	_, err = locker.Acquire(ctx, "t1|2025-10-07|15:00")
	assert.ErrorIs(t, err, ErrNotAcquired)

	other, err := locker.Acquire(ctx, "t1|2025-10-07|16:00")
	require.NoError(t, err)
	other()

	release()
	assert.False(t, mr.Exists("slot:t1|2025-10-07|15:00"))

	again, err := locker.Acquire(ctx, "t1|2025-10-07|15:00")
	require.NoError(t, err)
	again()
}

func TestLocker_ReleaseDoesNotDropForeignLock(t *testing.T) {
	locker, mr := newTestLocker(t, Options{TTL: time.Second})
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)

	// TTL истёк, ключ захватил другой процесс
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("k", "foreign"))

	release()

	v, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "foreign", v)
}

func TestLocker_WaitsForRelease(t *testing.T) {
	locker, _ := newTestLocker(t, Options{MaxWait: time.Second, RetryDelay: 5 * time.Millisecond})
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		release()
	}()

	second, err := locker.Acquire(ctx, "k")
	require.NoError(t, err)
	second()
}

func TestIsContention(t *testing.T) {
	locker, mr := newTestLocker(t, Options{
		Prefix:     "slot:",
		MaxWait:    30 * time.Millisecond,
		RetryDelay: 10 * time.Millisecond,
	})
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "t1|2025-10-07|15:00")
	require.NoError(t, err)
	defer release()

	_, err = locker.Acquire(ctx, "t1|2025-10-07|15:00")
	require.Error(t, err)
	assert.True(t, IsContention(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.True(t, IsContention(cancelled.Err()))

	// Redis недоступен: это не конфликт
	mr.Close()
	_, err = locker.Acquire(ctx, "t1|2025-10-08|15:00")
	require.Error(t, err)
	assert.False(t, IsContention(err))
}
