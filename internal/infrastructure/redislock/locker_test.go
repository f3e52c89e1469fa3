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

func newLockerTest(t *testing.T, wait time.Duration) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return New(rdb, 5*time.Second, wait), mr
}

func TestLock_AcquireAndRelease(t *testing.T) {
	l, mr := newLockerTest(t, 100*time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "lock:register:a@example.com")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:register:a@example.com"))

	unlock()
	assert.False(t, mr.Exists("lock:register:a@example.com"))
}

func TestLock_TimesOutWhileHeld(t *testing.T) {
	l, _ := newLockerTest(t, 50*time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	defer unlock()

	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestLock_WaitsForRelease(t *testing.T) {
	l, _ := newLockerTest(t, 2*time.Second)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "k")
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		unlock()
	}()

	unlock2, err := l.Lock(ctx, "k")
	require.NoError(t, err)
	unlock2()
}

func TestLock_StaleReleaseKeepsNewOwner(t *testing.T) {
	l, mr := newLockerTest(t, 50*time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "k")
	require.NoError(t, err)

	// simulate expiry and a new owner
	mr.Del("k")
	require.NoError(t, mr.Set("k", "someone-else"))

	unlock()
	v, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", v)
}

func TestLock_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer func() { _ = rdb.Close() }()
	mr.Close()

	_, err = New(rdb, time.Second, 50*time.Millisecond).Lock(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockTimeout)
}
