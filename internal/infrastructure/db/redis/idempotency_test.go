package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := Open(context.Background(), Options{Addr: mr.Addr(), IdempotencyTTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestIdempotencyStore_RememberLookup(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	_, ok, err := store.Lookup(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Remember(ctx, "k1", 42))

	id, ok, err := store.Lookup(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	got, err := mr.Get("idempotency:k1")
	require.NoError(t, err)
	assert.Equal(t, "42", got)
	assert.Equal(t, time.Minute, mr.TTL("idempotency:k1"))
}

func TestIdempotencyStore_Expires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, "k1", 1))
	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Lookup(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdempotencyStore_DefaultTTL(t *testing.T) {
	store, _ := newTestStore(t, 0)
	assert.Equal(t, defaultIdempotencyTTL, store.ttl)
	assert.NotNil(t, store.Client())
}

func TestIdempotencyStore_CorruptValue(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	require.NoError(t, mr.Set("idempotency:k1", "not-a-number"))

	_, _, err := store.Lookup(context.Background(), "k1")
	assert.Error(t, err)
}

func TestIdempotencyStore_Unavailable(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	mr.Close()

	_, _, err := store.Lookup(context.Background(), "k1")
	assert.Error(t, err)
	assert.Error(t, store.Remember(context.Background(), "k1", 1))
}

func TestOpen_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Open(context.Background(), Options{Addr: addr, DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), addr)
}

func TestOptions_ClientOptions(t *testing.T) {
	ro := Options{Addr: "cache:6379", DB: 2, PoolSize: 20, IOTimeout: time.Second}.clientOptions()
	assert.Equal(t, "cache:6379", ro.Addr)
	assert.Equal(t, 2, ro.DB)
	assert.Equal(t, 20, ro.PoolSize)
	assert.Equal(t, defaultDialTimeout, ro.DialTimeout)
	assert.Equal(t, time.Second, ro.ReadTimeout)
	assert.Equal(t, time.Second, ro.WriteTimeout)

	ro = Options{}.clientOptions()
	assert.Equal(t, defaultIOTimeout, ro.ReadTimeout)
	assert.Equal(t, defaultIOTimeout, ro.WriteTimeout)
}
