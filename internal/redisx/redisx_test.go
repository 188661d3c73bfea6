package redisx

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-storefront-orders/internal/orders"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := New(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestStatusCache_RoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := &StatusCache{RDB: rdb}
	ctx := context.Background()

	_, ok := c.Get(ctx, "o-1")
	assert.False(t, ok)

	c.Set(ctx, "o-1", orders.CachedStatus{Status: orders.StatusShipped, UserID: "u-1"})
	got, ok := c.Get(ctx, "o-1")
	require.True(t, ok)
	assert.Equal(t, orders.StatusShipped, got.Status)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, TTLStatusCache, mr.TTL(fmt.Sprintf(KeyOrderStatus, "o-1")))

}

func TestStatusCache_FillKeepsNewerEntry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := &StatusCache{RDB: rdb}
	ctx := context.Background()

	c.Fill(ctx, "o-4", orders.CachedStatus{Status: orders.StatusPending, UserID: "u-1"})
	got, ok := c.Get(ctx, "o-4")
	require.True(t, ok)
	assert.Equal(t, orders.StatusPending, got.Status)
	assert.Equal(t, TTLStatusCache, mr.TTL(fmt.Sprintf(KeyOrderStatus, "o-4")))

	c.Set(ctx, "o-4", orders.CachedStatus{Status: orders.StatusCancelled, UserID: "u-1"})
	c.Fill(ctx, "o-4", orders.CachedStatus{Status: orders.StatusPending, UserID: "u-1"})
	got, ok = c.Get(ctx, "o-4")
	require.True(t, ok)
	assert.Equal(t, orders.StatusCancelled, got.Status)
}

func TestStatusCache_IgnoresGarbage(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := &StatusCache{RDB: rdb}

	require.NoError(t, mr.Set(fmt.Sprintf(KeyOrderStatus, "o-2"), `{"status":"lost"}`))
	_, ok := c.Get(context.Background(), "o-2")
	assert.False(t, ok)
}

func TestStatusCache_Expires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := &StatusCache{RDB: rdb}
	ctx := context.Background()

	c.Set(ctx, "o-3", orders.CachedStatus{Status: orders.StatusPending, UserID: "u-1"})
	mr.FastForward(TTLStatusCache + time.Second)
	_, ok := c.Get(ctx, "o-3")
	assert.False(t, ok)
}

func TestCheckoutKeys(t *testing.T) {
	_, rdb := newTestRedis(t)
	k := &CheckoutKeys{RDB: rdb}
	ctx := context.Background()

	_, ok, err := k.Lookup(ctx, "u-1", "key-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, k.Remember(ctx, "u-1", "key-1", "o-9"))
	id, ok, err := k.Lookup(ctx, "u-1", "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "o-9", id)

	_, ok, err = k.Lookup(ctx, "u-2", "key-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClaim(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	key := fmt.Sprintf(KeyDedup, "invoicer", "ev-1")

	won, err := Claim(ctx, rdb, key, TTLDedup)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = Claim(ctx, rdb, key, TTLDedup)
	require.NoError(t, err)
	assert.False(t, won)

	assert.True(t, mr.Exists(key))

	require.NoError(t, Release(ctx, rdb, key))
	won, err = Claim(ctx, rdb, key, TTLDedup)
	require.NoError(t, err)
	assert.True(t, won)
}
