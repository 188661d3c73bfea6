package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/ariefcatur/go-storefront-orders/internal/orders"
	"github.com/redis/go-redis/v9"
)

// StatusCache keeps order status in Redis. Failures degrade to a miss.
type StatusCache struct {
	RDB *redis.Client
}

func (c *StatusCache) Get(ctx context.Context, orderID string) (orders.CachedStatus, bool) {
	var s orders.CachedStatus
	b, err := c.RDB.Get(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("status cache get %s: %v", orderID, err)
		}
		return s, false
	}
	if err := json.Unmarshal(b, &s); err != nil || !s.Status.Valid() {
		return orders.CachedStatus{}, false
	}
	return s, true
}

func (c *StatusCache) Set(ctx context.Context, orderID string, s orders.CachedStatus) {
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.RDB.Set(ctx, fmt.Sprintf(KeyOrderStatus, orderID), b, TTLStatusCache).Err(); err != nil {
		log.Printf("status cache set %s: %v", orderID, err)
	}
}

// Fill stores s only when no entry exists, so a read that raced a status
// change cannot overwrite the newer value.
func (c *StatusCache) Fill(ctx context.Context, orderID string, s orders.CachedStatus) {
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.RDB.SetNX(ctx, fmt.Sprintf(KeyOrderStatus, orderID), b, TTLStatusCache).Err(); err != nil {
		log.Printf("status cache fill %s: %v", orderID, err)
	}
}
