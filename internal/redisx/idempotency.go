package redisx

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CheckoutKeys maps a client Idempotency-Key to the order it produced,
// scoped per user.
type CheckoutKeys struct {
	RDB *redis.Client
}

func (k *CheckoutKeys) Lookup(ctx context.Context, userID, key string) (string, bool, error) {
	id, err := k.RDB.Get(ctx, fmt.Sprintf(KeyIdemCheckout, userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (k *CheckoutKeys) Remember(ctx context.Context, userID, key, orderID string) error {
	return k.RDB.Set(ctx, fmt.Sprintf(KeyIdemCheckout, userID, key), orderID, TTLIdempotency).Err()
}
