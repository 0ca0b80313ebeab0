package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domain "github.com/tiendago/storefront/internal/domain/order"
)

const (
	// Cache order status: order_status:{order_id} -> {"status": "...", "updated_at": "..."}
	keyOrderStatus = "order_status:%s"
)

var ttlStatusCache = 5 * time.Minute

// ErrMiss is returned when the status is not cached.
var ErrMiss = errors.New("redisx: cache miss")

type cachedStatus struct {
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusCache is a read-through cache over the order's status field. It exists
// so GET polling during async payment finalization does not hammer the
// database; it is always safe to lose.
type StatusCache struct {
	rdb *redis.Client
}

func NewStatusCache(rdb *redis.Client) *StatusCache {
	return &StatusCache{rdb: rdb}
}

func (c *StatusCache) Set(ctx context.Context, o *domain.Order) error {
	if c == nil || c.rdb == nil || o == nil {
		return nil
	}
	payload, err := json.Marshal(cachedStatus{
		Status:    string(o.Status),
		UpdatedAt: o.UpdatedAt,
	})
	if err != nil {
		return err
	}
	key := fmt.Sprintf(keyOrderStatus, o.ID)
	return c.rdb.Set(ctx, key, payload, ttlStatusCache).Err()
}

func (c *StatusCache) Get(ctx context.Context, orderID string) (domain.Status, error) {
	if c == nil || c.rdb == nil {
		return "", ErrMiss
	}
	key := fmt.Sprintf(keyOrderStatus, orderID)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	var cached cachedStatus
	if err := json.Unmarshal(raw, &cached); err != nil {
		return "", err
	}
	return domain.Status(cached.Status), nil
}
