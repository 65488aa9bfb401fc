package coupons

import (
	"context"
	"encoding/json"
	"time"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgredis "github.com/storefrontlabs/storefront-backend/pkg/redis"
)

// CacheStore is the slice of the redis client the coupon cache needs.
type CacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CouponKey(code string) string
}

// Cache keeps coupon definitions in redis so validation does not hit the
// database on every cart recalculation.
type Cache struct {
	store CacheStore
	ttl   time.Duration
}

// NewCache builds a coupon cache. A nil store disables caching.
func NewCache(store CacheStore, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl}
}

// Get returns the cached coupon or nil on a miss. Decode failures are
// treated as misses so a stale schema never breaks validation.
func (c *Cache) Get(ctx context.Context, code string) (*models.Coupon, error) {
	if c == nil || c.store == nil {
		return nil, nil
	}
	raw, err := c.store.Get(ctx, c.store.CouponKey(code))
	if pkgredis.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var coupon models.Coupon
	if err := json.Unmarshal([]byte(raw), &coupon); err != nil {
		return nil, nil
	}
	return &coupon, nil
}

// Put stores the coupon under its upper-cased code.
func (c *Cache) Put(ctx context.Context, coupon *models.Coupon) error {
	if c == nil || c.store == nil || coupon == nil {
		return nil
	}
	payload, err := json.Marshal(coupon)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.store.CouponKey(coupon.Code), string(payload), c.ttl)
}

// Invalidate drops the cached entry after an admin edit or a redemption.
func (c *Cache) Invalidate(ctx context.Context, code string) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Del(ctx, c.store.CouponKey(code))
}
