// Package cache holds the Redis-backed stores: the product read-through
// cache, idempotency keys and persisted carts.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/cart"
	"storefront/internal/entity"
)

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotent-key:%s", key)
}

func cartKey(cartID string) string {
	return fmt.Sprintf("cart-storage:%s", cartID)
}

type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

// Get returns nil, nil on a cache miss.
func (c *ProductCache) Get(ctx context.Context, id string) (*entity.Product, error) {
	val, err := c.rdb.Get(ctx, productKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var product entity.Product
	if err := json.Unmarshal([]byte(val), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *ProductCache) Set(ctx context.Context, product *entity.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, c.ttl).Err()
}

func (c *ProductCache) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// IdempotencyStore claims request keys with SETNX so that two concurrent
// requests with the same key cannot both win.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) Claim(ctx context.Context, key string) (bool, error) {
	return s.rdb.SetNX(ctx, idempotencyKey(key), "exists", s.ttl).Result()
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, idempotencyKey(key)).Err()
}

// CartStorage persists carts as JSON; each save refreshes the TTL.
type CartStorage struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCartStorage(rdb *redis.Client, ttl time.Duration) *CartStorage {
	return &CartStorage{rdb: rdb, ttl: ttl}
}

func (s *CartStorage) Load(ctx context.Context, cartID string) (cart.State, error) {
	val, err := s.rdb.Get(ctx, cartKey(cartID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cart.State{Items: []cart.Item{}}, nil
		}
		return cart.State{}, err
	}

	var state cart.State
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return cart.State{}, fmt.Errorf("decoding cart %s: %w", cartID, err)
	}
	if state.Items == nil {
		state.Items = []cart.Item{}
	}
	return state, nil
}

func (s *CartStorage) Save(ctx context.Context, cartID string, state cart.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cartKey(cartID), data, s.ttl).Err()
}
