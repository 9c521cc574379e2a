// Package cache provides cache-aside layers over read-mostly stores.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reference"
	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/pkg/logger"
)

const keyPrefix = "billing-reports:reference:"

// Cache keys of the reference lists.
const (
	KeyAtolls  = keyPrefix + "atolls"
	KeyIslands = keyPrefix + "islands"
	KeyDealers = keyPrefix + "dealers"
)

// RedisClient is the subset of go-redis the cache needs. *redis.Client and
// *redis.ClusterClient satisfy it.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type entry struct {
	value   any
	expires time.Time
}

// ReferenceCache is a two-tier cache (process memory, then Redis) in front of
// a reference.Repository. Redis failures degrade to the underlying store;
// they never fail a request.
type ReferenceCache struct {
	next  reference.Repository
	redis RedisClient
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	local map[string]entry
}

// NewReferenceCache wraps next. A nil client keeps only the in-process tier.
func NewReferenceCache(next reference.Repository, client RedisClient, ttl time.Duration) *ReferenceCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReferenceCache{
		next:  next,
		redis: client,
		ttl:   ttl,
		now:   time.Now,
		local: make(map[string]entry),
	}
}

// ListAtolls implements reference.Repository.
func (c *ReferenceCache) ListAtolls(ctx context.Context) ([]reference.Atoll, error) {
	return load(ctx, c, KeyAtolls, c.next.ListAtolls)
}

// ListIslands implements reference.Repository.
func (c *ReferenceCache) ListIslands(ctx context.Context) ([]reference.Island, error) {
	return load(ctx, c, KeyIslands, c.next.ListIslands)
}

// ListDealers implements reference.Repository.
func (c *ReferenceCache) ListDealers(ctx context.Context) ([]reference.Dealer, error) {
	return load(ctx, c, KeyDealers, c.next.ListDealers)
}

// Invalidate drops every cached list from both tiers.
func (c *ReferenceCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.local = make(map[string]entry)
	c.mu.Unlock()

	if c.redis == nil {
		return nil
	}
	if err := c.redis.Del(ctx, KeyAtolls, KeyIslands, KeyDealers).Err(); err != nil {
		return fmt.Errorf("invalidate reference cache: %w", err)
	}
	logger.Info(ctx, "reference cache invalidated")
	return nil
}

func (c *ReferenceCache) getLocal(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.local[key]
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (c *ReferenceCache) setLocal(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local[key] = entry{value: v, expires: c.now().Add(c.ttl)}
}

func load[T any](ctx context.Context, c *ReferenceCache, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := c.getLocal(key); ok {
		return v.([]T), nil
	}

	if c.redis != nil {
		raw, err := c.redis.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var items []T
			if err := json.Unmarshal(raw, &items); err == nil {
				c.setLocal(key, items)
				return items, nil
			}
			logger.Warn(ctx, "discarding undecodable cache entry", "key", key)
		case errors.Is(err, redis.Nil):
		default:
			logger.Warn(ctx, "reference cache read failed", "key", key, "error", err)
		}
	}

	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	c.setLocal(key, items)

	if c.redis != nil {
		raw, err := json.Marshal(items)
		if err == nil {
			err = c.redis.Set(ctx, key, raw, c.ttl).Err()
		}
		if err != nil {
			logger.Warn(ctx, "reference cache write failed", "key", key, "error", err)
		}
	}
	return items, nil
}

var _ reference.Repository = (*ReferenceCache)(nil)
