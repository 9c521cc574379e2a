package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roak-kenandy/Billing-Report-Generation-sub000/internal/domain/reference"
)

type countingRepo struct {
	mu     sync.Mutex
	calls  int
	atolls []reference.Atoll
	err    error
}

func (r *countingRepo) ListAtolls(context.Context) ([]reference.Atoll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.atolls, r.err
}

func (r *countingRepo) ListIslands(context.Context) ([]reference.Island, error) { return nil, r.err }
func (r *countingRepo) ListDealers(context.Context) ([]reference.Dealer, error) { return nil, r.err }

// memRedis is an in-memory RedisClient.
type memRedis struct {
	mu      sync.Mutex
	data    map[string]string
	failGet bool
}

func newMemRedis() *memRedis { return &memRedis{data: map[string]string{}} }

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

var atolls = []reference.Atoll{{ID: "A1", Name: "Kaafu"}, {ID: "A2", Name: "Addu"}}

func TestReferenceCache_LocalTier(t *testing.T) {
	repo := &countingRepo{atolls: atolls}
	c := NewReferenceCache(repo, nil, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := c.ListAtolls(ctx)
		require.NoError(t, err)
		assert.Equal(t, atolls, got)
	}
	assert.Equal(t, 1, repo.calls)
}

func TestReferenceCache_Expiry(t *testing.T) {
	repo := &countingRepo{atolls: atolls}
	c := NewReferenceCache(repo, nil, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.ListAtolls(ctx)
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = c.ListAtolls(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls)
}

func TestReferenceCache_SharedRedisTier(t *testing.T) {
	rdb := newMemRedis()
	repo := &countingRepo{atolls: atolls}
	ctx := context.Background()

	first := NewReferenceCache(repo, rdb, time.Minute)
	_, err := first.ListAtolls(ctx)
	require.NoError(t, err)
	assert.Contains(t, rdb.data, KeyAtolls)

	// A second process starts with an empty local tier and reads Redis.
	second := NewReferenceCache(repo, rdb, time.Minute)
	got, err := second.ListAtolls(ctx)
	require.NoError(t, err)
	assert.Equal(t, atolls, got)
	assert.Equal(t, 1, repo.calls)

	require.NoError(t, second.Invalidate(ctx))
	assert.NotContains(t, rdb.data, KeyAtolls)
	_, err = second.ListAtolls(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestReferenceCache_RedisFailureFallsThrough(t *testing.T) {
	rdb := newMemRedis()
	rdb.failGet = true
	repo := &countingRepo{atolls: atolls}

	got, err := NewReferenceCache(repo, rdb, time.Minute).ListAtolls(context.Background())
	require.NoError(t, err)
	assert.Equal(t, atolls, got)
}

func TestReferenceCache_StoreErrorsAreNotCached(t *testing.T) {
	repo := &countingRepo{err: errors.New("timeout")}
	c := NewReferenceCache(repo, nil, time.Minute)

	_, err := c.ListAtolls(context.Background())
	require.Error(t, err)

	repo.err = nil
	repo.atolls = atolls
	got, err := c.ListAtolls(context.Background())
	require.NoError(t, err)
	assert.Equal(t, atolls, got)
}

func TestReferenceCache_EmptyListIsCached(t *testing.T) {
	repo := &countingRepo{}
	c := NewReferenceCache(repo, nil, time.Minute)

	got, err := c.ListAtolls(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
