package storyline

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/dugout/internal/cache"
	"github.com/fortuna/dugout/internal/store"
)

// Cache holds generated recaps keyed by game ID. Recaps live only here;
// they are never written into the core game records.
type Cache interface {
	Get(ctx context.Context, gameID string) (*store.GameStoryline, error)
	Set(ctx context.Context, s *store.GameStoryline) error
}

// MemoryCache is the default process-local storyline cache.
type MemoryCache struct {
	mu     sync.RWMutex
	byGame map[string]*store.GameStoryline
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{byGame: make(map[string]*store.GameStoryline)}
}

func (c *MemoryCache) Get(_ context.Context, gameID string) (*store.GameStoryline, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byGame[gameID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (c *MemoryCache) Set(_ context.Context, s *store.GameStoryline) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *s
	c.byGame[s.GameID] = &cp
	return nil
}

// RedisCache keeps storylines in Redis so they survive restarts and are
// shared across replicas.
type RedisCache struct {
	redis *cache.RedisCache
}

func NewRedisCache(rc *cache.RedisCache) *RedisCache {
	return &RedisCache{redis: rc}
}

func storylineKey(gameID string) string {
	return "storyline:" + gameID
}

func (c *RedisCache) Get(ctx context.Context, gameID string) (*store.GameStoryline, error) {
	var s store.GameStoryline
	err := c.redis.GetJSON(ctx, storylineKey(gameID), &s)
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *RedisCache) Set(ctx context.Context, s *store.GameStoryline) error {
	return c.redis.SetJSON(ctx, storylineKey(s.GameID), s, 0)
}
