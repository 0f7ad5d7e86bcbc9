package services

import (
	"context"
	"encoding/json"
	"fmt"
	"rally-metrics-go/logging"
	"rally-metrics-go/models"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	_ PlayerListCache = (*MemoryPlayerListCache)(nil)
	_ PlayerListCache = (*RedisPlayerListCache)(nil)
)

// PlayerListCache caches player list responses keyed by query
type PlayerListCache interface {
	Get(ctx context.Context, key string) ([]models.Player, bool)
	Set(ctx context.Context, key string, players []models.Player)
	Purge(ctx context.Context) error
}

type cachedPlayerList struct {
	players  []models.Player
	storedAt time.Time
}

// MemoryPlayerListCache is an in-process TTL cache
type MemoryPlayerListCache struct {
	mu      sync.Mutex
	entries map[string]cachedPlayerList
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryPlayerListCache creates an in-process cache with the given TTL
func NewMemoryPlayerListCache(ttl time.Duration) *MemoryPlayerListCache {
	return &MemoryPlayerListCache{
		entries: make(map[string]cachedPlayerList),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached list if it is still fresh
func (c *MemoryPlayerListCache) Get(_ context.Context, key string) ([]models.Player, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	out := make([]models.Player, len(entry.players))
	copy(out, entry.players)
	return out, true
}

// Set stores a copy of players under key
func (c *MemoryPlayerListCache) Set(_ context.Context, key string, players []models.Player) {
	stored := make([]models.Player, len(players))
	copy(stored, players)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cachedPlayerList{players: stored, storedAt: c.now()}
}

// Purge drops every entry
func (c *MemoryPlayerListCache) Purge(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cachedPlayerList)
	return nil
}

// RedisPlayerListCache stores JSON-encoded player lists in Redis
type RedisPlayerListCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisPlayerListCache connects to redisURL and verifies the connection
func NewRedisPlayerListCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisPlayerListCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisPlayerListCache{
		client: client,
		prefix: "rally:players:",
		ttl:    ttl,
		logger: logging.WithPrefix("RedisCache"),
	}, nil
}

// Get returns the cached list; any redis or decode error is a miss
func (c *RedisPlayerListCache) Get(ctx context.Context, key string) ([]models.Player, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnf("Get %s failed: %v", key, err)
		}
		return nil, false
	}

	var players []models.Player
	if err := json.Unmarshal(data, &players); err != nil {
		c.logger.Warnf("Discarding undecodable entry %s: %v", key, err)
		return nil, false
	}
	return players, true
}

// Set stores players under key with the configured TTL
func (c *RedisPlayerListCache) Set(ctx context.Context, key string, players []models.Player) {
	data, err := json.Marshal(players)
	if err != nil {
		c.logger.Errorf("Encode %s failed: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warnf("Set %s failed: %v", key, err)
	}
}

// Purge deletes all keys under the cache prefix
func (c *RedisPlayerListCache) Purge(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan redis keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete redis keys: %w", err)
	}
	c.logger.Infof("Purged %d cached player lists", len(keys))
	return nil
}

// Close closes the redis connection
func (c *RedisPlayerListCache) Close() error {
	return c.client.Close()
}
