// Package cache keeps generated interpretations in three layers: process
// memory, Redis and the persistent store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

const (
	keyPrefix = "interpretation:"

	DefaultTTL        = 7 * 24 * time.Hour
	DefaultMaxEntries = 1000
)

// Persistent is the durable layer, implemented by storage.Store.
type Persistent interface {
	GetInterpretation(ctx context.Context, newsID string) (*models.Interpretation, error)
	SaveInterpretation(ctx context.Context, interp *models.Interpretation) error
	DeleteInterpretation(ctx context.Context, newsID string) error
	ClearInterpretations(ctx context.Context) (int64, error)
	CountInterpretations(ctx context.Context) (int64, error)
}

// Config configures the optional layers. Nil layers are skipped.
// TTL applies to both the memory and Redis layers; MaxEntries caps memory.
type Config struct {
	Redis      *redis.Client
	Store      Persistent
	TTL        time.Duration
	MaxEntries int
}

// Cache is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	memory     map[string]memoryEntry
	maxEntries int

	redis *redis.Client
	store Persistent
	ttl   time.Duration
	now   func() time.Time
}

type memoryEntry struct {
	interp  *models.Interpretation
	expires time.Time
}

// Stats reports the size of each layer.
type Stats struct {
	Memory     int   `json:"memory"`
	Persistent int64 `json:"persistent"`
	Redis      bool  `json:"redis"`
}

// New creates a cache.
func New(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	return &Cache{
		memory:     make(map[string]memoryEntry),
		maxEntries: cfg.MaxEntries,
		redis:      cfg.Redis,
		store:      cfg.Store,
		ttl:        cfg.TTL,
		now:        time.Now,
	}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info().Str("addr", addr).Msg("Connected to Redis")
	return client, nil
}

// Get looks the interpretation up in each layer in turn. Hits in a slower
// layer are copied into the faster ones.
func (c *Cache) Get(ctx context.Context, newsID string) (*models.Interpretation, bool) {
	if interp := c.getMemory(newsID); interp != nil {
		return interp, true
	}

	if interp := c.getRedis(ctx, newsID); interp != nil {
		c.setMemory(interp)
		return interp, true
	}

	if c.store == nil {
		return nil, false
	}
	interp, err := c.store.GetInterpretation(ctx, newsID)
	if err != nil || interp == nil {
		return nil, false
	}
	c.setMemory(interp)
	c.setRedis(ctx, interp)
	return interp, true
}

// Set stores the interpretation in every layer. Only a persistent store
// failure is returned.
func (c *Cache) Set(ctx context.Context, interp *models.Interpretation) error {
	if interp == nil || interp.NewsID == "" {
		return errors.New("interpretation without news id")
	}
	c.setMemory(interp)
	c.setRedis(ctx, interp)

	if c.store == nil {
		return nil
	}
	if err := c.store.SaveInterpretation(ctx, interp); err != nil {
		return fmt.Errorf("save interpretation: %w", err)
	}
	return nil
}

// Delete removes one interpretation from every layer.
func (c *Cache) Delete(ctx context.Context, newsID string) error {
	c.mu.Lock()
	delete(c.memory, newsID)
	c.mu.Unlock()

	if c.redis != nil {
		if err := c.redis.Del(ctx, keyPrefix+newsID).Err(); err != nil {
			log.Warn().Err(err).Str("news_id", newsID).Msg("Redis delete failed")
		}
	}
	if c.store == nil {
		return nil
	}
	return c.store.DeleteInterpretation(ctx, newsID)
}

// Clear empties every layer and returns the number of persisted entries removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	c.mu.Lock()
	cleared := int64(len(c.memory))
	c.memory = make(map[string]memoryEntry)
	c.mu.Unlock()

	if c.redis != nil {
		iter := c.redis.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
				log.Warn().Err(err).Str("key", iter.Val()).Msg("Redis delete failed")
			}
		}
		if err := iter.Err(); err != nil {
			log.Warn().Err(err).Msg("Redis scan failed")
		}
	}

	if c.store == nil {
		return cleared, nil
	}
	n, err := c.store.ClearInterpretations(ctx)
	if err != nil {
		return 0, err
	}
	log.Info().Int64("deleted", n).Msg("Interpretation cache cleared")
	return n, nil
}

// Stats reports the cache size.
func (c *Cache) Stats(ctx context.Context) Stats {
	c.mu.RLock()
	stats := Stats{Memory: len(c.memory), Redis: c.redis != nil}
	c.mu.RUnlock()

	if c.store != nil {
		n, err := c.store.CountInterpretations(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to count interpretations")
		}
		stats.Persistent = n
	}
	return stats
}

func (c *Cache) getMemory(newsID string) *models.Interpretation {
	c.mu.RLock()
	entry, ok := c.memory[newsID]
	c.mu.RUnlock()
	if !ok {
		return nil
	}
	if c.now().After(entry.expires) {
		c.mu.Lock()
		if cur, ok := c.memory[newsID]; ok && cur.expires.Equal(entry.expires) {
			delete(c.memory, newsID)
		}
		c.mu.Unlock()
		return nil
	}
	return entry.interp
}

func (c *Cache) setMemory(interp *models.Interpretation) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.memory[interp.NewsID]; !exists && len(c.memory) >= c.maxEntries {
		c.evictLocked(now)
	}
	c.memory[interp.NewsID] = memoryEntry{interp: interp, expires: now.Add(c.ttl)}
}

// evictLocked drops expired entries, or the one closest to expiry when none
// has expired. c.mu must be held.
func (c *Cache) evictLocked(now time.Time) {
	var oldest string
	var oldestExp time.Time
	for id, entry := range c.memory {
		if now.After(entry.expires) {
			delete(c.memory, id)
			continue
		}
		if oldest == "" || entry.expires.Before(oldestExp) {
			oldest, oldestExp = id, entry.expires
		}
	}
	if len(c.memory) >= c.maxEntries && oldest != "" {
		delete(c.memory, oldest)
	}
}

func (c *Cache) getRedis(ctx context.Context, newsID string) *models.Interpretation {
	if c.redis == nil {
		return nil
	}
	data, err := c.redis.Get(ctx, keyPrefix+newsID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("news_id", newsID).Msg("Redis get failed")
		}
		return nil
	}

	var interp models.Interpretation
	if err := json.Unmarshal(data, &interp); err != nil {
		log.Warn().Err(err).Str("news_id", newsID).Msg("Corrupt cached interpretation")
		return nil
	}
	return &interp
}

func (c *Cache) setRedis(ctx context.Context, interp *models.Interpretation) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(interp)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, keyPrefix+interp.NewsID, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("news_id", interp.NewsID).Msg("Redis set failed")
	}
}
