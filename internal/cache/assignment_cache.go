// Package cache keeps a read-through copy of assignment listings in Redis.
// The store stays the source of truth: every mutation drops the affected
// keys and a miss always falls back to the store.
//
// Each list key has a generation counter that Invalidate bumps. A list read
// from the store is only written back if the generation it was read under is
// still current, so a slow reader cannot re-populate a key with a list that
// predates a mutation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/stuteach-backend/internal/config"
	"github.com/stemsi/stuteach-backend/internal/model"
)

// AssignmentCache stores assignment lists by scope key.
type AssignmentCache interface {
	GetList(ctx context.Context, key string) ([]model.Assignment, bool)
	// Generation returns the current generation of key. Callers read it
	// before loading the list from the store and hand it to SetList. The
	// boolean is false when the list must not be cached.
	Generation(ctx context.Context, key string) (int64, bool)
	SetList(ctx context.Context, key string, gen int64, list []model.Assignment)
	Invalidate(ctx context.Context, keys ...string)
}

var errStaleGeneration = errors.New("generation changed")

// RedisAssignmentCache is the go-redis backed AssignmentCache. Errors are
// logged and reported as misses so the cache can never fail a request.
type RedisAssignmentCache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewRedisAssignmentCache creates a RedisAssignmentCache with the given TTL.
func NewRedisAssignmentCache(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisAssignmentCache {
	return &RedisAssignmentCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With().Str("component", "assignment_cache").Logger(),
	}
}

func (c *RedisAssignmentCache) GetList(ctx context.Context, key string) ([]model.Assignment, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil, false
	}

	var list []model.Assignment
	if err := json.Unmarshal(raw, &list); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, dropping")
		c.Invalidate(ctx, key)
		return nil, false
	}
	return list, true
}

func (c *RedisAssignmentCache) Generation(ctx context.Context, key string) (int64, bool) {
	gen, err := readGeneration(ctx, c.rdb, key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache generation read failed")
		return 0, false
	}
	return gen, true
}

// SetList stores list under key if key is still at generation gen.
func (c *RedisAssignmentCache) SetList(ctx context.Context, key string, gen int64, list []model.Assignment) {
	raw, err := json.Marshal(list)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}

	genKey := config.CacheKey.ListGenerationKey(key)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		c.log.Debug().Str("key", key).Msg("cache write skipped, list changed while loading")
	default:
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Invalidate drops keys and bumps their generations in one transaction.
func (c *RedisAssignmentCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, key := range keys {
			pipe.Incr(ctx, config.CacheKey.ListGenerationKey(key))
		}
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}

// Purge deletes every assignment list and generation key. Used at startup
// when the store does not outlive the process.
func (c *RedisAssignmentCache) Purge(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, config.CacheKey.AssignmentsPattern(), 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("purge assignment cache: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan assignment cache: %w", err)
	}
	if len(batch) > 0 {
		if err := c.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("purge assignment cache: %w", err)
		}
	}
	return nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd getter, key string) (int64, error) {
	gen, err := cmd.Get(ctx, config.CacheKey.ListGenerationKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Nop is the AssignmentCache used when Redis is not configured.
type Nop struct{}

func (Nop) GetList(context.Context, string) ([]model.Assignment, bool) { return nil, false }
func (Nop) Generation(context.Context, string) (int64, bool)           { return 0, false }
func (Nop) SetList(context.Context, string, int64, []model.Assignment) {}
func (Nop) Invalidate(context.Context, ...string)                      {}
