// Package cache keeps whole collections in Redis between mutations.
// A nil *redis.Client disables caching; every call then falls through.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key names one cached collection.
type Key string

const prefix = "lexpro:cache:"

// genKey counts invalidations.
const genKey = prefix + "gen"

var errStale = errors.New("cache generation changed")

const (
	Cases       Key = "cases"
	Lawyers     Key = "lawyers"
	Services    Key = "services"
	Clients     Key = "clients"
	Allocations Key = "allocations"
	Dashboard   Key = "dashboard"
)

// AllKeys is every collection the service caches.
var AllKeys = []Key{Cases, Lawyers, Services, Clients, Allocations, Dashboard}

func (k Key) String() string { return prefix + string(k) }

// Connect pings addr and returns nil when it is empty or unreachable.
func Connect(ctx context.Context, addr string, log *zap.Logger) *redis.Client {
	if addr == "" {
		log.Warn("REDIS_ADDR not set, caching disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("redis unreachable, caching disabled", zap.String("addr", addr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	log.Info("redis connected", zap.String("addr", addr))
	return rdb
}

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func New(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

func (c *Cache) Enabled() bool { return c != nil && c.rdb != nil }

// Get decodes the cached value into dst. A miss or a broken entry reports false.
func (c *Cache) Get(ctx context.Context, k Key, dst any) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.rdb.Get(ctx, k.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Error("redis GET failed", zap.String("key", k.String()), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("dropping undecodable cache entry", zap.String("key", k.String()), zap.Error(err))
		c.Invalidate(ctx, k)
		return false
	}
	return true
}

func (c *Cache) Set(ctx context.Context, k Key, v any) {
	if !c.Enabled() {
		return
	}
	raw, ok := c.encode(k, v)
	if !ok {
		return
	}
	if err := c.rdb.Set(ctx, k.String(), raw, c.ttl).Err(); err != nil {
		c.log.Error("redis SET failed", zap.String("key", k.String()), zap.Error(err))
	}
}

func (c *Cache) encode(k Key, v any) ([]byte, bool) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Error("cache encode failed", zap.String("key", k.String()), zap.Error(err))
		return nil, false
	}
	return raw, true
}

// generation reads the invalidation counter. An unset counter is 0.
func (c *Cache) generation(ctx context.Context) (int64, error) {
	g, err := c.rdb.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return g, err
}

// setIfCurrent stores v only while the invalidation counter still equals gen.
// A value loaded before an invalidation is dropped instead of cached.
func (c *Cache) setIfCurrent(ctx context.Context, k Key, v any, gen int64) {
	raw, ok := c.encode(k, v)
	if !ok {
		return
	}
	err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		now, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if now != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, k.String(), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		c.log.Debug("skipping stale cache write", zap.String("key", k.String()))
	default:
		c.log.Error("redis SET failed", zap.String("key", k.String()), zap.Error(err))
	}
}

// Invalidate drops keys and bumps the invalidation counter, so loads that
// started earlier do not write their result back.
func (c *Cache) Invalidate(ctx context.Context, keys ...Key) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Del(ctx, names...)
		return nil
	})
	if err != nil {
		c.log.Error("redis DEL failed", zap.Strings("keys", names), zap.Error(err))
	}
}

// InvalidateAll drops every collection. Case and allocation mutations call this.
func (c *Cache) InvalidateAll(ctx context.Context) {
	c.Invalidate(ctx, AllKeys...)
}

// Remember returns the cached value for k or loads, stores and returns it.
// Load errors are never cached.
func Remember[T any](ctx context.Context, c *Cache, k Key, load func(context.Context) (T, error)) (T, error) {
	var v T
	if c.Get(ctx, k, &v) {
		return v, nil
	}
	if !c.Enabled() {
		return load(ctx)
	}
	gen, genErr := c.generation(ctx)
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if genErr != nil {
		c.log.Error("redis GET failed", zap.String("key", genKey), zap.Error(genErr))
		return v, nil
	}
	c.setIfCurrent(ctx, k, v, gen)
	return v, nil
}
