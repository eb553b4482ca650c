package walkoracle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/chairemobilite/trrouting-go/internal/network"
)

// RedisCached wraps another oracle with a Redis-backed memoization layer,
// grounded on the cache/client construction pattern of pkg/cache/redis.go
// in the Hintro example (redis.Options with explicit pool/timeouts, a
// HealthCheck helper) generalized from a generic key/value cache into a
// point -> footpaths cache keyed by rounded coordinates.
type RedisCached struct {
	inner WalkOracleFunc
	rdb   *redis.Client
	ttl   time.Duration
}

// WalkOracleFunc lets RedisCached wrap either *PostGIS or a test double
// without importing the csa package (which declares the WalkOracle
// interface) and creating an import cycle.
type WalkOracleFunc func(lon, lat float64) ([]network.Footpath, error)

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func NewRedisCached(rdb *redis.Client, ttl time.Duration, inner WalkOracleFunc) *RedisCached {
	return &RedisCached{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *RedisCached) key(lon, lat float64) string {
	// Round to ~11m precision (4 decimal places) so nearby queries share
	// a cache entry.
	return fmt.Sprintf("walkoracle:%.4f:%.4f", lon, lat)
}

func (c *RedisCached) AccessibleNodes(lon, lat float64) ([]network.Footpath, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := c.key(lon, lat)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var footpaths []network.Footpath
		if jsonErr := json.Unmarshal(raw, &footpaths); jsonErr == nil {
			return footpaths, nil
		}
	}

	footpaths, err := c.inner(lon, lat)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(footpaths); err == nil {
		_ = c.rdb.Set(ctx, key, raw, c.ttl).Err()
	}
	return footpaths, nil
}

// HealthCheck pings Redis, the same readiness-probe shape Hintro's
// pkg/cache/redis.go exposes for its own client.
func HealthCheck(rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return errors.Wrap(rdb.Ping(ctx).Err(), "redis health check")
}
