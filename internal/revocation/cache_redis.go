package revocation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/ports"
)

var (
	existsDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "claimflow_revocation_check_duration_ms",
		Help:    "Latency of revoked credential checks in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
	})
)

const (
	revokedKeyPrefix = "revoked:hash:"
	defaultCacheTTL  = 24 * time.Hour
)

// RedisCache fronts a revocation ledger with Redis. Only positive answers are
// cached: a revocation is never undone, a missing one may appear at any time.
type RedisCache struct {
	next   ports.RevocationLedger
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// RedisCacheOption configures a RedisCache instance.
type RedisCacheOption func(*RedisCache)

// WithCacheTTL sets how long a positive answer is kept. Non-positive values
// are ignored.
func WithCacheTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisCache) {
		if validateTTL(ttl) == nil {
			c.ttl = ttl
		}
	}
}

func WithCacheLogger(logger *slog.Logger) RedisCacheOption {
	return func(c *RedisCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewRedisCache wraps next with a Redis cache.
func NewRedisCache(next ports.RevocationLedger, client *redis.Client, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		next:   next,
		client: client,
		ttl:    defaultCacheTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Record writes through to the ledger and then marks the hash in Redis. A
// cache write failure does not fail the revocation.
func (c *RedisCache) Record(ctx context.Context, rc models.RevokedCredential) error {
	if err := c.next.Record(ctx, rc); err != nil {
		return err
	}
	if err := c.client.Set(ctx, revokedKeyPrefix+rc.SignedHash, "1", c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "failed to cache revoked credential",
			"signed_hash", rc.SignedHash,
			"error", err,
		)
	}
	return nil
}

// Exists answers from Redis when it can and falls back to the ledger on a
// miss or a Redis error.
func (c *RedisCache) Exists(ctx context.Context, signedHash string) (bool, error) {
	start := time.Now()
	defer func() {
		existsDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if signedHash == "" {
		return false, nil
	}
	key := revokedKeyPrefix + signedHash
	_, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "revocation cache unavailable",
			"signed_hash", signedHash,
			"error", err,
		)
	}

	revoked, err := c.next.Exists(ctx, signedHash)
	if err != nil {
		return false, err
	}
	if revoked {
		_ = c.client.Set(ctx, key, "1", c.ttl).Err()
	}
	return revoked, nil
}
