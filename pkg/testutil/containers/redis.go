//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const redisImage = "redis:7-alpine"

// RedisContainer backs the revoked-credential cache in integration tests.
// URL is what REDIS_URL would hold; Addr is its host:port.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	Addr      string
	Client    *redis.Client
}

// NewRedisContainer starts redis and waits until it answers a ping. The
// container is shared through Manager, so no cleanup is registered on t.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, redisImage)
	if err != nil {
		t.Fatalf("start %s: %v", redisImage, err)
	}
	fail := func(format string, args ...any) {
		t.Helper()
		_ = container.Terminate(ctx)
		t.Fatalf(format, args...)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		fail("redis connection string: %v", err)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		fail("parse %q: %v", url, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		fail("ping redis: %v", err)
	}

	return &RedisContainer{
		Container: container,
		URL:       url,
		Addr:      opts.Addr,
		Client:    client,
	}
}

// Reset drops every cached revocation so a suite starts cold.
func (r *RedisContainer) Reset(ctx context.Context) error {
	return r.Client.FlushDB(ctx).Err()
}
