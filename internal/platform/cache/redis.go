// Package cache dials the Redis instance that backs sessions and the
// dashboard cache.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// New connects to Redis at addr and verifies the connection with a ping.
// The worker needs a live Redis before accepting work, so a failed ping
// is returned as an error rather than deferred to the first command.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", addr, err)
	}

	return client, nil
}
