package redistools

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

const (
	pingBase    = time.Second
	pingRetries = 5
)

// Connect waits until rdb answers PING, backing off between attempts.
func Connect(ctx context.Context, rdb *redis.Client) error {
	b := retry.WithMaxRetries(pingRetries, retry.NewFibonacci(pingBase))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("cannot ping redis db error: %w", err)
	}

	return nil
}
