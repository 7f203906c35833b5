// pkg/cache/redis.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient initializes and returns a new Redis client. The connection
// is verified with a ping before it is handed out.
func NewRedisClient(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,

		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			// Easier to trace in Redis: CLIENT LIST/INFO
			_ = cn.ClientSetName(ctx, "astrochat").Err()
			return nil
		},
	}

	rdb := redis.NewClient(opts)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return rdb, nil
}
