package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for the Redis-backed client storage.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
	// TTL expires idle client hashes; zero disables expiry.
	TTL time.Duration
}

// Open dials Redis, verifies connectivity with a ping and returns the client
// storage on top of it. The caller closes it.
func Open(ctx context.Context, cfg Config) (*ClientStorage, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewClientStorage(client, cfg.TTL), nil
}

// Close releases the underlying connection pool.
func (s *ClientStorage) Close() error {
	return s.client.Close()
}
