package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings for the MongoDB-backed client storage.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
	// TTL expires idle client documents through a TTL index; zero disables it.
	TTL time.Duration
}

// Open connects to MongoDB, verifies connectivity with a ping, ensures the
// expiry index and returns the client storage. The caller closes it.
func Open(ctx context.Context, cfg Config) (*ClientStorage, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI).SetTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := NewClientStorage(client.Database(cfg.Database), cfg.TTL)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return s, nil
}

// Close disconnects the underlying client.
func (s *ClientStorage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return s.col.Database().Client().Disconnect(ctx)
}
