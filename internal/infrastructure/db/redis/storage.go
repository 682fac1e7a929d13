package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

// ClientStorage keeps each client's state in one hash.
// Key format: taskdesk:client:<client_id>
type ClientStorage struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.ClientStorage = (*ClientStorage)(nil)

// NewClientStorage wraps the given Redis client. A positive ttl expires a
// client's whole hash after that long without writes.
func NewClientStorage(client *redis.Client, ttl time.Duration) *ClientStorage {
	return &ClientStorage{client: client, ttl: ttl}
}

func (s *ClientStorage) Load(ctx context.Context, clientID, key string) ([]byte, error) {
	b, err := s.client.HGet(ctx, s.key(clientID), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget: %w", err)
	}
	return b, nil
}

// Save replaces one field; HSET of a single field is atomic.
func (s *ClientStorage) Save(ctx context.Context, clientID, key string, blob []byte) error {
	k := s.key(clientID)
	if s.ttl <= 0 {
		if err := s.client.HSet(ctx, k, key, blob).Err(); err != nil {
			return fmt.Errorf("redis hset: %w", err)
		}
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, key, blob)
		p.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Clear removes the whole hash in a single DEL.
func (s *ClientStorage) Clear(ctx context.Context, clientID string) error {
	if err := s.client.Del(ctx, s.key(clientID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *ClientStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *ClientStorage) key(clientID string) string {
	return fmt.Sprintf("taskdesk:client:%s", clientID)
}
