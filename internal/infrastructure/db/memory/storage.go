// Package memory is an in-process ClientStorage for development and tests.
// State does not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

type ClientStorage struct {
	mu      sync.RWMutex
	clients map[string]map[string][]byte
}

var _ ports.ClientStorage = (*ClientStorage)(nil)

func NewClientStorage() *ClientStorage {
	return &ClientStorage{clients: make(map[string]map[string][]byte)}
}

func (s *ClientStorage) Load(_ context.Context, clientID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.clients[clientID][key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

func (s *ClientStorage) Save(_ context.Context, clientID, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.clients[clientID]
	if !ok {
		m = make(map[string][]byte)
		s.clients[clientID] = m
	}
	m[key] = append([]byte(nil), blob...)
	return nil
}

func (s *ClientStorage) Clear(_ context.Context, clientID string) error {
	s.mu.Lock()
	delete(s.clients, clientID)
	s.mu.Unlock()
	return nil
}

func (s *ClientStorage) Ping(context.Context) error { return nil }

func (s *ClientStorage) Close() error { return nil }
