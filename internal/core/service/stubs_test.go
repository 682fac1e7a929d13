package service

import (
	"context"
	"errors"
	"sync"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

var errStorageDown = errors.New("storage down")

type stubStorage struct {
	mu       sync.Mutex
	blobs    map[string]map[string][]byte
	failSave bool
	clears   int

	// beforeSave runs outside the storage lock, so a test can hold a write mid-flight.
	beforeSave func(clientID, key string)
}

func newStubStorage() *stubStorage {
	return &stubStorage{blobs: make(map[string]map[string][]byte)}
}

func (s *stubStorage) Load(_ context.Context, clientID, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[clientID][key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

func (s *stubStorage) Save(_ context.Context, clientID, key string, blob []byte) error {
	if s.beforeSave != nil {
		s.beforeSave(clientID, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave {
		return errStorageDown
	}
	if s.blobs[clientID] == nil {
		s.blobs[clientID] = make(map[string][]byte)
	}
	s.blobs[clientID][key] = append([]byte(nil), blob...)
	return nil
}

func (s *stubStorage) Clear(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	delete(s.blobs, clientID)
	return nil
}

func (s *stubStorage) Ping(context.Context) error { return nil }

func (s *stubStorage) drop(clientID, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs[clientID], key)
}

func (s *stubStorage) keys(clientID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs[clientID])
}

type stubAuthAPI struct {
	loginResp   *ports.AuthResponse
	loginErr    error
	registerReq *ports.Registration
	registerErr error
	refreshPair *ports.TokenPair
	refreshErr  error
	loginCalls  int
}

func (a *stubAuthAPI) Login(_ context.Context, email, password string) (*ports.AuthResponse, error) {
	a.loginCalls++
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	return a.loginResp, nil
}

func (a *stubAuthAPI) Register(_ context.Context, reg ports.Registration) (*ports.AuthResponse, error) {
	a.registerReq = &reg
	if a.registerErr != nil {
		return nil, a.registerErr
	}
	return a.loginResp, nil
}

func (a *stubAuthAPI) RefreshToken(_ context.Context, refresh string) (*ports.TokenPair, error) {
	if a.refreshErr != nil {
		return nil, a.refreshErr
	}
	return a.refreshPair, nil
}

func authOK(user domain.User, access string) *ports.AuthResponse {
	u := user
	return &ports.AuthResponse{
		Success: true,
		User:    &u,
		Tokens:  ports.TokenPair{Access: access, Refresh: "R-" + access},
	}
}

type stubCache struct {
	exclusive []string
}

func (c *stubCache) Exclusive(clientID string, fn func() error) error {
	c.exclusive = append(c.exclusive, clientID)
	return fn()
}
