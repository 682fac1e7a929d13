package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

// ClientCache is a component that writes into client storage and must be
// idle while that storage is cleared.
type ClientCache interface {
	Exclusive(clientID string, fn func() error) error
}

// SessionStore is the single source of truth for who is logged in on a
// client and with which privileges.
type SessionStore struct {
	api     ports.AuthAPI
	storage ports.ClientStorage
	log     zerolog.Logger
	caches  []ClientCache

	now   func() time.Time
	newID func() string
}

var _ ports.SessionService = (*SessionStore)(nil)

func NewSessionStore(api ports.AuthAPI, storage ports.ClientStorage, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		api:     api,
		storage: storage,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// OnClear registers components whose in-flight writes are waited out before
// the client's storage is cleared.
func (s *SessionStore) OnClear(caches ...ClientCache) {
	s.caches = append(s.caches, caches...)
}

// Login authenticates against the backend and persists the new session.
func (s *SessionStore) Login(ctx context.Context, clientID string, c ports.Credentials) (*ports.LoginResult, error) {
	c.Email = strings.TrimSpace(c.Email)
	if err := validateInput(c); err != nil {
		return nil, err
	}

	resp, err := s.api.Login(ctx, c.Email, c.Password)
	if err != nil {
		var he *domain.HTTPError
		if errors.As(err, &he) && (he.Status == http.StatusBadRequest || he.Status == http.StatusUnauthorized) {
			return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
	}

	return s.establish(ctx, clientID, resp)
}

// Signup registers an account and logs it in on success.
func (s *SessionStore) Signup(ctx context.Context, clientID string, in ports.SignupInput) (*ports.LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Password != in.Password2 {
		return nil, &domain.ValidationError{
			Message: "passwords do not match",
			Fields:  map[string][]string{"password2": {"passwords do not match"}},
		}
	}

	resp, err := s.api.Register(ctx, ports.Registration{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		UserType:  backendUserType(in.UserType),
	})
	if err != nil {
		var he *domain.HTTPError
		if errors.As(err, &he) && he.Status == http.StatusBadRequest {
			return nil, &domain.ValidationError{Message: he.Message, Fields: he.Fields}
		}
		return nil, fmt.Errorf("signup: %w", err)
	}
	if !resp.Success {
		if len(resp.Errors) > 0 {
			return nil, &domain.ValidationError{Fields: resp.Errors}
		}
		return nil, domain.NewValidationError(firstNonEmpty(resp.Message, "registration failed"))
	}

	return s.establish(ctx, clientID, resp)
}

// backendUserType maps the signup form's friendly labels to backend values.
func backendUserType(label string) string {
	if strings.EqualFold(label, "IT") {
		return domain.UserTypeStaff
	}
	return strings.ToLower(strings.TrimSpace(label))
}

// establish turns an auth response into the client's one active session.
// A different user's leftovers are cleared first so no state crosses accounts.
func (s *SessionStore) establish(ctx context.Context, clientID string, resp *ports.AuthResponse) (*ports.LoginResult, error) {
	sess, err := domain.NewSession(domain.SessionRecord{
		ID:           s.newID(),
		AccessToken:  resp.Tokens.Access,
		RefreshToken: resp.Tokens.Refresh,
		User:         resp.User,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("backend auth response: %w", err)
	}

	if prev, err := s.Current(ctx, clientID); err == nil && prev.User().ID != sess.User().ID {
		if err := s.clear(ctx, clientID); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, clientID, sess); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("client_id", clientID).
		Int64("user_id", sess.User().ID).
		Str("role", string(sess.Role())).
		Msg("session established")

	return &ports.LoginResult{Session: sess, Redirect: domain.HomePath(sess.Role())}, nil
}

// Logout drops the session and every piece of client state in one operation.
func (s *SessionStore) Logout(ctx context.Context, clientID string) error {
	if err := s.clear(ctx, clientID); err != nil {
		return err
	}
	s.log.Info().Str("client_id", clientID).Msg("logged out")
	return nil
}

// Current restores the persisted session. Persisted data is only trusted
// when it holds both a token and a user; anything else is cleared.
func (s *SessionStore) Current(ctx context.Context, clientID string) (*domain.Session, error) {
	blob, err := s.storage.Load(ctx, clientID, ports.KeySession)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if blob == nil {
		return nil, domain.ErrNoSession
	}

	var rec domain.SessionRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		s.log.Warn().Err(err).Str("client_id", clientID).Msg("unreadable session discarded")
		return nil, s.discard(ctx, clientID)
	}
	sess, err := domain.NewSession(rec)
	if err != nil {
		s.log.Warn().Err(err).Str("client_id", clientID).Msg("partial session discarded")
		return nil, s.discard(ctx, clientID)
	}
	return sess, nil
}

// Refresh exchanges the refresh token for a new access token. A rejected
// refresh token ends the session; a network failure leaves it in place.
func (s *SessionStore) Refresh(ctx context.Context, clientID string) (*domain.Session, error) {
	cur, err := s.Current(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !cur.CanRefresh() {
		return nil, fmt.Errorf("refresh: %w", domain.ErrNoSession)
	}

	pair, err := s.api.RefreshToken(ctx, cur.RefreshToken())
	if err != nil {
		if status := domain.StatusOf(err); status == http.StatusUnauthorized || status == http.StatusBadRequest {
			if lerr := s.Logout(ctx, clientID); lerr != nil {
				return nil, lerr
			}
			return nil, fmt.Errorf("refresh rejected: %w", domain.ErrNoSession)
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	next, err := cur.WithTokens(pair.Access, pair.Refresh)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	// The client may have logged out or switched accounts while the call was in flight.
	latest, err := s.Current(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if latest.ID() != cur.ID() {
		return latest, nil
	}

	if err := s.save(ctx, clientID, next); err != nil {
		return nil, err
	}
	s.log.Debug().Str("client_id", clientID).Msg("access token refreshed")
	return next, nil
}

func (s *SessionStore) save(ctx context.Context, clientID string, sess *domain.Session) error {
	blob, err := json.Marshal(sess.Record())
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.Save(ctx, clientID, ports.KeySession, blob); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) clear(ctx context.Context, clientID string) error {
	run := func() error { return s.storage.Clear(ctx, clientID) }
	for _, c := range s.caches {
		inner := run
		run = func() error { return c.Exclusive(clientID, inner) }
	}
	if err := run(); err != nil {
		return fmt.Errorf("clear client state: %w", err)
	}
	return nil
}

// discard clears unusable residue and reports the client as logged out.
func (s *SessionStore) discard(ctx context.Context, clientID string) error {
	if err := s.clear(ctx, clientID); err != nil {
		return err
	}
	return domain.ErrNoSession
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
