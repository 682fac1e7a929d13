package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the authenticated identity and tokens of one logged-in client.
// A Session value is immutable: the role and the access-token expiry are
// resolved once in NewSession, and token refresh produces a new value.
type Session struct {
	id           string
	accessToken  string
	refreshToken string
	user         User
	role         Role
	createdAt    time.Time
	expiresAt    time.Time // zero when the access token carries no exp claim
}

// SessionRecord is the persisted form of a Session.
type SessionRecord struct {
	ID           string    `json:"id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         *User     `json:"user"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewSession builds a Session from its record. Both an access token and a
// user are required; anything less is not a session.
func NewSession(rec SessionRecord) (*Session, error) {
	if rec.ID == "" || rec.AccessToken == "" || rec.User == nil {
		return nil, ErrIncompleteSession
	}
	return &Session{
		id:           rec.ID,
		accessToken:  rec.AccessToken,
		refreshToken: rec.RefreshToken,
		user:         *rec.User,
		role:         DeriveRole(*rec.User),
		createdAt:    rec.CreatedAt,
		expiresAt:    tokenExpiry(rec.AccessToken),
	}, nil
}

func (s *Session) ID() string           { return s.id }
func (s *Session) AccessToken() string  { return s.accessToken }
func (s *Session) RefreshToken() string { return s.refreshToken }
func (s *Session) User() User           { return s.user }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Role is fixed for the lifetime of the Session value.
func (s *Session) Role() Role { return s.role }

// Record returns the persisted form.
func (s *Session) Record() SessionRecord {
	u := s.user
	return SessionRecord{
		ID:           s.id,
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		User:         &u,
		CreatedAt:    s.createdAt,
	}
}

// AccessExpired reports whether the access token's exp claim is in the past.
// Opaque tokens never expire from the client's point of view.
func (s *Session) AccessExpired(now time.Time) bool {
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

// CanRefresh reports whether a refresh token is available.
func (s *Session) CanRefresh() bool { return s.refreshToken != "" }

// WithTokens returns a new Session carrying the refreshed tokens. An empty
// refresh token keeps the current one (the backend may not rotate it).
func (s *Session) WithTokens(access, refresh string) (*Session, error) {
	rec := s.Record()
	rec.AccessToken = access
	if refresh != "" {
		rec.RefreshToken = refresh
	}
	return NewSession(rec)
}

// tokenExpiry reads exp from a JWT without verifying its signature; the
// backend is the only party that can verify it.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
