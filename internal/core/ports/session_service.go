package ports

import (
	"context"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
)

// Credentials is the login form.
type Credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// SignupInput is the registration form. UserType accepts the friendly "IT"
// alias for staff.
type SignupInput struct {
	Username  string `validate:"required"`
	Email     string `validate:"required,email"`
	Password  string `validate:"required,min=6"`
	Password2 string `validate:"required"`
	FirstName string
	LastName  string
	UserType  string `validate:"required"`
}

// LoginResult is a freshly stored session and where its owner should land.
type LoginResult struct {
	Session  *domain.Session
	Redirect string
}

// SessionService owns the per-client session lifecycle.
type SessionService interface {
	Login(ctx context.Context, clientID string, c Credentials) (*LoginResult, error)
	Signup(ctx context.Context, clientID string, in SignupInput) (*LoginResult, error)
	Logout(ctx context.Context, clientID string) error
	// Current restores the persisted session; ErrNoSession when logged out.
	Current(ctx context.Context, clientID string) (*domain.Session, error)
	Refresh(ctx context.Context, clientID string) (*domain.Session, error)
}
