package backend

import (
	"context"
	"net/http"

	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

func (c *Client) Login(ctx context.Context, email, password string) (*ports.AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out ports.AuthResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/login/", "/login/", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, reg ports.Registration) (*ports.AuthResponse, error) {
	var out ports.AuthResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/register/", "/register/", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken exchanges a refresh token; the response may omit a rotated refresh token.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (*ports.TokenPair, error) {
	var out ports.TokenPair
	if err := c.sendJSON(ctx, http.MethodPost, "/token/refresh/", "/token/refresh/", map[string]string{"refresh": refresh}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
