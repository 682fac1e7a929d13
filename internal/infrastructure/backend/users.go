package backend

import (
	"context"
	"net/http"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
)

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	return getList[domain.User](ctx, c, "/users/", "/users/", nil)
}

func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var out domain.User
	if err := c.get(ctx, "/users/{id}/", idPath("/users/%d/", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeUserRole moves a user to the target team ("sales", "staff" or "admin").
func (c *Client) ChangeUserRole(ctx context.Context, id int64, target string) (*domain.User, error) {
	var out domain.User
	err := c.sendJSON(ctx, http.MethodPost, "/users/{id}/change_role/", idPath("/users/%d/change_role/", id),
		map[string]string{"target": target}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "/users/{id}/", idPath("/users/%d/", id), nil, nil)
}
