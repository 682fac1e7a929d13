package backend

import (
	"context"
	"net/http"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

func (c *Client) ListTasks(ctx context.Context) ([]domain.RemoteTask, error) {
	return getList[domain.RemoteTask](ctx, c, "/tasks/", "/tasks/", nil)
}

func (c *Client) GetTask(ctx context.Context, id int64) (*domain.RemoteTask, error) {
	return c.task(ctx, http.MethodGet, "/tasks/{id}/", idPath("/tasks/%d/", id), nil)
}

func (c *Client) CreateTask(ctx context.Context, p ports.TaskPayload) (*domain.RemoteTask, error) {
	return c.task(ctx, http.MethodPost, "/tasks/", "/tasks/", p)
}

func (c *Client) UpdateTask(ctx context.Context, id int64, p ports.TaskPayload) (*domain.RemoteTask, error) {
	return c.task(ctx, http.MethodPut, "/tasks/{id}/", idPath("/tasks/%d/", id), p)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "/tasks/{id}/", idPath("/tasks/%d/", id), nil, nil)
}

func (c *Client) ListStaffTasks(ctx context.Context) ([]domain.RemoteTask, error) {
	return getList[domain.RemoteTask](ctx, c, "/staff/tasks/", "/staff/tasks/", nil)
}

func (c *Client) GetStaffTask(ctx context.Context, id int64) (*domain.RemoteTask, error) {
	return c.task(ctx, http.MethodGet, "/staff/tasks/{id}/", idPath("/staff/tasks/%d/", id), nil)
}

func (c *Client) UpdateStaffTaskStatus(ctx context.Context, id int64, status domain.TaskStatus, completionNotes string) (*domain.RemoteTask, error) {
	body := map[string]string{"status": string(status), "completion_notes": completionNotes}
	return c.task(ctx, http.MethodPatch, "/staff/tasks/{id}/update_status/", idPath("/staff/tasks/%d/update_status/", id), body)
}

func (c *Client) UpdateStaffTaskDetails(ctx context.Context, id int64, p ports.TaskDetailsPatch) (*domain.RemoteTask, error) {
	return c.task(ctx, http.MethodPatch, "/staff/tasks/{id}/update_details/", idPath("/staff/tasks/%d/update_details/", id), p)
}

func (c *Client) task(ctx context.Context, method, endpoint, path string, body any) (*domain.RemoteTask, error) {
	var out domain.RemoteTask
	if err := c.sendJSON(ctx, method, endpoint, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
