package handler

import (
	"time"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
)

type createTaskRequest struct {
	Title       string     `json:"title"       validate:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Deadline    *time.Time `json:"deadline"`
	AssignedTo  *int64     `json:"assigned_to"`
}

type updateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Priority      *string    `json:"priority"       validate:"omitempty,oneof=low medium high"`
	Deadline      *time.Time `json:"deadline"`
	ClearDeadline bool       `json:"clear_deadline"`
}

type taskView struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
	AssignedTo  *int64              `json:"assigned_to,omitempty"`
	Synced      bool                `json:"synced"`
	BackendID   *int64              `json:"backend_id"`
	SyncError   string              `json:"sync_error,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type boardResponse struct {
	Tasks     []taskView        `json:"tasks"`
	Counts    domain.TaskCounts `json:"counts"`
	LocalOnly bool              `json:"local_only"`
}

func newTaskView(t domain.Task) taskView {
	return taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Deadline:    t.Deadline,
		AssignedTo:  t.AssignedTo,
		Synced:      t.Synced(),
		BackendID:   t.Sync.BackendID,
		SyncError:   t.Sync.LastError,
		CreatedAt:   t.CreatedAt,
	}
}
