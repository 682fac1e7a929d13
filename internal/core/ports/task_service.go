package ports

import (
	"context"
	"time"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
)

// TaskInput carries the fields of a new board task.
type TaskInput struct {
	Title       string              `validate:"required"`
	Description string
	Priority    domain.TaskPriority `validate:"omitempty,oneof=low medium high"`
	Deadline    *time.Time
	AssignedTo  *int64
}

// TaskPatch edits a board task; nil fields are left untouched.
type TaskPatch struct {
	Title         *string
	Description   *string
	Priority      *domain.TaskPriority `validate:"omitempty,oneof=low medium high"`
	Deadline      *time.Time
	ClearDeadline bool
}

// Board filters.
const (
	FilterAll       = "all"
	FilterPending   = "pending"
	FilterCompleted = "completed"

	DueAny        = "any"
	DueOverdue    = "overdue"
	DueToday      = "today"
	DueWeek       = "week"
	DueNoDeadline = "no-deadline"
)

// TaskFilter narrows a board listing.
type TaskFilter struct {
	Status string // all | pending | completed
	Due    string // any | overdue | today | week | no-deadline
}

// TaskBoard is a filtered listing plus counts over the whole list.
type TaskBoard struct {
	Tasks     []domain.Task
	Counts    domain.TaskCounts
	LocalOnly bool
}

// TaskCache is the local-first task board of a client.
type TaskCache interface {
	CreateLocal(ctx context.Context, clientID string, in TaskInput) (domain.Task, error)
	SyncCreate(ctx context.Context, clientID string, localID int64) (domain.Task, error)
	Update(ctx context.Context, clientID string, id int64, p TaskPatch) (domain.Task, error)
	ToggleComplete(ctx context.Context, clientID string, id int64) (domain.Task, error)
	Delete(ctx context.Context, clientID string, id int64) error
	List(ctx context.Context, clientID string, f TaskFilter) (*TaskBoard, error)
}

// SyncJob asks for the remote reconciliation of one board task.
type SyncJob struct {
	ClientID string
	LocalID  int64
}

// TaskSyncer schedules remote reconciliation without blocking the caller.
type TaskSyncer interface {
	Enqueue(job SyncJob)
}
