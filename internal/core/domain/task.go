package domain

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// TaskPriority mirrors the backend priority choices.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// SyncState tags whether a board task exists only locally or has a backend twin.
type SyncState string

const (
	SyncLocal  SyncState = "local"
	SyncSynced SyncState = "synced"
)

// TaskSync is the reconciliation state of a board task.
//
//	{State: local,  BackendID: nil, LastError: "..."}  not (yet) on the backend
//	{State: synced, BackendID: 42}                     created remotely as task 42
type TaskSync struct {
	State     SyncState `json:"state"`
	BackendID *int64    `json:"backend_id"`
	LastError string    `json:"last_error,omitempty"`
}

// LocalSync marks a task as local-only, optionally recording why the last sync failed.
func LocalSync(lastErr error) TaskSync {
	s := TaskSync{State: SyncLocal}
	if lastErr != nil {
		s.LastError = lastErr.Error()
	}
	return s
}

// SyncedWith marks a task as reconciled with the backend record id.
func SyncedWith(backendID int64) TaskSync {
	id := backendID
	return TaskSync{State: SyncSynced, BackendID: &id}
}

// Task is an entry of the client-held task board. ID is the client-generated
// list key and never changes, including after reconciliation.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Deadline    *time.Time   `json:"deadline"`
	AssignedTo  *int64       `json:"assigned_to"`
	Sync        TaskSync     `json:"sync"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Synced reports whether the task carries a backend id.
func (t Task) Synced() bool {
	return t.Sync.State == SyncSynced && t.Sync.BackendID != nil
}

// Completed reports whether the task is done.
func (t Task) Completed() bool { return t.Status == TaskCompleted }

// RemoteTask is a task as the backend stores it.
type RemoteTask struct {
	ID                 int64        `json:"id"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Status             TaskStatus   `json:"status"`
	Priority           TaskPriority `json:"priority"`
	AssignedTo         *int64       `json:"assigned_to"`
	AssignedToUsername string       `json:"assigned_to_username,omitempty"`
	Deadline           *time.Time   `json:"deadline"`
	CompletionNotes    string       `json:"completion_notes,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// TaskCounts summarises a list of tasks by status.
type TaskCounts struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
}

// CountTasks tallies statuses; an unknown status counts toward Total only.
func CountTasks(statuses []TaskStatus) TaskCounts {
	c := TaskCounts{Total: len(statuses)}
	for _, s := range statuses {
		switch s {
		case TaskCompleted:
			c.Completed++
		case TaskPending:
			c.Pending++
		case TaskInProgress:
			c.InProgress++
		}
	}
	return c
}
