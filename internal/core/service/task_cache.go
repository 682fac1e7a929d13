package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

// TaskCache is the local-first task board. Client storage is the only copy
// of a board: every operation reads it under the client's lock and every
// mutation is persisted before it is reported, so a failed write changes
// nothing and a cleared or expired board is seen on the next call.
type TaskCache struct {
	sessions ports.SessionService
	api      ports.TaskAPI
	storage  ports.ClientStorage
	log      zerolog.Logger
	now      func() time.Time

	locks   *clientLocks
	syncing singleflight.Group
}

var (
	_ ports.TaskCache = (*TaskCache)(nil)
	_ ClientCache     = (*TaskCache)(nil)
)

func NewTaskCache(sessions ports.SessionService, api ports.TaskAPI, storage ports.ClientStorage, log zerolog.Logger) *TaskCache {
	return &TaskCache{
		sessions: sessions,
		api:      api,
		storage:  storage,
		log:      log,
		now:      time.Now,
		locks:    newClientLocks(),
	}
}

// Exclusive runs fn while no board operation for clientID is in progress.
func (c *TaskCache) Exclusive(clientID string, fn func() error) error {
	unlock := c.locks.lock(clientID)
	defer unlock()
	return fn()
}

// load must be called with the client's lock held.
func (c *TaskCache) load(ctx context.Context, clientID string) ([]domain.Task, error) {
	blob, err := c.storage.Load(ctx, clientID, ports.KeyTasks)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if blob == nil {
		return nil, nil
	}
	var tasks []domain.Task
	if err := json.Unmarshal(blob, &tasks); err != nil {
		c.log.Warn().Err(err).Str("client_id", clientID).Msg("unreadable task list reset")
		return nil, nil
	}
	return tasks, nil
}

// commit must be called with the client's lock held.
func (c *TaskCache) commit(ctx context.Context, clientID string, next []domain.Task) error {
	blob, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := c.storage.Save(ctx, clientID, ports.KeyTasks, blob); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// snapshot reads the client's board under its lock.
func (c *TaskCache) snapshot(ctx context.Context, clientID string) ([]domain.Task, error) {
	unlock := c.locks.lock(clientID)
	defer unlock()
	return c.load(ctx, clientID)
}

// mutate runs fn over the stored list and commits the result.
func (c *TaskCache) mutate(ctx context.Context, clientID string, fn func([]domain.Task) ([]domain.Task, error)) error {
	unlock := c.locks.lock(clientID)
	defer unlock()

	tasks, err := c.load(ctx, clientID)
	if err != nil {
		return err
	}
	next, err := fn(tasks)
	if err != nil {
		return err
	}
	return c.commit(ctx, clientID, next)
}

// CreateLocal inserts a new task at the head of the board without touching the backend.
func (c *TaskCache) CreateLocal(ctx context.Context, clientID string, in ports.TaskInput) (domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return domain.Task{}, err
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}

	var created domain.Task
	err := c.mutate(ctx, clientID, func(tasks []domain.Task) ([]domain.Task, error) {
		now := c.now()
		created = domain.Task{
			ID:          nextTaskID(now, tasks),
			Title:       in.Title,
			Description: strings.TrimSpace(in.Description),
			Status:      domain.TaskPending,
			Priority:    in.Priority,
			Deadline:    in.Deadline,
			AssignedTo:  in.AssignedTo,
			Sync:        domain.LocalSync(nil),
			CreatedAt:   now.UTC(),
		}
		return append([]domain.Task{created}, tasks...), nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	c.log.Debug().Str("client_id", clientID).Int64("task_id", created.ID).Msg("task created locally")
	return created, nil
}

// nextTaskID is the creation time in milliseconds, bumped past any id in use.
func nextTaskID(now time.Time, tasks []domain.Task) int64 {
	id := now.UnixMilli()
	for _, t := range tasks {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return id
}

func indexOf(tasks []domain.Task, id int64) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// SyncCreate creates the remote twin of a local task. Without a session the
// task stays local and no call is made. A response arriving after the
// session changed or the task was deleted is discarded with ErrStaleResponse.
// Concurrent calls for the same task share one backend call.
func (c *TaskCache) SyncCreate(ctx context.Context, clientID string, localID int64) (domain.Task, error) {
	key := clientID + "/" + strconv.FormatInt(localID, 10)
	v, err, _ := c.syncing.Do(key, func() (any, error) {
		return c.syncCreate(ctx, clientID, localID)
	})
	task, _ := v.(domain.Task)
	return task, err
}

func (c *TaskCache) syncCreate(ctx context.Context, clientID string, localID int64) (domain.Task, error) {
	sess, err := c.sessions.Current(ctx, clientID)
	if errors.Is(err, domain.ErrNoSession) {
		return c.get(ctx, clientID, localID)
	}
	if err != nil {
		return domain.Task{}, err
	}

	task, err := c.get(ctx, clientID, localID)
	if err != nil || task.Synced() {
		return task, err
	}

	if sess.AccessExpired(c.now()) && sess.CanRefresh() {
		if refreshed, rerr := c.sessions.Refresh(ctx, clientID); rerr == nil {
			sess = refreshed
		}
	}

	remote, callErr := c.api.CreateTask(ports.WithAccessToken(ctx, sess.AccessToken()), ports.TaskPayload{
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		AssignedTo:  task.AssignedTo,
		Deadline:    task.Deadline,
	})

	var result domain.Task
	err = c.mutate(ctx, clientID, func(tasks []domain.Task) ([]domain.Task, error) {
		// The session is checked under the board lock so a logout cannot
		// slip in between the check and the write.
		current, err := c.storedSessionID(ctx, clientID)
		if err != nil {
			return nil, err
		}
		if current != sess.ID() {
			c.log.Info().Str("client_id", clientID).Int64("task_id", localID).Msg("sync response discarded after session change")
			return nil, domain.ErrStaleResponse
		}
		i := indexOf(tasks, localID)
		if i < 0 {
			c.log.Info().Str("client_id", clientID).Int64("task_id", localID).Msg("sync response discarded for deleted task")
			return nil, domain.ErrStaleResponse
		}
		if callErr != nil {
			tasks[i].Sync = domain.LocalSync(callErr)
		} else {
			tasks[i].Sync = domain.SyncedWith(remote.ID)
		}
		result = tasks[i]
		return tasks, nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	if callErr != nil {
		return result, fmt.Errorf("sync task %d: %w", localID, callErr)
	}

	c.log.Info().
		Str("client_id", clientID).
		Int64("task_id", localID).
		Int64("backend_id", remote.ID).
		Msg("task synced")
	return result, nil
}

// storedSessionID reads the persisted session id without going through the
// session service, which may itself need the client's lock to clear state.
// An absent or unreadable session yields "".
func (c *TaskCache) storedSessionID(ctx context.Context, clientID string) (string, error) {
	blob, err := c.storage.Load(ctx, clientID, ports.KeySession)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if blob == nil {
		return "", nil
	}
	var rec domain.SessionRecord
	if err := json.Unmarshal(blob, &rec); err != nil {
		return "", nil
	}
	return rec.ID, nil
}

func (c *TaskCache) get(ctx context.Context, clientID string, id int64) (domain.Task, error) {
	tasks, err := c.snapshot(ctx, clientID)
	if err != nil {
		return domain.Task{}, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return tasks[i], nil
}

// Update edits task details locally.
func (c *TaskCache) Update(ctx context.Context, clientID string, id int64, p ports.TaskPatch) (domain.Task, error) {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return domain.Task{}, &domain.ValidationError{Fields: map[string][]string{"title": {"is required"}}}
		}
		p.Title = &t
	}
	if err := validateInput(p); err != nil {
		return domain.Task{}, err
	}

	var updated domain.Task
	err := c.mutate(ctx, clientID, func(tasks []domain.Task) ([]domain.Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, domain.ErrTaskNotFound
		}
		t := &tasks[i]
		if p.Title != nil {
			t.Title = *p.Title
		}
		if p.Description != nil {
			t.Description = strings.TrimSpace(*p.Description)
		}
		if p.Priority != nil {
			t.Priority = *p.Priority
		}
		switch {
		case p.ClearDeadline:
			t.Deadline = nil
		case p.Deadline != nil:
			d := *p.Deadline
			t.Deadline = &d
		}
		updated = *t
		return tasks, nil
	})
	return updated, err
}

// ToggleComplete flips a task between completed and pending.
func (c *TaskCache) ToggleComplete(ctx context.Context, clientID string, id int64) (domain.Task, error) {
	var toggled domain.Task
	err := c.mutate(ctx, clientID, func(tasks []domain.Task) ([]domain.Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, domain.ErrTaskNotFound
		}
		if tasks[i].Completed() {
			tasks[i].Status = domain.TaskPending
		} else {
			tasks[i].Status = domain.TaskCompleted
		}
		toggled = tasks[i]
		return tasks, nil
	})
	return toggled, err
}

// Delete removes a task from the board. Its backend twin, if any, is left alone.
func (c *TaskCache) Delete(ctx context.Context, clientID string, id int64) error {
	return c.mutate(ctx, clientID, func(tasks []domain.Task) ([]domain.Task, error) {
		i := indexOf(tasks, id)
		if i < 0 {
			return nil, domain.ErrTaskNotFound
		}
		return append(tasks[:i], tasks[i+1:]...), nil
	})
}

// List returns the filtered board. Counts always cover the whole list.
func (c *TaskCache) List(ctx context.Context, clientID string, f ports.TaskFilter) (*ports.TaskBoard, error) {
	_, err := c.sessions.Current(ctx, clientID)
	localOnly := errors.Is(err, domain.ErrNoSession)
	if err != nil && !localOnly {
		return nil, err
	}

	all, err := c.snapshot(ctx, clientID)
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.TaskStatus, len(all))
	for i, t := range all {
		statuses[i] = t.Status
	}

	now := c.now()
	out := make([]domain.Task, 0, len(all))
	for _, t := range all {
		if matchStatus(t, f.Status) && matchDue(t, f.Due, now) {
			out = append(out, t)
		}
	}
	return &ports.TaskBoard{Tasks: out, Counts: domain.CountTasks(statuses), LocalOnly: localOnly}, nil
}

func matchStatus(t domain.Task, filter string) bool {
	switch filter {
	case ports.FilterPending:
		return !t.Completed()
	case ports.FilterCompleted:
		return t.Completed()
	default:
		return true
	}
}

func matchDue(t domain.Task, filter string, now time.Time) bool {
	if filter == "" || filter == ports.DueAny {
		return true
	}
	if t.Deadline == nil {
		return filter == ports.DueNoDeadline
	}
	d := t.Deadline.In(now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch filter {
	case ports.DueOverdue:
		return d.Before(now) && !t.Completed()
	case ports.DueToday:
		return !d.Before(today) && d.Before(today.AddDate(0, 0, 1))
	case ports.DueWeek:
		return !d.Before(today) && d.Before(today.AddDate(0, 0, 7))
	}
	return false
}
