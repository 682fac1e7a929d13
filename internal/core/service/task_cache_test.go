package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

type stubSessions struct {
	mu        sync.Mutex
	current   *domain.Session
	storage   *stubStorage
	refreshed *domain.Session
	refreshes int
}

// set also mirrors the session into attached storage, where the board
// re-checks it before applying a sync response.
func (s *stubSessions) set(sess *domain.Session) {
	s.mu.Lock()
	s.current = sess
	st := s.storage
	s.mu.Unlock()
	mirrorSession(st, sess)
}

func (s *stubSessions) attach(st *stubStorage) {
	s.mu.Lock()
	s.storage = st
	cur := s.current
	s.mu.Unlock()
	mirrorSession(st, cur)
}

func mirrorSession(st *stubStorage, sess *domain.Session) {
	if st == nil {
		return
	}
	if sess == nil {
		st.drop("c1", ports.KeySession)
		return
	}
	blob, _ := json.Marshal(sess.Record())
	_ = st.Save(context.Background(), "c1", ports.KeySession, blob)
}

func (s *stubSessions) Login(context.Context, string, ports.Credentials) (*ports.LoginResult, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSessions) Signup(context.Context, string, ports.SignupInput) (*ports.LoginResult, error) {
	return nil, errors.New("not implemented")
}

func (s *stubSessions) Logout(context.Context, string) error {
	s.set(nil)
	return nil
}

func (s *stubSessions) Current(context.Context, string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, domain.ErrNoSession
	}
	return s.current, nil
}

func (s *stubSessions) Refresh(ctx context.Context, clientID string) (*domain.Session, error) {
	s.mu.Lock()
	s.refreshes++
	next := s.refreshed
	s.mu.Unlock()
	if next == nil {
		return nil, &domain.NetworkError{Method: "POST", Path: "/token/refresh/", Err: errors.New("connection refused")}
	}
	s.set(next)
	return next, nil
}

type stubTaskAPI struct {
	mu        sync.Mutex
	calls     int
	nextID    int64
	err       error
	lastToken string
	during    func()
}

func (a *stubTaskAPI) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *stubTaskAPI) CreateTask(ctx context.Context, p ports.TaskPayload) (*domain.RemoteTask, error) {
	a.mu.Lock()
	a.calls++
	a.lastToken = ports.AccessTokenFrom(ctx)
	a.mu.Unlock()
	if a.during != nil {
		a.during()
	}
	if a.err != nil {
		return nil, a.err
	}
	return &domain.RemoteTask{ID: a.nextID, Title: p.Title, Status: p.Status}, nil
}

func (a *stubTaskAPI) ListTasks(context.Context) ([]domain.RemoteTask, error) { return nil, nil }

func (a *stubTaskAPI) GetTask(context.Context, int64) (*domain.RemoteTask, error) { return nil, nil }

func (a *stubTaskAPI) UpdateTask(context.Context, int64, ports.TaskPayload) (*domain.RemoteTask, error) {
	return nil, nil
}

func (a *stubTaskAPI) DeleteTask(context.Context, int64) error { return nil }

func newTestTaskCache(sessions *stubSessions, api *stubTaskAPI, storage *stubStorage) *TaskCache {
	sessions.attach(storage)
	c := NewTaskCache(sessions, api, storage, zerolog.Nop())
	c.now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestTaskCache_CreateAndSync_KeepsIDAndPosition(t *testing.T) {
	sessions := &stubSessions{}
	sessions.set(mustSession(t, staffUser))
	api := &stubTaskAPI{nextID: 42}
	cache := newTestTaskCache(sessions, api, newStubStorage())
	ctx := context.Background()

	older, err := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "older"})
	if err != nil {
		t.Fatalf("CreateLocal: %v", err)
	}
	task, err := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "  Call client  "})
	if err != nil {
		t.Fatalf("CreateLocal: %v", err)
	}
	if task.Title != "Call client" || task.Synced() {
		t.Fatalf("unexpected local task: %+v", task)
	}
	if task.ID == older.ID {
		t.Fatalf("ids must be unique, both %d", task.ID)
	}

	synced, err := cache.SyncCreate(ctx, "c1", task.ID)
	if err != nil {
		t.Fatalf("SyncCreate: %v", err)
	}
	if synced.ID != task.ID || !synced.Synced() || *synced.Sync.BackendID != 42 {
		t.Fatalf("unexpected synced task: %+v", synced)
	}
	if api.lastToken != "T" {
		t.Fatalf("expected bearer token on the call, got %q", api.lastToken)
	}

	board, err := cache.List(ctx, "c1", ports.TaskFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(board.Tasks) != 2 || board.Tasks[0].ID != task.ID || board.Tasks[1].ID != older.ID {
		t.Fatalf("position changed: %+v", board.Tasks)
	}
	if !board.Tasks[0].Synced() || board.Tasks[1].Synced() {
		t.Fatalf("only the synced task should carry a backend id")
	}
}

func TestTaskCache_SyncCreate_NetworkFailureKeepsLocal(t *testing.T) {
	sessions := &stubSessions{}
	sessions.set(mustSession(t, staffUser))
	api := &stubTaskAPI{err: &domain.NetworkError{Method: "POST", Path: "/tasks/", Err: errors.New("connection refused")}}
	cache := newTestTaskCache(sessions, api, newStubStorage())
	ctx := context.Background()

	task, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "t"})
	got, err := cache.SyncCreate(ctx, "c1", task.ID)
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if got.Synced() || got.Sync.LastError == "" {
		t.Fatalf("task should stay local with the error recorded: %+v", got.Sync)
	}

	board, _ := cache.List(ctx, "c1", ports.TaskFilter{})
	if len(board.Tasks) != 1 || board.Tasks[0].Sync.State != domain.SyncLocal {
		t.Fatalf("task should still be listed as local: %+v", board.Tasks)
	}
}

func TestTaskCache_NoSession_MakesNoCall(t *testing.T) {
	api := &stubTaskAPI{nextID: 1}
	cache := newTestTaskCache(&stubSessions{}, api, newStubStorage())
	ctx := context.Background()

	task, err := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "offline"})
	if err != nil {
		t.Fatalf("CreateLocal: %v", err)
	}
	got, err := cache.SyncCreate(ctx, "c1", task.ID)
	if err != nil {
		t.Fatalf("SyncCreate without session should not fail: %v", err)
	}
	if api.calls != 0 {
		t.Fatalf("expected no network call, got %d", api.calls)
	}
	if got.Sync.BackendID != nil {
		t.Fatalf("local-only task must have no backend id")
	}

	board, _ := cache.List(ctx, "c1", ports.TaskFilter{})
	if !board.LocalOnly || len(board.Tasks) != 1 {
		t.Fatalf("expected one local-only task, got %+v", board)
	}
}

func TestTaskCache_SyncCreate_DiscardsStaleResponses(t *testing.T) {
	ctx := context.Background()

	t.Run("session changed", func(t *testing.T) {
		sessions := &stubSessions{}
		sessions.set(mustSession(t, staffUser))
		api := &stubTaskAPI{nextID: 7}
		cache := newTestTaskCache(sessions, api, newStubStorage())
		task, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "t"})

		api.during = func() { sessions.set(nil) }
		if _, err := cache.SyncCreate(ctx, "c1", task.ID); !errors.Is(err, domain.ErrStaleResponse) {
			t.Fatalf("expected ErrStaleResponse, got %v", err)
		}
		got, _ := cache.get(ctx, "c1", task.ID)
		if got.Synced() {
			t.Fatalf("stale response must not be applied")
		}
	})

	t.Run("task deleted", func(t *testing.T) {
		sessions := &stubSessions{}
		sessions.set(mustSession(t, staffUser))
		api := &stubTaskAPI{nextID: 7}
		cache := newTestTaskCache(sessions, api, newStubStorage())
		task, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "t"})

		api.during = func() {
			if err := cache.Delete(ctx, "c1", task.ID); err != nil {
				t.Errorf("Delete: %v", err)
			}
		}
		if _, err := cache.SyncCreate(ctx, "c1", task.ID); !errors.Is(err, domain.ErrStaleResponse) {
			t.Fatalf("expected ErrStaleResponse, got %v", err)
		}
		board, _ := cache.List(ctx, "c1", ports.TaskFilter{})
		if len(board.Tasks) != 0 {
			t.Fatalf("deleted task must not reappear: %+v", board.Tasks)
		}
	})
}

func TestTaskCache_StorageFailureLeavesMemoryUntouched(t *testing.T) {
	storage := newStubStorage()
	cache := newTestTaskCache(&stubSessions{}, &stubTaskAPI{}, storage)
	ctx := context.Background()

	task, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "t"})
	storage.failSave = true

	if _, err := cache.ToggleComplete(ctx, "c1", task.ID); !errors.Is(err, errStorageDown) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if _, err := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "u"}); err == nil {
		t.Fatalf("expected storage error on create")
	}

	board, _ := cache.List(ctx, "c1", ports.TaskFilter{})
	if len(board.Tasks) != 1 || board.Tasks[0].Status != domain.TaskPending {
		t.Fatalf("memory changed despite failed write: %+v", board.Tasks)
	}
}

func TestTaskCache_LocalEdits(t *testing.T) {
	cache := newTestTaskCache(&stubSessions{}, &stubTaskAPI{}, newStubStorage())
	ctx := context.Background()

	task, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "draft"})

	toggled, err := cache.ToggleComplete(ctx, "c1", task.ID)
	if err != nil || toggled.Status != domain.TaskCompleted {
		t.Fatalf("toggle to completed: %+v %v", toggled, err)
	}
	toggled, _ = cache.ToggleComplete(ctx, "c1", task.ID)
	if toggled.Status != domain.TaskPending {
		t.Fatalf("toggle back to pending, got %s", toggled.Status)
	}

	title := "final"
	high := domain.PriorityHigh
	updated, err := cache.Update(ctx, "c1", task.ID, ports.TaskPatch{Title: &title, Priority: &high})
	if err != nil || updated.Title != "final" || updated.Priority != domain.PriorityHigh {
		t.Fatalf("update: %+v %v", updated, err)
	}

	blank := "  "
	if _, err := cache.Update(ctx, "c1", task.ID, ports.TaskPatch{Title: &blank}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := cache.Delete(ctx, "c1", task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := cache.Delete(ctx, "c1", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: " "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank title, got %v", err)
	}
}

func TestTaskCache_ReadsStorageOnEveryCall(t *testing.T) {
	storage := newStubStorage()
	cache := newTestTaskCache(&stubSessions{}, &stubTaskAPI{}, storage)
	ctx := context.Background()

	task, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "persisted"})
	other := newTestTaskCache(&stubSessions{}, &stubTaskAPI{}, storage)
	got, err := other.get(ctx, "c1", task.ID)
	if err != nil || got.Title != "persisted" {
		t.Fatalf("expected task read from shared storage: %+v %v", got, err)
	}

	// An expired or externally cleared board must not be served from memory.
	if err := storage.Clear(ctx, "c1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	board, err := cache.List(ctx, "c1", ports.TaskFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(board.Tasks) != 0 {
		t.Fatalf("expected empty board after storage was cleared, got %+v", board.Tasks)
	}
	if _, err := cache.ToggleComplete(ctx, "c1", task.ID); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskCache_ReleasesIdleClientLocks(t *testing.T) {
	cache := newTestTaskCache(&stubSessions{}, &stubTaskAPI{}, newStubStorage())
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		client := "c" + strconv.Itoa(i)
		if _, err := cache.CreateLocal(ctx, client, ports.TaskInput{Title: "t"}); err != nil {
			t.Fatalf("CreateLocal: %v", err)
		}
		if _, err := cache.List(ctx, client, ports.TaskFilter{}); err != nil {
			t.Fatalf("List: %v", err)
		}
	}
	if n := cache.locks.held(); n != 0 {
		t.Fatalf("expected no lock entries for idle clients, got %d", n)
	}
}

func TestTaskCache_LogoutWaitsForPendingWrite(t *testing.T) {
	storage := newStubStorage()
	auth := &stubAuthAPI{loginResp: authOK(staffUser, "T1")}
	store := newTestSessionStore(auth, storage)
	cache := NewTaskCache(store, &stubTaskAPI{}, storage, zerolog.Nop())
	store.OnClear(cache)
	ctx := context.Background()

	if _, err := store.Login(ctx, "c1", ports.Credentials{Email: "a@x.io", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "first"}); err != nil {
		t.Fatalf("CreateLocal: %v", err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	storage.beforeSave = func(_, key string) {
		if key != ports.KeyTasks {
			return
		}
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	writeDone := make(chan error, 1)
	go func() {
		_, err := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "second"})
		writeDone <- err
	}()
	<-entered

	logoutDone := make(chan error, 1)
	go func() { logoutDone <- store.Logout(ctx, "c1") }()
	select {
	case err := <-logoutDone:
		t.Fatalf("logout returned while a board write was pending: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if err := <-writeDone; err != nil {
		t.Fatalf("pending write: %v", err)
	}
	if err := <-logoutDone; err != nil {
		t.Fatalf("Logout: %v", err)
	}

	auth.loginResp = authOK(domain.User{ID: 9, Email: "b@x.io", UserType: domain.UserTypeSales}, "T2")
	if _, err := store.Login(ctx, "c1", ports.Credentials{Email: "b@x.io", Password: "pw"}); err != nil {
		t.Fatalf("second login: %v", err)
	}
	board, err := cache.List(ctx, "c1", ports.TaskFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(board.Tasks) != 0 {
		t.Fatalf("previous user's tasks survived logout: %+v", board.Tasks)
	}
}

func TestTaskCache_SyncCreate_ConcurrentCallsShareOneRequest(t *testing.T) {
	sessions := &stubSessions{}
	sessions.set(mustSession(t, staffUser))
	api := &stubTaskAPI{nextID: 77}
	cache := newTestTaskCache(sessions, api, newStubStorage())
	ctx := context.Background()

	task, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "once"})

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	api.during = func() {
		once.Do(func() { close(started) })
		<-release
	}

	const callers = 4
	var wg sync.WaitGroup
	results := make([]domain.Task, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.SyncCreate(ctx, "c1", task.ID)
		}(i)
	}
	<-started
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := api.callCount(); n != 1 {
		t.Fatalf("expected one backend create, got %d", n)
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if !results[i].Synced() || *results[i].Sync.BackendID != 77 {
			t.Fatalf("caller %d got %+v", i, results[i].Sync)
		}
	}
}

func TestTaskCache_SyncCreate_RefreshesExpiredToken(t *testing.T) {
	ctx := context.Background()
	expired := func(t *testing.T) *domain.Session {
		t.Helper()
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Date(2024, 5, 10, 11, 0, 0, 0, time.UTC).Unix(),
		}).SignedString([]byte("k"))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		u := staffUser
		sess, err := domain.NewSession(domain.SessionRecord{ID: "s", AccessToken: tok, RefreshToken: "R", User: &u})
		if err != nil {
			t.Fatalf("NewSession: %v", err)
		}
		return sess
	}

	t.Run("uses the refreshed token", func(t *testing.T) {
		sess := expired(t)
		next, err := sess.WithTokens("T-new", "")
		if err != nil {
			t.Fatalf("WithTokens: %v", err)
		}
		sessions := &stubSessions{refreshed: next}
		sessions.set(sess)
		api := &stubTaskAPI{nextID: 5}
		cache := newTestTaskCache(sessions, api, newStubStorage())

		task, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "t"})
		got, err := cache.SyncCreate(ctx, "c1", task.ID)
		if err != nil {
			t.Fatalf("SyncCreate: %v", err)
		}
		if !got.Synced() {
			t.Fatalf("expected synced task, got %+v", got.Sync)
		}
		if sessions.refreshes != 1 || api.lastToken != "T-new" {
			t.Fatalf("expected one refresh and the new token, got %d refreshes and %q", sessions.refreshes, api.lastToken)
		}
	})

	t.Run("failed refresh keeps the old token", func(t *testing.T) {
		sess := expired(t)
		sessions := &stubSessions{}
		sessions.set(sess)
		api := &stubTaskAPI{nextID: 5}
		cache := newTestTaskCache(sessions, api, newStubStorage())

		task, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "t"})
		if _, err := cache.SyncCreate(ctx, "c1", task.ID); err != nil {
			t.Fatalf("SyncCreate: %v", err)
		}
		if sessions.refreshes != 1 || api.lastToken != sess.AccessToken() {
			t.Fatalf("expected the call with the old token after a failed refresh, got %q", api.lastToken)
		}
	})
}

func TestTaskCache_ListFilters(t *testing.T) {
	cache := newTestTaskCache(&stubSessions{}, &stubTaskAPI{}, newStubStorage())
	ctx := context.Background()
	now := cache.now()

	at := func(d time.Duration) *time.Time { v := now.Add(d); return &v }

	overdue, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "overdue", Deadline: at(-2 * time.Hour)})
	doneLate, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "done late", Deadline: at(-48 * time.Hour)})
	_, _ = cache.ToggleComplete(ctx, "c1", doneLate.ID)
	today, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "today", Deadline: at(3 * time.Hour)})
	week, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "week", Deadline: at(72 * time.Hour)})
	none, _ := cache.CreateLocal(ctx, "c1", ports.TaskInput{Title: "none"})

	ids := func(b *ports.TaskBoard) map[int64]bool {
		m := map[int64]bool{}
		for _, t := range b.Tasks {
			m[t.ID] = true
		}
		return m
	}

	tests := []struct {
		name   string
		filter ports.TaskFilter
		want   []int64
	}{
		{"overdue excludes completed", ports.TaskFilter{Due: ports.DueOverdue}, []int64{overdue.ID}},
		{"today", ports.TaskFilter{Due: ports.DueToday}, []int64{overdue.ID, today.ID}},
		{"week", ports.TaskFilter{Due: ports.DueWeek}, []int64{overdue.ID, today.ID, week.ID}},
		{"no deadline", ports.TaskFilter{Due: ports.DueNoDeadline}, []int64{none.ID}},
		{"completed", ports.TaskFilter{Status: ports.FilterCompleted}, []int64{doneLate.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, err := cache.List(ctx, "c1", tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			got := ids(board)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tasks, want %d", len(got), len(tt.want))
			}
			for _, id := range tt.want {
				if !got[id] {
					t.Fatalf("missing task %d", id)
				}
			}
			if board.Counts.Total != 5 || board.Counts.Completed != 1 || board.Counts.Pending != 4 {
				t.Fatalf("counts should cover the whole list: %+v", board.Counts)
			}
		})
	}
}
