package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/moneykrishna/taskdesk/internal/api/middleware"
	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
	"github.com/moneykrishna/taskdesk/internal/core/service"
)

const testClient = "6f1c2b9e-6a7e-4c55-9a0d-3e2f3f6d8a11"

type stubSessions struct {
	current  *domain.Session
	loginRes *ports.LoginResult
	loginErr error
	creds    ports.Credentials
	logouts  int
}

func (s *stubSessions) Login(_ context.Context, _ string, c ports.Credentials) (*ports.LoginResult, error) {
	s.creds = c
	return s.loginRes, s.loginErr
}

func (s *stubSessions) Signup(context.Context, string, ports.SignupInput) (*ports.LoginResult, error) {
	return s.loginRes, s.loginErr
}

func (s *stubSessions) Logout(context.Context, string) error {
	s.logouts++
	s.current = nil
	return nil
}

func (s *stubSessions) Current(context.Context, string) (*domain.Session, error) {
	if s.current == nil {
		return nil, domain.ErrNoSession
	}
	return s.current, nil
}

func (s *stubSessions) Refresh(context.Context, string) (*domain.Session, error) {
	return s.current, nil
}

type stubCache struct {
	created  []ports.TaskInput
	nextID   int64
	syncErr  error
	synced   []int64
	board    *ports.TaskBoard
	lastList ports.TaskFilter
}

func (s *stubCache) CreateLocal(_ context.Context, _ string, in ports.TaskInput) (domain.Task, error) {
	s.created = append(s.created, in)
	s.nextID++
	p := in.Priority
	if p == "" {
		p = domain.PriorityMedium
	}
	return domain.Task{ID: s.nextID, Title: in.Title, Priority: p, Status: domain.TaskPending, Sync: domain.LocalSync(nil)}, nil
}

func (s *stubCache) SyncCreate(_ context.Context, _ string, id int64) (domain.Task, error) {
	s.synced = append(s.synced, id)
	if s.syncErr != nil {
		return domain.Task{}, s.syncErr
	}
	return domain.Task{ID: id, Title: "synced", Sync: domain.SyncedWith(99)}, nil
}

func (s *stubCache) Update(context.Context, string, int64, ports.TaskPatch) (domain.Task, error) {
	return domain.Task{}, domain.ErrTaskNotFound
}

func (s *stubCache) ToggleComplete(_ context.Context, _ string, id int64) (domain.Task, error) {
	return domain.Task{ID: id, Status: domain.TaskCompleted}, nil
}

func (s *stubCache) Delete(context.Context, string, int64) error { return domain.ErrTaskNotFound }

func (s *stubCache) List(_ context.Context, _ string, f ports.TaskFilter) (*ports.TaskBoard, error) {
	s.lastList = f
	return s.board, nil
}

type stubSyncer struct{ jobs []ports.SyncJob }

func (s *stubSyncer) Enqueue(job ports.SyncJob) { s.jobs = append(s.jobs, job) }

type stubDash struct {
	team       string
	sales      service.SalesStats
	tasks      []domain.RemoteTask
	attendance []domain.Attendance
	askedFor   string
}

func (d *stubDash) TeamTasks(_ context.Context, clientID string) ([]domain.RemoteTask, error) {
	d.askedFor = clientID
	return d.tasks, nil
}

func (d *stubDash) TeamAttendance(_ context.Context, clientID string) ([]domain.Attendance, error) {
	d.askedFor = clientID
	return d.attendance, nil
}

func (d *stubDash) Admin(context.Context, string) service.AdminStats {
	return service.AdminStats{Team: d.team}
}

func (d *stubDash) AdminTeam(context.Context, string) (string, error) { return d.team, nil }

func (d *stubDash) SetAdminTeam(_ context.Context, _ string, team string) error {
	d.team = team
	return nil
}

func (d *stubDash) Staff(context.Context) service.StaffStats { return service.StaffStats{} }

func (d *stubDash) Sales(context.Context) service.SalesStats { return d.sales }

// stubBackend implements only the calls a test configures; the rest panic.
type stubBackend struct {
	ports.Backend

	leads   []domain.Lead
	today   *domain.Attendance
	opening struct {
		lead   int64
		amount domain.Amount
		notes  string
	}
	deletedUser int64
	statusSet   domain.TaskStatus
}

func (b *stubBackend) ListLeads(context.Context) ([]domain.Lead, error) { return b.leads, nil }

func (b *stubBackend) TodayAttendance(context.Context) (*domain.Attendance, error) {
	return b.today, nil
}

func (b *stubBackend) CreateAccountOpening(_ context.Context, lead int64, amount domain.Amount, notes string) (*domain.AccountOpening, error) {
	b.opening.lead, b.opening.amount, b.opening.notes = lead, amount, notes
	return &domain.AccountOpening{ID: 1, Lead: lead, DepositAmount: amount, Notes: notes}, nil
}

func (b *stubBackend) DeleteUser(_ context.Context, id int64) error {
	b.deletedUser = id
	return nil
}

func (b *stubBackend) UpdateStaffTaskStatus(_ context.Context, id int64, status domain.TaskStatus, _ string) (*domain.RemoteTask, error) {
	b.statusSet = status
	return &domain.RemoteTask{ID: id, Status: status}, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// serve runs h behind the client and session middleware, the way the router
// mounts it, and returns the handler's error along with the recorder.
func serve(t *testing.T, sessions ports.SessionService, req *http.Request, h echo.HandlerFunc, params ...string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := newTestEcho()
	req.AddCookie(&http.Cookie{Name: middleware.ClientCookie, Value: testClient})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params)%2 != 0 {
		t.Fatalf("params must be name/value pairs")
	}
	var names, values []string
	for i := 0; i < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	chain := middleware.ClientID(false)(middleware.Session(sessions, zerolog.Nop())(h))
	return rec, chain(c)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

func mustSession(t *testing.T, u domain.User) *domain.Session {
	t.Helper()
	s, err := domain.NewSession(domain.SessionRecord{ID: "s1", AccessToken: "T1", RefreshToken: "R1", User: &u})
	require.NoError(t, err)
	return s
}
