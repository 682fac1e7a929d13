package ports

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
)

type accessTokenKey struct{}

// WithAccessToken returns a context whose backend calls carry token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFrom returns the bearer token bound to ctx, if any.
func AccessTokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(accessTokenKey{}).(string)
	return tok
}

// TokenPair is the JWT pair issued by the backend.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResponse is the body of /login/ and /register/.
type AuthResponse struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	User       *domain.User        `json:"user"`
	Tokens     TokenPair           `json:"tokens"`
	Attendance json.RawMessage     `json:"attendance,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

// Registration is the /register/ payload.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserType  string `json:"user_type"`
}

// TaskPayload is the admin create/update body for /tasks/.
type TaskPayload struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status,omitempty"`
	Priority    domain.TaskPriority `json:"priority,omitempty"`
	AssignedTo  *int64              `json:"assigned_to,omitempty"`
	Deadline    *time.Time          `json:"deadline,omitempty"`
}

// TaskDetailsPatch is the staff partial update of a task's details.
type TaskDetailsPatch struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Priority    *domain.TaskPriority `json:"priority,omitempty"`
	Deadline    *time.Time           `json:"deadline,omitempty"`
}

// Upload is a file streamed to a multipart endpoint.
type Upload struct {
	Filename string
	Content  io.Reader
}

// AuthAPI covers the unauthenticated endpoints.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, reg Registration) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refresh string) (*TokenPair, error)
}

// UserAPI manages accounts.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ChangeUserRole(ctx context.Context, id int64, target string) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// TaskAPI is the admin-scoped task CRUD.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]domain.RemoteTask, error)
	GetTask(ctx context.Context, id int64) (*domain.RemoteTask, error)
	CreateTask(ctx context.Context, p TaskPayload) (*domain.RemoteTask, error)
	UpdateTask(ctx context.Context, id int64, p TaskPayload) (*domain.RemoteTask, error)
	DeleteTask(ctx context.Context, id int64) error
}

// StaffTaskAPI is the staff-scoped view of assigned tasks.
type StaffTaskAPI interface {
	ListStaffTasks(ctx context.Context) ([]domain.RemoteTask, error)
	GetStaffTask(ctx context.Context, id int64) (*domain.RemoteTask, error)
	UpdateStaffTaskStatus(ctx context.Context, id int64, status domain.TaskStatus, completionNotes string) (*domain.RemoteTask, error)
	UpdateStaffTaskDetails(ctx context.Context, id int64, p TaskDetailsPatch) (*domain.RemoteTask, error)
}

// AttendanceAPI covers check-in/out and reporting.
type AttendanceAPI interface {
	MarkAttendance(ctx context.Context) (*domain.Attendance, error)
	MarkCheckout(ctx context.Context) (*domain.Attendance, error)
	// TodayAttendance returns nil, nil when there is no record for today.
	TodayAttendance(ctx context.Context) (*domain.Attendance, error)
	MyAttendanceRecords(ctx context.Context) ([]domain.Attendance, error)
	UserAttendance(ctx context.Context, userID int64) ([]domain.Attendance, error)
	AllAttendance(ctx context.Context) ([]domain.Attendance, error)
	ActiveUsers(ctx context.Context) (*domain.ActiveUsers, error)
}

// LeadAPI covers the sales pipeline.
type LeadAPI interface {
	UploadLeadsCSV(ctx context.Context, file Upload) (*domain.UploadResult, error)
	ListLeads(ctx context.Context) ([]domain.Lead, error)
	SetLeadStatus(ctx context.Context, leadID int64, status string) (*domain.Lead, error)
	UploadIndicatorProof(ctx context.Context, leadID int64, file Upload, notes string) (*domain.IndicatorProof, error)
	CreateFollowUp(ctx context.Context, leadID int64, scheduledDate, notes string) (*domain.FollowUp, error)
	ListFollowUps(ctx context.Context) ([]domain.FollowUp, error)
	CreateAccountOpening(ctx context.Context, leadID int64, depositAmount domain.Amount, notes string) (*domain.AccountOpening, error)
}

// Backend is the full REST surface.
type Backend interface {
	AuthAPI
	UserAPI
	TaskAPI
	StaffTaskAPI
	AttendanceAPI
	LeadAPI
}
