package handler

import (
	"context"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/service"
)

// dashboards is the read side the role sections render.
type dashboards interface {
	Admin(ctx context.Context, clientID string) service.AdminStats
	AdminTeam(ctx context.Context, clientID string) (string, error)
	SetAdminTeam(ctx context.Context, clientID, team string) error
	TeamTasks(ctx context.Context, clientID string) ([]domain.RemoteTask, error)
	TeamAttendance(ctx context.Context, clientID string) ([]domain.Attendance, error)
	Staff(ctx context.Context) service.StaffStats
	Sales(ctx context.Context) service.SalesStats
}
