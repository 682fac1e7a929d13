package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

// Admin team selections.
const (
	TeamStaff = "staff"
	TeamSales = "sales"
)

// AdminStats summarises the selected team. Error is set when the backend
// could not be read; the counts are then zero.
type AdminStats struct {
	Team       string            `json:"team"`
	TotalUsers int               `json:"total_users"`
	Tasks      domain.TaskCounts `json:"tasks"`
	Error      string            `json:"error,omitempty"`
}

// StaffStats summarises the caller's assigned tasks and today's attendance.
type StaffStats struct {
	Tasks    domain.TaskCounts `json:"tasks"`
	CheckIn  string            `json:"check_in,omitempty"`
	CheckOut string            `json:"check_out,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// SalesStats summarises the caller's pipeline.
type SalesStats struct {
	TotalLeads int            `json:"total_leads"`
	ByStatus   map[string]int `json:"by_status"`
	Converted  int            `json:"converted"`
	FollowUps  int            `json:"follow_ups"`
	CheckIn    string         `json:"check_in,omitempty"`
	CheckOut   string         `json:"check_out,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Dashboards aggregates backend data into per-role summaries. Backend calls
// use the access token bound to the incoming context.
type Dashboards struct {
	api     ports.Backend
	storage ports.ClientStorage
	log     zerolog.Logger
}

func NewDashboards(api ports.Backend, storage ports.ClientStorage, log zerolog.Logger) *Dashboards {
	return &Dashboards{api: api, storage: storage, log: log}
}

// AdminTeam returns the client's selected team, staff by default.
func (d *Dashboards) AdminTeam(ctx context.Context, clientID string) (string, error) {
	blob, err := d.storage.Load(ctx, clientID, ports.KeyAdminTeam)
	if err != nil {
		return "", fmt.Errorf("load admin team: %w", err)
	}
	var team string
	if blob != nil {
		_ = json.Unmarshal(blob, &team)
	}
	if team != TeamSales {
		team = TeamStaff
	}
	return team, nil
}

// SetAdminTeam persists the team selection.
func (d *Dashboards) SetAdminTeam(ctx context.Context, clientID, team string) error {
	if err := validate.Var(team, "required,oneof=staff sales"); err != nil {
		return &domain.ValidationError{Fields: map[string][]string{"team": {"must be one of: staff sales"}}}
	}
	blob, _ := json.Marshal(team)
	if err := d.storage.Save(ctx, clientID, ports.KeyAdminTeam, blob); err != nil {
		return fmt.Errorf("save admin team: %w", err)
	}
	return nil
}

// InTeam reports whether u belongs to team.
func InTeam(u domain.User, team string) bool {
	if team == TeamSales {
		return u.UserType == domain.UserTypeSales
	}
	return u.UserType == domain.UserTypeStaff || u.IsStaff
}

// teamMembers returns the ids of the users in the client's selected team.
func (d *Dashboards) teamMembers(ctx context.Context, clientID string) (string, map[int64]bool, error) {
	team, err := d.AdminTeam(ctx, clientID)
	if err != nil {
		return "", nil, err
	}
	users, err := d.api.ListUsers(ctx)
	if err != nil {
		return team, nil, err
	}
	members := make(map[int64]bool)
	for _, u := range users {
		if InTeam(u, team) {
			members[u.ID] = true
		}
	}
	return team, members, nil
}

// TeamTasks lists the backend tasks assigned to members of the selected
// team. If the user list cannot be read the unfiltered list is returned.
func (d *Dashboards) TeamTasks(ctx context.Context, clientID string) ([]domain.RemoteTask, error) {
	tasks, err := d.api.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	team, members, err := d.teamMembers(ctx, clientID)
	if err != nil {
		d.log.Warn().Err(err).Str("team", team).Msg("task list left unfiltered")
		return tasks, nil
	}
	out := make([]domain.RemoteTask, 0, len(tasks))
	for _, t := range tasks {
		if t.AssignedTo != nil && members[*t.AssignedTo] {
			out = append(out, t)
		}
	}
	return out, nil
}

// TeamAttendance lists attendance records of the selected team's members.
func (d *Dashboards) TeamAttendance(ctx context.Context, clientID string) ([]domain.Attendance, error) {
	records, err := d.api.AllAttendance(ctx)
	if err != nil {
		return nil, err
	}
	_, members, err := d.teamMembers(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Attendance, 0, len(records))
	for _, r := range records {
		if members[r.User] {
			out = append(out, r)
		}
	}
	return out, nil
}

// Admin never fails: backend errors yield zeroed counts with Error set.
func (d *Dashboards) Admin(ctx context.Context, clientID string) AdminStats {
	team, members, err := d.teamMembers(ctx, clientID)
	if team == "" {
		return AdminStats{Team: TeamStaff, Error: err.Error()}
	}
	stats := AdminStats{Team: team}
	if err != nil {
		return d.adminFailed(stats, err)
	}
	tasks, err := d.api.ListTasks(ctx)
	if err != nil {
		return d.adminFailed(stats, err)
	}

	statuses := make([]domain.TaskStatus, 0, len(tasks))
	for _, t := range tasks {
		if t.AssignedTo != nil && members[*t.AssignedTo] {
			statuses = append(statuses, t.Status)
		}
	}
	stats.TotalUsers = len(members)
	stats.Tasks = domain.CountTasks(statuses)
	return stats
}

func (d *Dashboards) adminFailed(stats AdminStats, err error) AdminStats {
	d.log.Warn().Err(err).Str("team", stats.Team).Msg("admin stats unavailable")
	return AdminStats{Team: stats.Team, Error: err.Error()}
}

// Staff summarises the caller's tasks and today's check-in.
func (d *Dashboards) Staff(ctx context.Context) StaffStats {
	tasks, err := d.api.ListStaffTasks(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("staff stats unavailable")
		return StaffStats{Error: err.Error()}
	}
	statuses := make([]domain.TaskStatus, len(tasks))
	for i, t := range tasks {
		statuses[i] = t.Status
	}
	stats := StaffStats{Tasks: domain.CountTasks(statuses)}

	today, err := d.api.TodayAttendance(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("staff attendance unavailable")
		return StaffStats{Error: err.Error()}
	}
	stats.CheckIn = today.CheckIn()
	stats.CheckOut = today.CheckOut()
	return stats
}

// Sales summarises leads, follow-ups and today's check-in.
func (d *Dashboards) Sales(ctx context.Context) SalesStats {
	fail := func(err error) SalesStats {
		d.log.Warn().Err(err).Msg("sales stats unavailable")
		return SalesStats{ByStatus: map[string]int{}, Error: err.Error()}
	}

	leads, err := d.api.ListLeads(ctx)
	if err != nil {
		return fail(err)
	}
	followUps, err := d.api.ListFollowUps(ctx)
	if err != nil {
		return fail(err)
	}
	today, err := d.api.TodayAttendance(ctx)
	if err != nil {
		return fail(err)
	}

	stats := SalesStats{
		TotalLeads: len(leads),
		ByStatus:   make(map[string]int),
		FollowUps:  len(followUps),
		CheckIn:    today.CheckIn(),
		CheckOut:   today.CheckOut(),
	}
	for _, l := range leads {
		stats.ByStatus[l.Status]++
	}
	stats.Converted = stats.ByStatus[domain.LeadConverted]
	return stats
}
