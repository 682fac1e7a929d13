package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
	"github.com/moneykrishna/taskdesk/internal/core/service"
)

// AdminHandler serves the /admin section.
type AdminHandler struct {
	api  ports.Backend
	dash dashboards
	log  zerolog.Logger
}

func NewAdminHandler(api ports.Backend, dash dashboards, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{api: api, dash: dash, log: log}
}

// Dashboard handles GET /admin/dashboard. Backend failures are reported in
// the body rather than as an error status.
//
// @Summary      Admin dashboard
// @Tags         admin
// @Produce      json
// @Success      200  {object}  service.AdminStats
// @Router       /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.dash.Admin(c.Request().Context(), clientID))
}

// Team handles GET /admin/team.
//
// @Summary      Selected team
// @Tags         admin
// @Produce      json
// @Success      200  {object}  teamResponse
// @Router       /admin/team [get]
func (h *AdminHandler) Team(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	team, err := h.dash.AdminTeam(c.Request().Context(), clientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, teamResponse{Team: team})
}

// SetTeam handles PUT /admin/team.
//
// @Summary      Select the team the admin views work on
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      teamRequest  true  "staff or sales"
// @Success      200   {object}  teamResponse
// @Failure      422   {object}  map[string]string
// @Router       /admin/team [put]
func (h *AdminHandler) SetTeam(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	var req teamRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.dash.SetAdminTeam(c.Request().Context(), clientID, req.Team); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, teamResponse{Team: req.Team})
}

// ListTasks handles GET /admin/tasks. Only tasks assigned to members of the
// selected team are listed.
//
// @Summary      List the selected team's tasks
// @Tags         admin
// @Produce      json
// @Success      200  {object}  listResponse[domain.RemoteTask]
// @Router       /admin/tasks [get]
func (h *AdminHandler) ListTasks(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	tasks, err := h.dash.TeamTasks(c.Request().Context(), clientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(tasks))
}

// GetTask handles GET /admin/tasks/:id.
//
// @Summary      Get a task
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  domain.RemoteTask
// @Router       /admin/tasks/{id} [get]
func (h *AdminHandler) GetTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	task, err := h.api.GetTask(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// CreateTask handles POST /admin/tasks.
//
// @Summary      Create and assign a task
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      adminTaskRequest  true  "Task"
// @Success      201   {object}  domain.RemoteTask
// @Failure      422   {object}  map[string]string
// @Router       /admin/tasks [post]
func (h *AdminHandler) CreateTask(c echo.Context) error {
	var req adminTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	task, err := h.api.CreateTask(c.Request().Context(), req.payload())
	if err != nil {
		return err
	}
	h.log.Info().Int64("task_id", task.ID).Msg("task created")
	return c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /admin/tasks/:id.
//
// @Summary      Update a task
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Task id"
// @Param        body  body      adminTaskRequest  true  "Task"
// @Success      200   {object}  domain.RemoteTask
// @Router       /admin/tasks/{id} [put]
func (h *AdminHandler) UpdateTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req adminTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	task, err := h.api.UpdateTask(c.Request().Context(), id, req.payload())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /admin/tasks/:id.
//
// @Summary      Delete a task
// @Tags         admin
// @Param        id  path  int  true  "Task id"
// @Success      204
// @Router       /admin/tasks/{id} [delete]
func (h *AdminHandler) DeleteTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.api.DeleteTask(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (r adminTaskRequest) payload() ports.TaskPayload {
	return ports.TaskPayload{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status),
		Priority:    domain.TaskPriority(r.Priority),
		AssignedTo:  r.AssignedTo,
		Deadline:    r.Deadline,
	}
}

// ListUsers handles GET /admin/users. ?team=staff|sales narrows the list.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Param        team  query     string  false  "staff | sales"
// @Success      200   {object}  map[string]any
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.api.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	if team := c.QueryParam("team"); team != "" {
		filtered := make([]domain.User, 0, len(users))
		for _, u := range users {
			if service.InTeam(u, team) {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}
	return c.JSON(http.StatusOK, newList(users))
}

// GetUser handles GET /admin/users/:id.
//
// @Summary      Get a user
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  domain.User
// @Router       /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.api.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// ChangeRole handles POST /admin/users/:id/role.
//
// @Summary      Move a user to another team
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "User id"
// @Param        body  body      changeRoleRequest  true  "Target"
// @Success      200   {object}  domain.User
// @Router       /admin/users/{id}/role [post]
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req changeRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	u, err := h.api.ChangeUserRole(c.Request().Context(), id, req.Target)
	if err != nil {
		return err
	}
	h.log.Info().Int64("user_id", id).Str("target", req.Target).Msg("user role changed")
	return c.JSON(http.StatusOK, u)
}

// DeleteUser handles DELETE /admin/users/:id. Admins cannot delete themselves.
//
// @Summary      Delete a user
// @Tags         admin
// @Param        id   path      int  true  "User id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if s, err := ctxSession(c); err == nil && s.User().ID == id {
		return domain.ErrPermissionDenied
	}
	if err := h.api.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AllAttendance handles GET /admin/attendance, limited to the selected team.
//
// @Summary      Attendance records of the selected team
// @Tags         admin
// @Produce      json
// @Success      200  {object}  listResponse[domain.Attendance]
// @Router       /admin/attendance [get]
func (h *AdminHandler) AllAttendance(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	records, err := h.dash.TeamAttendance(c.Request().Context(), clientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(records))
}

// UserAttendance handles GET /admin/attendance/users/:id.
//
// @Summary      A user's attendance
// @Tags         admin
// @Produce      json
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  listResponse[domain.Attendance]
// @Router       /admin/attendance/users/{id} [get]
func (h *AdminHandler) UserAttendance(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	records, err := h.api.UserAttendance(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(records))
}

// ActiveUsers handles GET /admin/attendance/active.
//
// @Summary      Checked-in users
// @Tags         admin
// @Produce      json
// @Success      200  {object}  domain.ActiveUsers
// @Router       /admin/attendance/active [get]
func (h *AdminHandler) ActiveUsers(c echo.Context) error {
	active, err := h.api.ActiveUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, active)
}

// ListLeads handles GET /admin/leads.
//
// @Summary      List leads
// @Tags         admin
// @Produce      json
// @Success      200  {object}  listResponse[domain.Lead]
// @Router       /admin/leads [get]
func (h *AdminHandler) ListLeads(c echo.Context) error {
	leads, err := h.api.ListLeads(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(leads))
}

// UploadLeads handles POST /admin/leads/upload.
//
// @Summary      Bulk import leads from CSV
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV file"
// @Success      200   {object}  domain.UploadResult
// @Failure      400   {object}  map[string]string
// @Router       /admin/leads/upload [post]
func (h *AdminHandler) UploadLeads(c echo.Context) error {
	up, closer, err := formUpload(c)
	if err != nil {
		return err
	}
	defer closer.Close()

	res, err := h.api.UploadLeadsCSV(c.Request().Context(), up)
	if err != nil {
		return err
	}
	h.log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Msg("leads imported")
	return c.JSON(http.StatusOK, res)
}
