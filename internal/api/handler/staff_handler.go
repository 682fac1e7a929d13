package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

// StaffHandler serves the /staff section.
type StaffHandler struct {
	api  ports.StaffTaskAPI
	dash dashboards
}

func NewStaffHandler(api ports.StaffTaskAPI, dash dashboards) *StaffHandler {
	return &StaffHandler{api: api, dash: dash}
}

// Dashboard handles GET /staff/dashboard.
//
// @Summary      Staff dashboard
// @Tags         staff
// @Produce      json
// @Success      200  {object}  service.StaffStats
// @Router       /staff/dashboard [get]
func (h *StaffHandler) Dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dash.Staff(c.Request().Context()))
}

// ListTasks handles GET /staff/tasks.
//
// @Summary      Assigned tasks
// @Tags         staff
// @Produce      json
// @Success      200  {object}  listResponse[domain.RemoteTask]
// @Router       /staff/tasks [get]
func (h *StaffHandler) ListTasks(c echo.Context) error {
	tasks, err := h.api.ListStaffTasks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(tasks))
}

// GetTask handles GET /staff/tasks/:id.
//
// @Summary      An assigned task
// @Tags         staff
// @Produce      json
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  domain.RemoteTask
// @Router       /staff/tasks/{id} [get]
func (h *StaffHandler) GetTask(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	task, err := h.api.GetStaffTask(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateStatus handles PATCH /staff/tasks/:id/status.
//
// @Summary      Update an assigned task's status
// @Tags         staff
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Task id"
// @Param        body  body      taskStatusRequest  true  "Status"
// @Success      200   {object}  domain.RemoteTask
// @Failure      422   {object}  map[string]string
// @Router       /staff/tasks/{id}/status [patch]
func (h *StaffHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req taskStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	task, err := h.api.UpdateStaffTaskStatus(c.Request().Context(), id, domain.TaskStatus(req.Status), req.CompletionNotes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateDetails handles PATCH /staff/tasks/:id/details.
//
// @Summary      Update an assigned task's details
// @Tags         staff
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Task id"
// @Param        body  body      taskDetailsRequest  true  "Details"
// @Success      200   {object}  domain.RemoteTask
// @Failure      422   {object}  map[string]string
// @Router       /staff/tasks/{id}/details [patch]
func (h *StaffHandler) UpdateDetails(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req taskDetailsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	patch := ports.TaskDetailsPatch{Title: req.Title, Description: req.Description, Deadline: req.Deadline}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		patch.Priority = &p
	}
	task, err := h.api.UpdateStaffTaskDetails(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}
