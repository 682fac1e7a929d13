package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moneykrishna/taskdesk/internal/api/middleware"
	"github.com/moneykrishna/taskdesk/internal/core/domain"
	"github.com/moneykrishna/taskdesk/internal/core/ports"
)

// BoardHandler serves the client's local-first task board.
type BoardHandler struct {
	cache  ports.TaskCache
	syncer ports.TaskSyncer
}

func NewBoardHandler(cache ports.TaskCache, syncer ports.TaskSyncer) *BoardHandler {
	return &BoardHandler{cache: cache, syncer: syncer}
}

// List handles GET /board/tasks.
//
// @Summary      List board tasks
// @Tags         board
// @Produce      json
// @Param        status  query     string  false  "all | pending | completed"
// @Param        due     query     string  false  "any | overdue | today | week | no-deadline"
// @Success      200     {object}  boardResponse
// @Router       /board/tasks [get]
func (h *BoardHandler) List(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	board, err := h.cache.List(c.Request().Context(), clientID, ports.TaskFilter{
		Status: c.QueryParam("status"),
		Due:    c.QueryParam("due"),
	})
	if err != nil {
		return err
	}

	resp := boardResponse{
		Tasks:     make([]taskView, 0, len(board.Tasks)),
		Counts:    board.Counts,
		LocalOnly: board.LocalOnly,
	}
	for _, t := range board.Tasks {
		resp.Tasks = append(resp.Tasks, newTaskView(t))
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /board/tasks. The task is stored locally at once; the
// backend copy is created in the background when the client is logged in.
//
// @Summary      Create a board task
// @Tags         board
// @Accept       json
// @Produce      json
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  taskView
// @Failure      422   {object}  map[string]string
// @Router       /board/tasks [post]
func (h *BoardHandler) Create(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.cache.CreateLocal(c.Request().Context(), clientID, ports.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TaskPriority(req.Priority),
		Deadline:    req.Deadline,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return err
	}
	if middleware.SessionFrom(c) != nil {
		h.syncer.Enqueue(ports.SyncJob{ClientID: clientID, LocalID: task.ID})
	}
	return c.JSON(http.StatusCreated, newTaskView(task))
}

// Sync handles POST /board/tasks/:id/sync, retrying a local task's backend
// creation and reporting its outcome.
//
// @Summary      Sync a board task
// @Tags         board
// @Produce      json
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  taskView
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /board/tasks/{id}/sync [post]
func (h *BoardHandler) Sync(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	task, err := h.cache.SyncCreate(c.Request().Context(), clientID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTaskView(task))
}

// Update handles PATCH /board/tasks/:id.
//
// @Summary      Edit a board task
// @Tags         board
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Changes"
// @Success      200   {object}  taskView
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /board/tasks/{id} [patch]
func (h *BoardHandler) Update(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	patch := ports.TaskPatch{
		Title:         req.Title,
		Description:   req.Description,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline,
	}
	if req.Priority != nil {
		p := domain.TaskPriority(*req.Priority)
		patch.Priority = &p
	}
	task, err := h.cache.Update(c.Request().Context(), clientID, id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTaskView(task))
}

// Toggle handles POST /board/tasks/:id/toggle.
//
// @Summary      Toggle completion
// @Tags         board
// @Produce      json
// @Param        id   path      int  true  "Task id"
// @Success      200  {object}  taskView
// @Failure      404  {object}  map[string]string
// @Router       /board/tasks/{id}/toggle [post]
func (h *BoardHandler) Toggle(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	task, err := h.cache.ToggleComplete(c.Request().Context(), clientID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTaskView(task))
}

// Delete handles DELETE /board/tasks/:id.
//
// @Summary      Delete a board task
// @Tags         board
// @Param        id  path  int  true  "Task id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /board/tasks/{id} [delete]
func (h *BoardHandler) Delete(c echo.Context) error {
	clientID, err := ctxClient(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.cache.Delete(c.Request().Context(), clientID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
