package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk/internal/core/domain"
	"github.com/taskdesk/taskdesk/internal/core/ports"
)

// TaskHandler handles the JSON API for a user's task list.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List handles GET /api/v1/tasks.
//
// @Summary      List tasks in display order
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   taskResponse
// @Failure      401  {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	tasks, err := h.service.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Get handles GET /api/v1/tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  taskResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	task, err := h.service.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Create handles POST /api/v1/tasks. The task is appended at the end of the list.
//
// @Summary      Add a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      taskRequest  true  "Task fields; dates as dd/mm/yyyy"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), userID, toTaskInput(req))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/tasks/"+task.ID)
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// Update handles PUT /api/v1/tasks/:id. The display order is left untouched.
//
// @Summary      Edit a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Task ID"
// @Param        body  body      taskRequest  true  "Task fields; dates as dd/mm/yyyy"
// @Success      200   {object}  taskResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), userID, c.Param("id"), toTaskInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /api/v1/tasks/:id and renumbers the remaining tasks.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MoveUp handles POST /api/v1/tasks/:id/move-up.
//
// @Summary      Swap a task with the one above it
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  moveResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id}/move-up [post]
func (h *TaskHandler) MoveUp(c echo.Context) error {
	return h.move(c, domain.MoveUp)
}

// MoveDown handles POST /api/v1/tasks/:id/move-down.
//
// @Summary      Swap a task with the one below it
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  moveResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id}/move-down [post]
func (h *TaskHandler) MoveDown(c echo.Context) error {
	return h.move(c, domain.MoveDown)
}

// move answers 200 for boundary no-ops too, with the reason in Notice.
func (h *TaskHandler) move(c echo.Context, dir domain.MoveDirection) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	resp := moveResponse{}
	moved, err := h.service.Move(ctx, userID, c.Param("id"), dir)
	switch {
	case errors.Is(err, domain.ErrAlreadyFirst), errors.Is(err, domain.ErrAlreadyLast):
		resp.Notice = err.Error()
	case err != nil:
		return err
	}
	resp.Moved = moved

	tasks, err := h.service.List(ctx, userID)
	if err != nil {
		return err
	}
	resp.Tasks = toTaskResponses(tasks)
	return c.JSON(http.StatusOK, resp)
}
