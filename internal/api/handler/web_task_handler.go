package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk/internal/api/view"
	"github.com/taskdesk/taskdesk/internal/core/domain"
	"github.com/taskdesk/taskdesk/internal/core/ports"
)

// WebTaskHandler serves the task list and the add/edit/delete/reorder actions.
type WebTaskHandler struct {
	tasks ports.TaskService
	pages
}

func NewWebTaskHandler(tasks ports.TaskService, sessions *Sessions) *WebTaskHandler {
	return &WebTaskHandler{tasks: tasks, pages: pages{sessions: sessions, now: time.Now}}
}

// taskList is the Data of the "tasks" page.
type taskList struct {
	Tasks []*domain.Task
	Now   time.Time
}

func (h *WebTaskHandler) List(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	tasks, err := h.tasks.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "tasks", "My tasks", nil, taskList{Tasks: tasks, Now: h.now()})
}

func (h *WebTaskHandler) New(c echo.Context) error {
	return h.render(c, http.StatusOK, "task_form", "Add task", nil, taskForm{})
}

func (h *WebTaskHandler) Create(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	form, in, err := h.bindForm(c)
	if err != nil {
		return h.formError(c, "task_form", "Add task", err, form)
	}

	if _, err := h.tasks.Create(c.Request().Context(), userID, in); err != nil {
		return h.formError(c, "task_form", "Add task", err, form)
	}
	h.sessions.AddFlash(c, view.FlashSuccess, "Task added successfully!")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *WebTaskHandler) Edit(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	task, err := h.tasks.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "task_form", "Edit task", nil, formFromTask(task))
}

func (h *WebTaskHandler) Update(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	form, in, err := h.bindForm(c)
	form.ID = id
	if err != nil {
		return h.formError(c, "task_form", "Edit task", err, form)
	}

	if _, err := h.tasks.Update(c.Request().Context(), userID, id, in); err != nil {
		return h.formError(c, "task_form", "Edit task", err, form)
	}
	h.sessions.AddFlash(c, view.FlashSuccess, "Task updated successfully!")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *WebTaskHandler) Delete(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.tasks.Delete(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	h.sessions.AddFlash(c, view.FlashSuccess, "Task deleted successfully!")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *WebTaskHandler) MoveUp(c echo.Context) error {
	return h.move(c, domain.MoveUp)
}

func (h *WebTaskHandler) MoveDown(c echo.Context) error {
	return h.move(c, domain.MoveDown)
}

func (h *WebTaskHandler) move(c echo.Context, dir domain.MoveDirection) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}

	moved, err := h.tasks.Move(c.Request().Context(), userID, c.Param("id"), dir)
	switch {
	case errors.Is(err, domain.ErrAlreadyFirst):
		h.sessions.AddFlash(c, view.FlashWarning, "This task is already at the top.")
	case errors.Is(err, domain.ErrAlreadyLast):
		h.sessions.AddFlash(c, view.FlashWarning, "This task is already at the bottom.")
	case err != nil:
		return err
	case moved:
		h.sessions.AddFlash(c, view.FlashSuccess, "Task moved "+dir.String()+" successfully!")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// bindForm binds and validates the task form. The returned form is always
// usable for re-rendering.
func (h *WebTaskHandler) bindForm(c echo.Context) (taskForm, ports.TaskInput, error) {
	var form taskForm
	if err := c.Bind(&form); err != nil {
		return form, ports.TaskInput{}, err
	}
	if err := c.Validate(&form); err != nil {
		return form, ports.TaskInput{}, err
	}
	in, err := form.input()
	return form, in, err
}
