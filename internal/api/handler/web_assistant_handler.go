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

// WebAssistantHandler serves the report and chat pages.
type WebAssistantHandler struct {
	tasks   ports.TaskService
	reports ports.ReportService
	chat    ports.ChatService
	pages
}

func NewWebAssistantHandler(tasks ports.TaskService, reports ports.ReportService, chat ports.ChatService, sessions *Sessions) *WebAssistantHandler {
	return &WebAssistantHandler{
		tasks:   tasks,
		reports: reports,
		chat:    chat,
		pages:   pages{sessions: sessions, now: time.Now},
	}
}

type reportForm struct {
	TaskIDs []string `form:"task_ids"`
}

type chatForm struct {
	Message string `form:"message"`
}

func (h *WebAssistantHandler) ReportForm(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	tasks, err := h.tasks.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "generate_report", "Generate report", nil, tasks)
}

func (h *WebAssistantHandler) Report(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	var form reportForm
	if err := c.Bind(&form); err != nil {
		return err
	}

	report, err := h.reports.Generate(c.Request().Context(), userID, form.TaskIDs)
	switch {
	case errors.Is(err, domain.ErrNoTasksSelected):
		h.sessions.AddFlash(c, view.FlashWarning, "Please select at least one task.")
		return c.Redirect(http.StatusSeeOther, "/report")
	case errors.Is(err, domain.ErrGenerationFailed), errors.Is(err, domain.ErrGeneratorUnavailable):
		h.sessions.AddFlash(c, view.FlashDanger, "Error generating the report. Check your API key and try again.")
		return c.Redirect(http.StatusSeeOther, "/report")
	case err != nil:
		return err
	}
	return h.render(c, http.StatusOK, "report", "Task report", nil, report)
}

func (h *WebAssistantHandler) Chat(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	return h.renderChat(c, userID, http.StatusOK, nil)
}

func (h *WebAssistantHandler) SendChat(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	var form chatForm
	if err := c.Bind(&form); err != nil {
		return err
	}

	exchange, err := h.chat.Send(c.Request().Context(), userID, form.Message)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return h.renderChat(c, userID, http.StatusUnprocessableEntity, verr.Fields)
	}
	if err != nil {
		return err
	}
	if exchange.Failed {
		h.sessions.AddFlash(c, view.FlashDanger, "Error generating the answer. Check your API key and try again.")
	}
	return c.Redirect(http.StatusSeeOther, "/chat")
}

func (h *WebAssistantHandler) DeleteMessage(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.chat.DeleteMessage(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	h.sessions.AddFlash(c, view.FlashSuccess, "Message deleted successfully!")
	return c.Redirect(http.StatusSeeOther, "/chat")
}

func (h *WebAssistantHandler) renderChat(c echo.Context, userID string, status int, errs map[string]string) error {
	history, err := h.chat.History(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return h.render(c, status, "chat", "Chat", errs, history)
}
