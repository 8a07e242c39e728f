package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk/internal/core/ports"
)

// AssistantHandler handles the JSON API for reports and the chat transcript.
type AssistantHandler struct {
	reports ports.ReportService
	chat    ports.ChatService
}

func NewAssistantHandler(reports ports.ReportService, chat ports.ChatService) *AssistantHandler {
	return &AssistantHandler{reports: reports, chat: chat}
}

// Report handles POST /api/v1/reports.
//
// @Summary      Generate a report over selected tasks
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      reportRequest  true  "Task IDs to include"
// @Success      200   {object}  reportResponse
// @Failure      400   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /reports [post]
func (h *AssistantHandler) Report(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req reportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	report, err := h.reports.Generate(c.Request().Context(), userID, req.TaskIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reportResponse{Report: report})
}

// Messages handles GET /api/v1/messages.
//
// @Summary      Chat transcript, oldest first
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Message
// @Failure      401  {object}  errorResponse
// @Router       /messages [get]
func (h *AssistantHandler) Messages(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	history, err := h.chat.History(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}

// Send handles POST /api/v1/messages. Both messages are stored even when
// generation fails; Fallback then reports that the answer is the canned reply.
//
// @Summary      Send a chat message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      messageRequest  true  "Message text"
// @Success      201   {object}  chatResponse
// @Failure      422   {object}  errorResponse
// @Router       /messages [post]
func (h *AssistantHandler) Send(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	exchange, err := h.chat.Send(c.Request().Context(), userID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, chatResponse{
		Question: exchange.Question,
		Answer:   exchange.Answer,
		Fallback: exchange.Failed,
	})
}

// DeleteMessage handles DELETE /api/v1/messages/:id.
//
// @Summary      Delete one chat message
// @Tags         messages
// @Security     BearerAuth
// @Param        id   path  string  true  "Message ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /messages/{id} [delete]
func (h *AssistantHandler) DeleteMessage(c echo.Context) error {
	userID, _, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.chat.DeleteMessage(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
