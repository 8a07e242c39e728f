package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk/internal/api/handler"
	"github.com/taskdesk/taskdesk/internal/api/view"
	"github.com/taskdesk/taskdesk/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"error": "<message>"} under /api and the error page elsewhere.
//
// Unauthenticated page requests are redirected to the login form with a flash.
func NewHTTPErrorHandler(log zerolog.Logger, sessions *handler.Sessions) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		api := isAPIRequest(c)
		if !api && errors.Is(err, domain.ErrUnauthenticated) {
			sessions.AddFlash(c, view.FlashWarning, "Please log in first.")
			if rerr := c.Redirect(http.StatusSeeOther, "/login"); rerr != nil {
				log.Error().Err(rerr).Msg("redirect to login")
			}
			return
		}

		code, msg := resolveError(err, log, c)

		var rerr error
		switch {
		case api || c.Request().Method == http.MethodHead:
			resp := errorResponse{Error: msg}
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				resp.Fields = verr.Fields
			}
			rerr = c.JSON(code, resp)
		default:
			rerr = sessions.RenderError(c, code, msg)
		}
		if rerr != nil {
			log.Error().Err(rerr).Msg("write error response")
		}
	}
}

func isAPIRequest(c echo.Context) bool {
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/health") || p == "/metrics"
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, CSRF, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusUnprocessableEntity, verr.Error()
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "task not found"
	case errors.Is(err, domain.ErrMessageNotFound):
		return http.StatusNotFound, "message not found"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrDuplicateTaskName):
		return http.StatusConflict, "task name already exists"
	case errors.Is(err, domain.ErrNoTasksSelected):
		return http.StatusBadRequest, "select at least one task"
	case errors.Is(err, domain.ErrGeneratorUnavailable):
		return http.StatusServiceUnavailable, "text generation is not configured"
	case errors.Is(err, domain.ErrGenerationFailed):
		return http.StatusBadGateway, "text generation failed"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
