package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/taskdesk/taskdesk/internal/api/handler"
	"github.com/taskdesk/taskdesk/internal/api/middleware"
	"github.com/taskdesk/taskdesk/internal/core/ports"
	"github.com/taskdesk/taskdesk/internal/infrastructure/http/handlers"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Auth    ports.AuthService
	Tasks   ports.TaskService
	Reports ports.ReportService
	Chat    ports.ChatService

	SessionStore sessions.Store
	Sessions     *handler.Sessions
	Renderer     echo.Renderer
	JWTSecret    string
	// SecureCookies marks the session and CSRF cookies Secure.
	SecureCookies bool

	// Ready lists the dependencies checked by /health/ready.
	Ready map[string]handlers.Pinger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = d.Renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger, d.Sessions)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "taskdesk",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(session.Middleware(d.SessionStore))
	e.Use(middleware.LoadSession(d.Sessions.Name()))
	e.Use(echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "form:csrf_token",
		ContextKey:     handler.CSRFContextKey,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   d.SecureCookies,
		CookieSameSite: http.SameSiteLaxMode,
		Skipper:        skipCSRF,
	}))

	// --- HTML pages ---
	webAuth := handler.NewWebAuthHandler(d.Auth, d.Sessions)
	webTasks := handler.NewWebTaskHandler(d.Tasks, d.Sessions)
	webAssistant := handler.NewWebAssistantHandler(d.Tasks, d.Reports, d.Chat, d.Sessions)

	guest := middleware.RedirectIfAuthenticated("/")
	e.GET("/login", webAuth.ShowLogin, guest)
	e.POST("/login", webAuth.Login, guest)
	e.GET("/register", webAuth.ShowRegister, guest)
	e.POST("/register", webAuth.Register, guest)
	e.GET("/logout", webAuth.Logout)

	requireSession := middleware.RequireSession()
	e.GET("/", webTasks.List, requireSession)
	e.GET("/tasks/new", webTasks.New, requireSession)
	e.POST("/tasks/new", webTasks.Create, requireSession)
	e.GET("/tasks/:id/edit", webTasks.Edit, requireSession)
	e.POST("/tasks/:id/edit", webTasks.Update, requireSession)
	e.POST("/tasks/:id/delete", webTasks.Delete, requireSession)
	e.POST("/tasks/:id/move-up", webTasks.MoveUp, requireSession)
	e.POST("/tasks/:id/move-down", webTasks.MoveDown, requireSession)
	e.GET("/report", webAssistant.ReportForm, requireSession)
	e.POST("/report", webAssistant.Report, requireSession)
	e.GET("/chat", webAssistant.Chat, requireSession)
	e.POST("/chat", webAssistant.SendChat, requireSession)
	e.POST("/chat/messages/:id/delete", webAssistant.DeleteMessage, requireSession)

	// --- JSON API ---
	authHandler := handler.NewAuthHandler(d.Auth)
	taskHandler := handler.NewTaskHandler(d.Tasks)
	assistantHandler := handler.NewAssistantHandler(d.Reports, d.Chat)

	v1 := e.Group("/api/v1")
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("", middleware.Auth(d.JWTSecret))
	authed.GET("/tasks", taskHandler.List)
	authed.POST("/tasks", taskHandler.Create)
	authed.GET("/tasks/:id", taskHandler.Get)
	authed.PUT("/tasks/:id", taskHandler.Update)
	authed.DELETE("/tasks/:id", taskHandler.Delete)
	authed.POST("/tasks/:id/move-up", taskHandler.MoveUp)
	authed.POST("/tasks/:id/move-down", taskHandler.MoveDown)
	authed.POST("/reports", assistantHandler.Report)
	authed.GET("/messages", assistantHandler.Messages)
	authed.POST("/messages", assistantHandler.Send)
	authed.DELETE("/messages/:id", assistantHandler.DeleteMessage)

	// --- Operational endpoints (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Ready)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func skipCSRF(c echo.Context) bool {
	p := c.Request().URL.Path
	for _, prefix := range []string{"/api/", "/health", "/metrics", "/swagger/"} {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
