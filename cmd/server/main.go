// Command server runs the taskdesk web application and JSON API.
//
// @title                       taskdesk API
// @version                     1.0
// @description                 Per-user ordered task lists with generated reports and a chat log.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	_ "github.com/taskdesk/taskdesk/docs"
	"github.com/taskdesk/taskdesk/internal/api"
	"github.com/taskdesk/taskdesk/internal/api/handler"
	"github.com/taskdesk/taskdesk/internal/api/view"
	"github.com/taskdesk/taskdesk/internal/core/domain"
	"github.com/taskdesk/taskdesk/internal/core/ports"
	"github.com/taskdesk/taskdesk/internal/core/service"
	mongostore "github.com/taskdesk/taskdesk/internal/infrastructure/db/mongo"
	redisstore "github.com/taskdesk/taskdesk/internal/infrastructure/db/redis"
	"github.com/taskdesk/taskdesk/internal/infrastructure/db/sqlstore"
	"github.com/taskdesk/taskdesk/internal/infrastructure/http/handlers"
	"github.com/taskdesk/taskdesk/internal/infrastructure/textgen"
	"github.com/taskdesk/taskdesk/internal/pkg/config"
	"github.com/taskdesk/taskdesk/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users    ports.UserRepository
	tasks    ports.TaskRepository
	messages ports.MessageRepository
	ready    map[string]handlers.Pinger
	closer   io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Env: cfg.Env})

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer func() {
		if err := repos.closer.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	sessionStore, err := openSessionStore(ctx, cfg, repos, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open session store")
	}

	var generator ports.TextGenerator
	generator, err = textgen.New(ctx, textgen.Config{
		APIKey:  cfg.GenAI.APIKey,
		Model:   cfg.GenAI.Model,
		Timeout: cfg.GenAI.Timeout,
	})
	switch {
	case errors.Is(err, domain.ErrGeneratorUnavailable):
		log.Warn().Msg("API_KEY not set, reports and chat answers are disabled")
		generator = textgen.Unavailable{}
	case err != nil:
		log.Fatal().Err(err).Msg("init text generator")
	}

	renderer, err := view.NewRenderer(cfg.CurrencySymbol)
	if err != nil {
		log.Fatal().Err(err).Msg("parse templates")
	}

	taskService := service.NewTaskService(repos.tasks, logger.Component("tasks"))
	router := api.NewRouter(api.Deps{
		Auth:          service.NewAuthService(repos.users, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth")),
		Tasks:         taskService,
		Reports:       service.NewReportService(repos.tasks, generator, cfg.CurrencySymbol, logger.Component("reports")),
		Chat:          service.NewChatService(repos.messages, generator, logger.Component("chat")),
		SessionStore:  sessionStore,
		Sessions:      handler.NewSessions(cfg.Session.Name, cfg.Session.TTL, !cfg.IsDevelopment(), logger.Component("sessions")),
		Renderer:      renderer,
		JWTSecret:     cfg.JWTSecret,
		SecureCookies: !cfg.IsDevelopment(),
		Ready:         repos.ready,
		Logger:        logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}

// openRepositories picks the backend from the DATABASE_URL scheme.
func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.UsesMongo() {
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.DatabaseURL, Database: cfg.MongoDB})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &repositories{
			users:    mongostore.NewUserRepository(db),
			tasks:    mongostore.NewTaskRepository(db),
			messages: mongostore.NewMessageRepository(db),
			ready:    map[string]handlers.Pinger{"mongodb": mongostore.Pinger{Client: client}},
			closer: closerFunc(func() error {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return client.Disconnect(ctx)
			}),
		}, nil
	}

	db, err := sqlstore.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &repositories{
		users:    sqlstore.NewUserRepository(db),
		tasks:    sqlstore.NewTaskRepository(db),
		messages: sqlstore.NewMessageRepository(db),
		ready:    map[string]handlers.Pinger{db.Backend(): db},
		closer:   db,
	}, nil
}

// openSessionStore keeps sessions in Redis when REDIS_ADDR is set and in
// signed cookies otherwise.
func openSessionStore(ctx context.Context, cfg *config.Config, repos *repositories, log zerolog.Logger) (sessions.Store, error) {
	key := []byte(cfg.SecretKey)
	if cfg.Redis.Addr == "" {
		store := sessions.NewCookieStore(key)
		store.Options.MaxAge = int(cfg.Session.TTL / time.Second)
		return store, nil
	}

	client, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	repos.ready["redis"] = redisstore.Pinger{Client: client}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("sessions stored in redis")
	return redisstore.NewSessionStore(client, cfg.Session.TTL, key), nil
}
