package http

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"todoclient/internal/adapter/database/sqlite"
	"todoclient/internal/adapter/database/sqlite/repository"
	"todoclient/internal/adapter/http/handler"
	"todoclient/internal/adapter/http/middleware"
	"todoclient/internal/adapter/http/routes"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/port"
	"todoclient/internal/core/service"
	"todoclient/internal/core/telemetry"
	"todoclient/pkg/logger"
)

type Options struct {
	Secret         string
	SessionTTL     time.Duration
	SecureCookies  bool
	AllowedOrigins []string
	Catalog        *handler.SuggestionCatalog
	Telemetry      port.Telemetry
	Metrics        *telemetry.AppMetrics
	Logger         *logger.Logger
}

// Container wires the devserver: one database behind an auth router and a
// todo router that share the session secret.
type Container struct {
	UserRepo port.UserRepository
	TodoRepo port.TodoRepository

	AccountService port.AccountService
	Sessions       *middleware.Sessions

	AuthHandler *handler.AuthHandler
	TodoHandler *handler.TodoHandler

	AuthRouter *gin.Engine
	TodoRouter *gin.Engine
}

func NewContainer(db *sqlite.DB, opts Options) *Container {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	userRepo := repository.NewUserRepository(db, opts.Telemetry)
	todoRepo := repository.NewTodoRepository(db, opts.Telemetry)

	accountSvc := service.NewAccountService(userRepo, opts.Logger.Zap())
	sessions := middleware.NewSessions(opts.Secret, opts.SessionTTL, opts.SecureCookies)

	authHandler := handler.NewAuthHandler(accountSvc, sessions, opts.Logger)
	todoHandler := handler.NewTodoHandler(todoRepo, accountSvc, opts.Catalog, opts.Logger)

	handlers := routes.HandlersConfig{
		AuthHandler: authHandler,
		TodoHandler: todoHandler,
		Sessions:    sessions,
	}

	middlewareOpts := func(service string) middleware.Options {
		return middleware.Options{
			ServiceName:    service,
			Logger:         opts.Logger,
			Metrics:        opts.Metrics,
			AllowedOrigins: opts.AllowedOrigins,
		}
	}

	return &Container{
		UserRepo:       userRepo,
		TodoRepo:       todoRepo,
		AccountService: accountSvc,
		Sessions:       sessions,
		AuthHandler:    authHandler,
		TodoHandler:    todoHandler,
		AuthRouter:     routes.SetupAuthRouter(handlers, middlewareOpts("todo-auth")),
		TodoRouter:     routes.SetupTodoRouter(handlers, middlewareOpts("todo-api")),
	}
}

// Seed creates the account unless it already exists.
func (c *Container) Seed(ctx context.Context, username string, password string) (domain.User, error) {
	user, err := c.AccountService.Register(ctx, username, password)
	if errors.Is(err, domain.ErrDuplicate) {
		return c.AccountService.Authenticate(ctx, username, password)
	}

	return user, err
}
