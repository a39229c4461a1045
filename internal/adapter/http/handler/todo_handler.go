package handler

import (
	"errors"
	"net/http"
	"strings"

	. "todoclient/internal/adapter/http/helper"
	"todoclient/internal/adapter/http/middleware"
	. "todoclient/internal/adapter/http/validation"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/port"
	"todoclient/internal/core/util"
	"todoclient/pkg/logger"
	. "todoclient/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type TodoHandler struct {
	repo     port.TodoRepository
	accounts port.AccountService
	catalog  *SuggestionCatalog
	logger   *logger.Logger
}

func NewTodoHandler(repo port.TodoRepository, accounts port.AccountService, catalog *SuggestionCatalog, log *logger.Logger) *TodoHandler {
	if log == nil {
		log = logger.NewNop()
	}

	if catalog == nil {
		catalog = NewSuggestionCatalog(DefaultSuggestions(), defaultSuggestionLimit)
	}

	return &TodoHandler{
		repo:     repo,
		accounts: accounts,
		catalog:  catalog,
		logger:   log,
	}
}

func (t *TodoHandler) GetAllTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetAllTodos", []attribute.KeyValue{
		attribute.String("handler.operation", "GetAllTodos"),
	})
	defer span.End()

	userID := middleware.CurrentUserID(c)
	span.SetAttributes(attribute.String("user.id", userID.String()))

	todos, err := t.repo.ListByOwner(ctx, userID)

	if err != nil {
		AddSpanError(span, err)
		t.logger.ErrorWithTrace(ctx, "Failed to get todos", zap.Error(err), zap.String("user_id", userID.String()))
		SendInternalError(c, "Error getting todos")
		return
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))

	SendSuccess(c, http.StatusOK, todos)
}

func (t *TodoHandler) GetTodo(c *gin.Context) {
	ctx := c.Request.Context()

	todo, err := t.repo.GetByID(ctx, middleware.CurrentUserID(c), domain.ID(c.Param("id")))

	if err != nil {
		t.sendRepositoryError(c, "Failed to get todo", "Todo not found", err)
		return
	}

	SendSuccess(c, http.StatusOK, todo)
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.BindJSON[request.TodoRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	params.Title = strings.TrimSpace(params.Title)
	if params.Description != nil {
		params.Description = domain.NullableText(*params.Description)
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	todo, err := t.repo.Create(ctx, middleware.CurrentUserID(c), domain.Todo{
		Title:       params.Title,
		Description: params.Description,
		Completed:   params.Completed,
	})

	if err != nil {
		t.logger.ErrorWithTrace(ctx, "Failed to create todo", zap.Error(err))
		SendInternalError(c, "Error creating todo")
		return
	}

	SendSuccess(c, http.StatusCreated, todo, "Todo created")
}

func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.BindJSON[request.TodoUpdate](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		params.Title = &title
	}
	if params.Description != nil {
		params.SetDescription(*params.Description)
	}

	if params.IsEmpty() {
		SendBadRequestError(c, "request", "Nothing to update")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	todo, err := t.repo.Update(ctx, middleware.CurrentUserID(c), domain.ID(c.Param("id")), params)

	if err != nil {
		t.sendRepositoryError(c, "Failed to update todo", "Todo not found", err)
		return
	}

	SendSuccess(c, http.StatusOK, todo, "Todo updated")
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx := c.Request.Context()

	if err := t.repo.Delete(ctx, middleware.CurrentUserID(c), domain.ID(c.Param("id"))); err != nil {
		t.sendRepositoryError(c, "Failed to delete todo", "Todo not found", err)
		return
	}

	SendMessage(c, http.StatusOK, "Todo deleted")
}

// Suggestions proposes catalog entries the user does not already have.
func (t *TodoHandler) Suggestions(c *gin.Context) {
	ctx := c.Request.Context()

	todos, err := t.repo.ListByOwner(ctx, middleware.CurrentUserID(c))

	if err != nil {
		t.logger.ErrorWithTrace(ctx, "Failed to load todos for suggestions", zap.Error(err))
		SendInternalError(c, "Unable to generate suggestions right now.")
		return
	}

	batch := t.catalog.Suggest(todos)

	SendSuccess(c, http.StatusOK, gin.H{"suggestions": batch.Suggestions}, batch.Message)
}

func (t *TodoHandler) CurrentUser(c *gin.Context) {
	user, err := t.accounts.Lookup(c.Request.Context(), middleware.CurrentUserID(c))

	if err != nil {
		t.sendRepositoryError(c, "Failed to load user", "User not found", err)
		return
	}

	SendSuccess(c, http.StatusOK, user)
}

func (t *TodoHandler) sendRepositoryError(c *gin.Context, msg string, notFound string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		SendNotFoundError(c, notFound)
		return
	}

	t.logger.ErrorWithTrace(c.Request.Context(), msg, zap.Error(err))
	SendInternalError(c, msg)
}
