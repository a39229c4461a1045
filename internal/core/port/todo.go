package port

import (
	"context"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
)

// TodoAPI is the remote todo service.
type TodoAPI interface {
	List(ctx context.Context) ([]domain.Todo, error)
	Get(ctx context.Context, id domain.ID) (domain.Todo, error)
	Create(ctx context.Context, req request.TodoRequest) (domain.Todo, error)
	Update(ctx context.Context, id domain.ID, upd request.TodoUpdate) (domain.Todo, error)
	Delete(ctx context.Context, id domain.ID) error
	Suggestions(ctx context.Context) (domain.SuggestionBatch, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	Health(ctx context.Context) error
}

// TodoRepository persists todos for the devserver, scoped by owner.
type TodoRepository interface {
	ListByOwner(ctx context.Context, ownerID domain.ID) ([]domain.Todo, error)
	GetByID(ctx context.Context, ownerID domain.ID, id domain.ID) (domain.Todo, error)
	Create(ctx context.Context, ownerID domain.ID, todo domain.Todo) (domain.Todo, error)
	Update(ctx context.Context, ownerID domain.ID, id domain.ID, upd request.TodoUpdate) (domain.Todo, error)
	Delete(ctx context.Context, ownerID domain.ID, id domain.ID) error
}

// UserRepository persists devserver accounts.
type UserRepository interface {
	Create(ctx context.Context, username string, passwordHash string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	GetByID(ctx context.Context, id domain.ID) (domain.Account, error)
}
