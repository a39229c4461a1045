package port

import (
	"context"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
)

// AuthAPI is the remote auth service. The session travels in cookies held by
// the implementation, never in request bodies.
type AuthAPI interface {
	Login(ctx context.Context, req request.LoginRequest) (*domain.User, error)
	Logout(ctx context.Context) error
	// CheckStatus returns a nil user and nil error when no session is active.
	CheckStatus(ctx context.Context) (*domain.User, error)
	Health(ctx context.Context) error
}

// AccountService authenticates devserver accounts.
type AccountService interface {
	Register(ctx context.Context, username string, password string) (domain.User, error)
	Authenticate(ctx context.Context, username string, password string) (domain.User, error)
	Lookup(ctx context.Context, id domain.ID) (domain.User, error)
}
