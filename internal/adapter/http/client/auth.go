package client

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/port"
)

// Persister keeps session cookies across process runs.
type Persister interface {
	Save() error
	Clear() error
}

type AuthClient struct {
	client  *Client
	session Persister
}

func NewAuthClient(baseURL string, opts Options, session Persister) port.AuthAPI {
	return &AuthClient{
		client:  New("auth", baseURL, opts),
		session: session,
	}
}

func (a *AuthClient) Login(ctx context.Context, req request.LoginRequest) (*domain.User, error) {
	env, err := a.client.do(ctx, call{
		op:     "auth.login",
		method: http.MethodPost,
		route:  "/login",
		path:   "/login",
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	user := env.User
	if user == nil {
		user, err = decodeData[*domain.User]("auth.login", env)
		if err != nil {
			return nil, err
		}
	}

	if user == nil {
		return nil, domain.NewRejection("auth.login", http.StatusOK, "Login failed")
	}

	a.persist()

	return user, nil
}

func (a *AuthClient) Logout(ctx context.Context) error {
	_, err := a.client.do(ctx, call{
		op:     "auth.logout",
		method: http.MethodPost,
		route:  "/logout",
		path:   "/logout",
	})

	if a.session != nil {
		if clearErr := a.session.Clear(); clearErr != nil {
			a.client.logger.Warn("Failed to clear saved session", zap.Error(clearErr))
		}
	}

	return err
}

func (a *AuthClient) CheckStatus(ctx context.Context) (*domain.User, error) {
	env, err := a.client.do(ctx, call{
		op:     "auth.status",
		method: http.MethodGet,
		route:  "/is-logged-in",
		path:   "/is-logged-in",
	})
	if err != nil {
		return nil, err
	}

	if env.IsLoggedIn == nil || !*env.IsLoggedIn || env.User == nil {
		return nil, nil
	}

	a.persist()

	return env.User, nil
}

func (a *AuthClient) Health(ctx context.Context) error {
	_, err := a.client.do(ctx, call{
		op:     "auth.health",
		method: http.MethodGet,
		route:  "/health",
		path:   "/health",
	})

	return err
}

func (a *AuthClient) persist() {
	if a.session == nil {
		return
	}

	if err := a.session.Save(); err != nil {
		a.client.logger.Warn("Failed to save session", zap.Error(err))
	}
}
