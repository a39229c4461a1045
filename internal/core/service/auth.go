package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/model/response"
	"todoclient/internal/core/port"
	tel "todoclient/internal/core/telemetry"
)

const authStoreName = "auth"

// AuthStore holds the current session user for the view layer.
type AuthStore struct {
	api       port.AuthAPI
	validator port.Validator
	telemetry port.Telemetry
	logger    *zap.Logger

	mu                sync.RWMutex
	user              *domain.User
	loading           bool
	err               error
	hasAttemptedLogin bool
}

func NewAuthStore(api port.AuthAPI, validator port.Validator, telemetry port.Telemetry, logger *zap.Logger) *AuthStore {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthStore{
		api:       api,
		validator: validator,
		telemetry: telemetry,
		logger:    logger,
		loading:   true,
	}
}

// CheckStatus asks the auth service whether a session is active. A failure
// is only recorded once a login has been attempted, so a first load without
// a session stays quiet.
func (as *AuthStore) CheckStatus(ctx context.Context) {
	ctx, span := as.telemetry.StartStoreSpan(ctx, authStoreName, "check_status", nil)
	defer span.End()

	startTime := time.Now()

	as.mu.Lock()
	as.loading = true
	as.mu.Unlock()

	user, err := as.api.CheckStatus(ctx)

	as.mu.Lock()
	defer as.mu.Unlock()

	as.loading = false

	if err != nil {
		as.user = nil
		if as.hasAttemptedLogin {
			as.err = err
		}

		span.RecordError(err)
		as.telemetry.RecordStoreOperation(ctx, authStoreName, "check_status", time.Since(startTime), err)
		return
	}

	as.user = user

	span.SetAttributes(map[string]interface{}{"auth.logged_in": user != nil})
	as.telemetry.RecordStoreOperation(ctx, authStoreName, "check_status", time.Since(startTime), nil)
}

func (as *AuthStore) Login(ctx context.Context, username string, password string) response.Result[*domain.User] {
	ctx, span := as.telemetry.StartStoreSpan(ctx, authStoreName, "login", map[string]interface{}{
		"auth.username": username,
	})
	defer span.End()

	startTime := time.Now()
	req := request.LoginRequest{Username: username, Password: password}

	as.mu.Lock()
	as.hasAttemptedLogin = true
	as.err = nil
	as.mu.Unlock()

	if as.validator != nil {
		if err := as.validator.Validate("auth.login", req); err != nil {
			as.mu.Lock()
			as.err = err
			as.mu.Unlock()

			as.telemetry.RecordStoreOperation(ctx, authStoreName, "login", time.Since(startTime), err)
			return response.Fail[*domain.User](err, "Login failed")
		}
	}

	user, err := as.api.Login(ctx, req)

	if err == nil && user == nil {
		err = domain.NewRejection("auth.login", http.StatusOK, "")
	}

	if err != nil {
		err = classifyLoginError(err)

		as.mu.Lock()
		as.err = err
		as.mu.Unlock()

		span.RecordError(err)
		as.telemetry.RecordStoreOperation(ctx, authStoreName, "login", time.Since(startTime), err)

		return response.Fail[*domain.User](err, "Login failed")
	}

	as.mu.Lock()
	as.user = user
	as.hasAttemptedLogin = false
	as.mu.Unlock()

	as.telemetry.RecordStoreOperation(ctx, authStoreName, "login", time.Since(startTime), nil)
	as.logger.Info("Logged in", zap.String("username", user.Username))

	return response.Ok(user)
}

// Logout always leaves the store logged out. A failed remote call is only
// logged.
func (as *AuthStore) Logout(ctx context.Context) {
	ctx, span := as.telemetry.StartStoreSpan(ctx, authStoreName, "logout", nil)
	defer span.End()

	startTime := time.Now()

	err := as.api.Logout(ctx)
	if err != nil {
		span.RecordError(err)
		as.logger.Warn("Logout request failed", zap.Error(err))
	}

	as.mu.Lock()
	as.user = nil
	as.err = nil
	as.hasAttemptedLogin = false
	as.mu.Unlock()

	as.telemetry.RecordStoreOperation(ctx, authStoreName, "logout", time.Since(startTime), err)
}

func (as *AuthStore) User() *domain.User {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.user
}

func (as *AuthStore) IsAuthenticated() bool {
	return as.User() != nil
}

func (as *AuthStore) Loading() bool {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.loading
}

func (as *AuthStore) Error() error {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.err
}

// classifyLoginError maps a raw client failure onto InvalidCredentials when
// the auth service answered and refused, and ServiceError otherwise.
func classifyLoginError(err error) error {
	var e *domain.Error
	if !errors.As(err, &e) {
		return &domain.Error{Kind: domain.KindServiceError, Op: "auth.login", Message: err.Error(), Err: err}
	}

	kind := domain.KindServiceError
	if e.Kind == domain.KindRejected && e.Status < http.StatusInternalServerError {
		kind = domain.KindInvalidCredentials
	}

	message := e.Message
	if message == "" {
		message = "Login failed"
		if kind == domain.KindInvalidCredentials {
			message = "Invalid username or password"
		}
	}

	return &domain.Error{Kind: kind, Op: "auth.login", Status: e.Status, Message: message, Err: err}
}
