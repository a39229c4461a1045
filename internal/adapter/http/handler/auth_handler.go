package handler

import (
	"errors"
	"net/http"

	. "todoclient/internal/adapter/http/helper"
	"todoclient/internal/adapter/http/middleware"
	. "todoclient/internal/adapter/http/validation"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/port"
	"todoclient/internal/core/service"
	"todoclient/internal/core/util"
	"todoclient/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc      port.AccountService
	sessions *middleware.Sessions
	logger   *logger.Logger
}

func NewAuthHandler(svc port.AccountService, sessions *middleware.Sessions, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.NewNop()
	}

	return &AuthHandler{
		svc:      svc,
		sessions: sessions,
		logger:   log,
	}
}

func (a *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.BindJSON[request.LoginRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	user, err := a.svc.Authenticate(ctx, params.Username, params.Password)

	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			SendUnauthorizedError(c, "Invalid username or password")
			return
		}

		a.logger.ErrorWithTrace(ctx, "Failed to authenticate", zap.Error(err))
		SendInternalError(c, "Login failed")
		return
	}

	if err := a.sessions.Issue(c, user.ID); err != nil {
		a.logger.ErrorWithTrace(ctx, "Failed to issue session", zap.Error(err))
		SendInternalError(c, "Login failed")
		return
	}

	SendUser(c, user, "Login successful")
}

func (a *AuthHandler) Logout(c *gin.Context) {
	a.sessions.Clear(c)

	SendMessage(c, http.StatusOK, "Logged out")
}

// IsLoggedIn reports the session state. An invalid or expired cookie is a
// logged-out session, not an error.
func (a *AuthHandler) IsLoggedIn(c *gin.Context) {
	userID, ok := a.sessions.Current(c)
	if !ok {
		SendSessionStatus(c, nil)
		return
	}

	user, err := a.svc.Lookup(c.Request.Context(), userID)
	if err != nil {
		a.logger.WarnWithTrace(c.Request.Context(), "Session user not found", zap.String("user_id", userID.String()), zap.Error(err))
		a.sessions.Clear(c)
		SendSessionStatus(c, nil)
		return
	}

	SendSessionStatus(c, &user)
}
