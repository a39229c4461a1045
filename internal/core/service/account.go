package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/port"
	"todoclient/internal/core/util"
)

var ErrAuthenticationFailed = errors.New("authentication failed")

// AccountService backs the devserver auth endpoints.
type AccountService struct {
	repo   port.UserRepository
	logger *zap.Logger
}

func NewAccountService(repo port.UserRepository, logger *zap.Logger) port.AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AccountService{repo: repo, logger: logger}
}

func (as *AccountService) Register(ctx context.Context, username string, password string) (domain.User, error) {
	username = strings.TrimSpace(username)

	hashed, err := util.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := as.repo.Create(ctx, username, hashed)
	if err != nil {
		return domain.User{}, err
	}

	return account.User, nil
}

func (as *AccountService) Authenticate(ctx context.Context, username string, password string) (domain.User, error) {
	account, err := as.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, err
		}
		as.logger.Debug("Account#Authenticate unknown user", zap.String("username", username))
		return domain.User{}, ErrAuthenticationFailed
	}

	if err := util.ComparePassword(password, account.PasswordHash); err != nil {
		as.logger.Debug("Account#Authenticate password mismatch", zap.String("username", username))
		return domain.User{}, ErrAuthenticationFailed
	}

	return account.User, nil
}

func (as *AccountService) Lookup(ctx context.Context, id domain.ID) (domain.User, error) {
	account, err := as.repo.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	return account.User, nil
}
