package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"todoclient/internal/adapter/database/sqlite"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/port"
	tel "todoclient/internal/core/telemetry"
)

type UserRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewUserRepository(db *sqlite.DB, telemetry port.Telemetry) port.UserRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &UserRepository{
		db:        db,
		telemetry: telemetry,
	}
}

func (ur *UserRepository) Create(ctx context.Context, username string, passwordHash string) (account domain.Account, err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, "Create", "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
	})
	defer span.End()

	startTime := time.Now()
	defer func() { finish(ctx, ur.telemetry, span, "Create", "user", startTime, err) }()

	now := time.Now().UTC()
	id := uuid.New().String()

	query, args, err := ur.db.QueryBuilder.Insert("users").
		Columns("id", "username", "password_hash", "created_at", "updated_at").
		Values(id, username, passwordHash, formatTime(now), formatTime(now)).
		ToSql()
	if err != nil {
		return domain.Account{}, err
	}

	if _, err = ur.db.ExecContext(ctx, query, args...); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.Account{}, fmt.Errorf("user %q: %w", username, domain.ErrDuplicate)
		}
		return domain.Account{}, err
	}

	return domain.Account{
		User:         domain.User{ID: domain.ID(id), Username: username},
		PasswordHash: passwordHash,
	}, nil
}

func (ur *UserRepository) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	return ur.getBy(ctx, "GetByUsername", sq.Eq{"username": username})
}

func (ur *UserRepository) GetByID(ctx context.Context, id domain.ID) (domain.Account, error) {
	return ur.getBy(ctx, "GetByID", sq.Eq{"id": id.String()})
}

func (ur *UserRepository) getBy(ctx context.Context, operation string, where sq.Eq) (account domain.Account, err error) {
	ctx, span := ur.telemetry.StartRepositorySpan(ctx, operation, "user", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "users",
	})
	defer span.End()

	startTime := time.Now()
	defer func() { finish(ctx, ur.telemetry, span, operation, "user", startTime, err) }()

	query, args, err := ur.db.QueryBuilder.Select("id", "username", "password_hash").
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Account{}, err
	}

	var id string

	err = ur.db.QueryRowContext(ctx, query, args...).Scan(&id, &account.Username, &account.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}

	account.ID = domain.ID(id)

	return account, nil
}
