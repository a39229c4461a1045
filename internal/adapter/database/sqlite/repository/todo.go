package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"todoclient/internal/adapter/database/sqlite"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/port"
	tel "todoclient/internal/core/telemetry"
)

var todoColumns = []string{"id", "title", "description", "completed", "created_at", "updated_at"}

type TodoRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
}

func NewTodoRepository(db *sqlite.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		telemetry: telemetry,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (domain.Todo, error) {
	var (
		todo        domain.Todo
		id          string
		description sql.NullString
		createdAt   string
		updatedAt   string
	)

	if err := row.Scan(&id, &todo.Title, &description, &todo.Completed, &createdAt, &updatedAt); err != nil {
		return domain.Todo{}, err
	}

	todo.ID = domain.ID(id)
	if description.Valid {
		todo.Description = &description.String
	}
	todo.CreatedAt = parseTime(createdAt)
	todo.UpdatedAt = parseTime(updatedAt)

	return todo, nil
}

// ListByOwner returns the owner's todos newest first.
func (tr *TodoRepository) ListByOwner(ctx context.Context, ownerID domain.ID) (todos []domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "ListByOwner", "todo", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "todos",
		"user.id":   ownerID.String(),
	})
	defer span.End()

	startTime := time.Now()
	defer func() { finish(ctx, tr.telemetry, span, "ListByOwner", "todo", startTime, err) }()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"user_id": ownerID.String()}).
		OrderBy("created_at DESC", "rowid DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := tr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos = make([]domain.Todo, 0)

	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"db.rows_returned": len(todos)})

	return todos, nil
}

func (tr *TodoRepository) GetByID(ctx context.Context, ownerID domain.ID, id domain.ID) (todo domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "GetByID", "todo", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "todos",
		"todo.id":   id.String(),
	})
	defer span.End()

	startTime := time.Now()
	defer func() { finish(ctx, tr.telemetry, span, "GetByID", "todo", startTime, err) }()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"id": id.String(), "user_id": ownerID.String()}).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	todo, err = scanTodo(tr.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, domain.ErrNotFound
	}

	return todo, err
}

func (tr *TodoRepository) Create(ctx context.Context, ownerID domain.ID, todo domain.Todo) (created domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Create", "todo", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "todos",
		"user.id":   ownerID.String(),
	})
	defer span.End()

	startTime := time.Now()
	defer func() { finish(ctx, tr.telemetry, span, "Create", "todo", startTime, err) }()

	now := time.Now().UTC()

	todo.ID = domain.ID(uuid.New().String())
	todo.CreatedAt = now
	todo.UpdatedAt = now

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns("id", "user_id", "title", "description", "completed", "created_at", "updated_at").
		Values(todo.ID.String(), ownerID.String(), todo.Title, nullString(todo.Description), todo.Completed, formatTime(now), formatTime(now)).
		ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	if _, err = tr.db.ExecContext(ctx, query, args...); err != nil {
		return domain.Todo{}, err
	}

	return todo, nil
}

func (tr *TodoRepository) Update(ctx context.Context, ownerID domain.ID, id domain.ID, upd request.TodoUpdate) (todo domain.Todo, err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Update", "todo", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "todos",
		"todo.id":   id.String(),
	})
	defer span.End()

	startTime := time.Now()
	defer func() { finish(ctx, tr.telemetry, span, "Update", "todo", startTime, err) }()

	builder := tr.db.QueryBuilder.Update("todos").
		Set("updated_at", formatTime(time.Now())).
		Where(sq.Eq{"id": id.String(), "user_id": ownerID.String()})

	if upd.Title != nil {
		builder = builder.Set("title", *upd.Title)
	}
	switch {
	case upd.ClearDescription:
		builder = builder.Set("description", nullString(nil))
	case upd.Description != nil:
		builder = builder.Set("description", nullString(domain.NullableText(*upd.Description)))
	}
	if upd.Completed != nil {
		builder = builder.Set("completed", *upd.Completed)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return domain.Todo{}, err
	}

	result, err := tr.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.Todo{}, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.Todo{}, err
	}

	if affected == 0 {
		return domain.Todo{}, domain.ErrNotFound
	}

	return tr.GetByID(ctx, ownerID, id)
}

func (tr *TodoRepository) Delete(ctx context.Context, ownerID domain.ID, id domain.ID) (err error) {
	ctx, span := tr.telemetry.StartRepositorySpan(ctx, "Delete", "todo", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "todos",
		"todo.id":   id.String(),
	})
	defer span.End()

	startTime := time.Now()
	defer func() { finish(ctx, tr.telemetry, span, "Delete", "todo", startTime, err) }()

	query, args, err := tr.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id.String(), "user_id": ownerID.String()}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := tr.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}
