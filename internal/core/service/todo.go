package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/model/response"
	"todoclient/internal/core/port"
	tel "todoclient/internal/core/telemetry"
)

const todoStoreName = "todos"

// TodoStore mirrors the remote todo collection. Entries are keyed by id and
// ordered by the order slice; both change together under mu.
//
// Remote calls run without holding mu, so overlapping operations apply in
// completion order.
type TodoStore struct {
	api       port.TodoAPI
	validator port.Validator
	telemetry port.Telemetry
	logger    *zap.Logger

	mu      sync.RWMutex
	byID    map[domain.ID]domain.Todo
	order   []domain.ID
	loading bool
	err     error
}

func NewTodoStore(api port.TodoAPI, validator port.Validator, telemetry port.Telemetry, logger *zap.Logger) *TodoStore {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &TodoStore{
		api:       api,
		validator: validator,
		telemetry: telemetry,
		logger:    logger,
		byID:      make(map[domain.ID]domain.Todo),
		order:     make([]domain.ID, 0),
	}
}

// FetchTodos replaces the collection with the server's list. On failure the
// collection is left alone and the error is kept for the banner.
func (ts *TodoStore) FetchTodos(ctx context.Context) response.Result[[]domain.Todo] {
	ctx, span := ts.telemetry.StartStoreSpan(ctx, todoStoreName, "fetch", nil)
	defer span.End()

	startTime := time.Now()

	ts.mu.Lock()
	ts.loading = true
	ts.err = nil
	ts.mu.Unlock()

	todos, err := ts.api.List(ctx)

	ts.mu.Lock()
	ts.loading = false

	if err != nil {
		ts.err = err
		ts.mu.Unlock()

		span.RecordError(err)
		ts.telemetry.RecordStoreOperation(ctx, todoStoreName, "fetch", time.Since(startTime), err)

		return response.Fail[[]domain.Todo](err, "Failed to fetch todos")
	}

	ts.replaceLocked(todos)
	size := len(ts.order)
	snapshot := ts.snapshotLocked()
	ts.mu.Unlock()

	span.SetAttributes(map[string]interface{}{"todos.count": size})
	ts.telemetry.RecordCollectionSize(ctx, size)
	ts.telemetry.RecordStoreOperation(ctx, todoStoreName, "fetch", time.Since(startTime), nil)

	return response.Ok(snapshot)
}

// CreateTodo validates, creates remotely and puts the server's record first.
func (ts *TodoStore) CreateTodo(ctx context.Context, req request.TodoRequest) response.Result[domain.Todo] {
	ctx, span := ts.telemetry.StartStoreSpan(ctx, todoStoreName, "create", nil)
	defer span.End()

	startTime := time.Now()

	req.Title = strings.TrimSpace(req.Title)
	if req.Description != nil {
		req.Description = domain.NullableText(*req.Description)
	}

	if err := ts.validate("todos.create", req); err != nil {
		ts.telemetry.RecordStoreOperation(ctx, todoStoreName, "create", time.Since(startTime), err)
		return response.Fail[domain.Todo](err, "Failed to create todo")
	}

	todo, err := ts.api.Create(ctx, req)
	if err != nil {
		span.RecordError(err)
		ts.telemetry.RecordStoreOperation(ctx, todoStoreName, "create", time.Since(startTime), err)
		return response.Fail[domain.Todo](err, "Failed to create todo")
	}

	ts.mu.Lock()
	ts.prependLocked(todo)
	size := len(ts.order)
	ts.mu.Unlock()

	span.SetAttributes(map[string]interface{}{"todo.id": todo.ID.String()})
	ts.telemetry.RecordCollectionSize(ctx, size)
	ts.telemetry.RecordStoreOperation(ctx, todoStoreName, "create", time.Since(startTime), nil)

	return response.Ok(todo)
}

// UpdateTodo sends a partial update and swaps the returned record into its
// existing position. Ids the store does not hold are not added.
func (ts *TodoStore) UpdateTodo(ctx context.Context, id domain.ID, upd request.TodoUpdate) response.Result[domain.Todo] {
	ctx, span := ts.telemetry.StartStoreSpan(ctx, todoStoreName, "update", map[string]interface{}{
		"todo.id": id.String(),
	})
	defer span.End()

	startTime := time.Now()

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		upd.Title = &title
	}
	if upd.Description != nil {
		upd.SetDescription(*upd.Description)
	}

	if upd.IsEmpty() {
		err := domain.NewValidationError("todos.update", "Nothing to update")
		ts.telemetry.RecordStoreOperation(ctx, todoStoreName, "update", time.Since(startTime), err)
		return response.Fail[domain.Todo](err, "Failed to update todo")
	}

	if err := ts.validate("todos.update", upd); err != nil {
		ts.telemetry.RecordStoreOperation(ctx, todoStoreName, "update", time.Since(startTime), err)
		return response.Fail[domain.Todo](err, "Failed to update todo")
	}

	todo, err := ts.api.Update(ctx, id, upd)
	if err != nil {
		span.RecordError(err)
		ts.telemetry.RecordStoreOperation(ctx, todoStoreName, "update", time.Since(startTime), err)
		return response.Fail[domain.Todo](err, "Failed to update todo")
	}

	ts.mu.Lock()
	if _, ok := ts.byID[id]; ok {
		ts.byID[id] = todo
	}
	ts.mu.Unlock()

	ts.telemetry.RecordStoreOperation(ctx, todoStoreName, "update", time.Since(startTime), nil)

	return response.Ok(todo)
}

func (ts *TodoStore) ToggleTodo(ctx context.Context, id domain.ID, completed bool) response.Result[domain.Todo] {
	return ts.UpdateTodo(ctx, id, request.CompletedUpdate(completed))
}

// DeleteTodo removes the todo once the server confirms.
func (ts *TodoStore) DeleteTodo(ctx context.Context, id domain.ID) response.Result[domain.ID] {
	ctx, span := ts.telemetry.StartStoreSpan(ctx, todoStoreName, "delete", map[string]interface{}{
		"todo.id": id.String(),
	})
	defer span.End()

	startTime := time.Now()

	if err := ts.api.Delete(ctx, id); err != nil {
		span.RecordError(err)
		ts.telemetry.RecordStoreOperation(ctx, todoStoreName, "delete", time.Since(startTime), err)
		return response.Fail[domain.ID](err, "Failed to delete todo")
	}

	ts.mu.Lock()
	ts.removeLocked(id)
	size := len(ts.order)
	ts.mu.Unlock()

	ts.telemetry.RecordCollectionSize(ctx, size)
	ts.telemetry.RecordStoreOperation(ctx, todoStoreName, "delete", time.Since(startTime), nil)

	return response.Ok(id)
}

// GetTodo returns the cached record, falling back to the server when the
// store does not hold it. The collection is not changed.
func (ts *TodoStore) GetTodo(ctx context.Context, id domain.ID) response.Result[domain.Todo] {
	ts.mu.RLock()
	todo, ok := ts.byID[id]
	ts.mu.RUnlock()

	if ok {
		return response.Ok(todo)
	}

	todo, err := ts.api.Get(ctx, id)
	if err != nil {
		return response.Fail[domain.Todo](err, "Failed to load todo")
	}

	return response.Ok(todo)
}

// Todos returns a copy of the collection in display order.
func (ts *TodoStore) Todos() []domain.Todo {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return ts.snapshotLocked()
}

func (ts *TodoStore) Active() []domain.Todo {
	active, _ := domain.Partition(ts.Todos())
	return active
}

func (ts *TodoStore) Completed() []domain.Todo {
	_, completed := domain.Partition(ts.Todos())
	return completed
}

func (ts *TodoStore) Len() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return len(ts.order)
}

func (ts *TodoStore) Loading() bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return ts.loading
}

func (ts *TodoStore) Error() error {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return ts.err
}

// Reset drops everything, used after logout.
func (ts *TodoStore) Reset() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.byID = make(map[domain.ID]domain.Todo)
	ts.order = make([]domain.ID, 0)
	ts.loading = false
	ts.err = nil
}

func (ts *TodoStore) validate(op string, v interface{}) error {
	if ts.validator == nil {
		return nil
	}

	return ts.validator.Validate(op, v)
}

func (ts *TodoStore) replaceLocked(todos []domain.Todo) {
	ts.byID = make(map[domain.ID]domain.Todo, len(todos))
	ts.order = make([]domain.ID, 0, len(todos))

	for _, todo := range todos {
		if _, dup := ts.byID[todo.ID]; dup {
			ts.logger.Warn("Duplicate todo id in list response", zap.String("id", todo.ID.String()))
			ts.byID[todo.ID] = todo
			continue
		}

		ts.byID[todo.ID] = todo
		ts.order = append(ts.order, todo.ID)
	}
}

func (ts *TodoStore) prependLocked(todo domain.Todo) {
	if _, exists := ts.byID[todo.ID]; exists {
		ts.removeLocked(todo.ID)
	}

	ts.byID[todo.ID] = todo
	ts.order = append([]domain.ID{todo.ID}, ts.order...)
}

func (ts *TodoStore) removeLocked(id domain.ID) {
	if _, ok := ts.byID[id]; !ok {
		return
	}

	delete(ts.byID, id)

	for i, current := range ts.order {
		if current == id {
			ts.order = append(ts.order[:i], ts.order[i+1:]...)
			break
		}
	}
}

func (ts *TodoStore) snapshotLocked() []domain.Todo {
	out := make([]domain.Todo, 0, len(ts.order))
	for _, id := range ts.order {
		out = append(out, ts.byID[id])
	}

	return out
}

