package test

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
)

// Call is one recorded request against a fake API.
type Call struct {
	Method string
	ID     domain.ID
	Title  string
	Body   any
}

type scripted struct {
	mu     sync.Mutex
	queued map[string][]error
	calls  []Call
}

// FailOn queues outcomes for method. Each call pops one entry; a nil entry
// lets that call through.
func (s *scripted) FailOn(method string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queued == nil {
		s.queued = make(map[string][]error)
	}

	s.queued[method] = append(s.queued[method], errs...)
}

func (s *scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Call, len(s.calls))
	copy(out, s.calls)

	return out
}

// CallsTo filters the recorded calls by method.
func (s *scripted) CallsTo(method string) []Call {
	var out []Call
	for _, call := range s.Calls() {
		if call.Method == method {
			out = append(out, call)
		}
	}

	return out
}

// record must be called with mu held.
func (s *scripted) record(call Call) error {
	s.calls = append(s.calls, call)

	queue := s.queued[call.Method]
	if len(queue) == 0 {
		return nil
	}

	err := queue[0]
	s.queued[call.Method] = queue[1:]

	return err
}

// FakeTodoAPI is an in-memory port.TodoAPI.
type FakeTodoAPI struct {
	scripted

	Todos []domain.Todo
	Batch domain.SuggestionBatch
	User  *domain.User

	nextID int
}

func NewFakeTodoAPI(todos ...domain.Todo) *FakeTodoAPI {
	return &FakeTodoAPI{Todos: todos, nextID: 100}
}

func (f *FakeTodoAPI) List(ctx context.Context) ([]domain.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(Call{Method: "List"}); err != nil {
		return nil, err
	}

	out := make([]domain.Todo, len(f.Todos))
	copy(out, f.Todos)

	return out, nil
}

func (f *FakeTodoAPI) Get(ctx context.Context, id domain.ID) (domain.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(Call{Method: "Get", ID: id}); err != nil {
		return domain.Todo{}, err
	}

	for _, todo := range f.Todos {
		if todo.ID == id {
			return todo, nil
		}
	}

	return domain.Todo{}, domain.NewRejection("todos.get", http.StatusNotFound, "Todo not found")
}

func (f *FakeTodoAPI) Create(ctx context.Context, req request.TodoRequest) (domain.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(Call{Method: "Create", Title: req.Title, Body: req}); err != nil {
		return domain.Todo{}, err
	}

	f.nextID++
	now := time.Now().UTC()

	todo := domain.Todo{
		ID:          domain.ID(strconv.Itoa(f.nextID)),
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	f.Todos = append([]domain.Todo{todo}, f.Todos...)

	return todo, nil
}

func (f *FakeTodoAPI) Update(ctx context.Context, id domain.ID, upd request.TodoUpdate) (domain.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(Call{Method: "Update", ID: id, Body: upd}); err != nil {
		return domain.Todo{}, err
	}

	for i, todo := range f.Todos {
		if todo.ID != id {
			continue
		}

		if upd.Title != nil {
			todo.Title = *upd.Title
		}
		switch {
		case upd.ClearDescription:
			todo.Description = nil
		case upd.Description != nil:
			todo.Description = upd.Description
		}
		if upd.Completed != nil {
			todo.Completed = *upd.Completed
		}
		todo.UpdatedAt = time.Now().UTC()

		f.Todos[i] = todo
		return todo, nil
	}

	return domain.Todo{}, domain.NewRejection("todos.update", http.StatusNotFound, "Todo not found")
}

func (f *FakeTodoAPI) Delete(ctx context.Context, id domain.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(Call{Method: "Delete", ID: id}); err != nil {
		return err
	}

	for i, todo := range f.Todos {
		if todo.ID == id {
			f.Todos = append(f.Todos[:i], f.Todos[i+1:]...)
			return nil
		}
	}

	return domain.NewRejection("todos.delete", http.StatusNotFound, "Todo not found")
}

func (f *FakeTodoAPI) Suggestions(ctx context.Context) (domain.SuggestionBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(Call{Method: "Suggestions"}); err != nil {
		return domain.SuggestionBatch{}, err
	}

	return f.Batch, nil
}

func (f *FakeTodoAPI) CurrentUser(ctx context.Context) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(Call{Method: "CurrentUser"}); err != nil {
		return nil, err
	}

	if f.User == nil {
		return nil, domain.NewRejection("todos.user", http.StatusUnauthorized, "Not authenticated")
	}

	return f.User, nil
}

func (f *FakeTodoAPI) Health(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.record(Call{Method: "Health"})
}

// FakeAuthAPI is an in-memory port.AuthAPI keyed by username and password.
type FakeAuthAPI struct {
	scripted

	Accounts map[string]string
	Session  *domain.User
}

func NewFakeAuthAPI(accounts map[string]string) *FakeAuthAPI {
	if accounts == nil {
		accounts = make(map[string]string)
	}

	return &FakeAuthAPI{Accounts: accounts}
}

func (f *FakeAuthAPI) Login(ctx context.Context, req request.LoginRequest) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(Call{Method: "Login", Body: req}); err != nil {
		return nil, err
	}

	password, ok := f.Accounts[req.Username]
	if !ok || password != req.Password {
		return nil, domain.NewRejection("auth.login", http.StatusUnauthorized, "Invalid credentials")
	}

	f.Session = &domain.User{ID: domain.ID(req.Username), Username: req.Username}

	return f.Session, nil
}

func (f *FakeAuthAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(Call{Method: "Logout"}); err != nil {
		return err
	}

	f.Session = nil

	return nil
}

func (f *FakeAuthAPI) CheckStatus(ctx context.Context) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(Call{Method: "CheckStatus"}); err != nil {
		return nil, err
	}

	return f.Session, nil
}

func (f *FakeAuthAPI) Health(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.record(Call{Method: "Health"})
}
