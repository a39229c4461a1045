package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/model/response"
	"todoclient/internal/core/port"
)

const SuggestionsKey = "GET /suggestions"

type TodoClient struct {
	client   *Client
	throttle *Throttle
}

func NewTodoClient(baseURL string, opts Options, throttle *Throttle) port.TodoAPI {
	return &TodoClient{
		client:   New("todo", baseURL, opts),
		throttle: throttle,
	}
}

func todoPath(id domain.ID) string {
	return "/to-do/" + url.PathEscape(id.String())
}

// decodeTodo rejects a success envelope that carries no server-assigned record.
func decodeTodo(op string, env *response.Envelope) (domain.Todo, error) {
	todo, err := decodeData[domain.Todo](op, env)
	if err != nil {
		return domain.Todo{}, err
	}

	if todo.ID == "" {
		return domain.Todo{}, &domain.Error{
			Kind:    domain.KindRejected,
			Op:      op,
			Status:  http.StatusOK,
			Message: "Invalid response from service",
		}
	}

	return todo, nil
}

func (t *TodoClient) List(ctx context.Context) ([]domain.Todo, error) {
	env, err := t.client.do(ctx, call{
		op:     "todos.list",
		method: http.MethodGet,
		route:  "/to-do",
		path:   "/to-do",
	})
	if err != nil {
		return nil, err
	}

	todos, err := decodeData[[]domain.Todo]("todos.list", env)
	if err != nil {
		return nil, err
	}

	if todos == nil {
		todos = []domain.Todo{}
	}

	return todos, nil
}

func (t *TodoClient) Get(ctx context.Context, id domain.ID) (domain.Todo, error) {
	env, err := t.client.do(ctx, call{
		op:     "todos.get",
		method: http.MethodGet,
		route:  "/to-do/:id",
		path:   todoPath(id),
	})
	if err != nil {
		return domain.Todo{}, err
	}

	return decodeTodo("todos.get", env)
}

func (t *TodoClient) Create(ctx context.Context, req request.TodoRequest) (domain.Todo, error) {
	env, err := t.client.do(ctx, call{
		op:     "todos.create",
		method: http.MethodPost,
		route:  "/to-do",
		path:   "/to-do",
		body:   req,
	})
	if err != nil {
		return domain.Todo{}, err
	}

	return decodeTodo("todos.create", env)
}

func (t *TodoClient) Update(ctx context.Context, id domain.ID, upd request.TodoUpdate) (domain.Todo, error) {
	env, err := t.client.do(ctx, call{
		op:     "todos.update",
		method: http.MethodPut,
		route:  "/to-do/:id",
		path:   todoPath(id),
		body:   upd,
	})
	if err != nil {
		return domain.Todo{}, err
	}

	return decodeTodo("todos.update", env)
}

func (t *TodoClient) Delete(ctx context.Context, id domain.ID) error {
	_, err := t.client.do(ctx, call{
		op:     "todos.delete",
		method: http.MethodDelete,
		route:  "/to-do/:id",
		path:   todoPath(id),
	})

	return err
}

// Suggestions accepts data as either a bare list of candidates or an object
// with suggestions and message.
func (t *TodoClient) Suggestions(ctx context.Context) (domain.SuggestionBatch, error) {
	if t.throttle != nil {
		if err := t.throttle.Allow(ctx, SuggestionsKey); err != nil {
			return domain.SuggestionBatch{}, err
		}
	}

	env, err := t.client.do(ctx, call{
		op:     "todos.suggestions",
		method: http.MethodGet,
		route:  "/suggestions",
		path:   "/suggestions",
	})
	if err != nil {
		return domain.SuggestionBatch{}, err
	}

	var batch domain.SuggestionBatch

	data := bytes.TrimSpace(env.Data)
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &batch.Suggestions); err != nil {
			return domain.SuggestionBatch{}, &domain.Error{
				Kind:    domain.KindRejected,
				Op:      "todos.suggestions",
				Status:  http.StatusOK,
				Message: "Invalid response from service",
				Err:     err,
			}
		}
	} else {
		batch, err = decodeData[domain.SuggestionBatch]("todos.suggestions", env)
		if err != nil {
			return domain.SuggestionBatch{}, err
		}
	}

	if batch.Message == "" {
		batch.Message = env.Message
	}

	if batch.Suggestions == nil {
		batch.Suggestions = []domain.Suggestion{}
	}

	return batch, nil
}

func (t *TodoClient) CurrentUser(ctx context.Context) (*domain.User, error) {
	env, err := t.client.do(ctx, call{
		op:     "todos.user",
		method: http.MethodGet,
		route:  "/user",
		path:   "/user",
	})
	if err != nil {
		return nil, err
	}

	if env.User != nil {
		return env.User, nil
	}

	return decodeData[*domain.User]("todos.user", env)
}

func (t *TodoClient) Health(ctx context.Context) error {
	_, err := t.client.do(ctx, call{
		op:     "todos.health",
		method: http.MethodGet,
		route:  "/health",
		path:   "/health",
	})

	return err
}
