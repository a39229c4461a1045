package factory

import (
	"strconv"
	"sync/atomic"
	"time"

	fab "github.com/Goldziher/fabricator"

	"todoclient/internal/core/domain"
)

var sequence atomic.Int64

func NewTodo[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	return instance.Build(customData...)
}

// Todo builds a todo with a unique id and sane timestamps. Fields in
// customData override the defaults.
func Todo(customData ...map[string]any) domain.Todo {
	id := sequence.Add(1)
	now := time.Now().UTC().Truncate(time.Second)

	defaults := map[string]any{
		"ID":          domain.ID(strconv.FormatInt(id, 10)),
		"Title":       "Todo " + strconv.FormatInt(id, 10),
		"Description": (*string)(nil),
		"Completed":   false,
		"CreatedAt":   now,
		"UpdatedAt":   now,
	}

	for _, data := range customData {
		for key, value := range data {
			defaults[key] = value
		}
	}

	return NewTodo[domain.Todo](defaults)
}

func Todos(titles ...string) []domain.Todo {
	out := make([]domain.Todo, 0, len(titles))
	for _, title := range titles {
		out = append(out, Todo(map[string]any{"Title": title}))
	}

	return out
}
