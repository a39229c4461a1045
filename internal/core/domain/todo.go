package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is an opaque server-assigned identifier. Services may send it as a JSON
// string or number; it is always kept in its textual form.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(b), err)
	}

	*id = ID(n.String())
	return nil
}

type Todo struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Todo) DescriptionOrEmpty() string {
	if t.Description == nil {
		return ""
	}

	return *t.Description
}

func (t *Todo) HasDescription() bool {
	return strings.TrimSpace(t.DescriptionOrEmpty()) != ""
}

// Partition splits todos into active and completed without reordering.
func Partition(todos []Todo) (active []Todo, completed []Todo) {
	active = make([]Todo, 0, len(todos))
	completed = make([]Todo, 0)

	for _, todo := range todos {
		if todo.Completed {
			completed = append(completed, todo)
		} else {
			active = append(active, todo)
		}
	}

	return active, completed
}

type Suggestion struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type SuggestionBatch struct {
	Suggestions []Suggestion `json:"suggestions"`
	Message     string       `json:"message,omitempty"`
}

// NullableText trims s and returns nil when nothing is left, matching how
// forms submit an empty description.
func NullableText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}
