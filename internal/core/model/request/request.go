package request

import (
	"bytes"
	"encoding/json"
	"strings"
)

type LoginRequest struct {
	Username string `json:"username" validate:"notblank,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

// TodoRequest is the create payload. Description is nil when the form left it
// blank.
type TodoRequest struct {
	Title       string  `json:"title" validate:"notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Completed   bool    `json:"completed"`
}

// TodoUpdate carries only the fields being changed. ClearDescription sends
// the description as an explicit null and wins over Description.
type TodoUpdate struct {
	Title            *string `json:"title,omitempty" validate:"omitempty,notblank,max=255"`
	Description      *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	ClearDescription bool    `json:"-"`
	Completed        *bool   `json:"completed,omitempty"`
}

func (u TodoUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && !u.ClearDescription && u.Completed == nil
}

// SetDescription trims text and stores it, or marks the description for
// clearing when nothing is left.
func (u *TodoUpdate) SetDescription(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		u.Description = nil
		u.ClearDescription = true
		return
	}

	u.Description = &text
	u.ClearDescription = false
}

func (u TodoUpdate) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 3)

	if u.Title != nil {
		body["title"] = *u.Title
	}

	switch {
	case u.ClearDescription:
		body["description"] = nil
	case u.Description != nil:
		body["description"] = *u.Description
	}

	if u.Completed != nil {
		body["completed"] = *u.Completed
	}

	return json.Marshal(body)
}

func (u *TodoUpdate) UnmarshalJSON(data []byte) error {
	type fields TodoUpdate

	var decoded fields
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = TodoUpdate(decoded)

	if value, ok := raw["description"]; ok && bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		u.Description = nil
		u.ClearDescription = true
	}

	return nil
}

func CompletedUpdate(completed bool) TodoUpdate {
	return TodoUpdate{Completed: &completed}
}
