package response

import (
	"encoding/json"

	"todoclient/internal/core/domain"
)

// Envelope is the uniform wrapper every service response uses.
type Envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	User       *domain.User    `json:"user,omitempty"`
	IsLoggedIn *bool           `json:"isLoggedIn,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorEnvelope is a failed envelope with per-field details.
type ErrorEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type HealthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Service string `json:"service,omitempty"`
}

// Result is what state container operations hand back to the view layer.
// Err keeps the classified cause for callers that need errors.Is.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func Fail[T any](err error, fallback string) Result[T] {
	return Result[T]{
		Success: false,
		Message: domain.MessageOf(err, fallback),
		Err:     err,
	}
}
