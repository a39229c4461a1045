package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
)

func TestValidate_TodoRequest(t *testing.T) {
	err := Validate("todos.create", request.TodoRequest{Title: "Buy milk"})
	assert.NoError(t, err)

	err = Validate("todos.create", request.TodoRequest{Title: "   "})
	assert.True(t, errors.Is(err, domain.ErrValidationFailure))
	assert.Equal(t, "Title is required", domain.MessageOf(err, ""))

	long := strings.Repeat("x", 256)
	err = Validate("todos.create", request.TodoRequest{Title: long})
	assert.True(t, errors.Is(err, domain.ErrValidationFailure))
	assert.Equal(t, "Title must be at most 255 characters", domain.MessageOf(err, ""))
}

func TestValidate_TodoUpdate(t *testing.T) {
	blank := " "
	title := "Renamed"

	assert.NoError(t, Validate("todos.update", request.CompletedUpdate(true)))
	assert.NoError(t, Validate("todos.update", request.TodoUpdate{Title: &title}))

	err := Validate("todos.update", request.TodoUpdate{Title: &blank})
	assert.True(t, errors.Is(err, domain.ErrValidationFailure))
}

func TestValidate_LoginRequest(t *testing.T) {
	assert.NoError(t, New().Validate("auth.login", request.LoginRequest{Username: "ana", Password: "secret"}))

	err := New().Validate("auth.login", request.LoginRequest{Username: "ana"})
	assert.True(t, errors.Is(err, domain.ErrValidationFailure))
	assert.Equal(t, "Password is required", domain.MessageOf(err, ""))
}

func TestFormatValidationErrors(t *testing.T) {
	err := Validator.Struct(request.LoginRequest{})

	fields := FormatValidationErrors(err)

	assert.Len(t, fields, 2)
	assert.Equal(t, "username", fields[0].Field)
	assert.Equal(t, "password", fields[1].Field)

	assert.Empty(t, FormatValidationErrors(errors.New("plain")))
}
