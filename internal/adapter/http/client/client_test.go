package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"todoclient/internal/adapter/http/validation"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/service"
)

func TestDecodeEnvelope(t *testing.T) {
	t.Run("should accept an empty 2xx body", func(t *testing.T) {
		env, err := decodeEnvelope("op", http.StatusNoContent, nil)

		assert.NoError(t, err)
		assert.True(t, env.Success)
	})

	t.Run("should reject a 2xx body that is not json", func(t *testing.T) {
		_, err := decodeEnvelope("op", http.StatusOK, []byte("<html>"))

		assert.ErrorIs(t, err, domain.ErrServiceRejection)
		assert.Equal(t, "Invalid response from service", domain.MessageOf(err, ""))
	})

	t.Run("should carry the server message on non-2xx", func(t *testing.T) {
		_, err := decodeEnvelope("op", http.StatusBadRequest, []byte(`{"success":false,"message":"Title is required"}`))

		var derr *domain.Error
		assert.True(t, errors.As(err, &derr))
		assert.Equal(t, domain.KindRejected, derr.Kind)
		assert.Equal(t, http.StatusBadRequest, derr.Status)
		assert.Equal(t, "Title is required", derr.Message)
	})

	t.Run("should fall back to the status text", func(t *testing.T) {
		_, err := decodeEnvelope("op", http.StatusBadGateway, []byte("bad gateway"))

		assert.Equal(t, "Bad Gateway", domain.MessageOf(err, ""))
	})

	t.Run("should treat success false on 200 as a rejection", func(t *testing.T) {
		_, err := decodeEnvelope("op", http.StatusOK, []byte(`{"success":false}`))

		assert.ErrorIs(t, err, domain.ErrServiceRejection)
		assert.Equal(t, "Request failed", domain.MessageOf(err, ""))
	})
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	api := NewTodoClient(url, Options{}, nil)

	_, err := api.List(context.Background())

	assert.ErrorIs(t, err, domain.ErrTransportFailure)
}

func TestClient_DecodesNumericIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":7,"title":"x","description":null,"completed":false}]}`))
	}))
	defer server.Close()

	todos, err := NewTodoClient(server.URL, Options{}, nil).List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, todos, 1)
	assert.Equal(t, domain.ID("7"), todos[0].ID)
}

func TestClient_SuggestionsAcceptsBareList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"hi","data":[{"title":"A"}]}`))
	}))
	defer server.Close()

	batch, err := NewTodoClient(server.URL, Options{}, nil).Suggestions(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []domain.Suggestion{{Title: "A"}}, batch.Suggestions)
	assert.Equal(t, "hi", batch.Message)
}

func TestClient_SuccessWithoutRecordIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	api := NewTodoClient(server.URL, Options{}, nil)

	_, err := api.Create(context.Background(), request.TodoRequest{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrServiceRejection)
	assert.Equal(t, "Invalid response from service", domain.MessageOf(err, ""))

	_, err = api.Update(context.Background(), "1", request.CompletedUpdate(true))
	assert.ErrorIs(t, err, domain.ErrServiceRejection)

	_, err = api.Get(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrServiceRejection)

	store := service.NewTodoStore(api, validation.New(), nil, nil)
	for range 2 {
		result := store.CreateTodo(context.Background(), request.TodoRequest{Title: "x"})
		assert.False(t, result.Success)
		assert.Equal(t, "Invalid response from service", result.Message)
	}
	assert.Equal(t, 0, store.Len())
}

func TestClient_TracesEachCall(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(previous)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"Todo not found"}`))
	}))
	defer server.Close()

	_, err := NewTodoClient(server.URL, Options{}, nil).Get(context.Background(), "42")
	assert.ErrorIs(t, err, domain.ErrServiceRejection)

	var found sdktrace.ReadOnlySpan
	for _, span := range recorder.Ended() {
		if span.Name() == "todo GET /to-do/:id" {
			found = span
		}
	}

	if assert.NotNil(t, found) {
		assert.Contains(t, found.Attributes(), attribute.String("http.route", "/to-do/:id"))
		assert.Contains(t, found.Attributes(), attribute.Int("http.status_code", http.StatusNotFound))
		assert.Equal(t, codes.Error, found.Status().Code)
		assert.Contains(t, found.Status().Description, "Todo not found")
	}
}
