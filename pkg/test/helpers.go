package test

import (
	"context"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"todoclient/internal/adapter/database/sqlite"
	devserver "todoclient/internal/adapter/http"
	"todoclient/internal/core/domain"
)

const (
	BackendUsername = "ana"
	BackendPassword = "s3cret"
)

// InitTestDB opens a private in-memory database with the migrations applied.
func InitTestDB() *sqlite.DB {
	db, err := sqlite.Open(":memory:", sqlite.Options{})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// Backend is a running devserver pair for client tests.
type Backend struct {
	Auth      *httptest.Server
	API       *httptest.Server
	Container *devserver.Container
	User      domain.User
}

// NewBackend starts the auth and todo services over a fresh database with
// one seeded account. Both are closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := InitTestDB()

	container := devserver.NewContainer(db, devserver.Options{
		Secret:     "test-secret",
		SessionTTL: time.Hour,
	})

	user, err := container.Seed(context.Background(), BackendUsername, BackendPassword)
	if err != nil {
		t.Fatalf("seed backend user: %v", err)
	}

	backend := &Backend{
		Auth:      httptest.NewServer(container.AuthRouter),
		API:       httptest.NewServer(container.TodoRouter),
		Container: container,
		User:      user,
	}

	t.Cleanup(func() {
		backend.Auth.Close()
		backend.API.Close()
		db.Close()
	})

	return backend
}
