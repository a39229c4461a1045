package client

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/port"
	. "todoclient/pkg/test"
)

type BackendSuite struct {
	suite.Suite
	backend *Backend
	jar     *SessionJar
	auth    port.AuthAPI
	todos   port.TodoAPI
}

var ctx = context.Background()

func (s *BackendSuite) SetupTest() {
	s.backend = NewBackend(s.T())

	jar, err := NewSessionJar(filepath.Join(s.T().TempDir(), "session.json"), s.backend.Auth.URL, s.backend.API.URL)
	Expect(err).To(BeNil())

	s.jar = jar
	s.auth = NewAuthClient(s.backend.Auth.URL, Options{Jar: jar}, jar)
	s.todos = NewTodoClient(s.backend.API.URL, Options{Jar: jar}, nil)
}

func TestBackendSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(BackendSuite))
}

func (s *BackendSuite) login() {
	_, err := s.auth.Login(ctx, request.LoginRequest{Username: BackendUsername, Password: BackendPassword})
	Expect(err).To(BeNil())
}

func (s *BackendSuite) TestCheckStatus_NoSession() {
	user, err := s.auth.CheckStatus(ctx)

	Expect(err).To(BeNil())
	Expect(user).To(BeNil())
}

func (s *BackendSuite) TestLogin_SharesSessionWithTodoService() {
	user, err := s.auth.Login(ctx, request.LoginRequest{Username: BackendUsername, Password: BackendPassword})

	Expect(err).To(BeNil())
	Expect(user.Username).To(Equal(BackendUsername))

	status, err := s.auth.CheckStatus(ctx)
	Expect(err).To(BeNil())
	Expect(status.ID).To(Equal(user.ID))

	me, err := s.todos.CurrentUser(ctx)
	Expect(err).To(BeNil())
	Expect(me.ID).To(Equal(user.ID))
}

func (s *BackendSuite) TestLogin_WrongPasswordIsRejection() {
	_, err := s.auth.Login(ctx, request.LoginRequest{Username: BackendUsername, Password: "nope"})

	var derr *domain.Error
	Expect(err).To(BeAssignableToTypeOf(derr))
	Expect(err).To(MatchError(domain.ErrServiceRejection))
	Expect(domain.MessageOf(err, "")).To(Equal("Invalid username or password"))
}

func (s *BackendSuite) TestTodos_WithoutSessionIsRejected() {
	_, err := s.todos.List(ctx)

	Expect(err).To(MatchError(domain.ErrServiceRejection))
	Expect(domain.MessageOf(err, "")).To(Equal("Not authenticated"))
}

func (s *BackendSuite) TestTodos_Lifecycle() {
	s.login()

	created, err := s.todos.Create(ctx, request.TodoRequest{Title: "Buy milk", Description: domain.NullableText("2 liters")})
	Expect(err).To(BeNil())
	Expect(created.DescriptionOrEmpty()).To(Equal("2 liters"))

	got, err := s.todos.Get(ctx, created.ID)
	Expect(err).To(BeNil())
	Expect(got.Title).To(Equal("Buy milk"))

	updated, err := s.todos.Update(ctx, created.ID, request.CompletedUpdate(true))
	Expect(err).To(BeNil())
	Expect(updated.Completed).To(BeTrue())

	todos, err := s.todos.List(ctx)
	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))

	Expect(s.todos.Delete(ctx, created.ID)).To(Succeed())

	err = s.todos.Delete(ctx, created.ID)
	Expect(err).To(MatchError(domain.ErrServiceRejection))
	Expect(domain.MessageOf(err, "")).To(Equal("Todo not found"))
}

func (s *BackendSuite) TestUpdate_ClearsDescriptionToNull() {
	s.login()

	created, err := s.todos.Create(ctx, request.TodoRequest{Title: "Buy milk", Description: domain.NullableText("2 liters")})
	Expect(err).To(BeNil())

	var upd request.TodoUpdate
	upd.SetDescription("   ")

	updated, err := s.todos.Update(ctx, created.ID, upd)
	Expect(err).To(BeNil())
	Expect(updated.Description).To(BeNil())

	got, err := s.todos.Get(ctx, created.ID)
	Expect(err).To(BeNil())
	Expect(got.Description).To(BeNil())
	Expect(got.Title).To(Equal("Buy milk"))
}

func (s *BackendSuite) TestCreate_ServerValidationMessageSurfaces() {
	s.login()

	_, err := s.todos.Create(ctx, request.TodoRequest{Title: "   "})

	var derr *domain.Error
	Expect(err).To(BeAssignableToTypeOf(derr))
	Expect(err.(*domain.Error).Status).To(Equal(http.StatusBadRequest))
	Expect(domain.MessageOf(err, "")).To(Equal("Title is required"))
}

func (s *BackendSuite) TestSuggestions() {
	s.login()

	batch, err := s.todos.Suggestions(ctx)

	Expect(err).To(BeNil())
	Expect(batch.Suggestions).ToNot(BeEmpty())
	Expect(batch.Message).ToNot(BeEmpty())
}

func (s *BackendSuite) TestLogout_ClearsSession() {
	s.login()

	Expect(s.auth.Logout(ctx)).To(Succeed())

	user, err := s.auth.CheckStatus(ctx)
	Expect(err).To(BeNil())
	Expect(user).To(BeNil())

	_, err = s.todos.List(ctx)
	Expect(err).To(MatchError(domain.ErrServiceRejection))
}

func (s *BackendSuite) TestSessionSurvivesNewProcess() {
	s.login()

	jar, err := NewSessionJar(s.jar.Path(), s.backend.Auth.URL, s.backend.API.URL)
	Expect(err).To(BeNil())

	auth := NewAuthClient(s.backend.Auth.URL, Options{Jar: jar}, jar)

	user, err := auth.CheckStatus(ctx)
	Expect(err).To(BeNil())
	Expect(user).ToNot(BeNil())
	Expect(user.Username).To(Equal(BackendUsername))
}

func (s *BackendSuite) TestHealth() {
	Expect(s.auth.Health(ctx)).To(Succeed())
	Expect(s.todos.Health(ctx)).To(Succeed())
}
