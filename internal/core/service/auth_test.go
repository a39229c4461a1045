package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	. "todoclient/pkg/test"

	"todoclient/internal/adapter/http/validation"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/service"
)

type AuthStoreTestSuite struct {
	suite.Suite
	API   *FakeAuthAPI
	Store *service.AuthStore
}

func (s *AuthStoreTestSuite) SetupTest() {
	s.API = NewFakeAuthAPI(map[string]string{"ana": "secret"})
	s.Store = service.NewAuthStore(s.API, validation.New(), nil, nil)
}

func TestAuthStoreTestSuite(t *testing.T) {
	RegisterTestingT(t)

	suite.Run(t, new(AuthStoreTestSuite))
}

func (s *AuthStoreTestSuite) TestStartsLoadingAndLoggedOut() {
	Expect(s.Store.Loading()).To(BeTrue())
	Expect(s.Store.IsAuthenticated()).To(BeFalse())
	Expect(s.Store.User()).To(BeNil())
}

func (s *AuthStoreTestSuite) TestCheckStatus_NoSession() {
	s.Store.CheckStatus(context.Background())

	Expect(s.Store.Loading()).To(BeFalse())
	Expect(s.Store.IsAuthenticated()).To(BeFalse())
	Expect(s.Store.Error()).To(BeNil())
}

func (s *AuthStoreTestSuite) TestCheckStatus_ActiveSession() {
	s.API.Session = &domain.User{ID: "7", Username: "ana"}

	s.Store.CheckStatus(context.Background())

	Expect(s.Store.IsAuthenticated()).To(BeTrue())
	Expect(s.Store.User().Username).To(Equal("ana"))
}

func (s *AuthStoreTestSuite) TestCheckStatus_FailureBeforeLoginAttemptIsQuiet() {
	s.API.FailOn("CheckStatus", domain.NewTransportError("auth.status", errors.New("connection refused")))

	s.Store.CheckStatus(context.Background())

	Expect(s.Store.Error()).To(BeNil())
	Expect(s.Store.IsAuthenticated()).To(BeFalse())
	Expect(s.Store.Loading()).To(BeFalse())
}

func (s *AuthStoreTestSuite) TestCheckStatus_FailureAfterLoginAttemptIsRecorded() {
	s.Store.Login(context.Background(), "ana", "wrong")

	s.API.FailOn("CheckStatus", domain.NewTransportError("auth.status", errors.New("connection refused")))
	s.Store.CheckStatus(context.Background())

	Expect(errors.Is(s.Store.Error(), domain.ErrTransportFailure)).To(BeTrue())
	Expect(s.Store.IsAuthenticated()).To(BeFalse())
}

func (s *AuthStoreTestSuite) TestCheckStatus_FailureClearsUser() {
	s.Store.Login(context.Background(), "ana", "secret")
	Expect(s.Store.IsAuthenticated()).To(BeTrue())

	s.API.FailOn("CheckStatus", domain.NewRejection("auth.status", http.StatusInternalServerError, "down"))
	s.Store.CheckStatus(context.Background())

	Expect(s.Store.IsAuthenticated()).To(BeFalse())
	// a successful login resets the attempt flag
	Expect(s.Store.Error()).To(BeNil())
}

func (s *AuthStoreTestSuite) TestLogin_Success() {
	result := s.Store.Login(context.Background(), "ana", "secret")

	assert.True(s.T(), result.Success)
	assert.Equal(s.T(), "ana", result.Data.Username)
	Expect(s.Store.IsAuthenticated()).To(BeTrue())
	Expect(s.Store.Error()).To(BeNil())
}

func (s *AuthStoreTestSuite) TestLogin_InvalidCredentials() {
	result := s.Store.Login(context.Background(), "ana", "wrong")

	assert.False(s.T(), result.Success)
	assert.Equal(s.T(), "Invalid credentials", result.Message)
	assert.True(s.T(), errors.Is(result.Err, domain.ErrInvalidCredentials))
	Expect(s.Store.IsAuthenticated()).To(BeFalse())
	Expect(errors.Is(s.Store.Error(), domain.ErrInvalidCredentials)).To(BeTrue())
}

func (s *AuthStoreTestSuite) TestLogin_ServiceError() {
	s.API.FailOn("Login", domain.NewTransportError("auth.login", errors.New("connection refused")))

	result := s.Store.Login(context.Background(), "ana", "secret")

	assert.False(s.T(), result.Success)
	assert.True(s.T(), errors.Is(result.Err, domain.ErrServiceError))
	assert.NotEmpty(s.T(), result.Message)
	Expect(s.Store.IsAuthenticated()).To(BeFalse())
}

func (s *AuthStoreTestSuite) TestLogin_ServerErrorIsServiceError() {
	s.API.FailOn("Login", domain.NewRejection("auth.login", http.StatusInternalServerError, ""))

	result := s.Store.Login(context.Background(), "ana", "secret")

	assert.True(s.T(), errors.Is(result.Err, domain.ErrServiceError))
	assert.Equal(s.T(), "Login failed", result.Message)
}

func (s *AuthStoreTestSuite) TestLogin_BlankUsernameNeverDispatched() {
	result := s.Store.Login(context.Background(), "  ", "secret")

	assert.False(s.T(), result.Success)
	assert.True(s.T(), errors.Is(result.Err, domain.ErrValidationFailure))
	assert.Empty(s.T(), s.API.CallsTo("Login"))
}

func (s *AuthStoreTestSuite) TestLogin_InvalidAttemptStillCountsForStatusErrors() {
	s.Store.Login(context.Background(), "  ", "secret")
	s.API.FailOn("CheckStatus", domain.NewTransportError("auth.status", errors.New("connection refused")))

	s.Store.CheckStatus(context.Background())

	Expect(s.Store.Error()).To(MatchError(domain.ErrTransportFailure))
}

func (s *AuthStoreTestSuite) TestLogin_ClearsPreviousError() {
	s.Store.Login(context.Background(), "ana", "wrong")
	Expect(s.Store.Error()).ToNot(BeNil())

	s.Store.Login(context.Background(), "ana", "secret")
	Expect(s.Store.Error()).To(BeNil())
}

func (s *AuthStoreTestSuite) TestLogout_ClearsStateEvenWhenRemoteFails() {
	s.Store.Login(context.Background(), "ana", "secret")
	s.API.FailOn("Logout", domain.NewTransportError("auth.logout", errors.New("connection reset")))

	s.Store.Logout(context.Background())

	Expect(s.Store.IsAuthenticated()).To(BeFalse())
	Expect(s.Store.User()).To(BeNil())
	Expect(s.Store.Error()).To(BeNil())
}

func (s *AuthStoreTestSuite) TestLogout_ResetsLoginAttempt() {
	s.Store.Login(context.Background(), "ana", "wrong")
	s.Store.Logout(context.Background())

	s.API.FailOn("CheckStatus", domain.NewTransportError("auth.status", errors.New("connection refused")))
	s.Store.CheckStatus(context.Background())

	Expect(s.Store.Error()).To(BeNil())
}
