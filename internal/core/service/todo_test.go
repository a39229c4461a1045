package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	. "todoclient/pkg/test"

	"todoclient/internal/adapter/http/validation"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/service"
	factory "todoclient/pkg/test/factory"
)

var ctx = context.Background()

type TodoStoreTestSuite struct {
	suite.Suite
	API   *FakeTodoAPI
	Store *service.TodoStore
}

func (s *TodoStoreTestSuite) SetupTest() {
	s.API = NewFakeTodoAPI(factory.Todos("first", "second", "third")...)
	s.Store = service.NewTodoStore(s.API, validation.New(), nil, nil)
}

func TestTodoStoreTestSuite(t *testing.T) {
	RegisterTestingT(t)

	suite.Run(t, new(TodoStoreTestSuite))
}

func titles(todos []domain.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, todo := range todos {
		out = append(out, todo.Title)
	}

	return out
}

func (s *TodoStoreTestSuite) TestFetchTodos_ReplacesCollection() {
	result := s.Store.FetchTodos(ctx)

	assert.True(s.T(), result.Success)
	Expect(titles(s.Store.Todos())).To(Equal([]string{"first", "second", "third"}))
	Expect(s.Store.Loading()).To(BeFalse())
	Expect(s.Store.Error()).To(BeNil())

	s.API.Todos = factory.Todos("only")
	s.Store.FetchTodos(ctx)

	Expect(titles(s.Store.Todos())).To(Equal([]string{"only"}))
}

func (s *TodoStoreTestSuite) TestFetchTodos_Idempotent() {
	s.Store.FetchTodos(ctx)
	first := s.Store.Todos()

	s.Store.FetchTodos(ctx)

	Expect(s.Store.Todos()).To(Equal(first))
}

func (s *TodoStoreTestSuite) TestFetchTodos_FailureKeepsCollection() {
	s.Store.FetchTodos(ctx)
	s.API.FailOn("List", domain.NewTransportError("todos.list", errors.New("connection refused")))

	result := s.Store.FetchTodos(ctx)

	assert.False(s.T(), result.Success)
	assert.Equal(s.T(), "connection refused", result.Message)
	Expect(s.Store.Len()).To(Equal(3))
	Expect(errors.Is(s.Store.Error(), domain.ErrTransportFailure)).To(BeTrue())

	s.Store.FetchTodos(ctx)
	Expect(s.Store.Error()).To(BeNil())
}

func (s *TodoStoreTestSuite) TestCreateTodo_Prepends() {
	s.Store.FetchTodos(ctx)

	result := s.Store.CreateTodo(ctx, request.TodoRequest{Title: "  newest  "})

	assert.True(s.T(), result.Success)
	assert.Equal(s.T(), "newest", result.Data.Title)
	Expect(s.Store.Todos()[0].ID).To(Equal(result.Data.ID))
	Expect(titles(s.Store.Todos())).To(Equal([]string{"newest", "first", "second", "third"}))
}

func (s *TodoStoreTestSuite) TestCreateTodo_BlankDescriptionSentAsNull() {
	blank := "   "

	s.Store.CreateTodo(ctx, request.TodoRequest{Title: "title", Description: &blank})

	calls := s.API.CallsTo("Create")
	Expect(calls).To(HaveLen(1))
	Expect(calls[0].Body.(request.TodoRequest).Description).To(BeNil())
}

func (s *TodoStoreTestSuite) TestCreateTodo_BlankTitleNeverDispatched() {
	s.Store.FetchTodos(ctx)

	result := s.Store.CreateTodo(ctx, request.TodoRequest{Title: "   "})

	assert.False(s.T(), result.Success)
	assert.True(s.T(), errors.Is(result.Err, domain.ErrValidationFailure))
	assert.Empty(s.T(), s.API.CallsTo("Create"))
	Expect(s.Store.Len()).To(Equal(3))
}

func (s *TodoStoreTestSuite) TestCreateTodo_FailureDoesNotSetContainerError() {
	s.Store.FetchTodos(ctx)
	s.API.FailOn("Create", domain.NewRejection("todos.create", http.StatusBadRequest, "Title is too long"))

	result := s.Store.CreateTodo(ctx, request.TodoRequest{Title: "x"})

	assert.False(s.T(), result.Success)
	assert.Equal(s.T(), "Title is too long", result.Message)
	Expect(s.Store.Error()).To(BeNil())
	Expect(s.Store.Len()).To(Equal(3))
}

func (s *TodoStoreTestSuite) TestUpdateTodo_ReplacesInPlace() {
	s.Store.FetchTodos(ctx)
	target := s.Store.Todos()[1]
	title := "renamed"

	result := s.Store.UpdateTodo(ctx, target.ID, request.TodoUpdate{Title: &title})

	assert.True(s.T(), result.Success)
	Expect(titles(s.Store.Todos())).To(Equal([]string{"first", "renamed", "third"}))
}

func (s *TodoStoreTestSuite) TestUpdateTodo_BlankDescriptionSentAsNull() {
	s.Store.FetchTodos(ctx)
	blank := "   "

	result := s.Store.UpdateTodo(ctx, s.Store.Todos()[0].ID, request.TodoUpdate{Description: &blank})

	assert.True(s.T(), result.Success)
	calls := s.API.CallsTo("Update")
	Expect(calls).To(HaveLen(1))

	body := calls[0].Body.(request.TodoUpdate)
	Expect(body.Description).To(BeNil())
	Expect(body.ClearDescription).To(BeTrue())

	encoded, err := json.Marshal(body)
	Expect(err).To(BeNil())
	Expect(string(encoded)).To(MatchJSON(`{"description":null}`))
	Expect(s.Store.Todos()[0].Description).To(BeNil())
}

func (s *TodoStoreTestSuite) TestUpdateTodo_DescriptionTrimmed() {
	s.Store.FetchTodos(ctx)
	padded := "  padded  "

	s.Store.UpdateTodo(ctx, s.Store.Todos()[0].ID, request.TodoUpdate{Description: &padded})

	body := s.API.CallsTo("Update")[0].Body.(request.TodoUpdate)
	Expect(*body.Description).To(Equal("padded"))
	Expect(body.ClearDescription).To(BeFalse())
}

func (s *TodoStoreTestSuite) TestUpdateTodo_FailureLeavesTodo() {
	s.Store.FetchTodos(ctx)
	before := s.Store.Todos()
	s.API.FailOn("Update", domain.NewTransportError("todos.update", errors.New("timeout")))

	result := s.Store.ToggleTodo(ctx, before[0].ID, true)

	assert.False(s.T(), result.Success)
	Expect(s.Store.Todos()).To(Equal(before))
	Expect(s.Store.Error()).To(BeNil())
}

func (s *TodoStoreTestSuite) TestUpdateTodo_EmptyUpdateRejected() {
	s.Store.FetchTodos(ctx)

	result := s.Store.UpdateTodo(ctx, s.Store.Todos()[0].ID, request.TodoUpdate{})

	assert.True(s.T(), errors.Is(result.Err, domain.ErrValidationFailure))
	assert.Empty(s.T(), s.API.CallsTo("Update"))
}

func (s *TodoStoreTestSuite) TestToggleTodo_TwiceRestoresStateAndPosition() {
	s.Store.FetchTodos(ctx)
	before := s.Store.Todos()
	id := before[1].ID

	s.Store.ToggleTodo(ctx, id, true)
	Expect(s.Store.Todos()[1].Completed).To(BeTrue())
	Expect(s.Store.Completed()).To(HaveLen(1))
	Expect(s.Store.Active()).To(HaveLen(2))

	s.Store.ToggleTodo(ctx, id, false)

	after := s.Store.Todos()
	Expect(titles(after)).To(Equal(titles(before)))
	Expect(after[1].ID).To(Equal(id))
	Expect(after[1].Completed).To(BeFalse())
}

func (s *TodoStoreTestSuite) TestDeleteTodo_Removes() {
	s.Store.FetchTodos(ctx)
	id := s.Store.Todos()[0].ID

	result := s.Store.DeleteTodo(ctx, id)

	assert.True(s.T(), result.Success)
	Expect(titles(s.Store.Todos())).To(Equal([]string{"second", "third"}))
}

func (s *TodoStoreTestSuite) TestDeleteTodo_UnknownIDFailsAndKeepsSize() {
	s.Store.FetchTodos(ctx)

	result := s.Store.DeleteTodo(ctx, domain.ID("missing"))

	assert.False(s.T(), result.Success)
	assert.Equal(s.T(), "Todo not found", result.Message)
	Expect(s.Store.Len()).To(Equal(3))
	Expect(s.Store.Error()).To(BeNil())
}

func (s *TodoStoreTestSuite) TestCreateThenDeleteRestoresCollection() {
	s.Store.FetchTodos(ctx)
	before := s.Store.Todos()

	created := s.Store.CreateTodo(ctx, request.TodoRequest{Title: "temp"})
	s.Store.DeleteTodo(ctx, created.Data.ID)

	Expect(s.Store.Todos()).To(Equal(before))
}

func (s *TodoStoreTestSuite) TestGetTodo() {
	s.Store.FetchTodos(ctx)
	id := s.Store.Todos()[2].ID

	result := s.Store.GetTodo(ctx, id)
	assert.True(s.T(), result.Success)
	assert.Equal(s.T(), "third", result.Data.Title)
	assert.Empty(s.T(), s.API.CallsTo("Get"))

	missing := s.Store.GetTodo(ctx, "nope")
	assert.False(s.T(), missing.Success)
}

func (s *TodoStoreTestSuite) TestReset() {
	s.Store.FetchTodos(ctx)

	s.Store.Reset()

	Expect(s.Store.Len()).To(Equal(0))
	Expect(s.Store.Todos()).To(BeEmpty())
}
