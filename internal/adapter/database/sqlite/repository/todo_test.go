package repository_test

import (
	"context"
	"errors"
	"testing"

	. "todoclient/pkg/test"

	"todoclient/internal/adapter/database/sqlite/repository"
	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/core/port"
	"todoclient/internal/core/telemetry"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TodoRepositoryTestSuite struct {
	suite.Suite
	repo  port.TodoRepository
	users port.UserRepository
	owner domain.Account
	other domain.Account
}

var ctx = context.Background()

func (s *TodoRepositoryTestSuite) SetupTest() {
	db := InitTestDB()
	probe := telemetry.NewNoOpProbe()

	s.repo = repository.NewTodoRepository(db, probe)
	s.users = repository.NewUserRepository(db, probe)

	s.owner, _ = s.users.Create(ctx, "owner", "hash")
	s.other, _ = s.users.Create(ctx, "other", "hash")
}

func TestTodoRepositoryTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoRepositoryTestSuite))
}

func (s *TodoRepositoryTestSuite) TestCreate_AssignsIDAndTimestamps() {
	todo, err := s.repo.Create(ctx, s.owner.ID, domain.Todo{Title: "Task"})

	assert.NoError(s.T(), err)
	assert.NotEmpty(s.T(), todo.ID)
	assert.False(s.T(), todo.CreatedAt.IsZero())
	assert.True(s.T(), todo.CreatedAt.Equal(todo.UpdatedAt))
}

func (s *TodoRepositoryTestSuite) TestListByOwner_NewestFirstAndScoped() {
	s.repo.Create(ctx, s.owner.ID, domain.Todo{Title: "first"})
	s.repo.Create(ctx, s.owner.ID, domain.Todo{Title: "second"})
	s.repo.Create(ctx, s.other.ID, domain.Todo{Title: "not mine"})

	todos, err := s.repo.ListByOwner(ctx, s.owner.ID)

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(2))
	Expect(todos[0].Title).To(Equal("second"))
	Expect(todos[1].Title).To(Equal("first"))
}

func (s *TodoRepositoryTestSuite) TestListByOwner_Empty() {
	todos, err := s.repo.ListByOwner(ctx, s.owner.ID)

	Expect(err).To(BeNil())
	Expect(todos).ToNot(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *TodoRepositoryTestSuite) TestDescription_RoundTripsNull() {
	description := "details"

	withDescription, _ := s.repo.Create(ctx, s.owner.ID, domain.Todo{Title: "a", Description: &description})
	without, _ := s.repo.Create(ctx, s.owner.ID, domain.Todo{Title: "b"})

	got, err := s.repo.GetByID(ctx, s.owner.ID, withDescription.ID)
	Expect(err).To(BeNil())
	Expect(*got.Description).To(Equal("details"))

	got, err = s.repo.GetByID(ctx, s.owner.ID, without.ID)
	Expect(err).To(BeNil())
	Expect(got.Description).To(BeNil())
}

func (s *TodoRepositoryTestSuite) TestUpdate_PartialFields() {
	todo, _ := s.repo.Create(ctx, s.owner.ID, domain.Todo{Title: "Task"})
	completed := true

	updated, err := s.repo.Update(ctx, s.owner.ID, todo.ID, request.TodoUpdate{Completed: &completed})

	Expect(err).To(BeNil())
	Expect(updated.Completed).To(BeTrue())
	Expect(updated.Title).To(Equal("Task"))
	Expect(updated.CreatedAt.Equal(todo.CreatedAt)).To(BeTrue())
}

func (s *TodoRepositoryTestSuite) TestUpdate_OtherOwnerNotFound() {
	todo, _ := s.repo.Create(ctx, s.owner.ID, domain.Todo{Title: "Task"})
	title := "stolen"

	_, err := s.repo.Update(ctx, s.other.ID, todo.ID, request.TodoUpdate{Title: &title})

	Expect(errors.Is(err, domain.ErrNotFound)).To(BeTrue())
}

func (s *TodoRepositoryTestSuite) TestDelete() {
	todo, _ := s.repo.Create(ctx, s.owner.ID, domain.Todo{Title: "Task"})

	Expect(s.repo.Delete(ctx, s.owner.ID, todo.ID)).To(Succeed())

	err := s.repo.Delete(ctx, s.owner.ID, todo.ID)
	Expect(errors.Is(err, domain.ErrNotFound)).To(BeTrue())

	_, err = s.repo.GetByID(ctx, s.owner.ID, todo.ID)
	Expect(errors.Is(err, domain.ErrNotFound)).To(BeTrue())
}
