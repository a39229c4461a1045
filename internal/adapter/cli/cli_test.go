package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	. "todoclient/pkg/test"

	"todoclient/internal/core/domain"
	"todoclient/internal/infrastructure"
	"todoclient/pkg/config"
)

type CLITestSuite struct {
	suite.Suite
	Backend     *Backend
	SessionFile string
	LogFile     string
	TUIRuns     int
}

func (s *CLITestSuite) SetupTest() {
	s.Backend = NewBackend(s.T())
	dir := s.T().TempDir()
	s.SessionFile = filepath.Join(dir, "session.json")
	s.LogFile = filepath.Join(dir, "todo.log")
	s.TUIRuns = 0
}

func TestCLITestSuite(t *testing.T) {
	RegisterTestingT(t)

	suite.Run(t, new(CLITestSuite))
}

func (s *CLITestSuite) run(stdin string, args ...string) (string, int) {
	var out bytes.Buffer

	app := NewApp("test")
	app.Paths = config.Paths{}
	app.In = strings.NewReader(stdin)
	app.Out = &out
	app.Err = &out
	app.RunTUI = func(ctx context.Context, c *infrastructure.Container) error {
		s.TUIRuns++
		return nil
	}

	base := []string{
		"--auth-url", s.Backend.Auth.URL,
		"--api-url", s.Backend.API.URL,
		"--session-file", s.SessionFile,
		"--log-level", "error",
		"--log-file", s.LogFile,
	}

	code := app.Execute(context.Background(), append(base, args...))

	return out.String(), code
}

func (s *CLITestSuite) login() {
	out, code := s.run("", "login", "-u", BackendUsername, "-p", BackendPassword)
	s.Require().Equal(ExitOK, code, out)
}

func (s *CLITestSuite) todos() []domain.Todo {
	todos, err := s.Backend.Container.TodoRepo.ListByOwner(context.Background(), s.Backend.User.ID)
	s.Require().NoError(err)

	return todos
}

func (s *CLITestSuite) TestStatus_NotLoggedIn() {
	out, code := s.run("", "status")

	assert.Equal(s.T(), ExitOK, code)
	assert.Contains(s.T(), out, "Not logged in")
	assert.Contains(s.T(), out, s.Backend.Auth.URL)
}

func (s *CLITestSuite) TestLogin_FlagsPersistSession() {
	out, code := s.run("", "login", "-u", BackendUsername, "-p", BackendPassword)

	Expect(code).To(Equal(ExitOK))
	Expect(out).To(ContainSubstring("Logged in as ana"))

	info, err := os.Stat(s.SessionFile)
	Expect(err).To(BeNil())
	Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))

	out, code = s.run("", "status")
	Expect(code).To(Equal(ExitOK))
	Expect(out).To(ContainSubstring("Logged in as ana"))
	Expect(out).To(ContainSubstring("todo service sees ana"))
}

func (s *CLITestSuite) TestLogin_Prompts() {
	out, code := s.run(BackendUsername+"\n"+BackendPassword+"\n", "login")

	Expect(code).To(Equal(ExitOK))
	Expect(out).To(ContainSubstring("Username: "))
	Expect(out).To(ContainSubstring("Logged in as ana"))
}

func (s *CLITestSuite) TestLogin_WrongPassword() {
	out, code := s.run("", "login", "-u", BackendUsername, "-p", "wrong")

	Expect(code).To(Equal(ExitFailure))
	Expect(out).To(ContainSubstring("Invalid username or password"))
}

func (s *CLITestSuite) TestList_RequiresSession() {
	out, code := s.run("", "ls")

	Expect(code).To(Equal(ExitFailure))
	Expect(out).To(ContainSubstring("Not authenticated"))
}

func (s *CLITestSuite) TestUsageErrors() {
	_, code := s.run("", "add")
	Expect(code).To(Equal(ExitUsage))

	_, code = s.run("", "frobnicate")
	Expect(code).To(Equal(ExitUsage))

	_, code = s.run("", "ls", "--no-such-flag")
	Expect(code).To(Equal(ExitUsage))

	_, code = s.run("", "done")
	Expect(code).To(Equal(ExitUsage))
}

func (s *CLITestSuite) TestTodoLifecycle() {
	s.login()

	out, code := s.run("", "ls")
	Expect(code).To(Equal(ExitOK))
	Expect(out).To(ContainSubstring("No todos yet"))

	out, code = s.run("", "add", "Buy", "milk", "-d", "  ")
	Expect(code).To(Equal(ExitOK), out)
	Expect(out).To(ContainSubstring(`Added "Buy milk"`))

	todos := s.todos()
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].Description).To(BeNil())
	id := todos[0].ID.String()

	out, code = s.run("", "edit", id)
	Expect(code).To(Equal(ExitUsage), out)

	out, code = s.run("", "edit", id, "--title", "Buy oat milk", "-d", "2 litres")
	Expect(code).To(Equal(ExitOK), out)
	Expect(out).To(ContainSubstring(`Updated "Buy oat milk"`))

	out, code = s.run("", "done", id)
	Expect(code).To(Equal(ExitOK), out)
	Expect(out).To(ContainSubstring(`Completed "Buy oat milk"`))

	out, code = s.run("", "ls", "--group")
	Expect(code).To(Equal(ExitOK))
	Expect(out).To(ContainSubstring("Active (0)"))
	Expect(out).To(ContainSubstring("Completed (1)"))
	Expect(out).To(ContainSubstring("2 litres"))

	out, code = s.run("", "show", id)
	Expect(code).To(Equal(ExitOK))
	Expect(out).To(ContainSubstring("completed"))

	out, code = s.run("n\n", "rm", id)
	Expect(code).To(Equal(ExitOK))
	Expect(out).To(ContainSubstring(`Delete "Buy oat milk"? [y/N]`))
	Expect(out).To(ContainSubstring("Cancelled"))
	Expect(s.todos()).To(HaveLen(1))

	out, code = s.run("", "rm", id, "--yes")
	Expect(code).To(Equal(ExitOK), out)
	Expect(s.todos()).To(BeEmpty())

	out, code = s.run("", "done", id)
	Expect(code).To(Equal(ExitFailure))
	Expect(out).To(ContainSubstring("Todo not found"))
}

func (s *CLITestSuite) TestAdd_BlankTitleFailsValidation() {
	s.login()

	out, code := s.run("", "add", "   ")

	Expect(code).To(Equal(ExitFailure))
	Expect(out).To(ContainSubstring("Title is required"))
	Expect(s.todos()).To(BeEmpty())
}

func (s *CLITestSuite) TestSuggest_ListAndPick() {
	s.login()

	out, code := s.run("", "suggest")
	Expect(code).To(Equal(ExitOK), out)
	Expect(out).To(ContainSubstring("Here are a few ideas to get you started."))
	Expect(out).To(ContainSubstring("1. "))

	out, code = s.run("", "suggest", "--pick", "1,2,1")
	Expect(code).To(Equal(ExitOK), out)
	Expect(strings.Count(out, "Added ")).To(Equal(2))
	Expect(s.todos()).To(HaveLen(2))

	_, code = s.run("", "suggest", "--pick", "99")
	Expect(code).To(Equal(ExitUsage))

	_, code = s.run("", "suggest", "--pick", "one")
	Expect(code).To(Equal(ExitUsage))
}

func (s *CLITestSuite) TestLogout() {
	s.login()

	out, code := s.run("", "logout")
	Expect(code).To(Equal(ExitOK))
	Expect(out).To(ContainSubstring("Logged out"))

	_, err := os.Stat(s.SessionFile)
	Expect(os.IsNotExist(err)).To(BeTrue())

	out, _ = s.run("", "status")
	Expect(out).To(ContainSubstring("Not logged in"))
}

func (s *CLITestSuite) TestRootStartsDashboard() {
	_, code := s.run("")
	Expect(code).To(Equal(ExitOK))

	_, code = s.run("", "tui")
	Expect(code).To(Equal(ExitOK))

	Expect(s.TUIRuns).To(Equal(2))
}

func TestParsePicks(t *testing.T) {
	picks, err := parsePicks(" 3, 1,3 ,")
	assert.NoError(t, err)
	assert.Equal(t, []int{3, 1}, picks)

	picks, err = parsePicks("")
	assert.NoError(t, err)
	assert.Nil(t, picks)

	_, err = parsePicks("2,x")
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestConfirmed(t *testing.T) {
	assert.True(t, confirmed("y\n"))
	assert.True(t, confirmed(" YES "))
	assert.False(t, confirmed(""))
	assert.False(t, confirmed("nope"))
}
