package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/response"
	"todoclient/internal/core/service"
)

// Stores are the state containers the dashboard renders from.
type Stores struct {
	Auth        *service.AuthStore
	Todos       *service.TodoStore
	Suggestions *service.SuggestionFlow
}

type screen int

const (
	screenLoading screen = iota
	screenLogin
	screenDashboard
)

type modal int

const (
	modalNone modal = iota
	modalForm
	modalConfirmDelete
	modalSuggestions
)

const (
	noSuggestionsText = "No suggestions right now. Check back later."
	waitWhileAdding   = "Please wait while the suggestions are added"
)

type statusCheckedMsg struct{}

type loginDoneMsg struct {
	result response.Result[*domain.User]
}

type loggedOutMsg struct{}

type todosLoadedMsg struct {
	result response.Result[[]domain.Todo]
}

type todoSavedMsg struct {
	result  response.Result[domain.Todo]
	created bool
}

type todoToggledMsg struct {
	result response.Result[domain.Todo]
}

type todoDeletedMsg struct {
	result response.Result[domain.ID]
}

type suggestionsLoadedMsg struct {
	result response.Result[domain.SuggestionBatch]
}

type suggestionsAddedMsg struct {
	result response.Result[[]domain.Todo]
}

type loginForm struct {
	username   textinput.Model
	password   textinput.Model
	focus      int
	submitting bool
}

// todoForm adds a todo, or edits one when editing is set.
type todoForm struct {
	editing     domain.ID
	title       textinput.Model
	description textinput.Model
	focus       int
	err         string
	submitting  bool
}

type Model struct {
	ctx    context.Context
	stores Stores

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	screen screen
	modal  modal
	width  int
	height int

	login loginForm
	form  todoForm

	cursor    int
	busy      bool
	status    string
	statusErr bool

	pendingDelete *domain.Todo

	suggestCursor  int
	suggestLoading bool
	suggestAdding  bool
	suggestNote    string
}

func New(ctx context.Context, stores Stores) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	username := textinput.New()
	username.Prompt = "Username: "
	username.CharLimit = 255

	password := textinput.New()
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 255

	return Model{
		ctx:     ctx,
		stores:  stores,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: s,
		screen:  screenLoading,
		login: loginForm{
			username: username,
			password: password,
		},
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(ctx context.Context, stores Stores) error {
	p := tea.NewProgram(New(ctx, stores), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()

	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.checkStatus())
}

func newFormInputs(title string, description string) (textinput.Model, textinput.Model) {
	t := textinput.New()
	t.Prompt = "Title: "
	t.Placeholder = "What needs doing?"
	t.CharLimit = 255
	t.SetValue(title)

	d := textinput.New()
	d.Prompt = "Description: "
	d.Placeholder = "optional"
	d.CharLimit = 1000
	d.SetValue(description)

	return t, d
}

// rows is the display order: active todos, then completed ones.
func (m Model) rows() []domain.Todo {
	active, completed := domain.Partition(m.stores.Todos.Todos())

	return append(active, completed...)
}

func (m Model) selected() (domain.Todo, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return domain.Todo{}, false
	}

	return rows[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.rows())

	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) flash(message string, isErr bool) {
	m.status = message
	m.statusErr = isErr
}
