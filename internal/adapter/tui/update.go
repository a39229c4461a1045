package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusCheckedMsg:
		if m.stores.Auth.IsAuthenticated() {
			return m.enterDashboard()
		}

		m.screen = screenLogin
		if err := m.stores.Auth.Error(); err != nil {
			m.flash(domain.MessageOf(err, "Session check failed"), true)
		}
		m.login.focus = 0
		m.login.password.Blur()
		cmd := m.login.username.Focus()
		return m, cmd

	case loginDoneMsg:
		m.login.submitting = false
		if !msg.result.Success {
			m.flash(msg.result.Message, true)
			m.login.password.SetValue("")
			return m, nil
		}

		m.login.password.SetValue("")
		m.flash(fmt.Sprintf("Welcome, %s", msg.result.Data.Username), false)
		return m.enterDashboard()

	case loggedOutMsg:
		m.screen = screenLogin
		m.modal = modalNone
		m.cursor = 0
		m.flash("Logged out", false)
		m.login.focus = 0
		cmd := m.login.username.Focus()
		return m, cmd

	case todosLoadedMsg:
		m.busy = false
		if !msg.result.Success {
			m.flash(msg.result.Message, true)
		}
		m.clampCursor()
		return m, nil

	case todoSavedMsg:
		m.form.submitting = false
		if !msg.result.Success {
			m.form.err = msg.result.Message
			return m, nil
		}

		m.modal = modalNone
		if msg.created {
			m.cursor = 0
			m.flash("Todo added", false)
		} else {
			m.flash("Todo updated", false)
		}
		m.clampCursor()
		return m, nil

	case todoToggledMsg:
		m.busy = false
		if !msg.result.Success {
			m.flash(msg.result.Message, true)
			return m, nil
		}

		if msg.result.Data.Completed {
			m.flash(fmt.Sprintf("Completed %q", msg.result.Data.Title), false)
		} else {
			m.flash(fmt.Sprintf("Reopened %q", msg.result.Data.Title), false)
		}
		m.clampCursor()
		return m, nil

	case todoDeletedMsg:
		m.busy = false
		m.modal = modalNone
		m.pendingDelete = nil
		if !msg.result.Success {
			m.flash(msg.result.Message, true)
			return m, nil
		}

		m.flash("Todo deleted", false)
		m.clampCursor()
		return m, nil

	case suggestionsLoadedMsg:
		m.suggestLoading = false
		m.suggestCursor = 0
		if !msg.result.Success {
			m.suggestNote = msg.result.Message
		}
		return m, nil

	case suggestionsAddedMsg:
		m.suggestAdding = false
		added := len(msg.result.Data)

		if !msg.result.Success {
			m.suggestNote = msg.result.Message
			if added > 0 {
				m.suggestNote = fmt.Sprintf("Added %d, then: %s", added, msg.result.Message)
			}
			return m, nil
		}

		m.stores.Suggestions.Close()
		m.modal = modalNone
		m.cursor = 0
		m.flash(fmt.Sprintf("Added %d todo%s", added, plural(added)), false)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}

		switch m.screen {
		case screenLoading:
			return m, nil
		case screenLogin:
			return m.updateLogin(msg)
		}

		switch m.modal {
		case modalForm:
			return m.updateForm(msg)
		case modalConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modalSuggestions:
			return m.updateSuggestions(msg)
		}

		return m.updateDashboard(msg)
	}

	return m.forwardToInputs(msg)
}

// forwardToInputs hands cursor blinks and other input messages to whichever
// text fields are on screen.
func (m Model) forwardToInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch {
	case m.screen == screenLogin:
		m.login.username, cmd = m.login.username.Update(msg)
		cmds = append(cmds, cmd)
		m.login.password, cmd = m.login.password.Update(msg)
		cmds = append(cmds, cmd)
	case m.modal == modalForm:
		m.form.title, cmd = m.form.title.Update(msg)
		cmds = append(cmds, cmd)
		m.form.description, cmd = m.form.description.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) enterDashboard() (tea.Model, tea.Cmd) {
	m.screen = screenDashboard
	m.modal = modalNone
	m.busy = true
	m.login.username.Blur()
	m.login.password.Blur()

	return m, m.fetchTodos()
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.submitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.PrevField):
		return m.focusLoginField(1 - m.login.focus)

	case key.Matches(msg, m.keys.Submit):
		if m.login.focus == 0 {
			return m.focusLoginField(1)
		}

		m.login.submitting = true
		m.status = ""
		return m, m.submitLogin(m.login.username.Value(), m.login.password.Value())
	}

	var cmd tea.Cmd
	if m.login.focus == 0 {
		m.login.username, cmd = m.login.username.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}

	return m, cmd
}

func (m Model) focusLoginField(field int) (tea.Model, tea.Cmd) {
	m.login.focus = field

	if field == 0 {
		m.login.password.Blur()
		cmd := m.login.username.Focus()
		return m, cmd
	}

	m.login.username.Blur()
	cmd := m.login.password.Focus()
	return m, cmd
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.busy = true
		return m, m.fetchTodos()

	case key.Matches(msg, m.keys.Logout):
		return m, m.logout()

	case key.Matches(msg, m.keys.Add):
		return m.openForm(domain.Todo{})

	case key.Matches(msg, m.keys.Suggest):
		m.modal = modalSuggestions
		m.suggestLoading = true
		m.suggestAdding = false
		m.suggestNote = ""
		m.suggestCursor = 0
		return m, tea.Batch(m.spinner.Tick, m.requestSuggestions())
	}

	todo, ok := m.selected()
	if !ok || m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.busy = true
		return m, m.toggleTodo(todo)

	case key.Matches(msg, m.keys.Edit):
		return m.openForm(todo)

	case key.Matches(msg, m.keys.Delete):
		m.modal = modalConfirmDelete
		m.pendingDelete = &todo
		return m, nil
	}

	return m, nil
}

func (m Model) openForm(todo domain.Todo) (tea.Model, tea.Cmd) {
	m.modal = modalForm
	m.form = todoForm{editing: todo.ID}
	m.form.title, m.form.description = newFormInputs(todo.Title, todo.DescriptionOrEmpty())

	cmd := m.form.title.Focus()
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.submitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.modal = modalNone
		return m, nil

	case msg.String() == "tab" || msg.String() == "shift+tab":
		m.form.focus = 1 - m.form.focus
		if m.form.focus == 0 {
			m.form.description.Blur()
			cmd := m.form.title.Focus()
			return m, cmd
		}
		m.form.title.Blur()
		cmd := m.form.description.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Submit):
		title := strings.TrimSpace(m.form.title.Value())
		description := m.form.description.Value()

		m.form.err = ""
		m.form.submitting = true

		if m.form.editing != "" {
			upd := request.TodoUpdate{Title: &title}
			upd.SetDescription(description)
			return m, m.updateTodo(m.form.editing, upd)
		}

		return m, m.createTodo(request.TodoRequest{
			Title:       title,
			Description: domain.NullableText(description),
		})
	}

	var cmd tea.Cmd
	if m.form.focus == 0 {
		m.form.title, cmd = m.form.title.Update(msg)
	} else {
		m.form.description, cmd = m.form.description.Update(msg)
	}

	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Confirm):
		if m.pendingDelete == nil {
			m.modal = modalNone
			return m, nil
		}
		m.busy = true
		return m, m.deleteTodo(m.pendingDelete.ID)

	case msg.String() == "n", key.Matches(msg, m.keys.Cancel):
		m.modal = modalNone
		m.pendingDelete = nil
	}

	return m, nil
}

func (m Model) updateSuggestions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	flow := m.stores.Suggestions
	adding := m.suggestAdding || flow.Adding()

	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		if adding || !flow.Close() {
			m.suggestNote = waitWhileAdding
			return m, nil
		}
		m.modal = modalNone
		m.suggestLoading = false
		return m, nil
	}

	if adding || m.suggestLoading {
		return m, nil
	}

	candidates := flow.Candidates()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.suggestCursor > 0 {
			m.suggestCursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.suggestCursor < len(candidates)-1 {
			m.suggestCursor++
		}

	case key.Matches(msg, m.keys.ToggleCheck):
		flow.Toggle(m.suggestCursor)

	case key.Matches(msg, m.keys.Submit):
		if len(flow.Selected()) == 0 {
			m.suggestNote = "Select at least one suggestion"
			return m, nil
		}
		m.suggestAdding = true
		m.suggestNote = ""
		return m, tea.Batch(m.spinner.Tick, m.addSuggestions())
	}

	return m, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
