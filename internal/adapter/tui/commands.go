package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
)

func (m Model) checkStatus() tea.Cmd {
	ctx, auth := m.ctx, m.stores.Auth

	return func() tea.Msg {
		auth.CheckStatus(ctx)
		return statusCheckedMsg{}
	}
}

func (m Model) submitLogin(username string, password string) tea.Cmd {
	ctx, auth := m.ctx, m.stores.Auth

	return func() tea.Msg {
		return loginDoneMsg{result: auth.Login(ctx, username, password)}
	}
}

func (m Model) logout() tea.Cmd {
	ctx, auth, todos := m.ctx, m.stores.Auth, m.stores.Todos

	return func() tea.Msg {
		auth.Logout(ctx)
		todos.Reset()
		return loggedOutMsg{}
	}
}

func (m Model) fetchTodos() tea.Cmd {
	ctx, todos := m.ctx, m.stores.Todos

	return func() tea.Msg {
		return todosLoadedMsg{result: todos.FetchTodos(ctx)}
	}
}

func (m Model) createTodo(req request.TodoRequest) tea.Cmd {
	ctx, todos := m.ctx, m.stores.Todos

	return func() tea.Msg {
		return todoSavedMsg{result: todos.CreateTodo(ctx, req), created: true}
	}
}

func (m Model) updateTodo(id domain.ID, upd request.TodoUpdate) tea.Cmd {
	ctx, todos := m.ctx, m.stores.Todos

	return func() tea.Msg {
		return todoSavedMsg{result: todos.UpdateTodo(ctx, id, upd)}
	}
}

func (m Model) toggleTodo(todo domain.Todo) tea.Cmd {
	ctx, todos := m.ctx, m.stores.Todos

	return func() tea.Msg {
		return todoToggledMsg{result: todos.ToggleTodo(ctx, todo.ID, !todo.Completed)}
	}
}

func (m Model) deleteTodo(id domain.ID) tea.Cmd {
	ctx, todos := m.ctx, m.stores.Todos

	return func() tea.Msg {
		return todoDeletedMsg{result: todos.DeleteTodo(ctx, id)}
	}
}

func (m Model) requestSuggestions() tea.Cmd {
	ctx, flow := m.ctx, m.stores.Suggestions

	return func() tea.Msg {
		return suggestionsLoadedMsg{result: flow.Request(ctx)}
	}
}

func (m Model) addSuggestions() tea.Cmd {
	ctx, flow := m.ctx, m.stores.Suggestions

	return func() tea.Msg {
		return suggestionsAddedMsg{result: flow.AddSelected(ctx)}
	}
}
