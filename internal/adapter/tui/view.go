package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todoclient/internal/core/domain"
)

func (m Model) View() string {
	switch m.screen {
	case screenLoading:
		return fmt.Sprintf("\n  %s Checking session...\n", m.spinner.View())
	case screenLogin:
		return m.viewLogin()
	}

	switch m.modal {
	case modalForm:
		return m.place(m.viewForm())
	case modalConfirmDelete:
		return m.place(m.viewConfirmDelete())
	case modalSuggestions:
		return m.place(m.viewSuggestions())
	}

	return m.viewDashboard()
}

func (m Model) place(box string) string {
	if m.width == 0 || m.height == 0 {
		return box
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return errorStyle.Render("✖ " + m.status)
	}
	return successStyle.Render("✔ " + m.status)
}

func (m Model) viewLogin() string {
	lines := []string{
		titleStyle.Render("Sign in"),
		"",
		m.login.username.View(),
		m.login.password.View(),
		"",
	}

	if m.login.submitting {
		lines = append(lines, m.spinner.View()+" Signing in...")
	} else if status := m.statusLine(); status != "" {
		lines = append(lines, status)
	}

	lines = append(lines, mutedStyle.Render("tab: next field   enter: submit   esc: quit"))

	return m.place(modalStyle.Render(strings.Join(lines, "\n")))
}

func (m Model) viewDashboard() string {
	var b strings.Builder

	active, completed := domain.Partition(m.stores.Todos.Todos())

	header := titleStyle.Render("Todos")
	if user := m.stores.Auth.User(); user != nil {
		header += "  " + mutedStyle.Render(user.Username)
	}
	if m.busy {
		header += "  " + m.spinner.View()
	}
	b.WriteString(header + "\n\n")

	b.WriteString(titleStyle.Render("Active") + " " + pendingStyle.Render(fmt.Sprintf("(%d)", len(active))) + "\n")
	if len(active) == 0 {
		b.WriteString(mutedStyle.Render("  Nothing to do. Press a to add a todo or s for ideas.") + "\n")
	}
	for i, todo := range active {
		b.WriteString(m.viewRow(todo, i == m.cursor) + "\n")
	}

	b.WriteString("\n" + titleStyle.Render("Completed") + " " + successStyle.Render(fmt.Sprintf("(%d)", len(completed))) + "\n")
	if len(completed) == 0 {
		b.WriteString(mutedStyle.Render("  None yet") + "\n")
	}
	for i, todo := range completed {
		b.WriteString(m.viewRow(todo, len(active)+i == m.cursor) + "\n")
	}

	b.WriteString("\n")
	if status := m.statusLine(); status != "" {
		b.WriteString(status + "\n")
	}
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) viewRow(todo domain.Todo, current bool) string {
	box := mutedStyle.Render(boxUnchecked)
	title := todo.Title
	if todo.Completed {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}

	prefix := "  "
	if current {
		prefix = selectedStyle.Render(">") + " "
	}

	line := prefix + box + " " + title
	if todo.HasDescription() {
		line += "  " + mutedStyle.Render(todo.DescriptionOrEmpty())
	}

	return line
}

func (m Model) viewForm() string {
	heading := "New todo"
	if m.form.editing != "" {
		heading = "Edit todo"
	}

	lines := []string{
		titleStyle.Render(heading),
		"",
		m.form.title.View(),
		m.form.description.View(),
		"",
	}

	switch {
	case m.form.submitting:
		lines = append(lines, m.spinner.View()+" Saving...")
	case m.form.err != "":
		lines = append(lines, errorStyle.Render(m.form.err))
	}

	lines = append(lines, mutedStyle.Render("tab: next field   enter: save   esc: cancel"))

	return modalStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewConfirmDelete() string {
	title := ""
	if m.pendingDelete != nil {
		title = m.pendingDelete.Title
	}

	lines := []string{
		titleStyle.Render("Delete todo"),
		"",
		fmt.Sprintf("Delete %q? This cannot be undone.", title),
		"",
	}

	if m.busy {
		lines = append(lines, m.spinner.View()+" Deleting...")
	} else {
		lines = append(lines, mutedStyle.Render("y/enter: delete   n/esc: cancel"))
	}

	return modalStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewSuggestions() string {
	flow := m.stores.Suggestions
	lines := []string{titleStyle.Render("Suggestions"), ""}

	if m.suggestLoading || flow.Loading() {
		lines = append(lines, m.spinner.View()+" Loading suggestions...")
		return modalStyle.Render(strings.Join(lines, "\n"))
	}

	candidates := flow.Candidates()

	if message := flow.Message(); message != "" {
		lines = append(lines, mutedStyle.Render(message), "")
	}

	if len(candidates) == 0 && flow.Error() == nil && flow.Message() == "" {
		lines = append(lines, mutedStyle.Render(noSuggestionsText), "")
	}

	for i, suggestion := range candidates {
		box := boxUnchecked
		if flow.IsSelected(i) {
			box = successStyle.Render(boxChecked)
		}

		prefix := "  "
		if i == m.suggestCursor {
			prefix = selectedStyle.Render(">") + " "
		}

		line := prefix + box + " " + suggestion.Title
		if suggestion.Description != "" {
			line += "\n      " + mutedStyle.Render(suggestion.Description)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")

	adding := m.suggestAdding || flow.Adding()
	if adding {
		lines = append(lines, m.spinner.View()+" Adding selected todos...")
	}

	if m.suggestNote != "" {
		lines = append(lines, errorStyle.Render(m.suggestNote))
	}

	if adding {
		lines = append(lines, mutedStyle.Render("closing is disabled while adding"))
	} else if len(candidates) > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("space: select   enter: add %d selected   esc: close", len(flow.Selected()))))
	} else {
		lines = append(lines, mutedStyle.Render("esc: close"))
	}

	return modalStyle.Render(strings.Join(lines, "\n"))
}
