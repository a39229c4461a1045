package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"todoclient/internal/core/domain"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

func ok(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✔ "+msg))
}

func fail(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("✖ "+msg))
}

func panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, panelStyle.Render(strings.Join(lines, "\n")))
}

func todoLine(todo domain.Todo) string {
	box := mutedStyle.Render(boxUnchecked)
	title := todo.Title
	if todo.Completed {
		box = successStyle.Render(boxChecked)
		title = doneStyle.Render(title)
	}

	line := fmt.Sprintf("%s %s %s", box, mutedStyle.Render("["+todo.ID.String()+"]"), title)
	if todo.HasDescription() {
		line += "\n      " + mutedStyle.Render(todo.DescriptionOrEmpty())
	}

	return line
}

func printTodos(w io.Writer, todos []domain.Todo) {
	for _, todo := range todos {
		fmt.Fprintln(w, todoLine(todo))
	}
}

func printGrouped(w io.Writer, todos []domain.Todo) {
	active, completed := domain.Partition(todos)

	fmt.Fprintln(w, titleStyle.Render("Active")+" "+pendingStyle.Render(fmt.Sprintf("(%d)", len(active))))
	if len(active) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  nothing to do"))
	}
	printTodos(w, active)

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Completed")+" "+successStyle.Render(fmt.Sprintf("(%d)", len(completed))))
	if len(completed) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  none yet"))
	}
	printTodos(w, completed)
}
