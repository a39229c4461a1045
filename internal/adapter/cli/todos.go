package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/request"
	"todoclient/internal/infrastructure"
)

func newListCmd(app *App) *cobra.Command {
	var group bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos, newest first",
		Args:    exactArgs(0, "todo ls [--group]"),
		RunE: app.run("ls", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			result := c.Todos.FetchTodos(ctx)
			if !result.Success {
				return failure(result.Message, result.Err)
			}

			if len(result.Data) == 0 {
				fmt.Fprintln(app.Out, mutedStyle.Render("No todos yet. Add one with `todo add` or try `todo suggest`."))
				return nil
			}

			if group {
				printGrouped(app.Out, result.Data)
				return nil
			}

			printTodos(app.Out, result.Data)
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&group, "group", "g", false, "Group into active and completed sections")

	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one todo",
		Args:  exactArgs(1, "todo show <id>"),
		RunE: app.run("show", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			result := c.Todos.GetTodo(ctx, domain.ID(args[0]))
			if !result.Success {
				return failure(result.Message, result.Err)
			}

			todo := result.Data
			status := pendingStyle.Render("active")
			if todo.Completed {
				status = successStyle.Render("completed")
			}

			lines := []string{
				titleStyle.Render(todo.Title),
				mutedStyle.Render("id " + todo.ID.String()),
				"status  " + status,
			}
			if todo.HasDescription() {
				lines = append(lines, "", todo.DescriptionOrEmpty())
			}
			lines = append(lines, "", mutedStyle.Render("created "+todo.CreatedAt.Local().Format("2006-01-02 15:04")))

			panel(app.Out, lines)
			return nil
		}),
	}
}

func newAddCmd(app *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a todo",
		Args:  minimumArgs(1, "todo add <title...> [-d description]"),
		RunE: app.run("add", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			result := c.Todos.CreateTodo(ctx, request.TodoRequest{
				Title:       strings.TrimSpace(strings.Join(args, " ")),
				Description: domain.NullableText(description),
			})
			if !result.Success {
				return failure(result.Message, result.Err)
			}

			ok(app.Out, fmt.Sprintf("Added %q [%s]", result.Data.Title, result.Data.ID))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Optional description")

	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var (
		title, description string
		cmd                *cobra.Command
	)

	cmd = &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a todo's title or description",
		Args:  exactArgs(1, "todo edit <id> [--title title] [--description text]"),
		RunE: app.run("edit", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			var upd request.TodoUpdate

			if cmd.Flags().Changed("title") {
				trimmed := strings.TrimSpace(title)
				upd.Title = &trimmed
			}
			if cmd.Flags().Changed("description") {
				upd.SetDescription(description)
			}

			if upd.IsEmpty() {
				return usageError("usage: todo edit <id> needs --title or --description")
			}

			result := c.Todos.UpdateTodo(ctx, domain.ID(args[0]), upd)
			if !result.Success {
				return failure(result.Message, result.Err)
			}

			ok(app.Out, fmt.Sprintf("Updated %q", result.Data.Title))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description (empty clears it)")

	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a todo as completed",
		Args:  exactArgs(1, "todo done <id> [--undo]"),
		RunE: app.run("done", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			result := c.Todos.ToggleTodo(ctx, domain.ID(args[0]), !undo)
			if !result.Success {
				return failure(result.Message, result.Err)
			}

			if result.Data.Completed {
				ok(app.Out, fmt.Sprintf("Completed %q", result.Data.Title))
			} else {
				ok(app.Out, fmt.Sprintf("Reopened %q", result.Data.Title))
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Mark the todo active again")

	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    exactArgs(1, "todo rm <id> [--yes]"),
		RunE: app.run("rm", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			id := domain.ID(args[0])

			if !yes {
				found := c.Todos.GetTodo(ctx, id)
				if !found.Success {
					return failure(found.Message, found.Err)
				}

				answer, err := prompt(app, bufio.NewReader(app.In), fmt.Sprintf("Delete %q? [y/N] ", found.Data.Title))
				if err != nil {
					return err
				}

				if !confirmed(answer) {
					fmt.Fprintln(app.Out, mutedStyle.Render("Cancelled"))
					return nil
				}
			}

			result := c.Todos.DeleteTodo(ctx, id)
			if !result.Success {
				return failure(result.Message, result.Err)
			}

			ok(app.Out, "Deleted")
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
