package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"todoclient/internal/adapter/tui"
	"todoclient/internal/infrastructure"
)

const noSuggestionsText = "No suggestions right now. Check back later."

func newSuggestCmd(app *App) *cobra.Command {
	var pick string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Ask the todo service for ideas, optionally adding some",
		Args:  exactArgs(0, "todo suggest [--pick 1,3]"),
		RunE: app.run("suggest", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			picks, err := parsePicks(pick)
			if err != nil {
				return err
			}

			flow := c.Suggestions

			result := flow.Request(ctx)
			if !result.Success {
				return failure(result.Message, result.Err)
			}

			if message := flow.Message(); message != "" {
				fmt.Fprintln(app.Out, mutedStyle.Render(message))
			}

			candidates := flow.Candidates()
			if len(candidates) == 0 {
				if flow.Message() == "" {
					fmt.Fprintln(app.Out, mutedStyle.Render(noSuggestionsText))
				}
				if len(picks) > 0 {
					return failure("Nothing to pick from", nil)
				}
				return nil
			}

			for i, suggestion := range candidates {
				line := fmt.Sprintf("%s %s", pendingStyle.Render(fmt.Sprintf("%d.", i+1)), suggestion.Title)
				if suggestion.Description != "" {
					line += "\n   " + mutedStyle.Render(suggestion.Description)
				}
				fmt.Fprintln(app.Out, line)
			}

			if len(picks) == 0 {
				return nil
			}

			for _, n := range picks {
				if n < 1 || n > len(candidates) {
					return usageError("pick %d is out of range 1-%d", n, len(candidates))
				}
				flow.Toggle(n - 1)
			}

			added := flow.AddSelected(ctx)
			for _, todo := range added.Data {
				ok(app.Out, fmt.Sprintf("Added %q [%s]", todo.Title, todo.ID))
			}

			if !added.Success {
				return failure(added.Message, added.Err)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&pick, "pick", "", "Comma separated suggestion numbers to add, e.g. 1,3")

	return cmd
}

// parsePicks reads "1,3" into distinct numbers, keeping their order.
func parsePicks(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var picks []int

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, usageError("pick: not a number: %s", part)
		}

		if !seen[n] {
			seen[n] = true
			picks = append(picks, n)
		}
	}

	return picks, nil
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		Args:  exactArgs(0, "todo tui"),
		RunE: app.run("tui", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			return app.RunTUI(ctx, c)
		}),
	}
}

func runTUI(ctx context.Context, c *infrastructure.Container) error {
	return tui.Run(ctx, tui.Stores{
		Auth:        c.Auth,
		Todos:       c.Todos,
		Suggestions: c.Suggestions,
	})
}
