package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"todoclient/internal/infrastructure"
)

func newLoginCmd(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session with the auth service",
		Args:  exactArgs(0, "todo login [-u username] [-p password]"),
		RunE: app.run("login", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			reader := bufio.NewReader(app.In)

			if username == "" {
				value, err := prompt(app, reader, "Username: ")
				if err != nil {
					return err
				}
				username = value
			}

			if password == "" {
				value, err := promptSecret(app, reader, "Password: ")
				if err != nil {
					return err
				}
				password = value
			}

			result := c.Auth.Login(ctx, username, password)
			if !result.Success {
				return failure(result.Message, result.Err)
			}

			ok(app.Out, fmt.Sprintf("Logged in as %s", result.Data.Username))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the saved cookies",
		Args:  exactArgs(0, "todo logout"),
		RunE: app.run("logout", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			c.Auth.Logout(ctx)
			c.Todos.Reset()

			ok(app.Out, "Logged out")
			return nil
		}),
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and the health of both services",
		Args:  exactArgs(0, "todo status"),
		RunE: app.run("status", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			var lines []string
			healthy := true

			for _, svc := range []struct {
				name   string
				url    string
				health func(context.Context) error
			}{
				{"auth", c.Config.AuthURL, c.AuthAPI.Health},
				{"api", c.Config.APIURL, c.TodoAPI.Health},
			} {
				if err := svc.health(ctx); err != nil {
					healthy = false
					lines = append(lines, fmt.Sprintf("%s %s  %s", errorStyle.Render("✖"), svc.name, mutedStyle.Render(svc.url+"  "+err.Error())))
					continue
				}
				lines = append(lines, fmt.Sprintf("%s %s  %s", successStyle.Render("✔"), svc.name, mutedStyle.Render(svc.url)))
			}

			c.Auth.CheckStatus(ctx)

			switch user := c.Auth.User(); {
			case user != nil:
				lines = append(lines, fmt.Sprintf("Logged in as %s", titleStyle.Render(user.Username)))

				if current, err := c.TodoAPI.CurrentUser(ctx); err == nil && current != nil {
					lines = append(lines, mutedStyle.Render(fmt.Sprintf("todo service sees %s (id %s)", current.Username, current.ID)))
				} else if err != nil {
					lines = append(lines, errorStyle.Render("todo service rejected the session: "+err.Error()))
				}
			case c.Auth.Error() != nil:
				lines = append(lines, errorStyle.Render("Session check failed: "+c.Auth.Error().Error()))
			default:
				lines = append(lines, pendingStyle.Render("Not logged in"))
			}

			panel(app.Out, lines)

			if !healthy {
				return failure("One or more services are unavailable", nil)
			}
			return nil
		}),
	}
}

func prompt(app *App, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(app.Out, label)

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", failure("Failed to read input", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret reads without echo when stdin is a terminal.
func promptSecret(app *App, reader *bufio.Reader, label string) (string, error) {
	file, isFile := app.In.(*os.File)
	if !isFile || !term.IsTerminal(file.Fd()) {
		return prompt(app, reader, label)
	}

	fmt.Fprint(app.Out, label)
	secret, err := term.ReadPassword(file.Fd())
	fmt.Fprintln(app.Out)
	if err != nil {
		return "", failure("Failed to read password", err)
	}

	return string(secret), nil
}
