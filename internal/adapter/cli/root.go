package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"todoclient/internal/infrastructure"
	"todoclient/pkg/config"
	"todoclient/pkg/tracing"
)

type App struct {
	ConfigFile  string
	AuthURL     string
	APIURL      string
	SessionFile string
	LogLevel    string
	LogFile     string
	Timeout     time.Duration

	Version string
	Paths   config.Paths

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// NewContainer builds the client dependencies from the resolved config.
	NewContainer func(ctx context.Context, cfg *config.AppConfig) (*infrastructure.Container, error)
	// RunTUI starts the interactive dashboard.
	RunTUI func(ctx context.Context, c *infrastructure.Container) error

	container *infrastructure.Container
}

func NewApp(version string) *App {
	app := &App{
		Version: version,
		Paths:   config.DefaultPaths(),
		In:      os.Stdin,
		Out:     os.Stdout,
		Err:     os.Stderr,
		RunTUI:  runTUI,
	}

	app.NewContainer = func(ctx context.Context, cfg *config.AppConfig) (*infrastructure.Container, error) {
		return infrastructure.NewContainer(ctx, cfg, app.Version, nil)
	}

	return app
}

func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Todo client for the todo auth and api services",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard
  todo

  # Scriptable commands
  todo login -u demo
  todo add "Buy milk" -d "2 litres"
  todo ls --group
  todo done <id>
  todo suggest --pick 1,3
`),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError("unknown command %q", args[0])
			}
			return nil
		},
		RunE: app.run("tui", func(ctx context.Context, c *infrastructure.Container, args []string) error {
			return app.RunTUI(ctx, c)
		}),
	}

	cmd.SetIn(app.In)
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&app.ConfigFile, "config", "", "Path to a config file (TOML)")
	flags.StringVar(&app.AuthURL, "auth-url", "", "Auth service base URL")
	flags.StringVar(&app.APIURL, "api-url", "", "Todo service base URL")
	flags.StringVar(&app.SessionFile, "session-file", "", "Where the session cookies are kept")
	flags.StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	flags.StringVar(&app.LogFile, "log-file", "", "Write logs to this file")
	flags.DurationVar(&app.Timeout, "timeout", 0, "Request timeout (0 uses the transport default)")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newSuggestCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute(ctx context.Context, version string) int {
	return NewApp(version).Execute(ctx, os.Args[1:])
}

func (app *App) Execute(ctx context.Context, args []string) int {
	defer app.Close()

	cmd := NewRootCmd(app)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fail(app.Err, err.Error())
	}

	return ExitCode(err)
}

// Close flushes telemetry and logs of the container built for this run.
func (app *App) Close() {
	if app.container == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.container.Shutdown(ctx); err != nil {
		fmt.Fprintln(app.Err, mutedStyle.Render("shutdown: "+err.Error()))
	}

	app.container = nil
}

func (app *App) loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	paths := app.Paths
	if app.ConfigFile != "" {
		paths.Explicit = app.ConfigFile
	}

	cfg, err := config.Load(paths)
	if err != nil {
		return nil, err
	}

	if app.AuthURL != "" {
		cfg.AuthURL = app.AuthURL
	}
	if app.APIURL != "" {
		cfg.APIURL = app.APIURL
	}
	if app.SessionFile != "" {
		cfg.SessionFile = app.SessionFile
	}
	if app.LogLevel != "" {
		cfg.Log.Level = app.LogLevel
	}
	if app.LogFile != "" {
		cfg.Log.File = app.LogFile
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = app.Timeout
	}

	return cfg, cfg.Validate()
}

func (app *App) containerFor(cmd *cobra.Command) (*infrastructure.Container, error) {
	if app.container != nil {
		return app.container, nil
	}

	cfg, err := app.loadConfig(cmd)
	if err != nil {
		return nil, usageError("config: %v", err)
	}

	c, err := app.NewContainer(cmd.Context(), cfg)
	if err != nil {
		return nil, failure(err.Error(), err)
	}

	app.container = c

	return c, nil
}

type commandFunc func(ctx context.Context, c *infrastructure.Container, args []string) error

// run adapts fn to cobra: it resolves the container and traces the command.
func (app *App) run(name string, fn commandFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := app.containerFor(cmd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		return tracing.CommandSpanWrapper(ctx, name, func(ctx context.Context) error {
			return fn(ctx, c, args)
		})
	}
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError("usage: %s", usage)
		}
		return nil
	}
}

func minimumArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageError("usage: %s", usage)
		}
		return nil
	}
}
