// Package cli wires the simctl command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n10s/simctl/internal/client"
	"github.com/n10s/simctl/internal/config"
	"github.com/n10s/simctl/internal/dashboard"
	"github.com/n10s/simctl/internal/logging"
	"github.com/n10s/simctl/internal/output"
	"github.com/n10s/simctl/internal/presets"
	"github.com/n10s/simctl/internal/stream"
)

// ErrUsage is the cause of every UsageError.
var ErrUsage = errors.New("usage error")

// UsageError reports bad command-line input.
type UsageError struct {
	msg string
}

func (e *UsageError) Error() string { return e.msg }

func (e *UsageError) Is(target error) bool { return target == ErrUsage }

func usageErrorf(format string, args ...interface{}) error {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

type globalFlags struct {
	configFile string
	envFile    string
	logLevel   string
	json       bool
}

// app is the state shared by all commands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	flags  globalFlags

	cfg     *config.Config
	printer *output.Printer
	presets *presets.Store

	runDashboard func(ctx context.Context, cfg stream.Config) (stream.Stats, error)
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		runDashboard: func(ctx context.Context, cfg stream.Config) (stream.Stats, error) {
			return dashboard.Run(ctx, cfg)
		},
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "simctl",
		Short:         "Exercise the simulation backend's HTTP and WebSocket API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configFile, "config", "", "YAML config file (default "+config.DefaultFile+" if present)")
	pf.StringVar(&a.flags.envFile, "env-file", "", "dotenv file (default "+config.DefaultEnvFile+" if present)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "trace|debug|info|warn|error|off")
	pf.BoolVar(&a.flags.json, "json", false, "print response bodies as JSON")

	root.AddCommand(
		a.simulationCmd(),
		a.npcCmd(),
		a.playerCmd(),
		a.eventCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(config.Options{
		ConfigFile: a.flags.configFile,
		EnvFile:    a.flags.envFile,
	})
	if err != nil {
		return err
	}
	if a.flags.logLevel != "" {
		if _, ok := logging.ParseLevel(a.flags.logLevel); !ok {
			return usageErrorf("unknown log level %q", a.flags.logLevel)
		}
		cfg.LogLevel = a.flags.logLevel
	}
	if !output.ValidStyle(cfg.RenderStyle) {
		return usageErrorf("unknown render style %q", cfg.RenderStyle)
	}
	logging.Init(a.stderr, cfg.LogLevel)

	a.cfg = cfg
	a.printer = output.New(a.stdout, a.stderr, output.Options{
		JSON:        a.flags.json,
		RenderStyle: cfg.RenderStyle,
	})
	a.presets = presets.New(cfg.DataDir)
	return nil
}

// httpClient checks the named settings and builds a client from the config.
func (a *app) httpClient(required ...string) (*client.HTTPClient, error) {
	if err := a.cfg.RequireAll(required...); err != nil {
		return nil, err
	}
	return client.NewHTTPClient(a.cfg.BaseURL,
		client.WithKeys(a.cfg.APIKey, a.cfg.DistrKey),
		client.WithProduct(a.cfg.Product),
		client.WithTimeout(a.cfg.HTTPTimeout),
	), nil
}

// fail prints the failure header for an API call and passes err on.
func (a *app) fail(resource, op string, err error) error {
	a.printer.Failure(resource, op, err)
	return err
}

// Execute runs simctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var se *client.StatusError
	if !errors.As(err, &se) {
		fmt.Fprintf(a.stderr, "Error: %s\n", err)
	}
	if errors.Is(err, ErrUsage) || isCobraUsage(err) {
		fmt.Fprintf(a.stderr, "Run '%s --help' for usage.\n", commandPath(root, args))
	}
	return 1
}

// isCobraUsage matches the flag and command errors cobra returns as plain
// strings.
func isCobraUsage(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag") ||
		strings.Contains(msg, "flag needs an argument")
}

func commandPath(root *cobra.Command, args []string) string {
	cmd, _, err := root.Find(args)
	if err != nil || cmd == nil {
		return root.Name()
	}
	return cmd.CommandPath()
}
