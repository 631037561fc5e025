// Package cli implements the go-lifecal command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lifecal/internal/app"
	"github.com/tartampluch/go-lifecal/internal/config"
	"github.com/tartampluch/go-lifecal/internal/engine"
	"github.com/tartampluch/go-lifecal/internal/lifecal"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{config.FormatText, config.FormatJSON}

// Env carries the process dependencies so tests can replace them.
type Env struct {
	Clock   lifecal.Clock
	Fetcher engine.VCardFetcher
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer

	// LogFile enables the on-disk log (production only).
	LogFile bool

	logCloser io.Closer
}

// DefaultEnv wires the real clock, network and standard streams.
func DefaultEnv() *Env {
	return &Env{
		Clock:   lifecal.RealClock{},
		Fetcher: engine.NewHTTPFetcher(),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		LogFile: true,
	}
}

// Close releases the log file opened by the root command.
func (e *Env) Close() error {
	if e.logCloser == nil {
		return nil
	}
	err := e.logCloser.Close()
	e.logCloser = nil
	return err
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Debug      bool
	Format     string
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// logLevel keeps one-shot commands quiet unless --debug is set.
func (o *RootOptions) logLevel(cmd *cobra.Command) slog.Level {
	switch {
	case o.Debug:
		return slog.LevelDebug
	case cmd.Name() == cmdServe:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// settingsPath resolves --config, defaulting to the per-user settings file.
func (o *RootOptions) settingsPath() (string, error) {
	if o.ConfigPath != "" {
		return o.ConfigPath, nil
	}
	return config.DefaultSettingsPath()
}

// NewRootCommand creates the go-lifecal command tree.
func NewRootCommand(env *Env) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "go-lifecal",
		Short:         "Your life in weeks",
		Long:          "Maps dates onto a 90-row by 52-column life calendar anchored on your birthday\nand serves the current life-year as an iCalendar feed.",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(config.ExitCodeUsage, ErrCodeUsage,
					fmt.Sprintf("%s %q: must be one of %v", config.ErrInvalidFormat, opts.Format, ValidFormats))
			}
			if env.logCloser == nil {
				env.logCloser = SetupLogging(opts.logLevel(cmd), env.Stderr, env.LogFile)
			}
			return nil
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf(config.MsgVersionOutput,
		config.AppName, config.Version, config.Commit, config.Date, runtime.GOOS, runtime.GOARCH))

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, config.FlagConfig, "", config.FlagDescConfig)
	cmd.PersistentFlags().BoolVar(&opts.Debug, config.FlagDebug, false, config.FlagDescDebug)
	cmd.PersistentFlags().StringVar(&opts.Format, config.FlagFormat, config.FormatText, config.FlagDescFormat)

	cmd.AddCommand(newServeCommand(opts, env))
	cmd.AddCommand(newGotoCommand(opts, env))
	cmd.AddCommand(newWeekCommand(opts, env))
	cmd.AddCommand(newGridCommand(opts, env))
	cmd.AddCommand(newPasswordCommand(opts, env))

	return cmd
}

// Execute runs the command line and returns the process exit code.
// Errors are reported once, through the formatter selected by --format.
func Execute(ctx context.Context, env *Env, args []string) int {
	cmd := NewRootCommand(env)
	cmd.SetArgs(args)
	cmd.SetIn(env.Stdin)
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return config.ExitCodeSuccess
	}

	format, _ := cmd.PersistentFlags().GetString(config.FlagFormat)
	if !slices.Contains(ValidFormats, format) {
		format = config.FormatText
	}
	f := &OutputFormatter{Format: format, Writer: env.Stderr}
	if format == config.FormatJSON {
		f.Writer = env.Stdout
	}

	code := f.Report(err)
	if code == config.ExitCodeError && !isExitError(err) {
		// cobra's own argument and flag errors.
		code = config.ExitCodeUsage
	}
	return code
}

// loadController loads settings and builds a controller for one-shot commands.
func loadController(opts *RootOptions, env *Env) (*app.Controller, error) {
	path, err := opts.settingsPath()
	if err != nil {
		return nil, WrapExitError(config.ExitCodeError, ErrCodeSettings, config.ErrSettingsRead, err)
	}
	s, err := config.LoadSettings(path)
	if err != nil {
		return nil, WrapExitError(config.ExitCodeError, ErrCodeSettings, config.ErrSettingsRead, err)
	}

	c := app.NewController(s, path, nil, env.Fetcher)
	c.Clock = env.Clock
	return c, nil
}

// syncedNavigator resolves the birthday once and returns the navigator.
func syncedNavigator(ctx context.Context, opts *RootOptions, env *Env) (*app.Controller, *engine.Navigator, error) {
	c, err := loadController(opts, env)
	if err != nil {
		return nil, nil, err
	}
	if _, err := c.Sync(ctx); err != nil {
		return nil, nil, WrapExitError(config.ExitCodeError, ErrCodeSync, config.MsgSyncFailed, err)
	}
	return c, c.Navigator(), nil
}
