package cli

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-lifecal/internal/app"
	"github.com/tartampluch/go-lifecal/internal/config"
	"github.com/tartampluch/go-lifecal/internal/engine"
	"github.com/tartampluch/go-lifecal/internal/lifecal"
	"github.com/tartampluch/go-lifecal/internal/server"
)

const (
	cmdServe    = "serve"
	cmdGoto     = "goto"
	cmdWeek     = "week"
	cmdGrid     = "grid"
	cmdPassword = "password"
)

// -----------------------------------------------------------------------------
// serve
// -----------------------------------------------------------------------------

func newServeCommand(opts *RootOptions, env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   cmdServe,
		Short: "Serve the life-calendar feed and navigation API",
		Long: `Serve the current life-year as an iCalendar feed on localhost and answer
navigation queries on /api/goto, /api/week and /api/grid.

The feed is rebuilt on the configured refresh schedule, at midnight when
the week rolls over, and whenever the settings file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadController(opts, env)
			if err != nil {
				return err
			}
			LogStartupInfo()

			s := c.Settings()
			if err := s.Validate(env.Clock.Now()); err != nil {
				// Keep serving: the watcher picks up the fix once the file is edited.
				slog.Warn(config.MsgSettingsBad,
					config.LogKeyComponent, config.CompCLI,
					config.LogKeyFile, c.SettingsPath,
					config.LogKeyError, err)
			}

			c.Server = server.NewCalendarServer(s.Port)
			if err := c.Run(cmd.Context()); err != nil {
				return WrapExitError(config.ExitCodeError, ErrCodeGeneric, config.ErrAppFailed, err)
			}
			slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompCLI)
			return nil
		},
	}
}

// -----------------------------------------------------------------------------
// goto
// -----------------------------------------------------------------------------

// gotoOutput is the result of a quick-navigation query.
type gotoOutput struct {
	engine.Jump
	RangeLabel string `json:"range_label,omitempty"`
}

func (o gotoOutput) String() string {
	if o.OnGrid {
		return fmt.Sprintf("%s (%s)", o.Message, o.RangeLabel)
	}
	return o.Message
}

func newGotoCommand(opts *RootOptions, env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   cmdGoto + " <text...>",
		Short: "Find the week containing a date",
		Long: `Resolve free text such as "2024-01-21", "jan 21 2024" or "yesterday"
to its year and week on the life calendar.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, nav, err := syncedNavigator(cmd.Context(), opts, env)
			if err != nil {
				return err
			}

			jump, err := nav.Goto(strings.Join(args, " "))
			if errors.Is(err, engine.ErrUnparseableDate) {
				return &ExitError{
					Code:    config.ExitCodeError,
					Kind:    ErrCodeUnparseable,
					Message: jump.Message,
					Details: jump,
				}
			}
			if err != nil {
				return WrapExitError(config.ExitCodeError, ErrCodeGeneric, config.ErrAppFailed, err)
			}

			out := gotoOutput{Jump: jump}
			if jump.OnGrid {
				out.RangeLabel = c.Translator().WeekRange(jump.Range)
			}
			return opts.formatter(cmd).Success(out)
		},
	}
}

// -----------------------------------------------------------------------------
// week
// -----------------------------------------------------------------------------

type weekOutput struct {
	engine.WeekInfo
}

func (o weekOutput) String() string {
	return fmt.Sprintf("%s: %s\n%s", o.Label, o.RangeLabel, o.State)
}

func newWeekCommand(opts *RootOptions, env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   cmdWeek + " <year> <week>",
		Short: "Show the dates of one cell",
		Long:  "Show the date range of a year (0-89) and week (1-52) and whether it has passed.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			yw, err := parseYearWeek(args[0], args[1])
			if err != nil {
				return err
			}

			_, nav, err := syncedNavigator(cmd.Context(), opts, env)
			if err != nil {
				return err
			}

			info, err := nav.Week(yw)
			if err != nil {
				return WrapExitError(config.ExitCodeError, ErrCodeGeneric, config.ErrAppFailed, err)
			}
			return opts.formatter(cmd).Success(weekOutput{info})
		},
	}
}

// parseYearWeek validates command arguments before any sync happens.
func parseYearWeek(yearArg, weekArg string) (lifecal.YearWeek, error) {
	year, errY := strconv.Atoi(yearArg)
	week, errW := strconv.Atoi(weekArg)
	if errY != nil || errW != nil {
		return lifecal.YearWeek{}, NewExitError(config.ExitCodeUsage, ErrCodeUsage, config.ErrInvalidYearWeek)
	}
	yw := lifecal.YearWeek{Year: year, Week: week}
	if !yw.OnGrid() {
		return lifecal.YearWeek{}, NewExitError(config.ExitCodeUsage, ErrCodeUsage,
			fmt.Sprintf(config.ErrOffGridWeek, lifecal.MaxYear, lifecal.WeeksPerYear))
	}
	return yw, nil
}

// -----------------------------------------------------------------------------
// grid
// -----------------------------------------------------------------------------

type gridOutput struct {
	engine.GridStatus
	Rows []string `json:"rows"`
}

func (o gridOutput) String() string {
	var b strings.Builder
	for year, row := range o.Rows {
		fmt.Fprintf(&b, "%2d %s\n", year, row)
	}
	b.WriteString(o.Label)
	return b.String()
}

// renderRows draws one string per life-year: elapsed, current and remaining weeks.
func renderRows(g *lifecal.Grid) []string {
	rows := make([]string, lifecal.LifespanYears)
	var b strings.Builder
	g.Each(func(yw lifecal.YearWeek, elapsed bool) {
		switch {
		case yw == g.Current():
			b.WriteString(config.GridCellCurrent)
		case elapsed:
			b.WriteString(config.GridCellElapsed)
		default:
			b.WriteString(config.GridCellRemaining)
		}
		if yw.Week == lifecal.WeeksPerYear {
			rows[yw.Year] = b.String()
			b.Reset()
		}
	})
	return rows
}

func newGridCommand(opts *RootOptions, env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   cmdGrid,
		Short: "Draw the whole life calendar",
		Long: fmt.Sprintf("Draw the %dx%d life calendar: %q elapsed, %q current, %q remaining.",
			lifecal.LifespanYears, lifecal.WeeksPerYear,
			config.GridCellElapsed, config.GridCellCurrent, config.GridCellRemaining),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, nav, err := syncedNavigator(cmd.Context(), opts, env)
			if err != nil {
				return err
			}

			g, err := nav.Grid()
			if err != nil {
				return WrapExitError(config.ExitCodeError, ErrCodeGeneric, config.ErrAppFailed, err)
			}
			status, err := nav.Status()
			if err != nil {
				return WrapExitError(config.ExitCodeError, ErrCodeGeneric, config.ErrAppFailed, err)
			}
			return opts.formatter(cmd).Success(gridOutput{GridStatus: status, Rows: renderRows(g)})
		},
	}
}

// -----------------------------------------------------------------------------
// password
// -----------------------------------------------------------------------------

type passwordOutput struct {
	User string `json:"user"`
}

func (o passwordOutput) String() string {
	return fmt.Sprintf("%s (%s)", config.MsgPassStored, o.User)
}

func newPasswordCommand(opts *RootOptions, env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   cmdPassword + " <user>",
		Short: "Store the CardDAV password in the OS keyring",
		Long:  "Read the CardDAV password for <user> from stdin and store it in the OS keyring.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), config.MsgPasswordPrompt)

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return WrapExitError(config.ExitCodeError, ErrCodeGeneric, config.ErrPasswordRead, err)
			}
			pass := strings.TrimRight(line, "\r\n")

			if err := app.StorePassword(args[0], pass); err != nil {
				return WrapExitError(config.ExitCodeError, ErrCodeGeneric, config.ErrKeyringSet, err)
			}
			return opts.formatter(cmd).Success(passwordOutput{User: args[0]})
		},
	}
}
