package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-lifecal/internal/config"
	"github.com/tartampluch/go-lifecal/internal/lifecal"
)

// ErrNoBirthday is returned by navigation before any birthday has been resolved.
var ErrNoBirthday = errors.New(config.ErrNoBirthday)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode        string         // config.SourceModeManual, SourceModeLocal or SourceModeWeb
	Birthday    string         // YYYY-MM-DD, used in manual mode
	LocalPath   string         // Absolute path to the .vcf file
	WebURL      string         // CardDAV or WebDAV URL
	WebUser     string         // HTTP Basic Auth Username
	WebPass     string         // HTTP Basic Auth Password
	ContactName string         // Card to pick from a multi-card source
	Location    *time.Location // Zone deciding what "today" is
}

// Result is the outcome of one synchronization.
type Result struct {
	ICS          []byte
	Person       Person
	Current      lifecal.YearWeek
	ElapsedWeeks int
	Events       int
}

// Generator resolves the birthday and renders the life-calendar feed.
type Generator struct {
	Clock   lifecal.Clock // Interface for time mocking.
	Fetcher VCardFetcher  // Interface for network abstraction.

	// FormatWeek and FormatAnniversary let callers inject localized summaries.
	FormatWeek        func(yw lifecal.YearWeek) string
	FormatAnniversary func(n int) string
	CalendarName      string
}

// RunSync executes the resolve -> map -> render pipeline.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (Result, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	// 1. Resolve the birthday.
	person, err := g.resolvePerson(ctx, cfg, loc)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// 2. Map "now" onto the grid once.
	now := g.Clock.Now().In(loc)
	grid := lifecal.NewGrid(person.Birthday, now)

	// 3. Render the feed.
	ics, events, err := g.generateCalendar(person, grid, now)
	if err != nil {
		return Result{}, err
	}

	log.Info(config.MsgGenSuccess,
		config.LogKeyName, person.Name,
		config.LogKeyCurrent, grid.Current().String(),
		config.LogKeyElapsed, grid.ElapsedWeeks(),
		config.LogKeyEvents, events,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)

	return Result{
		ICS:          ics,
		Person:       person,
		Current:      grid.Current(),
		ElapsedWeeks: grid.ElapsedWeeks(),
		Events:       events,
	}, nil
}

// resolvePerson reads the birthday from the configured source.
func (g *Generator) resolvePerson(ctx context.Context, cfg SyncConfig, loc *time.Location) (Person, error) {
	if cfg.Mode == config.SourceModeManual {
		if cfg.Birthday == "" {
			return Person{}, errors.New(config.ErrBirthdayMissing)
		}
		b, err := config.ParseBirthday(cfg.Birthday, loc)
		if err != nil {
			return Person{}, err
		}
		return Person{Name: cfg.ContactName, Birthday: b}, nil
	}

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		return Person{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	return ReadBirthday(reader, cfg.ContactName, loc)
}

// acquireStream opens the vCard source for local and web modes.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// generateCalendar renders the weeks of the current life-year and the next anniversary.
func (g *Generator) generateCalendar(person Person, grid *lifecal.Grid, now time.Time) ([]byte, int, error) {
	cal := ical.NewCalendar()

	name := g.CalendarName
	if name == "" {
		name = config.ICalCalName
	}
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, name)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Week boundaries follow the local calendar; only DTSTAMP is an absolute instant.
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	uidBase := uidFor(person)
	current := grid.Current()

	// Weeks of the current life-year. Nothing to draw while "now" is off the grid.
	if current.OnGrid() {
		for week := 1; week <= lifecal.WeeksPerYear; week++ {
			yw := lifecal.YearWeek{Year: current.Year, Week: week}
			event := allDayEvent(
				fmt.Sprintf(config.FormatUID, uidBase, fmt.Sprintf(config.FormatUIDWeek, yw.Year, yw.Week), config.ICalDomain),
				g.weekSummary(yw),
				config.CategoryWeek,
				grid.Range(yw),
			)
			event.Props.SetText(config.PropDescription, weekDescription(grid.Range(yw)))
			event.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, event.Component)
		}
	}

	// Next anniversary. Before birth the "next" one is the birth itself.
	n := current.Year + 1
	if n < 0 {
		n = 0
	}
	day := grid.Range(lifecal.YearWeek{Year: n, Week: 1}).Start
	anniv := allDayEvent(
		fmt.Sprintf(config.FormatUID, uidBase, fmt.Sprintf(config.FormatUIDAnniv, n), config.ICalDomain),
		g.anniversarySummary(n),
		config.CategoryAnniversary,
		lifecal.DateRange{Start: day, End: day},
	)
	anniv.Props.Set(dtStampProp)
	cal.Children = append(cal.Children, anniv.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), len(cal.Children), nil
}

// allDayEvent builds a transparent all-day event spanning r (DTEND is exclusive).
func allDayEvent(uid, summary, category string, r lifecal.DateRange) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, uid)
	event.Props.SetText(config.PropSummary, summary)
	event.Props.SetText(config.PropTransp, config.ICalTransp)
	event.Props.SetText(config.PropCategories, category)

	dtStart := ical.NewProp(config.PropDTStart)
	dtStart.SetDate(r.Start)
	event.Props.Set(dtStart)

	dtEnd := ical.NewProp(config.PropDTEnd)
	dtEnd.SetDate(r.End.AddDate(0, 0, 1))
	event.Props.Set(dtEnd)

	return event
}

// weekDescription shows the span of a week, e.g. "12/23 - 12/31 (9 days)".
func weekDescription(r lifecal.DateRange) string {
	return fmt.Sprintf(config.FormatWeekDesc,
		lifecal.RenderDate(r.Start, lifecal.StyleMonthDay),
		lifecal.RenderDate(r.End, lifecal.StyleMonthDay),
		r.Days())
}

func (g *Generator) weekSummary(yw lifecal.YearWeek) string {
	if g.FormatWeek != nil {
		return g.FormatWeek(yw)
	}
	return fmt.Sprintf(config.FallbackWeekSummary, yw.Week, yw.Year)
}

func (g *Generator) anniversarySummary(n int) string {
	if g.FormatAnniversary != nil {
		return g.FormatAnniversary(n)
	}
	if n == 0 {
		return config.FallbackBirth
	}
	return fmt.Sprintf(config.FallbackAnniversary, lifecal.Ordinal(n))
}

// uidFor derives a stable UID prefix so clients update events in place across refreshes.
func uidFor(p Person) string {
	input := fmt.Sprintf(config.FormatHashInput, p.Name, p.Birthday.Format(config.BirthdayLayout), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}
