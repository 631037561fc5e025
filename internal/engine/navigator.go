package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/tartampluch/go-lifecal/internal/config"
	"github.com/tartampluch/go-lifecal/internal/freeform"
	"github.com/tartampluch/go-lifecal/internal/lifecal"
	"github.com/tartampluch/go-lifecal/internal/locale"
)

// ErrUnparseableDate is returned by Goto when the text does not name a date.
var ErrUnparseableDate = errors.New(config.ErrUnparseableDate)

// Jump is the result of a quick-navigation query.
type Jump struct {
	Query    string            `json:"query"`
	Date     time.Time         `json:"date"`
	YearWeek lifecal.YearWeek  `json:"year_week"`
	OnGrid   bool              `json:"on_grid"`
	Range    lifecal.DateRange `json:"range"`
	Message  string            `json:"message"`
}

// WeekInfo describes one cell for tooltips and the week view.
type WeekInfo struct {
	YearWeek   lifecal.YearWeek  `json:"year_week"`
	OnGrid     bool              `json:"on_grid"`
	Range      lifecal.DateRange `json:"range"`
	Days       int               `json:"days,omitempty"`
	Elapsed    bool              `json:"elapsed"`
	Current    bool              `json:"current"`
	Label      string            `json:"label"`
	RangeLabel string            `json:"range_label"`
	State      string            `json:"state"`
}

// GridStatus summarizes the grid at the current moment.
type GridStatus struct {
	Current lifecal.YearWeek `json:"current"`
	Elapsed int              `json:"elapsed_weeks"`
	Total   int              `json:"total_weeks"`
	Label   string           `json:"label"`
	AsOf    string           `json:"as_of"`
}

// Navigator answers navigation queries for one birthday.
// It holds no mutable state and is safe for concurrent use.
type Navigator struct {
	Birthday   time.Time
	Clock      lifecal.Clock
	Parser     freeform.Parser
	Translator *locale.Translator
	Location   *time.Location
}

// NewNavigator wires a navigator with the default free-text parser.
func NewNavigator(birthday time.Time, clock lifecal.Clock, tr *locale.Translator, loc *time.Location) *Navigator {
	if loc == nil {
		loc = birthday.Location()
	}
	return &Navigator{
		Birthday:   birthday,
		Clock:      clock,
		Parser:     freeform.NewParser(loc),
		Translator: tr,
		Location:   loc,
	}
}

func (n *Navigator) now() time.Time {
	return n.Clock.Now().In(n.Location)
}

// Goto resolves free text to a cell. Unparseable text returns ErrUnparseableDate
// and is never mapped; off-grid dates are a successful result with OnGrid false.
func (n *Navigator) Goto(text string) (Jump, error) {
	if n.Birthday.IsZero() {
		return Jump{}, ErrNoBirthday
	}

	date, ok := freeform.ParseFreeformDate(n.Parser, text, n.now())
	if !ok {
		return Jump{Query: text, Message: n.Translator.UnableToFindDate()}, ErrUnparseableDate
	}

	yw := lifecal.DateToYearWeek(n.Birthday, date)
	jump := Jump{
		Query:    text,
		Date:     date,
		YearWeek: yw,
		OnGrid:   yw.OnGrid(),
	}

	if jump.OnGrid {
		jump.Range = lifecal.YearWeekToDateRange(n.Birthday, yw)
		jump.Message = n.Translator.WeekSummary(yw)
	} else {
		jump.Message = n.Translator.NotOnCalendar(date)
	}

	slog.Debug(config.MsgJump,
		config.LogKeyComponent, config.CompNav,
		config.LogKeyValue, text,
		config.LogKeyCurrent, yw.String(),
		config.LogKeyOnGrid, jump.OnGrid,
	)
	return jump, nil
}

// Week describes the cell yw relative to today.
func (n *Navigator) Week(yw lifecal.YearWeek) (WeekInfo, error) {
	if n.Birthday.IsZero() {
		return WeekInfo{}, ErrNoBirthday
	}

	now := n.now()
	current := lifecal.CurrentYearWeek(n.Birthday, now)
	info := WeekInfo{
		YearWeek: yw,
		OnGrid:   yw.OnGrid(),
		Elapsed:  yw.Before(current),
		Current:  yw == current,
		Label:    n.Translator.WeekSummary(yw),
		State:    n.Translator.WeekState(yw, current),
	}
	if info.OnGrid {
		info.Range = lifecal.YearWeekToDateRange(n.Birthday, yw)
		info.RangeLabel = n.Translator.WeekRange(info.Range)
		info.Days = info.Range.Days()
		info.Current = info.Range.Contains(now)
	}
	return info, nil
}

// Grid snapshots the grid for one render pass.
func (n *Navigator) Grid() (*lifecal.Grid, error) {
	if n.Birthday.IsZero() {
		return nil, ErrNoBirthday
	}
	return lifecal.NewGrid(n.Birthday, n.now()), nil
}

// Status summarizes how much of the grid has elapsed.
func (n *Navigator) Status() (GridStatus, error) {
	g, err := n.Grid()
	if err != nil {
		return GridStatus{}, err
	}
	return GridStatus{
		Current: g.Current(),
		Elapsed: g.ElapsedWeeks(),
		Total:   lifecal.TotalWeeks,
		Label:   n.Translator.ElapsedStatus(g.ElapsedWeeks(), lifecal.TotalWeeks),
		AsOf:    lifecal.RenderDate(n.now(), lifecal.StyleShortTime),
	}, nil
}
