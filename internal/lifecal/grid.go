package lifecal

import "time"

// Grid is one render pass over the life grid.
// The current cell is computed once at construction so Elapsed is a pair of
// integer comparisons, cheap enough to call for all 4,680 cells.
type Grid struct {
	birthday time.Time
	current  YearWeek
}

// NewGrid snapshots the current cell for birthday at now.
func NewGrid(birthday, now time.Time) *Grid {
	return &Grid{
		birthday: NormalizeDate(birthday),
		current:  CurrentYearWeek(birthday, now),
	}
}

// Birthday returns the anchor date of the grid.
func (g *Grid) Birthday() time.Time {
	return g.birthday
}

// Current returns the cell containing "now" for this pass.
func (g *Grid) Current() YearWeek {
	return g.current
}

// Elapsed reports whether yw is strictly before the current cell.
func (g *Grid) Elapsed(yw YearWeek) bool {
	return yw.Before(g.current)
}

// ElapsedWeeks counts grid cells that have already passed.
// The count is clamped to the grid: 0 before birth, 4,680 past year 89.
func (g *Grid) ElapsedWeeks() int {
	switch {
	case g.current.Year < 0:
		return 0
	case g.current.Year > MaxYear:
		return TotalWeeks
	default:
		return g.current.Index()
	}
}

// Range returns the dates covered by yw.
func (g *Grid) Range(yw YearWeek) DateRange {
	return YearWeekToDateRange(g.birthday, yw)
}

// Each walks the grid in row-major order.
func (g *Grid) Each(fn func(yw YearWeek, elapsed bool)) {
	for year := 0; year <= MaxYear; year++ {
		for week := 1; week <= WeeksPerYear; week++ {
			yw := YearWeek{Year: year, Week: week}
			fn(yw, g.Elapsed(yw))
		}
	}
}

// TotalWeeks is the number of cells on the grid.
const TotalWeeks = LifespanYears * WeeksPerYear
