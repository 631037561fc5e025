package lifecal

import (
	"fmt"
	"time"
)

// Grid dimensions. A life is LifespanYears rows of WeeksPerYear cells.
const (
	LifespanYears = 90
	MaxYear       = LifespanYears - 1
	WeeksPerYear  = 52
	DaysPerWeek   = 7

	// lastWeekIndex is the highest 0-based week offset inside a life-year.
	// Days 364 and 365 of a life-year fold into it (elastic week 52).
	lastWeekIndex = WeeksPerYear - 1
)

// YearWeek identifies one cell of the life grid relative to a birthday.
type YearWeek struct {
	// Year is the number of anniversaries elapsed (0 = the twelve months following birth).
	Year int `json:"year"`

	// Week is 1-indexed within the life-year, in [1, 52] for cells on the grid.
	Week int `json:"week"`
}

// OnGrid reports whether the coordinate falls inside the 90x52 grid.
// Off-grid coordinates are valid values; callers decide how to present them.
func (yw YearWeek) OnGrid() bool {
	return yw.Year >= 0 && yw.Year <= MaxYear &&
		yw.Week >= 1 && yw.Week <= WeeksPerYear
}

// Before reports whether yw sorts strictly before other in (year, week) order.
func (yw YearWeek) Before(other YearWeek) bool {
	if yw.Year != other.Year {
		return yw.Year < other.Year
	}
	return yw.Week < other.Week
}

// Index returns the 0-based position of the cell in row-major grid order.
func (yw YearWeek) Index() int {
	return yw.Year*WeeksPerYear + (yw.Week - 1)
}

// String formats the coordinate for logs, e.g. "Y34W12".
func (yw YearWeek) String() string {
	return fmt.Sprintf("Y%dW%d", yw.Year, yw.Week)
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the number of calendar days covered, both ends included.
func (r DateRange) Days() int {
	return daysBetween(r.Start, r.End) + 1
}

// Contains reports whether the calendar date of t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	return daysBetween(r.Start, t) >= 0 && daysBetween(t, r.End) >= 0
}
