package lifecal

import "time"

const hoursPerDay = 24

// civil returns local midnight of t's calendar date in loc.
// Reading Date() in t's own location keeps the date the caller sees.
func civil(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days from a to b (negative when b is earlier).
// Both dates are projected to UTC midnight so DST shifts never change the count.
func daysBetween(a, b time.Time) int {
	ca := civil(a, time.UTC)
	cb := civil(b, time.UTC)
	return int(cb.Sub(ca).Hours() / hoursPerDay)
}

// anniversary returns the birthday's month/day in the given calendar year.
// Go's time.Date normalizes Feb 29 to March 1st in non-leap years.
func anniversary(birthday time.Time, year int) time.Time {
	return time.Date(year, birthday.Month(), birthday.Day(), 0, 0, 0, 0, birthday.Location())
}

// NormalizeDate drops the time of day, returning local midnight of t's calendar date.
func NormalizeDate(t time.Time) time.Time {
	return civil(t, t.Location())
}

// MostRecentAnniversary returns the latest occurrence of the birthday's month/day
// on or before ref. The result is midnight in the birthday's location.
func MostRecentAnniversary(birthday, ref time.Time) time.Time {
	anchor, _ := anchorOf(birthday, ref)
	return anchor
}

// anchorOf returns the most recent anniversary and the calendar year it was taken from.
func anchorOf(birthday, ref time.Time) (time.Time, int) {
	year := ref.Year()
	candidate := anniversary(birthday, year)
	if daysBetween(ref, candidate) > 0 {
		year--
		candidate = anniversary(birthday, year)
	}
	return candidate, year
}

// DateToYearWeek maps a calendar date to its cell on the life grid.
//
// The year is the number of anniversaries elapsed by date. The week counts whole
// weeks since the most recent anniversary, capped so that the one or two days past
// 52*7 land in week 52 instead of a 53rd bucket.
func DateToYearWeek(birthday, date time.Time) YearWeek {
	// 1. Anchor on the latest anniversary.
	anchor, anchorYear := anchorOf(birthday, date)

	// 2. Age bracket. The anniversary falling in date's own calendar year counts once more.
	yearsOld := date.Year() - birthday.Year()
	if date.Year() == anchorYear {
		yearsOld++
	}

	// 3. Whole weeks since the anchor.
	weeks := daysBetween(anchor, date) / DaysPerWeek
	if weeks > lastWeekIndex {
		weeks = lastWeekIndex
	}

	return YearWeek{Year: yearsOld - 1, Week: weeks + 1}
}

// YearWeekToDateRange returns the calendar dates covered by a cell.
//
// Weeks 1-51 span exactly seven days. Week 52 ends the day before the next
// anniversary and therefore spans eight or nine days.
func YearWeekToDateRange(birthday time.Time, yw YearWeek) DateRange {
	loc := birthday.Location()
	year := birthday.Year() + yw.Year

	// time.Date normalizes day overflow, which also carries a Feb 29 birthday
	// to March 1st the same way anniversary() does.
	start := time.Date(year, birthday.Month(), birthday.Day()+(yw.Week-1)*DaysPerWeek, 0, 0, 0, 0, loc)

	var end time.Time
	if yw.Week == WeeksPerYear {
		next := anniversary(birthday, year+1)
		end = time.Date(next.Year(), next.Month(), next.Day()-1, 0, 0, 0, 0, loc)
	} else {
		end = time.Date(start.Year(), start.Month(), start.Day()+DaysPerWeek-1, 0, 0, 0, 0, loc)
	}

	return DateRange{Start: start, End: end}
}

// CurrentYearWeek returns the cell containing now.
func CurrentYearWeek(birthday, now time.Time) YearWeek {
	return DateToYearWeek(birthday, now)
}

// HasYearWeekElapsed reports whether yw lies strictly before the current cell.
// Renderers walking the whole grid should use Grid, which computes "now" once.
func HasYearWeekElapsed(birthday time.Time, yw YearWeek, now time.Time) bool {
	return yw.Before(CurrentYearWeek(birthday, now))
}
