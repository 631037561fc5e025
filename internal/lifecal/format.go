package lifecal

import (
	"strconv"
	"time"
)

// DateStyle selects one of the display formats used by tooltips and navigation results.
type DateStyle string

const (
	StyleShort     DateStyle = "MM/DD/YY"
	StyleMonthDay  DateStyle = "MM/DD"
	StyleShortTime DateStyle = "MM/DD/YY HH:MM"
	StyleLong      DateStyle = "MMM DD YYYY"
)

var dateLayouts = map[DateStyle]string{
	StyleShort:     "01/02/06",
	StyleMonthDay:  "01/02",
	StyleShortTime: "01/02/06, 03:04 PM",
	StyleLong:      "Jan 2, 2006",
}

// RenderDate formats t in the given style. Unknown styles fall back to ISO dates.
func RenderDate(t time.Time, style DateStyle) string {
	layout, ok := dateLayouts[style]
	if !ok {
		layout = time.DateOnly
	}
	return t.Format(layout)
}

// Ordinal returns n with its English ordinal suffix: 1st, 2nd, 3rd, 4th, 11th, 22nd.
func Ordinal(n int) string {
	suffix := "th"
	switch rem100 := abs(n) % 100; {
	case rem100 >= 11 && rem100 <= 13:
	case rem100%10 == 1:
		suffix = "st"
	case rem100%10 == 2:
		suffix = "nd"
	case rem100%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
