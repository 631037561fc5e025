package freeform_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifecal/internal/freeform"
)

// Reference "now": Sunday, March 10th 2024, early afternoon.
var now = time.Date(2024, time.March, 10, 13, 0, 0, 0, time.UTC)

func TestChainParser_AbsoluteDates(t *testing.T) {
	p := freeform.NewParser(time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"ISO date", "2024-01-21", time.Date(2024, time.January, 21, 0, 0, 0, 0, time.UTC)},
		{"US slashes are month-first", "01/21/2024", time.Date(2024, time.January, 21, 0, 0, 0, 0, time.UTC)},
		{"Padded input", "   1995-08-09  ", time.Date(1995, time.August, 9, 0, 0, 0, 0, time.UTC)},
		{"Timestamp keeps the calendar date", "2024-01-21T22:15:00Z", time.Date(2024, time.January, 21, 0, 0, 0, 0, time.UTC)},
		{"Month name without a year", "jan 21", time.Date(2024, time.January, 21, 0, 0, 0, 0, time.UTC)},
		{"Full month name without a year", "March 5", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"Numeric month and day", "3/5", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"Year-less date closer to last year", "dec 30", time.Date(2023, time.December, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Parse(tt.text, now)
			require.True(t, ok, "expected %q to parse", tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestChainParser_YearlessNearNewYear picks the year closest to now.
func TestChainParser_YearlessNearNewYear(t *testing.T) {
	p := freeform.NewParser(time.UTC)
	dec := time.Date(2024, time.December, 28, 9, 0, 0, 0, time.UTC)

	got, ok := p.Parse("jan 2", dec)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC), got)

	// Feb 29 lands in the only leap year around now.
	got, ok = p.Parse("feb 29", time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), got)
}

func TestChainParser_RelativePhrases(t *testing.T) {
	p := freeform.NewParser(time.UTC)

	got, ok := p.Parse("yesterday", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC), got)

	got, ok = p.Parse("today", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), got)
}

func TestChainParser_Unparseable(t *testing.T) {
	p := freeform.NewParser(time.UTC)

	for _, text := range []string{"not a date", "", "   ", "feb 30 2024", "april 31 2023", "feb 30"} {
		t.Run(text, func(t *testing.T) {
			got, ok := p.Parse(text, now)
			assert.False(t, ok)
			assert.True(t, got.IsZero())
		})
	}
}

func TestParseFreeformDate_NilParser(t *testing.T) {
	_, ok := freeform.ParseFreeformDate(nil, "2024-01-01", now)
	assert.False(t, ok)
}

// TestNewParser_DefaultLocation ensures a nil location does not panic.
func TestNewParser_DefaultLocation(t *testing.T) {
	p := freeform.NewParser(nil)
	_, ok := freeform.ParseFreeformDate(p, "2024-01-21", now)
	assert.True(t, ok)
}
