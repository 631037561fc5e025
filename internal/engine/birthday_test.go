package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lifecal/internal/config"
	"github.com/tartampluch/go-lifecal/internal/lifecal"
)

func TestParseDate(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     string
		wantDate  time.Time
		yearKnown bool
		wantErr   bool
	}{
		{"ISO dash", "1990-04-12", time.Date(1990, 4, 12, 0, 0, 0, 0, paris), true, false},
		{"ISO basic", "19900412", time.Date(1990, 4, 12, 0, 0, 0, 0, paris), true, false},
		{"RFC3339 keeps the civil date", "1990-04-12T23:30:00-05:00", time.Date(1990, 4, 12, 0, 0, 0, 0, paris), true, false},
		{"UTC timestamp", "1990-04-12T08:00:00Z", time.Date(1990, 4, 12, 0, 0, 0, 0, paris), true, false},
		{"No year dashed", "--04-12", time.Time{}, false, false},
		{"No year basic", "--0412", time.Time{}, false, false},
		{"Garbage", "sometime in spring", time.Time{}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, yearKnown, err := parseDate(tt.input, paris)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.yearKnown, yearKnown)
			assert.True(t, tt.wantDate.Equal(got), "got %v, want %v", got, tt.wantDate)
		})
	}
}

func TestReadBirthday(t *testing.T) {
	const stream = "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:No Year\r\nBDAY:--07-14\r\nEND:VCARD\r\n" +
		"BEGIN:VCARD\r\nVERSION:3.0\r\nFN:No Birthday\r\nEND:VCARD\r\n" +
		"BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Ada Lovelace\r\nBDAY:1815-12-10\r\nEND:VCARD\r\n" +
		"BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Alan Turing\r\nBDAY:1912-06-23\r\nEND:VCARD\r\n"

	t.Run("First full birthday wins", func(t *testing.T) {
		p, err := ReadBirthday(strings.NewReader(stream), "", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", p.Name)
		assert.Equal(t, time.Date(1815, 12, 10, 0, 0, 0, 0, time.UTC), p.Birthday)
	})

	t.Run("Named contact", func(t *testing.T) {
		p, err := ReadBirthday(strings.NewReader(stream), "  ALAN turing ", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, "Alan Turing", p.Name)
	})

	t.Run("Year-less birthday is rejected", func(t *testing.T) {
		_, err := ReadBirthday(strings.NewReader(stream), "No Year", time.UTC)
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrNoBirthdayCard)
		assert.Contains(t, err.Error(), "No Year")
	})

	t.Run("Empty stream", func(t *testing.T) {
		_, err := ReadBirthday(strings.NewReader(""), "", time.UTC)
		require.Error(t, err)
		assert.Equal(t, config.ErrNoBirthdayCard, err.Error())
	})

	t.Run("Structured name only", func(t *testing.T) {
		const card = "BEGIN:VCARD\r\nVERSION:3.0\r\nN:Hopper;Grace;;;\r\nBDAY:1906-12-09\r\nEND:VCARD\r\n"
		p, err := ReadBirthday(strings.NewReader(card), "", time.UTC)
		require.NoError(t, err)
		assert.Equal(t, "Hopper;Grace;;;", p.Name)
	})
}

func TestUIDFor_Deterministic(t *testing.T) {
	p := Person{Name: "Ada", Birthday: time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)}

	a := uidFor(p)
	assert.Equal(t, a, uidFor(p))
	assert.Len(t, a, config.UIDHashLength*2)

	other := p
	other.Birthday = other.Birthday.AddDate(0, 0, 1)
	assert.NotEqual(t, a, uidFor(other))
}

func TestGenerator_DefaultSummaries(t *testing.T) {
	g := &Generator{}
	assert.Equal(t, "Week 3 of year 41", g.weekSummary(yw(41, 3)))
	assert.Equal(t, "Birth", g.anniversarySummary(0))
	assert.Equal(t, "22nd birthday", g.anniversarySummary(22))

	g.FormatAnniversary = func(n int) string { return "custom" }
	assert.Equal(t, "custom", g.anniversarySummary(22))
}

func yw(year, week int) lifecal.YearWeek {
	return lifecal.YearWeek{Year: year, Week: week}
}
