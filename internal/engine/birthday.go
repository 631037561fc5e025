package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-lifecal/internal/config"
)

// Person is the owner of the life calendar as read from the birthday source.
type Person struct {
	Name     string
	Birthday time.Time
}

// ReadBirthday scans a vCard stream for the person whose calendar is drawn.
//
// When name is set, the first card whose FN or N matches it (case-insensitive)
// wins; otherwise the first card carrying a full BDAY does. Cards with a
// year-less BDAY (--MM-DD) are skipped since the grid needs a birth year.
func ReadBirthday(r io.Reader, name string, loc *time.Location) (Person, error) {
	decoder := vcard.NewDecoder(r)
	want := strings.TrimSpace(name)
	processed := 0

	for {
		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Stop on the first decoding error: the decoder cannot resync mid-stream.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			break
		}
		processed++

		cardName := displayName(card)
		if want != "" && !strings.EqualFold(cardName, want) {
			continue
		}

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birthDate, yearKnown, err := parseDate(bday.Value, loc)
		if err != nil || !yearKnown {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, cardName,
				config.LogKeyValue, bday.Value)
			continue
		}

		slog.Info(config.MsgBirthdayFound,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyName, cardName,
			config.LogKeyTotal, processed)
		return Person{Name: cardName, Birthday: birthDate}, nil
	}

	if want != "" {
		return Person{}, fmt.Errorf("%s: %q", config.ErrNoBirthdayCard, want)
	}
	return Person{}, errors.New(config.ErrNoBirthdayCard)
}

// displayName prefers the formatted name over the structured one.
func displayName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil {
		return n.Value
	}
	return ""
}

// parseDate handles the vCard BDAY formats. Dates are returned as midnight in loc.
func parseDate(value string, loc *time.Location) (time.Time, bool, error) {
	if loc == nil {
		loc = time.Local
	}

	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, loc), true, nil
		}
	}

	// Truncated dates are recognized only to report them as year-less.
	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if _, err := time.Parse(f, value); err == nil {
			return time.Time{}, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
