// Package freeform resolves typed text such as "yesterday" or "jan 21 2024"
// into a calendar date for quick navigation.
package freeform

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/tartampluch/go-lifecal/internal/config"
)

// Parser turns free text into a calendar date relative to now.
// Implementations never fail loudly: unparseable input yields ok == false.
type Parser interface {
	Parse(text string, now time.Time) (time.Time, bool)
}

// ChainParser tries an absolute-date parser first and falls back to
// natural-language rules for relative phrases.
type ChainParser struct {
	loc      *time.Location
	relative *when.Parser
}

// NewParser builds the default chain. Dates are resolved and returned in loc.
func NewParser(loc *time.Location) *ChainParser {
	if loc == nil {
		loc = time.Local
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	return &ChainParser{loc: loc, relative: w}
}

// Parse implements Parser.
func (p *ChainParser) Parse(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	// 1. Absolute dates: the whole string must be a date.
	// dateparse defaults to month-first for ambiguous numeric forms (01/02/2024 is Jan 2).
	t, err := dateparse.ParseIn(text, p.loc)
	if err == nil {
		if t.Year() == 0 {
			return p.closestYear(t, now)
		}
		return p.midnight(t), true
	}
	if dayOutOfRange(err) {
		p.reject(text, err)
		return time.Time{}, false
	}

	// 2. Relative phrases, resolved against now.
	res, err := p.relative.Parse(text, now.In(p.loc))
	if err != nil {
		p.reject(text, err)
		return time.Time{}, false
	}
	if res == nil || !monthMatches(res.Text, res.Time.Month()) {
		return time.Time{}, false
	}

	return p.midnight(res.Time), true
}

// closestYear places a year-less month/day in the year nearest to now:
// "dec 30" typed on January 2nd means last December.
func (p *ChainParser) closestYear(t, now time.Time) (time.Time, bool) {
	ref := p.midnight(now)
	var best time.Time
	for _, y := range []int{ref.Year() - 1, ref.Year(), ref.Year() + 1} {
		c := time.Date(y, t.Month(), t.Day(), 0, 0, 0, 0, p.loc)
		if c.Day() != t.Day() {
			continue // Feb 29 outside a leap year
		}
		if best.IsZero() || absDuration(c.Sub(ref)) < absDuration(best.Sub(ref)) {
			best = c
		}
	}
	return best, !best.IsZero()
}

func (p *ChainParser) reject(text string, err error) {
	slog.Debug(config.MsgParseRejected,
		config.LogKeyComponent, config.CompFreeform,
		config.LogKeyValue, text,
		config.LogKeyError, err)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// dayOutOfRange reports whether the text named a day its month does not have,
// such as "feb 30 2024".
func dayOutOfRange(err error) bool {
	var pe *time.ParseError
	return errors.As(err, &pe) && strings.Contains(pe.Message, "day out of range")
}

// monthMatches rejects relative matches whose named month rolled over into
// the next one, which when does for overflowing days.
func monthMatches(matched string, got time.Month) bool {
	for _, word := range strings.Fields(strings.ToLower(matched)) {
		word = strings.Trim(word, ",")
		if m, ok := en.MONTH_OFFSET[word]; ok && time.Month(m) != got {
			return false
		}
	}
	return true
}

func (p *ChainParser) midnight(t time.Time) time.Time {
	y, m, d := t.In(p.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.loc)
}

// ParseFreeformDate resolves text with p. It returns ok == false for empty or
// unparseable input, in which case callers must not map the zero time.
func ParseFreeformDate(p Parser, text string, now time.Time) (time.Time, bool) {
	if p == nil {
		return time.Time{}, false
	}
	return p.Parse(text, now)
}
