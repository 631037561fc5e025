// Package locale provides translated labels for weeks, ranges and navigation messages.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-lifecal/internal/config"
	"github.com/tartampluch/go-lifecal/internal/lifecal"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves message keys for one language.
type Translator struct {
	Lang      string
	Supported []string
	localizer *i18n.Localizer
}

// New loads every embedded locale and selects lang, falling back to English.
func New(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	tr := &Translator{Lang: lang}
	if tr.Lang == "" {
		tr.Lang = config.DefaultLanguage
	}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return tr
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		tr.Supported = append(tr.Supported, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	tr.localizer = i18n.NewLocalizer(bundle, tr.Lang, config.DefaultLanguage)
	return tr
}

// Msg translates a key without template data.
func (tr *Translator) Msg(key string) string {
	return tr.Localize(key, nil, nil)
}

// Localize translates key with optional template data and plural count.
// Missing keys return the key itself so callers can detect them and fall back.
func (tr *Translator) Localize(key string, data map[string]any, plural any) string {
	if tr == nil || tr.localizer == nil {
		return key
	}
	msg, err := tr.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  plural,
	})
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// localizeOr returns the translation of key, or the formatted fallback when it is missing.
func (tr *Translator) localizeOr(key string, data map[string]any, plural any, fallback string, args ...any) string {
	if msg := tr.Localize(key, data, plural); msg != key {
		return msg
	}
	return fmt.Sprintf(fallback, args...)
}

// Date formats t with the language's short or long date layout.
func (tr *Translator) Date(t time.Time, long bool) string {
	key, def := config.TKeyFormatDateShort, string(lifecal.StyleShort)
	if long {
		key, def = config.TKeyFormatDateLong, string(lifecal.StyleLong)
	}
	layout := tr.Msg(key)
	if layout == key {
		return lifecal.RenderDate(t, lifecal.DateStyle(def))
	}
	return t.Format(layout)
}

// WeekSummary labels a cell, e.g. "Week 12 of year 34".
func (tr *Translator) WeekSummary(yw lifecal.YearWeek) string {
	return tr.localizeOr(config.TKeyWeekSummary,
		map[string]any{"Year": yw.Year, "Week": yw.Week}, nil,
		config.FallbackWeekSummary, yw.Week, yw.Year)
}

// WeekRange labels the dates of a cell, e.g. "03/20/34 - 03/26/34".
func (tr *Translator) WeekRange(r lifecal.DateRange) string {
	start, end := tr.Date(r.Start, false), tr.Date(r.End, false)
	return tr.localizeOr(config.TKeyWeekRange,
		map[string]any{"Start": start, "End": end}, nil,
		config.FallbackWeekRange, start, end)
}

// Anniversary labels the nth anniversary; n == 0 is the birth itself.
func (tr *Translator) Anniversary(n int) string {
	if n == 0 {
		return tr.localizeOr(config.TKeyBirth, nil, nil, config.FallbackBirth)
	}
	ordinal := lifecal.Ordinal(n)
	return tr.localizeOr(config.TKeyAnniversary,
		map[string]any{"Ordinal": ordinal, "Number": n}, nil,
		config.FallbackAnniversary, ordinal)
}

// NotOnCalendar explains that a parsed date falls outside the 90-year grid.
func (tr *Translator) NotOnCalendar(t time.Time) string {
	d := tr.Date(t, true)
	return tr.localizeOr(config.TKeyNotOnCalendar,
		map[string]any{"Date": d}, nil,
		config.FallbackNotOnCal, d)
}

// UnableToFindDate is shown when free text could not be parsed.
func (tr *Translator) UnableToFindDate() string {
	return tr.localizeOr(config.TKeyUnableToFind, nil, nil, config.ErrUnparseableDate)
}

// ElapsedStatus summarizes progress through the grid.
func (tr *Translator) ElapsedStatus(elapsed, total int) string {
	return tr.localizeOr(config.TKeyElapsedStatus,
		map[string]any{"Count": elapsed, "Total": total}, elapsed,
		config.FallbackElapsed, elapsed, total)
}

// WeekState describes whether yw is behind, at or ahead of current.
func (tr *Translator) WeekState(yw, current lifecal.YearWeek) string {
	switch {
	case yw.Before(current):
		return tr.Msg(config.TKeyWeekElapsed)
	case yw == current:
		return tr.Msg(config.TKeyWeekCurrent)
	default:
		return tr.Msg(config.TKeyWeekAhead)
	}
}

// CalendarName is the display name of the iCalendar feed.
func (tr *Translator) CalendarName() string {
	return tr.localizeOr(config.TKeyCalendarName, nil, nil, config.ICalCalName)
}
