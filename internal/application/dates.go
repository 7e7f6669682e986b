package application

import (
	"time"

	"github.com/goodsign/monday"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// DefaultLocale is used for month labels when no locale is configured.
const DefaultLocale = "fr_FR"

// formatDate returns the date-only form of t, or "" when t is zero.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

// datePtr returns the date-only form of t, or nil when t is zero.
func datePtr(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(model.DateLayout)
	return &s
}

// dateOrRaw returns the date-only form of t, or raw when t is zero and a
// stored value could not be parsed.
func dateOrRaw(t time.Time, raw string) string {
	if t.IsZero() {
		return raw
	}
	return formatDate(t)
}

// datePtrOrRaw is datePtr with the raw fallback of dateOrRaw.
func datePtrOrRaw(t time.Time, raw string) *string {
	if t.IsZero() && raw != "" {
		return &raw
	}
	return datePtr(t)
}

// truncateDay drops the time of day, keeping the calendar date in t's location.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatMonth renders a "2006-01" month key as a localized month label such
// as "mars 2025". A malformed key is returned unchanged. An unsupported
// locale falls back to DefaultLocale.
func FormatMonth(key, locale string) string {
	t, err := time.Parse(model.MonthLayout, key)
	if err != nil {
		return key
	}
	return monday.Format(t, "January 2006", resolveLocale(locale))
}

// IsSupportedLocale reports whether month labels can be rendered in locale.
func IsSupportedLocale(locale string) bool {
	for _, l := range monday.ListLocales() {
		if string(l) == locale {
			return true
		}
	}
	return false
}

func resolveLocale(locale string) monday.Locale {
	if IsSupportedLocale(locale) {
		return monday.Locale(locale)
	}
	return monday.Locale(DefaultLocale)
}
