package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/installtrack/internal/domain/model"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// dateArg converts a date into its stored TEXT form, or NULL when zero.
func dateArg(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(model.DateLayout)
}

// nullableString stores empty strings as NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// parseDate parses a nullable date column. NULL yields the zero time.
func parseDate(ns sql.NullString) (time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(model.DateLayout, ns.String); err == nil {
		return t, nil
	}
	return parseTime(ns.String)
}

// lenientDate parses a nullable date column for reporting. A value that is
// not a recognizable date is logged and returned as raw with a zero time, so
// one bad row never fails a whole report.
func lenientDate(ns sql.NullString, column, mantis string) (t time.Time, raw string) {
	t, err := parseDate(ns)
	if err != nil {
		slog.Warn("unparsable stored date", "column", column, "mantis", mantis, "value", ns.String)
		return time.Time{}, ns.String
	}
	return t, ""
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
