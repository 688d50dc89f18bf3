// Package dates works with calendar dates as fixed-width ISO strings
// (YYYY-MM-DD). The zero-padded format makes lexicographic comparison
// equivalent to chronological comparison, which the access checks rely on.
package dates

import (
	"fmt"
	"time"
)

// Layout is the canonical wire and storage format for calendar dates.
const Layout = "2006-01-02"

// Format renders a timestamp as a calendar date in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Today returns the current calendar date.
func Today() string {
	return Format(time.Now())
}

// Parse validates a calendar-date string.
func Parse(value string) (time.Time, error) {
	t, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// IsValid reports whether value is a well-formed calendar date.
func IsValid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// AddMonths shifts a date by whole months, following time.AddDate
// normalization for month-end overflow.
func AddMonths(value string, months int) (string, error) {
	t, err := Parse(value)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, months, 0)), nil
}

// AddDays shifts a date by whole days.
func AddDays(value string, days int) (string, error) {
	t, err := Parse(value)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, days)), nil
}

// IsExpired reports whether endDate falls strictly before today. Both
// arguments must be canonical calendar dates; the comparison is a plain
// string compare, safe only because the format is fixed-width.
func IsExpired(endDate, today string) bool {
	return endDate < today
}

// DaysUntil returns the whole days from `from` to `to`, negative when
// `to` is in the past.
func DaysUntil(from, to string) (int, error) {
	start, err := Parse(from)
	if err != nil {
		return 0, err
	}
	end, err := Parse(to)
	if err != nil {
		return 0, err
	}
	return int(end.Sub(start).Hours() / 24), nil
}

// YearMonth extracts the YYYY-MM prefix used for monthly aggregation.
func YearMonth(value string) string {
	if len(value) < 7 {
		return value
	}
	return value[:7]
}
