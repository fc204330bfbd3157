// Package dateutils provides the calendar arithmetic shared by the importers,
// the projection engine and the analytics queries. All values are UTC.
package dateutils

import (
	"strings"
	"time"
)

// Statement date layouts, tried in order. Day and month accept one or two
// digits.
const (
	LayoutDayMonthYear      = "2/1/2006"
	LayoutDayMonthShortYear = "2/1/06"
	LayoutISO               = "2006-01-02"
	LayoutMonthLabel        = "Jan 2006"
)

// timeMarker separates date and time in card statement exports.
const timeMarker = " às "

// ParseStatementDate parses "D/M/YYYY" or "D/M/YY" with optional zero
// padding, optionally followed by a time component after " às " or
// whitespace. ok is false when neither layout matches.
func ParseStatementDate(raw string) (time.Time, bool) {
	s := raw
	if before, _, found := strings.Cut(s, timeMarker); found {
		s = before
	} else if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{LayoutDayMonthYear, LayoutDayMonthShortYear} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseISODate parses "YYYY-MM-DD" as UTC midnight.
func ParseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(LayoutISO, strings.TrimSpace(s), time.UTC)
}

// Date builds a UTC midnight value.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the clock part of t, keeping its calendar day in UTC.
func Truncate(t time.Time) time.Time {
	t = t.UTC()
	return Date(t.Year(), t.Month(), t.Day())
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return Date(t.Year(), t.Month(), 1)
}

// MonthIndex maps a calendar month to a linear integer so month distances
// are plain subtraction.
func MonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// FromMonthIndex is the inverse of MonthIndex, returning a first-of-month.
func FromMonthIndex(idx int) time.Time {
	return Date(idx/12, time.Month(idx%12+1), 1)
}

// AddMonths moves a first-of-month date by n months.
func AddMonths(t time.Time, n int) time.Time {
	return FromMonthIndex(MonthIndex(t) + n)
}

// DaysIn returns the number of days of a month.
func DaysIn(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}

// ClampDay builds the date for day in the given month, pulling days past the
// month end back to its last day.
func ClampDay(year int, month time.Month, day int) time.Time {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return Date(year, month, day)
}

// FormatMonthLabel renders the short projection header, e.g. "Feb 2025".
func FormatMonthLabel(t time.Time) string {
	return t.Format(LayoutMonthLabel)
}

// ToISODate formats t as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.Format(LayoutISO)
}

// YearRange returns [Jan 1 of year, Jan 1 of year+1).
func YearRange(year int) (time.Time, time.Time) {
	return Date(year, time.January, 1), Date(year+1, time.January, 1)
}

// MonthRange returns [first of month, first of next month).
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := Date(year, month, 1)
	return start, AddMonths(start, 1)
}
