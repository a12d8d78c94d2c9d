// Package core holds the domain model: ledgers, categories, transactions
// and the derived statistics types.
package core

import (
	"fmt"
	"time"
)

// DateFormat is the storage and wire representation of a calendar date.
// Dates are always serialized zero-padded: month/year filters compare the
// text lexicographically, so "2024-3-1" would silently break them.
const DateFormat = "2006-01-02"

// Date is a calendar date with day granularity and no time-of-day.
type Date struct {
	t time.Time
}

// NewDate returns a normalized Date for the given year, month and day.
func NewDate(year, month, day int) Date {
	return Date{t: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date in UTC.
func Today() Date {
	y, m, d := time.Now().UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a zero-padded ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want format %q: %w", s, DateFormat, err)
	}
	return Date{t: t}, nil
}

// Year returns the calendar year.
func (d Date) Year() int { return d.t.Year() }

// Month returns the month (1-12).
func (d Date) Month() int { return int(d.t.Month()) }

// Day returns the day of the month.
func (d Date) Day() int { return d.t.Day() }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.t.Before(x.t) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.t.After(x.t) }

// String formats the date as zero-padded ISO (YYYY-MM-DD).
func (d Date) String() string { return d.t.Format(DateFormat) }

// YearMonth returns the zero-padded "YYYY-MM" prefix of the date.
func (d Date) YearMonth() string { return d.t.Format("2006-01") }

// MarshalJSON encodes the date as an ISO date string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes an ISO date string.
func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid date JSON: %s", data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks that the date is set.
func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
