// Package types provides the calendar types shared by the grammar and the
// semantic layer.
package types

import (
	"fmt"
	"time"

	"github.com/coolbeans/hunlaw/pkg/identifier"
)

// Date represents a calendar date without time component.
// Implements comparison via time.Time.
type Date struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31
}

// ToTime converts a Date to a time.Time at midnight UTC.
func (d Date) ToTime() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// FromTime creates a Date from a time.Time.
func FromTime(t time.Time) Date {
	return Date{
		Year:  t.Year(),
		Month: int(t.Month()),
		Day:   t.Day(),
	}
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Valid reports whether d names an existing calendar day.
func (d Date) Valid() bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 {
		return false
	}
	return FromTime(d.ToTime()) == d
}

// Before returns true if d is before other.
func (d Date) Before(other Date) bool {
	return d.ToTime().Before(other.ToTime())
}

// After returns true if d is after other.
func (d Date) After(other Date) bool {
	return d.ToTime().After(other.ToTime())
}

// Equal returns true if d equals other.
func (d Date) Equal(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return FromTime(d.ToTime().AddDate(0, 0, n))
}

// AddMonths returns the given day of the month n months after d's month.
// Day overflow normalises into the following month.
func (d Date) AddMonths(n, day int) Date {
	return FromTime(time.Date(d.Year, time.Month(d.Month)+time.Month(n), day, 0, 0, 0, 0, time.UTC))
}

// String renders the Hungarian form, "2013. július 1.".
func (d Date) String() string {
	return fmt.Sprintf("%d. %s %d.", d.Year, identifier.MonthName(d.Month), d.Day)
}

// ISO renders "2013-07-01".
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseISO parses "2013-07-01".
func ParseISO(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// MarshalText encodes d in ISO form.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.ISO()), nil }

// UnmarshalText decodes an ISO date.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseISO(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
