package semantic

import (
	"errors"
	"fmt"

	"github.com/coolbeans/hunlaw/pkg/grammar"
	"github.com/coolbeans/hunlaw/pkg/types"
)

// DateKind is the way an enforcement or repeal date is given.
type DateKind string

const (
	// FixedDate is a calendar date.
	FixedDate DateKind = "date"
	// DaysAfterPublication counts days from the publication of the Act.
	DaysAfterPublication DateKind = "days_after_publication"
	// DayInMonthAfterPublication is a day of a month following the
	// publication. Without Month, the next month.
	DayInMonthAfterPublication DateKind = "day_in_month_after_publication"
	// DaysAfterEnforcement counts days from the enforcement date. It
	// only occurs in inline repeals.
	DaysAfterEnforcement DateKind = "days_after_enforcement"
)

// ErrNeedsEnforcement is returned when resolving a date relative to an
// enforcement date that is not known.
var ErrNeedsEnforcement = errors.New("date is relative to the enforcement date")

// Date is an unresolved date.
type Date struct {
	Kind  DateKind    `json:"kind" yaml:"kind"`
	Date  *types.Date `json:"date,omitempty" yaml:"date,omitempty"`
	Days  int         `json:"days,omitempty" yaml:"days,omitempty"`
	Month *int        `json:"month,omitempty" yaml:"month,omitempty"`
	Day   int         `json:"day,omitempty" yaml:"day,omitempty"`
}

func dateOf(d grammar.DateSpec) (Date, error) {
	switch d.Kind {
	case grammar.AbsoluteDate:
		if d.Date == nil || !d.Date.Valid() {
			return Date{}, fmt.Errorf("invalid date")
		}
		date := *d.Date
		return Date{Kind: FixedDate, Date: &date}, nil
	case grammar.AfterPublication:
		return Date{Kind: DaysAfterPublication, Days: d.Days}, nil
	case grammar.DayInMonth:
		out := Date{Kind: DayInMonthAfterPublication, Day: d.Day}
		if d.Month != nil {
			m := *d.Month
			out.Month = &m
		}
		return out, nil
	case grammar.AfterEnforcement:
		return Date{Kind: DaysAfterEnforcement, Days: d.Days}, nil
	}
	return Date{}, fmt.Errorf("unknown date kind %d", d.Kind)
}

// Resolve returns the calendar date for an Act published on published.
func (d Date) Resolve(published types.Date) (types.Date, error) {
	switch d.Kind {
	case FixedDate:
		if d.Date == nil {
			return types.Date{}, fmt.Errorf("date missing")
		}
		return *d.Date, nil
	case DaysAfterPublication:
		return published.AddDays(d.Days), nil
	case DayInMonthAfterPublication:
		months := 1
		if d.Month != nil {
			months = *d.Month
		}
		return published.AddMonths(months, d.Day), nil
	case DaysAfterEnforcement:
		return types.Date{}, ErrNeedsEnforcement
	}
	return types.Date{}, fmt.Errorf("unknown date kind %q", d.Kind)
}

// Resolve returns the enforcement date for an Act published on
// published.
func (e EnforcementDate) Resolve(published types.Date) (types.Date, error) {
	return e.Date.Resolve(published)
}

// RepealDate returns the date of the inline repeal, if there is one.
func (e EnforcementDate) RepealDate(published types.Date) (types.Date, bool, error) {
	if e.InlineRepeal == nil {
		return types.Date{}, false, nil
	}
	when := e.InlineRepeal.Date
	if when.Kind != DaysAfterEnforcement {
		d, err := when.Resolve(published)
		return d, true, err
	}
	enforced, err := e.Resolve(published)
	if err != nil {
		return types.Date{}, true, fmt.Errorf("resolving enforcement date: %w", err)
	}
	return enforced.AddDays(when.Days), true, nil
}
