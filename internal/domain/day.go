package domain

import (
	"time"
)

// DayLayout is the wire and storage format of a calendar day.
const DayLayout = "2006-01-02"

// Day is a calendar day in YYYY-MM-DD form.
//
// Days are compared and stepped as calendar dates anchored at UTC midnight,
// never as instants, so daylight-saving shifts and zone offsets cannot make
// two adjacent days look 23 or 25 hours apart.
type Day string

// ParseDay validates s and returns it as a Day.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", NewValidationError("date", "must be a calendar day in YYYY-MM-DD form", ErrInvalidFormat)
	}
	// Normalise so that "2024-1-5"-style inputs never reach the store.
	return Day(t.Format(DayLayout)), nil
}

// DayOf returns the calendar day that t falls on in loc.
// A nil loc means UTC, which matches truncating an ISO timestamp.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return Day(t.In(loc).Format(DayLayout))
}

// Time returns midnight UTC of the day. Invalid days yield the zero time.
func (d Day) Time() time.Time {
	t, err := time.Parse(DayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the day n calendar days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return Day(d.Time().AddDate(0, 0, n).Format(DayLayout))
}

// Before reports whether d is strictly earlier than other.
// The fixed-width layout makes lexical order equal calendar order.
func (d Day) Before(other Day) bool {
	return d < other
}

// String implements fmt.Stringer.
func (d Day) String() string {
	return string(d)
}

// Valid reports whether d is a well-formed calendar day.
func (d Day) Valid() bool {
	_, err := time.Parse(DayLayout, string(d))
	return err == nil
}
