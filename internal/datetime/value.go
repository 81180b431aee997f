// Package datetime converts between the CalDAV wire timestamp forms, local
// wall-clock input and the display strings of the JSON event representation.
package datetime

import "time"

// Kind tags a Value as all-day or timed
type Kind int

const (
	KindDate    Kind = iota + 1 // all-day, date precision
	KindInstant                 // timed, zoned moment
)

// Value is a calendar temporal value. The zero Value has no kind and
// represents "absent".
type Value struct {
	kind Kind
	t    time.Time
}

// Date returns an all-day value for the given calendar date. The
// underlying instant is midnight UTC.
func Date(year int, month time.Month, day int) Value {
	return Value{kind: KindDate, t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the all-day value for t's calendar date in t's own location
func DateOf(t time.Time) Value {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Instant returns a timed value
func Instant(t time.Time) Value {
	return Value{kind: KindInstant, t: t}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsAllDay() bool {
	return v.kind == KindDate
}

func (v Value) IsZero() bool {
	return v.kind == 0
}

// Time returns the underlying instant. For all-day values this is
// midnight UTC of the date.
func (v Value) Time() time.Time {
	return v.t
}

// Add shifts the value by d, keeping its kind
func (v Value) Add(d time.Duration) Value {
	return Value{kind: v.kind, t: v.t.Add(d)}
}

// AddDays shifts the value by whole calendar days, keeping its kind
func (v Value) AddDays(n int) Value {
	return Value{kind: v.kind, t: v.t.AddDate(0, 0, n)}
}

// Sub returns v - u
func (v Value) Sub(u Value) time.Duration {
	return v.t.Sub(u.t)
}

// At returns a value of the same kind located at t
func (v Value) At(t time.Time) Value {
	if v.kind == KindDate {
		return DateOf(t)
	}
	return Instant(t)
}

func (v Value) String() string {
	switch v.kind {
	case KindDate:
		return v.t.Format(DisplayDateLayout)
	case KindInstant:
		return v.t.Format(time.RFC3339)
	}
	return ""
}

// CivilUTC returns midnight UTC of t's calendar date in t's own location.
// All-day values are compared against windows through it.
func CivilUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
