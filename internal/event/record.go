// Package event holds the parsed form of calendar entries, the occurrences
// derived from them and their JSON rendering.
package event

import (
	"time"

	"github.com/alp54/fastmail-caldav/internal/datetime"
	"github.com/samber/mo"
)

// Record is one VEVENT as parsed from the wire. Text fields are empty when
// the property is absent.
type Record struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       mo.Option[datetime.Value]
	End         mo.Option[datetime.Value]

	// RRule is the raw rule text without the "RRULE:" prefix; empty means
	// the event does not recur.
	RRule   string
	ExDates []datetime.Value
	RDates  []datetime.Value

	// RecurrenceID is set on overridden instances of a recurring event
	RecurrenceID mo.Option[datetime.Value]

	// Href and ETag identify the resource the record was read from
	Href string
	ETag string
}

// IsRecurring reports whether the record carries a rule anchored to a start
func (r *Record) IsRecurring() bool {
	return r.RRule != "" && r.Start.IsPresent()
}

// IsAllDay reports whether the start is date-only
func (r *Record) IsAllDay() bool {
	start, ok := r.Start.Get()
	return ok && start.IsAllDay()
}

// Duration is End - Start when both are present
func (r *Record) Duration() mo.Option[time.Duration] {
	start, ok := r.Start.Get()
	if !ok {
		return mo.None[time.Duration]()
	}
	end, ok := r.End.Get()
	if !ok {
		return mo.None[time.Duration]()
	}
	return mo.Some(end.Sub(start))
}

// Base returns the occurrence made of the record's own start and end, or
// false when the record has no start.
func (r *Record) Base() (Occurrence, bool) {
	start, ok := r.Start.Get()
	if !ok {
		return Occurrence{}, false
	}
	return Occurrence{Record: r, Start: start, End: r.End}, true
}
