// Package recurrence expands recurring events into the occurrences that
// fall inside a query window.
package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"
)

// Rule is a parsed RRULE that has not been anchored to a start yet
type Rule struct {
	text string
	opt  rrule.ROption
}

func (r Rule) String() string {
	return r.text
}

// Anchor is the first instance of a series plus its explicit additions
// and exclusions
type Anchor struct {
	Start   time.Time
	ExDates []time.Time
	RDates  []time.Time
}

// Window is the closed-open interval [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End)
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ExpansionOptions controls how recurrence expansion behaves
type ExpansionOptions struct {
	MaxOccurrences int // per event, 0 = unlimited
}

// DefaultExpansionOptions caps a single event at 1000 occurrences
var DefaultExpansionOptions = ExpansionOptions{
	MaxOccurrences: 1000,
}
