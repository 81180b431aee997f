package event

import (
	"time"

	"github.com/alp54/fastmail-caldav/internal/datetime"
	"github.com/samber/mo"
)

// Occurrence is one concrete instance of a Record. Non-temporal fields are
// read through Record and never copied.
type Occurrence struct {
	Record *Record
	Start  datetime.Value
	End    mo.Option[datetime.Value]
}

// Overlaps reports whether the occurrence intersects [start, end). An
// occurrence without an end is treated as an instant, or as one whole day
// when all-day. All-day occurrences are compared by calendar date.
func (o Occurrence) Overlaps(start, end time.Time) bool {
	if o.Start.IsAllDay() {
		start, end = datetime.CivilUTC(start), datetime.CivilUTC(end)
	}
	s := o.Start.Time()
	e, ok := o.End.Get()
	var until time.Time
	switch {
	case ok:
		until = e.Time()
	case o.Start.IsAllDay():
		until = s.AddDate(0, 0, 1)
	default:
		return !s.Before(start) && s.Before(end)
	}
	if !until.After(s) {
		return !s.Before(start) && s.Before(end)
	}
	return s.Before(end) && until.After(start)
}
