package davclient

import (
	"context"
	"strings"

	"github.com/alp54/fastmail-caldav/internal/recurrence"
	"github.com/alp54/fastmail-caldav/internal/xml"
	"github.com/samber/mo"
)

// RecurringSentinel in QueryFilter.Description selects recurring events
// instead of matching description text. Title is ignored in that case.
const RecurringSentinel = "recurring"

// collation used for all text matches
const textCollation = "i;ascii-casemap"

// QueryFilter is the caller's query. Empty strings count as absent.
type QueryFilter struct {
	// Date is a YYYY-MM-DD day in the client's location
	Date        mo.Option[string]
	Title       mo.Option[string]
	Description mo.Option[string]
}

func (f QueryFilter) date() (string, bool) {
	return present(f.Date)
}

// recurringOnly reports whether Description carries the sentinel
func (f QueryFilter) recurringOnly() bool {
	d, ok := present(f.Description)
	return ok && strings.EqualFold(d, RecurringSentinel)
}

func present(o mo.Option[string]) (string, bool) {
	v, ok := o.Get()
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// ObjectFilter is a fluent builder over QueryFilter
type ObjectFilter interface {
	Date(date string) ObjectFilter
	Title(title string) ObjectFilter
	Description(desc string) ObjectFilter
	Recurring() ObjectFilter
	Limit(limit int) ObjectFilter
	Filter() QueryFilter
	Do(ctx context.Context) ([]Occurrence, error)
	JSON(ctx context.Context) ([]string, error)
}

// eventQuerier is the part of the client objectFilter needs
type eventQuerier interface {
	QueryEvents(ctx context.Context, filter QueryFilter) ([]Occurrence, error)
	QueryEventsJSON(ctx context.Context, filter QueryFilter) ([]string, error)
}

type objectFilter struct {
	client eventQuerier
	filter QueryFilter
	limit  int
}

// GetAllEvents returns a filter for querying all events
func (c *davClient) GetAllEvents() ObjectFilter {
	return &objectFilter{client: c}
}

func (f *objectFilter) Date(date string) ObjectFilter {
	f.filter.Date = mo.Some(date)
	return f
}

func (f *objectFilter) Title(title string) ObjectFilter {
	f.filter.Title = mo.Some(title)
	return f
}

func (f *objectFilter) Description(desc string) ObjectFilter {
	f.filter.Description = mo.Some(desc)
	return f
}

// Recurring restricts the query to events with an RRULE
func (f *objectFilter) Recurring() ObjectFilter {
	return f.Description(RecurringSentinel)
}

func (f *objectFilter) Limit(limit int) ObjectFilter {
	f.limit = limit
	return f
}

func (f *objectFilter) Filter() QueryFilter {
	return f.filter
}

// Do executes the filter and returns the matching occurrences
func (f *objectFilter) Do(ctx context.Context) ([]Occurrence, error) {
	occurrences, err := f.client.QueryEvents(ctx, f.filter)
	if err != nil {
		return nil, err
	}
	if f.limit > 0 && len(occurrences) > f.limit {
		occurrences = occurrences[:f.limit]
	}
	return occurrences, nil
}

// JSON executes the filter and returns serialized occurrences
func (f *objectFilter) JSON(ctx context.Context) ([]string, error) {
	lines, err := f.client.QueryEventsJSON(ctx, f.filter)
	if err != nil {
		return nil, err
	}
	if f.limit > 0 && len(lines) > f.limit {
		lines = lines[:f.limit]
	}
	return lines, nil
}

// eventQuery returns the VCALENDAR/VEVENT skeleton asking for etag and data
func eventQuery(vevent xml.CompFilter) *xml.CalendarQuery {
	vevent.Name = "VEVENT"
	return &xml.CalendarQuery{
		Props: []xml.PropName{xml.PropGetETag, xml.PropCalendarData},
		Filter: xml.CompFilter{
			Name:     "VCALENDAR",
			Children: []xml.CompFilter{vevent},
		},
	}
}

// buildCalendarQuery converts a filter into a calendar-query. window is
// the day selected by the filter's date, if any.
func buildCalendarQuery(f QueryFilter, window mo.Option[recurrence.Window]) *xml.CalendarQuery {
	var vevent xml.CompFilter

	if w, ok := window.Get(); ok {
		vevent.TimeRange = &xml.TimeRange{Start: w.Start, End: w.End}
	}

	if f.recurringOnly() {
		vevent.PropFilters = append(vevent.PropFilters, xml.PropFilter{Name: "RRULE"})
		return eventQuery(vevent)
	}

	if title, ok := present(f.Title); ok {
		vevent.PropFilters = append(vevent.PropFilters, textFilter("SUMMARY", title))
	}
	if desc, ok := present(f.Description); ok {
		vevent.PropFilters = append(vevent.PropFilters, textFilter("DESCRIPTION", desc))
	}
	return eventQuery(vevent)
}

// uidQuery matches resources whose UID contains uid
func uidQuery(uid string) *xml.CalendarQuery {
	return eventQuery(xml.CompFilter{
		PropFilters: []xml.PropFilter{textFilter("UID", uid)},
	})
}

func textFilter(name, value string) xml.PropFilter {
	return xml.PropFilter{
		Name:      name,
		TextMatch: &xml.TextMatch{Value: value, Collation: textCollation},
	}
}

// queryWindow validates the filter's date and returns its local day
func (c *davClient) queryWindow(f QueryFilter) (mo.Option[recurrence.Window], error) {
	date, ok := f.date()
	if !ok {
		return mo.None[recurrence.Window](), nil
	}
	day, err := c.codec.ParseQueryDate(date)
	if err != nil {
		return mo.None[recurrence.Window](), err
	}
	start, end := c.codec.DayWindow(day)
	return mo.Some(recurrence.Window{Start: start, End: end}), nil
}
