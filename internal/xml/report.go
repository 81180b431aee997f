package xml

import "time"

// PropName identifies a property requested in a REPORT body
type PropName struct {
	Namespace string
	Name      string
}

var (
	PropGetETag      = PropName{Namespace: DAV, Name: TagGetETag}
	PropCalendarData = PropName{Namespace: CalDAV, Name: TagCalendarData}
)

// TimeRange represents a time range filter. A zero bound is left open.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// TextMatch is a substring condition on a property value
type TextMatch struct {
	Value     string
	Collation string
}

// PropFilter restricts a component by one of its properties. Without a
// TextMatch it only requires the property to exist.
type PropFilter struct {
	Name      string
	TextMatch *TextMatch
}

// CompFilter represents a calendar query filter on one component level
type CompFilter struct {
	Name        string
	TimeRange   *TimeRange
	PropFilters []PropFilter
	Children    []CompFilter
}

// CalendarQuery represents a calendar-query REPORT request
type CalendarQuery struct {
	Props  []PropName
	Filter CompFilter
}
