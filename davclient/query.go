package davclient

import (
	"context"
	"fmt"

	"github.com/alp54/fastmail-caldav/internal/event"
	"github.com/alp54/fastmail-caldav/internal/recurrence"
	"github.com/alp54/fastmail-caldav/internal/xml"
	"github.com/samber/mo"
)

// QueryEvents runs a calendar query and returns the matching occurrences.
// With a date, recurring events are expanded over that local day and
// non-recurring events outside it are dropped. A block that fails to parse
// is skipped; transport and response errors fail the whole query.
func (c *davClient) QueryEvents(ctx context.Context, filter QueryFilter) ([]Occurrence, error) {
	window, err := c.queryWindow(filter)
	if err != nil {
		return nil, err
	}

	records, err := c.fetchRecords(ctx, buildCalendarQuery(filter, window))
	if err != nil {
		return nil, err
	}

	var out []Occurrence
	for _, rec := range records {
		out = append(out, c.occurrences(rec, window)...)
	}

	c.logger.Debug("calendar query complete",
		"records", len(records),
		"occurrences", len(out))
	return out, nil
}

// QueryEventsJSON runs QueryEvents and serializes every occurrence
func (c *davClient) QueryEventsJSON(ctx context.Context, filter QueryFilter) ([]string, error) {
	occurrences, err := c.QueryEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	return c.serializer.MarshalAll(occurrences)
}

func (c *davClient) occurrences(rec *event.Record, window mo.Option[recurrence.Window]) []Occurrence {
	w, ok := window.Get()
	if !ok {
		base, ok := rec.Base()
		if !ok || c.serializer.IsDegenerate(base) {
			return nil
		}
		return []Occurrence{base}
	}

	expanded := c.engine.Expand(rec, w)
	if rec.IsRecurring() {
		return expanded
	}

	out := expanded[:0]
	for _, o := range expanded {
		if o.Overlaps(w.Start, w.End) {
			out = append(out, o)
		}
	}
	return out
}

// fetchRecords sends query to the calendar collection and parses every
// returned resource
func (c *davClient) fetchRecords(ctx context.Context, query *xml.CalendarQuery) ([]*event.Record, error) {
	resources, err := c.report(ctx, query)
	if err != nil {
		return nil, err
	}

	var records []*event.Record
	for _, res := range resources {
		parsed, err := c.parser.ParseResource(res.Href, res.ETag, res.Data)
		if err != nil {
			c.logger.Warn("skipping calendar block", "href", res.Href, "error", err)
			continue
		}
		records = append(records, parsed...)
	}
	return records, nil
}

func (c *davClient) report(ctx context.Context, query *xml.CalendarQuery) ([]xml.CalendarResource, error) {
	body, err := query.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode calendar query: %w", err)
	}
	return c.httpClient.DoREPORT(ctx, c.calendarURL, c.depth, body)
}
