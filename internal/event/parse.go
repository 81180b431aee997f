package event

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/alp54/fastmail-caldav/internal/caldaverr"
	"github.com/alp54/fastmail-caldav/internal/datetime"
	"github.com/emersion/go-ical"
	"github.com/samber/mo"
)

// ProdID identifies this client in the calendar documents it writes
const ProdID = "-//github.com/alp54/fastmail-caldav//NONSGML v1.0//EN"

const propRecurrenceID = "RECURRENCE-ID"

// Parser turns calendar-text blocks into records
type Parser struct {
	// loc interprets floating date-times and TZIDs the runtime does not know
	loc    *time.Location
	logger *slog.Logger
}

// NewParser creates a parser. A nil loc means time.Local, a nil logger
// discards output.
func NewParser(loc *time.Location, logger *slog.Logger) *Parser {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{loc: loc, logger: logger}
}

// Parse decodes one block, which may be a full VCALENDAR or a bare VEVENT
// fragment. Every VEVENT in the block becomes a record; a block that does
// not decode is a malformed_calendar_block error.
func (p *Parser) Parse(block string) ([]*Record, error) {
	cal, err := ical.NewDecoder(strings.NewReader(wrapBlock(block))).Decode()
	if err != nil {
		return nil, caldaverr.New(caldaverr.ErrMalformedCalendar, "failed to decode calendar block", err)
	}

	var records []*Record
	for _, ev := range cal.Events() {
		records = append(records, p.parseEvent(ev.Component))
	}
	linkOverrides(records)
	return records, nil
}

// ParseResource parses a block and stamps every record with the resource's
// href and entity tag
func (p *Parser) ParseResource(href, etag, block string) ([]*Record, error) {
	records, err := p.Parse(block)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		r.Href = href
		r.ETag = etag
	}
	return records, nil
}

// wrapBlock normalises line endings to CRLF and wraps a bare fragment in a
// minimal VCALENDAR
func wrapBlock(block string) string {
	block = strings.TrimSpace(block)
	block = strings.ReplaceAll(block, "\r\n", "\n")
	block = strings.ReplaceAll(block, "\r", "\n")

	var b bytes.Buffer
	wrapped := !strings.HasPrefix(strings.ToUpper(block), "BEGIN:VCALENDAR")
	if wrapped {
		b.WriteString("BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:" + ProdID + "\n")
	}
	b.WriteString(block)
	if wrapped {
		b.WriteString("\nEND:VCALENDAR")
	}
	b.WriteString("\n")
	return strings.ReplaceAll(b.String(), "\n", "\r\n")
}

func (p *Parser) parseEvent(comp *ical.Component) *Record {
	r := &Record{
		UID:         p.text(comp, ical.PropUID),
		Summary:     p.text(comp, ical.PropSummary),
		Description: p.text(comp, ical.PropDescription),
		Location:    p.text(comp, ical.PropLocation),
		Start:       p.temporal(comp, ical.PropDateTimeStart),
		End:         p.temporal(comp, ical.PropDateTimeEnd),
	}

	if prop := comp.Props.Get(ical.PropRecurrenceRule); prop != nil {
		r.RRule = strings.TrimSpace(prop.Value)
	}

	if r.End.IsAbsent() {
		if start, ok := r.Start.Get(); ok {
			if prop := comp.Props.Get(ical.PropDuration); prop != nil {
				if d, err := prop.Duration(); err == nil {
					r.End = mo.Some(start.Add(d))
				} else {
					p.logger.Debug("ignoring unparsable DURATION", "uid", r.UID, "value", prop.Value, "error", err)
				}
			}
		}
	}

	r.ExDates = p.dateList(comp, ical.PropExceptionDates)
	r.RDates = p.dateList(comp, ical.PropRecurrenceDates)
	r.RecurrenceID = p.temporal(comp, propRecurrenceID)
	return r
}

// text returns the unescaped property text, or the raw value when the
// text cannot be decoded
func (p *Parser) text(comp *ical.Component, name string) string {
	prop := comp.Props.Get(name)
	if prop == nil {
		return ""
	}
	if s, err := prop.Text(); err == nil {
		return s
	}
	return prop.Value
}

// temporal parses a DATE or DATE-TIME property. Unparsable values are
// treated as absent.
func (p *Parser) temporal(comp *ical.Component, name string) mo.Option[datetime.Value] {
	prop := comp.Props.Get(name)
	if prop == nil || strings.TrimSpace(prop.Value) == "" {
		return mo.None[datetime.Value]()
	}
	v, err := p.parseValue(prop, prop.Value)
	if err != nil {
		p.logger.Debug("ignoring unparsable date property", "property", name, "value", prop.Value, "error", err)
		return mo.None[datetime.Value]()
	}
	return mo.Some(v)
}

// dateList collects every value of a possibly repeated, comma-separated
// EXDATE or RDATE property
func (p *Parser) dateList(comp *ical.Component, name string) []datetime.Value {
	var out []datetime.Value
	props := comp.Props.Values(name)
	for i := range props {
		prop := &props[i]
		for _, raw := range strings.Split(prop.Value, ",") {
			raw = strings.TrimSpace(raw)
			// RDATE periods keep only their start
			if idx := strings.IndexByte(raw, '/'); idx >= 0 {
				raw = raw[:idx]
			}
			if raw == "" {
				continue
			}
			v, err := p.parseValue(prop, raw)
			if err != nil {
				p.logger.Debug("ignoring unparsable date list entry", "property", name, "value", raw, "error", err)
				continue
			}
			out = append(out, v)
		}
	}
	return out
}

func (p *Parser) parseValue(prop *ical.Prop, raw string) (datetime.Value, error) {
	dateOnly := strings.EqualFold(prop.Params.Get(ical.ParamValue), string(ical.ValueDate)) ||
		!strings.Contains(raw, "T")
	return datetime.ParseWireValue(raw, dateOnly, p.zoneOf(prop))
}

// zoneOf returns the TZID zone of prop, falling back to the parser's
// location for floating values and unknown zone names
func (p *Parser) zoneOf(prop *ical.Prop) *time.Location {
	tzid := prop.Params.Get(ical.ParamTimezoneID)
	if tzid == "" {
		return p.loc
	}
	loc, err := time.LoadLocation(tzid)
	if err != nil {
		p.logger.Debug("unknown TZID, using configured zone", "tzid", tzid, "error", err)
		return p.loc
	}
	return loc
}

// linkOverrides adds the recurrence id of every overridden instance to the
// exclusions of its master so that the override replaces it
func linkOverrides(records []*Record) {
	masters := make(map[string]*Record)
	for _, r := range records {
		if r.RRule != "" && r.RecurrenceID.IsAbsent() {
			masters[r.UID] = r
		}
	}
	for _, r := range records {
		id, ok := r.RecurrenceID.Get()
		if !ok {
			continue
		}
		if master, found := masters[r.UID]; found {
			master.ExDates = append(master.ExDates, id)
		}
		// an override describes one instance and never recurs itself
		r.RRule = ""
	}
}
