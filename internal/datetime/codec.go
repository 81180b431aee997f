package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alp54/fastmail-caldav/internal/caldaverr"
	"github.com/samber/mo"
)

const (
	// WireLayout is the compact UTC timestamp used in time-range filters and PUT bodies
	WireLayout         = "20060102T150405Z"
	wireFloatingLayout = "20060102T150405"
	wireDateLayout     = "20060102"

	DisplayLayout     = "2006-01-02 15:04"
	DisplayDateLayout = "2006-01-02"
	QueryDateLayout   = "2006-01-02"
)

// Codec renders and parses values relative to a display location, which is
// the caller's local zone.
type Codec struct {
	loc *time.Location
}

// NewCodec creates a codec for loc. A nil loc means time.Local.
func NewCodec(loc *time.Location) *Codec {
	if loc == nil {
		loc = time.Local
	}
	return &Codec{loc: loc}
}

func (c *Codec) Location() *time.Location {
	return c.loc
}

// ParseQueryDate parses a YYYY-MM-DD date as local midnight
func (c *Codec) ParseQueryDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(QueryDateLayout, strings.TrimSpace(date), c.loc)
	if err != nil {
		return time.Time{}, caldaverr.New(caldaverr.ErrInvalidArgument,
			fmt.Sprintf("date %q must be YYYY-MM-DD", date), err)
	}
	return t, nil
}

// DayWindow returns the closed-open window [day 00:00, day+1 00:00) in local time
func (c *Codec) DayWindow(day time.Time) (start, end time.Time) {
	y, m, d := day.In(c.loc).Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, c.loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseLocalDateTime combines a YYYY-MM-DD date and an optional HHmm or
// HH:mm time into a local instant. An empty time means midnight.
func (c *Codec) ParseLocalDateTime(date, hhmm string) (time.Time, error) {
	if strings.TrimSpace(date) == "" {
		return time.Time{}, caldaverr.New(caldaverr.ErrInvalidArgument, "date is required", nil)
	}
	day, err := c.ParseQueryDate(date)
	if err != nil {
		return time.Time{}, err
	}

	hhmm = strings.TrimSpace(hhmm)
	if hhmm == "" {
		return day, nil
	}
	if len(hhmm) == 5 && hhmm[2] == ':' {
		hhmm = hhmm[:2] + hhmm[3:]
	}
	if len(hhmm) != 4 {
		return time.Time{}, caldaverr.New(caldaverr.ErrInvalidArgument,
			fmt.Sprintf("time %q must be in HHmm format", hhmm), nil)
	}
	hour, herr := strconv.Atoi(hhmm[:2])
	minute, merr := strconv.Atoi(hhmm[2:])
	if herr != nil || merr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, caldaverr.New(caldaverr.ErrInvalidArgument,
			fmt.Sprintf("time %q is not a valid HHmm time", hhmm), nil)
	}

	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, c.loc), nil
}

// ToWireInstant interprets date and time in the local zone and returns the
// compact UTC wire timestamp.
func (c *Codec) ToWireInstant(date, hhmm string) (string, error) {
	t, err := c.ParseLocalDateTime(date, hhmm)
	if err != nil {
		return "", err
	}
	return WireTimestamp(t), nil
}

// WireTimestamp formats t as YYYYMMDDTHHMMSSZ
func WireTimestamp(t time.Time) string {
	return t.UTC().Format(WireLayout)
}

// Format renders v for display: "yyyy-MM-dd HH:mm" in the local zone for
// timed values, "yyyy-MM-dd" for all-day values. All-day values are read
// from their UTC date so that local-zone offsets never move them a day.
func (c *Codec) Format(v Value) string {
	switch v.Kind() {
	case KindDate:
		return v.Time().UTC().Format(DisplayDateLayout)
	case KindInstant:
		return v.Time().In(c.loc).Format(DisplayLayout)
	}
	return ""
}

// FormatOption renders an optional value, "" when absent
func (c *Codec) FormatOption(v mo.Option[Value]) string {
	if val, ok := v.Get(); ok {
		return c.Format(val)
	}
	return ""
}

// ParseWireValue parses a raw wire date or date-time. A trailing Z means
// UTC; otherwise date-times are read in loc (the TZID zone, or the local
// zone for floating values).
func ParseWireValue(raw string, dateOnly bool, loc *time.Location) (Value, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.UTC
	}
	if dateOnly || !strings.Contains(raw, "T") {
		t, err := time.Parse(wireDateLayout, raw)
		if err != nil {
			return Value{}, fmt.Errorf("invalid date %q: %w", raw, err)
		}
		return DateOf(t), nil
	}
	if strings.HasSuffix(raw, "Z") {
		t, err := time.Parse(WireLayout, raw)
		if err != nil {
			return Value{}, fmt.Errorf("invalid date-time %q: %w", raw, err)
		}
		return Instant(t), nil
	}
	t, err := time.ParseInLocation(wireFloatingLayout, raw, loc)
	if err != nil {
		return Value{}, fmt.Errorf("invalid date-time %q: %w", raw, err)
	}
	return Instant(t), nil
}

var looseLayouts = []string{
	WireLayout,
	wireFloatingLayout,
	"2006-01-02 15:04:05",
	DisplayLayout,
}

// NormalizeLooseDateString re-renders an already serialized date string as
// "yyyy-MM-dd HH:mm". Strings matching none of the known layouts (including
// date-only display strings) are returned unchanged.
func NormalizeLooseDateString(s string) string {
	if s == "" {
		return s
	}
	for _, layout := range looseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DisplayLayout)
		}
	}
	return s
}

// IsDegenerate reports whether a rendered start is unusable: empty, or a
// placeholder in year 1 such as "0001-01-01 01:05" or "0001-12-30".
func IsDegenerate(rendered string) bool {
	return rendered == "" || strings.HasPrefix(rendered, "0001-")
}
