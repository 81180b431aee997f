package recurrence

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/alp54/fastmail-caldav/internal/caldaverr"
	"github.com/alp54/fastmail-caldav/internal/datetime"
	"github.com/alp54/fastmail-caldav/internal/event"
	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
)

// Parse parses rule text, with or without the "RRULE:" prefix
func Parse(text string) (Rule, error) {
	text = strings.TrimSpace(text)
	if len(text) >= 6 && strings.EqualFold(text[:6], "RRULE:") {
		text = text[6:]
	}
	text = strings.TrimSuffix(text, ";")
	if text == "" {
		return Rule{}, caldaverr.New(caldaverr.ErrRecurrenceRule, "empty recurrence rule", nil)
	}
	opt, err := rrule.StrToROption(text)
	if err != nil {
		return Rule{}, caldaverr.New(caldaverr.ErrRecurrenceRule, fmt.Sprintf("failed to parse RRULE %q", text), err)
	}
	return Rule{text: text, opt: *opt}, nil
}

// OccurrencesIn returns the start instants of the series that lie in w,
// in ascending order, with EXDATEs removed and RDATEs added.
func OccurrencesIn(rule Rule, anchor Anchor, w Window) ([]time.Time, error) {
	opt := rule.opt
	opt.Dtstart = anchor.Start
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, caldaverr.New(caldaverr.ErrRecurrenceRule, fmt.Sprintf("invalid RRULE %q", rule.text), err)
	}

	set := rrule.Set{}
	set.RRule(r)
	for _, ex := range anchor.ExDates {
		set.ExDate(ex)
	}
	for _, rd := range anchor.RDates {
		set.RDate(rd)
	}

	var out []time.Time
	for _, t := range set.Between(w.Start, w.End, true) {
		if w.Contains(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Engine expands event records against a window
type Engine struct {
	codec  *datetime.Codec
	opts   ExpansionOptions
	logger *slog.Logger
}

// NewEngine creates an engine. Degenerate occurrences are detected by
// rendering them through codec.
func NewEngine(codec *datetime.Codec, opts ExpansionOptions, logger *slog.Logger) *Engine {
	if codec == nil {
		codec = datetime.NewCodec(nil)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{codec: codec, opts: opts, logger: logger}
}

// Expand returns the occurrences of rec in w. A record without a rule
// yields its own start and end; a rule that does not parse degrades to the
// same. Occurrences without a usable start are dropped.
func (e *Engine) Expand(rec *event.Record, w Window) []event.Occurrence {
	base, ok := rec.Base()
	if !ok {
		return nil
	}
	if rec.RRule == "" {
		return e.usable([]event.Occurrence{base})
	}

	rule, err := Parse(rec.RRule)
	if err != nil {
		e.logger.Warn("treating event with invalid recurrence rule as non-recurring",
			"uid", rec.UID,
			"rrule", rec.RRule,
			"error", err)
		return e.usable([]event.Occurrence{base})
	}

	anchor, window := e.anchor(rec, base.Start, w)
	starts, err := OccurrencesIn(rule, anchor, window)
	if err != nil {
		e.logger.Warn("treating event with invalid recurrence rule as non-recurring",
			"uid", rec.UID,
			"rrule", rec.RRule,
			"error", err)
		return e.usable([]event.Occurrence{base})
	}

	if limit := e.opts.MaxOccurrences; limit > 0 && len(starts) > limit {
		e.logger.Warn("recurrence expansion truncated",
			"uid", rec.UID,
			"rrule", rec.RRule,
			"occurrences", len(starts),
			"max", limit)
		starts = starts[:limit]
	}

	duration := rec.Duration()
	out := make([]event.Occurrence, 0, len(starts))
	for _, t := range starts {
		start := base.Start.At(t)
		occ := event.Occurrence{Record: rec, Start: start, End: mo.None[datetime.Value]()}
		switch d, hasEnd := duration.Get(); {
		case hasEnd:
			occ.End = mo.Some(start.Add(d))
		case start.IsAllDay():
			occ.End = mo.Some(start.AddDays(1))
		}
		out = append(out, occ)
	}
	return e.usable(out)
}

// anchor builds the rrule anchor. All-day series are expanded on UTC
// midnights against the window's calendar dates.
func (e *Engine) anchor(rec *event.Record, start datetime.Value, w Window) (Anchor, Window) {
	a := Anchor{Start: start.Time()}
	for _, ex := range rec.ExDates {
		a.ExDates = append(a.ExDates, e.align(start, ex))
	}
	for _, rd := range rec.RDates {
		a.RDates = append(a.RDates, e.align(start, rd))
	}
	if start.IsAllDay() {
		w = Window{Start: datetime.CivilUTC(w.Start.In(e.codec.Location())), End: datetime.CivilUTC(w.End.In(e.codec.Location()))}
	}
	return a, w
}

// align converts an EXDATE or RDATE to the representation of the series
// start so that exclusions compare equal to generated instances
func (e *Engine) align(start, v datetime.Value) time.Time {
	switch {
	case start.IsAllDay():
		return datetime.CivilUTC(v.Time())
	case v.IsAllDay():
		// a date-only exclusion of a timed series removes that day's instance
		y, m, d := v.Time().UTC().Date()
		s := start.Time()
		return time.Date(y, m, d, s.Hour(), s.Minute(), s.Second(), 0, s.Location())
	}
	return v.Time()
}

func (e *Engine) usable(in []event.Occurrence) []event.Occurrence {
	out := in[:0]
	for _, o := range in {
		if datetime.IsDegenerate(e.codec.Format(o.Start)) {
			continue
		}
		out = append(out, o)
	}
	return out
}
