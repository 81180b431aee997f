package davclient

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/alp54/fastmail-caldav/internal/caldaverr"
	"github.com/alp54/fastmail-caldav/internal/event"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/samber/mo"
)

// EventDraft is the content of an event to create or replace
type EventDraft struct {
	Summary string
	Start   time.Time
	End     time.Time
}

func (d EventDraft) validate() error {
	if d.Start.IsZero() || d.End.IsZero() {
		return caldaverr.New(caldaverr.ErrInvalidArgument, "event start and end are required", nil)
	}
	if d.End.Before(d.Start) {
		return caldaverr.New(caldaverr.ErrInvalidArgument, "event end is before its start", nil)
	}
	return nil
}

// NewDraft interprets date and the HHmm (or HH:mm) times in the client's
// location
func (c *davClient) NewDraft(summary, date, start, end string) (EventDraft, error) {
	s, err := c.codec.ParseLocalDateTime(date, start)
	if err != nil {
		return EventDraft{}, err
	}
	e, err := c.codec.ParseLocalDateTime(date, end)
	if err != nil {
		return EventDraft{}, err
	}
	d := EventDraft{Summary: summary, Start: s, End: e}
	return d, d.validate()
}

// eventToBytes renders a draft as a VCALENDAR document. Times are written
// in UTC. The UID is omitted when uid is absent.
func eventToBytes(d EventDraft, uid mo.Option[string], stamp time.Time) ([]byte, error) {
	id, keepUID := uid.Get()
	if !keepUID {
		// the encoder insists on a UID; a throwaway one is written and
		// its content line removed afterwards
		id = uuid.NewString()
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, event.ProdID)

	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, id)
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeStart, d.Start.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeEnd, d.End.UTC())
	ev.Props.SetText(ical.PropSummary, d.Summary)
	cal.Children = append(cal.Children, ev.Component)

	var buf bytes.Buffer
	enc := ical.NewEncoder(&buf)
	if err := enc.Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}

	data := buf.Bytes()
	if !keepUID {
		line := []byte(ical.PropUID + ":" + id + "\r\n")
		if !bytes.Contains(data, line) {
			return nil, fmt.Errorf("failed to encode calendar: UID line not found")
		}
		data = bytes.Replace(data, line, nil, 1)
	}
	return data, nil
}

// collectionURL returns the calendar URL with a trailing slash so that
// relative resource names resolve inside it
func (c *davClient) collectionURL() (*url.URL, error) {
	raw := c.calendarURL
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, caldaverr.New(caldaverr.ErrInvalidArgument, "failed to parse collection URL", err)
	}
	return u, nil
}

// CreateEvent stores a new event under a fresh resource name and returns
// its absolute URL
func (c *davClient) CreateEvent(ctx context.Context, draft EventDraft) (string, error) {
	if err := draft.validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	base, err := c.collectionURL()
	if err != nil {
		return "", err
	}
	objectURL := base.ResolveReference(&url.URL{Path: id + ".ics"}).String()

	data, err := eventToBytes(draft, mo.Some(id), c.now())
	if err != nil {
		return "", err
	}
	if _, err := c.httpClient.DoPUT(ctx, objectURL, "", data); err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}

	c.logger.Info("event created", "url", objectURL, "uid", id)
	return objectURL, nil
}

// UpdateEvent replaces the event stored at resourceURL. The document has no
// UID; the server keeps the identity of the resource.
func (c *davClient) UpdateEvent(ctx context.Context, resourceURL string, draft EventDraft) error {
	if strings.TrimSpace(resourceURL) == "" {
		return caldaverr.New(caldaverr.ErrInvalidArgument, "resource URL is required", nil)
	}
	if err := draft.validate(); err != nil {
		return err
	}

	data, err := eventToBytes(draft, mo.None[string](), c.now())
	if err != nil {
		return err
	}
	if _, err := c.httpClient.DoPUT(ctx, resourceURL, "", data); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	c.logger.Info("event updated", "url", resourceURL)
	return nil
}

// DeleteEvent resolves uid to its resource and deletes it. No DELETE is
// sent when nothing matches.
func (c *davClient) DeleteEvent(ctx context.Context, uid string) error {
	target, err := c.ResolveURLByUID(ctx, uid)
	if err != nil {
		return err
	}
	objectURL, ok := target.Get()
	if !ok {
		return caldaverr.New(caldaverr.ErrNotFound, fmt.Sprintf("no event with UID %q", uid), nil)
	}

	if err := c.httpClient.DoDELETE(ctx, objectURL, ""); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	c.logger.Info("event deleted", "url", objectURL, "uid", uid)
	return nil
}
