// Package davclient is a CalDAV client for a single calendar collection:
// it queries events (expanding recurring ones), creates, updates and
// deletes them, and lists the account's calendars.
package davclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alp54/fastmail-caldav/internal/caldaverr"
	"github.com/alp54/fastmail-caldav/internal/datetime"
	"github.com/alp54/fastmail-caldav/internal/event"
	"github.com/alp54/fastmail-caldav/internal/httpclient"
	"github.com/alp54/fastmail-caldav/internal/recurrence"
	"github.com/samber/mo"
)

// Types shared with the internal packages
type (
	Occurrence = event.Occurrence
	Record     = event.Record
	EventJSON  = event.JSON
	Error      = caldaverr.Error
	ErrorType  = caldaverr.ErrorType
)

// Error types, see caldaverr
const (
	ErrInvalidArgument   = caldaverr.ErrInvalidArgument
	ErrTransport         = caldaverr.ErrTransport
	ErrRemoteRejected    = caldaverr.ErrRemoteRejected
	ErrMalformedResponse = caldaverr.ErrMalformedResponse
	ErrMalformedCalendar = caldaverr.ErrMalformedCalendar
	ErrRecurrenceRule    = caldaverr.ErrRecurrenceRule
	ErrNotFound          = caldaverr.ErrNotFound
)

// IsType reports whether err is a client error of type t
func IsType(err error, t ErrorType) bool {
	return caldaverr.IsType(err, t)
}

// DAVClient interface defines the CalDAV client operations
type DAVClient interface {
	// GetAllEvents starts a fluent query over the calendar
	GetAllEvents() ObjectFilter
	QueryEvents(ctx context.Context, filter QueryFilter) ([]Occurrence, error)
	QueryEventsJSON(ctx context.Context, filter QueryFilter) ([]string, error)

	// NewDraft builds a draft from a local date and HHmm times
	NewDraft(summary, date, start, end string) (EventDraft, error)
	CreateEvent(ctx context.Context, draft EventDraft) (resourceURL string, err error)
	UpdateEvent(ctx context.Context, resourceURL string, draft EventDraft) error
	DeleteEvent(ctx context.Context, uid string) error
	ResolveURLByUID(ctx context.Context, uid string) (mo.Option[string], error)

	FindCalendars(ctx context.Context) ([]CalendarInfo, error)
}

// Config is the immutable client configuration
type Config struct {
	// ServerURL is the server origin, e.g. https://caldav.fastmail.com
	ServerURL string
	// CalendarPath is the calendar collection, absolute or relative to ServerURL
	CalendarPath string
	Username     string
	Password     string

	// Location reads input times and renders output; nil means time.Local
	Location *time.Location
	// Timeout bounds every request; zero means no client-side timeout
	Timeout time.Duration
	// Depth of query requests: "0", "1" or "infinity" (default)
	Depth string
	// MaxOccurrences caps expansion of one recurring event; zero means 1000
	MaxOccurrences int

	// HTTPClient supplies the base transport; nil means http.DefaultTransport
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type davClient struct {
	httpClient  httpclient.HttpClientWrapper
	authClient  *http.Client
	baseURL     *url.URL
	calendarURL string
	depth       httpclient.Depth

	codec      *datetime.Codec
	parser     *event.Parser
	engine     *recurrence.Engine
	serializer *event.Serializer
	logger     *slog.Logger

	now func() time.Time
}

// NewClient validates cfg and builds a client
func NewClient(cfg Config) (DAVClient, error) {
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return nil, caldaverr.New(caldaverr.ErrInvalidArgument, "server URL is required", nil)
	}
	baseURL, err := url.Parse(cfg.ServerURL)
	if err != nil || baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, caldaverr.New(caldaverr.ErrInvalidArgument, fmt.Sprintf("invalid server URL %q", cfg.ServerURL), err)
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, caldaverr.New(caldaverr.ErrInvalidArgument, "username and password are required", nil)
	}
	depth, err := httpclient.ParseDepth(cfg.Depth)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var base http.RoundTripper
	if cfg.HTTPClient != nil {
		base = cfg.HTTPClient.Transport
	}
	authClient := &http.Client{
		Transport: httpclient.NewBasicAuthTransport(cfg.Username, cfg.Password, base, logger),
		Timeout:   cfg.Timeout,
	}

	wrapper, err := httpclient.NewHttpClientWrapper(authClient, *baseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client wrapper: %w", err)
	}

	calendarURL, err := wrapper.ResolveURL(cfg.CalendarPath)
	if err != nil {
		return nil, err
	}

	opts := recurrence.DefaultExpansionOptions
	if cfg.MaxOccurrences > 0 {
		opts.MaxOccurrences = cfg.MaxOccurrences
	}

	codec := datetime.NewCodec(cfg.Location)
	return &davClient{
		httpClient:  wrapper,
		authClient:  authClient,
		baseURL:     baseURL,
		calendarURL: calendarURL,
		depth:       depth,
		codec:       codec,
		parser:      event.NewParser(codec.Location(), logger),
		engine:      recurrence.NewEngine(codec, opts, logger),
		serializer:  event.NewSerializer(codec),
		logger:      logger,
		now:         time.Now,
	}, nil
}

// NormalizeEventJSON re-presents a previously serialized event object with
// its dates in display form. Input that is not a JSON object is returned
// unchanged.
func NormalizeEventJSON(raw string) string {
	return event.NormalizeJSON(raw)
}
