package davclient

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alp54/fastmail-caldav/internal/datetime"
	"github.com/alp54/fastmail-caldav/internal/event"
	"github.com/alp54/fastmail-caldav/internal/httpclient"
	"github.com/alp54/fastmail-caldav/internal/recurrence"
	"github.com/alp54/fastmail-caldav/internal/xml"
)

const testCalendarURL = "https://caldav.example.com/dav/calendars/user/alice@example.com/Default"

type mockPutResponse struct {
	etag string
	err  error
}

type mockRequest struct {
	method string
	url    string
	depth  httpclient.Depth
	body   []byte
}

// mockHTTPClient answers every REPORT with the same resources and records
// the requests it receives
type mockHTTPClient struct {
	reportResponse []xml.CalendarResource
	reportErr      error
	putResponse    *mockPutResponse
	deleteResponse error

	requests []mockRequest
}

func (m *mockHTTPClient) DoREPORT(ctx context.Context, url string, depth httpclient.Depth, body []byte) ([]xml.CalendarResource, error) {
	m.requests = append(m.requests, mockRequest{method: "REPORT", url: url, depth: depth, body: body})
	if m.reportErr != nil {
		return nil, m.reportErr
	}
	return m.reportResponse, nil
}

func (m *mockHTTPClient) DoPUT(ctx context.Context, url string, etag string, data []byte) (string, error) {
	m.requests = append(m.requests, mockRequest{method: "PUT", url: url, body: data})
	if m.putResponse != nil {
		return m.putResponse.etag, m.putResponse.err
	}
	return "new-etag", nil
}

func (m *mockHTTPClient) DoDELETE(ctx context.Context, url string, etag string) error {
	m.requests = append(m.requests, mockRequest{method: "DELETE", url: url})
	return m.deleteResponse
}

func (m *mockHTTPClient) ResolveURL(url string) (string, error) {
	return url, nil
}

func (m *mockHTTPClient) methods() []string {
	out := make([]string, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, r.method)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixedNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

// newMockClient builds a client around mock in the given location
func newMockClient(mock *mockHTTPClient, loc *time.Location) *davClient {
	logger := discardLogger()
	codec := datetime.NewCodec(loc)
	return &davClient{
		httpClient:  mock,
		calendarURL: testCalendarURL,
		depth:       httpclient.DepthInfinity,
		codec:       codec,
		parser:      event.NewParser(codec.Location(), logger),
		engine:      recurrence.NewEngine(codec, recurrence.DefaultExpansionOptions, logger),
		serializer:  event.NewSerializer(codec),
		logger:      logger,
		now:         func() time.Time { return fixedNow },
	}
}
