package httpclient

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

type mockTransport struct {
	response *http.Response
	err      error
	request  *http.Request
}

func (m *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.request = req
	return m.response, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestWrapper starts a server with handler and returns a wrapper whose
// base URL points at it
func newTestWrapper(t *testing.T, handler http.HandlerFunc) (*httpClientWrapper, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	baseURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	return &httpClientWrapper{
		client:  server.Client(),
		baseURL: *baseURL,
		logger:  discardLogger(),
	}, server
}
