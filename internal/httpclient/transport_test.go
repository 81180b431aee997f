package httpclient

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicAuthTransport(t *testing.T) {
	mock := &mockTransport{
		response: &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("reply")),
		},
	}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	transport := NewBasicAuthTransport("alice", "secret", mock, logger)

	req, err := http.NewRequest("REPORT", "https://caldav.example.com/cal/", strings.NewReader("<q/>"))
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)

	user, pass, ok := mock.request.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, UserAgent, mock.request.Header.Get("User-Agent"))

	// the caller's request is left untouched
	_, _, ok = req.BasicAuth()
	assert.False(t, ok)

	sent, _ := io.ReadAll(mock.request.Body)
	assert.Equal(t, "<q/>", string(sent))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "reply", string(body))

	assert.Contains(t, logs.String(), "outgoing request")
	assert.Contains(t, logs.String(), "incoming response")
	assert.NotContains(t, logs.String(), "secret")
}

func TestBasicAuthTransport_MissingCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		wantErr  string
	}{
		{name: "no username", password: "p", wantErr: "username cannot be empty"},
		{name: "no password", username: "u", wantErr: "password cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockTransport{}
			transport := NewBasicAuthTransport(tt.username, tt.password, mock, nil)
			req, _ := http.NewRequest(http.MethodGet, "https://caldav.example.com/", nil)

			_, err := transport.RoundTrip(req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Nil(t, mock.request, "inner transport must not be called")
		})
	}
}

func TestNewBasicAuthTransport_Defaults(t *testing.T) {
	transport := NewBasicAuthTransport("u", "p", nil, nil)
	assert.Equal(t, http.DefaultTransport, transport.Transport)
	assert.NotNil(t, transport.Logger)
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestBasicAuthTransport_NoBufferingAboveDebug(t *testing.T) {
	respBody := &trackingBody{Reader: strings.NewReader("reply")}
	mock := &mockTransport{
		response: &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Header:     http.Header{},
			Body:       respBody,
		},
	}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	transport := NewBasicAuthTransport("alice", "secret", mock, logger)

	reqBody := &trackingBody{Reader: strings.NewReader("<q/>")}
	req, err := http.NewRequest("REPORT", "https://caldav.example.com/cal/", reqBody)
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)

	_, _, ok := mock.request.BasicAuth()
	assert.True(t, ok)
	assert.Same(t, reqBody, mock.request.Body)
	assert.False(t, reqBody.closed)
	assert.Same(t, respBody, resp.Body)
	assert.False(t, respBody.closed)
	assert.Empty(t, logs.String())
}
