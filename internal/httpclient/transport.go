package httpclient

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// UserAgent is sent on every request that does not set its own
const UserAgent = "fastmail-caldav/1.0"

// BasicAuthTransport implements http.RoundTripper and adds Basic Auth
// credentials to outgoing requests. Request and response bodies are logged
// at debug level.
type BasicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewBasicAuthTransport creates a new BasicAuthTransport. A nil transport
// means http.DefaultTransport, a nil logger discards output.
func NewBasicAuthTransport(username, password string, transport http.RoundTripper, logger *slog.Logger) *BasicAuthTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &BasicAuthTransport{
		Username:  username,
		Password:  password,
		Transport: transport,
		Logger:    logger,
	}
}

// RoundTrip implements http.RoundTripper
func (t *BasicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Username == "" {
		return nil, errors.New("basic auth username cannot be empty")
	}
	if t.Password == "" {
		return nil, errors.New("basic auth password cannot be empty")
	}
	if t.Transport == nil {
		return nil, errors.New("transport cannot be nil")
	}

	// RoundTrippers must not modify the caller's request
	out := req.Clone(req.Context())
	if out.Header.Get("User-Agent") == "" {
		out.Header.Set("User-Agent", UserAgent)
	}
	out.SetBasicAuth(t.Username, t.Password)

	// bodies are only buffered when they will be logged
	if !t.Logger.Enabled(req.Context(), slog.LevelDebug) {
		return t.Transport.RoundTrip(out)
	}

	reqBody, err := peekBody(&out.Body)
	if err != nil {
		return nil, err
	}
	t.Logger.Debug("outgoing request",
		"method", out.Method,
		"url", out.URL.String(),
		"depth", out.Header.Get("Depth"),
		"body", reqBody)

	resp, err := t.Transport.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	respBody, err := peekBody(&resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	t.Logger.Debug("incoming response",
		"status", resp.Status,
		"content_type", resp.Header.Get("Content-Type"),
		"body", respBody)

	return resp, nil
}

// peekBody reads *body fully and replaces it with an equivalent reader
func peekBody(body *io.ReadCloser) (string, error) {
	if *body == nil || *body == http.NoBody {
		return "", nil
	}
	data, err := io.ReadAll(*body)
	(*body).Close()
	if err != nil {
		return "", err
	}
	*body = io.NopCloser(bytes.NewReader(data))
	return string(data), nil
}
