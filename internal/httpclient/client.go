// Package httpclient executes the WebDAV methods the calendar client needs
// and maps HTTP outcomes onto the caldaverr taxonomy.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alp54/fastmail-caldav/internal/caldaverr"
	"github.com/alp54/fastmail-caldav/internal/xml"
)

// Depth is the value of the WebDAV Depth header
type Depth string

const (
	DepthZero     Depth = "0"
	DepthOne      Depth = "1"
	DepthInfinity Depth = "infinity"
)

// ParseDepth validates a configured depth value
func ParseDepth(s string) (Depth, error) {
	switch d := Depth(s); d {
	case DepthZero, DepthOne, DepthInfinity:
		return d, nil
	case "":
		return DepthInfinity, nil
	}
	return "", caldaverr.New(caldaverr.ErrInvalidArgument, fmt.Sprintf("invalid depth %q", s), nil)
}

// HttpClientWrapper wraps http.Client with CalDAV-specific functionality
type HttpClientWrapper interface {
	// DoREPORT sends a REPORT and returns the calendar objects of the
	// multistatus reply, with hrefs made absolute.
	DoREPORT(ctx context.Context, url string, depth Depth, body []byte) ([]xml.CalendarResource, error)
	DoPUT(ctx context.Context, url string, etag string, data []byte) (newEtag string, err error)
	DoDELETE(ctx context.Context, url string, etag string) error
	// ResolveURL makes url absolute against the server base URL
	ResolveURL(url string) (string, error)
}

type httpClientWrapper struct {
	client  *http.Client
	baseURL url.URL
	logger  *slog.Logger
}

// NewHttpClientWrapper creates a new client wrapper around an already
// authenticated http.Client
func NewHttpClientWrapper(client *http.Client, baseURL url.URL, logger *slog.Logger) (HttpClientWrapper, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &httpClientWrapper{client: client, baseURL: baseURL, logger: logger}, nil
}

// resolveURL resolves a URL string against the base URL
func (c *httpClientWrapper) resolveURL(urlStr string) (*url.URL, error) {
	ref, err := url.Parse(urlStr)
	if err != nil {
		return nil, caldaverr.New(caldaverr.ErrInvalidArgument, fmt.Sprintf("failed to parse URL %q", urlStr), err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

func (c *httpClientWrapper) ResolveURL(urlStr string) (string, error) {
	u, err := c.resolveURL(urlStr)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// send executes one request and returns the status and the fully drained
// body. Non-2xx replies become remote_rejected errors.
func (c *httpClientWrapper) send(ctx context.Context, method, urlStr string, header http.Header, body []byte) (int, http.Header, []byte, error) {
	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		c.logger.Debug("failed to resolve URL", "url", urlStr, "error", err)
		return 0, nil, nil, err
	}
	c.logger.Debug("resolved URL", "method", method, "url", resolvedURL.String())

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, resolvedURL.String(), reader)
	if err != nil {
		return 0, nil, nil, caldaverr.New(caldaverr.ErrInvalidArgument, "failed to create "+method+" request", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "error", err)
		return 0, nil, nil, caldaverr.New(caldaverr.ErrTransport, method+" request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, resp.Header, nil, caldaverr.New(caldaverr.ErrTransport, "failed to read "+method+" response", err)
	}
	c.logger.Debug("received response", "method", method, "status", resp.Status, "body_length", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("unexpected status code",
			"method", method,
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return resp.StatusCode, resp.Header, respBody,
			caldaverr.Rejected(method+" "+resolvedURL.String()+" failed", resp.StatusCode, string(respBody))
	}

	return resp.StatusCode, resp.Header, respBody, nil
}
