package httpclient

import (
	"context"
	"net/http"
)

// DoPUT uploads a calendar object. A non-empty etag is sent as If-Match.
func (c *httpClientWrapper) DoPUT(ctx context.Context, urlStr string, etag string, data []byte) (newEtag string, err error) {
	c.logger.Debug("starting PUT request",
		"url", urlStr,
		"etag", etag,
		"data_length", len(data))

	header := http.Header{}
	header.Set("Content-Type", "text/calendar; charset=utf-8")
	if etag != "" {
		header.Set("If-Match", etag)
	}

	status, respHeader, _, err := c.send(ctx, http.MethodPut, urlStr, header, data)
	if err != nil {
		return "", err
	}

	newEtag = respHeader.Get("ETag")
	c.logger.Debug("PUT request complete",
		"status_code", status,
		"new_etag", newEtag)
	return newEtag, nil
}
