package httpclient

import (
	"context"
	"net/http"
)

// DoDELETE sends a DELETE request, with If-Match when etag is set
func (c *httpClientWrapper) DoDELETE(ctx context.Context, urlStr string, etag string) error {
	c.logger.Debug("starting DELETE request",
		"url", urlStr,
		"etag", etag)

	header := http.Header{}
	if etag != "" {
		header.Set("If-Match", etag)
	}

	status, _, _, err := c.send(ctx, http.MethodDelete, urlStr, header, nil)
	if err != nil {
		return err
	}

	c.logger.Debug("DELETE request complete", "status_code", status)
	return nil
}
