package httpclient

import (
	"context"
	"net/http"

	"github.com/alp54/fastmail-caldav/internal/xml"
)

// DoREPORT executes a CalDAV REPORT request
func (c *httpClientWrapper) DoREPORT(ctx context.Context, urlStr string, depth Depth, body []byte) ([]xml.CalendarResource, error) {
	c.logger.Debug("starting REPORT request",
		"url", urlStr,
		"depth", depth,
		"body_length", len(body))

	header := http.Header{}
	header.Set("Content-Type", "application/xml; charset=utf-8")
	header.Set("Depth", string(depth))

	_, _, respBody, err := c.send(ctx, "REPORT", urlStr, header, body)
	if err != nil {
		return nil, err
	}

	ms, err := xml.ParseMultistatus(respBody)
	if err != nil {
		c.logger.Debug("failed to decode response", "error", err)
		return nil, err
	}

	resources := ms.CalendarResources()
	for i := range resources {
		abs, err := c.ResolveURL(resources[i].Href)
		if err != nil {
			c.logger.Warn("skipping unresolvable href", "href", resources[i].Href, "error", err)
			continue
		}
		resources[i].Href = abs
	}

	c.logger.Debug("REPORT request complete",
		"response_count", len(ms.Responses),
		"resource_count", len(resources))
	return resources, nil
}
