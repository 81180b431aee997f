package davclient

import (
	"context"
	"strings"

	"github.com/alp54/fastmail-caldav/internal/caldaverr"
	"github.com/samber/mo"
)

// ResolveURLByUID finds the resource holding the event with the given UID.
// The server's UID text-match is a substring match, so only a resource
// whose parsed UID is equal to uid counts.
func (c *davClient) ResolveURLByUID(ctx context.Context, uid string) (mo.Option[string], error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return mo.None[string](), caldaverr.New(caldaverr.ErrInvalidArgument, "uid is required", nil)
	}

	resources, err := c.report(ctx, uidQuery(uid))
	if err != nil {
		return mo.None[string](), err
	}

	for _, res := range resources {
		records, err := c.parser.Parse(res.Data)
		if err != nil {
			c.logger.Warn("skipping calendar block", "href", res.Href, "error", err)
			continue
		}
		for _, rec := range records {
			if rec.UID == uid {
				return mo.Some(res.Href), nil
			}
		}
	}

	c.logger.Debug("uid not found", "uid", uid, "candidates", len(resources))
	return mo.None[string](), nil
}
