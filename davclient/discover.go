package davclient

import (
	"context"
	"fmt"

	"github.com/emersion/go-webdav/caldav"
)

// CalendarInfo describes one calendar collection of the account
type CalendarInfo struct {
	Path        string
	Name        string
	Description string
}

// FindCalendars lists calendars via principal, calendar-home-set and the
// home's children, authenticated the same way as every other request
func (c *davClient) FindCalendars(ctx context.Context) ([]CalendarInfo, error) {
	client, err := caldav.NewClient(c.authClient, c.baseURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find current-user-principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar-home-set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendars := make([]CalendarInfo, 0, len(cals))
	for _, cal := range cals {
		calendars = append(calendars, CalendarInfo{
			Path:        cal.Path,
			Name:        cal.Name,
			Description: cal.Description,
		})
	}
	c.logger.Debug("calendars found", "home", homeSet, "count", len(calendars))
	return calendars, nil
}
