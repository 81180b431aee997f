package davclient

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	valid := Config{
		ServerURL:    "https://caldav.fastmail.com",
		CalendarPath: "/dav/calendars/user/alice@example.com/Default/",
		Username:     "alice@example.com",
		Password:     "app-password",
	}

	t.Run("valid config", func(t *testing.T) {
		c, err := NewClient(valid)
		require.NoError(t, err)
		dc := c.(*davClient)
		assert.Equal(t, "https://caldav.fastmail.com/dav/calendars/user/alice@example.com/Default/", dc.calendarURL)
		assert.Equal(t, "infinity", string(dc.depth))
		assert.Equal(t, time.Local, dc.codec.Location())
	})

	t.Run("absolute calendar URL", func(t *testing.T) {
		cfg := valid
		cfg.CalendarPath = "https://other.example.com/cal/"
		cfg.Depth = "1"
		c, err := NewClient(cfg)
		require.NoError(t, err)
		dc := c.(*davClient)
		assert.Equal(t, "https://other.example.com/cal/", dc.calendarURL)
		assert.Equal(t, "1", string(dc.depth))
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing server", mutate: func(c *Config) { c.ServerURL = "" }},
		{name: "relative server", mutate: func(c *Config) { c.ServerURL = "caldav.fastmail.com" }},
		{name: "missing username", mutate: func(c *Config) { c.Username = "" }},
		{name: "missing password", mutate: func(c *Config) { c.Password = "" }},
		{name: "bad depth", mutate: func(c *Config) { c.Depth = "2" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := NewClient(cfg)
			require.Error(t, err)
			assert.True(t, IsType(err, ErrInvalidArgument))
			assert.True(t, errors.Is(err, &Error{Type: ErrInvalidArgument}))
		})
	}
}

func TestNormalizeEventJSON(t *testing.T) {
	assert.Equal(t, "not json", NormalizeEventJSON("not json"))
	assert.Equal(t,
		`{"uid":"a1","dtstart":"2025-06-01 09:00","dtend":"","summary":"","description":"","location":"","rrule":""}`,
		NormalizeEventJSON(`{"uid":"a1","dtstart":"20250601T090000Z"}`))
}
