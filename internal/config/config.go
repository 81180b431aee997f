// Package config loads client settings from an optional YAML file and the
// CALDAV_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alp54/fastmail-caldav/internal/httpclient"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding file settings
const (
	EnvURL            = "CALDAV_URL"
	EnvCalendarPath   = "CALDAV_CALENDAR_PATH"
	EnvUsername       = "CALDAV_USERNAME"
	EnvPassword       = "CALDAV_PASSWORD"
	EnvTimezone       = "CALDAV_TIMEZONE"
	EnvTimeout        = "CALDAV_TIMEOUT"
	EnvDepth          = "CALDAV_DEPTH"
	EnvLogLevel       = "CALDAV_LOG_LEVEL"
	EnvMaxOccurrences = "CALDAV_MAX_OCCURRENCES"
)

const (
	defaultTimezone       = "Local"
	defaultTimeout        = 30 * time.Second
	defaultDepth          = string(httpclient.DepthInfinity)
	defaultLogLevel       = "info"
	defaultMaxOccurrences = 1000
)

// Config is the top-level client configuration.
type Config struct {
	// URL is the server origin, e.g. https://caldav.fastmail.com
	URL string `yaml:"url"`
	// CalendarPath is the calendar collection, absolute or relative to URL
	CalendarPath string `yaml:"calendar_path"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// Timezone is the IANA zone used to read input times and render output.
	// "Local" means the system zone.
	Timezone string `yaml:"timezone"`

	Timeout time.Duration `yaml:"timeout"`

	// Depth is the Depth header of query requests: 0, 1 or infinity
	Depth string `yaml:"depth"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// MaxOccurrences caps the expansion of a single recurring event
	MaxOccurrences int `yaml:"max_occurrences"`
}

// DefaultConfig returns an in-memory default configuration without
// server or credentials.
func DefaultConfig() *Config {
	return &Config{
		Timezone:       defaultTimezone,
		Timeout:        defaultTimeout,
		Depth:          defaultDepth,
		LogLevel:       defaultLogLevel,
		MaxOccurrences: defaultMaxOccurrences,
	}
}

// Normalize fills in missing values with defaults
func (c *Config) Normalize() {
	c.URL = strings.TrimSpace(c.URL)
	c.CalendarPath = strings.TrimSpace(c.CalendarPath)
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Depth == "" {
		c.Depth = defaultDepth
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = defaultMaxOccurrences
	}
}

// Validate reports the first setting that cannot work
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("server url is required")
	}
	if c.Username == "" || c.Password == "" {
		return errors.New("username and password are required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := httpclient.ParseDepth(c.Depth); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SlogLevel maps LogLevel onto slog
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// ApplyEnv overlays the CALDAV_* variables returned by lookup. Pass
// os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvURL, &c.URL)
	set(EnvCalendarPath, &c.CalendarPath)
	set(EnvUsername, &c.Username)
	set(EnvPassword, &c.Password)
	set(EnvTimezone, &c.Timezone)
	set(EnvDepth, &c.Depth)
	set(EnvLogLevel, &c.LogLevel)

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvMaxOccurrences); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxOccurrences, v, err)
		}
		c.MaxOccurrences = n
	}
	return nil
}

// Parse decodes YAML configuration data
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when path is empty), then the environment. The result is
// normalized and validated.
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if cfg, err = Parse(data); err != nil {
			return nil, err
		}
	}
	if lookup != nil {
		if err := cfg.ApplyEnv(lookup); err != nil {
			return nil, err
		}
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
