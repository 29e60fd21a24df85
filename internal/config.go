package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ontrack/internal/track"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Data   DataConfig        `yaml:"data"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Track  TrackConfig       `yaml:"track"`
	Events EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Track.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig holds the path to the directory of roster dataset files.
type DataConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// TrackConfig holds the on-track criteria.
type TrackConfig struct {
	// MinCodewarsScore is exclusive: a student needs a total above it.
	MinCodewarsScore int `yaml:"min_codewars_score"`
}

// Validate validates the track configuration.
func (c *TrackConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MinCodewarsScore, validation.Min(0)),
	)
}

// Classifier returns the classifier for the configured criteria.
func (c *TrackConfig) Classifier() track.Classifier {
	return track.Classifier{MinCodewarsScore: c.MinCodewarsScore}
}

// EventsConfig holds live update settings.
type EventsConfig struct {
	// TrendThrottle is the minimum interval between trend.updated events.
	TrendThrottle time.Duration `yaml:"trend_throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TrendThrottle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Data: DataConfig{
			Path: "./data",
		},
		SQLite: SQLiteConfig{
			Path: "./ontrack.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Track: TrackConfig{
			MinCodewarsScore: track.DefaultMinCodewarsScore,
		},
		Events: EventsConfig{
			TrendThrottle: 2 * time.Second,
		},
	}
}
