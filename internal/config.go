// Package internal provides the application configuration and the serve
// runtime wiring.
package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Source   SourceConfig      `yaml:"source"`
	Docs     DocsConfig        `yaml:"docs"`
	Health   HealthConfig      `yaml:"health"`
	Baseline BaselineConfig    `yaml:"baseline"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := c.Docs.Validate(); err != nil {
		return err
	}
	if err := c.Health.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// HTTPConfig holds HTTP server configuration for the serve command.
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

// SourceConfig holds the source tree to scan for annotations.
type SourceConfig struct {
	Root    string   `yaml:"root"`
	Exclude []string `yaml:"exclude"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// DocsConfig holds the documentation root the artifact registry is built from.
type DocsConfig struct {
	Root string `yaml:"root"`
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// HealthConfig holds scoring and drift thresholds.
type HealthConfig struct {
	StalenessThreshold time.Duration `yaml:"staleness_threshold"`
	DriftTolerance     time.Duration `yaml:"drift_tolerance"`
}

// Validate validates the health configuration.
func (c *HealthConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.StalenessThreshold, validation.Min(time.Duration(0))),
		validation.Field(&c.DriftTolerance, validation.Min(time.Duration(0))),
	)
}

// BaselineConfig holds the content-hash baseline database. An empty path
// disables the store, which degrades drift detection to suspected-only.
type BaselineConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration for the serve command.
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

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Source: SourceConfig{
			Root:    ".",
			Exclude: []string{"node_modules", "vendor", "dist", "build"},
		},
		Docs: DocsConfig{
			Root: "./docs",
		},
		Health: HealthConfig{
			StalenessThreshold: 24 * time.Hour,
			DriftTolerance:     2 * time.Second,
		},
		Baseline: BaselineConfig{
			Path: "./.ccd-baseline.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
