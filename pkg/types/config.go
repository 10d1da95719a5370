// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "biosearch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ClientConfig holds settings for talking to the BioSearch search endpoint.
type ClientConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// ServerURL is the base URL of the search service; requests go to
	// ServerURL + "/search".
	ServerURL string `json:"server_url" yaml:"server_url" mapstructure:"server_url"`

	// APIToken is sent as a bearer token when set. It is usually loaded
	// from the biosearch-api-token secret rather than the config file.
	APIToken string `json:"-" yaml:"api_token,omitempty" mapstructure:"api_token"`

	// RateLimitRetries is how many times an HTTP 429 is retried. Zero sends
	// each search exactly once.
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries" mapstructure:"rate_limit_retries"`
}

// DatabaseOption is one selectable database on the search form.
type DatabaseOption struct {
	// Value is the form value sent to the search endpoint (e.g. "ncbi").
	Value string `json:"value" yaml:"value" mapstructure:"value"`

	// Label is the display name (e.g. "NCBI").
	Label string `json:"label" yaml:"label" mapstructure:"label"`

	// Checked marks the option as selected when the page loads.
	Checked bool `json:"checked" yaml:"checked" mapstructure:"checked"`
}

// ServeConfig holds settings for the web UI.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// Databases are the checkboxes shown on the search form.
	Databases []DatabaseOption `json:"databases" yaml:"databases" mapstructure:"databases"`

	// Examples are the clickable example query badges.
	Examples []string `json:"examples" yaml:"examples" mapstructure:"examples"`

	// AllowedOrigins configures CORS for the UI routes.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// NotifyConfig holds settings for the notification center.
type NotifyConfig struct {
	// TTL is how long a notification stays before it expires (default 3s).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// ExportConfig holds settings for result export.
type ExportConfig struct {
	// Dir is the directory export files are written to (default ".").
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// RenderConfig holds settings for the result renderer.
type RenderConfig struct {
	// LayoutsFile is an optional YAML file registering extra database layouts.
	LayoutsFile string `json:"layouts_file" yaml:"layouts_file" mapstructure:"layouts_file"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	// Level is a zerolog level name (default "info").
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console", "json", or "" to pick by terminal detection.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// AppConfig groups the configuration of every component.
type AppConfig struct {
	Client ClientConfig `json:"client" yaml:"client" mapstructure:"client"`
	Serve  ServeConfig  `json:"serve" yaml:"serve" mapstructure:"serve"`
	Notify NotifyConfig `json:"notify" yaml:"notify" mapstructure:"notify"`
	Export ExportConfig `json:"export" yaml:"export" mapstructure:"export"`
	Render RenderConfig `json:"render" yaml:"render" mapstructure:"render"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}
