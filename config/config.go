// Package config provides configuration management for grammarpost.
package config

import (
	"fmt"
	"sort"
	"time"
)

// Config is the global configuration for grammarpost.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Server is the server configuration.
	Server ServerConfig `mapstructure:"server" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Dify is the grammar workflow provider configuration.
	Dify DifyConfig `mapstructure:"dify"`

	// Twitter is the social provider configuration.
	Twitter TwitterConfig `mapstructure:"twitter"`

	// Metrics is the observability configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Tracing is the distributed tracing configuration.
	Tracing TracingConfig `mapstructure:"tracing"`

	// UI is the embedded web form configuration.
	UI UIConfig `mapstructure:"ui"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"env"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	// Host is the bind address.
	Host string `mapstructure:"host" validate:"omitempty,hostname|ip"`

	// Port is the HTTP API port.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// APIPrefix is the path prefix of the JSON endpoints.
	APIPrefix string `mapstructure:"api_prefix" validate:"required,startswith=/"`

	// HTTP is the HTTP server configuration.
	HTTP HTTPConfig `mapstructure:"http"`

	// CORS is the CORS configuration.
	CORS CORSConfig `mapstructure:"cors"`
}

// HTTPConfig holds HTTP-specific settings.
type HTTPConfig struct {
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// RequestTimeout bounds a single request including provider calls.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`

	// MaxBodyBytes limits the size of request bodies.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"min=0"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	// Enabled enables CORS support.
	Enabled bool `mapstructure:"enabled"`

	// AllowedOrigins is the list of allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AllowedMethods is the list of allowed HTTP methods.
	AllowedMethods []string `mapstructure:"allowed_methods"`

	// AllowedHeaders is the list of allowed headers.
	AllowedHeaders []string `mapstructure:"allowed_headers"`

	// ExposedHeaders is the list of headers exposed to the client.
	ExposedHeaders []string `mapstructure:"exposed_headers"`

	// AllowCredentials indicates whether credentials are allowed.
	AllowCredentials bool `mapstructure:"allow_credentials"`

	// MaxAge is the maximum age of CORS preflight cache in seconds.
	MaxAge int `mapstructure:"max_age"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the output destination (stdout, stderr, or file path).
	Output string `mapstructure:"output"`
}

// DifyConfig holds the grammar workflow provider settings.
type DifyConfig struct {
	// APIKey is the workflow app API key. Absence fails the first call.
	APIKey string `mapstructure:"api_key"`

	// BaseURL is the provider API root.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// DefaultUser is the end-user identifier sent when the caller gives none.
	DefaultUser string `mapstructure:"default_user" validate:"required"`

	// InputKey is the workflow input variable that receives the text.
	InputKey string `mapstructure:"input_key" validate:"required"`

	// OutputKey is the workflow output field that holds the corrected text.
	OutputKey string `mapstructure:"output_key" validate:"required"`

	// Timeout bounds a single workflow run.
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}

// TwitterConfig holds the social provider settings.
type TwitterConfig struct {
	// BaseURL is the provider API root.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// ConsumerKey is the OAuth 1.0a app key.
	ConsumerKey string `mapstructure:"consumer_key"`

	// ConsumerSecret is the OAuth 1.0a app secret.
	ConsumerSecret string `mapstructure:"consumer_secret"`

	// AccessToken is the OAuth 1.0a user access token.
	AccessToken string `mapstructure:"access_token"`

	// AccessSecret is the OAuth 1.0a user access token secret.
	AccessSecret string `mapstructure:"access_secret"`

	// BearerToken is the app-only token used for tweet lookups.
	BearerToken string `mapstructure:"bearer_token"`

	// Timeout bounds a single provider call.
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`

	// MaxLength is the longest accepted tweet, in characters.
	MaxLength int `mapstructure:"max_length" validate:"min=1,max=280"`

	// OAuth2 is the user authorization flow configuration.
	OAuth2 OAuth2Config `mapstructure:"oauth2"`
}

// OAuth2Config holds OAuth 2.0 authorization-code settings.
type OAuth2Config struct {
	// ClientID is the OAuth 2.0 client identifier.
	ClientID string `mapstructure:"client_id"`

	// ClientSecret is the OAuth 2.0 client secret.
	ClientSecret string `mapstructure:"client_secret"`

	// RedirectURL is the registered callback URL.
	RedirectURL string `mapstructure:"redirect_url" validate:"omitempty,url"`

	// AuthURL is the provider authorization endpoint.
	AuthURL string `mapstructure:"auth_url" validate:"required,url"`

	// TokenURL is the provider token endpoint.
	TokenURL string `mapstructure:"token_url" validate:"required,url"`

	// Scopes are the requested scopes.
	Scopes []string `mapstructure:"scopes"`

	// StateTTL bounds how long an authorization attempt stays valid.
	StateTTL time.Duration `mapstructure:"state_ttl" validate:"min=0"`
}

// MetricsConfig holds observability settings.
type MetricsConfig struct {
	// Enabled enables metrics collection.
	Enabled bool `mapstructure:"enabled"`

	// Path is the metrics endpoint path.
	Path string `mapstructure:"path"`

	// Port is the metrics server port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// TracingConfig holds distributed tracing settings.
type TracingConfig struct {
	// Enabled enables distributed tracing.
	Enabled bool `mapstructure:"enabled"`

	// Exporter is the tracing backend protocol.
	Exporter string `mapstructure:"exporter" validate:"omitempty,oneof=otlp otlpgrpc"`

	// Endpoint is the collector endpoint.
	Endpoint string `mapstructure:"endpoint" validate:"required_if=Enabled true"`

	// Headers are sent with every export request.
	Headers map[string]string `mapstructure:"headers"`

	// Timeout bounds a single export.
	Timeout time.Duration `mapstructure:"timeout"`

	// Sampler is the sampling strategy (always_on, always_off, ratio).
	Sampler string `mapstructure:"sampler" validate:"omitempty,oneof=always_on always_off ratio"`

	// SampleRate is the fraction of traces to sample (0.0-1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// UIConfig holds embedded form settings.
type UIConfig struct {
	// Enabled serves the embedded form at the root path.
	Enabled bool `mapstructure:"enabled"`
}

// Validate performs validation on the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// MissingCredentials lists the provider settings that are still empty.
// Missing credentials do not stop the server; the first call that needs one fails.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Dify.APIKey == "" {
		missing = append(missing, "dify.api_key")
	}
	for key, value := range map[string]string{
		"twitter.consumer_key":    c.Twitter.ConsumerKey,
		"twitter.consumer_secret": c.Twitter.ConsumerSecret,
		"twitter.access_token":    c.Twitter.AccessToken,
		"twitter.access_secret":   c.Twitter.AccessSecret,
	} {
		if value == "" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// String returns a string representation of the configuration (without sensitive data).
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: %s, Server: %s:%d%s, Env: %s, Dify: %s (key set: %t), Twitter: %s (oauth1 set: %t)}",
		c.App.Name, c.Server.Host, c.Server.Port, c.Server.APIPrefix, c.App.Environment,
		c.Dify.BaseURL, c.Dify.APIKey != "",
		c.Twitter.BaseURL, c.Twitter.ConsumerKey != "" && c.Twitter.AccessToken != "")
}
