package config

import "time"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "grammarpost",
			Version:     "dev",
			Environment: "development",
			Debug:       false,
		},
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			APIPrefix: "/api",
			HTTP: HTTPConfig{
				ReadTimeout:     30 * time.Second,
				WriteTimeout:    90 * time.Second,
				IdleTimeout:     120 * time.Second,
				RequestTimeout:  75 * time.Second,
				ShutdownTimeout: 30 * time.Second,
				MaxHeaderBytes:  1 << 20, // 1MB
				MaxBodyBytes:    64 << 10,
			},
			CORS: CORSConfig{
				Enabled:        false,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID"},
				MaxAge:         300,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Dify: DifyConfig{
			BaseURL:     "https://api.dify.ai/v1",
			DefaultUser: "twitter-bot",
			InputKey:    "input_text",
			OutputKey:   "output",
			// Blocking workflow runs can take a while on the provider side.
			Timeout: 60 * time.Second,
		},
		Twitter: TwitterConfig{
			BaseURL:   "https://api.twitter.com",
			Timeout:   15 * time.Second,
			MaxLength: 280,
			OAuth2: OAuth2Config{
				AuthURL:  "https://twitter.com/i/oauth2/authorize",
				TokenURL: "https://api.twitter.com/2/oauth2/token",
				Scopes:   []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
				StateTTL: 10 * time.Minute,
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9091,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "otlp",
			Endpoint:   "localhost:4317",
			Timeout:    5 * time.Second,
			Sampler:    "ratio",
			SampleRate: 0.1,
		},
		UI: UIConfig{
			Enabled: true,
		},
	}
}
