package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "GRAMMARPOST_"
	// Delimiter is the key delimiter for nested config.
	Delimiter = "."
)

// legacyEnv maps the variable names used by earlier deployments onto config keys.
var legacyEnv = map[string]string{
	"DIFY_API_KEY":            "dify.api_key",
	"DIFY_BASE_URL":           "dify.base_url",
	"TWITTER_CONSUMER_KEY":    "twitter.consumer_key",
	"TWITTER_CONSUMER_SECRET": "twitter.consumer_secret",
	"TWITTER_ACCESS_TOKEN":    "twitter.access_token",
	"TWITTER_TOKEN_SECRET":    "twitter.access_secret",
	"TWITTER_BEARER_TOKEN":    "twitter.bearer_token",
	"TWITTER_CLIENT_ID":       "twitter.oauth2.client_id",
	"TWITTER_CLIENT_SECRET":   "twitter.oauth2.client_secret",
	"TWITTER_REDIRECT_URL":    "twitter.oauth2.redirect_url",
	"PORT":                    "server.port",
	"LOG_LEVEL":               "log.level",
}

// Loader handles configuration loading from various sources.
type Loader struct {
	k        *koanf.Koanf
	envFiles []string
}

// LoaderOption is a functional option for Loader configuration.
type LoaderOption func(*Loader)

// WithEnvFiles sets the dotenv files read before the environment.
// Missing files are skipped.
func WithEnvFiles(files ...string) LoaderOption {
	return func(l *Loader) {
		l.envFiles = files
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k:        koanf.New(Delimiter),
		envFiles: []string{".env", ".env.local"},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration from all sources with the following priority:
// 1. Command line flags (highest)
// 2. GRAMMARPOST_* environment variables
// 3. Legacy environment variables (DIFY_API_KEY, TWITTER_*)
// 4. Configuration files
// 5. Defaults (lowest)
//
// Dotenv files are merged into the process environment first; variables
// already set in the environment win.
func (l *Loader) Load(configPath string, overrides map[string]interface{}) (*Config, error) {
	l.k = koanf.New(Delimiter)

	// 1. Load defaults
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Load from file if specified
	if configPath != "" {
		if err := l.loadFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		// Try to find config in standard locations
		l.loadDefaultFiles()
	}

	// 3. Load from environment variables
	if err := l.loadDotEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}
	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Apply command line overrides (merge, not replace)
	if len(overrides) > 0 {
		if err := l.k.Load(confmap.Provider(overrides, Delimiter), nil); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	// Unmarshal to struct
	var cfg Config
	if err := l.k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "mapstructure",
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate
	if err := ValidateWithDetails(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDefaults loads the default configuration as flat dotted keys so that
// partial files and env vars merge into it field by field.
func (l *Loader) loadDefaults() error {
	return l.k.Load(confmap.Provider(structToMap(DefaultConfig(), ""), Delimiter), nil)
}

// loadFile loads configuration from a file.
func (l *Loader) loadFile(path string) error {
	// Determine parser based on extension
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser

	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", path)
	}

	return l.k.Load(file.Provider(path), parser)
}

// loadDefaultFiles tries to load config from standard locations.
func (l *Loader) loadDefaultFiles() {
	candidates := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"configs/config.yaml",
		"/etc/grammarpost/config.yaml",
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = l.loadFile(path) // Ignore error, try next
			return
		}
	}
}

// loadDotEnv merges dotenv files into the process environment.
func (l *Loader) loadDotEnv() error {
	for _, path := range l.envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// loadEnv loads configuration from environment variables.
func (l *Loader) loadEnv() error {
	if err := l.k.Load(env.Provider("", Delimiter, func(s string) string {
		return legacyEnv[s]
	}), nil); err != nil {
		return err
	}

	// GRAMMARPOST_SERVER_API_PREFIX -> server.api_prefix
	// GRAMMARPOST_TWITTER_OAUTH2_CLIENT_ID -> twitter.oauth2.client_id
	known := envKeys()
	return l.k.Load(env.Provider(EnvPrefix, Delimiter, func(s string) string {
		return known[strings.TrimPrefix(s, EnvPrefix)]
	}), nil)
}

// envKeys maps upper-snake env names (without prefix) to config keys.
func envKeys() map[string]string {
	keys := make(map[string]string)
	for key := range structToMap(DefaultConfig(), "") {
		name := strings.ToUpper(strings.ReplaceAll(key, Delimiter, "_"))
		keys[name] = key
	}
	return keys
}

// structToMap recursively converts a struct to a flat map with dot-separated keys.
func structToMap(v interface{}, prefix string) map[string]interface{} {
	result := make(map[string]interface{})
	val := reflect.ValueOf(v)

	// Dereference pointer if needed
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	// Only process structs
	if val.Kind() != reflect.Struct {
		return result
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !field.IsExported() {
			continue
		}

		key := field.Tag.Get("mapstructure")
		if key == "" || key == "-" {
			continue
		}

		fullKey := key
		if prefix != "" {
			fullKey = prefix + Delimiter + key
		}

		switch fieldVal.Kind() {
		case reflect.Ptr:
			if !fieldVal.IsNil() {
				for k, v := range structToMap(fieldVal.Elem().Interface(), fullKey) {
					result[k] = v
				}
			}
		case reflect.Struct:
			for k, v := range structToMap(fieldVal.Interface(), fullKey) {
				result[k] = v
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			result[fullKey] = fieldVal.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			result[fullKey] = fieldVal.Uint()
		case reflect.Float32, reflect.Float64:
			result[fullKey] = fieldVal.Float()
		case reflect.Bool:
			result[fullKey] = fieldVal.Bool()
		case reflect.String:
			result[fullKey] = fieldVal.String()
		case reflect.Slice:
			slice := make([]interface{}, fieldVal.Len())
			for j := range slice {
				slice[j] = fieldVal.Index(j).Interface()
			}
			result[fullKey] = slice
		case reflect.Map:
			if !fieldVal.IsNil() {
				result[fullKey] = fieldVal.Interface()
			}
		default:
			result[fullKey] = fieldVal.Interface()
		}
	}

	return result
}
