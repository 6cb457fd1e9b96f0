package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv        = "REVIEW_INTAKE_CONFIG"
	httpAddrEnv          = "HTTP_ADDR"
	httpPathEnv          = "HTTP_PATH"
	httpReadTimeoutEnv   = "HTTP_READ_TIMEOUT"
	httpWriteTimeoutEnv  = "HTTP_WRITE_TIMEOUT"
	httpIdleTimeoutEnv   = "HTTP_IDLE_TIMEOUT"
	logLevelEnv          = "LOG_LEVEL"
	logFormatEnv         = "LOG_FORMAT"
	storageDriverEnv     = "STORAGE_DRIVER"
	supabaseURLEnv       = "SUPABASE_URL"
	supabaseKeyEnv       = "SUPABASE_SERVICE_ROLE_KEY"
	databaseDSNEnv       = "DATABASE_DSN"
	geminiAPIKeyEnv      = "GEMINI_API_KEY"
	geminiEndpointEnv    = "GEMINI_ENDPOINT"
	moderationTimeoutEnv = "MODERATION_TIMEOUT"
	webhookSecretEnv     = "WEBHOOK_SECRET"
)

// Storage drivers understood by the application.
const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
)

// Config holds high-level settings required across the application.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
	Storage    StorageConfig    `yaml:"storage"`
	Moderation ModerationConfig `yaml:"moderation"`
	Webhook    WebhookConfig    `yaml:"webhook"`
}

// HTTPConfig describes the inbound listener.
type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	Path         string        `yaml:"path"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig describes where reviews are written.
type StorageConfig struct {
	Driver     string `yaml:"driver"`
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"serviceKey"`
	Table      string `yaml:"table"`
	DSN        string `yaml:"dsn"`
}

// ModerationConfig defines how to contact the classification API.
// A zero Timeout leaves the HTTP transport defaults in place.
type ModerationConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	APIKey      string        `yaml:"apiKey"`
	Instruction string        `yaml:"instruction"`
	Timeout     time.Duration `yaml:"timeout"`
}

// WebhookConfig holds the shared secret expected from the web form.
type WebhookConfig struct {
	Secret string `yaml:"secret"`
	Header string `yaml:"header"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// An empty path falls back to REVIEW_INTAKE_CONFIG; a missing file is ignored.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func readFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fileCfg, nil
}

func (c *Config) applyEnvOverrides() error {
	overrideString(httpAddrEnv, &c.HTTP.Addr)
	overrideString(httpPathEnv, &c.HTTP.Path)
	overrideString(logLevelEnv, &c.Logging.Level)
	overrideString(logFormatEnv, &c.Logging.Format)
	overrideString(storageDriverEnv, &c.Storage.Driver)
	overrideString(supabaseURLEnv, &c.Storage.URL)
	overrideString(supabaseKeyEnv, &c.Storage.ServiceKey)
	overrideString(databaseDSNEnv, &c.Storage.DSN)
	overrideString(geminiAPIKeyEnv, &c.Moderation.APIKey)
	overrideString(geminiEndpointEnv, &c.Moderation.Endpoint)
	overrideString(webhookSecretEnv, &c.Webhook.Secret)

	durations := map[string]*time.Duration{
		httpReadTimeoutEnv:   &c.HTTP.ReadTimeout,
		httpWriteTimeoutEnv:  &c.HTTP.WriteTimeout,
		httpIdleTimeoutEnv:   &c.HTTP.IdleTimeout,
		moderationTimeoutEnv: &c.Moderation.Timeout,
	}
	for key, target := range durations {
		if err := overrideDuration(key, target); err != nil {
			return err
		}
	}

	return nil
}

func overrideString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func overrideDuration(key string, target *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s duration: %w", key, err)
	}
	*target = d
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}
	if override.HTTP.Path != "" {
		base.HTTP.Path = override.HTTP.Path
	}
	if override.HTTP.ReadTimeout != 0 {
		base.HTTP.ReadTimeout = override.HTTP.ReadTimeout
	}
	if override.HTTP.WriteTimeout != 0 {
		base.HTTP.WriteTimeout = override.HTTP.WriteTimeout
	}
	if override.HTTP.IdleTimeout != 0 {
		base.HTTP.IdleTimeout = override.HTTP.IdleTimeout
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.URL != "" {
		base.Storage.URL = override.Storage.URL
	}
	if override.Storage.ServiceKey != "" {
		base.Storage.ServiceKey = override.Storage.ServiceKey
	}
	if override.Storage.Table != "" {
		base.Storage.Table = override.Storage.Table
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}

	if override.Moderation.Endpoint != "" {
		base.Moderation.Endpoint = override.Moderation.Endpoint
	}
	if override.Moderation.APIKey != "" {
		base.Moderation.APIKey = override.Moderation.APIKey
	}
	if override.Moderation.Instruction != "" {
		base.Moderation.Instruction = override.Moderation.Instruction
	}
	if override.Moderation.Timeout != 0 {
		base.Moderation.Timeout = override.Moderation.Timeout
	}

	if override.Webhook.Secret != "" {
		base.Webhook.Secret = override.Webhook.Secret
	}
	if override.Webhook.Header != "" {
		base.Webhook.Header = override.Webhook.Header
	}

	return base
}

func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:         ":8080",
			Path:         "/submit-review",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{
			Driver: DriverSupabase,
			Table:  "reviews",
		},
		Moderation: ModerationConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent",
		},
		Webhook: WebhookConfig{Header: "x-webhook-secret"},
	}
}
