// Package config handles loading and validation of application configuration
// from environment variables and an optional .env file.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tadweer/tadweer-site/logger"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"

	minAdminKeyLength = 16
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendAuto     = "auto"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSupabase = "supabase"
	BackendObject   = "object"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// AdminKey is the shared secret admin callers present as "Bearer <key>".
	// Empty means admin endpoints refuse every request.
	AdminKey string `mapstructure:"ADMIN_KEY" yaml:"admin_key"`
}

// StorageConfig selects the suggestion store backend.
type StorageConfig struct {
	Backend            string `mapstructure:"BACKEND" yaml:"backend"`
	PingTimeoutSeconds int    `mapstructure:"PING_TIMEOUT_SECONDS" yaml:"ping_timeout_seconds"`
}

// KVConfig holds the Redis-compatible key-value store credentials (Vercel KV / Upstash style).
type KVConfig struct {
	URL   string `mapstructure:"URL" yaml:"url"`
	Token string `mapstructure:"TOKEN" yaml:"token"`
	Key   string `mapstructure:"KEY" yaml:"key"`
}

// Configured reports whether both KV credentials are present.
func (c *KVConfig) Configured() bool {
	return c.URL != "" && c.Token != ""
}

// SupabaseConfig holds the server-side Supabase credentials.
type SupabaseConfig struct {
	URL        string `mapstructure:"URL" yaml:"url"`
	ServiceKey string `mapstructure:"SERVICE_KEY" yaml:"service_key"`
	Table      string `mapstructure:"TABLE" yaml:"table"`
}

// ObjectConfig holds S3-compatible (R2, S3, MinIO) object storage settings.
type ObjectConfig struct {
	Endpoint        string `mapstructure:"ENDPOINT" yaml:"endpoint"`
	Region          string `mapstructure:"REGION" yaml:"region"`
	Bucket          string `mapstructure:"BUCKET" yaml:"bucket"`
	Key             string `mapstructure:"KEY" yaml:"key"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
}

// BreakerConfig tunes the circuit breaker wrapped around remote storage backends.
type BreakerConfig struct {
	Enabled          bool `mapstructure:"ENABLED" yaml:"enabled"`
	FailureThreshold int  `mapstructure:"FAILURE_THRESHOLD" yaml:"failure_threshold"`
	OpenSeconds      int  `mapstructure:"OPEN_SECONDS" yaml:"open_seconds"`
}

// NotifyConfig holds configuration for emailing the site owner about new suggestions.
type NotifyConfig struct {
	Enabled      bool   `mapstructure:"ENABLED" yaml:"enabled"`
	ResendAPIKey string `mapstructure:"RESEND_API_KEY" yaml:"resend_api_key"`
	FromAddress  string `mapstructure:"FROM_ADDRESS" yaml:"from_address"`
	FromName     string `mapstructure:"FROM_NAME" yaml:"from_name"`
	ToAddress    string `mapstructure:"TO_ADDRESS" yaml:"to_address"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server   ServerConfig   `mapstructure:"SERVER" yaml:"server"`
	Storage  StorageConfig  `mapstructure:"STORAGE" yaml:"storage"`
	KV       KVConfig       `mapstructure:"KV" yaml:"kv"`
	Supabase SupabaseConfig `mapstructure:"SUPABASE" yaml:"supabase"`
	Object   ObjectConfig   `mapstructure:"OBJECT" yaml:"object"`
	Breaker  BreakerConfig  `mapstructure:"BREAKER" yaml:"breaker"`
	Notify   NotifyConfig   `mapstructure:"NOTIFY" yaml:"notify"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// AdminEnabled reports whether admin endpoints can authorize anyone.
func (c *Config) AdminEnabled() bool {
	return c.Server.AdminKey != ""
}

// bindEnvVars binds environment variables to config keys.
// Format: []{configKey, envVar, aliases...}; the first non-empty variable wins.
func bindEnvVars(v *viper.Viper, bindings [][]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads a .env file when present, then reads configuration from
// environment variables using Viper, applies defaults and validates the result.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.ADMIN_KEY", "")
	v.SetDefault("STORAGE.BACKEND", BackendAuto)
	v.SetDefault("STORAGE.PING_TIMEOUT_SECONDS", 3)
	v.SetDefault("KV.KEY", "tadweer:suggestions")
	v.SetDefault("SUPABASE.TABLE", "suggestions")
	v.SetDefault("OBJECT.REGION", "auto")
	v.SetDefault("OBJECT.KEY", "tadweer/suggestions.json")
	v.SetDefault("BREAKER.ENABLED", true)
	v.SetDefault("BREAKER.FAILURE_THRESHOLD", 5)
	v.SetDefault("BREAKER.OPEN_SECONDS", 30)
	v.SetDefault("NOTIFY.ENABLED", false)
	v.SetDefault("NOTIFY.FROM_NAME", "Tadweer Suggestions")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][]string{
		// Server config
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.VERSION", "VERSION"},
		{"SERVER.ADMIN_KEY", "ADMIN_KEY"},
		// Storage selection
		{"STORAGE.BACKEND", "STORAGE_BACKEND"},
		{"STORAGE.PING_TIMEOUT_SECONDS", "STORAGE_PING_TIMEOUT_SECONDS"},
		// KV credentials, also under the names Vercel KV and Upstash inject
		{"KV.URL", "KV_URL", "KV_REST_API_URL", "UPSTASH_REDIS_REST_URL"},
		{"KV.TOKEN", "KV_TOKEN", "KV_REST_API_TOKEN", "UPSTASH_REDIS_REST_TOKEN"},
		{"KV.KEY", "KV_KEY"},
		// Supabase
		{"SUPABASE.URL", "SUPABASE_URL"},
		{"SUPABASE.SERVICE_KEY", "SUPABASE_SERVICE_KEY"},
		{"SUPABASE.TABLE", "SUPABASE_TABLE"},
		// Object storage
		{"OBJECT.ENDPOINT", "OBJECT_ENDPOINT"},
		{"OBJECT.REGION", "OBJECT_REGION"},
		{"OBJECT.BUCKET", "OBJECT_BUCKET"},
		{"OBJECT.KEY", "OBJECT_KEY"},
		{"OBJECT.ACCESS_KEY_ID", "OBJECT_ACCESS_KEY_ID"},
		{"OBJECT.SECRET_ACCESS_KEY", "OBJECT_SECRET_ACCESS_KEY"},
		// Breaker
		{"BREAKER.ENABLED", "BREAKER_ENABLED"},
		{"BREAKER.FAILURE_THRESHOLD", "BREAKER_FAILURE_THRESHOLD"},
		{"BREAKER.OPEN_SECONDS", "BREAKER_OPEN_SECONDS"},
		// Notification
		{"NOTIFY.ENABLED", "NOTIFY_ENABLED"},
		{"NOTIFY.RESEND_API_KEY", "RESEND_API_KEY"},
		{"NOTIFY.FROM_ADDRESS", "NOTIFY_FROM_ADDRESS"},
		{"NOTIFY.FROM_NAME", "NOTIFY_FROM_NAME"},
		{"NOTIFY.TO_ADDRESS", "NOTIFY_TO_ADDRESS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	cfg.Server.AllowedOrigins = splitOrigins(cfg.Server.AllowedOrigins)

	log.Infow("Configuration loaded",
		"environment", cfg.Server.Environment,
		"server_port", cfg.Server.Port,
		"allowed_origins", cfg.Server.AllowedOrigins,
		"storage_backend", cfg.Storage.Backend,
		"kv_url", logger.MaskConnectionString(cfg.KV.URL),
		"admin_key", logger.MaskSensitiveString(cfg.Server.AdminKey, 2, 2),
		"notify_enabled", cfg.Notify.Enabled,
	)

	if err := validateConfig(&cfg, log); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// splitOrigins accepts origins bound from a single comma-separated env var.
func splitOrigins(origins []string) []string {
	var out []string
	for _, o := range origins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config, log *zap.SugaredLogger) error {
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port '%s'", cfg.Server.Port)
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	if cfg.Server.AdminKey == "" {
		log.Warn("ADMIN_KEY is not set, admin endpoints will reject every request")
	} else if len(cfg.Server.AdminKey) < minAdminKeyLength && cfg.IsProduction() {
		return fmt.Errorf("admin key must be at least %d characters long in production", minAdminKeyLength)
	}

	switch cfg.Storage.Backend {
	case BackendAuto, BackendMemory, BackendRedis, BackendSupabase, BackendObject:
	default:
		return fmt.Errorf("unknown storage backend '%s'", cfg.Storage.Backend)
	}
	if cfg.Storage.PingTimeoutSeconds <= 0 {
		return fmt.Errorf("storage ping timeout must be positive")
	}
	if cfg.KV.Key == "" {
		return fmt.Errorf("kv key is required")
	}

	if cfg.Breaker.Enabled {
		if cfg.Breaker.FailureThreshold <= 0 {
			return fmt.Errorf("breaker failure threshold must be positive")
		}
		if cfg.Breaker.OpenSeconds <= 0 {
			return fmt.Errorf("breaker open seconds must be positive")
		}
	}

	validateNotifyConfig(&cfg.Notify, log)
	return nil
}

// validateNotifyConfig auto-disables owner notifications when they are enabled
// without the credentials needed to send them.
func validateNotifyConfig(cfg *NotifyConfig, log *zap.SugaredLogger) {
	if !cfg.Enabled {
		return
	}
	if cfg.ResendAPIKey == "" || cfg.FromAddress == "" || cfg.ToAddress == "" {
		log.Warn("Notification enabled without Resend key, sender or recipient, auto-disabling")
		cfg.Enabled = false
	}
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
