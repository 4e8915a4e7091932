package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server             ServerConfig             `mapstructure:"server"`
	Log                LogConfig                `mapstructure:"log"`
	CORS               CORSConfig               `mapstructure:"cors"`
	RateLimit          RateLimitConfig          `mapstructure:"rate_limit"`
	Redis              RedisConfig              `mapstructure:"redis"`
	Store              StoreConfig              `mapstructure:"store"`
	Supabase           SupabaseConfig           `mapstructure:"supabase"`
	Email              EmailConfig              `mapstructure:"email"`
	SMTP               SMTPConfig               `mapstructure:"smtp"`
	Notify             NotifyConfig             `mapstructure:"notify"`
	RecipientRateLimit RecipientRateLimitConfig `mapstructure:"recipient_rate_limit"`
	Session            SessionConfig            `mapstructure:"session"`
	Admin              AdminConfig              `mapstructure:"admin"`

	// live backs Lookup, which is read on every call rather than from the fields above.
	// It is swapped wholesale when the config file changes on disk.
	live atomic.Pointer[viper.Viper]
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	Timezone string `mapstructure:"timezone"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StoreConfig selects the persistence backend: "sqlite" or "supabase".
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// SupabaseConfig holds Supabase project settings.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

// EmailConfig holds email provider settings. Provider is "smtp" or "resend".
type EmailConfig struct {
	Provider       string `mapstructure:"provider"`
	APIKey         string `mapstructure:"api_key"`
	FromAddress    string `mapstructure:"from_address"`
	FromName       string `mapstructure:"from_name"`
	SendTimeoutSec int    `mapstructure:"send_timeout_sec"`
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSL      bool   `mapstructure:"ssl"`
	AuthType string `mapstructure:"auth_type"`
}

// NotifyConfig holds notification routing settings.
type NotifyConfig struct {
	AdminEmail string `mapstructure:"admin_email"`
}

// RecipientRateLimitConfig holds per-submitter rate limiting settings.
type RecipientRateLimitConfig struct {
	MaxPerHour int `mapstructure:"max_per_hour"`
}

// SessionConfig holds admin session settings. Driver is "memory" or "redis".
type SessionConfig struct {
	Driver           string `mapstructure:"driver"`
	TTLHours         int    `mapstructure:"ttl_hours"`
	CookieName       string `mapstructure:"cookie_name"`
	Secure           bool   `mapstructure:"secure"`
	SweepIntervalSec int    `mapstructure:"sweep_interval_sec"`
}

// AdminConfig holds administrator account settings.
type AdminConfig struct {
	BootstrapUsername string `mapstructure:"bootstrap_username"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
	AllowRegistration bool   `mapstructure:"allow_registration"`
}

// Load reads configuration from config.yaml and environment variables.
// Environment variables use the CONTACTDESK_ prefix and underscore separators.
// Example: CONTACTDESK_SERVER_PORT overrides server.port in config.yaml.
func Load() (*Config, error) {
	v := viper.New()

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Load .env file if it exists
	_ = godotenv.Load()

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	bindEnv(v)
	setDefaults(v)

	// Read config file (optional, env vars can provide everything)
	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		found = false
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Comma-separated lists from env vars
	cfg.CORS.AllowedOrigins = splitList(cfg.CORS.AllowedOrigins)
	cfg.CORS.AllowedMethods = splitList(cfg.CORS.AllowedMethods)
	cfg.CORS.AllowedHeaders = splitList(cfg.CORS.AllowedHeaders)

	if !found {
		cfg.live.Store(v)
		return cfg, nil
	}

	// The watcher rereads v in its own goroutine, so Lookup never touches v directly.
	path := v.ConfigFileUsed()
	snap, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg.live.Store(snap)

	v.OnConfigChange(func(e fsnotify.Event) {
		snap, err := readFile(path)
		if err != nil {
			slog.Warn("config reload failed, keeping previous values", "file", e.Name, "error", err)
			return
		}
		cfg.live.Store(snap)
		slog.Info("config reloaded", "file", e.Name)
	})
	v.WatchConfig()

	return cfg, nil
}

// readFile builds a fresh viper instance over path with the same env binding and defaults.
func readFile(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	bindEnv(v)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return v, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("CONTACTDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.timezone", "Asia/Tokyo")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"})
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "contactdesk.db")
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_key", "")
	v.SetDefault("email.provider", "smtp")
	v.SetDefault("email.api_key", "")
	v.SetDefault("email.from_address", "")
	v.SetDefault("email.from_name", "")
	v.SetDefault("email.send_timeout_sec", 10)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.ssl", false)
	v.SetDefault("smtp.auth_type", "plain")
	v.SetDefault("notify.admin_email", "")
	v.SetDefault("recipient_rate_limit.max_per_hour", 0) // 0 disables the limit
	v.SetDefault("session.driver", "memory")
	v.SetDefault("session.ttl_hours", 24)
	v.SetDefault("session.cookie_name", "contactdesk_session")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.sweep_interval_sec", 3600)
	v.SetDefault("admin.bootstrap_username", "admin")
	v.SetDefault("admin.bootstrap_password", "")
	v.SetDefault("admin.allow_registration", false)
}

// splitList flattens comma-separated entries so env values like "a, b" work.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, p := range strings.Split(item, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Lookup returns the current value of key and whether it is set. Values are read
// on every call, so environment changes and edits to the config file apply to the
// next lookup.
func (c *Config) Lookup(key string) (string, bool) {
	v := c.live.Load()
	if v == nil || !v.IsSet(key) {
		return "", false
	}
	return v.GetString(key), true
}

// Location returns the time zone used for displayed timestamps and daily summaries.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		slog.Warn("unknown server.timezone, falling back to UTC", "timezone", c.Server.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

// SendTimeout returns the per-message delivery timeout.
func (c *Config) SendTimeout() time.Duration {
	return time.Duration(c.Email.SendTimeoutSec) * time.Second
}

// SessionTTL returns how long an admin session stays valid.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}

// SweepInterval returns how often expired in-memory sessions are pruned.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Session.SweepIntervalSec) * time.Second
}

// SlogLevel maps log.level to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
