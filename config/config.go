package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration root.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port        int        `mapstructure:"port"`
	BaseURL     string     `mapstructure:"base_url"`
	MaxBodySize int64      `mapstructure:"max_body_size"` // bytes
	CORS        CORSConfig `mapstructure:"cors"`
}

// CORSConfig holds the cross-origin settings.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig holds the PostgreSQL settings.
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	LogQueries   bool   `mapstructure:"log_queries"`
}

// DSN builds the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig holds the Redis settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds the JWT settings.
type AuthConfig struct {
	JWTSecret               string        `mapstructure:"jwt_secret"`
	AccessTokenTTL          time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTLDefault  time.Duration `mapstructure:"refresh_token_ttl_default"`
	RefreshTokenTTLRemember time.Duration `mapstructure:"refresh_token_ttl_remember_me"`
}

// CalendarConfig holds the calendar view settings.
type CalendarConfig struct {
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	UpcomingHorizonDays int           `mapstructure:"upcoming_horizon_days"`
	ImportWindowDays    int           `mapstructure:"import_window_days"` // RRULE expansion window for .ics imports
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// defaults are the baseline settings. The config file overrides them,
// KIDO_ environment variables override both.
var defaults = map[string]interface{}{
	"server.port":               8080,
	"server.base_url":           "http://localhost:8080",
	"server.max_body_size":      1 << 20, // 1MB, covers .ics uploads
	"server.cors.allow_origins": []string{"http://localhost:5173"},

	"db.host":           "localhost",
	"db.port":           5432,
	"db.name":           "kido",
	"db.user":           "postgres",
	"db.password":       "",
	"db.sslmode":        "disable",
	"db.timezone":       "UTC",
	"db.max_open_conns": 25,
	"db.max_idle_conns": 10,
	"db.log_queries":    false,

	"redis.addr":     "localhost:6379",
	"redis.password": "",
	"redis.db":       0,

	"auth.access_token_ttl":              "15m",
	"auth.refresh_token_ttl_default":     "24h",
	"auth.refresh_token_ttl_remember_me": "720h",

	"calendar.cache_ttl":             "5m",
	"calendar.upcoming_horizon_days": 28,
	"calendar.import_window_days":    28,

	"log.level":  "info",
	"log.format": "json",
}

// Load reads configuration from file and environment.
// Precedence: environment > config file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("KIDO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file failed: %w", err)
		}
		// missing file is fine, defaults and env carry the load
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings that must not be wrong at startup.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config validation failed: auth.jwt_secret must not be empty")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("config validation failed: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config validation failed: server.port must be within 1-65535")
	}
	if c.Calendar.UpcomingHorizonDays <= 0 {
		return fmt.Errorf("config validation failed: calendar.upcoming_horizon_days must be positive")
	}
	return nil
}
