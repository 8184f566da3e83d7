package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Timezone  string

	Database     DatabaseConfig
	Redis        RedisConfig
	Auth         AuthConfig
	CORS         CORSConfig
	Log          LogConfig
	Grid         GridConfig
	ViewCache    ViewCacheConfig
	Invalidation InvalidationConfig
	Events       EventsConfig
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host        string
	Port        int
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

// Addr joins host and port for the Redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig guards write routes with HS256 bearer tokens.
type AuthConfig struct {
	Enabled bool
	Secret  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GridConfig mirrors the week grid geometry served by the view API.
type GridConfig struct {
	StartHour        int
	EndHour          int
	RowHeightPx      float64
	MinEventHeightPx float64
}

// ViewCacheConfig governs Redis caching of week and month views.
type ViewCacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	RolloverCron string
}

// InvalidationConfig tunes the background cache invalidation queue.
type InvalidationConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// EventsConfig holds event defaults.
type EventsConfig struct {
	Colors        []string
	UpcomingLimit int
}

// Location resolves the configured timezone. An empty value or "Local" means
// the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Timezone = v.GetString("TIMEZONE")

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		SQLitePath:   v.GetString("SQLITE_PATH"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:        v.GetString("REDIS_HOST"),
		Port:        v.GetInt("REDIS_PORT"),
		Password:    v.GetString("REDIS_PASSWORD"),
		DB:          v.GetInt("REDIS_DB"),
		PoolSize:    v.GetInt("REDIS_POOL_SIZE"),
		DialTimeout: parseDuration(v.GetString("REDIS_DIAL_TIMEOUT"), 3*time.Second),
	}

	cfg.Auth = AuthConfig{
		Enabled: v.GetBool("AUTH_ENABLED"),
		Secret:  v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Grid = GridConfig{
		StartHour:        v.GetInt("GRID_START_HOUR"),
		EndHour:          v.GetInt("GRID_END_HOUR"),
		RowHeightPx:      v.GetFloat64("GRID_ROW_HEIGHT_PX"),
		MinEventHeightPx: v.GetFloat64("GRID_MIN_EVENT_HEIGHT_PX"),
	}

	cfg.ViewCache = ViewCacheConfig{
		Enabled:      v.GetBool("ENABLE_VIEW_CACHE"),
		TTL:          parseDuration(v.GetString("VIEW_CACHE_TTL"), 10*time.Minute),
		RolloverCron: v.GetString("CACHE_ROLLOVER_CRON"),
	}

	cfg.Invalidation = InvalidationConfig{
		Workers:    v.GetInt("INVALIDATION_WORKERS"),
		Retries:    v.GetInt("INVALIDATION_RETRIES"),
		RetryDelay: parseDuration(v.GetString("INVALIDATION_RETRY_DELAY"), time.Second),
	}

	cfg.Events = EventsConfig{
		Colors:        splitAndTrim(v.GetString("EVENT_COLORS")),
		UpcomingLimit: v.GetInt("UPCOMING_LIMIT"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("TIMEZONE", "Local")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "weekcal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "./data/weekcal.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 0)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "3s")

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GRID_START_HOUR", 0)
	v.SetDefault("GRID_END_HOUR", 24)
	v.SetDefault("GRID_ROW_HEIGHT_PX", 60)
	v.SetDefault("GRID_MIN_EVENT_HEIGHT_PX", 20)

	v.SetDefault("ENABLE_VIEW_CACHE", false)
	v.SetDefault("VIEW_CACHE_TTL", "10m")
	v.SetDefault("CACHE_ROLLOVER_CRON", "0 0 * * *")

	v.SetDefault("INVALIDATION_WORKERS", 1)
	v.SetDefault("INVALIDATION_RETRIES", 3)
	v.SetDefault("INVALIDATION_RETRY_DELAY", "1s")

	v.SetDefault("EVENT_COLORS", "#FF6B6B,#4ECDC4,#45B7D1,#FFA07A,#98D8C8")
	v.SetDefault("UPCOMING_LIMIT", 10)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
