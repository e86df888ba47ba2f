package config

import (
	"errors"
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

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Cache       CacheConfig
	Readiness   ReadinessConfig
	Matching    MatchingConfig
	Leaderboard LeaderboardConfig
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxOpenConns  int
	MaxIdleConns  int
	RunMigrations bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig toggles the redis read-through caches.
type CacheConfig struct {
	Enabled bool
}

// ReadinessConfig tunes the readiness recompute unit.
type ReadinessConfig struct {
	WeightsFile string
	MaxRetries  int
	CacheTTL    time.Duration
}

// MatchingConfig bounds batch matching concurrency and the background queue.
type MatchingConfig struct {
	Workers      int
	QueueWorkers int
	QueueBuffer  int
	QueueRetries int
	RetryDelay   time.Duration
}

// LeaderboardConfig governs leaderboard size and caching.
type LeaderboardConfig struct {
	DefaultLimit int
	CacheTTL     time.Duration
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

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:          v.GetString("DB_HOST"),
		Port:          v.GetInt("DB_PORT"),
		User:          v.GetString("DB_USER"),
		Password:      v.GetString("DB_PASSWORD"),
		Name:          v.GetString("DB_NAME"),
		SSLMode:       v.GetString("DB_SSL_MODE"),
		MaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{Enabled: v.GetBool("ENABLE_CACHE")}

	cfg.Readiness = ReadinessConfig{
		WeightsFile: v.GetString("READINESS_WEIGHTS_FILE"),
		MaxRetries:  atLeast(v.GetInt("READINESS_MAX_RETRIES"), 1),
		CacheTTL:    parseDuration(v.GetString("READINESS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Matching = MatchingConfig{
		Workers:      atLeast(v.GetInt("MATCHING_WORKERS"), 1),
		QueueWorkers: atLeast(v.GetInt("MATCHING_QUEUE_WORKERS"), 1),
		QueueBuffer:  atLeast(v.GetInt("MATCHING_QUEUE_BUFFER"), 1),
		QueueRetries: v.GetInt("MATCHING_QUEUE_RETRIES"),
		RetryDelay:   parseDuration(v.GetString("MATCHING_RETRY_DELAY"), 2*time.Second),
	}

	cfg.Leaderboard = LeaderboardConfig{
		DefaultLimit: atLeast(v.GetInt("LEADERBOARD_LIMIT"), 1),
		CacheTTL:     parseDuration(v.GetString("LEADERBOARD_CACHE_TTL"), time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "career_readiness")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("RUN_MIGRATIONS", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", true)

	v.SetDefault("READINESS_WEIGHTS_FILE", "")
	v.SetDefault("READINESS_MAX_RETRIES", 3)
	v.SetDefault("READINESS_CACHE_TTL", "5m")

	v.SetDefault("MATCHING_WORKERS", 8)
	v.SetDefault("MATCHING_QUEUE_WORKERS", 2)
	v.SetDefault("MATCHING_QUEUE_BUFFER", 64)
	v.SetDefault("MATCHING_QUEUE_RETRIES", 2)
	v.SetDefault("MATCHING_RETRY_DELAY", "2s")

	v.SetDefault("LEADERBOARD_LIMIT", 20)
	v.SetDefault("LEADERBOARD_CACHE_TTL", "1m")
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

func atLeast(value, min int) int {
	if value < min {
		return min
	}
	return value
}

// viper reports a missing explicit config file as a path error rather than ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
