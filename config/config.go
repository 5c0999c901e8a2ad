package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Store backends
const (
	BackendRedis    = "redis"
	BackendS3       = "s3"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Redis     RedisConfig
	S3        S3Config
	SQL       SQLConfig
	RateLimit RateLimitConfig
	Backup    BackupConfig
	App       AppConfig
}

type ServerConfig struct {
	Port string
}

// StoreConfig selects where prompt lists live
type StoreConfig struct {
	Backend   string
	Namespace string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type S3Config struct {
	Region       string
	Bucket       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

type SQLConfig struct {
	SQLitePath  string
	PostgresDSN string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// BackupConfig describes the snapshot target. It reuses the S3 and SQL
// connection settings of the matching backend.
type BackupConfig struct {
	Schedule  string
	Backend   string
	Namespace string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Store: StoreConfig{
			Backend:   strings.ToLower(getEnv("STORE_BACKEND", BackendRedis)),
			Namespace: getEnv("STORE_NAMESPACE", "ai-prompts"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		S3: S3Config{
			Region:       getEnv("S3_REGION", "us-east-1"),
			Bucket:       getEnv("S3_BUCKET", ""),
			Endpoint:     getEnv("S3_ENDPOINT", ""),
			AccessKey:    getEnv("S3_ACCESS_KEY", ""),
			SecretKey:    getEnv("S3_SECRET_KEY", ""),
			UsePathStyle: getEnvAsBool("S3_USE_PATH_STYLE", false),
		},
		SQL: SQLConfig{
			SQLitePath:  getEnv("SQLITE_PATH", "data/promptshelf.db"),
			PostgresDSN: getEnv("DATABASE_URL", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Backup: BackupConfig{
			Schedule:  getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
			Backend:   strings.ToLower(getEnv("BACKUP_BACKEND", BackendS3)),
			Namespace: getEnv("BACKUP_NAMESPACE", "ai-prompts-backup"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Store.Namespace == "" {
		return fmt.Errorf("STORE_NAMESPACE is required")
	}

	if err := c.validateBackend("STORE_BACKEND", c.Store.Backend); err != nil {
		return err
	}

	return nil
}

// ValidateBackup checks the settings the backup worker needs on top of
// Validate
func (c *Config) ValidateBackup() error {
	if c.Backup.Schedule == "" {
		return fmt.Errorf("BACKUP_SCHEDULE is required")
	}
	if c.Backup.Namespace == "" {
		return fmt.Errorf("BACKUP_NAMESPACE is required")
	}
	if c.Backup.Backend == c.Store.Backend && c.Backup.Namespace == c.Store.Namespace {
		return fmt.Errorf("BACKUP_NAMESPACE must differ from STORE_NAMESPACE on the same backend")
	}
	return c.validateBackend("BACKUP_BACKEND", c.Backup.Backend)
}

func (c *Config) validateBackend(name, backend string) error {
	switch backend {
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for %s=%s", name, backend)
		}
	case BackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for %s=%s", name, backend)
		}
	case BackendSQLite:
		if c.SQL.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for %s=%s", name, backend)
		}
	case BackendPostgres:
		if c.SQL.PostgresDSN == "" {
			return fmt.Errorf("DATABASE_URL is required for %s=%s", name, backend)
		}
	default:
		return fmt.Errorf("%s must be one of redis, s3, sqlite, postgres (got %q)", name, backend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer, using default")
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Warn().Str("key", key).Float64("default", defaultValue).Msg("invalid number, using default")
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Bool("default", defaultValue).Msg("invalid boolean, using default")
		return defaultValue
	}

	return value
}
