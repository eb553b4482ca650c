// Package config loads trrouting-go's runtime configuration, grounded on
// the config/config.go pattern from the Hintro example: a struct-of-structs
// populated from viper defaults plus environment overrides.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Network  NetworkConfig
	Batch    BatchConfig
}

// ServerConfig holds HTTP server settings for the httpapi front-end.
type ServerConfig struct {
	Host         string        `mapstructure:"SERVER_HOST"`
	Port         int           `mapstructure:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `mapstructure:"SERVER_IDLE_TIMEOUT"`
	QueryTimeout time.Duration `mapstructure:"SERVER_QUERY_TIMEOUT"`
}

// PostgresConfig holds PostgreSQL connection settings for the network
// loader (internal/cache.PgLoader) and the live walk oracle.
type PostgresConfig struct {
	Host     string `mapstructure:"POSTGRES_HOST"`
	Port     int    `mapstructure:"POSTGRES_PORT"`
	User     string `mapstructure:"POSTGRES_USER"`
	Password string `mapstructure:"POSTGRES_PASSWORD"`
	DBName   string `mapstructure:"POSTGRES_DB"`
	SSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
	MaxConns int32  `mapstructure:"POSTGRES_MAX_CONNS"`
	MinConns int32  `mapstructure:"POSTGRES_MIN_CONNS"`
}

// RedisConfig holds Redis connection settings for the walk-oracle cache.
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     int    `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	PoolSize int    `mapstructure:"REDIS_POOL_SIZE"`
	TTL      time.Duration `mapstructure:"REDIS_WALKORACLE_TTL"`
}

// NetworkConfig selects how the Network is loaded at startup.
type NetworkConfig struct {
	Source       string `mapstructure:"NETWORK_SOURCE"` // "postgres", "csv", or "gob"
	CSVDir       string `mapstructure:"NETWORK_CSV_DIR"`
	GobCachePath string `mapstructure:"NETWORK_GOB_CACHE_PATH"`
	SqliteCachePath string `mapstructure:"NETWORK_SQLITE_CACHE_PATH"`
}

// BatchConfig supplies defaults for the OD batch engine's command.
type BatchConfig struct {
	DefaultBatchesCount int     `mapstructure:"BATCH_DEFAULT_BATCHES_COUNT"`
	DefaultSampleRatio  float64 `mapstructure:"BATCH_DEFAULT_SAMPLE_RATIO"`
}

// DSN returns the PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// Addr returns the Redis address in host:port format.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerAddr returns the HTTP listen address in host:port format.
func (s *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables and a .env file.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8090)
	viper.SetDefault("SERVER_READ_TIMEOUT", "5s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	viper.SetDefault("SERVER_IDLE_TIMEOUT", "120s")
	viper.SetDefault("SERVER_QUERY_TIMEOUT", "10s")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "trrouting")
	viper.SetDefault("POSTGRES_PASSWORD", "trrouting_dev")
	viper.SetDefault("POSTGRES_DB", "trrouting")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_MAX_CONNS", 20)
	viper.SetDefault("POSTGRES_MIN_CONNS", 2)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_POOL_SIZE", 20)
	viper.SetDefault("REDIS_WALKORACLE_TTL", "24h")

	viper.SetDefault("NETWORK_SOURCE", "postgres")
	viper.SetDefault("NETWORK_CSV_DIR", "./data")
	viper.SetDefault("NETWORK_GOB_CACHE_PATH", "./network.cache")
	viper.SetDefault("NETWORK_SQLITE_CACHE_PATH", "./footpaths.sqlite")

	viper.SetDefault("BATCH_DEFAULT_BATCHES_COUNT", 1)
	viper.SetDefault("BATCH_DEFAULT_SAMPLE_RATIO", 1.0)

	_ = viper.ReadInConfig()

	cfg := &Config{}

	cfg.Server = ServerConfig{
		Host:         viper.GetString("SERVER_HOST"),
		Port:         viper.GetInt("SERVER_PORT"),
		ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
		WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
		IdleTimeout:  viper.GetDuration("SERVER_IDLE_TIMEOUT"),
		QueryTimeout: viper.GetDuration("SERVER_QUERY_TIMEOUT"),
	}

	cfg.Postgres = PostgresConfig{
		Host:     viper.GetString("POSTGRES_HOST"),
		Port:     viper.GetInt("POSTGRES_PORT"),
		User:     viper.GetString("POSTGRES_USER"),
		Password: viper.GetString("POSTGRES_PASSWORD"),
		DBName:   viper.GetString("POSTGRES_DB"),
		SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		MaxConns: viper.GetInt32("POSTGRES_MAX_CONNS"),
		MinConns: viper.GetInt32("POSTGRES_MIN_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     viper.GetString("REDIS_HOST"),
		Port:     viper.GetInt("REDIS_PORT"),
		Password: viper.GetString("REDIS_PASSWORD"),
		DB:       viper.GetInt("REDIS_DB"),
		PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
		TTL:      viper.GetDuration("REDIS_WALKORACLE_TTL"),
	}

	cfg.Network = NetworkConfig{
		Source:          viper.GetString("NETWORK_SOURCE"),
		CSVDir:          viper.GetString("NETWORK_CSV_DIR"),
		GobCachePath:    viper.GetString("NETWORK_GOB_CACHE_PATH"),
		SqliteCachePath: viper.GetString("NETWORK_SQLITE_CACHE_PATH"),
	}

	cfg.Batch = BatchConfig{
		DefaultBatchesCount: viper.GetInt("BATCH_DEFAULT_BATCHES_COUNT"),
		DefaultSampleRatio:  viper.GetFloat64("BATCH_DEFAULT_SAMPLE_RATIO"),
	}

	return cfg, nil
}
