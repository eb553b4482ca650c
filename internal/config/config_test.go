package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chairemobilite/trrouting-go/internal/config"
)

func TestDSNFormatsPostgresConnectionString(t *testing.T) {
	p := &config.PostgresConfig{
		Host: "db", Port: 5432, User: "trrouting", Password: "secret",
		DBName: "trrouting", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://trrouting:secret@db:5432/trrouting?sslmode=disable", p.DSN())
}

func TestAddrFormatsRedisAddress(t *testing.T) {
	r := &config.RedisConfig{Host: "cache", Port: 6379}
	assert.Equal(t, "cache:6379", r.Addr())
}

func TestServerAddrFormatsHostPort(t *testing.T) {
	s := &config.ServerConfig{Host: "0.0.0.0", Port: 8090}
	assert.Equal(t, "0.0.0.0:8090", s.ServerAddr())
}

func TestLoadAppliesDefaultsWithNoEnvOrFile(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)

	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, int32(20), cfg.Postgres.MaxConns)

	assert.Equal(t, "postgres", cfg.Network.Source)
	assert.Equal(t, 1, cfg.Batch.DefaultBatchesCount)
	assert.Equal(t, 1.0, cfg.Batch.DefaultSampleRatio)
}
