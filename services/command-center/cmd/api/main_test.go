package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2b-portal/opscenter/shared/pkg/logging"
	"github.com/b2b-portal/opscenter/shared/pkg/metrics"
	"github.com/b2b-portal/opscenter/shared/pkg/resilience"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := loadConfig()

	assert.Equal(t, ":8040", cfg.ServerAddr)
	assert.Equal(t, "config/policy.yaml", cfg.PolicyPath)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, serviceName, cfg.Kafka.ClientID)
	assert.Nil(t, cfg.Redis)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("NEO4J_DATABASE", "catalog")

	cfg := loadConfig()

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	require.NotNil(t, cfg.Redis)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "catalog", cfg.Neo4j.Database)
}

func TestCorsConfig(t *testing.T) {
	open := corsConfig(nil)
	assert.True(t, open.AllowAllOrigins)

	restricted := corsConfig([]string{"https://portal.example.com"})
	assert.False(t, restricted.AllowAllOrigins)
	assert.Equal(t, []string{"https://portal.example.com"}, restricted.AllowOrigins)
	assert.NoError(t, restricted.Validate())
}

func TestNewLogger_LevelFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	logger := newLogger()

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewLogger_NoDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "warn")

	logger := newLogger()

	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestOpenCoOccurrence_UnreachableGraph(t *testing.T) {
	m := metrics.New(metrics.DefaultConfig(serviceName))
	logger := logging.NewNop()
	breakers := resilience.NewCircuitBreakerRegistry(logger.Logger, m)

	t.Setenv("NEO4J_URI", "bolt://127.0.0.1:1")
	cfg := loadConfig().Neo4j
	source, probes, closeGraph := openCoOccurrence(context.Background(), cfg, breakers, m, logger)

	assert.Nil(t, source)
	assert.Empty(t, probes)
	require.NotNil(t, closeGraph)
	assert.NotPanics(t, closeGraph)
}
