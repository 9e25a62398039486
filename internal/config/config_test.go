package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, 8080, cfg.HTTPPort)
	require.Equal(t, 9090, cfg.GRPCPort)
	require.True(t, cfg.DBMigrate)
	require.Equal(t, 5*time.Minute, cfg.CategoryTTL)
	require.Equal(t, "catalog.categories", cfg.KafkaTopic)
	require.False(t, cfg.CacheEnabled())
	require.False(t, cfg.KafkaEnabled())
	require.True(t, cfg.IsDevelopment())
	require.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_HTTP_PORT", "9000")
	t.Setenv("APP_REDIS_ADDR", "localhost:6379")
	t.Setenv("APP_KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("APP_CATEGORY_CACHE_TTL", "30s")
	t.Setenv("APP_ENVIRONMENT", "prod")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, 9000, cfg.HTTPPort)
	require.True(t, cfg.CacheEnabled())
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.KafkaEnabled())
	require.Equal(t, 30*time.Second, cfg.CategoryTTL)
	require.True(t, cfg.IsProduction())
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_HTTP_PORT", "not-a-port")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_GRPC_PORT=7070\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("APP_GRPC_PORT") })

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, 7070, cfg.GRPCPort)
}
