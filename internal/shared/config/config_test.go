package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowOrigin)
	assert.Equal(t, "local", cfg.ObjectStoreType)
	assert.Equal(t, 10*time.Minute, cfg.QueryCacheTTL)
	assert.Equal(t, 4, cfg.AnalysisConcurrency)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, 20*time.Second, cfg.WorkerReceiveWait)
	assert.Equal(t, 30*time.Second, cfg.WorkerShutdown)
	assert.Empty(t, cfg.AnalysisQueueKey)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.True(t, cfg.LogJSON)
	assert.False(t, cfg.LogDebug)
	assert.True(t, cfg.IsDevLike())
	assert.Equal(t, DBPool{ConnectRetries: -1}, cfg.DBPool)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "prod")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("S3_BUCKET", "resumes")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("QUERY_CACHE_TTL", "30s")
	t.Setenv("ANALYSIS_CONCURRENCY", "0")
	t.Setenv("SWEEP_SCHEDULE", " @every 5m ")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ANALYSIS_QUEUE_KEY", " jobs ")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONNECT_RETRIES", "0")
	t.Setenv("WORKER_RECEIVE_WAIT", "5s")
	t.Setenv("WORKER_SHUTDOWN_TIMEOUT", "-1s")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "s3", cfg.ObjectStoreType)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigin)
	assert.Equal(t, 30*time.Second, cfg.QueryCacheTTL)
	assert.Equal(t, 1, cfg.AnalysisConcurrency)
	assert.Equal(t, "@every 5m", cfg.SweepSchedule)
	assert.Equal(t, "jobs", cfg.AnalysisQueueKey)
	assert.Equal(t, 5*time.Second, cfg.WorkerReceiveWait)
	assert.Equal(t, 30*time.Second, cfg.WorkerShutdown)
	assert.True(t, cfg.LogDebug)
	assert.False(t, cfg.IsDevLike())
	assert.Equal(t, DBPool{MaxOpenConns: 7, ConnMaxLifetime: 20 * time.Minute}, cfg.DBPool)
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_URL=redis://localhost:6379/0\nPORT=7070\n"), 0o600))
	t.Setenv("PORT", "9191")
	t.Setenv("REDIS_URL", "")
	require.NoError(t, os.Unsetenv("REDIS_URL"))
	t.Cleanup(func() { _ = os.Unsetenv("REDIS_URL") })

	cfg := Load()
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "9191", cfg.Port)
}
