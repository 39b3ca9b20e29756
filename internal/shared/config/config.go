package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"resume-matcher/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port                string
	Env                 string
	CORSAllowOrigin     []string
	ObjectStoreType     string
	LocalStoreDir       string
	AWSRegion           string
	S3Bucket            string
	S3Prefix            string
	SSEKMSKeyID         string
	DatabaseURL         string
	RedisURL            string
	AnalysisQueueKey    string
	WorkerConcurrency   int
	WorkerReceiveWait   time.Duration
	WorkerShutdown      time.Duration
	QueryCacheTTL       time.Duration
	AnalysisConcurrency int
	SweepSchedule       string
	TaxonomyFile        string
	MaxUploadBytes      int64
	QueryRatePerSec     float64
	QueryRateBurst      int
	LogJSON             bool
	LogDebug            bool
	DBPool              DBPool
}

// DBPool overrides database pool defaults. Zero fields keep the process
// default; ConnectRetries does so when negative.
type DBPool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	ConnectRetries  int
}

var defaults = map[string]any{
	"PORT":                    "8080",
	"ENV":                     "dev",
	"CORS_ALLOW_ORIGINS":      "http://localhost:5173",
	"OBJECT_STORE":            "local",
	"LOCAL_STORE_DIR":         "./data",
	"QUERY_CACHE_TTL":         "10m",
	"ANALYSIS_CONCURRENCY":    4,
	"WORKER_CONCURRENCY":      4,
	"WORKER_RECEIVE_WAIT":     "20s",
	"WORKER_SHUTDOWN_TIMEOUT": "30s",
	"MAX_UPLOAD_BYTES":        10 << 20,
	"QUERY_RATE_PER_SEC":      2.0,
	"QUERY_RATE_BURST":        10,
	"LOG_JSON":                true,
	"LOG_LEVEL":               "info",
	"DB_CONNECT_RETRIES":      -1,
}

var envKeys = []string{
	"PORT", "ENV", "CORS_ALLOW_ORIGINS", "OBJECT_STORE", "LOCAL_STORE_DIR",
	"AWS_REGION", "S3_BUCKET", "S3_PREFIX", "SSE_KMS_KEY_ID",
	"DATABASE_URL", "REDIS_URL", "ANALYSIS_QUEUE_KEY", "WORKER_CONCURRENCY", "WORKER_RECEIVE_WAIT", "WORKER_SHUTDOWN_TIMEOUT",
	"QUERY_CACHE_TTL", "ANALYSIS_CONCURRENCY",
	"SWEEP_SCHEDULE", "TAXONOMY_FILE", "MAX_UPLOAD_BYTES",
	"QUERY_RATE_PER_SEC", "QUERY_RATE_BURST", "LOG_JSON", "LOG_LEVEL",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
	"DB_PING_TIMEOUT", "DB_CONNECT_RETRIES",
}

// Load reads configuration from the environment, an optional CONFIG_FILE
// and local .env files, with sensible defaults.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			telemetry.Warn("config.file_unreadable", map[string]any{"path": path, "error": err})
		}
	}

	cfg := fromViper(v)
	if cfg.Env == "production" && cfg.DatabaseURL == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "DATABASE_URL", "env": cfg.Env})
	}
	if cfg.ObjectStoreType == "s3" && cfg.S3Bucket == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "S3_BUCKET", "env": cfg.Env})
	}
	return cfg
}

func fromViper(v *viper.Viper) Config {
	ttl := v.GetDuration("QUERY_CACHE_TTL")
	if ttl < 0 {
		ttl = 0
	}
	concurrency := v.GetInt("ANALYSIS_CONCURRENCY")
	if concurrency <= 0 {
		concurrency = 1
	}
	workers := v.GetInt("WORKER_CONCURRENCY")
	if workers <= 0 {
		workers = 1
	}
	maxUpload := v.GetInt64("MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}

	return Config{
		Port:                v.GetString("PORT"),
		Env:                 normalizeEnv(v.GetString("ENV")),
		CORSAllowOrigin:     splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		ObjectStoreType:     normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:       v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:           v.GetString("AWS_REGION"),
		S3Bucket:            v.GetString("S3_BUCKET"),
		S3Prefix:            v.GetString("S3_PREFIX"),
		SSEKMSKeyID:         v.GetString("SSE_KMS_KEY_ID"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		AnalysisQueueKey:    strings.TrimSpace(v.GetString("ANALYSIS_QUEUE_KEY")),
		WorkerConcurrency:   workers,
		WorkerReceiveWait:   positiveOr(v.GetDuration("WORKER_RECEIVE_WAIT"), 20*time.Second),
		WorkerShutdown:      positiveOr(v.GetDuration("WORKER_SHUTDOWN_TIMEOUT"), 30*time.Second),
		QueryCacheTTL:       ttl,
		AnalysisConcurrency: concurrency,
		SweepSchedule:       strings.TrimSpace(v.GetString("SWEEP_SCHEDULE")),
		TaxonomyFile:        strings.TrimSpace(v.GetString("TAXONOMY_FILE")),
		MaxUploadBytes:      maxUpload,
		QueryRatePerSec:     v.GetFloat64("QUERY_RATE_PER_SEC"),
		QueryRateBurst:      v.GetInt("QUERY_RATE_BURST"),
		LogJSON:             v.GetBool("LOG_JSON"),
		LogDebug:            telemetry.ParseLevel(v.GetString("LOG_LEVEL")),
		DBPool: DBPool{
			MaxOpenConns:    max(v.GetInt("DB_MAX_OPEN_CONNS"), 0),
			MaxIdleConns:    max(v.GetInt("DB_MAX_IDLE_CONNS"), 0),
			ConnMaxLifetime: max(v.GetDuration("DB_CONN_MAX_LIFETIME"), 0),
			ConnMaxIdleTime: max(v.GetDuration("DB_CONN_MAX_IDLE_TIME"), 0),
			PingTimeout:     max(v.GetDuration("DB_PING_TIMEOUT"), 0),
			ConnectRetries:  v.GetInt("DB_CONNECT_RETRIES"),
		},
	}
}

// IsDevLike reports environments where in-memory fallbacks are acceptable.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func positiveOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
