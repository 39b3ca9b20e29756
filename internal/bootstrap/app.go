package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/audit"
	"resume-matcher/internal/documents"
	"resume-matcher/internal/extraction"
	"resume-matcher/internal/matching"
	"resume-matcher/internal/profile"
	"resume-matcher/internal/queue"
	"resume-matcher/internal/services/health"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/server"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/storage/db"
	"resume-matcher/internal/shared/storage/object"
	localstore "resume-matcher/internal/shared/storage/object/local"
	s3store "resume-matcher/internal/shared/storage/object/s3"
	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/taxonomy"
)

const (
	rateLimitGroupQuery = "QUERY"
	queryRoute          = "/api/v1/analyze/query"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Redis            *redis.Client
	Queue            *queue.RedisQueue
	Store            object.ObjectStore
	Taxonomy         *taxonomy.Table
	DocumentsRepo    documents.DocumentsRepo
	AnalysesRepo     analyses.Repo
	AuditRepo        audit.Repo
	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	AuditService     *audit.Service
	HealthService    *health.Service
	Sweeper          *analyses.Sweeper
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	tbl, err := buildTaxonomy(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Redis:    buildRedis(ctx, cfg),
		Store:    store,
		Taxonomy: tbl,
	}
	if app.Redis != nil && cfg.AnalysisQueueKey != "" {
		app.Queue = queue.NewRedisQueue(app.Redis, cfg.AnalysisQueueKey)
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		RateLimit:       rateLimitConfig(cfg),
		Metrics:         metrics.Handler(),
		Routes: []server.RouteRegistrar{
			health.NewHandler(app.HealthService),
			documents.NewHandler(app.DocumentsService, analyses.DocumentLookup{Repo: app.AnalysesRepo}),
			analyses.NewHandler(app.AnalysesService),
			audit.NewHandler(app.AuditService),
		},
	})
	return app, nil
}

// Close releases external connections.
func (a *App) Close() {
	if a.Sweeper != nil {
		a.Sweeper.Stop()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildTaxonomy(cfg config.Config) (*taxonomy.Table, error) {
	if cfg.TaxonomyFile == "" {
		return taxonomy.Default(), nil
	}
	tbl, err := taxonomy.LoadFile(cfg.TaxonomyFile)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy %s: %w", cfg.TaxonomyFile, err)
	}
	telemetry.Info("bootstrap.taxonomy_loaded", map[string]any{"path": cfg.TaxonomyFile, "skills": len(tbl.Skills)})
	return tbl, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, DBOptions(db.DefaultServerOptions(), cfg.DBPool))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

// DBOptions applies the configured pool overrides to base.
func DBOptions(base db.Options, pool config.DBPool) db.Options {
	return base.Merge(db.Options{
		MaxOpenConns:    pool.MaxOpenConns,
		MaxIdleConns:    pool.MaxIdleConns,
		ConnMaxLifetime: pool.ConnMaxLifetime,
		ConnMaxIdleTime: pool.ConnMaxIdleTime,
		PingTimeout:     pool.PingTimeout,
		ConnectRetries:  pool.ConnectRetries,
	})
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildRedis returns nil when no cache is configured or Redis is unreachable;
// queries then run uncached.
func buildRedis(ctx context.Context, cfg config.Config) *redis.Client {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	client, err := db.NewRedisClient(pingCtx, cfg.RedisURL)
	if err != nil {
		telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err})
		return nil
	}
	return client
}

func buildServices(app *App) error {
	var docRepo documents.DocumentsRepo
	var analysisRepo analyses.Repo
	var auditRepo audit.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		auditRepo = &audit.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		analysisRepo = analyses.NewMemoryRepo()
		auditRepo = audit.NewMemoryRepo()
	}

	var cache analyses.QueryCache = analyses.NopCache{}
	if app.Redis != nil {
		cache = analyses.NewRedisCache(app.Redis)
	}

	auditSvc := &audit.Service{Repo: auditRepo}
	analysisSvc := &analyses.Service{
		Repo:        analysisRepo,
		DocRepo:     docRepo,
		Store:       app.Store,
		Builder:     profile.NewBuilder(extraction.New(app.Taxonomy)),
		Engine:      matching.NewEngine(app.Taxonomy),
		Audit:       auditSvc,
		Cache:       cache,
		CacheTTL:    app.Config.QueryCacheTTL,
		Concurrency: app.Config.AnalysisConcurrency,
	}

	app.DocumentsRepo = docRepo
	app.AnalysesRepo = analysisRepo
	app.AuditRepo = auditRepo
	app.DocumentsService = &documents.Service{
		Store:          app.Store,
		Repo:           docRepo,
		MaxUploadBytes: app.Config.MaxUploadBytes,
	}
	if app.Queue != nil {
		app.DocumentsService.Queue = app.Queue
	}
	app.AnalysesService = analysisSvc
	app.AuditService = auditSvc

	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.HealthService = health.NewService(pinger, app.Store, app.Taxonomy)

	if app.Config.SweepSchedule != "" {
		sweeper, err := analyses.NewSweeper(analysisSvc, docRepo, app.Config.SweepSchedule)
		if err != nil {
			return err
		}
		app.Sweeper = sweeper
	}
	return nil
}

func rateLimitConfig(cfg config.Config) middleware.RateLimitConfig {
	rules := map[string]middleware.RateLimitRule{}
	if cfg.QueryRatePerSec > 0 && cfg.QueryRateBurst > 0 {
		rules[rateLimitGroupQuery] = middleware.RateLimitRule{Rate: cfg.QueryRatePerSec, Burst: cfg.QueryRateBurst}
	}
	return middleware.RateLimitConfig{
		Rules: rules,
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == queryRoute {
				return rateLimitGroupQuery
			}
			return ""
		},
	}
}
