// Package main is the entry point for the academic core API server.
//
// The server owns the grade write path, the aggregation engine with its
// Redis-backed cache, report generation and the report catalog. It is
// the only process that writes to the grade ledger.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/digitschool/academic-core/config"
	"github.com/digitschool/academic-core/internal/application/aggregate"
	"github.com/digitschool/academic-core/internal/application/command"
	"github.com/digitschool/academic-core/internal/application/query"
	"github.com/digitschool/academic-core/internal/domain/grade"
	"github.com/digitschool/academic-core/internal/domain/progress"
	"github.com/digitschool/academic-core/internal/domain/report"
	"github.com/digitschool/academic-core/internal/domain/roster"
	"github.com/digitschool/academic-core/internal/infrastructure/persistence/memory"
	"github.com/digitschool/academic-core/internal/infrastructure/persistence/postgres"
	"github.com/digitschool/academic-core/internal/infrastructure/persistence/redis"
	"github.com/digitschool/academic-core/internal/infrastructure/render"
	"github.com/digitschool/academic-core/internal/infrastructure/storage"
	httpapi "github.com/digitschool/academic-core/internal/interface/http"
	"github.com/digitschool/academic-core/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// Configuration
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(os.Stdout,
		logger.ParseLevel(cfg.Observability.LogLevel),
		logger.Format(cfg.Observability.LogFormat),
	)

	log.Info("starting academic core",
		logger.String("environment", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// PostgreSQL
	// ─────────────────────────────────────────────────────────────────────────
	var (
		ledgerRepo   grade.Ledger
		rosterRepo   roster.Repository
		catalogRepo  report.Catalog
		progressRepo progress.Repository
		pinger       func(ctx context.Context) error
	)

	if cfg.Database.URL != "" {
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolSettings{
			MaxConns:        int32(cfg.Database.MaxOpenConns),
			MinConns:        int32(cfg.Database.MaxIdleConns),
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
			QueryTimeout:    cfg.Database.QueryTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer conn.Close()

		migrator := postgres.NewMigrator(conn)
		if cfg.Database.MigrateAction == "rollback" {
			if err := migrator.Rollback(ctx); err != nil {
				return fmt.Errorf("rollback migration: %w", err)
			}
			log.Info("last migration rolled back, exiting")
			return nil
		}
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info("database migrations applied")

		ledgerRepo = postgres.NewGradeRepository(conn)
		rosterRepo = postgres.NewRosterRepository(conn)
		catalogRepo = postgres.NewReportRepository(conn)
		progressRepo = postgres.NewTeacherProgressRepository(conn)
		pinger = conn.Ping
	} else {
		// Development fallback: everything lives in memory.
		log.Warn("DATABASE_URL not set, using in-memory persistence")
		memRoster := memory.NewRoster()
		ledgerRepo = memory.NewLedger(memRoster)
		rosterRepo = memRoster
		catalogRepo = memory.NewCatalog()
		progressRepo = memory.NewProgressRepository()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Redis (aggregation cache)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		snapshotCache grade.SnapshotCache
		genLock       report.GenerationLock
	)

	if cfg.Redis.Disabled {
		log.Warn("redis disabled, aggregate cache falls back to in-memory")
		snapshotCache = memory.NewSnapshotCache()
		genLock = memory.NewGenerationLock()
	} else {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err := redis.NewCache(redisCfg)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer cache.Close()

		snapshotCache = redis.NewSnapshotCache(cache)
		genLock = redis.NewGenerationLock(cache)
		log.Info("redis connected", logger.String("addr", redisCfg.Addr()))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Report rendering & storage
	// ─────────────────────────────────────────────────────────────────────────
	renderer := render.NewTextRenderer(cfg.App.Location)

	artifactStore, err := storage.NewFileSystemStore(cfg.Reports.OutputDir)
	if err != nil {
		return fmt.Errorf("init artifact store: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Application layer (CQRS handlers)
	// ─────────────────────────────────────────────────────────────────────────
	engine := aggregate.NewEngine(ledgerRepo, snapshotCache, rosterRepo, log)

	allowDuplicates := cfg.Features.IsEnabled(config.FeatureReportsAllowDuplicates)

	deps := httpapi.Dependencies{
		AppendGrade: command.NewAppendGradeHandler(ledgerRepo, snapshotCache, log),
		GenerateStudentReport: command.NewGenerateStudentReportHandler(
			engine, rosterRepo, renderer, artifactStore, catalogRepo, genLock, allowDuplicates, log),
		GenerateClassReport: command.NewGenerateClassReportHandler(
			engine, rosterRepo, renderer, artifactStore, catalogRepo, genLock, allowDuplicates, log),
		RecordProgress:     command.NewRecordProgressHandler(progressRepo),
		FlushSnapshotCache: command.NewFlushSnapshotCacheHandler(snapshotCache, log),

		GetStudentAverage:  query.NewGetStudentAverageHandler(engine),
		GetStudentGrades:   query.NewGetStudentGradesHandler(ledgerRepo),
		GetClassStatistics: query.NewGetClassStatisticsHandler(engine, rosterRepo),
		ListReports:        query.NewListReportsHandler(catalogRepo),
		GetReport:          query.NewGetReportHandler(catalogRepo, artifactStore),
		GetTermOverview:    query.NewGetTermOverviewHandler(ledgerRepo, rosterRepo),
		GetTeacherProgress: query.NewGetTeacherProgressHandler(progressRepo),

		Features: cfg.Features,
		Pinger:   pinger,
		Logger:   log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// HTTP server
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpapi.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout

	server := httpapi.NewServer(serverCfg, deps)
	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// Graceful shutdown
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
