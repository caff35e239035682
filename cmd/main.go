package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	"github.com/rowiverse/assessment-backend/internal/db"
	"github.com/rowiverse/assessment-backend/internal/http/handlers"
	"github.com/rowiverse/assessment-backend/internal/modules/importer"
	"github.com/rowiverse/assessment-backend/internal/observability"
	"github.com/rowiverse/assessment-backend/internal/platform/envutil"
	"github.com/rowiverse/assessment-backend/internal/platform/gcs"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
	"github.com/rowiverse/assessment-backend/internal/platform/neo4jdb"
	"github.com/rowiverse/assessment-backend/internal/platform/redisdb"
	"github.com/rowiverse/assessment-backend/internal/server"
	"github.com/rowiverse/assessment-backend/internal/services"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "assessment-backend",
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
	})
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(shutdownCtx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	allRepos := repos.NewAll(thePG, log)

	// Optional platform clients
	graph, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Neo4j init failed, identity graph mirror disabled", "error", err)
	}
	if graph != nil {
		defer graph.Close(ctx)
	}
	cache, err := redisdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Redis init failed, comparison cache disabled", "error", err)
	}
	if cache != nil {
		defer cache.Close()
	}
	var fetcher *gcs.Fetcher
	if envutil.Bool("GCS_ENABLED", false) {
		fetcher, err = gcs.NewFetcher(ctx, log)
		if err != nil {
			log.Warn("GCS init failed, remote import sources disabled", "error", err)
		}
	}
	if fetcher != nil {
		defer fetcher.Close()
	}

	// Services
	log.Info("Setting up services from main...")
	importUsecases := importer.New(importer.UsecasesDeps{
		Log:           log,
		Accounts:      allRepos.Accounts,
		VerseProfiles: allRepos.VerseProfiles,
		Members:       allRepos.Members,
		Communities:   allRepos.Communities,
		Memberships:   allRepos.Memberships,
		Snapshots:     allRepos.Snapshots,
		Contributions: allRepos.Contributions,
		Graph:         graph,
	})
	importService := services.NewImportService(log, importUsecases, fetcher)
	comparisonService := services.NewComparisonService(log, allRepos, cache)
	catalogService := services.NewBenchmarkCatalogService(log, allRepos)

	catalogPath := envutil.String("BENCHMARK_CATALOG_PATH", "configs/benchmarks.yaml")
	if _, err := os.Stat(catalogPath); err == nil {
		if _, err := catalogService.SeedFromYAML(ctx, catalogPath); err != nil {
			log.Warn("Benchmark catalog seed failed", "path", catalogPath, "error", err)
		}
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	importHandler := handlers.NewImportHandler(importService)
	insightsHandler := handlers.NewInsightsHandler(comparisonService)
	benchmarkHandler := handlers.NewBenchmarkHandler(catalogService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:      "assessment-backend",
		Tracing:          shutdownOTel != nil,
		ImportHandler:    importHandler,
		InsightsHandler:  insightsHandler,
		BenchmarkHandler: benchmarkHandler,
	})

	port := envutil.String("PORT", "8080")
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
