package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/ff/v3"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	"github.com/rowiverse/assessment-backend/internal/db"
	"github.com/rowiverse/assessment-backend/internal/modules/importer"
	"github.com/rowiverse/assessment-backend/internal/platform/gcs"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
	"github.com/rowiverse/assessment-backend/internal/platform/neo4jdb"
	"github.com/rowiverse/assessment-backend/internal/services"
)

func main() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	var (
		_             = fs.String("config", "", "config file (optional), json format.")
		source        = fs.String("source", "", "export to import: local path or gs://bucket/object")
		communityName = fs.String("community-name", "", "display name for the community (defaults to the slug)")
		communitySlug = fs.String("community-slug", "", "unique slug of the target community (required)")
		tenantID      = fs.String("tenant-id", "", "tenant uuid to scope the community to (optional)")
		batchSize     = fs.Int("batch-size", 0, "rows per concurrent batch, 0 for the default")
		batchDelayMS  = fs.Int("batch-delay-ms", -1, "pause between batches in ms, -1 for the default")
		logMode       = fs.String("log-mode", "production", "logger mode: development or production")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.JSONParser),
		ff.WithEnvVarPrefix("ASSESSMENT_IMPORT"),
	); err != nil {
		fmt.Printf("Cannot parse flags: %v\n", err)
		os.Exit(1)
	}

	if *source == "" || *communitySlug == "" {
		fmt.Println("usage: import -source <file|gs://...> -community-slug <slug> [flags]")
		os.Exit(2)
	}

	log, err := logger.New(*logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	allRepos := repos.NewAll(postgresService.DB(), log)

	graph, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Neo4j init failed, identity graph mirror disabled", "error", err)
	}
	if graph != nil {
		defer graph.Close(ctx)
	}

	var fetcher *gcs.Fetcher
	if gcs.IsURI(*source) {
		fetcher, err = gcs.NewFetcher(ctx, log)
		if err != nil {
			log.Error("GCS init failed", "error", err)
			os.Exit(1)
		}
		defer fetcher.Close()
	}

	rows, err := readRows(ctx, fetcher, *source)
	if err != nil {
		log.Error("Reading export failed", "source", *source, "error", err)
		os.Exit(1)
	}

	usecases := importer.New(importer.UsecasesDeps{
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

	in := importer.RunImportInput{
		CommunityName: *communityName,
		CommunitySlug: *communitySlug,
		Rows:          rows,
		BatchSize:     *batchSize,
		BatchDelay:    time.Duration(*batchDelayMS) * time.Millisecond,
	}
	if *tenantID != "" {
		parsed, err := uuid.Parse(*tenantID)
		if err != nil {
			log.Error("Invalid tenant id", "tenant_id", *tenantID, "error", err)
			os.Exit(1)
		}
		in.TenantID = &parsed
	}

	summary, err := usecases.RunImport(ctx, in)
	if err != nil {
		log.Error("Import failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Error("Encoding summary failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func readRows(ctx context.Context, fetcher *gcs.Fetcher, source string) ([]importer.RawRow, error) {
	if fetcher != nil {
		reader, err := fetcher.Open(ctx, source)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return services.ParseDelimited(reader)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return services.ParseDelimited(f)
}
