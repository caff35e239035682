package benchmark

import (
	"context"
	"testing"

	"github.com/rowiverse/assessment-backend/internal/data/repos/testutil"
	types "github.com/rowiverse/assessment-backend/internal/domain"
)

func TestStatisticRepoUpsertIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	benchmarkRepo := NewBenchmarkRepo(db, testutil.Logger(t))
	statisticRepo := NewStatisticRepo(db, testutil.Logger(t))

	benchmark, err := benchmarkRepo.Create(ctx, tx, &types.Benchmark{
		Name: "Global 2025",
		Slug: "global-2025",
		Type: types.BenchmarkTypeExternal,
	})
	if err != nil {
		t.Fatalf("create benchmark: %v", err)
	}

	first := []*types.BenchmarkStatistic{
		{BenchmarkID: benchmark.ID, MetricKey: "K", Mean: 98.4, N: 100},
	}
	if err := statisticRepo.Upsert(ctx, tx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := []*types.BenchmarkStatistic{
		{BenchmarkID: benchmark.ID, MetricKey: "K", Mean: 99.1, N: 120},
	}
	if err := statisticRepo.Upsert(ctx, tx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	rows, err := statisticRepo.ListByBenchmark(ctx, tx, benchmark.ID)
	if err != nil {
		t.Fatalf("ListByBenchmark: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("upsert created a duplicate: %d rows", len(rows))
	}
	if rows[0].Mean != 99.1 || rows[0].N != 120 {
		t.Fatalf("second upsert did not replace values: %+v", rows[0])
	}
}

func TestBenchmarkRepoListFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewBenchmarkRepo(db, testutil.Logger(t))

	country := "UK"
	if _, err := repo.Create(ctx, tx, &types.Benchmark{
		Name:    "UK 2025",
		Slug:    "uk-2025",
		Type:    types.BenchmarkTypeExternal,
		Country: &country,
	}); err != nil {
		t.Fatalf("create uk benchmark: %v", err)
	}
	if _, err := repo.Create(ctx, tx, &types.Benchmark{
		Name: "Global 2025",
		Slug: "global-2025",
		Type: types.BenchmarkTypeExternal,
	}); err != nil {
		t.Fatalf("create global benchmark: %v", err)
	}

	filtered, err := repo.List(ctx, tx, ListFilter{Country: "UK"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Slug != "uk-2025" {
		t.Fatalf("country filter failed: %+v", filtered)
	}

	all, err := repo.List(ctx, tx, ListFilter{})
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both benchmarks, got %d", len(all))
	}
}
