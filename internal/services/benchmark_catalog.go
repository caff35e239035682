package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/modules/importer/steps"
	"github.com/rowiverse/assessment-backend/internal/modules/insights"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

// CatalogFile is the on-disk shape of configs/benchmarks.yaml: externally
// sourced benchmark populations with their precomputed statistics.
type CatalogFile struct {
	Benchmarks []CatalogBenchmark `yaml:"benchmarks"`
}

type CatalogBenchmark struct {
	Name      string `yaml:"name"`
	Slug      string `yaml:"slug"`
	Type      string `yaml:"type"`
	Scope     string `yaml:"scope"`
	Country   string `yaml:"country"`
	Region    string `yaml:"region"`
	Sector    string `yaml:"sector"`
	TotalRows int    `yaml:"totalRows"`

	Statistics []CatalogStatistic `yaml:"statistics"`
}

type CatalogStatistic struct {
	Metric string  `yaml:"metric"`
	Mean   float64 `yaml:"mean"`
	Median float64 `yaml:"median"`
	StdDev float64 `yaml:"stdDev"`
	P25    float64 `yaml:"p25"`
	P50    float64 `yaml:"p50"`
	P75    float64 `yaml:"p75"`
	P90    float64 `yaml:"p90"`
	N      int     `yaml:"n"`
}

type BenchmarkCatalogService interface {
	List(ctx context.Context, filter repos.BenchmarkListFilter) ([]*types.Benchmark, error)
	SeedFromYAML(ctx context.Context, path string) (int, error)
	// RecomputeCommunity rebuilds the community-derived benchmark from the
	// community's current snapshot set.
	RecomputeCommunity(ctx context.Context, communityID uuid.UUID) (*types.Benchmark, error)
}

type benchmarkCatalogService struct {
	log   *logger.Logger
	repos repos.All
}

func NewBenchmarkCatalogService(log *logger.Logger, allRepos repos.All) BenchmarkCatalogService {
	serviceLog := log.With("service", "BenchmarkCatalogService")
	return &benchmarkCatalogService{log: serviceLog, repos: allRepos}
}

func (bs *benchmarkCatalogService) List(ctx context.Context, filter repos.BenchmarkListFilter) ([]*types.Benchmark, error) {
	return bs.repos.Benchmarks.List(ctx, nil, filter)
}

// SeedFromYAML upserts every catalog entry, keyed by slug. Re-seeding with the
// same file is a no-op apart from refreshed statistics.
func (bs *benchmarkCatalogService) SeedFromYAML(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("seed benchmarks: read %s: %w", path, err)
	}
	var catalog CatalogFile
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return 0, fmt.Errorf("seed benchmarks: parse %s: %w", path, err)
	}

	seeded := 0
	for _, entry := range catalog.Benchmarks {
		if entry.Slug == "" || entry.Name == "" {
			bs.log.Warn("skipping catalog entry without name/slug", "entry", entry.Name)
			continue
		}
		benchmark, err := bs.repos.Benchmarks.GetBySlug(ctx, nil, entry.Slug)
		if err != nil {
			return seeded, fmt.Errorf("seed benchmarks: lookup %s: %w", entry.Slug, err)
		}
		if benchmark == nil {
			benchmark, err = bs.repos.Benchmarks.Create(ctx, nil, catalogEntryToBenchmark(entry))
			if err != nil {
				return seeded, fmt.Errorf("seed benchmarks: create %s: %w", entry.Slug, err)
			}
		} else if benchmark.TotalRows != entry.TotalRows {
			if err := bs.repos.Benchmarks.UpdateTotalRows(ctx, nil, benchmark.ID, entry.TotalRows); err != nil {
				return seeded, fmt.Errorf("seed benchmarks: update %s: %w", entry.Slug, err)
			}
		}

		stats := make([]*types.BenchmarkStatistic, 0, len(entry.Statistics))
		for _, s := range entry.Statistics {
			stats = append(stats, &types.BenchmarkStatistic{
				BenchmarkID: benchmark.ID,
				MetricKey:   s.Metric,
				Mean:        s.Mean,
				Median:      s.Median,
				StdDev:      s.StdDev,
				P25:         s.P25,
				P50:         s.P50,
				P75:         s.P75,
				P90:         s.P90,
				N:           s.N,
			})
		}
		if err := bs.repos.Statistics.Upsert(ctx, nil, stats); err != nil {
			return seeded, fmt.Errorf("seed benchmarks: statistics %s: %w", entry.Slug, err)
		}
		seeded++
	}
	bs.log.Info("benchmark catalog seeded", "path", path, "benchmarks", seeded)
	return seeded, nil
}

func (bs *benchmarkCatalogService) RecomputeCommunity(ctx context.Context, communityID uuid.UUID) (*types.Benchmark, error) {
	community, err := bs.repos.Communities.GetByID(ctx, nil, communityID)
	if err != nil {
		return nil, fmt.Errorf("recompute benchmark: community: %w", err)
	}
	if community == nil {
		return nil, fmt.Errorf("recompute benchmark: community %s not found", communityID)
	}

	deps := insights.ResolverDeps{
		Log:         bs.log,
		Accounts:    bs.repos.Accounts,
		Members:     bs.repos.Members,
		Memberships: bs.repos.Memberships,
		Snapshots:   bs.repos.Snapshots,
		Benchmarks:  bs.repos.Benchmarks,
		Statistics:  bs.repos.Statistics,
		Profiles:    bs.repos.Profiles,
	}

	// The benchmark only ever reflects the community's own members; tenant
	// fallback data must not leak into a community-labelled population.
	sample, err := insights.ResolveCommunitySample(ctx, deps, community, "effectiveness")
	if err != nil {
		return nil, fmt.Errorf("recompute benchmark: sample: %w", err)
	}
	if sample.Tier != insights.TierCommunity {
		return nil, fmt.Errorf("recompute benchmark: community %s has no own sample", community.Slug)
	}

	slug := "community-" + community.Slug
	benchmark, err := bs.repos.Benchmarks.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, fmt.Errorf("recompute benchmark: lookup: %w", err)
	}
	if benchmark == nil {
		benchmark, err = bs.repos.Benchmarks.Create(ctx, nil, &types.Benchmark{
			Name:        community.Name,
			Slug:        slug,
			Type:        types.BenchmarkTypeCommunity,
			Scope:       types.BenchmarkScopeTenant,
			CommunityID: &community.ID,
			TenantID:    community.TenantID,
		})
		if err != nil {
			return nil, fmt.Errorf("recompute benchmark: create: %w", err)
		}
	}

	var statRows []*types.BenchmarkStatistic
	sampleSize := 0
	for key, values := range sample.Metrics {
		stats := insights.ComputeStats(values)
		if stats.N > sampleSize {
			sampleSize = stats.N
		}
		statRows = append(statRows, &types.BenchmarkStatistic{
			BenchmarkID: benchmark.ID,
			MetricKey:   key,
			Mean:        stats.Mean,
			Median:      stats.Median,
			StdDev:      stats.StdDev,
			P25:         stats.P25,
			P50:         stats.P50,
			P75:         stats.P75,
			P90:         stats.P90,
			N:           stats.N,
		})
	}
	if err := bs.repos.Statistics.Upsert(ctx, nil, statRows); err != nil {
		return nil, fmt.Errorf("recompute benchmark: statistics: %w", err)
	}

	var profileRows []*types.TopPerformerProfile
	for _, mapping := range steps.OutcomeColumns {
		outcomeSample, err := insights.ResolveCommunitySample(ctx, deps, community, mapping.Key)
		if err != nil {
			continue
		}
		profile := insights.ExtractTopPerformers(outcomeSample.Subjects, mapping.Key)
		if profile == nil {
			continue
		}
		row, err := profileToRow(benchmark.ID, profile)
		if err != nil {
			return nil, fmt.Errorf("recompute benchmark: profile %s: %w", mapping.Key, err)
		}
		profileRows = append(profileRows, row)
	}
	if err := bs.repos.Profiles.Upsert(ctx, nil, profileRows); err != nil {
		return nil, fmt.Errorf("recompute benchmark: profiles: %w", err)
	}

	if err := bs.repos.Benchmarks.UpdateTotalRows(ctx, nil, benchmark.ID, sampleSize); err != nil {
		return nil, fmt.Errorf("recompute benchmark: total rows: %w", err)
	}
	benchmark.TotalRows = sampleSize

	bs.log.Info("community benchmark recomputed",
		"community", community.Slug, "metrics", len(statRows), "profiles", len(profileRows))
	return benchmark, nil
}

func catalogEntryToBenchmark(entry CatalogBenchmark) *types.Benchmark {
	b := &types.Benchmark{
		Name:      entry.Name,
		Slug:      entry.Slug,
		Type:      entry.Type,
		Scope:     entry.Scope,
		TotalRows: entry.TotalRows,
	}
	if b.Type == "" {
		b.Type = types.BenchmarkTypeExternal
	}
	if b.Scope == "" {
		b.Scope = types.BenchmarkScopeGlobal
	}
	if entry.Country != "" {
		country := entry.Country
		b.Country = &country
	}
	if entry.Region != "" {
		region := entry.Region
		b.Region = &region
	}
	if entry.Sector != "" {
		sector := entry.Sector
		b.Sector = &sector
	}
	return b
}

func profileToRow(benchmarkID uuid.UUID, profile *insights.TopPerformerProfile) (*types.TopPerformerProfile, error) {
	competencies, err := json.Marshal(profile.Competencies)
	if err != nil {
		return nil, err
	}
	talents, err := json.Marshal(profile.Talents)
	if err != nil {
		return nil, err
	}
	top3, err := json.Marshal(profile.Top3Competencies)
	if err != nil {
		return nil, err
	}
	top5, err := json.Marshal(profile.Top5Talents)
	if err != nil {
		return nil, err
	}
	return &types.TopPerformerProfile{
		BenchmarkID:      benchmarkID,
		OutcomeKey:       profile.OutcomeKey,
		Competencies:     competencies,
		Talents:          talents,
		Top3Competencies: top3,
		Top5Talents:      top5,
		SampleSize:       profile.SampleSize,
	}, nil
}
