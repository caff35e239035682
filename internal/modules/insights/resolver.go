package insights

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

// ErrNoData means no tier had a usable sample for the request. Callers turn
// this into an explicit no-data response, never into zero-filled statistics.
var ErrNoData = errors.New("no data available for the requested scope")

// Tier names the population that actually backed a comparison. A response must
// always carry the tier used so a tenant-level fallback is never mistaken for
// community data.
type Tier string

const (
	TierCommunity Tier = "community"
	TierTenant    Tier = "tenant"
	TierBenchmark Tier = "benchmark"
	TierRowiverse Tier = "rowiverse"
)

type ResolverDeps struct {
	Log         *logger.Logger
	Accounts    repos.AccountRepo
	Members     repos.MemberRepo
	Memberships repos.MembershipRepo
	Snapshots   repos.SnapshotRepo
	Benchmarks  repos.BenchmarkRepo
	Statistics  repos.BenchmarkStatisticRepo
	Profiles    repos.TopPerformerProfileRepo
}

// LiveSample is one latest snapshot per subject, flattened into the shapes the
// statistics engine and top-performer extractor consume. Metrics collects the
// non-null values per metric key across the whole sample; Subjects carries
// only the members that scored the requested outcome.
type LiveSample struct {
	Tier     Tier
	Subjects []Subject
	Metrics  map[string][]float64
}

// BenchmarkData is the precomputed counterpart of LiveSample: statistics and
// top-performer profiles read straight from benchmark rows.
type BenchmarkData struct {
	Tier      Tier
	Benchmark *types.Benchmark
	Stats     map[string]Stats
	Profiles  map[string]*types.TopPerformerProfile
}

// ResolveCommunitySample gathers the latest snapshot of every active member of
// the community. When no member has a snapshot it falls back to the tenant's
// legacy member roster before giving up with ErrNoData. The returned sample
// reports which tier it was actually drawn from.
func ResolveCommunitySample(ctx context.Context, deps ResolverDeps, community *types.Community, outcomeKey string) (*LiveSample, error) {
	if community == nil {
		return nil, ErrNoData
	}

	memberships, err := deps.Memberships.ListActiveByCommunity(ctx, nil, community.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve community sample: memberships: %w", err)
	}
	accountIDs := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		accountIDs = append(accountIDs, m.AccountID)
	}

	snapshots, err := deps.Snapshots.LatestByAccountIDs(ctx, nil, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve community sample: snapshots: %w", err)
	}
	if len(snapshots) > 0 {
		return buildLiveSample(ctx, deps, TierCommunity, snapshots, outcomeKey)
	}

	deps.Log.Info("community has no snapshot-bearing members, trying tenant fallback",
		"community_id", community.ID)
	return resolveTenantSample(ctx, deps, community, outcomeKey)
}

// resolveTenantSample draws on the tenant's legacy member roster, mapping each
// member back to an account by email.
func resolveTenantSample(ctx context.Context, deps ResolverDeps, community *types.Community, outcomeKey string) (*LiveSample, error) {
	if community.TenantID == nil {
		return nil, ErrNoData
	}
	members, err := deps.Members.ListByTenant(ctx, nil, *community.TenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant sample: members: %w", err)
	}

	var accountIDs []uuid.UUID
	for _, m := range members {
		account, err := deps.Accounts.GetByEmail(ctx, nil, m.Email)
		if err != nil {
			return nil, fmt.Errorf("resolve tenant sample: account %s: %w", m.Email, err)
		}
		if account != nil {
			accountIDs = append(accountIDs, account.ID)
		}
	}

	snapshots, err := deps.Snapshots.LatestByAccountIDs(ctx, nil, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant sample: snapshots: %w", err)
	}
	if len(snapshots) == 0 {
		return nil, ErrNoData
	}
	return buildLiveSample(ctx, deps, TierTenant, snapshots, outcomeKey)
}

// ResolveBenchmark reads a precomputed benchmark population. A specific id
// wins; otherwise the filter picks the first matching catalog entry. A
// benchmark with no statistic rows counts as no data.
func ResolveBenchmark(ctx context.Context, deps ResolverDeps, benchmarkID *uuid.UUID, filter repos.BenchmarkListFilter, tier Tier) (*BenchmarkData, error) {
	var benchmark *types.Benchmark
	var err error
	if benchmarkID != nil {
		benchmark, err = deps.Benchmarks.GetByID(ctx, nil, *benchmarkID)
	} else {
		var candidates []*types.Benchmark
		candidates, err = deps.Benchmarks.List(ctx, nil, filter)
		if err == nil && len(candidates) > 0 {
			benchmark = candidates[0]
		}
	}
	if err != nil {
		return nil, fmt.Errorf("resolve benchmark: %w", err)
	}
	if benchmark == nil {
		return nil, ErrNoData
	}

	statRows, err := deps.Statistics.ListByBenchmark(ctx, nil, benchmark.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve benchmark: statistics: %w", err)
	}
	if len(statRows) == 0 {
		return nil, ErrNoData
	}

	profileRows, err := deps.Profiles.ListByBenchmark(ctx, nil, benchmark.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve benchmark: profiles: %w", err)
	}

	stats := make(map[string]Stats, len(statRows))
	for _, row := range statRows {
		stats[row.MetricKey] = Stats{
			Mean:   row.Mean,
			Median: row.Median,
			StdDev: row.StdDev,
			P25:    row.P25,
			P50:    row.P50,
			P75:    row.P75,
			P90:    row.P90,
			N:      row.N,
		}
	}
	profiles := make(map[string]*types.TopPerformerProfile, len(profileRows))
	for _, row := range profileRows {
		profiles[row.OutcomeKey] = row
	}

	return &BenchmarkData{
		Tier:      tier,
		Benchmark: benchmark,
		Stats:     stats,
		Profiles:  profiles,
	}, nil
}

// buildLiveSample loads the child records of the given snapshots and flattens
// them into subjects and per-metric value lists. Composite scores live on the
// snapshot row itself; subfactors, outcomes, and talents come from children.
func buildLiveSample(ctx context.Context, deps ResolverDeps, tier Tier, snapshots []*types.Snapshot, outcomeKey string) (*LiveSample, error) {
	snapshotIDs := make([]uuid.UUID, 0, len(snapshots))
	for _, s := range snapshots {
		snapshotIDs = append(snapshotIDs, s.ID)
	}

	subfactors, err := deps.Snapshots.SubfactorsBySnapshotIDs(ctx, nil, snapshotIDs)
	if err != nil {
		return nil, fmt.Errorf("build sample: subfactors: %w", err)
	}
	outcomes, err := deps.Snapshots.OutcomesBySnapshotIDs(ctx, nil, snapshotIDs)
	if err != nil {
		return nil, fmt.Errorf("build sample: outcomes: %w", err)
	}
	talents, err := deps.Snapshots.TalentsBySnapshotIDs(ctx, nil, snapshotIDs)
	if err != nil {
		return nil, fmt.Errorf("build sample: talents: %w", err)
	}

	subfactorsBySnapshot := map[uuid.UUID][]*types.Subfactor{}
	for _, row := range subfactors {
		subfactorsBySnapshot[row.SnapshotID] = append(subfactorsBySnapshot[row.SnapshotID], row)
	}
	outcomesBySnapshot := map[uuid.UUID][]*types.Outcome{}
	for _, row := range outcomes {
		outcomesBySnapshot[row.SnapshotID] = append(outcomesBySnapshot[row.SnapshotID], row)
	}
	talentsBySnapshot := map[uuid.UUID][]*types.Talent{}
	for _, row := range talents {
		talentsBySnapshot[row.SnapshotID] = append(talentsBySnapshot[row.SnapshotID], row)
	}

	sample := &LiveSample{
		Tier:    tier,
		Metrics: map[string][]float64{},
	}
	for _, snapshot := range snapshots {
		competencies := map[string]*float64{}
		if snapshot.KnowYourself != nil {
			competencies["K"] = snapshot.KnowYourself
		}
		if snapshot.ChooseYourself != nil {
			competencies["C"] = snapshot.ChooseYourself
		}
		if snapshot.GiveYourself != nil {
			competencies["G"] = snapshot.GiveYourself
		}
		for _, row := range subfactorsBySnapshot[snapshot.ID] {
			score := row.Score
			competencies[row.Key] = &score
		}

		talentVector := map[string]*float64{}
		for _, row := range talentsBySnapshot[snapshot.ID] {
			score := row.Score
			talentVector[row.Key] = &score
		}

		for key, val := range competencies {
			sample.Metrics[key] = append(sample.Metrics[key], *val)
		}
		for key, val := range talentVector {
			sample.Metrics[key] = append(sample.Metrics[key], *val)
		}

		var outcomeScore *float64
		for _, row := range outcomesBySnapshot[snapshot.ID] {
			sample.Metrics[row.Key] = append(sample.Metrics[row.Key], row.Score)
			if row.Key == outcomeKey {
				score := row.Score
				outcomeScore = &score
			}
		}

		if outcomeScore != nil {
			sample.Subjects = append(sample.Subjects, Subject{
				AccountID:    snapshot.AccountID,
				OutcomeScore: *outcomeScore,
				Competencies: competencies,
				Talents:      talentVector,
			})
		}
	}

	if len(sample.Metrics) == 0 {
		return nil, ErrNoData
	}
	return sample, nil
}
