package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/modules/importer/steps"
	"github.com/rowiverse/assessment-backend/internal/modules/insights"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
	"github.com/rowiverse/assessment-backend/internal/platform/redisdb"
)

const (
	CompareWithCommunity = "community"
	CompareWithBenchmark = "benchmark"
	CompareWithRowiverse = "rowiverse"

	comparisonCacheTTL = 5 * time.Minute
)

type ComparisonRequest struct {
	AccountID   uuid.UUID
	CompareWith string
	BenchmarkID *uuid.UUID
	Outcome     string
	Country     string
	Region      string
	Sector      string
}

// MetricComparison pairs one of the subject's scores with the sample it is
// being compared against. Score is nil when the subject never recorded the
// metric; that is distinct from a recorded zero.
type MetricComparison struct {
	Key           string   `json:"key"`
	Score         *float64 `json:"score"`
	BenchmarkMean float64  `json:"benchmarkMean"`
	Percentile    float64  `json:"percentile"`
}

type BenchmarkRef struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	TotalRows int       `json:"totalRows"`
}

type ComparisonFilters struct {
	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
	Sector  string `json:"sector,omitempty"`
}

type ComparisonResult struct {
	OK                     bool                          `json:"ok"`
	SampleUsed             string                        `json:"sampleUsed"`
	Competencies           []MetricComparison            `json:"competencies"`
	Talents                []MetricComparison            `json:"talents"`
	Top3Competencies       []insights.RankedMetric       `json:"top3Competencies"`
	Top5Talents            []insights.RankedMetric       `json:"top5Talents"`
	Benchmark              *BenchmarkRef                 `json:"benchmark,omitempty"`
	TopPerformerProfile    *insights.TopPerformerProfile `json:"topPerformerProfile,omitempty"`
	TopPerformerComparison []MetricComparison            `json:"topPerformerComparison,omitempty"`
	AvailableBenchmarks    []BenchmarkRef                `json:"availableBenchmarks"`
	Filters                ComparisonFilters             `json:"filters"`
}

type ComparisonService interface {
	Compare(ctx context.Context, req ComparisonRequest) (*ComparisonResult, error)
}

type comparisonService struct {
	log   *logger.Logger
	repos repos.All
	cache *redisdb.Client
}

func NewComparisonService(log *logger.Logger, allRepos repos.All, cache *redisdb.Client) ComparisonService {
	serviceLog := log.With("service", "ComparisonService")
	return &comparisonService{log: serviceLog, repos: allRepos, cache: cache}
}

func (cs *comparisonService) resolverDeps() insights.ResolverDeps {
	return insights.ResolverDeps{
		Log:         cs.log,
		Accounts:    cs.repos.Accounts,
		Members:     cs.repos.Members,
		Memberships: cs.repos.Memberships,
		Snapshots:   cs.repos.Snapshots,
		Benchmarks:  cs.repos.Benchmarks,
		Statistics:  cs.repos.Statistics,
		Profiles:    cs.repos.Profiles,
	}
}

func (cs *comparisonService) Compare(ctx context.Context, req ComparisonRequest) (*ComparisonResult, error) {
	if req.Outcome == "" {
		req.Outcome = "effectiveness"
	}

	cacheKey := comparisonCacheKey(req)
	if raw, ok := cs.cache.Get(ctx, cacheKey); ok {
		var cached ComparisonResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	subject, err := cs.loadSubject(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	var result *ComparisonResult
	switch req.CompareWith {
	case CompareWithCommunity, "":
		result, err = cs.compareWithCommunity(ctx, req, subject)
	case CompareWithBenchmark, CompareWithRowiverse:
		result, err = cs.compareWithBenchmark(ctx, req, subject)
	default:
		return nil, fmt.Errorf("compare: unknown scope %q", req.CompareWith)
	}
	if err != nil {
		return nil, err
	}

	result.Filters = ComparisonFilters{Country: req.Country, Region: req.Region, Sector: req.Sector}
	if refs, err := cs.availableBenchmarks(ctx); err != nil {
		cs.log.Warn("listing available benchmarks failed", "error", err)
	} else {
		result.AvailableBenchmarks = refs
	}

	if raw, err := json.Marshal(result); err == nil {
		cs.cache.Set(ctx, cacheKey, raw, comparisonCacheTTL)
	}
	return result, nil
}

// subjectVectors is the subject's own latest snapshot flattened into metric
// maps, pointer-valued so missing metrics stay distinguishable from zeros.
type subjectVectors struct {
	communityID  uuid.UUID
	competencies map[string]*float64
	talents      map[string]*float64
}

func (cs *comparisonService) loadSubject(ctx context.Context, accountID uuid.UUID) (*subjectVectors, error) {
	snapshots, err := cs.repos.Snapshots.LatestByAccountIDs(ctx, nil, []uuid.UUID{accountID})
	if err != nil {
		return nil, fmt.Errorf("compare: load subject snapshot: %w", err)
	}
	if len(snapshots) == 0 {
		return nil, insights.ErrNoData
	}
	snapshot := snapshots[0]

	subject := &subjectVectors{
		communityID:  snapshot.CommunityID,
		competencies: map[string]*float64{},
		talents:      map[string]*float64{},
	}
	if snapshot.KnowYourself != nil {
		subject.competencies["K"] = snapshot.KnowYourself
	}
	if snapshot.ChooseYourself != nil {
		subject.competencies["C"] = snapshot.ChooseYourself
	}
	if snapshot.GiveYourself != nil {
		subject.competencies["G"] = snapshot.GiveYourself
	}

	subfactors, err := cs.repos.Snapshots.SubfactorsBySnapshotIDs(ctx, nil, []uuid.UUID{snapshot.ID})
	if err != nil {
		return nil, fmt.Errorf("compare: load subject subfactors: %w", err)
	}
	for _, row := range subfactors {
		score := row.Score
		subject.competencies[row.Key] = &score
	}

	talents, err := cs.repos.Snapshots.TalentsBySnapshotIDs(ctx, nil, []uuid.UUID{snapshot.ID})
	if err != nil {
		return nil, fmt.Errorf("compare: load subject talents: %w", err)
	}
	for _, row := range talents {
		score := row.Score
		subject.talents[row.Key] = &score
	}
	return subject, nil
}

func (cs *comparisonService) compareWithCommunity(ctx context.Context, req ComparisonRequest, subject *subjectVectors) (*ComparisonResult, error) {
	membership, err := cs.repos.Memberships.GetByAccountID(ctx, nil, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("compare: membership: %w", err)
	}
	communityID := subject.communityID
	if membership != nil {
		communityID = membership.CommunityID
	}
	community, err := cs.repos.Communities.GetByID(ctx, nil, communityID)
	if err != nil {
		return nil, fmt.Errorf("compare: community: %w", err)
	}

	sample, err := insights.ResolveCommunitySample(ctx, cs.resolverDeps(), community, req.Outcome)
	if err != nil {
		return nil, err
	}

	result := &ComparisonResult{
		OK:         true,
		SampleUsed: string(sample.Tier),
	}
	for _, mapping := range competencyKeys() {
		result.Competencies = append(result.Competencies,
			compareAgainstSample(mapping, subject.competencies[mapping.Key], sample.Metrics[mapping.Key]))
	}
	for _, mapping := range steps.TalentColumns {
		result.Talents = append(result.Talents,
			compareAgainstSample(mapping, subject.talents[mapping.Key], sample.Metrics[mapping.Key]))
	}

	if profile := insights.ExtractTopPerformers(sample.Subjects, req.Outcome); profile != nil {
		result.TopPerformerProfile = profile
		result.Top3Competencies = profile.Top3Competencies
		result.Top5Talents = profile.Top5Talents
		result.TopPerformerComparison = compareAgainstProfile(subject, profile)
	}
	return result, nil
}

func (cs *comparisonService) compareWithBenchmark(ctx context.Context, req ComparisonRequest, subject *subjectVectors) (*ComparisonResult, error) {
	tier := insights.TierBenchmark
	filter := repos.BenchmarkListFilter{Country: req.Country, Region: req.Region, Sector: req.Sector}
	if req.CompareWith == CompareWithRowiverse {
		tier = insights.TierRowiverse
		filter.Type = types.BenchmarkTypeInternal
	}

	data, err := insights.ResolveBenchmark(ctx, cs.resolverDeps(), req.BenchmarkID, filter, tier)
	if err != nil {
		return nil, err
	}

	result := &ComparisonResult{
		OK:         true,
		SampleUsed: string(data.Tier),
		Benchmark: &BenchmarkRef{
			ID:        data.Benchmark.ID,
			Name:      data.Benchmark.Name,
			Type:      data.Benchmark.Type,
			TotalRows: data.Benchmark.TotalRows,
		},
	}
	for _, mapping := range competencyKeys() {
		result.Competencies = append(result.Competencies,
			compareAgainstStats(mapping, subject.competencies[mapping.Key], data.Stats[mapping.Key]))
	}
	for _, mapping := range steps.TalentColumns {
		result.Talents = append(result.Talents,
			compareAgainstStats(mapping, subject.talents[mapping.Key], data.Stats[mapping.Key]))
	}

	if row := data.Profiles[req.Outcome]; row != nil {
		profile, err := profileFromRow(row, req.Outcome)
		if err != nil {
			cs.log.Warn("decoding top performer profile failed",
				"benchmark_id", data.Benchmark.ID, "outcome", req.Outcome, "error", err)
		} else {
			result.TopPerformerProfile = profile
			result.Top3Competencies = profile.Top3Competencies
			result.Top5Talents = profile.Top5Talents
			result.TopPerformerComparison = compareAgainstProfile(subject, profile)
		}
	}
	return result, nil
}

func (cs *comparisonService) availableBenchmarks(ctx context.Context) ([]BenchmarkRef, error) {
	benchmarks, err := cs.repos.Benchmarks.List(ctx, nil, repos.BenchmarkListFilter{})
	if err != nil {
		return nil, err
	}
	refs := make([]BenchmarkRef, 0, len(benchmarks))
	for _, b := range benchmarks {
		refs = append(refs, BenchmarkRef{ID: b.ID, Name: b.Name, Type: b.Type, TotalRows: b.TotalRows})
	}
	return refs, nil
}

// competencyKeys is the canonical ordering: the three composites followed by
// the eight subfactors.
func competencyKeys() []steps.ColumnMapping {
	keys := make([]steps.ColumnMapping, 0, len(steps.CompetencyColumns)+len(steps.SubfactorColumns))
	keys = append(keys, steps.CompetencyColumns...)
	keys = append(keys, steps.SubfactorColumns...)
	return keys
}

func compareAgainstSample(mapping steps.ColumnMapping, score *float64, sample []float64) MetricComparison {
	mc := MetricComparison{Key: mapping.Key, Score: score}
	stats := insights.ComputeStats(sample)
	mc.BenchmarkMean = stats.Mean
	if score != nil {
		mc.Percentile = insights.PercentileOf(sample, *score)
	}
	return mc
}

func compareAgainstStats(mapping steps.ColumnMapping, score *float64, stats insights.Stats) MetricComparison {
	mc := MetricComparison{Key: mapping.Key, Score: score, BenchmarkMean: stats.Mean}
	if score != nil {
		mc.Percentile = quartileRank(stats, *score)
	}
	return mc
}

// quartileRank places a score within a precomputed distribution using its
// stored percentile thresholds. Coarser than ranking against a raw sample,
// but it keeps the benchmark path free of live aggregation.
func quartileRank(stats insights.Stats, score float64) float64 {
	switch {
	case stats.N == 0:
		return 0
	case score >= stats.P90:
		return 90
	case score >= stats.P75:
		return 75
	case score >= stats.P50:
		return 50
	case score >= stats.P25:
		return 25
	default:
		return 0
	}
}

func compareAgainstProfile(subject *subjectVectors, profile *insights.TopPerformerProfile) []MetricComparison {
	var out []MetricComparison
	for _, mapping := range competencyKeys() {
		mean, ok := profile.Competencies[mapping.Key]
		if !ok {
			continue
		}
		out = append(out, MetricComparison{
			Key:           mapping.Key,
			Score:         subject.competencies[mapping.Key],
			BenchmarkMean: mean,
		})
	}
	return out
}

// profileFromRow decodes a stored top-performer profile row back into the
// in-memory shape the live path produces.
func profileFromRow(row *types.TopPerformerProfile, outcomeKey string) (*insights.TopPerformerProfile, error) {
	profile := &insights.TopPerformerProfile{
		OutcomeKey: outcomeKey,
		SampleSize: row.SampleSize,
	}
	if len(row.Competencies) > 0 {
		if err := json.Unmarshal(row.Competencies, &profile.Competencies); err != nil {
			return nil, fmt.Errorf("competencies: %w", err)
		}
	}
	if len(row.Talents) > 0 {
		if err := json.Unmarshal(row.Talents, &profile.Talents); err != nil {
			return nil, fmt.Errorf("talents: %w", err)
		}
	}
	if len(row.Top3Competencies) > 0 {
		if err := json.Unmarshal(row.Top3Competencies, &profile.Top3Competencies); err != nil {
			return nil, fmt.Errorf("top3 competencies: %w", err)
		}
	}
	if len(row.Top5Talents) > 0 {
		if err := json.Unmarshal(row.Top5Talents, &profile.Top5Talents); err != nil {
			return nil, fmt.Errorf("top5 talents: %w", err)
		}
	}
	return profile, nil
}

func comparisonCacheKey(req ComparisonRequest) string {
	benchmarkID := ""
	if req.BenchmarkID != nil {
		benchmarkID = req.BenchmarkID.String()
	}
	return fmt.Sprintf("comparison:%s:%s:%s:%s:%s:%s:%s",
		req.AccountID, req.CompareWith, benchmarkID, req.Outcome,
		req.Country, req.Region, req.Sector)
}
