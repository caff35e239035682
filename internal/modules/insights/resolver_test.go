package insights

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

var (
	resolverLogOnce sync.Once
	resolverLog     *logger.Logger
)

func resolverLogger() *logger.Logger {
	resolverLogOnce.Do(func() {
		l, err := logger.New("test")
		if err != nil {
			panic(err)
		}
		resolverLog = l
	})
	return resolverLog
}

// stubStore backs the resolver fakes with plain slices.
type stubStore struct {
	accounts    []*types.Account
	members     []*types.Member
	memberships []*types.Membership
	snapshots   []*types.Snapshot
	subfactors  []*types.Subfactor
	outcomes    []*types.Outcome
	talents     []*types.Talent
	benchmarks  []*types.Benchmark
	statistics  []*types.BenchmarkStatistic
	profiles    []*types.TopPerformerProfile
}

type stubAccounts struct{ s *stubStore }

func (r *stubAccounts) Create(ctx context.Context, tx *gorm.DB, a *types.Account) (*types.Account, error) {
	r.s.accounts = append(r.s.accounts, a)
	return a, nil
}

func (r *stubAccounts) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Account, error) {
	for _, a := range r.s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *stubAccounts) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Account, error) {
	for _, a := range r.s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (r *stubAccounts) FillMissing(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	return nil
}

func (r *stubAccounts) SetVerseProfile(ctx context.Context, tx *gorm.DB, id, verseProfileID uuid.UUID) error {
	return nil
}

type stubMembers struct{ s *stubStore }

func (r *stubMembers) Create(ctx context.Context, tx *gorm.DB, m *types.Member) (*types.Member, error) {
	r.s.members = append(r.s.members, m)
	return m, nil
}

func (r *stubMembers) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Member, error) {
	for _, m := range r.s.members {
		if m.Email == email {
			return m, nil
		}
	}
	return nil, nil
}

func (r *stubMembers) ListByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) ([]*types.Member, error) {
	var out []*types.Member
	for _, m := range r.s.members {
		if m.TenantID != nil && *m.TenantID == tenantID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMembers) PatchLinks(ctx context.Context, tx *gorm.DB, id uuid.UUID, verseProfileID, tenantID *uuid.UUID) error {
	return nil
}

type stubMemberships struct{ s *stubStore }

func (r *stubMemberships) Create(ctx context.Context, tx *gorm.DB, m *types.Membership) (*types.Membership, error) {
	r.s.memberships = append(r.s.memberships, m)
	return m, nil
}

func (r *stubMemberships) Get(ctx context.Context, tx *gorm.DB, communityID, accountID uuid.UUID) (*types.Membership, error) {
	for _, m := range r.s.memberships {
		if m.CommunityID == communityID && m.AccountID == accountID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *stubMemberships) GetByAccountID(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.Membership, error) {
	for _, m := range r.s.memberships {
		if m.AccountID == accountID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *stubMemberships) ListActiveByCommunity(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) ([]*types.Membership, error) {
	var out []*types.Membership
	for _, m := range r.s.memberships {
		if m.CommunityID == communityID && m.Status == types.MembershipStatusActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMemberships) SetVerseProfile(ctx context.Context, tx *gorm.DB, id, verseProfileID uuid.UUID) error {
	return nil
}

type stubSnapshots struct{ s *stubStore }

func (r *stubSnapshots) Create(ctx context.Context, tx *gorm.DB, snapshot *types.Snapshot) (*types.Snapshot, error) {
	r.s.snapshots = append(r.s.snapshots, snapshot)
	return snapshot, nil
}

func (r *stubSnapshots) LatestByAccountIDs(ctx context.Context, tx *gorm.DB, accountIDs []uuid.UUID) ([]*types.Snapshot, error) {
	latest := map[uuid.UUID]*types.Snapshot{}
	for _, snap := range r.s.snapshots {
		for _, id := range accountIDs {
			if snap.AccountID != id {
				continue
			}
			if prev, ok := latest[id]; !ok || snap.TakenAt.After(prev.TakenAt) {
				latest[id] = snap
			}
		}
	}
	var out []*types.Snapshot
	for _, snap := range latest {
		out = append(out, snap)
	}
	return out, nil
}

func (r *stubSnapshots) CountByCommunity(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) (int64, error) {
	var count int64
	for _, snap := range r.s.snapshots {
		if snap.CommunityID == communityID {
			count++
		}
	}
	return count, nil
}

func (r *stubSnapshots) SubfactorsBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Subfactor, error) {
	var out []*types.Subfactor
	for _, row := range r.s.subfactors {
		for _, id := range snapshotIDs {
			if row.SnapshotID == id {
				out = append(out, row)
			}
		}
	}
	return out, nil
}

func (r *stubSnapshots) OutcomesBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Outcome, error) {
	var out []*types.Outcome
	for _, row := range r.s.outcomes {
		for _, id := range snapshotIDs {
			if row.SnapshotID == id {
				out = append(out, row)
			}
		}
	}
	return out, nil
}

func (r *stubSnapshots) TalentsBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Talent, error) {
	var out []*types.Talent
	for _, row := range r.s.talents {
		for _, id := range snapshotIDs {
			if row.SnapshotID == id {
				out = append(out, row)
			}
		}
	}
	return out, nil
}

type stubBenchmarks struct{ s *stubStore }

func (r *stubBenchmarks) Create(ctx context.Context, tx *gorm.DB, b *types.Benchmark) (*types.Benchmark, error) {
	r.s.benchmarks = append(r.s.benchmarks, b)
	return b, nil
}

func (r *stubBenchmarks) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Benchmark, error) {
	for _, b := range r.s.benchmarks {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (r *stubBenchmarks) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Benchmark, error) {
	for _, b := range r.s.benchmarks {
		if b.Slug == slug {
			return b, nil
		}
	}
	return nil, nil
}

func (r *stubBenchmarks) List(ctx context.Context, tx *gorm.DB, filter repos.BenchmarkListFilter) ([]*types.Benchmark, error) {
	var out []*types.Benchmark
	for _, b := range r.s.benchmarks {
		if filter.Type != "" && b.Type != filter.Type {
			continue
		}
		if filter.Country != "" && (b.Country == nil || *b.Country != filter.Country) {
			continue
		}
		if filter.Region != "" && (b.Region == nil || *b.Region != filter.Region) {
			continue
		}
		if filter.Sector != "" && (b.Sector == nil || *b.Sector != filter.Sector) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *stubBenchmarks) UpdateTotalRows(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalRows int) error {
	for _, b := range r.s.benchmarks {
		if b.ID == id {
			b.TotalRows = totalRows
		}
	}
	return nil
}

type stubStatistics struct{ s *stubStore }

func (r *stubStatistics) Upsert(ctx context.Context, tx *gorm.DB, stats []*types.BenchmarkStatistic) error {
	r.s.statistics = append(r.s.statistics, stats...)
	return nil
}

func (r *stubStatistics) ListByBenchmark(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) ([]*types.BenchmarkStatistic, error) {
	var out []*types.BenchmarkStatistic
	for _, row := range r.s.statistics {
		if row.BenchmarkID == benchmarkID {
			out = append(out, row)
		}
	}
	return out, nil
}

type stubProfiles struct{ s *stubStore }

func (r *stubProfiles) Upsert(ctx context.Context, tx *gorm.DB, profiles []*types.TopPerformerProfile) error {
	r.s.profiles = append(r.s.profiles, profiles...)
	return nil
}

func (r *stubProfiles) GetByOutcome(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID, outcomeKey string) (*types.TopPerformerProfile, error) {
	for _, row := range r.s.profiles {
		if row.BenchmarkID == benchmarkID && row.OutcomeKey == outcomeKey {
			return row, nil
		}
	}
	return nil, nil
}

func (r *stubProfiles) ListByBenchmark(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) ([]*types.TopPerformerProfile, error) {
	var out []*types.TopPerformerProfile
	for _, row := range r.s.profiles {
		if row.BenchmarkID == benchmarkID {
			out = append(out, row)
		}
	}
	return out, nil
}

func stubDeps(s *stubStore) ResolverDeps {
	return ResolverDeps{
		Log:         resolverLogger(),
		Accounts:    &stubAccounts{s: s},
		Members:     &stubMembers{s: s},
		Memberships: &stubMemberships{s: s},
		Snapshots:   &stubSnapshots{s: s},
		Benchmarks:  &stubBenchmarks{s: s},
		Statistics:  &stubStatistics{s: s},
		Profiles:    &stubProfiles{s: s},
	}
}

func seedSnapshot(s *stubStore, accountID, communityID uuid.UUID, takenAt time.Time, know float64, effectiveness float64) *types.Snapshot {
	snap := &types.Snapshot{
		ID:           uuid.New(),
		AccountID:    accountID,
		CommunityID:  communityID,
		TakenAt:      takenAt,
		KnowYourself: &know,
	}
	s.snapshots = append(s.snapshots, snap)
	s.outcomes = append(s.outcomes, &types.Outcome{
		ID:         uuid.New(),
		SnapshotID: snap.ID,
		Key:        "effectiveness",
		Score:      effectiveness,
	})
	return snap
}

func TestResolveCommunitySampleUsesLatestSnapshots(t *testing.T) {
	s := &stubStore{}
	ctx := context.Background()

	community := &types.Community{ID: uuid.New(), Name: "Acme", Slug: "acme"}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		accountID := uuid.New()
		s.memberships = append(s.memberships, &types.Membership{
			ID:          uuid.New(),
			CommunityID: community.ID,
			AccountID:   accountID,
			Status:      types.MembershipStatusActive,
		})
		// An older snapshot that must not be picked.
		seedSnapshot(s, accountID, community.ID, base, 10, 10)
		seedSnapshot(s, accountID, community.ID, base.AddDate(0, 1, 0), float64(70+i), float64(60+i))
	}

	sample, err := ResolveCommunitySample(ctx, stubDeps(s), community, "effectiveness")
	if err != nil {
		t.Fatalf("ResolveCommunitySample: %v", err)
	}
	if sample.Tier != TierCommunity {
		t.Fatalf("expected community tier, got %s", sample.Tier)
	}
	if len(sample.Subjects) != 3 {
		t.Fatalf("expected 3 subjects, got %d", len(sample.Subjects))
	}
	for _, v := range sample.Metrics["K"] {
		if v < 70 {
			t.Fatalf("stale snapshot leaked into the sample: %v", sample.Metrics["K"])
		}
	}
	if len(sample.Metrics["effectiveness"]) != 3 {
		t.Fatalf("outcome metric not collected: %v", sample.Metrics["effectiveness"])
	}
}

func TestResolveCommunitySampleTenantFallback(t *testing.T) {
	s := &stubStore{}
	ctx := context.Background()

	tenantID := uuid.New()
	community := &types.Community{ID: uuid.New(), Name: "Empty", Slug: "empty", TenantID: &tenantID}

	// No memberships in the community, but the tenant roster knows two people
	// with snapshots from another community.
	otherCommunity := uuid.New()
	for i := 0; i < 2; i++ {
		account := &types.Account{ID: uuid.New(), Email: uuid.NewString() + "@example.com"}
		s.accounts = append(s.accounts, account)
		s.members = append(s.members, &types.Member{
			ID:       uuid.New(),
			Email:    account.Email,
			TenantID: &tenantID,
		})
		seedSnapshot(s, account.ID, otherCommunity, time.Now(), float64(50+i), float64(40+i))
	}

	sample, err := ResolveCommunitySample(ctx, stubDeps(s), community, "effectiveness")
	if err != nil {
		t.Fatalf("ResolveCommunitySample: %v", err)
	}
	if sample.Tier != TierTenant {
		t.Fatalf("expected tenant fallback tier, got %s", sample.Tier)
	}
	if len(sample.Subjects) != 2 {
		t.Fatalf("expected 2 subjects from the tenant roster, got %d", len(sample.Subjects))
	}
}

func TestResolveCommunitySampleNoData(t *testing.T) {
	s := &stubStore{}
	ctx := context.Background()

	community := &types.Community{ID: uuid.New(), Name: "Empty", Slug: "empty"}
	_, err := ResolveCommunitySample(ctx, stubDeps(s), community, "effectiveness")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestResolveBenchmarkPrecomputed(t *testing.T) {
	s := &stubStore{}
	ctx := context.Background()

	benchmark := &types.Benchmark{
		ID:        uuid.New(),
		Name:      "Global 2025",
		Slug:      "global-2025",
		Type:      types.BenchmarkTypeExternal,
		TotalRows: 5000,
	}
	s.benchmarks = append(s.benchmarks, benchmark)
	s.statistics = append(s.statistics, &types.BenchmarkStatistic{
		ID:          uuid.New(),
		BenchmarkID: benchmark.ID,
		MetricKey:   "K",
		Mean:        75.5,
		P90:         92,
		N:           5000,
	})
	s.profiles = append(s.profiles, &types.TopPerformerProfile{
		ID:          uuid.New(),
		BenchmarkID: benchmark.ID,
		OutcomeKey:  "effectiveness",
		SampleSize:  500,
	})

	data, err := ResolveBenchmark(ctx, stubDeps(s), &benchmark.ID, repos.BenchmarkListFilter{}, TierBenchmark)
	if err != nil {
		t.Fatalf("ResolveBenchmark: %v", err)
	}
	if data.Benchmark.ID != benchmark.ID {
		t.Fatalf("wrong benchmark resolved")
	}
	if data.Stats["K"].Mean != 75.5 || data.Stats["K"].P90 != 92 {
		t.Fatalf("statistic rows not mapped: %+v", data.Stats["K"])
	}
	if data.Profiles["effectiveness"] == nil {
		t.Fatalf("profile rows not mapped")
	}
}

func TestResolveBenchmarkByFilter(t *testing.T) {
	s := &stubStore{}
	ctx := context.Background()

	country := "UK"
	match := &types.Benchmark{
		ID:      uuid.New(),
		Name:    "UK Education",
		Slug:    "uk-education",
		Type:    types.BenchmarkTypeExternal,
		Country: &country,
	}
	other := &types.Benchmark{
		ID:   uuid.New(),
		Name: "Global",
		Slug: "global",
		Type: types.BenchmarkTypeExternal,
	}
	s.benchmarks = append(s.benchmarks, match, other)
	s.statistics = append(s.statistics, &types.BenchmarkStatistic{
		ID:          uuid.New(),
		BenchmarkID: match.ID,
		MetricKey:   "K",
		Mean:        70,
	})

	data, err := ResolveBenchmark(ctx, stubDeps(s), nil, repos.BenchmarkListFilter{Country: "UK"}, TierBenchmark)
	if err != nil {
		t.Fatalf("ResolveBenchmark: %v", err)
	}
	if data.Benchmark.ID != match.ID {
		t.Fatalf("filter picked the wrong benchmark: %s", data.Benchmark.Name)
	}
}

func TestResolveBenchmarkEmptyStatisticsIsNoData(t *testing.T) {
	s := &stubStore{}
	ctx := context.Background()

	bare := &types.Benchmark{ID: uuid.New(), Name: "Bare", Slug: "bare", Type: types.BenchmarkTypeExternal}
	s.benchmarks = append(s.benchmarks, bare)

	_, err := ResolveBenchmark(ctx, stubDeps(s), &bare.ID, repos.BenchmarkListFilter{}, TierBenchmark)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for a benchmark without statistics, got %v", err)
	}
}
