package repos

import (
	"gorm.io/gorm"

	"github.com/rowiverse/assessment-backend/internal/data/repos/assessment"
	"github.com/rowiverse/assessment-backend/internal/data/repos/benchmark"
	"github.com/rowiverse/assessment-backend/internal/data/repos/community"
	"github.com/rowiverse/assessment-backend/internal/data/repos/identity"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

type AccountRepo = identity.AccountRepo
type VerseProfileRepo = identity.VerseProfileRepo
type MemberRepo = identity.MemberRepo

type CommunityRepo = community.CommunityRepo
type MembershipRepo = community.MembershipRepo

type SnapshotRepo = assessment.SnapshotRepo

type BenchmarkRepo = benchmark.BenchmarkRepo
type BenchmarkStatisticRepo = benchmark.StatisticRepo
type TopPerformerProfileRepo = benchmark.TopPerformerProfileRepo
type ContributionRepo = benchmark.ContributionRepo

type BenchmarkListFilter = benchmark.ListFilter

// All bundles every repository so wiring code can pass one value around.
type All struct {
	Accounts      AccountRepo
	VerseProfiles VerseProfileRepo
	Members       MemberRepo
	Communities   CommunityRepo
	Memberships   MembershipRepo
	Snapshots     SnapshotRepo
	Benchmarks    BenchmarkRepo
	Statistics    BenchmarkStatisticRepo
	Profiles      TopPerformerProfileRepo
	Contributions ContributionRepo
}

func NewAll(db *gorm.DB, log *logger.Logger) All {
	return All{
		Accounts:      identity.NewAccountRepo(db, log),
		VerseProfiles: identity.NewVerseProfileRepo(db, log),
		Members:       identity.NewMemberRepo(db, log),
		Communities:   community.NewCommunityRepo(db, log),
		Memberships:   community.NewMembershipRepo(db, log),
		Snapshots:     assessment.NewSnapshotRepo(db, log),
		Benchmarks:    benchmark.NewBenchmarkRepo(db, log),
		Statistics:    benchmark.NewStatisticRepo(db, log),
		Profiles:      benchmark.NewTopPerformerProfileRepo(db, log),
		Contributions: benchmark.NewContributionRepo(db, log),
	}
}
