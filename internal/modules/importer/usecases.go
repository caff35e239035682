package importer

import (
	"context"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	"github.com/rowiverse/assessment-backend/internal/modules/importer/steps"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
	"github.com/rowiverse/assessment-backend/internal/platform/neo4jdb"
)

type UsecasesDeps struct {
	Log *logger.Logger

	Accounts      repos.AccountRepo
	VerseProfiles repos.VerseProfileRepo
	Members       repos.MemberRepo
	Communities   repos.CommunityRepo
	Memberships   repos.MembershipRepo
	Snapshots     repos.SnapshotRepo
	Contributions repos.ContributionRepo

	// Optional: mirror resolved identity links into Neo4j.
	Graph *neo4jdb.Client
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases { return Usecases{deps: deps} }

type (
	RawRow         = steps.RawRow
	RunImportInput = steps.RunImportInput
	ImportSummary  = steps.ImportSummary
)

func (u Usecases) RunImport(ctx context.Context, in RunImportInput) (ImportSummary, error) {
	return steps.RunImport(ctx, steps.RunImportDeps{
		Log:           u.deps.Log,
		Accounts:      u.deps.Accounts,
		VerseProfiles: u.deps.VerseProfiles,
		Members:       u.deps.Members,
		Communities:   u.deps.Communities,
		Memberships:   u.deps.Memberships,
		Snapshots:     u.deps.Snapshots,
		Contributions: u.deps.Contributions,
		Graph:         u.deps.Graph,
	}, in)
}
