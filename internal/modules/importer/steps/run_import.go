package steps

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
	"github.com/rowiverse/assessment-backend/internal/platform/neo4jdb"
)

const (
	DefaultBatchSize  = 10
	DefaultBatchDelay = 350 * time.Millisecond
)

type RunImportDeps struct {
	Log           *logger.Logger
	Accounts      repos.AccountRepo
	VerseProfiles repos.VerseProfileRepo
	Members       repos.MemberRepo
	Communities   repos.CommunityRepo
	Memberships   repos.MembershipRepo
	Snapshots     repos.SnapshotRepo
	Contributions repos.ContributionRepo

	// Graph is the optional identity-graph mirror; nil disables it.
	Graph *neo4jdb.Client
}

type RunImportInput struct {
	CommunityName string
	CommunitySlug string
	TenantID      *uuid.UUID
	HubID         *uuid.UUID
	VerseID       *uuid.UUID

	Rows []RawRow

	// BatchSize <= 0 and BatchDelay < 0 fall back to the defaults. Tests run
	// with BatchDelay set to zero.
	BatchSize  int
	BatchDelay time.Duration

	// Now stamps snapshots for rows without their own date; the zero value
	// falls back to time.Now().
	Now time.Time
}

// ImportSummary is the sole caller-visible report of an import run.
type ImportSummary struct {
	Community              CommunityRef `json:"community"`
	UsersCreated           int          `json:"usersCreated"`
	MembersCreated         int          `json:"membersCreated"`
	SnapshotsCreated       int          `json:"snapshotsCreated"`
	Competencies           int          `json:"competencies"`
	Subfactors             int          `json:"subfactors"`
	Outcomes               int          `json:"outcomes"`
	Talents                int          `json:"talents"`
	RowiverseContributions int          `json:"rowiverseContributions"`
	Skipped                int          `json:"skipped"`
	FailedRows             int          `json:"failedRows"`
	TotalRows              int          `json:"totalRows"`
}

type CommunityRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// RunImport drives the normalize -> resolve -> snapshot chain over all rows in
// fixed-size concurrent batches with inter-batch pacing. A single row's
// failure increments a counter and processing continues; only failure to
// establish the community aborts the job. Consented rows are queued and
// submitted to the rowiverse pool as one bulk operation after the loop.
func RunImport(ctx context.Context, deps RunImportDeps, in RunImportInput) (ImportSummary, error) {
	var summary ImportSummary
	summary.TotalRows = len(in.Rows)

	batchSize := in.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batchDelay := in.BatchDelay
	if batchDelay < 0 {
		batchDelay = DefaultBatchDelay
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	community, err := findOrCreateCommunity(ctx, deps, in)
	if err != nil {
		return summary, fmt.Errorf("run import: community: %w", err)
	}
	summary.Community = CommunityRef{ID: community.ID, Name: community.Name}

	var mu sync.Mutex
	var contributions []ContributionPayload
	var resolved []ResolveIdentityOutput

	for start := 0; start < len(in.Rows); start += batchSize {
		end := start + batchSize
		if end > len(in.Rows) {
			end = len(in.Rows)
		}
		batch := in.Rows[start:end]

		g, gctx := errgroup.WithContext(ctx)
		for _, raw := range batch {
			raw := raw
			g.Go(func() error {
				row, err := NormalizeRow(raw)
				if err != nil {
					if errors.Is(err, ErrSkippedRow) {
						mu.Lock()
						summary.Skipped++
						mu.Unlock()
						return nil
					}
					mu.Lock()
					summary.FailedRows++
					mu.Unlock()
					deps.Log.Warn("row normalization failed", "error", err)
					return nil
				}

				identity, err := ResolveIdentity(gctx, ResolveIdentityDeps{
					Log:           deps.Log,
					Accounts:      deps.Accounts,
					VerseProfiles: deps.VerseProfiles,
					Memberships:   deps.Memberships,
					Members:       deps.Members,
				}, ResolveIdentityInput{
					Email:     row.Email,
					FirstName: row.FirstName,
					LastName:  row.LastName,
					Country:   row.Country,
					Language:  row.Language,
					Community: community,
				})
				if err != nil {
					mu.Lock()
					summary.FailedRows++
					mu.Unlock()
					deps.Log.Warn("identity resolution failed", "email", row.Email, "error", err)
					return nil
				}

				written, err := WriteSnapshot(gctx, WriteSnapshotDeps{
					Log:       deps.Log,
					Snapshots: deps.Snapshots,
				}, WriteSnapshotInput{
					Account:   identity.Account,
					Community: community,
					Row:       row,
					Now:       now,
				})
				if err != nil {
					mu.Lock()
					summary.FailedRows++
					mu.Unlock()
					deps.Log.Warn("snapshot write failed", "email", row.Email, "error", err)
					return nil
				}

				mu.Lock()
				if identity.AccountCreated {
					summary.UsersCreated++
				}
				if identity.MembershipCreated {
					summary.MembersCreated++
				}
				summary.SnapshotsCreated++
				summary.Competencies += written.Competencies
				summary.Subfactors += written.Subfactors
				summary.Outcomes += written.Outcomes
				summary.Talents += written.Talents
				resolved = append(resolved, identity)
				if row.Consent {
					contributions = append(contributions, ContributionPayload{
						AccountID: identity.Account.ID,
						Row:       row,
					})
				}
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			// Row workers swallow their own failures; only a context
			// cancellation surfaces here.
			return summary, fmt.Errorf("run import: batch: %w", err)
		}

		if end < len(in.Rows) && batchDelay > 0 {
			time.Sleep(batchDelay)
		}
	}

	// Enrichment: both calls are best-effort and never fail the import.
	queued, err := SubmitContributions(ctx, SubmitContributionsDeps{
		Log:           deps.Log,
		Contributions: deps.Contributions,
	}, contributions, now)
	if err != nil {
		deps.Log.Warn("rowiverse contribution submit failed", "count", len(contributions), "error", err)
	}
	summary.RowiverseContributions = queued

	if err := MirrorIdentityGraph(ctx, deps.Graph, community, resolved); err != nil {
		deps.Log.Warn("identity graph mirror failed", "error", err)
	}

	return summary, nil
}

func findOrCreateCommunity(ctx context.Context, deps RunImportDeps, in RunImportInput) (*types.Community, error) {
	slug := in.CommunitySlug
	if slug == "" {
		return nil, fmt.Errorf("community slug required")
	}
	existing, err := deps.Communities.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	name := in.CommunityName
	if name == "" {
		name = slug
	}
	return deps.Communities.Create(ctx, nil, &types.Community{
		ID:       uuid.New(),
		Name:     name,
		Slug:     slug,
		TenantID: in.TenantID,
		HubID:    in.HubID,
		VerseID:  in.VerseID,
	})
}
