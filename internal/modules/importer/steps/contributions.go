package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
	"github.com/rowiverse/assessment-backend/internal/platform/neo4jdb"
)

// ContributionPayload is one row queued for the global rowiverse pool. Only
// consented rows are queued; submission happens once, in bulk, after the row
// loop.
type ContributionPayload struct {
	AccountID uuid.UUID
	Row       *Row
}

type SubmitContributionsDeps struct {
	Log           *logger.Logger
	Contributions repos.ContributionRepo
}

// SubmitContributions bulk-inserts the queued payloads. It is best-effort
// enrichment of a separate pool: the caller logs a returned error as a
// warning and never fails the import on it.
func SubmitContributions(ctx context.Context, deps SubmitContributionsDeps, payloads []ContributionPayload, now time.Time) (int, error) {
	if len(payloads) == 0 {
		return 0, nil
	}

	contributions := make([]*types.Contribution, 0, len(payloads))
	for _, p := range payloads {
		scores := map[string]*float64{}
		for k, v := range p.Row.Competencies {
			scores[k] = v
		}
		for k, v := range p.Row.Subfactors {
			scores[k] = v
		}

		scoresJSON, err := marshalScores(scores)
		if err != nil {
			return 0, fmt.Errorf("submit contributions: marshal scores: %w", err)
		}
		outcomesJSON, err := marshalScores(p.Row.Outcomes)
		if err != nil {
			return 0, fmt.Errorf("submit contributions: marshal outcomes: %w", err)
		}
		talentsJSON, err := marshalScores(p.Row.Talents)
		if err != nil {
			return 0, fmt.Errorf("submit contributions: marshal talents: %w", err)
		}
		demographicsJSON, err := json.Marshal(map[string]any{
			"yearOfBirth": p.Row.YearOfBirth,
			"gender":      p.Row.Gender,
			"jobRole":     p.Row.JobRole,
			"sector":      p.Row.Sector,
			"country":     p.Row.Country,
		})
		if err != nil {
			return 0, fmt.Errorf("submit contributions: marshal demographics: %w", err)
		}

		contributions = append(contributions, &types.Contribution{
			ID:           uuid.New(),
			AccountID:    p.AccountID,
			Scores:       scoresJSON,
			Outcomes:     outcomesJSON,
			Talents:      talentsJSON,
			Demographics: demographicsJSON,
			SubmittedAt:  now,
		})
	}

	if err := deps.Contributions.CreateBulk(ctx, nil, contributions); err != nil {
		return 0, fmt.Errorf("submit contributions: bulk insert: %w", err)
	}
	return len(contributions), nil
}

// marshalScores keeps nil entries out of the JSON instead of encoding them as
// null, so a missing metric never looks like a recorded zero downstream.
func marshalScores(scores map[string]*float64) ([]byte, error) {
	compact := map[string]float64{}
	for k, v := range scores {
		if v == nil {
			continue
		}
		compact[k] = *v
	}
	return json.Marshal(compact)
}

// MirrorIdentityGraph reflects resolved account/community links into the
// optional Neo4j mirror. It rides the same best-effort enrichment channel as
// contributions: errors are reported to the caller for a warning log only.
func MirrorIdentityGraph(ctx context.Context, graph *neo4jdb.Client, community *types.Community, resolved []ResolveIdentityOutput) error {
	if graph == nil || len(resolved) == 0 {
		return nil
	}

	members := make([]map[string]any, 0, len(resolved))
	for _, r := range resolved {
		if r.Account == nil {
			continue
		}
		members = append(members, map[string]any{
			"accountId": r.Account.ID.String(),
			"email":     r.Account.Email,
		})
	}

	return graph.Write(ctx, `
		MERGE (c:Community {id: $communityId})
		SET c.name = $communityName
		WITH c
		UNWIND $members AS member
		MERGE (a:Account {id: member.accountId})
		SET a.email = member.email
		MERGE (a)-[:MEMBER_OF]->(c)
	`, map[string]any{
		"communityId":   community.ID.String(),
		"communityName": community.Name,
		"members":       members,
	})
}
