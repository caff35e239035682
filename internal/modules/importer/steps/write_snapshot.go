package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

type WriteSnapshotDeps struct {
	Log       *logger.Logger
	Snapshots repos.SnapshotRepo
}

type WriteSnapshotInput struct {
	Account   *types.Account
	Community *types.Community
	Row       *Row
	// Now is the import's wall-clock time, used when the row has no date.
	Now time.Time
}

type WriteSnapshotOutput struct {
	Snapshot     *types.Snapshot
	Competencies int
	Subfactors   int
	Outcomes     int
	Talents      int
}

// WriteSnapshot appends one immutable snapshot plus its typed children for a
// resolved row. Child categories are iterated independently and a nil score is
// skipped, never written as zero. Parent and children persist atomically.
func WriteSnapshot(ctx context.Context, deps WriteSnapshotDeps, in WriteSnapshotInput) (WriteSnapshotOutput, error) {
	var out WriteSnapshotOutput

	takenAt := in.Now
	if in.Row.TakenAt != nil {
		takenAt = *in.Row.TakenAt
	}

	snapshot := &types.Snapshot{
		ID:             uuid.New(),
		AccountID:      in.Account.ID,
		CommunityID:    in.Community.ID,
		TakenAt:        takenAt,
		KnowYourself:   in.Row.Competencies["K"],
		ChooseYourself: in.Row.Competencies["C"],
		GiveYourself:   in.Row.Competencies["G"],
	}

	for _, m := range CompetencyColumns {
		score := in.Row.Competencies[m.Key]
		if score == nil {
			continue
		}
		snapshot.Competencies = append(snapshot.Competencies, types.Competency{
			ID:         uuid.New(),
			SnapshotID: snapshot.ID,
			Key:        m.Key,
			Score:      *score,
		})
	}
	for _, m := range SubfactorColumns {
		score := in.Row.Subfactors[m.Key]
		if score == nil {
			continue
		}
		snapshot.Subfactors = append(snapshot.Subfactors, types.Subfactor{
			ID:         uuid.New(),
			SnapshotID: snapshot.ID,
			Key:        m.Key,
			Score:      *score,
		})
	}
	for _, m := range OutcomeColumns {
		score := in.Row.Outcomes[m.Key]
		if score == nil {
			continue
		}
		snapshot.Outcomes = append(snapshot.Outcomes, types.Outcome{
			ID:         uuid.New(),
			SnapshotID: snapshot.ID,
			Key:        m.Key,
			Score:      *score,
		})
	}
	for _, m := range TalentColumns {
		score := in.Row.Talents[m.Key]
		if score == nil {
			continue
		}
		snapshot.Talents = append(snapshot.Talents, types.Talent{
			ID:         uuid.New(),
			SnapshotID: snapshot.ID,
			Key:        m.Key,
			Label:      m.Label,
			Score:      *score,
		})
	}

	created, err := deps.Snapshots.Create(ctx, nil, snapshot)
	if err != nil {
		return out, fmt.Errorf("write snapshot: %w", err)
	}

	out.Snapshot = created
	out.Competencies = len(created.Competencies)
	out.Subfactors = len(created.Subfactors)
	out.Outcomes = len(created.Outcomes)
	out.Talents = len(created.Talents)
	return out, nil
}
