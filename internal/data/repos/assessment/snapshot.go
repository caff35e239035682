package assessment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

type SnapshotRepo interface {
	// Create persists the snapshot together with its child records. GORM
	// writes parent and associations in one transaction, so a parent failure
	// leaves no orphaned children.
	Create(ctx context.Context, tx *gorm.DB, snapshot *types.Snapshot) (*types.Snapshot, error)
	// LatestByAccountIDs returns at most one snapshot per account: the most
	// recent by taken_at.
	LatestByAccountIDs(ctx context.Context, tx *gorm.DB, accountIDs []uuid.UUID) ([]*types.Snapshot, error)
	CountByCommunity(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) (int64, error)
	SubfactorsBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Subfactor, error)
	OutcomesBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Outcome, error)
	TalentsBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Talent, error)
}

type snapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	repoLog := baseLog.With("repo", "SnapshotRepo")
	return &snapshotRepo{db: db, log: repoLog}
}

func (sr *snapshotRepo) Create(ctx context.Context, tx *gorm.DB, snapshot *types.Snapshot) (*types.Snapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(snapshot).Error; err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (sr *snapshotRepo) LatestByAccountIDs(ctx context.Context, tx *gorm.DB, accountIDs []uuid.UUID) ([]*types.Snapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Snapshot
	if len(accountIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Raw(`
			SELECT DISTINCT ON (account_id) *
			FROM assessment_snapshot
			WHERE account_id IN ?
			ORDER BY account_id, taken_at DESC, created_at DESC
		`, accountIDs).
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *snapshotRepo) CountByCommunity(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Snapshot{}).
		Where("community_id = ?", communityID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (sr *snapshotRepo) SubfactorsBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Subfactor, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Subfactor
	if len(snapshotIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("snapshot_id IN ?", snapshotIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *snapshotRepo) OutcomesBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Outcome, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Outcome
	if len(snapshotIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("snapshot_id IN ?", snapshotIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *snapshotRepo) TalentsBySnapshotIDs(ctx context.Context, tx *gorm.DB, snapshotIDs []uuid.UUID) ([]*types.Talent, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Talent
	if len(snapshotIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("snapshot_id IN ?", snapshotIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
