package community

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

type MembershipRepo interface {
	Create(ctx context.Context, tx *gorm.DB, m *types.Membership) (*types.Membership, error)
	Get(ctx context.Context, tx *gorm.DB, communityID, accountID uuid.UUID) (*types.Membership, error)
	GetByAccountID(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.Membership, error)
	ListActiveByCommunity(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) ([]*types.Membership, error)
	SetVerseProfile(ctx context.Context, tx *gorm.DB, id, verseProfileID uuid.UUID) error
}

type membershipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMembershipRepo(db *gorm.DB, baseLog *logger.Logger) MembershipRepo {
	repoLog := baseLog.With("repo", "MembershipRepo")
	return &membershipRepo{db: db, log: repoLog}
}

func (mr *membershipRepo) Create(ctx context.Context, tx *gorm.DB, m *types.Membership) (*types.Membership, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if err := transaction.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (mr *membershipRepo) Get(ctx context.Context, tx *gorm.DB, communityID, accountID uuid.UUID) (*types.Membership, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var result types.Membership
	if err := transaction.WithContext(ctx).
		Where("community_id = ? AND account_id = ?", communityID, accountID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (mr *membershipRepo) GetByAccountID(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.Membership, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var result types.Membership
	if err := transaction.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (mr *membershipRepo) ListActiveByCommunity(ctx context.Context, tx *gorm.DB, communityID uuid.UUID) ([]*types.Membership, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Membership
	if err := transaction.WithContext(ctx).
		Where("community_id = ? AND status = ?", communityID, types.MembershipStatusActive).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *membershipRepo) SetVerseProfile(ctx context.Context, tx *gorm.DB, id, verseProfileID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Membership{}).
		Where("id = ?", id).
		Where("verse_profile_id IS NULL").
		Update("verse_profile_id", verseProfileID).Error
}
