package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

type VerseProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profile *types.VerseProfile) (*types.VerseProfile, error)
	GetByAccountID(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.VerseProfile, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.VerseProfile, error)
	LinkAccount(ctx context.Context, tx *gorm.DB, id, accountID uuid.UUID) error
}

type verseProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVerseProfileRepo(db *gorm.DB, baseLog *logger.Logger) VerseProfileRepo {
	repoLog := baseLog.With("repo", "VerseProfileRepo")
	return &verseProfileRepo{db: db, log: repoLog}
}

func (vr *verseProfileRepo) Create(ctx context.Context, tx *gorm.DB, profile *types.VerseProfile) (*types.VerseProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	if err := transaction.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (vr *verseProfileRepo) GetByAccountID(ctx context.Context, tx *gorm.DB, accountID uuid.UUID) (*types.VerseProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var result types.VerseProfile
	if err := transaction.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (vr *verseProfileRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.VerseProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var result types.VerseProfile
	if err := transaction.WithContext(ctx).
		Where("email = ?", email).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (vr *verseProfileRepo) LinkAccount(ctx context.Context, tx *gorm.DB, id, accountID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.VerseProfile{}).
		Where("id = ?", id).
		Where("account_id IS NULL").
		Update("account_id", accountID).Error
}
