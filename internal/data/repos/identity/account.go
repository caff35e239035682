package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

type AccountRepo interface {
	Create(ctx context.Context, tx *gorm.DB, account *types.Account) (*types.Account, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Account, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Account, error)
	// FillMissing writes only the given columns and only where they are
	// currently NULL or empty; existing values are never overwritten.
	FillMissing(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	SetVerseProfile(ctx context.Context, tx *gorm.DB, id, verseProfileID uuid.UUID) error
}

type accountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	repoLog := baseLog.With("repo", "AccountRepo")
	return &accountRepo{db: db, log: repoLog}
}

func (ar *accountRepo) Create(ctx context.Context, tx *gorm.DB, account *types.Account) (*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if err := transaction.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

func (ar *accountRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var result types.Account
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (ar *accountRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var result types.Account
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

func (ar *accountRepo) FillMissing(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	for column, value := range fields {
		if value == nil {
			continue
		}
		err := transaction.WithContext(ctx).
			Model(&types.Account{}).
			Where("id = ?", id).
			Where(column+" IS NULL OR "+column+" = ''").
			Update(column, value).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (ar *accountRepo) SetVerseProfile(ctx context.Context, tx *gorm.DB, id, verseProfileID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Account{}).
		Where("id = ?", id).
		Update("verse_profile_id", verseProfileID).Error
}
