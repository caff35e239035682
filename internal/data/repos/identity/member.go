package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

type MemberRepo interface {
	Create(ctx context.Context, tx *gorm.DB, member *types.Member) (*types.Member, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Member, error)
	ListByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) ([]*types.Member, error)
	// PatchLinks fills the verse profile and tenant links where they are
	// currently NULL; it never overwrites an existing link.
	PatchLinks(ctx context.Context, tx *gorm.DB, id uuid.UUID, verseProfileID, tenantID *uuid.UUID) error
}

type memberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMemberRepo(db *gorm.DB, baseLog *logger.Logger) MemberRepo {
	repoLog := baseLog.With("repo", "MemberRepo")
	return &memberRepo{db: db, log: repoLog}
}

func (mr *memberRepo) Create(ctx context.Context, tx *gorm.DB, member *types.Member) (*types.Member, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if err := transaction.WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (mr *memberRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Member, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var result types.Member
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

func (mr *memberRepo) ListByTenant(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) ([]*types.Member, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.Member
	if err := transaction.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *memberRepo) PatchLinks(ctx context.Context, tx *gorm.DB, id uuid.UUID, verseProfileID, tenantID *uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if verseProfileID != nil {
		err := transaction.WithContext(ctx).
			Model(&types.Member{}).
			Where("id = ?", id).
			Where("verse_profile_id IS NULL").
			Update("verse_profile_id", *verseProfileID).Error
		if err != nil {
			return err
		}
	}
	if tenantID != nil {
		err := transaction.WithContext(ctx).
			Model(&types.Member{}).
			Where("id = ?", id).
			Where("tenant_id IS NULL").
			Update("tenant_id", *tenantID).Error
		if err != nil {
			return err
		}
	}
	return nil
}
