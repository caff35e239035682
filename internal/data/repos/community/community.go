package community

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

type CommunityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, c *types.Community) (*types.Community, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Community, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Community, error)
}

type communityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommunityRepo(db *gorm.DB, baseLog *logger.Logger) CommunityRepo {
	repoLog := baseLog.With("repo", "CommunityRepo")
	return &communityRepo{db: db, log: repoLog}
}

func (cr *communityRepo) Create(ctx context.Context, tx *gorm.DB, c *types.Community) (*types.Community, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (cr *communityRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Community, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.Community
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

func (cr *communityRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Community, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.Community
	if err := transaction.WithContext(ctx).
		Where("slug = ?", slug).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}
