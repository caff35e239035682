package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/rowiverse/assessment-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedAccount(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.Account {
	tb.Helper()
	a := &types.Account{
		ID:        uuid.New(),
		Email:     email,
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed account: %v", err)
	}
	return a
}

func SeedCommunity(tb testing.TB, ctx context.Context, tx *gorm.DB, slug string) *types.Community {
	tb.Helper()
	c := &types.Community{
		ID:   uuid.New(),
		Name: slug,
		Slug: slug,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed community: %v", err)
	}
	return c
}

func SeedMembership(tb testing.TB, ctx context.Context, tx *gorm.DB, communityID, accountID uuid.UUID) *types.Membership {
	tb.Helper()
	m := &types.Membership{
		ID:          uuid.New(),
		CommunityID: communityID,
		AccountID:   accountID,
		Role:        types.MembershipRoleMember,
		Status:      types.MembershipStatusActive,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed membership: %v", err)
	}
	return m
}

func SeedSnapshot(tb testing.TB, ctx context.Context, tx *gorm.DB, accountID, communityID uuid.UUID, takenAt time.Time, k float64) *types.Snapshot {
	tb.Helper()
	s := &types.Snapshot{
		ID:           uuid.New(),
		AccountID:    accountID,
		CommunityID:  communityID,
		TakenAt:      takenAt,
		KnowYourself: &k,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed snapshot: %v", err)
	}
	return s
}
