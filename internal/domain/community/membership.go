package community

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rowiverse/assessment-backend/internal/domain/identity"
)

const (
	MembershipRoleMember = "member"
	MembershipRoleAdmin  = "admin"

	MembershipStatusActive   = "active"
	MembershipStatusInactive = "inactive"
)

// Membership ties an account to exactly one community. DisplayName and Email
// are denormalized copies kept for legacy readers of this table.
type Membership struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CommunityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_membership_community_account;column:community_id" json:"community_id"`
	AccountID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_membership_community_account;column:account_id" json:"account_id"`

	Account *identity.Account `gorm:"constraint:OnDelete:CASCADE;foreignKey:AccountID;references:ID" json:"account,omitempty"`

	Role        string `gorm:"not null;default:member;column:role" json:"role"`
	Status      string `gorm:"not null;default:active;column:status" json:"status"`
	DisplayName string `gorm:"column:display_name" json:"display_name"`
	Email       string `gorm:"index;column:email" json:"email"`

	VerseProfileID *uuid.UUID `gorm:"type:uuid;column:verse_profile_id" json:"verse_profile_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Membership) TableName() string { return "community_membership" }
