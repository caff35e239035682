package identity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	VerseProfileStatusPending  = "pending"
	VerseProfileStatusVerified = "verified"
)

// VerseProfile is the cross-community identity layer. It is keyed by account
// when linked, with the email kept as a fallback key for profiles that were
// created before their account existed.
type VerseProfile struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID *uuid.UUID `gorm:"type:uuid;uniqueIndex;column:account_id" json:"account_id,omitempty"`
	Email     string     `gorm:"index;not null;column:email" json:"email"`
	Status    string     `gorm:"not null;default:pending;column:status" json:"status"`
	VerseID   *uuid.UUID `gorm:"type:uuid;column:verse_id" json:"verse_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (VerseProfile) TableName() string { return "verse_profile" }
