package identity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Member is the legacy single-tier membership record, globally unique by
// email. Older tooling still reads this table, so the importer keeps it in
// sync and patches missing links instead of erroring on conflicts.
type Member struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email          string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Name           string     `gorm:"column:name" json:"name"`
	VerseProfileID *uuid.UUID `gorm:"type:uuid;column:verse_profile_id" json:"verse_profile_id,omitempty"`
	TenantID       *uuid.UUID `gorm:"type:uuid;index;column:tenant_id" json:"tenant_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Member) TableName() string { return "member" }
