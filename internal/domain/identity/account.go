package identity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is the single canonical record for a real person, keyed by a
// case-normalized email. The importer only ever creates accounts or fills
// previously-null fields; it never overwrites or deletes.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FirstName string    `gorm:"column:first_name" json:"first_name"`
	LastName  string    `gorm:"column:last_name" json:"last_name"`
	Country   *string   `gorm:"column:country" json:"country,omitempty"`
	Language  *string   `gorm:"column:language" json:"language,omitempty"`

	// Back-reference to the account's cross-community verse profile.
	VerseProfileID *uuid.UUID `gorm:"type:uuid;column:verse_profile_id" json:"verse_profile_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Account) TableName() string { return "account" }
