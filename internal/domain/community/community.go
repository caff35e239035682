package community

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Community is a named, slugged group of members. Scope columns tie it to the
// wider tenancy hierarchy; all of them are optional. Communities are
// find-or-create by slug, so re-importing the same export is idempotent.
type Community struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name           string     `gorm:"not null;column:name" json:"name"`
	Slug           string     `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	TenantID       *uuid.UUID `gorm:"type:uuid;index;column:tenant_id" json:"tenant_id,omitempty"`
	HubID          *uuid.UUID `gorm:"type:uuid;column:hub_id" json:"hub_id,omitempty"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;column:organization_id" json:"organization_id,omitempty"`
	SuperHubID     *uuid.UUID `gorm:"type:uuid;column:super_hub_id" json:"super_hub_id,omitempty"`
	VerseID        *uuid.UUID `gorm:"type:uuid;column:verse_id" json:"verse_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Community) TableName() string { return "community" }
