package benchmark

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Contribution is one consented row in the global rowiverse statistics pool.
// Rows are submitted in bulk at the end of an import run, never per row.
type Contribution struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index;column:account_id" json:"account_id"`

	Scores       datatypes.JSON `gorm:"type:jsonb;column:scores" json:"scores"`
	Outcomes     datatypes.JSON `gorm:"type:jsonb;column:outcomes" json:"outcomes"`
	Talents      datatypes.JSON `gorm:"type:jsonb;column:talents" json:"talents"`
	Demographics datatypes.JSON `gorm:"type:jsonb;column:demographics" json:"demographics"`

	SubmittedAt time.Time `gorm:"not null;default:now();column:submitted_at" json:"submitted_at"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Contribution) TableName() string { return "rowiverse_contribution" }
