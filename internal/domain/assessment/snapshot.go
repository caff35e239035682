package assessment

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is one immutable scored assessment for one account in one
// community. TakenAt carries the assessment's own date when the export has
// one, otherwise the import's wall-clock time. Snapshots are append-only:
// "latest" is always resolved by ordering on TakenAt, never by overwrite.
//
// Composite scores are pointers so that a metric missing from the export is
// stored as NULL, never conflated with an explicit score of zero.
type Snapshot struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID   uuid.UUID `gorm:"type:uuid;not null;index:idx_snapshot_account_taken;column:account_id" json:"account_id"`
	CommunityID uuid.UUID `gorm:"type:uuid;not null;index;column:community_id" json:"community_id"`
	TakenAt     time.Time `gorm:"not null;index:idx_snapshot_account_taken,sort:desc;column:taken_at" json:"taken_at"`

	KnowYourself   *float64 `gorm:"column:know_yourself" json:"know_yourself,omitempty"`
	ChooseYourself *float64 `gorm:"column:choose_yourself" json:"choose_yourself,omitempty"`
	GiveYourself   *float64 `gorm:"column:give_yourself" json:"give_yourself,omitempty"`

	Competencies   []Competency    `gorm:"foreignKey:SnapshotID;references:ID" json:"competencies,omitempty"`
	Subfactors     []Subfactor     `gorm:"foreignKey:SnapshotID;references:ID" json:"subfactors,omitempty"`
	Outcomes       []Outcome       `gorm:"foreignKey:SnapshotID;references:ID" json:"outcomes,omitempty"`
	SuccessFactors []SuccessFactor `gorm:"foreignKey:SnapshotID;references:ID" json:"success_factors,omitempty"`
	Talents        []Talent        `gorm:"foreignKey:SnapshotID;references:ID" json:"talents,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Snapshot) TableName() string { return "assessment_snapshot" }

// Competency holds one of the three top-level composite scores (K, C, G).
type Competency struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SnapshotID uuid.UUID `gorm:"type:uuid;not null;index;column:snapshot_id" json:"snapshot_id"`
	Key        string    `gorm:"not null;column:key" json:"key"`
	Score      float64   `gorm:"not null;column:score" json:"score"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Competency) TableName() string { return "competency_snapshot" }

// Subfactor holds one of the eight named sub-competency scores.
type Subfactor struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SnapshotID uuid.UUID `gorm:"type:uuid;not null;index;column:snapshot_id" json:"snapshot_id"`
	Key        string    `gorm:"not null;column:key" json:"key"`
	Score      float64   `gorm:"not null;column:score" json:"score"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Subfactor) TableName() string { return "subfactor_snapshot" }

// Outcome holds one life/work outcome metric score.
type Outcome struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SnapshotID uuid.UUID `gorm:"type:uuid;not null;index;column:snapshot_id" json:"snapshot_id"`
	Key        string    `gorm:"not null;column:key" json:"key"`
	Score      float64   `gorm:"not null;column:score" json:"score"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Outcome) TableName() string { return "outcome_snapshot" }

// SuccessFactor is an open-ended key/label/score triple.
type SuccessFactor struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SnapshotID uuid.UUID `gorm:"type:uuid;not null;index;column:snapshot_id" json:"snapshot_id"`
	Key        string    `gorm:"not null;column:key" json:"key"`
	Label      string    `gorm:"column:label" json:"label"`
	Score      float64   `gorm:"not null;column:score" json:"score"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (SuccessFactor) TableName() string { return "success_factor_snapshot" }

// Talent is an open-ended key/label/score triple from the talent profile.
type Talent struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SnapshotID uuid.UUID `gorm:"type:uuid;not null;index;column:snapshot_id" json:"snapshot_id"`
	Key        string    `gorm:"not null;column:key" json:"key"`
	Label      string    `gorm:"column:label" json:"label"`
	Score      float64   `gorm:"not null;column:score" json:"score"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Talent) TableName() string { return "talent_snapshot" }
