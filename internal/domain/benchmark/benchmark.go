package benchmark

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TypeCommunity = "community"
	TypeExternal  = "external"
	TypeInternal  = "internal"

	ScopeGlobal  = "global"
	ScopeRegion  = "region"
	ScopeCountry = "country"
	ScopeSector  = "sector"
	ScopeTenant  = "tenant"
	ScopeHub     = "hub"
)

// Benchmark is a named statistical population with precomputed per-metric
// statistics and top-performer profiles.
type Benchmark struct {
	ID    uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name  string    `gorm:"not null;column:name" json:"name"`
	Slug  string    `gorm:"uniqueIndex;not null;column:slug" json:"slug"`
	Type  string    `gorm:"not null;column:type" json:"type"`
	Scope string    `gorm:"not null;default:global;column:scope" json:"scope"`

	Country *string `gorm:"column:country" json:"country,omitempty"`
	Region  *string `gorm:"column:region" json:"region,omitempty"`
	Sector  *string `gorm:"column:sector" json:"sector,omitempty"`

	// CommunityID is set for community-derived benchmarks only.
	CommunityID *uuid.UUID `gorm:"type:uuid;column:community_id" json:"community_id,omitempty"`
	TenantID    *uuid.UUID `gorm:"type:uuid;column:tenant_id" json:"tenant_id,omitempty"`

	TotalRows int `gorm:"not null;default:0;column:total_rows" json:"total_rows"`

	Statistics []Statistic           `gorm:"foreignKey:BenchmarkID;references:ID" json:"statistics,omitempty"`
	Profiles   []TopPerformerProfile `gorm:"foreignKey:BenchmarkID;references:ID" json:"profiles,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Benchmark) TableName() string { return "benchmark" }

// Statistic holds the descriptive stats for one metric key inside a benchmark.
type Statistic struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BenchmarkID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_benchmark_statistic_metric;column:benchmark_id" json:"benchmark_id"`
	MetricKey   string    `gorm:"not null;uniqueIndex:idx_benchmark_statistic_metric;column:metric_key" json:"metric_key"`

	Mean   float64 `gorm:"not null;column:mean" json:"mean"`
	Median float64 `gorm:"not null;column:median" json:"median"`
	StdDev float64 `gorm:"not null;column:std_dev" json:"std_dev"`
	P25    float64 `gorm:"not null;column:p25" json:"p25"`
	P50    float64 `gorm:"not null;column:p50" json:"p50"`
	P75    float64 `gorm:"not null;column:p75" json:"p75"`
	P90    float64 `gorm:"not null;column:p90" json:"p90"`
	N      int     `gorm:"not null;column:n" json:"n"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Statistic) TableName() string { return "benchmark_statistic" }

// TopPerformerProfile stores the averaged competency/talent vectors of the top
// decile of a benchmark's population, ranked by one outcome metric. The
// vectors are JSONB maps of metric key -> average score.
type TopPerformerProfile struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BenchmarkID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_top_performer_outcome;column:benchmark_id" json:"benchmark_id"`
	OutcomeKey  string    `gorm:"not null;uniqueIndex:idx_top_performer_outcome;column:outcome_key" json:"outcome_key"`

	Competencies     datatypes.JSON `gorm:"type:jsonb;column:competencies" json:"competencies"`
	Talents          datatypes.JSON `gorm:"type:jsonb;column:talents" json:"talents"`
	Top3Competencies datatypes.JSON `gorm:"type:jsonb;column:top3_competencies" json:"top3_competencies"`
	Top5Talents      datatypes.JSON `gorm:"type:jsonb;column:top5_talents" json:"top5_talents"`
	SampleSize       int            `gorm:"not null;column:sample_size" json:"sample_size"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TopPerformerProfile) TableName() string { return "top_performer_profile" }
