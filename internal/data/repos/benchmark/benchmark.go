package benchmark

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/rowiverse/assessment-backend/internal/domain"
	"github.com/rowiverse/assessment-backend/internal/platform/logger"
)

// ListFilter narrows the benchmark catalog; zero values mean "no filter".
type ListFilter struct {
	Type    string
	Country string
	Region  string
	Sector  string
}

type BenchmarkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, b *types.Benchmark) (*types.Benchmark, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Benchmark, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Benchmark, error)
	List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.Benchmark, error)
	UpdateTotalRows(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalRows int) error
}

type benchmarkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBenchmarkRepo(db *gorm.DB, baseLog *logger.Logger) BenchmarkRepo {
	repoLog := baseLog.With("repo", "BenchmarkRepo")
	return &benchmarkRepo{db: db, log: repoLog}
}

func (br *benchmarkRepo) Create(ctx context.Context, tx *gorm.DB, b *types.Benchmark) (*types.Benchmark, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	if err := transaction.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (br *benchmarkRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Benchmark, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var result types.Benchmark
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

func (br *benchmarkRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Benchmark, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var result types.Benchmark
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

func (br *benchmarkRepo) List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]*types.Benchmark, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	query := transaction.WithContext(ctx).Model(&types.Benchmark{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}
	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}
	var results []*types.Benchmark
	if err := query.Order("name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (br *benchmarkRepo) UpdateTotalRows(ctx context.Context, tx *gorm.DB, id uuid.UUID, totalRows int) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Benchmark{}).
		Where("id = ?", id).
		Update("total_rows", totalRows).Error
}

type StatisticRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, stats []*types.BenchmarkStatistic) error
	ListByBenchmark(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) ([]*types.BenchmarkStatistic, error)
}

type statisticRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStatisticRepo(db *gorm.DB, baseLog *logger.Logger) StatisticRepo {
	repoLog := baseLog.With("repo", "BenchmarkStatisticRepo")
	return &statisticRepo{db: db, log: repoLog}
}

func (sr *statisticRepo) Upsert(ctx context.Context, tx *gorm.DB, stats []*types.BenchmarkStatistic) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(stats) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "benchmark_id"}, {Name: "metric_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mean", "median", "std_dev", "p25", "p50", "p75", "p90", "n", "updated_at",
			}),
		}).
		Create(&stats).Error
}

func (sr *statisticRepo) ListByBenchmark(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) ([]*types.BenchmarkStatistic, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.BenchmarkStatistic
	if err := transaction.WithContext(ctx).
		Where("benchmark_id = ?", benchmarkID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type TopPerformerProfileRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, profiles []*types.TopPerformerProfile) error
	GetByOutcome(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID, outcomeKey string) (*types.TopPerformerProfile, error)
	ListByBenchmark(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) ([]*types.TopPerformerProfile, error)
}

type topPerformerProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopPerformerProfileRepo(db *gorm.DB, baseLog *logger.Logger) TopPerformerProfileRepo {
	repoLog := baseLog.With("repo", "TopPerformerProfileRepo")
	return &topPerformerProfileRepo{db: db, log: repoLog}
}

func (tr *topPerformerProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, profiles []*types.TopPerformerProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if len(profiles) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "benchmark_id"}, {Name: "outcome_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"competencies", "talents", "top3_competencies", "top5_talents", "sample_size", "updated_at",
			}),
		}).
		Create(&profiles).Error
}

func (tr *topPerformerProfileRepo) GetByOutcome(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID, outcomeKey string) (*types.TopPerformerProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var result types.TopPerformerProfile
	if err := transaction.WithContext(ctx).
		Where("benchmark_id = ? AND outcome_key = ?", benchmarkID, outcomeKey).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (tr *topPerformerProfileRepo) ListByBenchmark(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) ([]*types.TopPerformerProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	var results []*types.TopPerformerProfile
	if err := transaction.WithContext(ctx).
		Where("benchmark_id = ?", benchmarkID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type ContributionRepo interface {
	CreateBulk(ctx context.Context, tx *gorm.DB, contributions []*types.Contribution) error
}

type contributionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContributionRepo(db *gorm.DB, baseLog *logger.Logger) ContributionRepo {
	repoLog := baseLog.With("repo", "ContributionRepo")
	return &contributionRepo{db: db, log: repoLog}
}

func (cr *contributionRepo) CreateBulk(ctx context.Context, tx *gorm.DB, contributions []*types.Contribution) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(contributions) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).CreateInBatches(&contributions, 100).Error
}
