package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-assurance/internal/models"
	"gorm.io/gorm"
)

// CreditRepository defines the interface for credit data access
type CreditRepository interface {
	Create(ctx context.Context, credit *models.Credit) error
	FindByID(ctx context.Context, id uint) (*models.Credit, error)
	Update(ctx context.Context, credit *models.Credit) error
	List(ctx context.Context, query *ListQuery) ([]models.Credit, int64, error)
	FindAll(ctx context.Context, query *ListQuery) ([]models.Credit, error)
	FindOverdueCandidates(ctx context.Context, today time.Time) ([]models.Credit, error)
}

type creditRepository struct {
	db *gorm.DB
}

// NewCreditRepository creates a new credit repository
func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

var creditSortable = map[string]string{
	"id":         "id",
	"created_at": "created_at",
	"due_date":   "due_date",
	"principal":  "principal",
	"balance":    "balance",
}

func (r *creditRepository) Create(ctx context.Context, credit *models.Credit) error {
	return r.db.WithContext(ctx).Create(credit).Error
}

func (r *creditRepository) FindByID(ctx context.Context, id uint) (*models.Credit, error) {
	var credit models.Credit
	if err := r.db.WithContext(ctx).First(&credit, id).Error; err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *creditRepository) Update(ctx context.Context, credit *models.Credit) error {
	return r.db.WithContext(ctx).Save(credit).Error
}

// filtered applies status, branch, created_by, search and created_at window filters
func (r *creditRepository) filtered(ctx context.Context, query *ListQuery) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&models.Credit{})
	if query == nil {
		return db
	}
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("contract_number ILIKE ? OR insured_name ILIKE ?", search, search)
	}
	for _, col := range []string{"status", "branch", "created_by"} {
		if v := query.Filters[col]; v != "" {
			db = db.Where(col+" = ?", v)
		}
	}
	if v := query.Filters["start_date"]; v != "" {
		db = db.Where("created_at::date >= ?", v)
	}
	if v := query.Filters["end_date"]; v != "" {
		db = db.Where("created_at::date <= ?", v)
	}
	if v := query.Filters["due_from"]; v != "" {
		db = db.Where("due_date >= ?", v)
	}
	if v := query.Filters["due_to"]; v != "" {
		db = db.Where("due_date <= ?", v)
	}
	return db
}

func (r *creditRepository) List(ctx context.Context, query *ListQuery) ([]models.Credit, int64, error) {
	var credits []models.Credit
	var total int64

	db := r.filtered(ctx, query)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := applySortAndPage(db, query, creditSortable, "created_at DESC").Find(&credits).Error
	return credits, total, err
}

// FindAll returns every credit matching the filters, unpaginated
func (r *creditRepository) FindAll(ctx context.Context, query *ListQuery) ([]models.Credit, error) {
	var credits []models.Credit
	err := r.filtered(ctx, query).Order("due_date ASC").Find(&credits).Error
	return credits, err
}

// FindOverdueCandidates returns unpaid credits whose due date is before today
func (r *creditRepository) FindOverdueCandidates(ctx context.Context, today time.Time) ([]models.Credit, error) {
	var credits []models.Credit
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", models.CreditStatusUnpaid, today.Format(models.DateLayout)).
		Find(&credits).Error
	return credits, err
}
