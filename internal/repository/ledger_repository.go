package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-assurance/internal/models"

	"gorm.io/gorm"
)

// LedgerRepository defines the interface for ledger entry data access
type LedgerRepository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	FindByID(ctx context.Context, id uint) (*models.LedgerEntry, error)
	FindContract(ctx context.Context, category, contractNumber, periodKey string) (*models.LedgerEntry, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.LedgerEntry, int64, error)
	FindBySession(ctx context.Context, day time.Time, createdBy string) ([]models.LedgerEntry, error)
}

// ledgerRepository handles database operations for ledger entries
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

var ledgerSortable = map[string]string{
	"id":              "id",
	"created_at":      "created_at",
	"ledger_date":     "ledger_date",
	"contract_number": "contract_number",
	"premium":         "premium",
	"amount":          "amount",
}

// Create creates a new ledger entry
func (r *ledgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ledgerRepository) FindByID(ctx context.Context, id uint) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindContract looks up a contract row by its duplicate key
func (r *ledgerRepository) FindContract(ctx context.Context, category, contractNumber, periodKey string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("category = ? AND contract_number = ? AND period_key = ?", category, contractNumber, periodKey).
		Order("created_at ASC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ledgerRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.LedgerEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns a filtered page of ledger entries
// Filters: category, branch, created_by, payment_method, payment_plan, start_date, end_date
func (r *ledgerRepository) List(ctx context.Context, query *ListQuery) ([]models.LedgerEntry, int64, error) {
	var entries []models.LedgerEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&models.LedgerEntry{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("contract_number ILIKE ? OR insured_name ILIKE ?", search, search)
	}
	for _, col := range []string{"category", "branch", "created_by", "payment_method", "payment_plan"} {
		if v := query.Filters[col]; v != "" {
			db = db.Where(col+" = ?", v)
		}
	}
	if v := query.Filters["start_date"]; v != "" {
		db = db.Where("ledger_date >= ?", v)
	}
	if v := query.Filters["end_date"]; v != "" {
		db = db.Where("ledger_date <= ?", v)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := applySortAndPage(db, query, ledgerSortable, "created_at DESC").Find(&entries).Error
	return entries, total, err
}

// FindBySession returns every entry recorded by createdBy on day
func (r *ledgerRepository) FindBySession(ctx context.Context, day time.Time, createdBy string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	db := r.db.WithContext(ctx).Where("ledger_date = ?", day.Format(models.DateLayout))
	if createdBy != "" {
		db = db.Where("created_by = ?", createdBy)
	}
	err := db.Order("created_at ASC").Find(&entries).Error
	return entries, err
}
