package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"gorm.io/gorm"
)

// FinancialRepository defines the interface for non-contract movements
type FinancialRepository interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error
	CreateReceipt(ctx context.Context, receipt *models.ExceptionalReceipt) error
	CreateRebate(ctx context.Context, rebate *models.Rebate) error
	CreateClaim(ctx context.Context, claim *models.Claim) error
	FindRebate(ctx context.Context, contractNumber string, paymentDate time.Time, amount decimal.Decimal, clientName string) (*models.Rebate, error)
	FindClaimByNumber(ctx context.Context, claimNumber string) (*models.Claim, error)
	ListExpenses(ctx context.Context, day *time.Time) ([]models.Expense, error)
	ListReceipts(ctx context.Context, day *time.Time) ([]models.ExceptionalReceipt, error)
	ListRebates(ctx context.Context, day *time.Time) ([]models.Rebate, error)
	ListClaims(ctx context.Context, day *time.Time) ([]models.Claim, error)
	DeleteForEntry(ctx context.Context, entry *models.LedgerEntry) error
}

type financialRepository struct {
	db *gorm.DB
}

// NewFinancialRepository creates a new financial repository
func NewFinancialRepository(db *gorm.DB) FinancialRepository {
	return &financialRepository{db: db}
}

func (r *financialRepository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *financialRepository) CreateReceipt(ctx context.Context, receipt *models.ExceptionalReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *financialRepository) CreateRebate(ctx context.Context, rebate *models.Rebate) error {
	return r.db.WithContext(ctx).Create(rebate).Error
}

func (r *financialRepository) CreateClaim(ctx context.Context, claim *models.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *financialRepository) FindRebate(ctx context.Context, contractNumber string, paymentDate time.Time, amount decimal.Decimal, clientName string) (*models.Rebate, error) {
	var rebate models.Rebate
	err := r.db.WithContext(ctx).
		Where("contract_number = ? AND payment_date = ? AND amount = ? AND client_name = ?",
			contractNumber, paymentDate.Format(models.DateLayout), amount, clientName).
		First(&rebate).Error
	if err != nil {
		return nil, err
	}
	return &rebate, nil
}

func (r *financialRepository) FindClaimByNumber(ctx context.Context, claimNumber string) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.WithContext(ctx).Where("claim_number = ?", claimNumber).First(&claim).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

// byDay restricts to a ledger day when given
func (r *financialRepository) byDay(ctx context.Context, day *time.Time) *gorm.DB {
	db := r.db.WithContext(ctx)
	if day != nil {
		db = db.Where("ledger_date = ?", day.Format(models.DateLayout))
	}
	return db.Order("created_at DESC")
}

func (r *financialRepository) ListExpenses(ctx context.Context, day *time.Time) ([]models.Expense, error) {
	var rows []models.Expense
	err := r.byDay(ctx, day).Find(&rows).Error
	return rows, err
}

func (r *financialRepository) ListReceipts(ctx context.Context, day *time.Time) ([]models.ExceptionalReceipt, error) {
	var rows []models.ExceptionalReceipt
	err := r.byDay(ctx, day).Find(&rows).Error
	return rows, err
}

func (r *financialRepository) ListRebates(ctx context.Context, day *time.Time) ([]models.Rebate, error) {
	var rows []models.Rebate
	err := r.byDay(ctx, day).Find(&rows).Error
	return rows, err
}

func (r *financialRepository) ListClaims(ctx context.Context, day *time.Time) ([]models.Claim, error) {
	var rows []models.Claim
	err := r.byDay(ctx, day).Find(&rows).Error
	return rows, err
}

// DeleteForEntry removes the detail row written with a financial ledger entry
func (r *financialRepository) DeleteForEntry(ctx context.Context, entry *models.LedgerEntry) error {
	var detail interface{}
	switch entry.Category {
	case models.CategoryDepense:
		detail = &models.Expense{}
	case models.CategoryRecette:
		detail = &models.ExceptionalReceipt{}
	case models.CategoryRistourne:
		detail = &models.Rebate{}
	case models.CategorySinistre:
		detail = &models.Claim{}
	default:
		return nil
	}
	return r.db.WithContext(ctx).Where("ledger_entry_id = ?", entry.ID).Delete(detail).Error
}
