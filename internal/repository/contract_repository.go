package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-assurance/internal/models"
	"gorm.io/gorm"
)

// TermeRepository defines the interface for terme detail data access
type TermeRepository interface {
	Create(ctx context.Context, contract *models.TermeContract) error
	FindByNumberAndMaturity(ctx context.Context, contractNumber string, maturity time.Time) (*models.TermeContract, error)
	DeleteForEntry(ctx context.Context, entry *models.LedgerEntry) error
}

// AffaireRepository defines the interface for affaire detail data access
type AffaireRepository interface {
	Create(ctx context.Context, contract *models.AffaireContract) error
	FindByNumberAndDay(ctx context.Context, contractNumber string, day time.Time) (*models.AffaireContract, error)
	DeleteForEntry(ctx context.Context, entry *models.LedgerEntry) error
}

type termeRepository struct {
	db *gorm.DB
}

// NewTermeRepository creates a new terme repository
func NewTermeRepository(db *gorm.DB) TermeRepository {
	return &termeRepository{db: db}
}

func (r *termeRepository) Create(ctx context.Context, contract *models.TermeContract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *termeRepository) FindByNumberAndMaturity(ctx context.Context, contractNumber string, maturity time.Time) (*models.TermeContract, error) {
	var contract models.TermeContract
	err := r.db.WithContext(ctx).
		Where("contract_number = ? AND maturity = ?", contractNumber, maturity.Format(models.DateLayout)).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// DeleteForEntry removes the detail row linked to entry, or matching its number and maturity
func (r *termeRepository) DeleteForEntry(ctx context.Context, entry *models.LedgerEntry) error {
	db := r.db.WithContext(ctx)
	if entry.Maturity != nil {
		db = db.Where("ledger_entry_id = ? OR (contract_number = ? AND maturity = ?)",
			entry.ID, entry.ContractNumber, entry.Maturity.Format(models.DateLayout))
	} else {
		db = db.Where("ledger_entry_id = ? OR contract_number = ?", entry.ID, entry.ContractNumber)
	}
	return db.Delete(&models.TermeContract{}).Error
}

type affaireRepository struct {
	db *gorm.DB
}

// NewAffaireRepository creates a new affaire repository
func NewAffaireRepository(db *gorm.DB) AffaireRepository {
	return &affaireRepository{db: db}
}

func (r *affaireRepository) Create(ctx context.Context, contract *models.AffaireContract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *affaireRepository) FindByNumberAndDay(ctx context.Context, contractNumber string, day time.Time) (*models.AffaireContract, error) {
	var contract models.AffaireContract
	err := r.db.WithContext(ctx).
		Where("contract_number = ? AND ledger_date = ?", contractNumber, day.Format(models.DateLayout)).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// DeleteForEntry removes the detail row linked to entry, or matching its number and ledger day
func (r *affaireRepository) DeleteForEntry(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).
		Where("ledger_entry_id = ? OR (contract_number = ? AND ledger_date = ?)",
			entry.ID, entry.ContractNumber, entry.LedgerDate.Format(models.DateLayout)).
		Delete(&models.AffaireContract{}).Error
}
