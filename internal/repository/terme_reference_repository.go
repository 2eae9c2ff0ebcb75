package repository

import (
	"context"

	"github.com/sjperalta/fintera-assurance/internal/models"
	"gorm.io/gorm"
)

// TermeReferenceRepository defines the interface for imported monthly terme schedules
type TermeReferenceRepository interface {
	ReplaceMonth(ctx context.Context, month, year int, rows []models.TermeReference) error
	FindByContractNumber(ctx context.Context, contractNumber string) ([]models.TermeReference, error)
	Months(ctx context.Context) ([]models.TermeMonth, error)
}

type termeReferenceRepository struct {
	db *gorm.DB
}

// NewTermeReferenceRepository creates a new terme reference repository
func NewTermeReferenceRepository(db *gorm.DB) TermeReferenceRepository {
	return &termeReferenceRepository{db: db}
}

// ReplaceMonth swaps the rows of (month, year) in a single transaction
func (r *termeReferenceRepository) ReplaceMonth(ctx context.Context, month, year int, rows []models.TermeReference) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("month = ? AND year = ?", month, year).Delete(&models.TermeReference{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}

func (r *termeReferenceRepository) FindByContractNumber(ctx context.Context, contractNumber string) ([]models.TermeReference, error) {
	var rows []models.TermeReference
	err := r.db.WithContext(ctx).
		Where("contract_number = ?", contractNumber).
		Order("year DESC, month DESC").
		Find(&rows).Error
	return rows, err
}

func (r *termeReferenceRepository) Months(ctx context.Context) ([]models.TermeMonth, error) {
	var months []models.TermeMonth
	err := r.db.WithContext(ctx).
		Model(&models.TermeReference{}).
		Select("month, year, COUNT(*) AS row_count").
		Group("year, month").
		Order("year DESC, month DESC").
		Scan(&months).Error
	if err != nil {
		return nil, err
	}
	for i := range months {
		months[i].Label = models.MonthLabel(months[i].Month)
	}
	return months, nil
}
