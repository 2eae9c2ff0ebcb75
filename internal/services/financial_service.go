package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/repository"
	"github.com/sjperalta/fintera-assurance/pkg/logger"
	"gorm.io/gorm"
)

// ExpenseInput records a dépense
type ExpenseInput struct {
	ExpenseType string  `json:"expense_type" validate:"required,max=100"`
	Amount      Amount  `json:"amount"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// ReceiptInput records a recette exceptionnelle
type ReceiptInput struct {
	ReceiptType string  `json:"receipt_type" validate:"required,max=100"`
	Amount      Amount  `json:"amount"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// RebateInput records a ristourne
type RebateInput struct {
	ContractNumber string `json:"contract_number" validate:"required,max=64"`
	ClientName     string `json:"client_name" validate:"required,max=255"`
	Amount         Amount `json:"amount"`
	PaymentDate    string `json:"payment_date" validate:"required"`
}

// ClaimInput records a sinistre
type ClaimInput struct {
	ClaimNumber string `json:"claim_number" validate:"required,max=64"`
	ClientName  string `json:"client_name" validate:"required,max=255"`
	Amount      Amount `json:"amount"`
	ClaimDate   string `json:"claim_date" validate:"required"`
}

// FinancialResult identifies the rows written for a financial entry
type FinancialResult struct {
	LedgerEntryID uint         `json:"ledger_entry_id"`
	DetailID      *uint        `json:"detail_id,omitempty"`
	Steps         []StepResult `json:"steps"`
	Partial       bool         `json:"partial"`
}

// FinancialService records cash movements that are not contracts
type FinancialService struct {
	ledgerRepo    repository.LedgerRepository
	financialRepo repository.FinancialRepository
}

// NewFinancialService creates a new financial service
func NewFinancialService(ledgerRepo repository.LedgerRepository, financialRepo repository.FinancialRepository) *FinancialService {
	return &FinancialService{
		ledgerRepo:    ledgerRepo,
		financialRepo: financialRepo,
	}
}

// RecordExpense writes a dépense
func (s *FinancialService) RecordExpense(ctx context.Context, session models.Session, input ExpenseInput) (*FinancialResult, error) {
	amount, err := financialAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	entry := s.newEntry(session, models.CategoryDepense, amount, input.Description)
	entry.InsuredName = input.ExpenseType

	return s.record(ctx, entry, func(entryID uint) (uint, error) {
		detail := &models.Expense{
			LedgerEntryID: &entryID,
			ExpenseType:   input.ExpenseType,
			Amount:        amount,
			Description:   input.Description,
			LedgerDate:    entry.LedgerDate,
			CreatedBy:     session.Username,
		}
		err := s.financialRepo.CreateExpense(ctx, detail)
		return detail.ID, err
	})
}

// RecordExceptionalReceipt writes a recette exceptionnelle
func (s *FinancialService) RecordExceptionalReceipt(ctx context.Context, session models.Session, input ReceiptInput) (*FinancialResult, error) {
	amount, err := financialAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	entry := s.newEntry(session, models.CategoryRecette, amount, input.Description)
	entry.InsuredName = input.ReceiptType

	return s.record(ctx, entry, func(entryID uint) (uint, error) {
		detail := &models.ExceptionalReceipt{
			LedgerEntryID: &entryID,
			ReceiptType:   input.ReceiptType,
			Amount:        amount,
			Description:   input.Description,
			LedgerDate:    entry.LedgerDate,
			CreatedBy:     session.Username,
		}
		err := s.financialRepo.CreateReceipt(ctx, detail)
		return detail.ID, err
	})
}

// RecordRebate writes a ristourne unless the same refund was already recorded
func (s *FinancialService) RecordRebate(ctx context.Context, session models.Session, input RebateInput) (*FinancialResult, error) {
	amount, err := financialAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	input.ContractNumber = strings.TrimSpace(input.ContractNumber)
	input.ClientName = strings.TrimSpace(input.ClientName)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	paymentDate, err := ParseDay(input.PaymentDate, session.LedgerDate.Location())
	if err != nil {
		return nil, &ValidationError{Field: "payment_date", Err: ErrInvalidInput}
	}

	_, err = s.financialRepo.FindRebate(ctx, input.ContractNumber, paymentDate, amount, input.ClientName)
	if err == nil {
		return nil, fmt.Errorf("%w: ristourne %s du %s", ErrDuplicateEntry, input.ContractNumber, displayDate(paymentDate))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check rebate duplicates: %w", err)
	}

	entry := s.newEntry(session, models.CategoryRistourne, amount, nil)
	entry.ContractNumber = input.ContractNumber
	entry.InsuredName = input.ClientName

	return s.record(ctx, entry, func(entryID uint) (uint, error) {
		detail := &models.Rebate{
			LedgerEntryID:  &entryID,
			ContractNumber: input.ContractNumber,
			ClientName:     input.ClientName,
			Amount:         amount,
			PaymentDate:    paymentDate,
			LedgerDate:     entry.LedgerDate,
			CreatedBy:      session.Username,
		}
		err := s.financialRepo.CreateRebate(ctx, detail)
		return detail.ID, err
	})
}

// RecordClaim writes a sinistre; claim numbers are unique
func (s *FinancialService) RecordClaim(ctx context.Context, session models.Session, input ClaimInput) (*FinancialResult, error) {
	amount, err := financialAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	input.ClaimNumber = strings.TrimSpace(input.ClaimNumber)
	input.ClientName = strings.TrimSpace(input.ClientName)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	claimDate, err := ParseDay(input.ClaimDate, session.LedgerDate.Location())
	if err != nil {
		return nil, &ValidationError{Field: "claim_date", Err: ErrInvalidInput}
	}

	_, err = s.financialRepo.FindClaimByNumber(ctx, input.ClaimNumber)
	if err == nil {
		return nil, fmt.Errorf("%w: sinistre %s", ErrDuplicateEntry, input.ClaimNumber)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check claim duplicates: %w", err)
	}

	entry := s.newEntry(session, models.CategorySinistre, amount, nil)
	entry.ContractNumber = input.ClaimNumber
	entry.InsuredName = input.ClientName

	return s.record(ctx, entry, func(entryID uint) (uint, error) {
		detail := &models.Claim{
			LedgerEntryID: &entryID,
			ClaimNumber:   input.ClaimNumber,
			ClientName:    input.ClientName,
			Amount:        amount,
			ClaimDate:     claimDate,
			LedgerDate:    entry.LedgerDate,
			CreatedBy:     session.Username,
		}
		err := s.financialRepo.CreateClaim(ctx, detail)
		return detail.ID, err
	})
}

// ListFinancial returns the detail rows of one kind, optionally for a single day
func (s *FinancialService) ListFinancial(ctx context.Context, kind string, day *time.Time) (interface{}, error) {
	switch kind {
	case models.FinancialKindExpense:
		return s.financialRepo.ListExpenses(ctx, day)
	case models.FinancialKindReceipt:
		return s.financialRepo.ListReceipts(ctx, day)
	case models.FinancialKindRebate:
		return s.financialRepo.ListRebates(ctx, day)
	case models.FinancialKindClaim:
		return s.financialRepo.ListClaims(ctx, day)
	}
	return nil, &ValidationError{Field: "kind", Err: ErrInvalidInput}
}

func financialAmount(a Amount) (decimal.Decimal, error) {
	amount, ok := parsePositive(a)
	if !ok {
		return decimal.Zero, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return amount, nil
}

func (s *FinancialService) newEntry(session models.Session, category string, amount decimal.Decimal, description *string) *models.LedgerEntry {
	return &models.LedgerEntry{
		Category:    category,
		Amount:      models.SignedAmount(category, amount),
		Premium:     decimal.Zero,
		Description: description,
		LedgerDate:  models.Day(session.LedgerDate),
		CreatedBy:   session.Username,
	}
}

// record writes the ledger entry, then the detail row on a best-effort basis
func (s *FinancialService) record(ctx context.Context, entry *models.LedgerEntry, writeDetail func(entryID uint) (uint, error)) (*FinancialResult, error) {
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to write ledger entry: %w", err)
	}

	result := &FinancialResult{
		LedgerEntryID: entry.ID,
		Steps:         []StepResult{{Step: StepLedger, Status: StepStatusOK}},
	}

	detailID, err := writeDetail(entry.ID)
	if err != nil {
		logger.Error("Failed to write financial detail", "category", entry.Category, "ledger_entry_id", entry.ID, "error", err)
		secondaryWriteFailures.WithLabelValues(entry.Category).Inc()
		result.Partial = true
		result.Steps = append(result.Steps, StepResult{Step: entry.Category, Status: StepStatusFailed, Error: err.Error()})
		return result, nil
	}

	result.DetailID = &detailID
	result.Steps = append(result.Steps, StepResult{Step: entry.Category, Status: StepStatusOK})
	logger.Info("Financial entry recorded", "category", entry.Category, "ledger_entry_id", entry.ID, "amount", entry.Amount.String())
	return result, nil
}
