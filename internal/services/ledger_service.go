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

// Submission steps
const (
	StepLedger  = "ledger"
	StepTerme   = "terme"
	StepAffaire = "affaire"
	StepCredit  = "credit"
)

// Step statuses
const (
	StepStatusOK      = "ok"
	StepStatusFailed  = "failed"
	StepStatusSkipped = "skipped"
)

// SubmitContractInput is the intake form of a Terme or Affaire contract
type SubmitContractInput struct {
	Category          string `json:"category" validate:"required,oneof=terme affaire"`
	Branch            string `json:"branch" validate:"required,oneof=Auto Vie Santé IRDS"`
	ContractNumber    string `json:"contract_number" validate:"required,max=64"`
	InsuredName       string `json:"insured_name" validate:"required,max=255"`
	PaymentMethod     string `json:"payment_method" validate:"required,oneof=espece cheque carte_bancaire"`
	PaymentPlan       string `json:"payment_plan" validate:"required,oneof=comptant credit"`
	Premium           Amount `json:"premium"`
	InstallmentAmount Amount `json:"installment_amount"`
	DueDate           string `json:"due_date"` // credit payment date, YYYY-MM-DD
	Maturity          string `json:"maturity"` // terme échéance, YYYY-MM-DD
}

// StepResult reports the outcome of one write of a submission
type StepResult struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SubmitResult identifies what a submission wrote
type SubmitResult struct {
	LedgerEntryID uint         `json:"ledger_entry_id"`
	DetailID      *uint        `json:"detail_id,omitempty"`
	CreditID      *uint        `json:"credit_id,omitempty"`
	Steps         []StepResult `json:"steps"`
	Partial       bool         `json:"partial"`
	Message       string       `json:"message"`
}

// preparedContract is a validated submission
type preparedContract struct {
	input     SubmitContractInput
	premium   decimal.Decimal
	credit    *decimal.Decimal
	dueDate   *time.Time
	maturity  *time.Time
	ledgerDay time.Time
	periodKey string
}

// LedgerService owns contract submission, duplicate checks and deletion
type LedgerService struct {
	ledgerRepo    repository.LedgerRepository
	termeRepo     repository.TermeRepository
	affaireRepo   repository.AffaireRepository
	creditRepo    repository.CreditRepository
	financialRepo repository.FinancialRepository
	locker        Locker
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	termeRepo repository.TermeRepository,
	affaireRepo repository.AffaireRepository,
	creditRepo repository.CreditRepository,
	financialRepo repository.FinancialRepository,
	locker Locker,
) *LedgerService {
	if locker == nil {
		locker = NoopLocker{}
	}
	return &LedgerService{
		ledgerRepo:    ledgerRepo,
		termeRepo:     termeRepo,
		affaireRepo:   affaireRepo,
		creditRepo:    creditRepo,
		financialRepo: financialRepo,
		locker:        locker,
	}
}

// SubmitContract validates, checks for duplicates and records a contract.
// The ledger entry is written first; detail and credit writes are best effort
// and their failures are reported in the result without undoing the ledger entry.
func (s *LedgerService) SubmitContract(ctx context.Context, session models.Session, input SubmitContractInput) (*SubmitResult, error) {
	start := time.Now()
	category := input.Category

	prepared, err := prepareContract(session, input)
	if err != nil {
		contractSubmissions.WithLabelValues(category, "invalid").Inc()
		return nil, err
	}

	release, err := s.locker.Obtain(ctx, contractLockKey(category, prepared.input.ContractNumber, prepared.periodKey))
	if err != nil {
		contractSubmissions.WithLabelValues(category, "error").Inc()
		return nil, err
	}
	defer release()

	if err := s.checkDuplicate(ctx, prepared); err != nil {
		if errors.Is(err, ErrDuplicateContract) {
			contractSubmissions.WithLabelValues(category, "duplicate").Inc()
		} else {
			contractSubmissions.WithLabelValues(category, "error").Inc()
		}
		return nil, err
	}

	entry := prepared.ledgerEntry(session)
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			contractSubmissions.WithLabelValues(category, "duplicate").Inc()
			return nil, s.concurrentDuplicate(ctx, prepared)
		}
		contractSubmissions.WithLabelValues(category, "error").Inc()
		return nil, fmt.Errorf("failed to write ledger entry: %w", err)
	}

	result := &SubmitResult{
		LedgerEntryID: entry.ID,
		Steps:         []StepResult{{Step: StepLedger, Status: StepStatusOK}},
	}

	detailID, detailStep := s.writeDetail(ctx, session, prepared, entry.ID)
	result.DetailID = detailID
	result.Steps = append(result.Steps, detailStep)

	creditID, creditStep := s.writeCredit(ctx, session, prepared, entry.ID)
	result.CreditID = creditID
	result.Steps = append(result.Steps, creditStep)

	for _, step := range result.Steps {
		if step.Status == StepStatusFailed {
			result.Partial = true
			secondaryWriteFailures.WithLabelValues(step.Step).Inc()
		}
	}
	result.Message = composeMessage(category, result.Steps)

	outcome := "accepted"
	if result.Partial {
		outcome = "partial"
	}
	contractSubmissions.WithLabelValues(category, outcome).Inc()
	submitLatency.WithLabelValues(category).Observe(time.Since(start).Seconds())

	logger.Info("Contract submitted",
		"category", category,
		"contract_number", prepared.input.ContractNumber,
		"ledger_entry_id", entry.ID,
		"partial", result.Partial,
		"agent", session.Username,
	)

	return result, nil
}

// prepareContract validates input against the session's ledger date
func prepareContract(session models.Session, input SubmitContractInput) (*preparedContract, error) {
	input.ContractNumber = strings.TrimSpace(input.ContractNumber)
	input.InsuredName = strings.TrimSpace(input.InsuredName)

	premium, ok := parsePositive(input.Premium)
	if !ok {
		return nil, &ValidationError{Field: "premium", Err: ErrInvalidPremium}
	}

	p := &preparedContract{
		input:     input,
		premium:   premium,
		ledgerDay: models.Day(session.LedgerDate),
	}
	loc := session.LedgerDate.Location()

	if input.PaymentPlan == models.PaymentPlanCredit {
		installment, ok := parsePositive(input.InstallmentAmount)
		if !ok || installment.GreaterThan(premium) {
			return nil, &ValidationError{Field: "installment_amount", Err: ErrInvalidInstallment}
		}
		if input.DueDate == "" {
			return nil, &ValidationError{Field: "due_date", Err: ErrInvalidInstallment}
		}
		due, err := ParseDay(input.DueDate, loc)
		if err != nil || !due.After(p.ledgerDay) {
			return nil, &ValidationError{Field: "due_date", Err: ErrInvalidInstallment}
		}
		p.credit = &installment
		p.dueDate = &due
	}

	if err := validateStruct(input); err != nil {
		return nil, err
	}

	switch input.Category {
	case models.CategoryTerme:
		if input.Maturity == "" {
			return nil, &ValidationError{Field: "maturity", Err: ErrInvalidMaturity}
		}
		maturity, err := ParseDay(input.Maturity, loc)
		if err != nil {
			return nil, &ValidationError{Field: "maturity", Err: ErrInvalidMaturity}
		}
		p.maturity = &maturity
		p.periodKey = maturity.Format(models.DateLayout)
	case models.CategoryAffaire:
		p.periodKey = p.ledgerDay.Format(models.DateLayout)
	}

	return p, nil
}

// checkDuplicate looks for the contract in its detail table, then in the ledger
func (s *LedgerService) checkDuplicate(ctx context.Context, p *preparedContract) error {
	number := p.input.ContractNumber
	category := p.input.Category

	dup := func(settled time.Time) error {
		return &DuplicateContractError{Category: category, ContractNumber: number, SettledOn: displayDate(settled)}
	}

	switch category {
	case models.CategoryTerme:
		existing, err := s.termeRepo.FindByNumberAndMaturity(ctx, number, *p.maturity)
		if err == nil {
			return dup(existing.PaymentDate)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check terme duplicates: %w", err)
		}
	case models.CategoryAffaire:
		existing, err := s.affaireRepo.FindByNumberAndDay(ctx, number, p.ledgerDay)
		if err == nil {
			return dup(existing.LedgerDate)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check affaire duplicates: %w", err)
		}
	}

	entry, err := s.ledgerRepo.FindContract(ctx, category, number, p.periodKey)
	if err == nil {
		return dup(entry.LedgerDate)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check ledger duplicates: %w", err)
	}
	return nil
}

// concurrentDuplicate reports a contract the unique index rejected, with the date of the row that won
func (s *LedgerService) concurrentDuplicate(ctx context.Context, p *preparedContract) error {
	var dupErr *DuplicateContractError
	if err := s.checkDuplicate(ctx, p); errors.As(err, &dupErr) {
		return dupErr
	}
	return &DuplicateContractError{
		Category:       p.input.Category,
		ContractNumber: p.input.ContractNumber,
		SettledOn:      displayDate(p.ledgerDay),
	}
}

func (p *preparedContract) ledgerEntry(session models.Session) *models.LedgerEntry {
	return &models.LedgerEntry{
		Category:       p.input.Category,
		Branch:         p.input.Branch,
		ContractNumber: p.input.ContractNumber,
		PeriodKey:      p.periodKey,
		Premium:        p.premium,
		Amount:         p.premium,
		InsuredName:    p.input.InsuredName,
		PaymentMethod:  p.input.PaymentMethod,
		PaymentPlan:    p.input.PaymentPlan,
		CreditAmount:   p.credit,
		DueDate:        p.dueDate,
		Maturity:       p.maturity,
		LedgerDate:     p.ledgerDay,
		CreatedBy:      session.Username,
	}
}

func (s *LedgerService) writeDetail(ctx context.Context, session models.Session, p *preparedContract, entryID uint) (*uint, StepResult) {
	switch p.input.Category {
	case models.CategoryTerme:
		detail := &models.TermeContract{
			LedgerEntryID:  &entryID,
			ContractNumber: p.input.ContractNumber,
			Premium:        p.premium,
			InsuredName:    p.input.InsuredName,
			Branch:         p.input.Branch,
			Maturity:       *p.maturity,
			PaymentDate:    p.ledgerDay,
			CreatedBy:      session.Username,
		}
		if err := s.termeRepo.Create(ctx, detail); err != nil {
			logger.Error("Failed to write terme detail", "ledger_entry_id", entryID, "error", err)
			return nil, StepResult{Step: StepTerme, Status: StepStatusFailed, Error: err.Error()}
		}
		return &detail.ID, StepResult{Step: StepTerme, Status: StepStatusOK}

	case models.CategoryAffaire:
		detail := &models.AffaireContract{
			LedgerEntryID:  &entryID,
			ContractNumber: p.input.ContractNumber,
			Premium:        p.premium,
			InsuredName:    p.input.InsuredName,
			Branch:         p.input.Branch,
			PaymentMethod:  p.input.PaymentMethod,
			PaymentPlan:    p.input.PaymentPlan,
			CreditAmount:   p.credit,
			PaymentDate:    p.dueDate,
			LedgerDate:     p.ledgerDay,
			CreatedBy:      session.Username,
		}
		if err := s.affaireRepo.Create(ctx, detail); err != nil {
			logger.Error("Failed to write affaire detail", "ledger_entry_id", entryID, "error", err)
			return nil, StepResult{Step: StepAffaire, Status: StepStatusFailed, Error: err.Error()}
		}
		return &detail.ID, StepResult{Step: StepAffaire, Status: StepStatusOK}
	}

	return nil, StepResult{Step: p.input.Category, Status: StepStatusSkipped}
}

func (s *LedgerService) writeCredit(ctx context.Context, session models.Session, p *preparedContract, entryID uint) (*uint, StepResult) {
	if p.credit == nil {
		return nil, StepResult{Step: StepCredit, Status: StepStatusSkipped}
	}

	credit := &models.Credit{
		LedgerEntryID:  &entryID,
		Category:       p.input.Category,
		ContractNumber: p.input.ContractNumber,
		InsuredName:    p.input.InsuredName,
		Branch:         p.input.Branch,
		Premium:        p.premium,
		Principal:      *p.credit,
		Paid:           decimal.Zero,
		Status:         models.CreditStatusUnpaid,
		DueDate:        *p.dueDate,
		CreatedBy:      session.Username,
	}
	credit.Recalculate()

	if err := s.creditRepo.Create(ctx, credit); err != nil {
		logger.Error("Failed to write credit", "ledger_entry_id", entryID, "error", err)
		return nil, StepResult{Step: StepCredit, Status: StepStatusFailed, Error: err.Error()}
	}
	return &credit.ID, StepResult{Step: StepCredit, Status: StepStatusOK}
}

// composeMessage builds the status line shown to the agent
func composeMessage(category string, steps []StepResult) string {
	parts := make([]string, 0, len(steps))
	for _, step := range steps {
		label := stepLabel(category, step.Step)
		switch step.Status {
		case StepStatusOK:
			parts = append(parts, label+" enregistré")
		case StepStatusFailed:
			parts = append(parts, "échec: "+label+" non enregistré")
		}
	}
	return strings.Join(parts, " · ")
}

func stepLabel(category, step string) string {
	switch step {
	case StepLedger:
		return "Contrat " + models.CategoryLabel(category)
	case StepTerme:
		return "Détail terme"
	case StepAffaire:
		return "Détail affaire"
	case StepCredit:
		return "Crédit"
	}
	return step
}

// DeleteContract removes a ledger entry, then best-effort its detail record
func (s *LedgerService) DeleteContract(ctx context.Context, entryID uint) error {
	entry, err := s.ledgerRepo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load ledger entry: %w", err)
	}

	if err := s.ledgerRepo.Delete(ctx, entryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}

	var detailErr error
	switch entry.Category {
	case models.CategoryTerme:
		detailErr = s.termeRepo.DeleteForEntry(ctx, entry)
	case models.CategoryAffaire:
		detailErr = s.affaireRepo.DeleteForEntry(ctx, entry)
	case models.CategoryDepense, models.CategoryRecette, models.CategoryRistourne, models.CategorySinistre:
		detailErr = s.financialRepo.DeleteForEntry(ctx, entry)
	}
	if detailErr != nil {
		logger.Warn("Ledger entry deleted but detail record was kept",
			"ledger_entry_id", entryID,
			"category", entry.Category,
			"contract_number", entry.ContractNumber,
			"error", detailErr,
		)
	}

	logger.Info("Ledger entry deleted", "ledger_entry_id", entryID, "category", entry.Category)
	return nil
}

// GetEntry returns a single ledger entry
func (s *LedgerService) GetEntry(ctx context.Context, entryID uint) (*models.LedgerEntry, error) {
	entry, err := s.ledgerRepo.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

// List returns a filtered page of ledger entries
func (s *LedgerService) List(ctx context.Context, query *repository.ListQuery) ([]models.LedgerEntry, int64, error) {
	return s.ledgerRepo.List(ctx, query)
}
