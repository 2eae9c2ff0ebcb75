package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/repository"
	"github.com/sjperalta/fintera-assurance/internal/statemachine"
	"github.com/sjperalta/fintera-assurance/pkg/logger"
	"gorm.io/gorm"
)

// PaymentResult is returned after a payment is applied to a credit
type PaymentResult struct {
	Credit     *models.Credit  `json:"credit"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Status     string          `json:"status"`
}

// CreditService manages installment credits and their payments
type CreditService struct {
	creditRepo repository.CreditRepository
	loc        *time.Location
	now        func() time.Time
}

// NewCreditService creates a new credit service
func NewCreditService(creditRepo repository.CreditRepository, loc *time.Location) *CreditService {
	if loc == nil {
		loc = time.Local
	}
	return &CreditService{
		creditRepo: creditRepo,
		loc:        loc,
		now:        time.Now,
	}
}

func (s *CreditService) today() time.Time {
	return models.Day(s.now().In(s.loc))
}

// Today returns the current ledger day in the configured timezone
func (s *CreditService) Today() time.Time {
	return s.today()
}

// GetCredit returns a single credit
func (s *CreditService) GetCredit(ctx context.Context, id uint) (*models.Credit, error) {
	credit, err := s.creditRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return credit, nil
}

// RecordPayment adds amount to what was already paid on the credit.
// Payments accumulate; the credit is paid once the sum reaches the principal.
func (s *CreditService) RecordPayment(ctx context.Context, id uint, amount Amount) (*PaymentResult, error) {
	value, ok := parsePositive(amount)
	if !ok {
		creditPayments.WithLabelValues("invalid").Inc()
		return nil, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}

	credit, err := s.GetCredit(ctx, id)
	if err != nil {
		return nil, err
	}

	if credit.IsSettled() {
		creditPayments.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: le crédit est déjà payé", ErrInvalidTransition)
	}

	newPaid := credit.Paid.Add(value)
	if newPaid.GreaterThan(credit.Principal) {
		creditPayments.WithLabelValues("overpayment").Inc()
		return nil, ErrOverpayment
	}

	credit.Paid = newPaid
	credit.Recalculate()

	machine := statemachine.NewCreditFSM(credit)
	if credit.Balance.IsZero() {
		err = machine.PayFull(ctx)
	} else {
		err = machine.PayPartial(ctx)
	}
	if err != nil {
		creditPayments.WithLabelValues("rejected").Inc()
		return nil, err
	}

	today := s.today()
	credit.PaidDate = &today

	if err := s.creditRepo.Update(ctx, credit); err != nil {
		creditPayments.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to update credit: %w", err)
	}

	creditPayments.WithLabelValues(credit.Status).Inc()
	logger.Info("Credit payment recorded",
		"credit_id", credit.ID,
		"contract_number", credit.ContractNumber,
		"amount", value.String(),
		"balance", credit.Balance.String(),
		"status", credit.Status,
	)

	return &PaymentResult{
		Credit:     credit,
		NewBalance: credit.Balance,
		Status:     credit.Status,
	}, nil
}

// UpdateStatus moves a credit to status through the state machine.
// Only paid and overdue can be set by hand. Setting paid settles the remaining balance as of effectiveDate (today when nil).
func (s *CreditService) UpdateStatus(ctx context.Context, id uint, status string, effectiveDate *time.Time) (*models.Credit, error) {
	if !models.IsValidCreditStatus(status) {
		return nil, &ValidationError{Field: "status", Err: ErrInvalidInput}
	}

	credit, err := s.GetCredit(ctx, id)
	if err != nil {
		return nil, err
	}

	if credit.Status == models.CreditStatusPaid && status != models.CreditStatusPaid {
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, credit.Status, status)
	}
	// partially_paid is only reached by recording a payment
	if status == models.CreditStatusPartiallyPaid {
		return nil, fmt.Errorf("%w: %s → %s, enregistrez un paiement", ErrInvalidTransition, credit.Status, status)
	}

	if err := statemachine.NewCreditFSM(credit).TransitionTo(ctx, status); err != nil {
		return nil, err
	}

	if credit.Status == models.CreditStatusPaid {
		paidOn := s.today()
		if effectiveDate != nil {
			paidOn = models.Day(effectiveDate.In(s.loc))
		}
		credit.PaidDate = &paidOn
		credit.Paid = credit.Principal
		credit.Recalculate()
	}

	if err := s.creditRepo.Update(ctx, credit); err != nil {
		return nil, fmt.Errorf("failed to update credit: %w", err)
	}

	logger.Info("Credit status updated", "credit_id", credit.ID, "status", credit.Status)
	return credit, nil
}

// MarkOverdue flags every unpaid credit whose due date has passed
func (s *CreditService) MarkOverdue(ctx context.Context) (int, error) {
	today := s.today()

	candidates, err := s.creditRepo.FindOverdueCandidates(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to load overdue candidates: %w", err)
	}

	marked := 0
	for i := range candidates {
		credit := &candidates[i]
		if !credit.MayMarkOverdue(today) {
			continue
		}
		if err := statemachine.NewCreditFSM(credit).MarkOverdue(ctx); err != nil {
			logger.Warn("Skipping credit", "credit_id", credit.ID, "error", err)
			continue
		}
		if err := s.creditRepo.Update(ctx, credit); err != nil {
			logger.Error("Failed to mark credit overdue", "credit_id", credit.ID, "error", err)
			continue
		}
		marked++
	}

	if marked > 0 {
		creditsMarkedOverdue.Add(float64(marked))
		logger.Info("Credits marked overdue", "count", marked)
	}
	return marked, nil
}

// List returns a filtered page of credits
func (s *CreditService) List(ctx context.Context, query *repository.ListQuery) ([]models.Credit, int64, error) {
	return s.creditRepo.List(ctx, query)
}

// Statistics aggregates every credit matching the query filters
func (s *CreditService) Statistics(ctx context.Context, query *repository.ListQuery, window models.DateWindow) (models.CreditStatistics, error) {
	credits, err := s.creditRepo.FindAll(ctx, query)
	if err != nil {
		return models.CreditStatistics{}, fmt.Errorf("failed to load credits: %w", err)
	}
	return ComputeCreditStatistics(credits, window, s.today()), nil
}
