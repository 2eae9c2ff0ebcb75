package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/repository"
	"gorm.io/gorm"
)

// Mock LedgerRepository
type mockLedgerRepo struct {
	repository.LedgerRepository
	mockCreate        func(ctx context.Context, entry *models.LedgerEntry) error
	mockFindByID      func(ctx context.Context, id uint) (*models.LedgerEntry, error)
	mockFindContract  func(ctx context.Context, category, contractNumber, periodKey string) (*models.LedgerEntry, error)
	mockDelete        func(ctx context.Context, id uint) error
	mockFindBySession func(ctx context.Context, day time.Time, createdBy string) ([]models.LedgerEntry, error)
	mockList          func(ctx context.Context, query *repository.ListQuery) ([]models.LedgerEntry, int64, error)
	created           []*models.LedgerEntry
}

func (m *mockLedgerRepo) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if m.mockCreate != nil {
		if err := m.mockCreate(ctx, entry); err != nil {
			return err
		}
	}
	if entry.ID == 0 {
		entry.ID = uint(len(m.created) + 1)
	}
	m.created = append(m.created, entry)
	return nil
}

func (m *mockLedgerRepo) FindByID(ctx context.Context, id uint) (*models.LedgerEntry, error) {
	if m.mockFindByID != nil {
		return m.mockFindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLedgerRepo) FindContract(ctx context.Context, category, contractNumber, periodKey string) (*models.LedgerEntry, error) {
	if m.mockFindContract != nil {
		return m.mockFindContract(ctx, category, contractNumber, periodKey)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLedgerRepo) Delete(ctx context.Context, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, id)
	}
	return nil
}

func (m *mockLedgerRepo) FindBySession(ctx context.Context, day time.Time, createdBy string) ([]models.LedgerEntry, error) {
	if m.mockFindBySession != nil {
		return m.mockFindBySession(ctx, day, createdBy)
	}
	return nil, nil
}

func (m *mockLedgerRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.LedgerEntry, int64, error) {
	if m.mockList != nil {
		return m.mockList(ctx, query)
	}
	return nil, 0, nil
}

// Mock TermeRepository
type mockTermeRepo struct {
	repository.TermeRepository
	mockCreate         func(ctx context.Context, contract *models.TermeContract) error
	mockFindByMaturity func(ctx context.Context, contractNumber string, maturity time.Time) (*models.TermeContract, error)
	mockDeleteForEntry func(ctx context.Context, entry *models.LedgerEntry) error
	created            []*models.TermeContract
}

func (m *mockTermeRepo) Create(ctx context.Context, contract *models.TermeContract) error {
	if m.mockCreate != nil {
		if err := m.mockCreate(ctx, contract); err != nil {
			return err
		}
	}
	contract.ID = uint(len(m.created) + 1)
	m.created = append(m.created, contract)
	return nil
}

func (m *mockTermeRepo) FindByNumberAndMaturity(ctx context.Context, contractNumber string, maturity time.Time) (*models.TermeContract, error) {
	if m.mockFindByMaturity != nil {
		return m.mockFindByMaturity(ctx, contractNumber, maturity)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTermeRepo) DeleteForEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if m.mockDeleteForEntry != nil {
		return m.mockDeleteForEntry(ctx, entry)
	}
	return nil
}

// Mock AffaireRepository
type mockAffaireRepo struct {
	repository.AffaireRepository
	mockCreate         func(ctx context.Context, contract *models.AffaireContract) error
	mockFindByDay      func(ctx context.Context, contractNumber string, day time.Time) (*models.AffaireContract, error)
	mockDeleteForEntry func(ctx context.Context, entry *models.LedgerEntry) error
	created            []*models.AffaireContract
}

func (m *mockAffaireRepo) Create(ctx context.Context, contract *models.AffaireContract) error {
	if m.mockCreate != nil {
		if err := m.mockCreate(ctx, contract); err != nil {
			return err
		}
	}
	contract.ID = uint(len(m.created) + 1)
	m.created = append(m.created, contract)
	return nil
}

func (m *mockAffaireRepo) FindByNumberAndDay(ctx context.Context, contractNumber string, day time.Time) (*models.AffaireContract, error) {
	if m.mockFindByDay != nil {
		return m.mockFindByDay(ctx, contractNumber, day)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAffaireRepo) DeleteForEntry(ctx context.Context, entry *models.LedgerEntry) error {
	if m.mockDeleteForEntry != nil {
		return m.mockDeleteForEntry(ctx, entry)
	}
	return nil
}

// Mock CreditRepository backed by a map
type mockCreditRepo struct {
	repository.CreditRepository
	credits    map[uint]*models.Credit
	mockCreate func(ctx context.Context, credit *models.Credit) error
	mockUpdate func(ctx context.Context, credit *models.Credit) error
	updates    int
}

func newMockCreditRepo(credits ...models.Credit) *mockCreditRepo {
	m := &mockCreditRepo{credits: make(map[uint]*models.Credit)}
	for i := range credits {
		c := credits[i]
		m.credits[c.ID] = &c
	}
	return m
}

func (m *mockCreditRepo) Create(ctx context.Context, credit *models.Credit) error {
	if m.mockCreate != nil {
		if err := m.mockCreate(ctx, credit); err != nil {
			return err
		}
	}
	credit.ID = uint(len(m.credits) + 1)
	c := *credit
	m.credits[credit.ID] = &c
	return nil
}

func (m *mockCreditRepo) FindByID(ctx context.Context, id uint) (*models.Credit, error) {
	c, ok := m.credits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCreditRepo) Update(ctx context.Context, credit *models.Credit) error {
	if m.mockUpdate != nil {
		if err := m.mockUpdate(ctx, credit); err != nil {
			return err
		}
	}
	m.updates++
	c := *credit
	m.credits[credit.ID] = &c
	return nil
}

func (m *mockCreditRepo) FindAll(ctx context.Context, query *repository.ListQuery) ([]models.Credit, error) {
	out := make([]models.Credit, 0, len(m.credits))
	for _, c := range m.credits {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCreditRepo) FindOverdueCandidates(ctx context.Context, today time.Time) ([]models.Credit, error) {
	var out []models.Credit
	for _, c := range m.credits {
		if c.Status == models.CreditStatusUnpaid && c.DueDate.Before(today) {
			out = append(out, *c)
		}
	}
	return out, nil
}

// Mock FinancialRepository
type mockFinancialRepo struct {
	repository.FinancialRepository
	mockFindRebate func(ctx context.Context, contractNumber string, paymentDate time.Time, amount decimal.Decimal, clientName string) (*models.Rebate, error)
	mockFindClaim  func(ctx context.Context, claimNumber string) (*models.Claim, error)
	mockCreateErr  error
	expenses       []*models.Expense
	receipts       []*models.ExceptionalReceipt
	rebates        []*models.Rebate
	claims         []*models.Claim
	deletedFor     []*models.LedgerEntry
}

func (m *mockFinancialRepo) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if m.mockCreateErr != nil {
		return m.mockCreateErr
	}
	m.expenses = append(m.expenses, expense)
	return nil
}

func (m *mockFinancialRepo) CreateReceipt(ctx context.Context, receipt *models.ExceptionalReceipt) error {
	if m.mockCreateErr != nil {
		return m.mockCreateErr
	}
	m.receipts = append(m.receipts, receipt)
	return nil
}

func (m *mockFinancialRepo) CreateRebate(ctx context.Context, rebate *models.Rebate) error {
	if m.mockCreateErr != nil {
		return m.mockCreateErr
	}
	m.rebates = append(m.rebates, rebate)
	return nil
}

func (m *mockFinancialRepo) CreateClaim(ctx context.Context, claim *models.Claim) error {
	if m.mockCreateErr != nil {
		return m.mockCreateErr
	}
	m.claims = append(m.claims, claim)
	return nil
}

func (m *mockFinancialRepo) FindRebate(ctx context.Context, contractNumber string, paymentDate time.Time, amount decimal.Decimal, clientName string) (*models.Rebate, error) {
	if m.mockFindRebate != nil {
		return m.mockFindRebate(ctx, contractNumber, paymentDate, amount, clientName)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFinancialRepo) FindClaimByNumber(ctx context.Context, claimNumber string) (*models.Claim, error) {
	if m.mockFindClaim != nil {
		return m.mockFindClaim(ctx, claimNumber)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFinancialRepo) DeleteForEntry(ctx context.Context, entry *models.LedgerEntry) error {
	m.deletedFor = append(m.deletedFor, entry)
	return nil
}

// Mock TermeReferenceRepository
type mockTermeReferenceRepo struct {
	repository.TermeReferenceRepository
	replaced map[[2]int][]models.TermeReference
}

func (m *mockTermeReferenceRepo) ReplaceMonth(ctx context.Context, month, year int, rows []models.TermeReference) error {
	if m.replaced == nil {
		m.replaced = make(map[[2]int][]models.TermeReference)
	}
	m.replaced[[2]int{month, year}] = rows
	return nil
}
