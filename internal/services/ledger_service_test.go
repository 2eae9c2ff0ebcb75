package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type ledgerFixture struct {
	ledger  *mockLedgerRepo
	terme   *mockTermeRepo
	affaire *mockAffaireRepo
	credits   *mockCreditRepo
	financial *mockFinancialRepo
	service   *LedgerService
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		ledger:  &mockLedgerRepo{},
		terme:   &mockTermeRepo{},
		affaire: &mockAffaireRepo{},
		credits:   newMockCreditRepo(),
		financial: &mockFinancialRepo{},
	}
	f.service = NewLedgerService(f.ledger, f.terme, f.affaire, f.credits, f.financial, nil)
	return f
}

func testSession() models.Session {
	loginAt := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	return models.NewSession(models.Agent{Username: "amel"}, loginAt)
}

func termeInput() SubmitContractInput {
	return SubmitContractInput{
		Category:       models.CategoryTerme,
		Branch:         models.BranchAuto,
		ContractNumber: "T-100",
		InsuredName:    "Sami Ben Ali",
		PaymentMethod:  models.PaymentMethodCash,
		PaymentPlan:    models.PaymentPlanCash,
		Premium:        "450.500",
		Maturity:       "2025-06-30",
	}
}

func affaireCreditInput() SubmitContractInput {
	return SubmitContractInput{
		Category:          models.CategoryAffaire,
		Branch:            models.BranchSante,
		ContractNumber:    "A-7",
		InsuredName:       "Leila Trabelsi",
		PaymentMethod:     models.PaymentMethodCheck,
		PaymentPlan:       models.PaymentPlanCredit,
		Premium:           "1200",
		InstallmentAmount: "1000",
		DueDate:           "2025-07-15",
	}
}

func TestLedgerService_SubmitContract_Terme(t *testing.T) {
	f := newLedgerFixture()

	result, err := f.service.SubmitContract(context.Background(), testSession(), termeInput())
	require.NoError(t, err)

	assert.False(t, result.Partial)
	assert.NotZero(t, result.LedgerEntryID)
	assert.NotNil(t, result.DetailID)
	assert.Nil(t, result.CreditID)
	require.Len(t, f.ledger.created, 1)
	entry := f.ledger.created[0]
	assert.Equal(t, "2025-06-30", entry.PeriodKey)
	assert.True(t, entry.Amount.Equal(entry.Premium))
	assert.Equal(t, "amel", entry.CreatedBy)
	assert.Equal(t, "2025-06-15", entry.LedgerDate.Format(models.DateLayout))
	require.Len(t, f.terme.created, 1)
	assert.Equal(t, entry.ID, *f.terme.created[0].LedgerEntryID)
	assert.Equal(t, StepStatusSkipped, result.Steps[2].Status)
}

func TestLedgerService_SubmitContract_AffaireOnCredit(t *testing.T) {
	f := newLedgerFixture()

	result, err := f.service.SubmitContract(context.Background(), testSession(), affaireCreditInput())
	require.NoError(t, err)

	require.NotNil(t, result.CreditID)
	credit := f.credits.credits[*result.CreditID]
	assert.True(t, credit.Principal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, credit.Balance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, credit.Paid.IsZero())
	assert.Equal(t, models.CreditStatusUnpaid, credit.Status)
	assert.Equal(t, "2025-06-15", f.ledger.created[0].PeriodKey)
	require.Len(t, f.affaire.created, 1)
	assert.NotNil(t, f.affaire.created[0].CreditAmount)
}

func TestLedgerService_SubmitContract_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *SubmitContractInput)
		wantErr error
		field   string
	}{
		{
			name:    "zero premium",
			mutate:  func(in *SubmitContractInput) { in.Premium = "0" },
			wantErr: ErrInvalidPremium,
			field:   "premium",
		},
		{
			name:    "negative premium",
			mutate:  func(in *SubmitContractInput) { in.Premium = "-12" },
			wantErr: ErrInvalidPremium,
			field:   "premium",
		},
		{
			name:    "premium not a number",
			mutate:  func(in *SubmitContractInput) { in.Premium = "abc" },
			wantErr: ErrInvalidPremium,
			field:   "premium",
		},
		{
			name:    "installment above premium",
			mutate:  func(in *SubmitContractInput) { in.InstallmentAmount = "1500" },
			wantErr: ErrInvalidInstallment,
			field:   "installment_amount",
		},
		{
			name:    "installment zero",
			mutate:  func(in *SubmitContractInput) { in.InstallmentAmount = "0" },
			wantErr: ErrInvalidInstallment,
			field:   "installment_amount",
		},
		{
			name:    "due date on ledger day",
			mutate:  func(in *SubmitContractInput) { in.DueDate = "2025-06-15" },
			wantErr: ErrInvalidInstallment,
			field:   "due_date",
		},
		{
			name:    "missing due date",
			mutate:  func(in *SubmitContractInput) { in.DueDate = "" },
			wantErr: ErrInvalidInstallment,
			field:   "due_date",
		},
		{
			name:    "unknown branch",
			mutate:  func(in *SubmitContractInput) { in.Branch = "Marine" },
			wantErr: ErrInvalidInput,
			field:   "branch",
		},
		{
			name:    "missing contract number",
			mutate:  func(in *SubmitContractInput) { in.ContractNumber = "  " },
			wantErr: ErrInvalidInput,
			field:   "contract_number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture()
			in := affaireCreditInput()
			tt.mutate(&in)

			result, err := f.service.SubmitContract(context.Background(), testSession(), in)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.Empty(t, f.ledger.created)
		})
	}
}

func TestLedgerService_SubmitContract_TermeRequiresMaturity(t *testing.T) {
	f := newLedgerFixture()
	in := termeInput()
	in.Maturity = ""

	_, err := f.service.SubmitContract(context.Background(), testSession(), in)
	assert.ErrorIs(t, err, ErrInvalidMaturity)
	assert.Empty(t, f.ledger.created)
}

func TestLedgerService_SubmitContract_DuplicateTerme(t *testing.T) {
	f := newLedgerFixture()
	settled := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	f.terme.mockFindByMaturity = func(ctx context.Context, number string, maturity time.Time) (*models.TermeContract, error) {
		if number == "T-100" && maturity.Format(models.DateLayout) == "2025-06-30" {
			return &models.TermeContract{ContractNumber: number, Maturity: maturity, PaymentDate: settled}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}

	result, err := f.service.SubmitContract(context.Background(), testSession(), termeInput())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrDuplicateContract)
	assert.Equal(t, "Le terme T-100 est déjà payé en date du 02/06/2025", err.Error())

	assert.Empty(t, f.ledger.created)
	assert.Empty(t, f.terme.created)
	assert.Empty(t, f.credits.credits)
}

func TestLedgerService_SubmitContract_DuplicateFoundInLedgerOnly(t *testing.T) {
	f := newLedgerFixture()
	f.ledger.mockFindContract = func(ctx context.Context, category, number, periodKey string) (*models.LedgerEntry, error) {
		return &models.LedgerEntry{Category: category, ContractNumber: number, LedgerDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)}, nil
	}

	_, err := f.service.SubmitContract(context.Background(), testSession(), affaireCreditInput())
	assert.ErrorIs(t, err, ErrDuplicateContract)
	assert.Equal(t, "Le contrat A-7 est déjà souscrit en date du 15/06/2025", err.Error())
	assert.Empty(t, f.ledger.created)
}

func TestLedgerService_SubmitContract_UniqueIndexRace(t *testing.T) {
	f := newLedgerFixture()
	f.ledger.mockCreate = func(ctx context.Context, entry *models.LedgerEntry) error {
		return gorm.ErrDuplicatedKey
	}

	_, err := f.service.SubmitContract(context.Background(), testSession(), termeInput())
	assert.ErrorIs(t, err, ErrDuplicateContract)
	assert.Empty(t, f.terme.created)
}

func TestLedgerService_SubmitContract_UniqueIndexRaceReportsWinnerDate(t *testing.T) {
	f := newLedgerFixture()
	lookups := 0
	f.ledger.mockFindContract = func(ctx context.Context, category, number, periodKey string) (*models.LedgerEntry, error) {
		lookups++
		if lookups == 1 {
			return nil, gorm.ErrRecordNotFound
		}
		return &models.LedgerEntry{ID: 4, LedgerDate: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)}, nil
	}
	f.ledger.mockCreate = func(ctx context.Context, entry *models.LedgerEntry) error {
		return gorm.ErrDuplicatedKey
	}

	_, err := f.service.SubmitContract(context.Background(), testSession(), termeInput())

	var dupErr *DuplicateContractError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "14/06/2025", dupErr.SettledOn)
	assert.Equal(t, 2, lookups)
}

func TestLedgerService_SubmitContract_LookupFailure(t *testing.T) {
	f := newLedgerFixture()
	f.ledger.mockFindContract = func(ctx context.Context, category, number, periodKey string) (*models.LedgerEntry, error) {
		return nil, errors.New("connection reset")
	}

	_, err := f.service.SubmitContract(context.Background(), testSession(), termeInput())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateContract)
	assert.Empty(t, f.ledger.created)
}

func TestLedgerService_SubmitContract_PartialFailure(t *testing.T) {
	f := newLedgerFixture()
	f.affaire.mockCreate = func(ctx context.Context, contract *models.AffaireContract) error {
		return errors.New("affaire_contracts: disk full")
	}

	result, err := f.service.SubmitContract(context.Background(), testSession(), affaireCreditInput())
	require.NoError(t, err)

	assert.True(t, result.Partial)
	assert.NotZero(t, result.LedgerEntryID)
	assert.Nil(t, result.DetailID)
	assert.NotNil(t, result.CreditID)
	assert.Len(t, f.ledger.created, 1)
	assert.Equal(t, StepStatusFailed, result.Steps[1].Status)
	assert.Contains(t, result.Message, "échec: Détail affaire non enregistré")
	assert.Contains(t, result.Message, "Crédit enregistré")
}

func TestLedgerService_DeleteContract(t *testing.T) {
	maturity := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	entry := &models.LedgerEntry{ID: 9, Category: models.CategoryTerme, ContractNumber: "T-100", Maturity: &maturity}

	t.Run("cascades to detail", func(t *testing.T) {
		f := newLedgerFixture()
		f.ledger.mockFindByID = func(ctx context.Context, id uint) (*models.LedgerEntry, error) { return entry, nil }
		var detailFor *models.LedgerEntry
		f.terme.mockDeleteForEntry = func(ctx context.Context, e *models.LedgerEntry) error {
			detailFor = e
			return nil
		}

		err := f.service.DeleteContract(context.Background(), 9)
		assert.NoError(t, err)
		require.NotNil(t, detailFor)
		assert.Equal(t, uint(9), detailFor.ID)
	})

	t.Run("detail failure is not reported", func(t *testing.T) {
		f := newLedgerFixture()
		f.ledger.mockFindByID = func(ctx context.Context, id uint) (*models.LedgerEntry, error) { return entry, nil }
		f.terme.mockDeleteForEntry = func(ctx context.Context, e *models.LedgerEntry) error {
			return errors.New("terme_contracts locked")
		}

		assert.NoError(t, f.service.DeleteContract(context.Background(), 9))
	})

	t.Run("cascades to financial detail", func(t *testing.T) {
		for _, category := range []string{models.CategoryDepense, models.CategoryRecette, models.CategoryRistourne, models.CategorySinistre} {
			f := newLedgerFixture()
			row := &models.LedgerEntry{ID: 12, Category: category, ContractNumber: "C-1"}
			f.ledger.mockFindByID = func(ctx context.Context, id uint) (*models.LedgerEntry, error) { return row, nil }

			require.NoError(t, f.service.DeleteContract(context.Background(), 12), category)
			require.Len(t, f.financial.deletedFor, 1, category)
			assert.Equal(t, uint(12), f.financial.deletedFor[0].ID)
			assert.Equal(t, category, f.financial.deletedFor[0].Category)
		}
	})

	t.Run("contract delete leaves financial rows alone", func(t *testing.T) {
		f := newLedgerFixture()
		f.ledger.mockFindByID = func(ctx context.Context, id uint) (*models.LedgerEntry, error) { return entry, nil }

		require.NoError(t, f.service.DeleteContract(context.Background(), 9))
		assert.Empty(t, f.financial.deletedFor)
	})

	t.Run("not found", func(t *testing.T) {
		f := newLedgerFixture()
		err := f.service.DeleteContract(context.Background(), 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1250.5", "1250.5"},
		{"1250,500", "1250.5"},
		{"1 250,750", "1250.75"},
		{"1,250.50", "1250.5"},
		{"1.250,500", "1250.5"},
		{"1,250,000", "1250000"},
		{"2.500.000", "2500000"},
		{" 300", "300"},
	}
	for _, tt := range tests {
		d, err := ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, d.Equal(decimal.RequireFromString(tt.want)), tt.in)
	}

	_, err := ParseAmount("")
	assert.Error(t, err)

	_, err = ParseAmount("1.250,5.0")
	assert.Error(t, err)
}
