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
)

func TestFinancialService_SignedAmounts(t *testing.T) {
	ledger := &mockLedgerRepo{}
	fin := &mockFinancialRepo{}
	svc := NewFinancialService(ledger, fin)
	ctx := context.Background()
	session := testSession()

	_, err := svc.RecordExpense(ctx, session, ExpenseInput{ExpenseType: "Fournitures", Amount: "35,200"})
	require.NoError(t, err)
	_, err = svc.RecordExceptionalReceipt(ctx, session, ReceiptInput{ReceiptType: "Remboursement", Amount: "80"})
	require.NoError(t, err)
	_, err = svc.RecordRebate(ctx, session, RebateInput{ContractNumber: "T-9", ClientName: "Nadia", Amount: "12", PaymentDate: "2025-06-10"})
	require.NoError(t, err)
	_, err = svc.RecordClaim(ctx, session, ClaimInput{ClaimNumber: "S-1", ClientName: "Karim", Amount: "900", ClaimDate: "2025-06-01"})
	require.NoError(t, err)

	require.Len(t, ledger.created, 4)
	assert.Equal(t, "-35.2", ledger.created[0].Amount.String())
	assert.Equal(t, "80", ledger.created[1].Amount.String())
	assert.Equal(t, "-12", ledger.created[2].Amount.String())
	assert.Equal(t, "-900", ledger.created[3].Amount.String())

	require.Len(t, fin.expenses, 1)
	assert.True(t, fin.expenses[0].Amount.Equal(decimal.RequireFromString("35.2")))
	assert.Equal(t, ledger.created[0].ID, *fin.expenses[0].LedgerEntryID)
}

func TestFinancialService_Duplicates(t *testing.T) {
	t.Run("rebate", func(t *testing.T) {
		fin := &mockFinancialRepo{
			mockFindRebate: func(ctx context.Context, number string, date time.Time, amount decimal.Decimal, client string) (*models.Rebate, error) {
				return &models.Rebate{ContractNumber: number}, nil
			},
		}
		ledger := &mockLedgerRepo{}
		svc := NewFinancialService(ledger, fin)

		_, err := svc.RecordRebate(context.Background(), testSession(), RebateInput{ContractNumber: "T-9", ClientName: "Nadia", Amount: "12", PaymentDate: "2025-06-10"})
		assert.ErrorIs(t, err, ErrDuplicateEntry)
		assert.Empty(t, ledger.created)
	})

	t.Run("claim", func(t *testing.T) {
		fin := &mockFinancialRepo{
			mockFindClaim: func(ctx context.Context, number string) (*models.Claim, error) {
				return &models.Claim{ClaimNumber: number}, nil
			},
		}
		ledger := &mockLedgerRepo{}
		svc := NewFinancialService(ledger, fin)

		_, err := svc.RecordClaim(context.Background(), testSession(), ClaimInput{ClaimNumber: "S-1", ClientName: "Karim", Amount: "900", ClaimDate: "2025-06-01"})
		assert.ErrorIs(t, err, ErrDuplicateEntry)
		assert.Empty(t, ledger.created)
	})
}

func TestFinancialService_DetailFailureKeepsLedgerEntry(t *testing.T) {
	ledger := &mockLedgerRepo{}
	fin := &mockFinancialRepo{mockCreateErr: errors.New("expenses: relation does not exist")}
	svc := NewFinancialService(ledger, fin)

	result, err := svc.RecordExpense(context.Background(), testSession(), ExpenseInput{ExpenseType: "Loyer", Amount: "600"})
	require.NoError(t, err)
	assert.True(t, result.Partial)
	assert.Nil(t, result.DetailID)
	assert.Len(t, ledger.created, 1)
}

func TestFinancialService_Validation(t *testing.T) {
	svc := NewFinancialService(&mockLedgerRepo{}, &mockFinancialRepo{})
	ctx := context.Background()

	_, err := svc.RecordExpense(ctx, testSession(), ExpenseInput{ExpenseType: "Loyer", Amount: "0"})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.RecordExpense(ctx, testSession(), ExpenseInput{Amount: "10"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.RecordClaim(ctx, testSession(), ClaimInput{ClaimNumber: "S-2", ClientName: "Karim", Amount: "10", ClaimDate: "01/06/2025"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ListFinancial(ctx, "bonus", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
