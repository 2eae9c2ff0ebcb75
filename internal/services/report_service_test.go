package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/sjperalta/fintera-assurance/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReportService_CreditStatementHTML(t *testing.T) {
	late := unpaidCredit(1, 800)
	late.ContractNumber = "A-42"
	late.InsuredName = "Youssef Hamdi"
	late.DueDate = creditToday.AddDate(0, 0, -4)
	late.CreatedAt = creditToday.AddDate(0, 0, -30)

	partial := unpaidCredit(2, 400)
	partial.Paid = dec("300")
	partial.Status = models.CreditStatusPartiallyPaid
	partial.Recalculate()
	partial.CreatedAt = creditToday.AddDate(0, 0, -2)

	svc := NewReportService(newMockCreditRepo(late, partial), time.UTC)
	svc.now = func() time.Time { return creditToday.Add(9 * time.Hour) }

	html, err := svc.CreditStatementHTML(context.Background(), repository.NewListQuery(), models.DateWindow{})
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "A-42")
	assert.Contains(t, out, "Youssef Hamdi")
	assert.Contains(t, out, `class="overdue">En retard`)
	assert.Contains(t, out, "800.000")
	assert.Contains(t, out, "25 %")
	assert.Contains(t, out, "Généré le 20/06/2025 09:00")
}

func TestReportService_CreditStatementHTML_Window(t *testing.T) {
	old := unpaidCredit(1, 100)
	old.ContractNumber = "OLD-1"
	old.CreatedAt = time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	recent := unpaidCredit(2, 100)
	recent.ContractNumber = "NEW-2"
	recent.CreatedAt = time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

	svc := NewReportService(newMockCreditRepo(old, recent), time.UTC)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	html, err := svc.CreditStatementHTML(context.Background(), repository.NewListQuery(), models.DateWindow{From: &from})
	require.NoError(t, err)
	assert.Contains(t, string(html), "NEW-2")
	assert.NotContains(t, string(html), "OLD-1")
	assert.Contains(t, string(html), "à partir du 01/06/2025")
}

func TestExportService_LedgerXLSX(t *testing.T) {
	created := time.Date(2025, 6, 15, 10, 12, 0, 0, time.UTC)
	ledger := &mockLedgerRepo{
		mockList: func(ctx context.Context, query *repository.ListQuery) ([]models.LedgerEntry, int64, error) {
			assert.Equal(t, 1, query.Page)
			assert.Equal(t, exportLimit, query.PerPage)
			assert.Equal(t, models.CategoryTerme, query.Filters["category"])
			return []models.LedgerEntry{
				{ID: 7, Category: models.CategoryTerme, Branch: models.BranchAuto, ContractNumber: "T-100", Premium: dec("450.5"), Amount: dec("450.5"), InsuredName: "Sami Ben Ali", PaymentMethod: models.PaymentMethodCash, PaymentPlan: models.PaymentPlanCash, CreatedBy: "amel", CreatedAt: created},
			}, 1, nil
		},
	}
	svc := NewExportService(ledger, time.UTC)

	query := repository.NewListQuery()
	query.Page = 3
	query.Filters["category"] = models.CategoryTerme

	data, filename, err := svc.LedgerXLSX(context.Background(), query)
	require.NoError(t, err)
	assert.Contains(t, filename, "contrats_")
	assert.Equal(t, 3, query.Page)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Contrats")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ledgerExportHeaders, rows[0])
	assert.Equal(t, "T-100", rows[1][3])
	assert.Equal(t, "Sami Ben Ali", rows[1][5])
	assert.Equal(t, "15/06/2025 10:12", rows[1][9])
}
