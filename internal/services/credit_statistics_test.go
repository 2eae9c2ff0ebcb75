package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-assurance/internal/models"
	"github.com/stretchr/testify/assert"
)

func statsCredit(branch, status string, principal, paid int64, created, due time.Time) models.Credit {
	c := models.Credit{
		Branch:    branch,
		Status:    status,
		Principal: decimal.NewFromInt(principal),
		Paid:      decimal.NewFromInt(paid),
		CreatedAt: created,
		DueDate:   due,
	}
	c.Recalculate()
	return c
}

func TestComputeCreditStatistics(t *testing.T) {
	today := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	created := today.AddDate(0, 0, -10)

	credits := []models.Credit{
		statsCredit(models.BranchAuto, models.CreditStatusPaid, 1000, 1000, created, today.AddDate(0, 0, -2)),
		statsCredit(models.BranchAuto, models.CreditStatusPartiallyPaid, 1000, 500, created, today.AddDate(0, 0, 3)),
		statsCredit(models.BranchVie, models.CreditStatusUnpaid, 1000, 0, created, today.AddDate(0, 0, -1)),
		statsCredit(models.BranchVie, models.CreditStatusUnpaid, 1000, 1000, created, today.AddDate(0, 0, 30)),
	}

	stats := ComputeCreditStatistics(credits, models.DateWindow{}, today)

	assert.Equal(t, 4, stats.Total.Count)
	assert.True(t, stats.Total.Principal.Equal(decimal.NewFromInt(4000)))
	assert.True(t, stats.Total.Paid.Equal(decimal.NewFromInt(2500)))
	assert.True(t, stats.Total.Balance.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, "62.5", stats.RecoveryRate.String())

	assert.Equal(t, 1, stats.ByStatus[models.CreditStatusPaid].Count)
	assert.Equal(t, 2, stats.ByStatus[models.CreditStatusUnpaid].Count)
	assert.Equal(t, 0, stats.ByStatus[models.CreditStatusOverdue].Count)
	assert.Equal(t, 2, stats.ByBranch[models.BranchAuto].Count)

	assert.Equal(t, 1, stats.Overdue.Count)
	assert.True(t, stats.Overdue.Balance.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 1, stats.DueSoon.Count)
}

func TestComputeCreditStatistics_RecoveryRate(t *testing.T) {
	today := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	credits := []models.Credit{
		statsCredit(models.BranchAuto, models.CreditStatusPartiallyPaid, 400, 300, today, today.AddDate(0, 1, 0)),
	}

	stats := ComputeCreditStatistics(credits, models.DateWindow{}, today)
	assert.Equal(t, "75", stats.RecoveryRate.String())

	again := ComputeCreditStatistics(credits, models.DateWindow{}, today)
	assert.Equal(t, stats, again)
	assert.True(t, credits[0].Paid.Equal(decimal.NewFromInt(300)))
}

func TestComputeCreditStatistics_Window(t *testing.T) {
	today := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	may := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	june := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	credits := []models.Credit{
		statsCredit(models.BranchAuto, models.CreditStatusUnpaid, 100, 0, may, today.AddDate(0, 1, 0)),
		statsCredit(models.BranchAuto, models.CreditStatusUnpaid, 200, 0, june, today.AddDate(0, 1, 0)),
	}

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	stats := ComputeCreditStatistics(credits, models.DateWindow{From: &from}, today)

	assert.Equal(t, 1, stats.Total.Count)
	assert.True(t, stats.Total.Principal.Equal(decimal.NewFromInt(200)))
	assert.True(t, stats.RecoveryRate.IsZero())
}

func TestComputeCreditStatistics_Empty(t *testing.T) {
	stats := ComputeCreditStatistics(nil, models.DateWindow{}, time.Now())

	assert.Zero(t, stats.Total.Count)
	assert.True(t, stats.RecoveryRate.IsZero())
	assert.Len(t, stats.ByStatus, len(models.CreditStatuses()))
}

func TestComputeCreditStatistics_LedgerZone(t *testing.T) {
	tunis := time.FixedZone("CET", 3600)
	west := time.FixedZone("UTC-5", -5*3600)

	t.Run("window bound read in ledger zone", func(t *testing.T) {
		today := time.Date(2025, 6, 20, 0, 0, 0, 0, tunis)
		justAfterMidnight := time.Date(2025, 6, 1, 0, 30, 0, 0, tunis).UTC()
		justBefore := time.Date(2025, 5, 31, 23, 30, 0, 0, tunis).UTC()
		credits := []models.Credit{
			statsCredit(models.BranchAuto, models.CreditStatusUnpaid, 100, 0, justAfterMidnight, today.AddDate(0, 1, 0)),
			statsCredit(models.BranchAuto, models.CreditStatusUnpaid, 200, 0, justBefore, today.AddDate(0, 1, 0)),
		}

		from := time.Date(2025, 6, 1, 0, 0, 0, 0, tunis)
		stats := ComputeCreditStatistics(credits, models.DateWindow{From: &from}, today)

		assert.Equal(t, 1, stats.Total.Count)
		assert.True(t, stats.Total.Principal.Equal(decimal.NewFromInt(100)))
	})

	t.Run("due date column is not shifted", func(t *testing.T) {
		today := time.Date(2025, 6, 20, 9, 0, 0, 0, west)
		dueToday := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
		dueYesterday := time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC)
		credits := []models.Credit{
			statsCredit(models.BranchAuto, models.CreditStatusUnpaid, 100, 0, today, dueToday),
			statsCredit(models.BranchAuto, models.CreditStatusUnpaid, 200, 0, today, dueYesterday),
		}

		stats := ComputeCreditStatistics(credits, models.DateWindow{}, today)

		assert.Equal(t, 1, stats.Overdue.Count)
		assert.True(t, stats.Overdue.Principal.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, 1, stats.DueSoon.Count)
	})
}
