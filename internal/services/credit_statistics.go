package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-assurance/internal/models"
)

// dueSoonDays is the horizon of the "due within a week" bucket
const dueSoonDays = 7

var hundred = decimal.NewFromInt(100)

// ComputeCreditStatistics aggregates credits created inside window.
// It reads its input only, so calling it twice on the same credits yields the same result.
//
// ByStatus groups by persisted status. Overdue is derived from the due date so
// that late credits not yet flagged by the scheduled job are still counted.
func ComputeCreditStatistics(credits []models.Credit, window models.DateWindow, today time.Time) models.CreditStatistics {
	today = models.Day(today)
	horizon := today.AddDate(0, 0, dueSoonDays)

	stats := models.CreditStatistics{
		ByStatus:     make(map[string]models.CreditBucket, len(models.CreditStatuses())),
		ByBranch:     make(map[string]models.CreditBucket),
		RecoveryRate: decimal.Zero,
	}
	for _, status := range models.CreditStatuses() {
		stats.ByStatus[status] = models.CreditBucket{}
	}

	for i := range credits {
		c := &credits[i]
		if !window.Contains(c.CreatedAt) {
			continue
		}

		stats.Total.Add(c)

		bucket := stats.ByStatus[c.Status]
		bucket.Add(c)
		stats.ByStatus[c.Status] = bucket

		branch := stats.ByBranch[c.Branch]
		branch.Add(c)
		stats.ByBranch[c.Branch] = branch

		if c.IsSettled() {
			continue
		}
		due := models.CalendarDay(c.DueDate, today.Location())
		if due.Before(today) {
			stats.Overdue.Add(c)
		} else if !due.After(horizon) {
			stats.DueSoon.Add(c)
		}
	}

	if stats.Total.Principal.IsPositive() {
		stats.RecoveryRate = stats.Total.Paid.Div(stats.Total.Principal).Mul(hundred).Round(2)
	}

	return stats
}
