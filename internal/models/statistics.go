package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateWindow bounds a selection by calendar day, both ends inclusive and optional
type DateWindow struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Contains reports whether the instant t falls inside the window.
// t is read in the location of the window bounds.
func (w DateWindow) Contains(t time.Time) bool {
	loc := t.Location()
	if w.From != nil {
		loc = w.From.Location()
	} else if w.To != nil {
		loc = w.To.Location()
	}

	day := DayIn(t, loc)
	if w.From != nil && day.Before(CalendarDay(*w.From, loc)) {
		return false
	}
	if w.To != nil && day.After(CalendarDay(*w.To, loc)) {
		return false
	}
	return true
}

// CreditBucket aggregates a group of credits
type CreditBucket struct {
	Count     int             `json:"count"`
	Principal decimal.Decimal `json:"principal"`
	Paid      decimal.Decimal `json:"paid"`
	Balance   decimal.Decimal `json:"balance"`
}

// Add folds c into the bucket
func (b *CreditBucket) Add(c *Credit) {
	b.Count++
	b.Principal = b.Principal.Add(c.Principal)
	b.Paid = b.Paid.Add(c.Paid)
	b.Balance = b.Balance.Add(c.Principal.Sub(c.Paid))
}

// CreditStatistics is the read-only aggregation of a credit portfolio
type CreditStatistics struct {
	Total        CreditBucket            `json:"total"`
	ByStatus     map[string]CreditBucket `json:"by_status"`
	ByBranch     map[string]CreditBucket `json:"by_branch"`
	DueSoon      CreditBucket            `json:"due_within_7_days"`
	Overdue      CreditBucket            `json:"overdue"`
	RecoveryRate decimal.Decimal         `json:"recovery_rate"`
}

// MethodTotal is the amount and row count collected through one payment method
type MethodTotal struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// SessionReport is the end-of-day cash sheet of one agent
type SessionReport struct {
	Day              string                 `json:"day"`
	Username         string                 `json:"username"`
	TotalContracts   int                    `json:"total_contracts"`
	TotalAmount      decimal.Decimal        `json:"total_amount"`
	TotalPremium     decimal.Decimal        `json:"total_premium"`
	TotalCredit      decimal.Decimal        `json:"total_credit"`
	NetPremium       decimal.Decimal        `json:"net_premium"`
	FinancialBalance decimal.Decimal        `json:"financial_balance"`
	ByPaymentMethod  map[string]MethodTotal `json:"by_payment_method"`
	ByPaymentPlan    map[string]int         `json:"by_payment_plan"`
	ByCategory       map[string]int         `json:"by_category"`
	Entries          []LedgerEntry          `json:"entries"`
	GeneratedAt      time.Time              `json:"generated_at"`
}
