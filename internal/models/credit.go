package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Credit tracks the installment owed on a contract sold on credit
type Credit struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	LedgerEntryID  *uint           `gorm:"index" json:"ledger_entry_id"`
	Category       string          `gorm:"not null" json:"category"`
	ContractNumber string          `gorm:"not null;index" json:"contract_number"`
	InsuredName    string          `gorm:"not null" json:"insured_name"`
	Branch         string          `gorm:"not null;index" json:"branch"`
	Premium        decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"premium"`
	Principal      decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"principal"`
	Paid           decimal.Decimal `gorm:"type:decimal(15,3);not null;default:0" json:"paid"`
	Balance        decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"balance"`
	Status         string          `gorm:"default:unpaid;not null;index" json:"status"`
	DueDate        time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	PaidDate       *time.Time      `gorm:"type:date" json:"paid_date"`
	CreatedBy      string          `gorm:"not null;index" json:"created_by"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Credit
func (Credit) TableName() string {
	return "credits"
}

// Credit status constants
const (
	CreditStatusUnpaid        = "unpaid"
	CreditStatusPartiallyPaid = "partially_paid"
	CreditStatusPaid          = "paid"
	CreditStatusOverdue       = "overdue"
)

var creditStatusLabels = map[string]string{
	CreditStatusUnpaid:        "Non payé",
	CreditStatusPartiallyPaid: "Partiellement payé",
	CreditStatusPaid:          "Payé",
	CreditStatusOverdue:       "En retard",
}

// CreditStatuses lists every credit status
func CreditStatuses() []string {
	return []string{CreditStatusUnpaid, CreditStatusPartiallyPaid, CreditStatusPaid, CreditStatusOverdue}
}

// IsValidCreditStatus reports whether s is a known credit status
func IsValidCreditStatus(s string) bool {
	_, ok := creditStatusLabels[s]
	return ok
}

// CreditStatusLabel returns the French label for a credit status
func CreditStatusLabel(s string) string {
	if l, ok := creditStatusLabels[s]; ok {
		return l
	}
	return s
}

// Recalculate derives the balance from principal and paid
func (c *Credit) Recalculate() {
	c.Balance = c.Principal.Sub(c.Paid)
}

// IsSettled returns true once the credit is paid in full
func (c *Credit) IsSettled() bool {
	return c.Status == CreditStatusPaid
}

// IsOverdue returns true if the due date is before today and the credit is not settled
func (c *Credit) IsOverdue(today time.Time) bool {
	return !c.IsSettled() && CalendarDay(c.DueDate, today.Location()).Before(Day(today))
}

// MayMarkOverdue returns true if the credit can be flagged as overdue
func (c *Credit) MayMarkOverdue(today time.Time) bool {
	return c.Status == CreditStatusUnpaid && c.IsOverdue(today)
}

// DisplayStatus returns overdue for late unsettled credits, the persisted status otherwise
func (c *Credit) DisplayStatus(today time.Time) string {
	if c.IsOverdue(today) {
		return CreditStatusOverdue
	}
	return c.Status
}

// CreditResponse is the JSON response format for credits
type CreditResponse struct {
	ID             uint            `json:"id"`
	LedgerEntryID  *uint           `json:"ledger_entry_id"`
	Category       string          `json:"category"`
	ContractNumber string          `json:"contract_number"`
	InsuredName    string          `json:"insured_name"`
	Branch         string          `json:"branch"`
	Premium        decimal.Decimal `json:"premium"`
	Principal      decimal.Decimal `json:"principal"`
	Paid           decimal.Decimal `json:"paid"`
	Balance        decimal.Decimal `json:"balance"`
	Status         string          `json:"status"`
	StatusLabel    string          `json:"status_label"`
	DisplayStatus  string          `json:"display_status"`
	DueDate        string          `json:"due_date"`
	PaidDate       *string         `json:"paid_date"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToResponse converts Credit to CreditResponse
func (c *Credit) ToResponse(today time.Time) CreditResponse {
	resp := CreditResponse{
		ID:             c.ID,
		LedgerEntryID:  c.LedgerEntryID,
		Category:       c.Category,
		ContractNumber: c.ContractNumber,
		InsuredName:    c.InsuredName,
		Branch:         c.Branch,
		Premium:        c.Premium,
		Principal:      c.Principal,
		Paid:           c.Paid,
		Balance:        c.Balance,
		Status:         c.Status,
		StatusLabel:    CreditStatusLabel(c.Status),
		DisplayStatus:  c.DisplayStatus(today),
		DueDate:        c.DueDate.Format(DateLayout),
		CreatedBy:      c.CreatedBy,
		CreatedAt:      c.CreatedAt,
	}
	if c.PaidDate != nil {
		s := c.PaidDate.Format(DateLayout)
		resp.PaidDate = &s
	}
	return resp
}
