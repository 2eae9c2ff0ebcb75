package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Financial entry kinds as addressed by the API
const (
	FinancialKindExpense = "depense"
	FinancialKindReceipt = "recette"
	FinancialKindRebate  = "ristourne"
	FinancialKindClaim   = "sinistre"
)

// Expense is an outgoing cash movement (dépense)
type Expense struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	LedgerEntryID *uint           `gorm:"index" json:"ledger_entry_id"`
	ExpenseType   string          `gorm:"not null" json:"expense_type"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"amount"`
	Description   *string         `gorm:"type:text" json:"description,omitempty"`
	LedgerDate    time.Time       `gorm:"type:date;not null;index" json:"ledger_date"`
	CreatedBy     string          `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName specifies the table name for Expense
func (Expense) TableName() string {
	return "expenses"
}

// ExceptionalReceipt is an incoming movement outside contract intake (recette exceptionnelle)
type ExceptionalReceipt struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	LedgerEntryID *uint           `gorm:"index" json:"ledger_entry_id"`
	ReceiptType   string          `gorm:"not null" json:"receipt_type"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"amount"`
	Description   *string         `gorm:"type:text" json:"description,omitempty"`
	LedgerDate    time.Time       `gorm:"type:date;not null;index" json:"ledger_date"`
	CreatedBy     string          `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName specifies the table name for ExceptionalReceipt
func (ExceptionalReceipt) TableName() string {
	return "exceptional_receipts"
}

// Rebate is a premium refund paid back to a client (ristourne)
type Rebate struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	LedgerEntryID  *uint           `gorm:"index" json:"ledger_entry_id"`
	ContractNumber string          `gorm:"not null;index" json:"contract_number"`
	ClientName     string          `gorm:"not null" json:"client_name"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"amount"`
	PaymentDate    time.Time       `gorm:"type:date;not null" json:"payment_date"`
	LedgerDate     time.Time       `gorm:"type:date;not null;index" json:"ledger_date"`
	CreatedBy      string          `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TableName specifies the table name for Rebate
func (Rebate) TableName() string {
	return "rebates"
}

// Claim is a settled insurance claim (sinistre)
type Claim struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	LedgerEntryID *uint           `gorm:"index" json:"ledger_entry_id"`
	ClaimNumber   string          `gorm:"not null;uniqueIndex" json:"claim_number"`
	ClientName    string          `gorm:"not null" json:"client_name"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"amount"`
	ClaimDate     time.Time       `gorm:"type:date;not null" json:"claim_date"`
	LedgerDate    time.Time       `gorm:"type:date;not null;index" json:"ledger_date"`
	CreatedBy     string          `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName specifies the table name for Claim
func (Claim) TableName() string {
	return "claims"
}

// SignedAmount returns the ledger amount for a financial category: negative for outflows
func SignedAmount(category string, amount decimal.Decimal) decimal.Decimal {
	switch category {
	case CategoryDepense, CategoryRistourne, CategorySinistre:
		return amount.Abs().Neg()
	default:
		return amount.Abs()
	}
}
