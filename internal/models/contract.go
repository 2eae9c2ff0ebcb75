package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TermeContract is the detail record of a renewal premium settled against a maturity
type TermeContract struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	LedgerEntryID  *uint           `gorm:"index" json:"ledger_entry_id"`
	ContractNumber string          `gorm:"not null;index" json:"contract_number"`
	Premium        decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"premium"`
	InsuredName    string          `gorm:"not null" json:"insured_name"`
	Branch         string          `gorm:"not null" json:"branch"`
	Maturity       time.Time       `gorm:"type:date;not null;index" json:"maturity"`
	PaymentDate    time.Time       `gorm:"type:date;not null" json:"payment_date"`
	CreatedBy      string          `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TableName specifies the table name for TermeContract
func (TermeContract) TableName() string {
	return "terme_contracts"
}

// AffaireContract is the detail record of a new business contract
type AffaireContract struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	LedgerEntryID  *uint            `gorm:"index" json:"ledger_entry_id"`
	ContractNumber string           `gorm:"not null;index" json:"contract_number"`
	Premium        decimal.Decimal  `gorm:"type:decimal(15,3);not null" json:"premium"`
	InsuredName    string           `gorm:"not null" json:"insured_name"`
	Branch         string           `gorm:"not null" json:"branch"`
	PaymentMethod  string           `gorm:"not null" json:"payment_method"`
	PaymentPlan    string           `gorm:"not null" json:"payment_plan"`
	CreditAmount   *decimal.Decimal `gorm:"type:decimal(15,3)" json:"credit_amount,omitempty"`
	PaymentDate    *time.Time       `gorm:"type:date" json:"payment_date,omitempty"`
	LedgerDate     time.Time        `gorm:"type:date;not null;index" json:"ledger_date"`
	CreatedBy      string           `gorm:"not null" json:"created_by"`
	CreatedAt      time.Time        `json:"created_at"`
}

// TableName specifies the table name for AffaireContract
func (AffaireContract) TableName() string {
	return "affaire_contracts"
}
