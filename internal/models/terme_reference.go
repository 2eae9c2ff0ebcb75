package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TermeReference is one row of a monthly terme schedule imported from the insurer
type TermeReference struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Month          int             `gorm:"not null;index:idx_terme_ref_period" json:"month"`
	Year           int             `gorm:"not null;index:idx_terme_ref_period" json:"year"`
	ContractNumber string          `gorm:"not null;index" json:"contract_number"`
	Premium        decimal.Decimal `gorm:"type:decimal(15,3);not null" json:"premium"`
	Maturity       time.Time       `gorm:"type:date;not null" json:"maturity"`
	InsuredName    string          `gorm:"not null" json:"insured_name"`
	ImportedBy     string          `json:"imported_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TableName specifies the table name for TermeReference
func (TermeReference) TableName() string {
	return "terme_references"
}

// TermeMonth summarizes an imported month
type TermeMonth struct {
	Month int    `json:"month"`
	Year  int    `json:"year"`
	Label string `json:"label"`
	Rows  int64  `gorm:"column:row_count" json:"rows"`
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// MonthLabel returns the French month name, or an empty string when month is out of range
func MonthLabel(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return frenchMonths[month-1]
}
