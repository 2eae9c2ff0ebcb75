package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DateLayout is the day format used for ledger dates, maturities and period keys
const DateLayout = "2006-01-02"

// LedgerEntry is the canonical record of every submission (contracts and financial movements)
type LedgerEntry struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	Category       string           `gorm:"not null;index" json:"category"`
	Branch         string           `json:"branch"`
	ContractNumber string           `gorm:"index" json:"contract_number"`
	PeriodKey      string           `gorm:"index" json:"period_key"` // maturity for terme, ledger day for affaire
	Premium        decimal.Decimal  `gorm:"type:decimal(15,3);not null;default:0" json:"premium"`
	Amount         decimal.Decimal  `gorm:"type:decimal(15,3);not null" json:"amount"`
	InsuredName    string           `json:"insured_name"`
	PaymentMethod  string           `json:"payment_method"`
	PaymentPlan    string           `json:"payment_plan"`
	CreditAmount   *decimal.Decimal `gorm:"type:decimal(15,3)" json:"credit_amount,omitempty"`
	DueDate        *time.Time       `gorm:"type:date" json:"due_date,omitempty"`
	Maturity       *time.Time       `gorm:"type:date" json:"maturity,omitempty"`
	Description    *string          `gorm:"type:text" json:"description,omitempty"`
	LedgerDate     time.Time        `gorm:"type:date;not null;index" json:"ledger_date"`
	CreatedBy      string           `gorm:"not null;index" json:"created_by"`
	CreatedAt      time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// TableName specifies the table name for LedgerEntry
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// BeforeCreate keeps amount == premium for contract rows at insert time
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if IsContractCategory(e.Category) {
		e.Amount = e.Premium
	}
	return nil
}

// Category constants
const (
	CategoryTerme     = "terme"
	CategoryAffaire   = "affaire"
	CategoryDepense   = "depense"
	CategoryRecette   = "recette_exceptionnelle"
	CategoryRistourne = "ristourne"
	CategorySinistre  = "sinistre"
)

// Branch constants
const (
	BranchAuto  = "Auto"
	BranchVie   = "Vie"
	BranchSante = "Santé"
	BranchIRDS  = "IRDS"
)

// Payment method constants
const (
	PaymentMethodCash  = "espece"
	PaymentMethodCheck = "cheque"
	PaymentMethodCard  = "carte_bancaire"
)

// Payment plan constants
const (
	PaymentPlanCash   = "comptant"
	PaymentPlanCredit = "credit"
)

var categoryLabels = map[string]string{
	CategoryTerme:     "Terme",
	CategoryAffaire:   "Affaire",
	CategoryDepense:   "Dépense",
	CategoryRecette:   "Recette exceptionnelle",
	CategoryRistourne: "Ristourne",
	CategorySinistre:  "Sinistre",
}

var paymentMethodLabels = map[string]string{
	PaymentMethodCash:  "Espèce",
	PaymentMethodCheck: "Chèque",
	PaymentMethodCard:  "Carte Bancaire",
}

var paymentPlanLabels = map[string]string{
	PaymentPlanCash:   "Au comptant",
	PaymentPlanCredit: "Crédit",
}

// Branches lists the accepted insurance branches
func Branches() []string {
	return []string{BranchAuto, BranchVie, BranchSante, BranchIRDS}
}

// PaymentMethods lists the accepted payment methods in display order
func PaymentMethods() []string {
	return []string{PaymentMethodCash, PaymentMethodCheck, PaymentMethodCard}
}

// IsContractCategory reports whether category is a contract intake category
func IsContractCategory(category string) bool {
	return category == CategoryTerme || category == CategoryAffaire
}

// CategoryLabel returns the French label for a category
func CategoryLabel(category string) string {
	if l, ok := categoryLabels[category]; ok {
		return l
	}
	return category
}

// PaymentMethodLabel returns the French label for a payment method
func PaymentMethodLabel(method string) string {
	if l, ok := paymentMethodLabels[method]; ok {
		return l
	}
	return method
}

// PaymentPlanLabel returns the French label for a payment plan
func PaymentPlanLabel(plan string) string {
	if l, ok := paymentPlanLabels[plan]; ok {
		return l
	}
	return plan
}

// Day truncates t to midnight in its own location
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayIn returns the calendar day of the instant t as seen in loc
func DayIn(t time.Time, loc *time.Location) time.Time {
	return Day(t.In(loc))
}

// CalendarDay keeps the calendar date of t and places it at midnight in loc.
// DATE columns come back at UTC midnight and must not be shifted by a zone conversion.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
