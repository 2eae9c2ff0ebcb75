package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Ledger         LedgerRepository
	Terme          TermeRepository
	Affaire        AffaireRepository
	Credit         CreditRepository
	Financial      FinancialRepository
	TermeReference TermeReferenceRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Ledger:         NewLedgerRepository(db),
		Terme:          NewTermeRepository(db),
		Affaire:        NewAffaireRepository(db),
		Credit:         NewCreditRepository(db),
		Financial:      NewFinancialRepository(db),
		TermeReference: NewTermeReferenceRepository(db),
	}
}
