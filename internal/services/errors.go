package services

import (
	"errors"
	"fmt"

	"github.com/sjperalta/fintera-assurance/internal/statemachine"
)

// Common service errors
var (
	ErrNotFound           = errors.New("enregistrement introuvable")
	ErrInvalidPremium     = errors.New("la prime doit être un montant positif")
	ErrInvalidInstallment = errors.New("le montant du crédit doit être positif, ne pas dépasser la prime et avoir une date de paiement future")
	ErrInvalidAmount      = errors.New("le montant doit être positif")
	ErrInvalidMaturity    = errors.New("l'échéance est obligatoire pour un contrat Terme")
	ErrInvalidInput       = errors.New("données invalides")
	ErrDuplicateContract  = errors.New("contrat déjà enregistré")
	ErrDuplicateEntry     = errors.New("opération déjà enregistrée")
	ErrOverpayment        = errors.New("le paiement dépasse le solde restant")
	ErrInvalidTransition  = statemachine.ErrInvalidTransition
	ErrUnauthorized       = errors.New("identifiants invalides")
	ErrSessionExpired     = errors.New("session expirée, veuillez vous reconnecter")
	ErrForbidden          = errors.New("accès réservé à l'administrateur")
	ErrLockNotObtained    = errors.New("une saisie identique est en cours, réessayez")
)

// DuplicateContractError carries the date the contract was already settled
type DuplicateContractError struct {
	Category       string
	ContractNumber string
	SettledOn      string
}

func (e *DuplicateContractError) Error() string {
	if e.Category == "terme" {
		return fmt.Sprintf("Le terme %s est déjà payé en date du %s", e.ContractNumber, e.SettledOn)
	}
	return fmt.Sprintf("Le contrat %s est déjà souscrit en date du %s", e.ContractNumber, e.SettledOn)
}

// Is lets errors.Is(err, ErrDuplicateContract) match
func (e *DuplicateContractError) Is(target error) bool {
	return target == ErrDuplicateContract
}

// ValidationError wraps a sentinel with the offending field
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a client-side validation failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidPremium) ||
		errors.Is(err, ErrInvalidInstallment) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidMaturity) ||
		errors.Is(err, ErrInvalidInput)
}
