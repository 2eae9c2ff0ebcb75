package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/fintera-assurance/internal/models"
)

// Credit events
const (
	EventPayPartial  = "pay_partial"
	EventPayFull     = "pay_full"
	EventMarkOverdue = "mark_overdue"
)

// ErrInvalidTransition is returned when the requested status cannot be reached
var ErrInvalidTransition = errors.New("transition de statut invalide")

// CreditFSM wraps a credit with its state machine
type CreditFSM struct {
	credit *models.Credit
	fsm    *fsm.FSM
}

// NewCreditFSM creates a new credit state machine
func NewCreditFSM(credit *models.Credit) *CreditFSM {
	cfsm := &CreditFSM{
		credit: credit,
	}

	initial := credit.Status
	if initial == "" {
		initial = models.CreditStatusUnpaid
	}

	cfsm.fsm = fsm.NewFSM(
		initial,
		fsm.Events{
			// unpaid/partially_paid/overdue → partially_paid
			{Name: EventPayPartial, Src: []string{models.CreditStatusUnpaid, models.CreditStatusPartiallyPaid, models.CreditStatusOverdue}, Dst: models.CreditStatusPartiallyPaid},

			// unpaid/partially_paid/overdue → paid
			{Name: EventPayFull, Src: []string{models.CreditStatusUnpaid, models.CreditStatusPartiallyPaid, models.CreditStatusOverdue}, Dst: models.CreditStatusPaid},

			// unpaid → overdue
			{Name: EventMarkOverdue, Src: []string{models.CreditStatusUnpaid}, Dst: models.CreditStatusOverdue},
		},
		fsm.Callbacks{},
	)

	return cfsm
}

// PayPartial records that part of the principal has been paid
func (c *CreditFSM) PayPartial(ctx context.Context) error {
	return c.fire(ctx, EventPayPartial)
}

// PayFull settles the credit
func (c *CreditFSM) PayFull(ctx context.Context) error {
	return c.fire(ctx, EventPayFull)
}

// MarkOverdue flags an unpaid credit as late
func (c *CreditFSM) MarkOverdue(ctx context.Context) error {
	return c.fire(ctx, EventMarkOverdue)
}

// TransitionTo fires the event leading to status
func (c *CreditFSM) TransitionTo(ctx context.Context, status string) error {
	switch status {
	case models.CreditStatusPaid:
		return c.PayFull(ctx)
	case models.CreditStatusPartiallyPaid:
		return c.PayPartial(ctx)
	case models.CreditStatusOverdue:
		return c.MarkOverdue(ctx)
	default:
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, c.fsm.Current(), status)
	}
}

func (c *CreditFSM) fire(ctx context.Context, event string) error {
	if err := c.fsm.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			return fmt.Errorf("%w: %s (%s): %v", ErrInvalidTransition, event, c.fsm.Current(), err)
		}
	}

	c.credit.Status = c.fsm.Current()
	return nil
}

// Current returns the current state
func (c *CreditFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *CreditFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
