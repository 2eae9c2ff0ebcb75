package models

import (
	"time"
)

// Agent is a back-office user allowed to open a ledger session
type Agent struct {
	Username     string `mapstructure:"username" json:"username"`
	PasswordHash string `mapstructure:"password_hash" json:"-"`
	IsAdmin      bool   `mapstructure:"admin" json:"is_admin"`
}

// Session is the explicit context threaded through every ledger operation.
// It expires at midnight: a session opened on a previous day is stale.
type Session struct {
	Username   string    `json:"username"`
	IsAdmin    bool      `json:"is_admin"`
	LoginAt    time.Time `json:"login_at"`
	LedgerDate time.Time `json:"ledger_date"`
}

// NewSession opens a session for agent at now
func NewSession(agent Agent, now time.Time) Session {
	return Session{
		Username:   agent.Username,
		IsAdmin:    agent.IsAdmin,
		LoginAt:    now,
		LedgerDate: Day(now),
	}
}

// Expired returns true once the calendar day of the login differs from now
func (s Session) Expired(now time.Time) bool {
	return !SameDay(s.LoginAt.In(now.Location()), now)
}

// ExpiresAt returns the next midnight after login
func (s Session) ExpiresAt() time.Time {
	return Day(s.LoginAt).AddDate(0, 0, 1)
}

// LedgerDay returns the ledger date formatted as YYYY-MM-DD
func (s Session) LedgerDay() string {
	return s.LedgerDate.Format(DateLayout)
}
