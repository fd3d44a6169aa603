package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a place money lives: a checking account, a credit card,
// a cash envelope. Type is free-form so users can name their own kinds.
type Account struct {
	CreatedAt   time.Time
	CreditLimit *decimal.Decimal
	ID          string
	Name        string
	Type        string
	Icon        string
	Balance     decimal.Decimal
}

// AvailableCredit returns the remaining credit for accounts with a limit.
// The second return value is false when no credit limit is set.
func (a *Account) AvailableCredit() (decimal.Decimal, bool) {
	if a.CreditLimit == nil {
		return decimal.Zero, false
	}
	// Balance on a credit account is negative while money is owed.
	return a.CreditLimit.Add(a.Balance), true
}
