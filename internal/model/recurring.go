package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring obligation comes due.
type Frequency string

const (
	// FrequencyWeekly repeats every 7 days.
	FrequencyWeekly Frequency = "WEEKLY"
	// FrequencyMonthly repeats every calendar month.
	FrequencyMonthly Frequency = "MONTHLY"
	// FrequencyQuarterly repeats every 3 calendar months.
	FrequencyQuarterly Frequency = "QUARTERLY"
	// FrequencyYearly repeats every calendar year.
	FrequencyYearly Frequency = "YEARLY"
)

// ParseFrequency converts a stored string into a Frequency. A value outside
// the enumerated set is a programming error at the call site, not user input.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return Frequency(s), nil
	default:
		return "", fmt.Errorf("unknown frequency %q", s)
	}
}

// RecurringTransaction is a bill or subscription that comes due on a schedule.
//
// Active is toggled only by explicit user action. NextDueDate advances only
// when the obligation is processed into a ledger transaction.
type RecurringTransaction struct {
	NextDueDate    time.Time
	CreatedAt      time.Time
	ID             string
	Name           string
	AccountID      string
	Type           TransactionType
	Frequency      Frequency
	CategoryID     int
	Amount         decimal.Decimal
	Active         bool
	IsSubscription bool
}
