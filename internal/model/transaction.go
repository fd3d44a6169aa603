package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType describes the direction of money movement for a transaction.
type TransactionType string

const (
	// TypeIncome credits the source account.
	TypeIncome TransactionType = "INCOME"
	// TypeExpense debits the source account.
	TypeExpense TransactionType = "EXPENSE"
	// TypeTransfer moves money from the source account to the destination account.
	TypeTransfer TransactionType = "TRANSFER"
)

// ParseTransactionType converts a stored string into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TypeIncome, TypeExpense, TypeTransfer:
		return TransactionType(s), nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is a single ledger entry.
//
// CategoryID is required for income and expense transactions and must be nil
// for transfers; ToAccountID is required for transfers and must be nil
// otherwise. Amount is always non-negative: the type carries the sign.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	CategoryID  *int
	ToAccountID *string
	ID          string
	Description string
	AccountID   string
	Type        TransactionType
	Amount      decimal.Decimal
}

// IsTransfer reports whether the transaction moves money between two accounts.
func (t *Transaction) IsTransfer() bool {
	return t.Type == TypeTransfer
}

// NewID returns a random 128-bit hex identifier for ledger entities.
func NewID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return hex.EncodeToString(b[:])
}
