// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/calyptra/centsible/internal/model"
)

// TransactionFilter defines filtering options for ledger queries.
// InvolvingAccount matches transactions where the account is either the
// source or the transfer destination.
type TransactionFilter struct {
	StartDate        *time.Time
	EndDate          *time.Time
	CategoryID       *int
	Type             *model.TransactionType
	InvolvingAccount string
	Limit            int
	Offset           int
}

// TxStore holds the operations usable both directly and inside a database
// transaction. The balance synchronization and recurring processing rules run
// entirely against this interface so a single commit covers a row mutation
// and its balance effect.
type TxStore interface {
	// Account operations
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error
	AdjustAccountBalance(ctx context.Context, id string, delta decimal.Decimal) error

	// Ledger operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Recurring schedule position
	GetRecurring(ctx context.Context, id string) (*model.RecurringTransaction, error)
	SetRecurringNextDue(ctx context.Context, id string, due time.Time) error
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	TxStore

	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	ListAccounts(ctx context.Context) ([]model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	DeleteAccount(ctx context.Context, id string) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*model.Category, error)
	CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int, name, description string) error
	DeleteCategory(ctx context.Context, id int) error

	// Budget operations
	GetOrCreateBudget(ctx context.Context, month, year int) (*model.Budget, error)
	SetBudgetCategory(ctx context.Context, entry *model.BudgetCategory) error
	GetBudgetEntries(ctx context.Context, month, year int) ([]model.BudgetEntry, error)

	// Recurring operations
	CreateRecurring(ctx context.Context, obligation *model.RecurringTransaction) error
	ListRecurring(ctx context.Context, onlyActive bool) ([]model.RecurringTransaction, error)
	UpdateRecurring(ctx context.Context, obligation *model.RecurringTransaction) error
	SetRecurringActive(ctx context.Context, id string, active bool) error
	DeleteRecurring(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction. The mutation hooks of the
// balance rule run against it so the row change and the balance change
// commit together.
type Transaction interface {
	Commit() error
	Rollback() error
	TxStore
}
