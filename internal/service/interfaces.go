// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/mkovalch/hroshi/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoriesByType(ctx context.Context, categoryType model.CategoryType) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByNameAndType(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error)
	CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) error
	DeleteCategory(ctx context.Context, id int64) error
	CountTransactionsByCategory(ctx context.Context, categoryID int64) (int, error)

	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) (int64, error)
	GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetTransactionsByRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	SumIncomeByRange(ctx context.Context, start, end time.Time) (float64, error)
	SumExpensesByRange(ctx context.Context, start, end time.Time) (float64, error)
	FindCreditPaymentTransaction(ctx context.Context, amount float64, paymentDate time.Time, note string) (*model.Transaction, error)

	// Credit account operations
	CreateCreditAccount(ctx context.Context, account *model.CreditAccount) (int64, error)
	GetCreditAccountByID(ctx context.Context, id int64) (*model.CreditAccount, error)
	GetCreditAccounts(ctx context.Context) ([]model.CreditAccount, error)
	GetActiveCreditAccounts(ctx context.Context) ([]model.CreditAccount, error)
	UpdateCreditAccount(ctx context.Context, account *model.CreditAccount) error
	DeleteCreditAccount(ctx context.Context, id int64) error
	GetTotalDebt(ctx context.Context) (float64, error)
	GetDueCreditAccounts(ctx context.Context, until time.Time) ([]model.CreditAccount, error)

	// Credit payment operations
	CreateCreditPayment(ctx context.Context, payment *model.CreditPayment) (int64, error)
	GetCreditPayments(ctx context.Context, creditID int64) ([]model.CreditPayment, error)
	GetLatestCreditPayment(ctx context.Context, creditID int64) (*model.CreditPayment, error)
	DeleteCreditPayment(ctx context.Context, id int64) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction. All statements issued
// through it commit or roll back together.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// Notifier receives invalidation signals after committed writes. Table
// names identify which live queries must re-emit.
type Notifier interface {
	Invalidate(tables ...string)
}

// MonthSummary aggregates one month of ledger activity.
type MonthSummary struct {
	Start   time.Time
	End     time.Time
	Income  float64
	Spent   float64 // expenses plus credit payments
}

// Net returns income minus spending for the month.
func (s MonthSummary) Net() float64 {
	return s.Income - s.Spent
}

// DebtSummary aggregates outstanding credit obligations.
type DebtSummary struct {
	TotalRemaining float64
	ActiveAccounts int
}
