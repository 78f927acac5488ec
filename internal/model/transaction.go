package model

import "time"

// TransactionType indicates how a transaction affects the ledger.
type TransactionType string

const (
	// TransactionTypeIncome represents money received.
	TransactionTypeIncome TransactionType = "INCOME"
	// TransactionTypeExpense represents money spent.
	TransactionTypeExpense TransactionType = "EXPENSE"
	// TransactionTypeCreditPayment represents an expense mirrored from a
	// credit account payment.
	TransactionTypeCreditPayment TransactionType = "CREDIT_PAYMENT"
)

// Valid reports whether the transaction type is one of the known values.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeCreditPayment:
		return true
	}
	return false
}

// Transaction represents a single ledger entry. Rows of type
// CREDIT_PAYMENT are synthesized by the ledger engine; the rest come from
// user entry or statement import.
type Transaction struct {
	Date       time.Time
	Note       string
	Type       TransactionType
	ID         int64
	CategoryID int64
	Amount     float64
}
