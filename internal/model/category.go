// Package model defines the core domain types shared across the application.
package model

import "time"

// CategoryType indicates the kind of money flow a category labels.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "INCOME"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "EXPENSE"
	// CategoryTypeCredit represents categories for credit payments.
	CategoryTypeCredit CategoryType = "CREDIT"
)

// Valid reports whether the category type is one of the known values.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense, CategoryTypeCredit:
		return true
	}
	return false
}

// Category labels transactions. The (name, type) pair is unique,
// case-insensitively.
type Category struct {
	CreatedAt time.Time
	Name      string
	Type      CategoryType
	ID        int64
}
