// Package storage provides the SQLite persistence layer for the application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkovalch/hroshi/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidType      = errors.New("invalid type tag")
	ErrInvalidID        = errors.New("id must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not blank.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures a row identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateTransaction validates a ledger transaction before persisting.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Amount <= 0 {
		return fmt.Errorf("%w: transaction amount %f", ErrInvalidAmount, txn.Amount)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: transaction date", ErrNilParameter)
	}
	if err := validateID(txn.CategoryID, "categoryID"); err != nil {
		return err
	}
	if !txn.Type.Valid() {
		return fmt.Errorf("%w: transaction type %q", ErrInvalidType, txn.Type)
	}
	return nil
}

// validateCreditAccount validates a credit account before persisting.
func validateCreditAccount(account *model.CreditAccount) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if err := validateString(account.Name, "account name"); err != nil {
		return err
	}
	if !account.Type.Valid() {
		return fmt.Errorf("%w: credit type %q", ErrInvalidType, account.Type)
	}
	if account.TotalAmount <= 0 {
		return fmt.Errorf("%w: total amount %f", ErrInvalidAmount, account.TotalAmount)
	}
	if account.RemainingAmount < 0 || account.RemainingAmount > account.TotalAmount {
		return fmt.Errorf("remaining amount %f outside [0, %f]", account.RemainingAmount, account.TotalAmount)
	}
	if account.StartDate.IsZero() {
		return fmt.Errorf("%w: start date", ErrNilParameter)
	}
	return nil
}

// validateCreditPayment validates a credit payment before persisting.
func validateCreditPayment(payment *model.CreditPayment) error {
	if payment == nil {
		return fmt.Errorf("%w: payment", ErrNilParameter)
	}
	if err := validateID(payment.CreditAccountID, "creditAccountID"); err != nil {
		return err
	}
	if payment.Amount <= 0 {
		return fmt.Errorf("%w: payment amount %f", ErrInvalidAmount, payment.Amount)
	}
	if payment.PaymentDate.IsZero() {
		return fmt.Errorf("%w: payment date", ErrNilParameter)
	}
	return nil
}
