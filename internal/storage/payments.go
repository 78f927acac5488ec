package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkovalch/hroshi/internal/common"
	"github.com/mkovalch/hroshi/internal/model"
)

const creditPaymentColumns = "id, credit_account_id, amount, payment_date"

func scanCreditPayment(row interface{ Scan(...any) error }) (*model.CreditPayment, error) {
	var payment model.CreditPayment
	if err := row.Scan(&payment.ID, &payment.CreditAccountID, &payment.Amount, &payment.PaymentDate); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *SQLiteStorage) createCreditPayment(ctx context.Context, q dbtx, payment *model.CreditPayment) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO credit_payments (credit_account_id, amount, payment_date) VALUES (?, ?, ?)`,
		payment.CreditAccountID, payment.Amount, payment.PaymentDate)
	if err != nil {
		return 0, fmt.Errorf("failed to insert credit payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get credit payment ID: %w", err)
	}

	slog.Debug("inserted credit payment",
		"id", id,
		"credit_account_id", payment.CreditAccountID,
		"amount", payment.Amount)
	return id, nil
}

func (s *SQLiteStorage) getCreditPayments(ctx context.Context, q dbtx, creditID int64) ([]model.CreditPayment, error) {
	query := `
		SELECT ` + creditPaymentColumns + `
		FROM credit_payments
		WHERE credit_account_id = ?
		ORDER BY payment_date DESC, id DESC`

	rows, err := q.QueryContext(ctx, query, creditID)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit payments: %w", err)
	}
	defer rows.Close()

	var payments []model.CreditPayment
	for rows.Next() {
		payment, err := scanCreditPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credit payment: %w", err)
		}
		payments = append(payments, *payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credit payments: %w", err)
	}

	return payments, nil
}

func (s *SQLiteStorage) getLatestCreditPayment(ctx context.Context, q dbtx, creditID int64) (*model.CreditPayment, error) {
	// Most recent by payment date, id breaks ties.
	query := `
		SELECT ` + creditPaymentColumns + `
		FROM credit_payments
		WHERE credit_account_id = ?
		ORDER BY payment_date DESC, id DESC
		LIMIT 1`

	payment, err := scanCreditPayment(q.QueryRowContext(ctx, query, creditID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No payments recorded
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest credit payment: %w", err)
	}

	return payment, nil
}

func (s *SQLiteStorage) deleteCreditPayment(ctx context.Context, q dbtx, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM credit_payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete credit payment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: credit payment %d", common.ErrNotFound, id)
	}
	return nil
}

// CreateCreditPayment inserts a payment row and returns its id.
func (s *SQLiteStorage) CreateCreditPayment(ctx context.Context, payment *model.CreditPayment) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateCreditPayment(payment); err != nil {
		return 0, err
	}
	id, err := s.createCreditPayment(ctx, s.db, payment)
	if err != nil {
		return 0, err
	}
	s.notify(TableCreditPayments)
	return id, nil
}

// GetCreditPayments returns all payments for an account, newest first.
func (s *SQLiteStorage) GetCreditPayments(ctx context.Context, creditID int64) ([]model.CreditPayment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(creditID, "creditID"); err != nil {
		return nil, err
	}
	return s.getCreditPayments(ctx, s.db, creditID)
}

// GetLatestCreditPayment returns the most recent payment for an account,
// or nil when the account has none.
func (s *SQLiteStorage) GetLatestCreditPayment(ctx context.Context, creditID int64) (*model.CreditPayment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(creditID, "creditID"); err != nil {
		return nil, err
	}
	return s.getLatestCreditPayment(ctx, s.db, creditID)
}

// DeleteCreditPayment removes a payment row by id.
func (s *SQLiteStorage) DeleteCreditPayment(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := s.deleteCreditPayment(ctx, s.db, id); err != nil {
		return err
	}
	s.notify(TableCreditPayments)
	return nil
}

// Transaction-scoped implementations.

func (t *sqliteTransaction) CreateCreditPayment(ctx context.Context, payment *model.CreditPayment) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateCreditPayment(payment); err != nil {
		return 0, err
	}
	id, err := t.storage.createCreditPayment(ctx, t.tx, payment)
	if err != nil {
		return 0, err
	}
	t.mark(TableCreditPayments)
	return id, nil
}

func (t *sqliteTransaction) GetCreditPayments(ctx context.Context, creditID int64) ([]model.CreditPayment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(creditID, "creditID"); err != nil {
		return nil, err
	}
	return t.storage.getCreditPayments(ctx, t.tx, creditID)
}

func (t *sqliteTransaction) GetLatestCreditPayment(ctx context.Context, creditID int64) (*model.CreditPayment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(creditID, "creditID"); err != nil {
		return nil, err
	}
	return t.storage.getLatestCreditPayment(ctx, t.tx, creditID)
}

func (t *sqliteTransaction) DeleteCreditPayment(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := t.storage.deleteCreditPayment(ctx, t.tx, id); err != nil {
		return err
	}
	t.mark(TableCreditPayments)
	return nil
}
