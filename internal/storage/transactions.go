package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkovalch/hroshi/internal/common"
	"github.com/mkovalch/hroshi/internal/model"
)

const transactionColumns = "id, amount, date, category_id, type, note"

func scanTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	var txn model.Transaction
	var note sql.NullString
	if err := row.Scan(&txn.ID, &txn.Amount, &txn.Date, &txn.CategoryID, &txn.Type, &note); err != nil {
		return nil, err
	}
	txn.Note = note.String
	return &txn, nil
}

func noteParam(note string) any {
	if note == "" {
		return nil
	}
	return note
}

func (s *SQLiteStorage) createTransaction(ctx context.Context, q dbtx, txn *model.Transaction) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO transactions (amount, date, category_id, type, note) VALUES (?, ?, ?, ?, ?)`,
		txn.Amount, txn.Date, txn.CategoryID, txn.Type, noteParam(txn.Note))
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction ID: %w", err)
	}

	slog.Debug("inserted transaction", "id", id, "type", txn.Type, "amount", txn.Amount)
	return id, nil
}

func (s *SQLiteStorage) getTransactionByID(ctx context.Context, q dbtx, id int64) (*model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = ?`

	txn, err := scanTransaction(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Transaction not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}

	return txn, nil
}

func (s *SQLiteStorage) getTransactionsByRange(ctx context.Context, q dbtx, start, end time.Time) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE date BETWEEN ? AND ?
		ORDER BY date DESC`

	rows, err := q.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func (s *SQLiteStorage) deleteTransaction(ctx context.Context, q dbtx, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStorage) sumIncomeByRange(ctx context.Context, q dbtx, start, end time.Time) (float64, error) {
	var sum float64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE type = ? AND date BETWEEN ? AND ?`,
		model.TransactionTypeIncome, start, end).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum income: %w", err)
	}
	return sum, nil
}

func (s *SQLiteStorage) sumExpensesByRange(ctx context.Context, q dbtx, start, end time.Time) (float64, error) {
	// Credit payments count as spending alongside plain expenses.
	var sum float64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE (type = ? OR type = ?) AND date BETWEEN ? AND ?`,
		model.TransactionTypeExpense, model.TransactionTypeCreditPayment, start, end).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return sum, nil
}

func (s *SQLiteStorage) findCreditPaymentTransaction(ctx context.Context, q dbtx, amount float64, paymentDate time.Time, note string) (*model.Transaction, error) {
	// Mirror rows carry no foreign key to the credit payment; they are
	// correlated by exact (amount, date, note) value match. Newest row
	// wins when several match.
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE type = ?
		  AND amount = ?
		  AND date = ?
		  AND note = ?
		ORDER BY id DESC
		LIMIT 1`

	txn, err := scanTransaction(q.QueryRowContext(ctx, query,
		model.TransactionTypeCreditPayment, amount, paymentDate, note))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No matching mirror transaction
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mirror transaction: %w", err)
	}

	return txn, nil
}

// CreateTransaction inserts a ledger transaction and returns its id.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn); err != nil {
		return 0, err
	}
	id, err := s.createTransaction(ctx, s.db, txn)
	if err != nil {
		return 0, err
	}
	s.notify(TableTransactions)
	return id, nil
}

// GetTransactionByID returns the transaction with the given id, or nil if absent.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getTransactionByID(ctx, s.db, id)
}

// GetTransactionsByRange returns transactions between start and end
// inclusive, newest first.
func (s *SQLiteStorage) GetTransactionsByRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return s.getTransactionsByRange(ctx, s.db, start, end)
}

// DeleteTransaction removes a transaction by id.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := s.deleteTransaction(ctx, s.db, id); err != nil {
		return err
	}
	s.notify(TableTransactions)
	return nil
}

// SumIncomeByRange returns the total INCOME amount in the range.
func (s *SQLiteStorage) SumIncomeByRange(ctx context.Context, start, end time.Time) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return s.sumIncomeByRange(ctx, s.db, start, end)
}

// SumExpensesByRange returns the total EXPENSE plus CREDIT_PAYMENT amount
// in the range.
func (s *SQLiteStorage) SumExpensesByRange(ctx context.Context, start, end time.Time) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return s.sumExpensesByRange(ctx, s.db, start, end)
}

// FindCreditPaymentTransaction locates the newest mirror transaction
// matching (amount, date, note), or nil when none matches.
func (s *SQLiteStorage) FindCreditPaymentTransaction(ctx context.Context, amount float64, paymentDate time.Time, note string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(note, "note"); err != nil {
		return nil, err
	}
	return s.findCreditPaymentTransaction(ctx, s.db, amount, paymentDate, note)
}

// Transaction-scoped implementations.

func (t *sqliteTransaction) CreateTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn); err != nil {
		return 0, err
	}
	id, err := t.storage.createTransaction(ctx, t.tx, txn)
	if err != nil {
		return 0, err
	}
	t.mark(TableTransactions)
	return id, nil
}

func (t *sqliteTransaction) GetTransactionByID(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getTransactionByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTransactionsByRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	return t.storage.getTransactionsByRange(ctx, t.tx, start, end)
}

func (t *sqliteTransaction) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := t.storage.deleteTransaction(ctx, t.tx, id); err != nil {
		return err
	}
	t.mark(TableTransactions)
	return nil
}

func (t *sqliteTransaction) SumIncomeByRange(ctx context.Context, start, end time.Time) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return t.storage.sumIncomeByRange(ctx, t.tx, start, end)
}

func (t *sqliteTransaction) SumExpensesByRange(ctx context.Context, start, end time.Time) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return t.storage.sumExpensesByRange(ctx, t.tx, start, end)
}

func (t *sqliteTransaction) FindCreditPaymentTransaction(ctx context.Context, amount float64, paymentDate time.Time, note string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(note, "note"); err != nil {
		return nil, err
	}
	return t.storage.findCreditPaymentTransaction(ctx, t.tx, amount, paymentDate, note)
}
