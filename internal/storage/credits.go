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

const creditAccountColumns = `id, name, credit_type, total_amount, remaining_amount,
	monthly_payment, interest_rate, start_date, end_date,
	installment_count, paid_installments, payment_due_date, note`

func scanCreditAccount(row interface{ Scan(...any) error }) (*model.CreditAccount, error) {
	var account model.CreditAccount
	var monthlyPayment, interestRate sql.NullFloat64
	var endDate, dueDate sql.NullTime
	var installmentCount sql.NullInt64
	var note sql.NullString

	err := row.Scan(
		&account.ID, &account.Name, &account.Type,
		&account.TotalAmount, &account.RemainingAmount,
		&monthlyPayment, &interestRate,
		&account.StartDate, &endDate,
		&installmentCount, &account.PaidInstallments,
		&dueDate, &note,
	)
	if err != nil {
		return nil, err
	}

	if monthlyPayment.Valid {
		account.MonthlyPayment = &monthlyPayment.Float64
	}
	if interestRate.Valid {
		account.InterestRate = &interestRate.Float64
	}
	if endDate.Valid {
		account.EndDate = &endDate.Time
	}
	if installmentCount.Valid {
		count := int(installmentCount.Int64)
		account.InstallmentCount = &count
	}
	if dueDate.Valid {
		account.PaymentDueDate = &dueDate.Time
	}
	account.Note = note.String

	return &account, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func (s *SQLiteStorage) createCreditAccount(ctx context.Context, q dbtx, account *model.CreditAccount) (int64, error) {
	result, err := q.ExecContext(ctx, `
		INSERT INTO credit_accounts (
			name, credit_type, total_amount, remaining_amount,
			monthly_payment, interest_rate, start_date, end_date,
			installment_count, paid_installments, payment_due_date, note
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.Name, account.Type, account.TotalAmount, account.RemainingAmount,
		nullFloat(account.MonthlyPayment), nullFloat(account.InterestRate),
		account.StartDate, nullTime(account.EndDate),
		nullInt(account.InstallmentCount), account.PaidInstallments,
		nullTime(account.PaymentDueDate), noteParam(account.Note))
	if err != nil {
		return 0, fmt.Errorf("failed to insert credit account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get credit account ID: %w", err)
	}

	slog.Info("created credit account",
		"id", id,
		"name", account.Name,
		"type", account.Type,
		"total", account.TotalAmount)
	return id, nil
}

func (s *SQLiteStorage) getCreditAccountByID(ctx context.Context, q dbtx, id int64) (*model.CreditAccount, error) {
	query := `
		SELECT ` + creditAccountColumns + `
		FROM credit_accounts
		WHERE id = ?`

	account, err := scanCreditAccount(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Account not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credit account: %w", err)
	}

	return account, nil
}

func (s *SQLiteStorage) queryCreditAccounts(ctx context.Context, q dbtx, query string, args ...any) ([]model.CreditAccount, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.CreditAccount
	for rows.Next() {
		account, err := scanCreditAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credit account: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credit accounts: %w", err)
	}

	return accounts, nil
}

func (s *SQLiteStorage) getCreditAccounts(ctx context.Context, q dbtx) ([]model.CreditAccount, error) {
	return s.queryCreditAccounts(ctx, q, `
		SELECT `+creditAccountColumns+`
		FROM credit_accounts
		ORDER BY start_date DESC`)
}

func (s *SQLiteStorage) getActiveCreditAccounts(ctx context.Context, q dbtx) ([]model.CreditAccount, error) {
	return s.queryCreditAccounts(ctx, q, `
		SELECT `+creditAccountColumns+`
		FROM credit_accounts
		WHERE remaining_amount > 0
		ORDER BY start_date DESC`)
}

func (s *SQLiteStorage) getDueCreditAccounts(ctx context.Context, q dbtx, until time.Time) ([]model.CreditAccount, error) {
	return s.queryCreditAccounts(ctx, q, `
		SELECT `+creditAccountColumns+`
		FROM credit_accounts
		WHERE remaining_amount > 0
		  AND payment_due_date IS NOT NULL
		  AND payment_due_date <= ?
		ORDER BY payment_due_date ASC`, until)
}

func (s *SQLiteStorage) updateCreditAccount(ctx context.Context, q dbtx, account *model.CreditAccount) error {
	result, err := q.ExecContext(ctx, `
		UPDATE credit_accounts SET
			name = ?, credit_type = ?, total_amount = ?, remaining_amount = ?,
			monthly_payment = ?, interest_rate = ?, start_date = ?, end_date = ?,
			installment_count = ?, paid_installments = ?, payment_due_date = ?, note = ?
		WHERE id = ?`,
		account.Name, account.Type, account.TotalAmount, account.RemainingAmount,
		nullFloat(account.MonthlyPayment), nullFloat(account.InterestRate),
		account.StartDate, nullTime(account.EndDate),
		nullInt(account.InstallmentCount), account.PaidInstallments,
		nullTime(account.PaymentDueDate), noteParam(account.Note),
		account.ID)
	if err != nil {
		return fmt.Errorf("failed to update credit account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: credit account %d", common.ErrNotFound, account.ID)
	}
	return nil
}

func (s *SQLiteStorage) deleteCreditAccount(ctx context.Context, q dbtx, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM credit_accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete credit account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: credit account %d", common.ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStorage) getTotalDebt(ctx context.Context, q dbtx) (float64, error) {
	var total float64
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(remaining_amount), 0)
		FROM credit_accounts
		WHERE remaining_amount > 0`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum outstanding debt: %w", err)
	}
	return total, nil
}

// CreateCreditAccount inserts a credit account and returns its id.
func (s *SQLiteStorage) CreateCreditAccount(ctx context.Context, account *model.CreditAccount) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateCreditAccount(account); err != nil {
		return 0, err
	}
	id, err := s.createCreditAccount(ctx, s.db, account)
	if err != nil {
		return 0, err
	}
	s.notify(TableCreditAccounts)
	return id, nil
}

// GetCreditAccountByID returns the account with the given id, or nil if absent.
func (s *SQLiteStorage) GetCreditAccountByID(ctx context.Context, id int64) (*model.CreditAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getCreditAccountByID(ctx, s.db, id)
}

// GetCreditAccounts returns all credit accounts, newest first.
func (s *SQLiteStorage) GetCreditAccounts(ctx context.Context) ([]model.CreditAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCreditAccounts(ctx, s.db)
}

// GetActiveCreditAccounts returns accounts that still carry debt.
func (s *SQLiteStorage) GetActiveCreditAccounts(ctx context.Context) ([]model.CreditAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getActiveCreditAccounts(ctx, s.db)
}

// GetDueCreditAccounts returns active accounts whose due date falls on or
// before the given horizon, soonest first.
func (s *SQLiteStorage) GetDueCreditAccounts(ctx context.Context, until time.Time) ([]model.CreditAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getDueCreditAccounts(ctx, s.db, until)
}

// UpdateCreditAccount overwrites the stored account row.
func (s *SQLiteStorage) UpdateCreditAccount(ctx context.Context, account *model.CreditAccount) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCreditAccount(account); err != nil {
		return err
	}
	if err := validateID(account.ID, "account.ID"); err != nil {
		return err
	}
	if err := s.updateCreditAccount(ctx, s.db, account); err != nil {
		return err
	}
	s.notify(TableCreditAccounts)
	return nil
}

// DeleteCreditAccount removes an account; its payments cascade.
func (s *SQLiteStorage) DeleteCreditAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := s.deleteCreditAccount(ctx, s.db, id); err != nil {
		return err
	}
	s.notify(TableCreditAccounts, TableCreditPayments)
	return nil
}

// GetTotalDebt returns the sum of remaining amounts over active accounts.
func (s *SQLiteStorage) GetTotalDebt(ctx context.Context) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.getTotalDebt(ctx, s.db)
}

// Transaction-scoped implementations.

func (t *sqliteTransaction) CreateCreditAccount(ctx context.Context, account *model.CreditAccount) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateCreditAccount(account); err != nil {
		return 0, err
	}
	id, err := t.storage.createCreditAccount(ctx, t.tx, account)
	if err != nil {
		return 0, err
	}
	t.mark(TableCreditAccounts)
	return id, nil
}

func (t *sqliteTransaction) GetCreditAccountByID(ctx context.Context, id int64) (*model.CreditAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getCreditAccountByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCreditAccounts(ctx context.Context) ([]model.CreditAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCreditAccounts(ctx, t.tx)
}

func (t *sqliteTransaction) GetActiveCreditAccounts(ctx context.Context) ([]model.CreditAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getActiveCreditAccounts(ctx, t.tx)
}

func (t *sqliteTransaction) GetDueCreditAccounts(ctx context.Context, until time.Time) ([]model.CreditAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getDueCreditAccounts(ctx, t.tx, until)
}

func (t *sqliteTransaction) UpdateCreditAccount(ctx context.Context, account *model.CreditAccount) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCreditAccount(account); err != nil {
		return err
	}
	if err := validateID(account.ID, "account.ID"); err != nil {
		return err
	}
	if err := t.storage.updateCreditAccount(ctx, t.tx, account); err != nil {
		return err
	}
	t.mark(TableCreditAccounts)
	return nil
}

func (t *sqliteTransaction) DeleteCreditAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := t.storage.deleteCreditAccount(ctx, t.tx, id); err != nil {
		return err
	}
	t.mark(TableCreditAccounts, TableCreditPayments)
	return nil
}

func (t *sqliteTransaction) GetTotalDebt(ctx context.Context) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return t.storage.getTotalDebt(ctx, t.tx)
}
