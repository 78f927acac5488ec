// Package ledger implements the credit-account ledger engine: the business
// rules that evolve a credit account's balance, paid-installment count and
// due date as payments are applied, reversed or auto-generated, while
// keeping the mirrored expense transaction consistent with each payment.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mkovalch/hroshi/internal/common"
	"github.com/mkovalch/hroshi/internal/dates"
	"github.com/mkovalch/hroshi/internal/model"
	"github.com/mkovalch/hroshi/internal/service"
)

// CategoryEnsurer supplies the shared credit-payments category, creating
// it on first use. The engine depends on it explicitly rather than
// reaching for a hidden global.
type CategoryEnsurer interface {
	EnsureCreditPaymentCategory(ctx context.Context, store service.Storage) (*model.Category, error)
}

// Engine executes ledger operations. Every mutating operation runs as one
// all-or-nothing store transaction.
type Engine struct {
	store      service.Storage
	categories CategoryEnsurer
}

// New creates a ledger engine over the given store.
func New(store service.Storage, categories CategoryEnsurer) *Engine {
	return &Engine{
		store:      store,
		categories: categories,
	}
}

// PaymentNote returns the deterministic note used to correlate a credit
// payment with its mirrored expense transaction.
func PaymentNote(accountName string) string {
	return fmt.Sprintf("Payment for credit: %s", accountName)
}

// CreateAccountParams carries the add-credit form fields.
type CreateAccountParams struct {
	StartDate         time.Time
	EndDate           *time.Time
	PaymentDueDate    *time.Time
	MonthlyPayment    *float64
	InterestRate      *float64
	InstallmentCount  *int
	InitialPaidAmount *float64
	Name              string
	Note              string
	Type              model.CreditType
	TotalAmount       float64
}

func (p *CreateAccountParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: account name is required", common.ErrInvalidInput)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: unknown credit type %q", common.ErrInvalidInput, p.Type)
	}
	if p.TotalAmount <= 0 {
		return fmt.Errorf("%w: total amount must be positive", common.ErrInvalidInput)
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", common.ErrInvalidInput)
	}

	policy := policyFor(p.Type)
	if policy.installmentSchedule {
		if p.InstallmentCount == nil || *p.InstallmentCount <= 0 {
			return fmt.Errorf("%w: installment count must be positive for %s accounts", common.ErrInvalidInput, p.Type)
		}
	}
	if policy.requiresDueDate && p.PaymentDueDate == nil {
		return fmt.Errorf("%w: payment due date is required for %s accounts", common.ErrInvalidInput, p.Type)
	}
	return nil
}

// CreateAccount validates the form, normalizes the type-dependent fields
// and commits the new account (plus, for credit limits with an initial
// paid amount, one seed payment) as a single unit. Nothing is persisted
// when validation fails.
func (e *Engine) CreateAccount(ctx context.Context, params CreateAccountParams) (*model.CreditAccount, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	policy := policyFor(params.Type)
	name := strings.TrimSpace(params.Name)

	account := model.CreditAccount{
		Name:         name,
		Type:         params.Type,
		TotalAmount:  params.TotalAmount,
		StartDate:    params.StartDate,
		EndDate:      params.EndDate,
		InterestRate: params.InterestRate,
		Note:         params.Note,
	}

	var initialPaid float64
	switch {
	case policy.acceptsInitialPaid:
		// Revolving limits may start partially used; clamp into range.
		if params.InitialPaidAmount != nil {
			initialPaid = min(max(*params.InitialPaidAmount, 0), params.TotalAmount)
		}
		account.InterestRate = nil
	case policy.installmentSchedule:
		count := *params.InstallmentCount
		account.InstallmentCount = &count
		// The fixed installment is always derived from the principal,
		// overriding whatever the form supplied.
		computed := params.TotalAmount / float64(count)
		account.MonthlyPayment = &computed
	default:
		account.MonthlyPayment = params.MonthlyPayment
	}

	account.RemainingAmount = max(params.TotalAmount-initialPaid, 0)
	if !policy.acceptsInitialPaid {
		account.PaymentDueDate = params.PaymentDueDate
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id, err := tx.CreateCreditAccount(ctx, &account)
	if err != nil {
		return nil, err
	}
	account.ID = id

	// The seed payment documents the already-used part of a limit. It is
	// a capital movement, so no expense transaction mirrors it.
	if initialPaid > 0 {
		_, err = tx.CreateCreditPayment(ctx, &model.CreditPayment{
			CreditAccountID: id,
			Amount:          initialPaid,
			PaymentDate:     params.StartDate,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit account creation: %w", err)
	}

	slog.Info("credit account created",
		"id", id,
		"name", account.Name,
		"type", account.Type,
		"remaining", account.RemainingAmount)
	return &account, nil
}

// AddPayment records a manual payment against an account: the payment row
// is inserted, the balance floors at zero, the due date clears once the
// debt settles, and non-limit accounts get a mirrored expense transaction.
// Non-positive amounts and missing accounts are silent no-ops.
func (e *Engine) AddPayment(ctx context.Context, creditID int64, amount float64, paymentDate time.Time) error {
	if amount <= 0 {
		slog.Debug("ignoring non-positive payment", "credit_id", creditID, "amount", amount)
		return nil
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	account, err := tx.GetCreditAccountByID(ctx, creditID)
	if err != nil {
		return err
	}
	if account == nil {
		slog.Debug("payment for missing credit account", "credit_id", creditID)
		return nil
	}

	_, err = tx.CreateCreditPayment(ctx, &model.CreditPayment{
		CreditAccountID: creditID,
		Amount:          amount,
		PaymentDate:     paymentDate,
	})
	if err != nil {
		return err
	}

	account.RemainingAmount = max(account.RemainingAmount-amount, 0)
	if account.Settled() {
		// Debt fully repaid, no further reminders.
		account.PaymentDueDate = nil
	}
	if err := tx.UpdateCreditAccount(ctx, account); err != nil {
		return err
	}

	if policyFor(account.Type).mirrorsExpense {
		if err := e.addMirrorTransaction(ctx, tx, account.Name, amount, paymentDate); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}

	slog.Info("credit payment recorded",
		"credit_id", creditID,
		"amount", amount,
		"remaining", account.RemainingAmount)
	return nil
}

// MarkNextInstallmentAsPaid records the next scheduled installment on an
// installment-family account. The payment is bounded by the remaining
// balance so the final installment never overpays. No-op for
// non-installment accounts, fully paid accounts and settled accounts.
func (e *Engine) MarkNextInstallmentAsPaid(ctx context.Context, creditID int64, paymentDate time.Time) error {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	account, err := tx.GetCreditAccountByID(ctx, creditID)
	if err != nil {
		return err
	}
	if account == nil || !account.IsInstallment() || account.InstallmentCount == nil {
		return nil
	}

	total := *account.InstallmentCount
	if account.PaidInstallments >= total || account.Settled() {
		return nil
	}

	paymentAmount := min(account.InstallmentAmount(), account.RemainingAmount)

	_, err = tx.CreateCreditPayment(ctx, &model.CreditPayment{
		CreditAccountID: creditID,
		Amount:          paymentAmount,
		PaymentDate:     paymentDate,
	})
	if err != nil {
		return err
	}

	account.RemainingAmount = max(account.RemainingAmount-paymentAmount, 0)
	account.PaidInstallments = min(account.PaidInstallments+1, total)

	if account.Settled() || account.PaidInstallments >= total {
		account.PaymentDueDate = nil
	} else {
		// Roll the schedule forward one calendar month; a missing prior
		// due date falls back to the payment date.
		base := paymentDate
		if account.PaymentDueDate != nil {
			base = *account.PaymentDueDate
		}
		next := dates.NextMonth(base)
		account.PaymentDueDate = &next
	}

	if err := tx.UpdateCreditAccount(ctx, account); err != nil {
		return err
	}

	// Installment accounts always mirror; they are never credit limits.
	if err := e.addMirrorTransaction(ctx, tx, account.Name, paymentAmount, paymentDate); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit installment payment: %w", err)
	}

	slog.Info("installment marked paid",
		"credit_id", creditID,
		"amount", paymentAmount,
		"paid_installments", account.PaidInstallments,
		"remaining", account.RemainingAmount)
	return nil
}

// UndoLastPayment reverses the most recent payment on an account: the
// payment row and its mirrored expense transaction (best-effort, matched
// by value) are deleted, the balance is refunded up to the principal, the
// installment counter steps back, and the due date rolls back one month.
// Returns false without error when the account is missing or has no
// payments.
func (e *Engine) UndoLastPayment(ctx context.Context, creditID int64) (bool, error) {
	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	account, err := tx.GetCreditAccountByID(ctx, creditID)
	if err != nil {
		return false, err
	}
	if account == nil {
		return false, nil
	}

	lastPayment, err := tx.GetLatestCreditPayment(ctx, creditID)
	if err != nil {
		return false, err
	}
	if lastPayment == nil {
		return false, nil
	}

	if policyFor(account.Type).mirrorsExpense {
		if err := e.removeMirrorTransaction(ctx, tx, account.Name, lastPayment.Amount, lastPayment.PaymentDate); err != nil {
			return false, err
		}
	}

	if err := tx.DeleteCreditPayment(ctx, lastPayment.ID); err != nil {
		return false, err
	}

	account.RemainingAmount = min(account.RemainingAmount+lastPayment.Amount, account.TotalAmount)

	if account.IsInstallment() {
		total := 0
		if account.InstallmentCount != nil {
			total = *account.InstallmentCount
		}
		account.PaidInstallments = min(max(account.PaidInstallments-1, 0), total)

		if account.PaymentDueDate != nil {
			rolledBack := dates.PrevMonth(*account.PaymentDueDate)
			account.PaymentDueDate = &rolledBack
		} else {
			due := lastPayment.PaymentDate
			account.PaymentDueDate = &due
		}
	} else if account.PaymentDueDate == nil {
		due := lastPayment.PaymentDate
		account.PaymentDueDate = &due
	}

	if err := tx.UpdateCreditAccount(ctx, account); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit payment reversal: %w", err)
	}

	slog.Info("credit payment reversed",
		"credit_id", creditID,
		"amount", lastPayment.Amount,
		"remaining", account.RemainingAmount)
	return true, nil
}

// addMirrorTransaction synthesizes the expense-side ledger entry for a
// credit payment, creating the shared credit-payments category on demand.
func (e *Engine) addMirrorTransaction(ctx context.Context, tx service.Transaction, accountName string, amount float64, paymentDate time.Time) error {
	category, err := e.categories.EnsureCreditPaymentCategory(ctx, tx)
	if err != nil {
		return err
	}

	_, err = tx.CreateTransaction(ctx, &model.Transaction{
		Amount:     amount,
		Date:       paymentDate,
		CategoryID: category.ID,
		Type:       model.TransactionTypeCreditPayment,
		Note:       PaymentNote(accountName),
	})
	return err
}

// removeMirrorTransaction deletes the expense-side entry matched by
// (amount, date, note). The link is best-effort: a missing mirror does
// not block the reversal.
func (e *Engine) removeMirrorTransaction(ctx context.Context, tx service.Transaction, accountName string, amount float64, paymentDate time.Time) error {
	mirror, err := tx.FindCreditPaymentTransaction(ctx, amount, paymentDate, PaymentNote(accountName))
	if err != nil {
		return err
	}
	if mirror == nil {
		slog.Warn("mirror transaction not found for reversed payment",
			"account", accountName,
			"amount", amount,
			"date", paymentDate)
		return nil
	}
	return tx.DeleteTransaction(ctx, mirror.ID)
}
