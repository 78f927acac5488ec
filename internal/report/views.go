// Package report provides the derived read-side views: month-bucketed
// sums, active-credit listings and the total-debt summary, as plain
// queries and as live subscriptions.
package report

import (
	"context"
	"time"

	"github.com/mkovalch/hroshi/internal/dates"
	"github.com/mkovalch/hroshi/internal/live"
	"github.com/mkovalch/hroshi/internal/model"
	"github.com/mkovalch/hroshi/internal/service"
	"github.com/mkovalch/hroshi/internal/storage"
)

// Views exposes the aggregation queries. Pure reads, no mutation.
type Views struct {
	store  service.Storage
	broker *live.Broker
}

// New creates the read views. The broker may be nil when live
// subscriptions are not needed.
func New(store service.Storage, broker *live.Broker) *Views {
	return &Views{store: store, broker: broker}
}

// MonthSummary returns income and spending totals for one calendar month.
func (v *Views) MonthSummary(ctx context.Context, year int, month time.Month, loc *time.Location) (service.MonthSummary, error) {
	start, end := dates.MonthBounds(year, month, loc)

	income, err := v.store.SumIncomeByRange(ctx, start, end)
	if err != nil {
		return service.MonthSummary{}, err
	}
	spent, err := v.store.SumExpensesByRange(ctx, start, end)
	if err != nil {
		return service.MonthSummary{}, err
	}

	return service.MonthSummary{
		Start:  start,
		End:    end,
		Income: income,
		Spent:  spent,
	}, nil
}

// MonthTransactions returns the transactions of one calendar month,
// newest first.
func (v *Views) MonthTransactions(ctx context.Context, year int, month time.Month, loc *time.Location) ([]model.Transaction, error) {
	start, end := dates.MonthBounds(year, month, loc)
	return v.store.GetTransactionsByRange(ctx, start, end)
}

// ActiveCredits returns credit accounts that still carry debt.
func (v *Views) ActiveCredits(ctx context.Context) ([]model.CreditAccount, error) {
	return v.store.GetActiveCreditAccounts(ctx)
}

// DebtSummary aggregates the outstanding balance over active accounts.
func (v *Views) DebtSummary(ctx context.Context) (service.DebtSummary, error) {
	active, err := v.store.GetActiveCreditAccounts(ctx)
	if err != nil {
		return service.DebtSummary{}, err
	}
	total, err := v.store.GetTotalDebt(ctx)
	if err != nil {
		return service.DebtSummary{}, err
	}
	return service.DebtSummary{
		TotalRemaining: total,
		ActiveAccounts: len(active),
	}, nil
}

// DueCredits returns active accounts due on or before the horizon.
func (v *Views) DueCredits(ctx context.Context, until time.Time) ([]model.CreditAccount, error) {
	return v.store.GetDueCreditAccounts(ctx, until)
}

// WatchActiveCredits returns a live query over the active-credit list.
func (v *Views) WatchActiveCredits() *live.Query[[]model.CreditAccount] {
	return live.NewQuery(v.broker, func(ctx context.Context) ([]model.CreditAccount, error) {
		return v.store.GetActiveCreditAccounts(ctx)
	}, storage.TableCreditAccounts)
}

// WatchDebtSummary returns a live query over the total-debt summary.
func (v *Views) WatchDebtSummary() *live.Query[service.DebtSummary] {
	return live.NewQuery(v.broker, func(ctx context.Context) (service.DebtSummary, error) {
		return v.DebtSummary(ctx)
	}, storage.TableCreditAccounts)
}

// WatchMonthSummary returns a live query over one month's totals.
func (v *Views) WatchMonthSummary(year int, month time.Month, loc *time.Location) *live.Query[service.MonthSummary] {
	return live.NewQuery(v.broker, func(ctx context.Context) (service.MonthSummary, error) {
		return v.MonthSummary(ctx, year, month, loc)
	}, storage.TableTransactions)
}

// WatchCreditPayments returns a live query over one account's payment
// history, newest first.
func (v *Views) WatchCreditPayments(creditID int64) *live.Query[[]model.CreditPayment] {
	return live.NewQuery(v.broker, func(ctx context.Context) ([]model.CreditPayment, error) {
		return v.store.GetCreditPayments(ctx, creditID)
	}, storage.TableCreditPayments)
}
