package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovalch/hroshi/internal/live"
	"github.com/mkovalch/hroshi/internal/model"
	"github.com/mkovalch/hroshi/internal/service"
	"github.com/mkovalch/hroshi/internal/storage"
)

func newTestViews(t *testing.T) (*Views, *storage.SQLiteStorage, *live.Broker) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	broker := live.NewBroker()
	store.SetNotifier(broker)

	return New(store, broker), store, broker
}

func seedMonth(t *testing.T, store *storage.SQLiteStorage) {
	t.Helper()
	ctx := context.Background()

	income, err := store.CreateCategory(ctx, "Salary", model.CategoryTypeIncome)
	require.NoError(t, err)
	expense, err := store.CreateCategory(ctx, "Rent", model.CategoryTypeExpense)
	require.NoError(t, err)
	credit, err := store.CreateCategory(ctx, "Credit payments", model.CategoryTypeCredit)
	require.NoError(t, err)

	entries := []model.Transaction{
		{Amount: 2000, Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), CategoryID: income.ID, Type: model.TransactionTypeIncome},
		{Amount: 800, Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), CategoryID: expense.ID, Type: model.TransactionTypeExpense},
		{Amount: 150, Date: time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), CategoryID: credit.ID, Type: model.TransactionTypeCreditPayment},
		// Outside the month under test.
		{Amount: 999, Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), CategoryID: expense.ID, Type: model.TransactionTypeExpense},
	}
	for i := range entries {
		_, err := store.CreateTransaction(ctx, &entries[i])
		require.NoError(t, err)
	}
}

func TestMonthSummary(t *testing.T) {
	ctx := context.Background()
	views, store, _ := newTestViews(t)
	seedMonth(t, store)

	summary, err := views.MonthSummary(ctx, 2025, time.March, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 2000.0, summary.Income)
	assert.Equal(t, 950.0, summary.Spent)
	assert.Equal(t, 1050.0, summary.Net())
}

func TestMonthTransactions(t *testing.T) {
	ctx := context.Background()
	views, store, _ := newTestViews(t)
	seedMonth(t, store)

	txns, err := views.MonthTransactions(ctx, 2025, time.March, time.UTC)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Equal(t, 12, txns[0].Date.Day())
	assert.Equal(t, 1, txns[2].Date.Day())
}

func TestDebtSummary(t *testing.T) {
	ctx := context.Background()
	views, store, _ := newTestViews(t)

	accounts := []model.CreditAccount{
		{Name: "Phone", Type: model.CreditTypeInstallment, TotalAmount: 1200, RemainingAmount: 900,
			StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "Card", Type: model.CreditTypeCreditLimit, TotalAmount: 5000, RemainingAmount: 3500,
			StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "Done", Type: model.CreditTypeLoan, TotalAmount: 500, RemainingAmount: 0,
			StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for i := range accounts {
		_, err := store.CreateCreditAccount(ctx, &accounts[i])
		require.NoError(t, err)
	}

	summary, err := views.DebtSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4400.0, summary.TotalRemaining)
	assert.Equal(t, 2, summary.ActiveAccounts)

	active, err := views.ActiveCredits(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestWatchDebtSummary(t *testing.T) {
	ctx := context.Background()
	views, store, _ := newTestViews(t)

	query := views.WatchDebtSummary()
	ch, cancel := query.Subscribe(ctx)
	defer cancel()

	// Initial snapshot of an empty ledger.
	initial := waitForSummary(t, ch, func(s service.DebtSummary) bool {
		return s.ActiveAccounts == 0
	})
	assert.Zero(t, initial.TotalRemaining)

	// A committed write re-emits a fresh snapshot.
	_, err := store.CreateCreditAccount(ctx, &model.CreditAccount{
		Name:            "Phone",
		Type:            model.CreditTypeInstallment,
		TotalAmount:     1200,
		RemainingAmount: 1200,
		StartDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	updated := waitForSummary(t, ch, func(s service.DebtSummary) bool {
		return s.ActiveAccounts == 1
	})
	assert.Equal(t, 1200.0, updated.TotalRemaining)
}

func waitForSummary(t *testing.T, ch <-chan service.DebtSummary, ok func(service.DebtSummary) bool) service.DebtSummary {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case summary, open := <-ch:
			require.True(t, open, "subscription closed unexpectedly")
			if ok(summary) {
				return summary
			}
		case <-deadline:
			t.Fatal("timed out waiting for summary snapshot")
			panic("unreachable")
		}
	}
}
