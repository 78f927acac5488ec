package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovalch/hroshi/internal/common"
	"github.com/mkovalch/hroshi/internal/model"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func createTestCategory(t *testing.T, store *SQLiteStorage, name string, typ model.CategoryType) *model.Category {
	t.Helper()

	cat, err := store.CreateCategory(context.Background(), name, typ)
	require.NoError(t, err)
	return cat
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("")
		assert.Error(t, err)
	})

	t.Run("opens and migrates in-memory database", func(t *testing.T) {
		store := createTestStorage(t)
		assert.NotNil(t, store)
	})
}

func TestCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("create and fetch", func(t *testing.T) {
		store := createTestStorage(t)

		created := createTestCategory(t, store, "Groceries", model.CategoryTypeExpense)
		assert.Positive(t, created.ID)
		assert.Equal(t, "Groceries", created.Name)

		fetched, err := store.GetCategoryByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, created.Name, fetched.Name)
		assert.Equal(t, model.CategoryTypeExpense, fetched.Type)
	})

	t.Run("duplicate name is case-insensitive", func(t *testing.T) {
		store := createTestStorage(t)

		createTestCategory(t, store, "Food", model.CategoryTypeExpense)

		_, err := store.CreateCategory(ctx, "food", model.CategoryTypeExpense)
		assert.ErrorIs(t, err, common.ErrDuplicateEntry)

		// Same name under a different type is a distinct category.
		_, err = store.CreateCategory(ctx, "Food", model.CategoryTypeIncome)
		assert.NoError(t, err)
	})

	t.Run("lookup by name and type ignores case", func(t *testing.T) {
		store := createTestStorage(t)

		created := createTestCategory(t, store, "Salary", model.CategoryTypeIncome)

		found, err := store.GetCategoryByNameAndType(ctx, "sAlArY", model.CategoryTypeIncome)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, created.ID, found.ID)

		missing, err := store.GetCategoryByNameAndType(ctx, "Salary", model.CategoryTypeExpense)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("filter by type", func(t *testing.T) {
		store := createTestStorage(t)

		createTestCategory(t, store, "Salary", model.CategoryTypeIncome)
		createTestCategory(t, store, "Rent", model.CategoryTypeExpense)
		createTestCategory(t, store, "Loan", model.CategoryTypeCredit)

		incomes, err := store.GetCategoriesByType(ctx, model.CategoryTypeIncome)
		require.NoError(t, err)
		require.Len(t, incomes, 1)
		assert.Equal(t, "Salary", incomes[0].Name)

		all, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("rename", func(t *testing.T) {
		store := createTestStorage(t)

		created := createTestCategory(t, store, "Grocceries", model.CategoryTypeExpense)
		require.NoError(t, store.RenameCategory(ctx, created.ID, "Groceries"))

		fetched, err := store.GetCategoryByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, "Groceries", fetched.Name)
	})

	t.Run("rename missing category", func(t *testing.T) {
		store := createTestStorage(t)
		err := store.RenameCategory(ctx, 9999, "Anything")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("delete cascades to transactions", func(t *testing.T) {
		store := createTestStorage(t)

		cat := createTestCategory(t, store, "Rent", model.CategoryTypeExpense)
		txnID, err := store.CreateTransaction(ctx, &model.Transaction{
			Amount:     100,
			Date:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			CategoryID: cat.ID,
			Type:       model.TransactionTypeExpense,
		})
		require.NoError(t, err)

		count, err := store.CountTransactionsByCategory(ctx, cat.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.NoError(t, store.DeleteCategory(ctx, cat.ID))

		gone, err := store.GetTransactionByID(ctx, txnID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()

	t.Run("create and fetch round trip", func(t *testing.T) {
		store := createTestStorage(t)
		cat := createTestCategory(t, store, "Groceries", model.CategoryTypeExpense)

		id, err := store.CreateTransaction(ctx, &model.Transaction{
			Amount:     42.50,
			Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			CategoryID: cat.ID,
			Type:       model.TransactionTypeExpense,
			Note:       "weekly shop",
		})
		require.NoError(t, err)

		fetched, err := store.GetTransactionByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, 42.50, fetched.Amount)
		assert.Equal(t, "weekly shop", fetched.Note)
		assert.Equal(t, model.TransactionTypeExpense, fetched.Type)
	})

	t.Run("empty note round trips as empty", func(t *testing.T) {
		store := createTestStorage(t)
		cat := createTestCategory(t, store, "Groceries", model.CategoryTypeExpense)

		id, err := store.CreateTransaction(ctx, &model.Transaction{
			Amount:     10,
			Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			CategoryID: cat.ID,
			Type:       model.TransactionTypeExpense,
		})
		require.NoError(t, err)

		fetched, err := store.GetTransactionByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Empty(t, fetched.Note)
	})

	t.Run("range query is inclusive and newest first", func(t *testing.T) {
		store := createTestStorage(t)
		cat := createTestCategory(t, store, "Groceries", model.CategoryTypeExpense)

		dates := []time.Time{
			time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		}
		for _, d := range dates {
			_, err := store.CreateTransaction(ctx, &model.Transaction{
				Amount:     10,
				Date:       d,
				CategoryID: cat.ID,
				Type:       model.TransactionTypeExpense,
			})
			require.NoError(t, err)
		}

		start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
		txns, err := store.GetTransactionsByRange(ctx, start, end)
		require.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, 15, txns[0].Date.Day())
		assert.Equal(t, 1, txns[1].Date.Day())
	})

	t.Run("sums split income from spending", func(t *testing.T) {
		store := createTestStorage(t)
		income := createTestCategory(t, store, "Salary", model.CategoryTypeIncome)
		expense := createTestCategory(t, store, "Rent", model.CategoryTypeExpense)
		credit := createTestCategory(t, store, "Credit payments", model.CategoryTypeCredit)

		date := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
		entries := []model.Transaction{
			{Amount: 1000, Date: date, CategoryID: income.ID, Type: model.TransactionTypeIncome},
			{Amount: 300, Date: date, CategoryID: expense.ID, Type: model.TransactionTypeExpense},
			{Amount: 150, Date: date, CategoryID: credit.ID, Type: model.TransactionTypeCreditPayment},
		}
		for i := range entries {
			_, err := store.CreateTransaction(ctx, &entries[i])
			require.NoError(t, err)
		}

		start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

		totalIncome, err := store.SumIncomeByRange(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, totalIncome)

		// Credit payments count as spending.
		totalSpent, err := store.SumExpensesByRange(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, 450.0, totalSpent)
	})

	t.Run("empty range sums to zero", func(t *testing.T) {
		store := createTestStorage(t)

		total, err := store.SumIncomeByRange(ctx,
			time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("find credit payment mirror", func(t *testing.T) {
		store := createTestStorage(t)
		credit := createTestCategory(t, store, "Credit payments", model.CategoryTypeCredit)

		date := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
		note := "Payment for credit: Phone"

		missing, err := store.FindCreditPaymentTransaction(ctx, 100, date, note)
		require.NoError(t, err)
		assert.Nil(t, missing)

		// Two identical mirrors: the newest row wins.
		first, err := store.CreateTransaction(ctx, &model.Transaction{
			Amount: 100, Date: date, CategoryID: credit.ID,
			Type: model.TransactionTypeCreditPayment, Note: note,
		})
		require.NoError(t, err)
		second, err := store.CreateTransaction(ctx, &model.Transaction{
			Amount: 100, Date: date, CategoryID: credit.ID,
			Type: model.TransactionTypeCreditPayment, Note: note,
		})
		require.NoError(t, err)
		require.Greater(t, second, first)

		found, err := store.FindCreditPaymentTransaction(ctx, 100, date, note)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, second, found.ID)
	})

	t.Run("delete", func(t *testing.T) {
		store := createTestStorage(t)
		cat := createTestCategory(t, store, "Groceries", model.CategoryTypeExpense)

		id, err := store.CreateTransaction(ctx, &model.Transaction{
			Amount:     10,
			Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			CategoryID: cat.ID,
			Type:       model.TransactionTypeExpense,
		})
		require.NoError(t, err)

		require.NoError(t, store.DeleteTransaction(ctx, id))

		gone, err := store.GetTransactionByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, gone)

		assert.ErrorIs(t, store.DeleteTransaction(ctx, id), common.ErrNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		store := createTestStorage(t)

		_, err := store.CreateTransaction(ctx, nil)
		assert.Error(t, err)

		_, err = store.CreateTransaction(ctx, &model.Transaction{
			Amount:     -5,
			Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			CategoryID: 1,
			Type:       model.TransactionTypeExpense,
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func testCreditAccount(name string) *model.CreditAccount {
	return &model.CreditAccount{
		Name:            name,
		Type:            model.CreditTypeLoan,
		TotalAmount:     1000,
		RemainingAmount: 1000,
		StartDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreditAccounts(t *testing.T) {
	ctx := context.Background()

	t.Run("create and fetch with optional fields", func(t *testing.T) {
		store := createTestStorage(t)

		monthly := 100.0
		rate := 12.5
		count := 12
		due := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		account := &model.CreditAccount{
			Name:             "Phone",
			Type:             model.CreditTypeInstallment,
			TotalAmount:      1200,
			RemainingAmount:  1200,
			MonthlyPayment:   &monthly,
			InterestRate:     &rate,
			InstallmentCount: &count,
			StartDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:          &end,
			PaymentDueDate:   &due,
			Note:             "24 months 0%",
		}

		id, err := store.CreateCreditAccount(ctx, account)
		require.NoError(t, err)

		fetched, err := store.GetCreditAccountByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, "Phone", fetched.Name)
		assert.Equal(t, model.CreditTypeInstallment, fetched.Type)
		require.NotNil(t, fetched.MonthlyPayment)
		assert.Equal(t, monthly, *fetched.MonthlyPayment)
		require.NotNil(t, fetched.InterestRate)
		assert.Equal(t, rate, *fetched.InterestRate)
		require.NotNil(t, fetched.InstallmentCount)
		assert.Equal(t, count, *fetched.InstallmentCount)
		require.NotNil(t, fetched.PaymentDueDate)
		assert.True(t, fetched.PaymentDueDate.Equal(due))
		require.NotNil(t, fetched.EndDate)
		assert.True(t, fetched.EndDate.Equal(end))
		assert.Equal(t, "24 months 0%", fetched.Note)
	})

	t.Run("nil optional fields stay nil", func(t *testing.T) {
		store := createTestStorage(t)

		id, err := store.CreateCreditAccount(ctx, testCreditAccount("Loan"))
		require.NoError(t, err)

		fetched, err := store.GetCreditAccountByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Nil(t, fetched.MonthlyPayment)
		assert.Nil(t, fetched.InterestRate)
		assert.Nil(t, fetched.InstallmentCount)
		assert.Nil(t, fetched.PaymentDueDate)
		assert.Nil(t, fetched.EndDate)
	})

	t.Run("active excludes settled accounts", func(t *testing.T) {
		store := createTestStorage(t)

		active := testCreditAccount("Active")
		_, err := store.CreateCreditAccount(ctx, active)
		require.NoError(t, err)

		settled := testCreditAccount("Settled")
		settled.RemainingAmount = 0
		_, err = store.CreateCreditAccount(ctx, settled)
		require.NoError(t, err)

		accounts, err := store.GetActiveCreditAccounts(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "Active", accounts[0].Name)

		all, err := store.GetCreditAccounts(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("total debt sums active accounts only", func(t *testing.T) {
		store := createTestStorage(t)

		first := testCreditAccount("First")
		first.RemainingAmount = 400
		_, err := store.CreateCreditAccount(ctx, first)
		require.NoError(t, err)

		second := testCreditAccount("Second")
		second.RemainingAmount = 250
		_, err = store.CreateCreditAccount(ctx, second)
		require.NoError(t, err)

		settled := testCreditAccount("Settled")
		settled.RemainingAmount = 0
		_, err = store.CreateCreditAccount(ctx, settled)
		require.NoError(t, err)

		total, err := store.GetTotalDebt(ctx)
		require.NoError(t, err)
		assert.Equal(t, 650.0, total)
	})

	t.Run("due accounts filtered and ordered by due date", func(t *testing.T) {
		store := createTestStorage(t)

		later := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)
		sooner := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
		far := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		a := testCreditAccount("Later")
		a.PaymentDueDate = &later
		_, err := store.CreateCreditAccount(ctx, a)
		require.NoError(t, err)

		b := testCreditAccount("Sooner")
		b.PaymentDueDate = &sooner
		_, err = store.CreateCreditAccount(ctx, b)
		require.NoError(t, err)

		c := testCreditAccount("Far")
		c.PaymentDueDate = &far
		_, err = store.CreateCreditAccount(ctx, c)
		require.NoError(t, err)

		// No due date, never reminded.
		_, err = store.CreateCreditAccount(ctx, testCreditAccount("NoDue"))
		require.NoError(t, err)

		due, err := store.GetDueCreditAccounts(ctx, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, "Sooner", due[0].Name)
		assert.Equal(t, "Later", due[1].Name)
	})

	t.Run("update", func(t *testing.T) {
		store := createTestStorage(t)

		account := testCreditAccount("Loan")
		id, err := store.CreateCreditAccount(ctx, account)
		require.NoError(t, err)
		account.ID = id

		account.RemainingAmount = 600
		account.PaidInstallments = 2
		due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
		account.PaymentDueDate = &due
		require.NoError(t, store.UpdateCreditAccount(ctx, account))

		fetched, err := store.GetCreditAccountByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		assert.Equal(t, 600.0, fetched.RemainingAmount)
		assert.Equal(t, 2, fetched.PaidInstallments)
		require.NotNil(t, fetched.PaymentDueDate)
		assert.True(t, fetched.PaymentDueDate.Equal(due))
	})

	t.Run("update missing account", func(t *testing.T) {
		store := createTestStorage(t)

		account := testCreditAccount("Ghost")
		account.ID = 9999
		assert.ErrorIs(t, store.UpdateCreditAccount(ctx, account), common.ErrNotFound)
	})

	t.Run("delete cascades to payments", func(t *testing.T) {
		store := createTestStorage(t)

		id, err := store.CreateCreditAccount(ctx, testCreditAccount("Loan"))
		require.NoError(t, err)

		_, err = store.CreateCreditPayment(ctx, &model.CreditPayment{
			CreditAccountID: id,
			Amount:          100,
			PaymentDate:     time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		require.NoError(t, store.DeleteCreditAccount(ctx, id))

		payments, err := store.GetCreditPayments(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, payments)
	})
}

func TestCreditPayments(t *testing.T) {
	ctx := context.Background()

	t.Run("history is newest first", func(t *testing.T) {
		store := createTestStorage(t)

		id, err := store.CreateCreditAccount(ctx, testCreditAccount("Loan"))
		require.NoError(t, err)

		for _, day := range []int{5, 15, 10} {
			_, err := store.CreateCreditPayment(ctx, &model.CreditPayment{
				CreditAccountID: id,
				Amount:          float64(day),
				PaymentDate:     time.Date(2025, 2, day, 0, 0, 0, 0, time.UTC),
			})
			require.NoError(t, err)
		}

		payments, err := store.GetCreditPayments(ctx, id)
		require.NoError(t, err)
		require.Len(t, payments, 3)
		assert.Equal(t, 15, payments[0].PaymentDate.Day())
		assert.Equal(t, 10, payments[1].PaymentDate.Day())
		assert.Equal(t, 5, payments[2].PaymentDate.Day())
	})

	t.Run("latest breaks date ties by insertion order", func(t *testing.T) {
		store := createTestStorage(t)

		id, err := store.CreateCreditAccount(ctx, testCreditAccount("Loan"))
		require.NoError(t, err)

		date := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		_, err = store.CreateCreditPayment(ctx, &model.CreditPayment{
			CreditAccountID: id, Amount: 100, PaymentDate: date,
		})
		require.NoError(t, err)
		secondID, err := store.CreateCreditPayment(ctx, &model.CreditPayment{
			CreditAccountID: id, Amount: 200, PaymentDate: date,
		})
		require.NoError(t, err)

		latest, err := store.GetLatestCreditPayment(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, secondID, latest.ID)
		assert.Equal(t, 200.0, latest.Amount)
	})

	t.Run("latest on empty history is nil", func(t *testing.T) {
		store := createTestStorage(t)

		id, err := store.CreateCreditAccount(ctx, testCreditAccount("Loan"))
		require.NoError(t, err)

		latest, err := store.GetLatestCreditPayment(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, latest)
	})

	t.Run("delete", func(t *testing.T) {
		store := createTestStorage(t)

		id, err := store.CreateCreditAccount(ctx, testCreditAccount("Loan"))
		require.NoError(t, err)

		paymentID, err := store.CreateCreditPayment(ctx, &model.CreditPayment{
			CreditAccountID: id,
			Amount:          100,
			PaymentDate:     time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		require.NoError(t, store.DeleteCreditPayment(ctx, paymentID))
		assert.ErrorIs(t, store.DeleteCreditPayment(ctx, paymentID), common.ErrNotFound)
	})
}

func TestTransactionScope(t *testing.T) {
	ctx := context.Background()

	t.Run("rollback discards writes", func(t *testing.T) {
		store := createTestStorage(t)

		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)

		_, err = tx.CreateCategory(ctx, "Rent", model.CategoryTypeExpense)
		require.NoError(t, err)
		require.NoError(t, tx.Rollback())

		categories, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.Empty(t, categories)
	})

	t.Run("commit persists writes", func(t *testing.T) {
		store := createTestStorage(t)

		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)

		_, err = tx.CreateCategory(ctx, "Rent", model.CategoryTypeExpense)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		categories, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, categories, 1)
	})

	t.Run("nested operations are rejected", func(t *testing.T) {
		store := createTestStorage(t)

		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		defer func() { _ = tx.Rollback() }()

		_, err = tx.BeginTx(ctx)
		assert.Error(t, err)
		assert.Error(t, tx.Migrate(ctx))
		assert.Error(t, tx.Close())
	})
}

// recordingNotifier captures invalidation signals for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	tables []string
}

func (n *recordingNotifier) Invalidate(tables ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tables = append(n.tables, tables...)
}

func (n *recordingNotifier) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.tables...)
}

func TestChangeNotification(t *testing.T) {
	ctx := context.Background()

	t.Run("direct writes notify their table", func(t *testing.T) {
		store := createTestStorage(t)
		notifier := &recordingNotifier{}
		store.SetNotifier(notifier)

		createTestCategory(t, store, "Rent", model.CategoryTypeExpense)
		assert.Contains(t, notifier.seen(), TableCategories)
	})

	t.Run("transactional writes notify once on commit", func(t *testing.T) {
		store := createTestStorage(t)
		notifier := &recordingNotifier{}
		store.SetNotifier(notifier)

		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)

		cat, err := tx.CreateCategory(ctx, "Rent", model.CategoryTypeExpense)
		require.NoError(t, err)
		_, err = tx.CreateTransaction(ctx, &model.Transaction{
			Amount:     100,
			Date:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			CategoryID: cat.ID,
			Type:       model.TransactionTypeExpense,
		})
		require.NoError(t, err)

		// Nothing fires before commit.
		assert.Empty(t, notifier.seen())

		require.NoError(t, tx.Commit())
		seen := notifier.seen()
		assert.Contains(t, seen, TableCategories)
		assert.Contains(t, seen, TableTransactions)
	})

	t.Run("rollback fires nothing", func(t *testing.T) {
		store := createTestStorage(t)
		notifier := &recordingNotifier{}
		store.SetNotifier(notifier)

		tx, err := store.BeginTx(ctx)
		require.NoError(t, err)
		_, err = tx.CreateCategory(ctx, "Rent", model.CategoryTypeExpense)
		require.NoError(t, err)
		require.NoError(t, tx.Rollback())

		assert.Empty(t, notifier.seen())
	})
}
