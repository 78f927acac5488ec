package category

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovalch/hroshi/internal/model"
	"github.com/mkovalch/hroshi/internal/storage"
)

func newTestManager(t *testing.T) (*Manager, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	return NewManager(store), store
}

func TestAddCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("adds a trimmed category", func(t *testing.T) {
		manager, store := newTestManager(t)

		result, err := manager.AddCategory(ctx, "  Books  ", model.CategoryTypeExpense)
		require.NoError(t, err)
		assert.Equal(t, OutcomeAdded, result.Outcome)

		created, err := store.GetCategoryByID(ctx, result.CategoryID)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "Books", created.Name)
	})

	t.Run("duplicate detection ignores case", func(t *testing.T) {
		manager, _ := newTestManager(t)

		first, err := manager.AddCategory(ctx, "Books", model.CategoryTypeExpense)
		require.NoError(t, err)
		require.Equal(t, OutcomeAdded, first.Outcome)

		dup, err := manager.AddCategory(ctx, "BOOKS", model.CategoryTypeExpense)
		require.NoError(t, err)
		assert.Equal(t, OutcomeDuplicate, dup.Outcome)
		assert.Equal(t, first.CategoryID, dup.CategoryID)
	})

	t.Run("same name under another type is allowed", func(t *testing.T) {
		manager, _ := newTestManager(t)

		_, err := manager.AddCategory(ctx, "Misc", model.CategoryTypeExpense)
		require.NoError(t, err)

		result, err := manager.AddCategory(ctx, "Misc", model.CategoryTypeIncome)
		require.NoError(t, err)
		assert.Equal(t, OutcomeAdded, result.Outcome)
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		manager, _ := newTestManager(t)

		result, err := manager.AddCategory(ctx, "   ", model.CategoryTypeExpense)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInvalidName, result.Outcome)
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		manager, _ := newTestManager(t)

		result, err := manager.AddCategory(ctx, "Books", model.CategoryType("HOBBY"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeInvalidName, result.Outcome)
	})
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an unused category", func(t *testing.T) {
		manager, store := newTestManager(t)

		added, err := manager.AddCategory(ctx, "Books", model.CategoryTypeExpense)
		require.NoError(t, err)

		result, err := manager.DeleteCategory(ctx, added.CategoryID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeDeleted, result.Outcome)

		gone, err := store.GetCategoryByID(ctx, added.CategoryID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})

	t.Run("refuses while transactions reference it", func(t *testing.T) {
		manager, store := newTestManager(t)

		added, err := manager.AddCategory(ctx, "Books", model.CategoryTypeExpense)
		require.NoError(t, err)

		_, err = store.CreateTransaction(ctx, &model.Transaction{
			Amount:     10,
			Date:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			CategoryID: added.CategoryID,
			Type:       model.TransactionTypeExpense,
		})
		require.NoError(t, err)

		result, err := manager.DeleteCategory(ctx, added.CategoryID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInUse, result.Outcome)

		still, err := store.GetCategoryByID(ctx, added.CategoryID)
		require.NoError(t, err)
		assert.NotNil(t, still)
	})

	t.Run("missing category", func(t *testing.T) {
		manager, _ := newTestManager(t)

		result, err := manager.DeleteCategory(ctx, 9999)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNotFound, result.Outcome)
	})
}

func TestEnsureDefaultCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds the default set idempotently", func(t *testing.T) {
		manager, store := newTestManager(t)

		require.NoError(t, manager.EnsureDefaultCategories(ctx))

		seeded, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, seeded, len(defaultCategories))

		// A second run seeds nothing new.
		require.NoError(t, manager.EnsureDefaultCategories(ctx))
		again, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, again, len(defaultCategories))
	})

	t.Run("user categories survive seeding", func(t *testing.T) {
		manager, store := newTestManager(t)

		_, err := manager.AddCategory(ctx, "Books", model.CategoryTypeExpense)
		require.NoError(t, err)

		require.NoError(t, manager.EnsureDefaultCategories(ctx))

		all, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, all, len(defaultCategories)+1)
	})

	t.Run("renames legacy rows instead of duplicating them", func(t *testing.T) {
		manager, store := newTestManager(t)

		legacy, err := store.CreateCategory(ctx, "Salary", model.CategoryTypeIncome)
		require.NoError(t, err)

		require.NoError(t, manager.EnsureDefaultCategories(ctx))

		renamed, err := store.GetCategoryByID(ctx, legacy.ID)
		require.NoError(t, err)
		require.NotNil(t, renamed)
		assert.Equal(t, "Зарплата", renamed.Name)

		all, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, all, len(defaultCategories))
	})

	t.Run("merges away an unused legacy duplicate", func(t *testing.T) {
		manager, store := newTestManager(t)

		_, err := store.CreateCategory(ctx, "Позика", model.CategoryTypeCredit)
		require.NoError(t, err)
		legacy, err := store.CreateCategory(ctx, "loan", model.CategoryTypeCredit)
		require.NoError(t, err)

		require.NoError(t, manager.EnsureDefaultCategories(ctx))

		gone, err := store.GetCategoryByID(ctx, legacy.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})

	t.Run("keeps a legacy duplicate that still has transactions", func(t *testing.T) {
		manager, store := newTestManager(t)

		_, err := store.CreateCategory(ctx, "Позика", model.CategoryTypeCredit)
		require.NoError(t, err)
		legacy, err := store.CreateCategory(ctx, "loan", model.CategoryTypeCredit)
		require.NoError(t, err)

		_, err = store.CreateTransaction(ctx, &model.Transaction{
			Amount:     10,
			Date:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			CategoryID: legacy.ID,
			Type:       model.TransactionTypeExpense,
		})
		require.NoError(t, err)

		require.NoError(t, manager.EnsureDefaultCategories(ctx))

		kept, err := store.GetCategoryByID(ctx, legacy.ID)
		require.NoError(t, err)
		require.NotNil(t, kept)
		assert.Equal(t, "loan", kept.Name)
	})
}

func TestEnsureCreditPaymentCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the category on first use", func(t *testing.T) {
		manager, store := newTestManager(t)

		created, err := manager.EnsureCreditPaymentCategory(ctx, store)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, creditPaymentCategoryName, created.Name)
		assert.Equal(t, model.CategoryTypeCredit, created.Type)
	})

	t.Run("reuses an existing credit category", func(t *testing.T) {
		manager, store := newTestManager(t)

		existing, err := store.CreateCategory(ctx, "My card", model.CategoryTypeCredit)
		require.NoError(t, err)

		found, err := manager.EnsureCreditPaymentCategory(ctx, store)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, existing.ID, found.ID)

		credits, err := store.GetCategoriesByType(ctx, model.CategoryTypeCredit)
		require.NoError(t, err)
		assert.Len(t, credits, 1)
	})
}
