// Package category manages the category lifecycle: default seeding,
// legacy-name normalization, and add/delete with usage-guarded deletion.
package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkovalch/hroshi/internal/model"
	"github.com/mkovalch/hroshi/internal/service"
)

// Outcome reports the result of a category mutation.
type Outcome string

const (
	// OutcomeAdded means a new category row was created.
	OutcomeAdded Outcome = "added"
	// OutcomeDeleted means the category row was removed.
	OutcomeDeleted Outcome = "deleted"
	// OutcomeDuplicate means a category with the same (name, type) exists.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeInUse means deletion was refused: transactions still
	// reference the category.
	OutcomeInUse Outcome = "in-use"
	// OutcomeInvalidName means the submitted name is blank.
	OutcomeInvalidName Outcome = "invalid-name"
	// OutcomeNotFound means no category has the given id.
	OutcomeNotFound Outcome = "not-found"
)

// MutationResult pairs an outcome with the affected category id, when one
// exists.
type MutationResult struct {
	Outcome    Outcome
	CategoryID int64
}

// creditPaymentCategoryName is the canonical name for the shared category
// that mirrored credit-payment transactions are filed under.
const creditPaymentCategoryName = "Кредитні платежі"

type seedCategory struct {
	name string
	typ  model.CategoryType
}

// defaultCategories is the fixed set seeded on first run.
var defaultCategories = []seedCategory{
	{"Зарплата", model.CategoryTypeIncome},
	{"Фріланс", model.CategoryTypeIncome},
	{"Оренда", model.CategoryTypeExpense},
	{"Продукти", model.CategoryTypeExpense},
	{"Транспорт", model.CategoryTypeExpense},
	{"Кредитна картка", model.CategoryTypeCredit},
	{"Позика", model.CategoryTypeCredit},
}

// legacyTranslations maps pre-localization category keys to their
// canonical names. Applied once per matching row by
// EnsureDefaultCategories.
var legacyTranslations = map[string]seedCategory{
	"salary":      {"Зарплата", model.CategoryTypeIncome},
	"freelance":   {"Фріланс", model.CategoryTypeIncome},
	"rent":        {"Оренда", model.CategoryTypeExpense},
	"groceries":   {"Продукти", model.CategoryTypeExpense},
	"transport":   {"Транспорт", model.CategoryTypeExpense},
	"credit card": {"Кредитна картка", model.CategoryTypeCredit},
	"loan":        {"Позика", model.CategoryTypeCredit},
}

// Manager implements the category lifecycle operations.
type Manager struct {
	store service.Storage
}

// NewManager creates a category manager over the given store.
func NewManager(store service.Storage) *Manager {
	return &Manager{store: store}
}

// AddCategory creates a category from user input. The name is trimmed and
// matched case-insensitively against existing (name, type) pairs.
func (m *Manager) AddCategory(ctx context.Context, name string, categoryType model.CategoryType) (MutationResult, error) {
	normalized := strings.TrimSpace(name)
	if normalized == "" {
		return MutationResult{Outcome: OutcomeInvalidName}, nil
	}
	if !categoryType.Valid() {
		return MutationResult{Outcome: OutcomeInvalidName}, nil
	}

	existing, err := m.store.GetCategoryByNameAndType(ctx, normalized, categoryType)
	if err != nil {
		return MutationResult{}, err
	}
	if existing != nil {
		return MutationResult{Outcome: OutcomeDuplicate, CategoryID: existing.ID}, nil
	}

	created, err := m.store.CreateCategory(ctx, normalized, categoryType)
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Outcome: OutcomeAdded, CategoryID: created.ID}, nil
}

// DeleteCategory removes a category unless transactions still reference
// it. Deletion through this path is refused, not cascaded; the store
// cascade only applies when a row is removed by other means.
func (m *Manager) DeleteCategory(ctx context.Context, categoryID int64) (MutationResult, error) {
	existing, err := m.store.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return MutationResult{}, err
	}
	if existing == nil {
		return MutationResult{Outcome: OutcomeNotFound}, nil
	}

	usage, err := m.store.CountTransactionsByCategory(ctx, categoryID)
	if err != nil {
		return MutationResult{}, err
	}
	if usage > 0 {
		return MutationResult{Outcome: OutcomeInUse, CategoryID: categoryID}, nil
	}

	if err := m.store.DeleteCategory(ctx, categoryID); err != nil {
		return MutationResult{}, err
	}
	return MutationResult{Outcome: OutcomeDeleted, CategoryID: categoryID}, nil
}

// EnsureDefaultCategories idempotently seeds the default category set and
// performs the one-time legacy-name translation beforehand, so renamed
// rows are found instead of re-created.
func (m *Manager) EnsureDefaultCategories(ctx context.Context) error {
	if err := m.normalizeLegacyNames(ctx); err != nil {
		return err
	}

	existing, err := m.store.GetCategories(ctx)
	if err != nil {
		return err
	}

	for _, seed := range defaultCategories {
		if findCategory(existing, seed.name, seed.typ) != nil {
			continue
		}
		if _, err := m.store.CreateCategory(ctx, seed.name, seed.typ); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", seed.name, err)
		}
	}
	return nil
}

// EnsureCreditPaymentCategory returns the shared category that mirrored
// credit-payment transactions are filed under, creating it when absent.
// The first CREDIT-typed category wins, so user-renamed categories keep
// working. Accepts the store explicitly so the engine can pass an open
// transaction.
func (m *Manager) EnsureCreditPaymentCategory(ctx context.Context, store service.Storage) (*model.Category, error) {
	credits, err := store.GetCategoriesByType(ctx, model.CategoryTypeCredit)
	if err != nil {
		return nil, err
	}
	if len(credits) > 0 {
		return &credits[0], nil
	}

	created, err := store.CreateCategory(ctx, creditPaymentCategoryName, model.CategoryTypeCredit)
	if err != nil {
		return nil, err
	}
	slog.Info("created shared credit payment category", "id", created.ID)
	return created, nil
}

// normalizeLegacyNames renames categories matching known legacy keys to
// their canonical names. When the canonical name is already taken by a
// different row, the legacy row is merged away: deleted if unused,
// otherwise left in place for the user to resolve.
func (m *Manager) normalizeLegacyNames(ctx context.Context) error {
	categories, err := m.store.GetCategories(ctx)
	if err != nil {
		return err
	}

	for _, cat := range categories {
		translation, ok := legacyTranslations[normalizedKey(cat.Name)]
		if !ok || cat.Type != translation.typ {
			continue
		}
		if normalizedKey(cat.Name) == normalizedKey(translation.name) {
			continue
		}

		canonical, err := m.store.GetCategoryByNameAndType(ctx, translation.name, translation.typ)
		if err != nil {
			return err
		}

		if canonical != nil && canonical.ID != cat.ID {
			usage, err := m.store.CountTransactionsByCategory(ctx, cat.ID)
			if err != nil {
				return err
			}
			if usage == 0 {
				if err := m.store.DeleteCategory(ctx, cat.ID); err != nil {
					return err
				}
				slog.Info("removed unused legacy category", "name", cat.Name, "id", cat.ID)
			}
			continue
		}

		if err := m.store.RenameCategory(ctx, cat.ID, translation.name); err != nil {
			return err
		}
		slog.Info("renamed legacy category", "from", cat.Name, "to", translation.name, "id", cat.ID)
	}
	return nil
}

func findCategory(categories []model.Category, name string, typ model.CategoryType) *model.Category {
	for i := range categories {
		if categories[i].Type == typ && normalizedKey(categories[i].Name) == normalizedKey(name) {
			return &categories[i]
		}
	}
	return nil
}

func normalizedKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
