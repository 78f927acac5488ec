package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL COLLATE NOCASE,
					type TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE UNIQUE INDEX idx_categories_name_type ON categories(name, type)`,
				`CREATE INDEX idx_categories_type ON categories(type)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					amount REAL NOT NULL,
					date DATETIME NOT NULL,
					category_id INTEGER NOT NULL,
					type TEXT NOT NULL,
					note TEXT,
					FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE ON UPDATE CASCADE
				)`,
				`CREATE INDEX idx_transactions_category_id ON transactions(category_id)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,

				`CREATE TABLE IF NOT EXISTS credit_accounts (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL,
					credit_type TEXT NOT NULL,
					total_amount REAL NOT NULL,
					remaining_amount REAL NOT NULL,
					monthly_payment REAL,
					interest_rate REAL,
					start_date DATETIME NOT NULL,
					end_date DATETIME,
					installment_count INTEGER,
					paid_installments INTEGER NOT NULL DEFAULT 0,
					payment_due_date DATETIME,
					note TEXT
				)`,

				`CREATE TABLE IF NOT EXISTS credit_payments (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					credit_account_id INTEGER NOT NULL,
					amount REAL NOT NULL,
					payment_date DATETIME NOT NULL,
					FOREIGN KEY (credit_account_id) REFERENCES credit_accounts(id) ON DELETE CASCADE ON UPDATE CASCADE
				)`,
				`CREATE INDEX idx_credit_payments_account_id ON credit_payments(credit_account_id)`,
				`CREATE INDEX idx_credit_payments_date ON credit_payments(payment_date)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index credit accounts for active and due-date scans",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_credit_accounts_remaining ON credit_accounts(remaining_amount)`,
				`CREATE INDEX IF NOT EXISTS idx_credit_accounts_due_date ON credit_accounts(payment_due_date)`,
				`CREATE INDEX IF NOT EXISTS idx_credit_accounts_type ON credit_accounts(credit_type)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Index transaction type for monthly sums and mirror lookups",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(type)`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
