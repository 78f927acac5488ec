package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/mkovalch/hroshi/internal/storage"
)

// openStorage opens the configured database, applying pending migrations
// before returning it. The caller owns the Close.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "hroshi", "hroshi.db")
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// parseDate parses a YYYY-MM-DD flag value. An empty value means today.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", value, err)
	}
	return parsed, nil
}

// parseMonth parses a YYYY-MM flag value. An empty value means the
// current month.
func parseMonth(value string) (int, time.Month, error) {
	if value == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}
	parsed, err := time.ParseInLocation("2006-01", value, time.Local)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", value, err)
	}
	return parsed.Year(), parsed.Month(), nil
}

// parseID parses a positional numeric id argument.
func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

// parseAmount parses a positional monetary argument, which must be
// positive.
func parseAmount(value string) (float64, error) {
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil || amount <= 0 {
		return 0, fmt.Errorf("invalid amount %q", value)
	}
	return amount, nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
