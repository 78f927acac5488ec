package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkovalch/hroshi/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Table names, used for change notification topics.
const (
	TableCategories     = "categories"
	TableTransactions   = "transactions"
	TableCreditAccounts = "credit_accounts"
	TableCreditPayments = "credit_payments"
)

// dbtx abstracts over *sql.DB and *sql.Tx so each query is written once.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	notifier service.Notifier
	dbPath   string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Cascade deletes on credit_payments and transactions depend on
	// foreign key enforcement being switched on per connection.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// SetNotifier registers a change notifier invoked after committed writes.
func (s *SQLiteStorage) SetNotifier(n service.Notifier) {
	s.notifier = n
}

// notify signals the registered notifier, if any.
func (s *SQLiteStorage) notify(tables ...string) {
	if s.notifier != nil && len(tables) > 0 {
		s.notifier.Invalidate(tables...)
	}
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
		touched: make(map[string]struct{}),
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction. It
// records which tables were written so live queries can be invalidated
// once, after commit.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
	touched map[string]struct{}
}

func (t *sqliteTransaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return err
	}
	tables := make([]string, 0, len(t.touched))
	for table := range t.touched {
		tables = append(tables, table)
	}
	t.storage.notify(tables...)
	return nil
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTransaction) mark(tables ...string) {
	for _, table := range tables {
		t.touched[table] = struct{}{}
	}
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
