// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	// ErrNotFound is returned when a bill or character does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a concurrent writer changed the row first. Reload
	// and retry.
	ErrConflict = errors.New("concurrent update")
)

// Store persists the roster and bill aggregates. Queries are written with
// PostgreSQL $N placeholders and rebound for SQLite.
type Store struct {
	db     *sql.DB
	sqlite bool
}

// New wraps an open database. driver is "postgres" or "sqlite".
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, sqlite: driver == "sqlite"}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q rebinds $N to ?N, SQLite's numbered parameter form.
func (s *Store) q(query string) string {
	if !s.sqlite {
		return query
	}
	return strings.ReplaceAll(query, "$", "?")
}

// withTx runs fn in a transaction, committing when it returns nil.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// expectOne maps a zero row count on a compare-and-swap update to ErrConflict.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
