// Package d1local is an embedded SQLite executor for local
// development and tests. It adapts database/sql (with the pure-Go
// sqlite driver) to the d1q Executor contract, returning generic rows
// keyed by column name.
package d1local

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/jdtoon/d1q"
)

// DB wraps an embedded SQLite database. It satisfies both
// d1q.Executor and d1q.BatchExecutor.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at the given DSN. Use
// ":memory:" for a throwaway in-memory database.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	// The in-memory database vanishes when its sole connection
	// closes; pin the pool to one connection so every statement
	// sees the same database.
	db.SetMaxOpenConns(1)
	return &DB{db: db}, nil
}

// Close releases the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Query runs a SELECT and returns all result rows keyed by column
// name.
func (d *DB) Query(ctx context.Context, query string, args ...any) ([]d1q.Row, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var out []d1q.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make(d1q.Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Exec runs a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (d1q.ExecResult, error) {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return d1q.ExecResult{}, fmt.Errorf("exec: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return d1q.ExecResult{}, err
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return d1q.ExecResult{}, err
	}
	return d1q.ExecResult{RowsAffected: affected, LastInsertID: lastID}, nil
}

// Batch runs the statements inside a single transaction; any failure
// rolls the whole batch back.
func (d *DB) Batch(ctx context.Context, stmts []d1q.Statement) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
			tx.Rollback()
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return tx.Commit()
}
