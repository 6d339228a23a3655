package d1q

import "context"

// Row is one result row as a named-value map, keyed by output column
// name.
type Row map[string]any

// ExecResult reports the outcome of a write statement.
type ExecResult struct {
	RowsAffected int64
	LastInsertID int64
}

// Statement is one compiled (SQL, arguments) pair, the unit handed to
// a batch executor. Argument order matches placeholder order.
type Statement struct {
	SQL  string
	Args []any
}

// Executor runs compiled statements against a database backend. The
// compiler depends only on this shape, never on backend internals:
// implementations may wrap an embedded engine or a remote HTTP
// service. Execution may block; it must honor context cancellation by
// aborting the in-flight request.
type Executor interface {
	// Query runs a statement expected to return rows.
	Query(ctx context.Context, sql string, args ...any) ([]Row, error)

	// Exec runs a statement for its side effects.
	Exec(ctx context.Context, sql string, args ...any) (ExecResult, error)
}

// BatchExecutor is implemented by executors that can run an ordered
// statement list as one unit. The compiler only supplies the ordered
// list; atomicity is the executor's contract.
type BatchExecutor interface {
	Batch(ctx context.Context, stmts []Statement) error
}
