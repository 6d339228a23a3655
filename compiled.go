package d1q

import "context"

// CompiledQuery is an immutable (SQL, arguments) pair produced by
// compiling a plan, plus the name of the result shape it materializes
// into. The SQL text is exposed for diagnostics and testing.
type CompiledQuery struct {
	sql   string
	args  []any
	shape string
}

func newCompiled(sql string, args []any, shape string) *CompiledQuery {
	return &CompiledQuery{sql: sql, args: args, shape: shape}
}

// SQL returns the generated SQL text.
func (q *CompiledQuery) SQL() string {
	return q.sql
}

// Args returns the ordered positional argument list. The slice is a
// copy; the compiled query itself never changes after creation.
func (q *CompiledQuery) Args() []any {
	out := make([]any, len(q.args))
	copy(out, q.args)
	return out
}

// Shape returns the name of the result type the query materializes
// into.
func (q *CompiledQuery) Shape() string {
	return q.shape
}

// Statement returns the query as a batch statement.
func (q *CompiledQuery) Statement() Statement {
	return Statement{SQL: q.sql, Args: q.Args()}
}

// Query executes the compiled statement through the given executor.
func (q *CompiledQuery) Query(ctx context.Context, exec Executor) ([]Row, error) {
	return exec.Query(ctx, q.sql, q.args...)
}

// Exec executes the compiled statement for its side effects.
func (q *CompiledQuery) Exec(ctx context.Context, exec Executor) (ExecResult, error) {
	return exec.Exec(ctx, q.sql, q.args...)
}
