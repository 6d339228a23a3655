package d1q

import (
	"context"
	"fmt"
	"iter"
	"reflect"

	"github.com/jdtoon/d1q/internal/qast"
	"github.com/jdtoon/d1q/internal/sqlgen"
)

// Query is a typed query plan over one source table. Building is pure
// and synchronous; nothing touches the executor until a terminal
// operation runs. Plans are append-only: clauses accumulate and are
// never retracted.
type Query[T any] struct {
	exec  Executor
	cache *Cache
	plan  qast.Plan
	err   error
}

// From creates a query plan over the given table, returning entities
// of type T.
func From[T any](exec Executor, t Table) *Query[T] {
	return &Query[T]{
		exec: exec,
		plan: qast.Plan{Table: t},
	}
}

// WithCache attaches a compiled-query cache; subsequent compilations
// of this plan go through it.
func (q *Query[T]) WithCache(c *Cache) *Query[T] {
	q.cache = c
	return q
}

// Err returns the first error recorded while building the plan.
func (q *Query[T]) Err() error {
	return q.err
}

// Where adds a predicate. Multiple calls conjoin with AND.
func (q *Query[T]) Where(cond ConditionItem) *Query[T] {
	if q.err != nil {
		return q
	}
	if cond == nil {
		q.err = fmt.Errorf("Where requires a condition")
		return q
	}
	q.plan.Where = append(q.plan.Where, cond)
	return q
}

// OrderBy resets the ordering to ascending on the column.
func (q *Query[T]) OrderBy(f Field) *Query[T] {
	return q.resetOrder(f, qast.ASC)
}

// OrderByDesc resets the ordering to descending on the column.
func (q *Query[T]) OrderByDesc(f Field) *Query[T] {
	return q.resetOrder(f, qast.DESC)
}

// ThenBy appends an ascending tiebreaker to the current ordering.
func (q *Query[T]) ThenBy(f Field) *Query[T] {
	return q.appendOrder(f, qast.ASC)
}

// ThenByDesc appends a descending tiebreaker to the current ordering.
func (q *Query[T]) ThenByDesc(f Field) *Query[T] {
	return q.appendOrder(f, qast.DESC)
}

func (q *Query[T]) resetOrder(f Field, dir Direction) *Query[T] {
	if q.err != nil {
		return q
	}
	q.plan.Ordering = []qast.OrderBy{{Field: f, Direction: dir}}
	return q
}

func (q *Query[T]) appendOrder(f Field, dir Direction) *Query[T] {
	if q.err != nil {
		return q
	}
	if len(q.plan.Ordering) == 0 {
		q.err = fmt.Errorf("ThenBy requires a preceding OrderBy")
		return q
	}
	q.plan.Ordering = append(q.plan.Ordering, qast.OrderBy{Field: f, Direction: dir})
	return q
}

// Take limits the result to n rows.
func (q *Query[T]) Take(n int) *Query[T] {
	if q.err != nil {
		return q
	}
	q.plan.Take = &n
	return q
}

// Skip discards the first n rows. Without Take, the compiler emits
// the dialect's unlimited-limit marker so OFFSET stays legal.
func (q *Query[T]) Skip(n int) *Query[T] {
	if q.err != nil {
		return q
	}
	q.plan.Skip = &n
	return q
}

// Distinct deduplicates result rows.
func (q *Query[T]) Distinct() *Query[T] {
	if q.err != nil {
		return q
	}
	q.plan.Distinct = true
	return q
}

// Select switches the query to a projected shape; results come back
// as rows keyed by the projection aliases.
func (q *Query[T]) Select(projections ...Projection) *RowQuery {
	rq := &RowQuery{exec: q.exec, cache: q.cache, plan: q.plan, err: q.err}
	if rq.err != nil {
		return rq
	}
	if len(projections) == 0 {
		rq.err = fmt.Errorf("Select requires at least one projection")
		return rq
	}
	rq.plan.Projections = append([]qast.Projection(nil), projections...)
	return rq
}

// GroupBy switches the query to a grouped shape keyed by one or more
// columns.
func (q *Query[T]) GroupBy(keys ...Field) *GroupQuery {
	gq := &GroupQuery{exec: q.exec, cache: q.cache, plan: q.plan, err: q.err}
	if gq.err != nil {
		return gq
	}
	if len(keys) == 0 {
		gq.err = fmt.Errorf("GroupBy requires at least one key column")
		return gq
	}
	gq.plan.GroupBy = append([]qast.Field(nil), keys...)
	return gq
}

// Join combines the query with a second table by inner equality join
// on one key pair.
func (q *Query[T]) Join(inner Table, outerKey, innerKey Field) *JoinQuery {
	return newJoinQuery(q, qast.InnerJoin, inner, outerKey, innerKey)
}

// LeftJoin combines the query with a second table by left equality
// join; rows without an inner match survive with NULL inner columns.
func (q *Query[T]) LeftJoin(inner Table, outerKey, innerKey Field) *JoinQuery {
	return newJoinQuery(q, qast.LeftJoin, inner, outerKey, innerKey)
}

// Union composes this plan with another using UNION.
func (q *Query[T]) Union(other *Query[T]) *SetQuery[T] {
	return newSetQuery(q, qast.SetUnion, other)
}

// UnionAll composes this plan with another using UNION ALL.
func (q *Query[T]) UnionAll(other *Query[T]) *SetQuery[T] {
	return newSetQuery(q, qast.SetUnionAll, other)
}

// Intersect composes this plan with another using INTERSECT.
func (q *Query[T]) Intersect(other *Query[T]) *SetQuery[T] {
	return newSetQuery(q, qast.SetIntersect, other)
}

// Except composes this plan with another using EXCEPT.
func (q *Query[T]) Except(other *Query[T]) *SetQuery[T] {
	return newSetQuery(q, qast.SetExcept, other)
}

// Compile translates the plan to its SELECT form without executing
// it, going through the attached cache when one is set.
func (q *Query[T]) Compile() (*CompiledQuery, error) {
	return q.compile(sqlgen.Select)
}

func (q *Query[T]) compile(gen func(*qast.Plan) (string, []any, error)) (*CompiledQuery, error) {
	if q.err != nil {
		return nil, q.err
	}
	sql, args, err := gen(&q.plan)
	if err != nil {
		return nil, err
	}
	shape := shapeName[T]()
	if q.cache != nil {
		return q.cache.GetOrCompile(
			Fingerprint(q.plan.Table.Name, shape, sql, args),
			func() (*CompiledQuery, error) {
				return newCompiled(sql, args, shape), nil
			})
	}
	return newCompiled(sql, args, shape), nil
}

// All executes the plan and materializes every row.
func (q *Query[T]) All(ctx context.Context) ([]T, error) {
	compiled, err := q.Compile()
	if err != nil {
		return nil, err
	}
	rows, err := compiled.Query(ctx, q.exec)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		entity, err := Materialize[T](row)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// First executes the plan limited to one row and returns it, or
// ErrNoRows.
func (q *Query[T]) First(ctx context.Context) (T, error) {
	var zero T
	compiled, err := q.compile(func(p *qast.Plan) (string, []any, error) {
		return sqlgen.First(p, 1)
	})
	if err != nil {
		return zero, err
	}
	rows, err := compiled.Query(ctx, q.exec)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, ErrNoRows
	}
	return Materialize[T](rows[0])
}

// Single executes the plan limited to two rows and requires exactly
// one match: zero rows is ErrNoRows, more than one is
// ErrMultipleRows.
func (q *Query[T]) Single(ctx context.Context) (T, error) {
	var zero T
	compiled, err := q.compile(func(p *qast.Plan) (string, []any, error) {
		return sqlgen.First(p, 2)
	})
	if err != nil {
		return zero, err
	}
	rows, err := compiled.Query(ctx, q.exec)
	if err != nil {
		return zero, err
	}
	switch len(rows) {
	case 0:
		return zero, ErrNoRows
	case 1:
		return Materialize[T](rows[0])
	default:
		return zero, ErrMultipleRows
	}
}

// Count executes the plan's derived COUNT(*) form. Distinct, Take and
// Skip are not consulted: the count covers the unpaginated row set.
func (q *Query[T]) Count(ctx context.Context) (int64, error) {
	compiled, err := q.compile(sqlgen.Count)
	if err != nil {
		return 0, err
	}
	return scanScalar(ctx, q.exec, compiled)
}

// Any executes the plan's derived EXISTS form. Like Count, it ignores
// Distinct, Take and Skip.
func (q *Query[T]) Any(ctx context.Context) (bool, error) {
	compiled, err := q.compile(sqlgen.Exists)
	if err != nil {
		return false, err
	}
	n, err := scanScalar(ctx, q.exec, compiled)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// Stream executes the plan and yields entities one at a time. Each
// call to Stream compiles and executes afresh, so iteration is
// restartable; a single returned sequence is not safe for concurrent
// enumeration.
func (q *Query[T]) Stream(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		compiled, err := q.Compile()
		if err != nil {
			yield(zero, err)
			return
		}
		rows, err := compiled.Query(ctx, q.exec)
		if err != nil {
			yield(zero, err)
			return
		}
		for _, row := range rows {
			entity, err := Materialize[T](row)
			if !yield(entity, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// RowQuery is a projected query plan; results are rows keyed by
// projection alias rather than whole entities.
type RowQuery struct {
	exec  Executor
	cache *Cache
	plan  qast.Plan
	err   error
}

// Err returns the first error recorded while building the plan.
func (q *RowQuery) Err() error {
	return q.err
}

// Where adds a predicate. Multiple calls conjoin with AND.
func (q *RowQuery) Where(cond ConditionItem) *RowQuery {
	if q.err != nil {
		return q
	}
	q.plan.Where = append(q.plan.Where, cond)
	return q
}

// OrderBy resets the ordering to ascending on the column.
func (q *RowQuery) OrderBy(f Field) *RowQuery {
	if q.err != nil {
		return q
	}
	q.plan.Ordering = []qast.OrderBy{{Field: f, Direction: qast.ASC}}
	return q
}

// OrderByDesc resets the ordering to descending on the column.
func (q *RowQuery) OrderByDesc(f Field) *RowQuery {
	if q.err != nil {
		return q
	}
	q.plan.Ordering = []qast.OrderBy{{Field: f, Direction: qast.DESC}}
	return q
}

// ThenBy appends an ascending tiebreaker to the current ordering.
func (q *RowQuery) ThenBy(f Field) *RowQuery {
	return q.appendRowOrder(f, qast.ASC)
}

// ThenByDesc appends a descending tiebreaker to the current ordering.
func (q *RowQuery) ThenByDesc(f Field) *RowQuery {
	return q.appendRowOrder(f, qast.DESC)
}

func (q *RowQuery) appendRowOrder(f Field, dir Direction) *RowQuery {
	if q.err != nil {
		return q
	}
	if len(q.plan.Ordering) == 0 {
		q.err = fmt.Errorf("ThenBy requires a preceding OrderBy")
		return q
	}
	q.plan.Ordering = append(q.plan.Ordering, qast.OrderBy{Field: f, Direction: dir})
	return q
}

// Take limits the result to n rows.
func (q *RowQuery) Take(n int) *RowQuery {
	if q.err != nil {
		return q
	}
	q.plan.Take = &n
	return q
}

// Skip discards the first n rows.
func (q *RowQuery) Skip(n int) *RowQuery {
	if q.err != nil {
		return q
	}
	q.plan.Skip = &n
	return q
}

// Distinct deduplicates result rows.
func (q *RowQuery) Distinct() *RowQuery {
	if q.err != nil {
		return q
	}
	q.plan.Distinct = true
	return q
}

// Compile translates the plan to its SELECT form without executing
// it.
func (q *RowQuery) Compile() (*CompiledQuery, error) {
	if q.err != nil {
		return nil, q.err
	}
	sql, args, err := sqlgen.Select(&q.plan)
	if err != nil {
		return nil, err
	}
	if q.cache != nil {
		return q.cache.GetOrCompile(
			Fingerprint(q.plan.Table.Name, rowShape, sql, args),
			func() (*CompiledQuery, error) {
				return newCompiled(sql, args, rowShape), nil
			})
	}
	return newCompiled(sql, args, rowShape), nil
}

// All executes the plan and returns every row.
func (q *RowQuery) All(ctx context.Context) ([]Row, error) {
	compiled, err := q.Compile()
	if err != nil {
		return nil, err
	}
	return compiled.Query(ctx, q.exec)
}

// First executes the plan limited to one row, or ErrNoRows.
func (q *RowQuery) First(ctx context.Context) (Row, error) {
	if q.err != nil {
		return nil, q.err
	}
	sql, args, err := sqlgen.First(&q.plan, 1)
	if err != nil {
		return nil, err
	}
	rows, err := q.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// Count executes the plan's derived COUNT(*) form.
func (q *RowQuery) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	sql, args, err := sqlgen.Count(&q.plan)
	if err != nil {
		return 0, err
	}
	return scanScalar(ctx, q.exec, newCompiled(sql, args, rowShape))
}

const rowShape = "d1q.Row"

func shapeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// scanScalar runs a single-value query (COUNT, EXISTS) and extracts
// the one integer it returns.
func scanScalar(ctx context.Context, exec Executor, compiled *CompiledQuery) (int64, error) {
	rows, err := compiled.Query(ctx, exec)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("scalar query returned no rows")
	}
	for _, v := range rows[0] {
		switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case float64:
			return int64(n), nil
		case bool:
			if n {
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, fmt.Errorf("scalar query returned no numeric column")
}
