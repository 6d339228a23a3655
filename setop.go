package d1q

import (
	"context"
	"fmt"

	"github.com/jdtoon/d1q/internal/qast"
	"github.com/jdtoon/d1q/internal/sqlgen"
)

// SetQuery composes same-shaped plans with UNION, UNION ALL,
// INTERSECT or EXCEPT. Operators apply left to right; operands that
// carry their own ORDER BY or pagination are wrapped in subqueries so
// those clauses bind to the operand, not the whole compound.
type SetQuery[T any] struct {
	exec  Executor
	cache *Cache
	plan  qast.CompoundPlan
	err   error
}

func newSetQuery[T any](base *Query[T], op qast.SetOperator, other *Query[T]) *SetQuery[T] {
	sq := &SetQuery[T]{exec: base.exec, cache: base.cache, err: base.err}
	if sq.err == nil && other != nil && other.err != nil {
		sq.err = other.err
	}
	if sq.err != nil {
		return sq
	}
	if other == nil {
		sq.err = fmt.Errorf("set operation requires a second query")
		return sq
	}
	basePlan := base.plan
	otherPlan := other.plan
	sq.plan = qast.CompoundPlan{
		Base:     &basePlan,
		Operands: []qast.CompoundOperand{{Op: op, Plan: &otherPlan}},
	}
	return sq
}

// Err returns the first error recorded while building the plan.
func (q *SetQuery[T]) Err() error {
	return q.err
}

func (q *SetQuery[T]) compose(op qast.SetOperator, other *Query[T]) *SetQuery[T] {
	if q.err != nil {
		return q
	}
	if other == nil {
		q.err = fmt.Errorf("set operation requires a second query")
		return q
	}
	if other.err != nil {
		q.err = other.err
		return q
	}
	plan := other.plan
	q.plan.Operands = append(q.plan.Operands, qast.CompoundOperand{Op: op, Plan: &plan})
	return q
}

// Union appends another operand with UNION.
func (q *SetQuery[T]) Union(other *Query[T]) *SetQuery[T] {
	return q.compose(qast.SetUnion, other)
}

// UnionAll appends another operand with UNION ALL.
func (q *SetQuery[T]) UnionAll(other *Query[T]) *SetQuery[T] {
	return q.compose(qast.SetUnionAll, other)
}

// Intersect appends another operand with INTERSECT.
func (q *SetQuery[T]) Intersect(other *Query[T]) *SetQuery[T] {
	return q.compose(qast.SetIntersect, other)
}

// Except appends another operand with EXCEPT.
func (q *SetQuery[T]) Except(other *Query[T]) *SetQuery[T] {
	return q.compose(qast.SetExcept, other)
}

// OrderBy resets the compound result's ordering to ascending on the
// column. Compound ordering refers to output columns, so the column
// is emitted unqualified.
func (q *SetQuery[T]) OrderBy(f Field) *SetQuery[T] {
	if q.err != nil {
		return q
	}
	q.plan.Ordering = []qast.OrderBy{{Field: qast.Field{Name: f.Name}, Direction: qast.ASC}}
	return q
}

// OrderByDesc resets the compound result's ordering to descending on
// the column.
func (q *SetQuery[T]) OrderByDesc(f Field) *SetQuery[T] {
	if q.err != nil {
		return q
	}
	q.plan.Ordering = []qast.OrderBy{{Field: qast.Field{Name: f.Name}, Direction: qast.DESC}}
	return q
}

// ThenBy appends an ascending tiebreaker to the compound ordering.
func (q *SetQuery[T]) ThenBy(f Field) *SetQuery[T] {
	if q.err != nil {
		return q
	}
	if len(q.plan.Ordering) == 0 {
		q.err = fmt.Errorf("ThenBy requires a preceding OrderBy")
		return q
	}
	q.plan.Ordering = append(q.plan.Ordering, qast.OrderBy{Field: qast.Field{Name: f.Name}, Direction: qast.ASC})
	return q
}

// Take limits the compound result to n rows.
func (q *SetQuery[T]) Take(n int) *SetQuery[T] {
	if q.err != nil {
		return q
	}
	q.plan.Take = &n
	return q
}

// Skip discards the first n rows of the compound result.
func (q *SetQuery[T]) Skip(n int) *SetQuery[T] {
	if q.err != nil {
		return q
	}
	q.plan.Skip = &n
	return q
}

// Compile translates the compound plan without executing it.
func (q *SetQuery[T]) Compile() (*CompiledQuery, error) {
	return q.compileWith(sqlgen.Compound)
}

func (q *SetQuery[T]) compileWith(gen func(*qast.CompoundPlan) (string, []any, error)) (*CompiledQuery, error) {
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
			Fingerprint(q.plan.Base.Table.Name, shape, sql, args),
			func() (*CompiledQuery, error) {
				return newCompiled(sql, args, shape), nil
			})
	}
	return newCompiled(sql, args, shape), nil
}

// All executes the compound plan and materializes every row.
func (q *SetQuery[T]) All(ctx context.Context) ([]T, error) {
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

// First executes the compound plan limited to one row, or ErrNoRows.
func (q *SetQuery[T]) First(ctx context.Context) (T, error) {
	var zero T
	compiled, err := q.compileWith(func(c *qast.CompoundPlan) (string, []any, error) {
		return sqlgen.CompoundFirst(c, 1)
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

// Count counts the compound result's rows, deduplication included.
func (q *SetQuery[T]) Count(ctx context.Context) (int64, error) {
	compiled, err := q.compileWith(sqlgen.CompoundCount)
	if err != nil {
		return 0, err
	}
	return scanScalar(ctx, q.exec, compiled)
}

// Any reports whether the compound result has at least one row.
func (q *SetQuery[T]) Any(ctx context.Context) (bool, error) {
	compiled, err := q.compileWith(sqlgen.CompoundExists)
	if err != nil {
		return false, err
	}
	n, err := scanScalar(ctx, q.exec, compiled)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}
