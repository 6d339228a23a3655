package d1q

import (
	"context"
	"fmt"

	"github.com/jdtoon/d1q/internal/qast"
	"github.com/jdtoon/d1q/internal/sqlgen"
)

// JoinQuery is a two-table query plan; because result rows mix
// columns from both sides, projections are mandatory and results come
// back as rows keyed by alias.
type JoinQuery struct {
	exec  Executor
	cache *Cache
	plan  qast.Plan
	err   error
}

func newJoinQuery[T any](q *Query[T], kind qast.JoinKind, inner Table, outerKey, innerKey Field) *JoinQuery {
	jq := &JoinQuery{exec: q.exec, cache: q.cache, plan: q.plan, err: q.err}
	if jq.err != nil {
		return jq
	}
	if inner.Name == "" {
		jq.err = fmt.Errorf("join requires an inner table")
		return jq
	}
	jq.plan.Join = &qast.JoinClause{
		Kind:     kind,
		Table:    inner,
		OuterKey: outerKey,
		InnerKey: innerKey,
	}
	return jq
}

// Outer qualifies a column as belonging to the join's outer table.
func (q *JoinQuery) Outer(f Field) Field {
	return f.Qualified(q.plan.Table.Name)
}

// Inner qualifies a column as belonging to the join's inner table.
func (q *JoinQuery) Inner(f Field) Field {
	if q.plan.Join == nil {
		return f
	}
	return f.Qualified(q.plan.Join.Table.Name)
}

// Err returns the first error recorded while building the plan.
func (q *JoinQuery) Err() error {
	return q.err
}

// Where adds a predicate over the joined shape. Columns should be
// qualified with Outer or Inner.
func (q *JoinQuery) Where(cond ConditionItem) *JoinQuery {
	if q.err != nil {
		return q
	}
	q.plan.Where = append(q.plan.Where, cond)
	return q
}

// Select sets the result projections. A join has no default
// projection: every output column must be named.
func (q *JoinQuery) Select(projections ...Projection) *JoinQuery {
	if q.err != nil {
		return q
	}
	if len(projections) == 0 {
		q.err = fmt.Errorf("Select requires at least one projection")
		return q
	}
	q.plan.Projections = append([]qast.Projection(nil), projections...)
	return q
}

// OrderBy resets the ordering to ascending on the column.
func (q *JoinQuery) OrderBy(f Field) *JoinQuery {
	if q.err != nil {
		return q
	}
	q.plan.Ordering = []qast.OrderBy{{Field: f, Direction: qast.ASC}}
	return q
}

// OrderByDesc resets the ordering to descending on the column.
func (q *JoinQuery) OrderByDesc(f Field) *JoinQuery {
	if q.err != nil {
		return q
	}
	q.plan.Ordering = []qast.OrderBy{{Field: f, Direction: qast.DESC}}
	return q
}

// ThenBy appends an ascending tiebreaker to the current ordering.
func (q *JoinQuery) ThenBy(f Field) *JoinQuery {
	return q.appendOrder(f, qast.ASC)
}

// ThenByDesc appends a descending tiebreaker to the current ordering.
func (q *JoinQuery) ThenByDesc(f Field) *JoinQuery {
	return q.appendOrder(f, qast.DESC)
}

func (q *JoinQuery) appendOrder(f Field, dir Direction) *JoinQuery {
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
func (q *JoinQuery) Take(n int) *JoinQuery {
	if q.err != nil {
		return q
	}
	q.plan.Take = &n
	return q
}

// Skip discards the first n rows.
func (q *JoinQuery) Skip(n int) *JoinQuery {
	if q.err != nil {
		return q
	}
	q.plan.Skip = &n
	return q
}

// Compile translates the plan to its SELECT form without executing
// it.
func (q *JoinQuery) Compile() (*CompiledQuery, error) {
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
func (q *JoinQuery) All(ctx context.Context) ([]Row, error) {
	compiled, err := q.Compile()
	if err != nil {
		return nil, err
	}
	return compiled.Query(ctx, q.exec)
}

// First executes the plan limited to one row, or ErrNoRows.
func (q *JoinQuery) First(ctx context.Context) (Row, error) {
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

// Count executes the plan's derived COUNT(*) form; it counts joined
// rows, so an outer row matching three inner rows counts three times.
func (q *JoinQuery) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	sql, args, err := sqlgen.Count(&q.plan)
	if err != nil {
		return 0, err
	}
	return scanScalar(ctx, q.exec, newCompiled(sql, args, rowShape))
}

// Any executes the plan's derived EXISTS form.
func (q *JoinQuery) Any(ctx context.Context) (bool, error) {
	if q.err != nil {
		return false, q.err
	}
	sql, args, err := sqlgen.Exists(&q.plan)
	if err != nil {
		return false, err
	}
	n, err := scanScalar(ctx, q.exec, newCompiled(sql, args, rowShape))
	if err != nil {
		return false, err
	}
	return n != 0, nil
}
