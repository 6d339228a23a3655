package d1q

import (
	"context"
	"fmt"

	"github.com/jdtoon/d1q/internal/qast"
	"github.com/jdtoon/d1q/internal/sqlgen"
)

// GroupQuery is a grouped query plan. Its result shape is one row per
// group, carrying the key columns and any aggregates named in Select.
type GroupQuery struct {
	exec  Executor
	cache *Cache
	plan  qast.Plan
	err   error
}

// Err returns the first error recorded while building the plan.
func (q *GroupQuery) Err() error {
	return q.err
}

// Select sets the per-group output: group keys via Key/KeyAs and
// aggregates via Agg. Without it, the query returns the bare key
// columns.
func (q *GroupQuery) Select(selections ...GroupSelection) *GroupQuery {
	if q.err != nil {
		return q
	}
	if len(selections) == 0 {
		q.err = fmt.Errorf("Select requires at least one group selection")
		return q
	}
	q.plan.GroupSels = append([]qast.GroupSelection(nil), selections...)
	return q
}

// Having filters groups by aggregate conditions; multiple calls
// conjoin with AND. Row-level predicates belong in Where before
// GroupBy, not here.
func (q *GroupQuery) Having(conds ...AggregateCondition) *GroupQuery {
	if q.err != nil {
		return q
	}
	if len(conds) == 0 {
		q.err = fmt.Errorf("Having requires at least one aggregate condition")
		return q
	}
	for _, c := range conds {
		q.plan.Having = append(q.plan.Having, c)
	}
	return q
}

// OrderBy resets the ordering to ascending on the column, which may
// be a group key or an aggregate alias.
func (q *GroupQuery) OrderBy(f Field) *GroupQuery {
	if q.err != nil {
		return q
	}
	q.plan.Ordering = []qast.OrderBy{{Field: f, Direction: qast.ASC}}
	return q
}

// OrderByDesc resets the ordering to descending on the column.
func (q *GroupQuery) OrderByDesc(f Field) *GroupQuery {
	if q.err != nil {
		return q
	}
	q.plan.Ordering = []qast.OrderBy{{Field: f, Direction: qast.DESC}}
	return q
}

// Take limits the result to n groups.
func (q *GroupQuery) Take(n int) *GroupQuery {
	if q.err != nil {
		return q
	}
	q.plan.Take = &n
	return q
}

// Skip discards the first n groups.
func (q *GroupQuery) Skip(n int) *GroupQuery {
	if q.err != nil {
		return q
	}
	q.plan.Skip = &n
	return q
}

// Compile translates the plan to its SELECT form without executing
// it.
func (q *GroupQuery) Compile() (*CompiledQuery, error) {
	if q.err != nil {
		return nil, q.err
	}
	p := q.planWithDefaults()
	sql, args, err := sqlgen.Select(p)
	if err != nil {
		return nil, err
	}
	if q.cache != nil {
		return q.cache.GetOrCompile(
			Fingerprint(p.Table.Name, rowShape, sql, args),
			func() (*CompiledQuery, error) {
				return newCompiled(sql, args, rowShape), nil
			})
	}
	return newCompiled(sql, args, rowShape), nil
}

// All executes the plan and returns one row per group.
func (q *GroupQuery) All(ctx context.Context) ([]Row, error) {
	compiled, err := q.Compile()
	if err != nil {
		return nil, err
	}
	return compiled.Query(ctx, q.exec)
}

// First executes the plan limited to one group, or ErrNoRows.
func (q *GroupQuery) First(ctx context.Context) (Row, error) {
	if q.err != nil {
		return nil, q.err
	}
	sql, args, err := sqlgen.First(q.planWithDefaults(), 1)
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

// Count executes the plan's derived COUNT form. It counts groups, not
// source rows: the grouped query runs as a subquery and its result
// rows are counted.
func (q *GroupQuery) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	sql, args, err := sqlgen.Count(q.planWithDefaults())
	if err != nil {
		return 0, err
	}
	return scanScalar(ctx, q.exec, newCompiled(sql, args, rowShape))
}

// Any reports whether at least one group exists.
func (q *GroupQuery) Any(ctx context.Context) (bool, error) {
	if q.err != nil {
		return false, q.err
	}
	sql, args, err := sqlgen.Exists(q.planWithDefaults())
	if err != nil {
		return false, err
	}
	n, err := scanScalar(ctx, q.exec, newCompiled(sql, args, rowShape))
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// planWithDefaults fills the select list with the bare group keys
// when Select was never called. Plans stay append-only: the default
// goes on a copy.
func (q *GroupQuery) planWithDefaults() *qast.Plan {
	if len(q.plan.GroupSels) > 0 {
		return &q.plan
	}
	clone := q.plan
	clone.GroupSels = make([]qast.GroupSelection, len(clone.GroupBy))
	for i := range clone.GroupBy {
		clone.GroupSels[i] = qast.GroupSelection{Key: &clone.GroupBy[i]}
	}
	return &clone
}
