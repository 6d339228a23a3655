package qast

import "fmt"

// Direction represents sort direction.
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// OrderBy is one ordering pair of an ORDER BY clause.
type OrderBy struct {
	Field     Field
	Direction Direction
}

// JoinKind represents the supported join kinds.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
)

// JoinClause joins a second table on a single equality key pair.
type JoinClause struct {
	Kind     JoinKind
	Table    Table
	OuterKey Field
	InnerKey Field
}

// SetOperator represents SQL set operations between query plans.
type SetOperator string

const (
	SetUnion     SetOperator = "UNION"
	SetUnionAll  SetOperator = "UNION ALL"
	SetIntersect SetOperator = "INTERSECT"
	SetExcept    SetOperator = "EXCEPT"
)

// Plan is the in-memory representation of one SELECT, accumulated by
// the planner builders and handed to the SQL generator. Plans are
// append-only: clauses are added through builder methods and never
// retracted, matching the target SQL's own clause model.
//
//nolint:govet // fieldalignment: clause order mirrors emission order
type Plan struct {
	Table       Table
	Where       []ConditionItem // AND-joined
	Ordering    []OrderBy
	Take        *int
	Skip        *int
	Distinct    bool
	Projections []Projection // nil means SELECT *

	Join *JoinClause

	GroupBy   []Field
	GroupSels []GroupSelection
	Having    []ConditionItem // AggregateConditions only
}

// HasPagination reports whether the plan carries ORDER BY, LIMIT or
// OFFSET. Such plans must be wrapped in a subquery before they can be
// used as a set-operation operand.
func (p *Plan) HasPagination() bool {
	return len(p.Ordering) > 0 || p.Take != nil || p.Skip != nil
}

// Validate performs structural validation on the plan.
func (p *Plan) Validate() error {
	if p.Table.Name == "" {
		return fmt.Errorf("source table is required")
	}

	if len(p.Having) > 0 && len(p.GroupBy) == 0 {
		return fmt.Errorf("HAVING requires GROUP BY")
	}
	if len(p.GroupSels) > 0 && len(p.GroupBy) == 0 {
		return fmt.Errorf("group projection requires GROUP BY")
	}

	for _, h := range p.Having {
		if _, ok := h.(AggregateCondition); !ok {
			return fmt.Errorf("HAVING accepts aggregate conditions only, got %T", h)
		}
	}

	if p.Join != nil {
		if p.Join.Table.Name == "" {
			return fmt.Errorf("join table is required")
		}
		if p.Join.OuterKey.Name == "" || p.Join.InnerKey.Name == "" {
			return fmt.Errorf("join requires both key columns")
		}
		// Every projected column must be traceable to one of the two
		// tables, or the emitted SELECT would be ambiguous.
		for _, proj := range p.Projections {
			cp, ok := proj.(ColumnProjection)
			if !ok {
				continue
			}
			if cp.Field.Table != p.Table.Name && cp.Field.Table != p.Join.Table.Name {
				return fmt.Errorf("column %q is not addressed to either joined table", cp.Field.Name)
			}
		}
	}

	return nil
}

// CompoundPlan composes independent plans with set operations. The
// base plan is the first operand; operators apply left to right in
// call order, matching the dialect's left-associative evaluation.
//
//nolint:govet // fieldalignment: clause order mirrors emission order
type CompoundPlan struct {
	Base     *Plan
	Operands []CompoundOperand

	// Trailing clauses applied to the composed result.
	Ordering []OrderBy
	Take     *int
	Skip     *int
}

// CompoundOperand is one (operator, plan) pair of a compound query.
type CompoundOperand struct {
	Op   SetOperator
	Plan *Plan
}

// Validate checks every operand plan.
func (c *CompoundPlan) Validate() error {
	if c.Base == nil {
		return fmt.Errorf("compound query requires a base plan")
	}
	if err := c.Base.Validate(); err != nil {
		return fmt.Errorf("base operand: %w", err)
	}
	for i, op := range c.Operands {
		if op.Plan == nil {
			return fmt.Errorf("operand %d is nil", i+1)
		}
		if err := op.Plan.Validate(); err != nil {
			return fmt.Errorf("operand %d: %w", i+1, err)
		}
	}
	return nil
}
