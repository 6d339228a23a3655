package sqlgen

import "github.com/jdtoon/d1q/internal/qast"

// Compound compiles a set-operation plan. Each operand is compiled
// independently and its parameters concatenated in emission order, so
// positional binding stays aligned with placeholder order. Operands
// that carry their own ORDER BY/LIMIT/OFFSET are wrapped in a
// subquery: the dialect forbids those clauses on a bare operand of a
// compound SELECT.
func Compound(c *qast.CompoundPlan) (string, []any, error) {
	if err := c.Validate(); err != nil {
		return "", nil, NewTranslationError("compound plan", err.Error())
	}

	w := &writer{}
	if err := renderOperand(c.Base, w); err != nil {
		return "", nil, err
	}
	for _, op := range c.Operands {
		w.str(" " + string(op.Op) + " ")
		if err := renderOperand(op.Plan, w); err != nil {
			return "", nil, err
		}
	}

	renderOrdering(c.Ordering, w)
	renderPagination(c.Take, c.Skip, w)

	sql, args := w.result()
	return sql, args, nil
}

// CompoundCount wraps the composed statement as a subquery and counts
// its rows, mirroring the base planner's terminal-operation pattern.
func CompoundCount(c *qast.CompoundPlan) (string, []any, error) {
	inner, args, err := Compound(c)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM (" + inner + ") AS sub", args, nil
}

// CompoundExists wraps the composed statement as a subquery inside
// EXISTS.
func CompoundExists(c *qast.CompoundPlan) (string, []any, error) {
	inner, args, err := Compound(c)
	if err != nil {
		return "", nil, err
	}
	return "SELECT EXISTS(SELECT 1 FROM (" + inner + ") AS sub)", args, nil
}

// CompoundFirst wraps the composed statement as a subquery limited to
// the given number of rows.
func CompoundFirst(c *qast.CompoundPlan, limit int) (string, []any, error) {
	clone := *c
	clone.Take = &limit
	return Compound(&clone)
}

// renderOperand emits one operand SELECT, wrapping it when its own
// clauses would be illegal inside the compound statement.
func renderOperand(p *qast.Plan, w *writer) error {
	if p.HasPagination() {
		w.str("SELECT * FROM (")
		if err := renderSelect(p, w); err != nil {
			return err
		}
		w.str(") AS sub")
		return nil
	}
	return renderSelect(p, w)
}
