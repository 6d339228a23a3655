package sqlgen

import (
	"fmt"

	"github.com/jdtoon/d1q/internal/qast"
)

// renderExpr translates a scalar expression, reusing the predicate
// translator's binding rules for literals. Nested binary expressions
// are parenthesized so operator precedence never depends on the SQL
// parser's defaults.
func renderExpr(expr qast.Expr, w *writer) error {
	switch e := expr.(type) {
	case qast.ColumnExpr:
		w.str(renderField(e.Field))
	case qast.ValueExpr:
		w.param(e.Value)
	case qast.BinaryExpr:
		if e.Left == nil || e.Right == nil {
			return NewTranslationError("binary expression", "missing operand")
		}
		if err := renderExprOperand(e.Left, w); err != nil {
			return err
		}
		w.str(" " + string(e.Op) + " ")
		return renderExprOperand(e.Right, w)
	default:
		return NewTranslationError(fmt.Sprintf("expression type %T", expr))
	}
	return nil
}

func renderExprOperand(expr qast.Expr, w *writer) error {
	if _, nested := expr.(qast.BinaryExpr); nested {
		w.str("(")
		if err := renderExpr(expr, w); err != nil {
			return err
		}
		w.str(")")
		return nil
	}
	return renderExpr(expr, w)
}

// renderProjection translates one SELECT-list entry. Direct column
// reads become `column AS alias`; computed expressions are wrapped as
// `(expr) AS alias`. The alias is always emitted so downstream
// row-to-struct mapping stays name-based.
func renderProjection(proj qast.Projection, w *writer) error {
	switch p := proj.(type) {
	case qast.ColumnProjection:
		alias := p.Alias
		if alias == "" {
			alias = p.Field.Name
		}
		w.str(renderField(p.Field) + " AS " + quoteIdentifier(alias))
	case qast.ComputedProjection:
		if p.Alias == "" {
			return NewTranslationError("computed projection", "output alias is required")
		}
		w.str("(")
		if err := renderExpr(p.Expr, w); err != nil {
			return err
		}
		w.str(") AS " + quoteIdentifier(p.Alias))
	default:
		return NewTranslationError(fmt.Sprintf("projection type %T", proj))
	}
	return nil
}

// renderSelectList emits the plan's projection list, or * when the
// plan selects whole entities.
func renderSelectList(projections []qast.Projection, w *writer) error {
	if len(projections) == 0 {
		w.str("*")
		return nil
	}
	for i, proj := range projections {
		if i > 0 {
			w.str(", ")
		}
		if err := renderProjection(proj, w); err != nil {
			return err
		}
	}
	return nil
}
