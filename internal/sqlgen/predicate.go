package sqlgen

import (
	"fmt"
	"strings"

	"github.com/jdtoon/d1q/internal/qast"
)

// writer accumulates SQL text and the ordered positional argument
// list. Placeholders are appended strictly left to right during the
// AST walk, so len(args) always equals the number of "?" emitted.
type writer struct {
	sql  strings.Builder
	args []any
}

func (w *writer) str(s string) {
	w.sql.WriteString(s)
}

// param binds a value and emits its placeholder.
func (w *writer) param(v any) {
	w.args = append(w.args, v)
	w.sql.WriteString("?")
}

func (w *writer) result() (string, []any) {
	return w.sql.String(), w.args
}

// quoteIdentifier quotes an identifier with double quotes, escaping
// any embedded quotes by doubling them.
func quoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, `"`, `""`)
	return `"` + escaped + `"`
}

func renderTable(t qast.Table) string {
	return quoteIdentifier(t.Name)
}

func renderField(f qast.Field) string {
	quoted := quoteIdentifier(f.Name)
	if f.Table != "" {
		return quoteIdentifier(f.Table) + "." + quoted
	}
	return quoted
}

// renderCondition translates one predicate node into a SQL boolean
// expression, binding literal values as positional parameters.
// Aggregate conditions are rejected unless inHaving is set: they only
// make sense inside a group projection context.
func renderCondition(cond qast.ConditionItem, w *writer, inHaving bool) error {
	switch c := cond.(type) {
	case qast.Condition:
		return renderComparison(c, w)
	case qast.ConditionGroup:
		if len(c.Conditions) == 0 {
			return NewTranslationError("condition group", "group has no operands")
		}
		w.str("(")
		for i, sub := range c.Conditions {
			if i > 0 {
				w.str(" " + string(c.Logic) + " ")
			}
			if err := renderCondition(sub, w, inHaving); err != nil {
				return err
			}
		}
		w.str(")")
	case qast.NotCondition:
		if c.Cond == nil {
			return NewTranslationError("NOT", "missing operand")
		}
		w.str("NOT (")
		if err := renderCondition(c.Cond, w, inHaving); err != nil {
			return err
		}
		w.str(")")
	case qast.LikeCondition:
		renderLike(c, w)
	case qast.InCondition:
		renderIn(c, w)
	case qast.FieldComparison:
		w.str(renderField(c.LeftField))
		w.str(" " + string(c.Operator) + " ")
		w.str(renderField(c.RightField))
	case qast.AggregateCondition:
		if !inHaving {
			return NewTranslationError("aggregate condition",
				"aggregate comparisons are only valid in HAVING")
		}
		agg, err := renderAggregate(c.Agg, w)
		if err != nil {
			return err
		}
		w.str(agg)
		w.str(" " + string(c.Operator) + " ")
		w.param(c.Value)
	default:
		return NewTranslationError(fmt.Sprintf("condition type %T", cond))
	}
	return nil
}

// renderComparison handles a column-vs-literal comparison. Equality and
// inequality against a nil literal emit IS [NOT] NULL and contribute no
// parameter; NULL is never bound.
func renderComparison(c qast.Condition, w *writer) error {
	field := renderField(c.Field)

	if c.Value == nil {
		switch c.Operator {
		case qast.EQ:
			w.str(field + " IS NULL")
			return nil
		case qast.NE:
			w.str(field + " IS NOT NULL")
			return nil
		default:
			return NewTranslationError(
				fmt.Sprintf("%s %s NULL", c.Field.Name, c.Operator),
				"only = and != compare against a null literal")
		}
	}

	switch c.Operator {
	case qast.EQ, qast.NE, qast.GT, qast.GE, qast.LT, qast.LE:
		w.str(field + " " + string(c.Operator) + " ")
		w.param(c.Value)
		return nil
	default:
		return NewTranslationError(fmt.Sprintf("operator %q", c.Operator))
	}
}

// renderLike emits "col LIKE ?" with the anchored pattern bound as a
// single parameter.
func renderLike(c qast.LikeCondition, w *writer) {
	var pattern string
	switch c.Anchor {
	case qast.AnchorStarts:
		pattern = c.Pattern + "%"
	case qast.AnchorEnds:
		pattern = "%" + c.Pattern
	default:
		pattern = "%" + c.Pattern + "%"
	}
	w.str(renderField(c.Field) + " LIKE ")
	w.param(pattern)
}

// renderIn expands the value list into one placeholder per element.
// An empty list emits "IN ()", which parses and matches zero rows.
func renderIn(c qast.InCondition, w *writer) {
	w.str(renderField(c.Field) + " IN (")
	for i, v := range c.Values {
		if i > 0 {
			w.str(", ")
		}
		w.param(v)
	}
	w.str(")")
}

// renderWhere joins the plan's accumulated predicates with AND.
func renderWhere(where []qast.ConditionItem, w *writer) error {
	if len(where) == 0 {
		return nil
	}
	w.str(" WHERE ")
	for i, cond := range where {
		if i > 0 {
			w.str(" AND ")
		}
		if err := renderCondition(cond, w, false); err != nil {
			return err
		}
	}
	return nil
}
