package sqlgen

import (
	"fmt"
	"strings"

	"github.com/jdtoon/d1q/internal/qast"
)

// renderAggregate translates an aggregate function call. The function
// set is a closed enum matched exhaustively; arguments may be columns
// or computed expressions and delegate to the expression translator,
// so parameters inside aggregate arguments bind through the same
// ordered walk as everything else.
func renderAggregate(agg qast.AggregateExpr, w *writer) (string, error) {
	switch agg.Fn {
	case qast.AggCount:
		if agg.Arg == nil {
			return "COUNT(*)", nil
		}
	case qast.AggSum, qast.AggAvg, qast.AggMin, qast.AggMax:
		if agg.Arg == nil {
			return "", NewTranslationError(string(agg.Fn), "aggregate requires an argument")
		}
	default:
		return "", NewTranslationError(fmt.Sprintf("aggregate function %q", agg.Fn))
	}

	var arg strings.Builder
	sub := &writer{}
	if err := renderExpr(agg.Arg, sub); err != nil {
		return "", err
	}
	argSQL, argArgs := sub.result()
	w.args = append(w.args, argArgs...)
	arg.WriteString(string(agg.Fn))
	arg.WriteString("(")
	arg.WriteString(argSQL)
	arg.WriteString(")")
	return arg.String(), nil
}

// renderGroupSelection translates one entry of a grouped projection:
// a grouping-key column or an aggregate, each aliased for name-based
// materialization.
func renderGroupSelection(sel qast.GroupSelection, w *writer) error {
	switch {
	case sel.Key != nil:
		alias := sel.Alias
		if alias == "" {
			alias = sel.Key.Name
		}
		w.str(renderField(*sel.Key) + " AS " + quoteIdentifier(alias))
	case sel.Agg != nil:
		if sel.Alias == "" {
			return NewTranslationError("aggregate projection", "output alias is required")
		}
		agg, err := renderAggregate(*sel.Agg, w)
		if err != nil {
			return err
		}
		w.str(agg + " AS " + quoteIdentifier(sel.Alias))
	default:
		return NewTranslationError("group projection", "entry is neither key nor aggregate")
	}
	return nil
}

// renderHaving joins HAVING conditions with AND inside the group
// projection context, where aggregate comparisons are legal.
func renderHaving(having []qast.ConditionItem, w *writer) error {
	if len(having) == 0 {
		return nil
	}
	w.str(" HAVING ")
	for i, cond := range having {
		if i > 0 {
			w.str(" AND ")
		}
		if err := renderCondition(cond, w, true); err != nil {
			return err
		}
	}
	return nil
}
