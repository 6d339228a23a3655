package d1q

import (
	"fmt"

	"github.com/jdtoon/d1q/internal/qast"
)

// C creates a comparison between a column and a literal value. The
// value is captured now and bound as a positional parameter at compile
// time. A nil value with EQ or NE compiles to IS NULL / IS NOT NULL.
func C(f Field, op Operator, value any) qast.Condition {
	return qast.Condition{
		Field:    f,
		Operator: op,
		Value:    value,
	}
}

// TryAnd creates a group AND-combining conditions, returning an error
// if the group would be empty.
func TryAnd(conditions ...ConditionItem) (qast.ConditionGroup, error) {
	if len(conditions) == 0 {
		return qast.ConditionGroup{}, fmt.Errorf("AND requires at least one condition")
	}
	return qast.ConditionGroup{
		Logic:      qast.AND,
		Conditions: conditions,
	}, nil
}

// And creates a group AND-combining conditions.
func And(conditions ...ConditionItem) qast.ConditionGroup {
	g, err := TryAnd(conditions...)
	if err != nil {
		panic(err)
	}
	return g
}

// TryOr creates a group OR-combining conditions, returning an error
// if the group would be empty.
func TryOr(conditions ...ConditionItem) (qast.ConditionGroup, error) {
	if len(conditions) == 0 {
		return qast.ConditionGroup{}, fmt.Errorf("OR requires at least one condition")
	}
	return qast.ConditionGroup{
		Logic:      qast.OR,
		Conditions: conditions,
	}, nil
}

// Or creates a group OR-combining conditions.
func Or(conditions ...ConditionItem) qast.ConditionGroup {
	g, err := TryOr(conditions...)
	if err != nil {
		panic(err)
	}
	return g
}

// Not negates a condition.
func Not(cond ConditionItem) qast.NotCondition {
	return qast.NotCondition{Cond: cond}
}

// Null creates an IS NULL condition.
func Null(f Field) qast.Condition {
	return qast.Condition{Field: f, Operator: qast.EQ, Value: nil}
}

// NotNull creates an IS NOT NULL condition.
func NotNull(f Field) qast.Condition {
	return qast.Condition{Field: f, Operator: qast.NE, Value: nil}
}

// Contains matches rows whose column contains the substring. The
// pattern is bound as a single LIKE parameter, never concatenated
// into the SQL text.
func Contains(f Field, substr string) qast.LikeCondition {
	return qast.LikeCondition{Field: f, Pattern: substr, Anchor: qast.AnchorContains}
}

// StartsWith matches rows whose column starts with the prefix.
func StartsWith(f Field, prefix string) qast.LikeCondition {
	return qast.LikeCondition{Field: f, Pattern: prefix, Anchor: qast.AnchorStarts}
}

// EndsWith matches rows whose column ends with the suffix.
func EndsWith(f Field, suffix string) qast.LikeCondition {
	return qast.LikeCondition{Field: f, Pattern: suffix, Anchor: qast.AnchorEnds}
}

// In tests column membership in an ordered value list. An empty list
// compiles to "IN ()", which matches zero rows.
func In(f Field, values ...any) qast.InCondition {
	return qast.InCondition{Field: f, Values: values}
}

// CF creates a comparison between two columns.
func CF(left Field, op Operator, right Field) qast.FieldComparison {
	return qast.FieldComparison{
		LeftField:  left,
		Operator:   op,
		RightField: right,
	}
}

// AggC creates a HAVING comparison over an aggregate expression, e.g.
// AggC(CountAll(), GT, 1) for COUNT(*) > 1.
func AggC(agg AggregateExpr, op Operator, value any) qast.AggregateCondition {
	return qast.AggregateCondition{
		Agg:      agg,
		Operator: op,
		Value:    value,
	}
}
