package qast

// ConditionItem represents one node of a predicate tree: a single
// comparison or a group of nested conditions.
type ConditionItem interface {
	IsConditionItem()
}

// Condition is a comparison between a column and a literal value.
// The value is captured at build time and bound as a positional
// parameter at translation time; it is never interpolated into SQL.
// A nil Value with EQ/NE compiles to IS NULL / IS NOT NULL.
type Condition struct {
	Value    any
	Field    Field
	Operator Operator
}

// ConditionGroup combines nested conditions with AND/OR logic.
type ConditionGroup struct {
	Logic      LogicOperator
	Conditions []ConditionItem
}

// NotCondition negates a nested condition.
type NotCondition struct {
	Cond ConditionItem
}

// LikeCondition matches a column against an anchored substring pattern.
// The pattern text is bound as a single parameter with the LIKE
// wildcards applied to the value, never concatenated into the SQL.
type LikeCondition struct {
	Pattern string
	Field   Field
	Anchor  LikeAnchor
}

// InCondition tests column membership in an ordered value list.
// An empty list still compiles ("IN ()") and matches zero rows.
type InCondition struct {
	Field  Field
	Values []any
}

// FieldComparison compares two columns, used for join keys.
type FieldComparison struct {
	LeftField  Field
	Operator   Operator
	RightField Field
}

// AggregateCondition is a comparison over an aggregate expression.
// It is only legal inside a HAVING clause; the predicate translator
// rejects it anywhere else.
type AggregateCondition struct {
	Value    any
	Agg      AggregateExpr
	Operator Operator
}

func (Condition) IsConditionItem()          {}
func (ConditionGroup) IsConditionItem()     {}
func (NotCondition) IsConditionItem()       {}
func (LikeCondition) IsConditionItem()      {}
func (InCondition) IsConditionItem()        {}
func (FieldComparison) IsConditionItem()    {}
func (AggregateCondition) IsConditionItem() {}
