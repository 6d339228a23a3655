package qast

// Expr represents a scalar expression usable in projections and
// aggregate arguments: a column read, a captured literal, or a binary
// combination of the two.
type Expr interface {
	IsExpr()
}

// ColumnExpr reads a column.
type ColumnExpr struct {
	Field Field
}

// ValueExpr is a literal captured at build time and bound as a
// positional parameter.
type ValueExpr struct {
	Value any
}

// BinaryExpr combines two sub-expressions with an arithmetic operator.
type BinaryExpr struct {
	Left  Expr
	Right Expr
	Op    ArithOp
}

func (ColumnExpr) IsExpr() {}
func (ValueExpr) IsExpr()  {}
func (BinaryExpr) IsExpr() {}

// Projection is one entry of a SELECT column list.
type Projection interface {
	IsProjection()
}

// ColumnProjection selects a column, optionally renamed. An empty
// Alias aliases the output to the column's own name so row-to-struct
// mapping stays name-based.
type ColumnProjection struct {
	Field Field
	Alias string
}

// ComputedProjection selects a computed expression under a required
// output alias.
type ComputedProjection struct {
	Expr  Expr
	Alias string
}

func (ColumnProjection) IsProjection()   {}
func (ComputedProjection) IsProjection() {}

// AggregateFn is the closed set of supported aggregate functions,
// matched exhaustively at translation time.
type AggregateFn string

const (
	AggCount AggregateFn = "COUNT"
	AggSum   AggregateFn = "SUM"
	AggAvg   AggregateFn = "AVG"
	AggMin   AggregateFn = "MIN"
	AggMax   AggregateFn = "MAX"
)

// AggregateExpr is an aggregate function applied to an expression
// argument. A nil Arg is only legal for AggCount and compiles to
// COUNT(*).
type AggregateExpr struct {
	Arg Expr
	Fn  AggregateFn
}

// GroupSelection is one entry of a grouped projection: either a grouping
// key column or an aggregate, each under an output alias.
type GroupSelection struct {
	Key   *Field
	Agg   *AggregateExpr
	Alias string
}
