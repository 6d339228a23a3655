package d1q

import "github.com/jdtoon/d1q/internal/qast"

// Helper functions for building projections and computed expressions.

// Col projects a column under its own name.
func Col(f Field) qast.ColumnProjection {
	return qast.ColumnProjection{Field: f}
}

// ColAs projects a column under an output alias.
func ColAs(f Field, alias string) qast.ColumnProjection {
	return qast.ColumnProjection{Field: f, Alias: alias}
}

// Computed projects a computed expression under a required output
// alias.
func Computed(expr Expr, alias string) qast.ComputedProjection {
	return qast.ComputedProjection{Expr: expr, Alias: alias}
}

// ColE lifts a column into an expression.
func ColE(f Field) qast.ColumnExpr {
	return qast.ColumnExpr{Field: f}
}

// Val lifts a literal into an expression; it binds as a positional
// parameter at compile time.
func Val(v any) qast.ValueExpr {
	return qast.ValueExpr{Value: v}
}

// Add combines two expressions with +.
func Add(left, right Expr) qast.BinaryExpr {
	return qast.BinaryExpr{Left: left, Op: qast.OpAdd, Right: right}
}

// Sub combines two expressions with -.
func Sub(left, right Expr) qast.BinaryExpr {
	return qast.BinaryExpr{Left: left, Op: qast.OpSub, Right: right}
}

// Mul combines two expressions with *.
func Mul(left, right Expr) qast.BinaryExpr {
	return qast.BinaryExpr{Left: left, Op: qast.OpMul, Right: right}
}

// Div combines two expressions with /.
func Div(left, right Expr) qast.BinaryExpr {
	return qast.BinaryExpr{Left: left, Op: qast.OpDiv, Right: right}
}

// CountAll creates a COUNT(*) aggregate.
func CountAll() AggregateExpr {
	return AggregateExpr{Fn: qast.AggCount}
}

// CountOf creates a COUNT over an expression.
func CountOf(expr Expr) AggregateExpr {
	return AggregateExpr{Fn: qast.AggCount, Arg: expr}
}

// Sum creates a SUM aggregate over an expression.
func Sum(expr Expr) AggregateExpr {
	return AggregateExpr{Fn: qast.AggSum, Arg: expr}
}

// Avg creates an AVG aggregate over an expression.
func Avg(expr Expr) AggregateExpr {
	return AggregateExpr{Fn: qast.AggAvg, Arg: expr}
}

// Min creates a MIN aggregate over an expression.
func Min(expr Expr) AggregateExpr {
	return AggregateExpr{Fn: qast.AggMin, Arg: expr}
}

// Max creates a MAX aggregate over an expression.
func Max(expr Expr) AggregateExpr {
	return AggregateExpr{Fn: qast.AggMax, Arg: expr}
}

// Key selects a grouping-key column in a grouped projection.
func Key(f Field) GroupSelection {
	return GroupSelection{Key: &f, Alias: f.Name}
}

// KeyAs selects a grouping-key column under an output alias.
func KeyAs(f Field, alias string) GroupSelection {
	return GroupSelection{Key: &f, Alias: alias}
}

// Agg selects an aggregate in a grouped projection under an output
// alias.
func Agg(a AggregateExpr, alias string) GroupSelection {
	return GroupSelection{Agg: &a, Alias: alias}
}
