// Package d1q is a typed query-to-SQL compiler and execution layer for
// SQLite-dialect databases, embedded locally or fronted by a remote
// service such as Cloudflare D1.
//
// Queries are built with a fluent, generic planner against a declared
// entity shape. The compiler translates the plan into parameterized SQL
// plus an ordered positional argument list, executes it through a
// pluggable statement executor, and maps result rows back into typed
// entities.
//
// # Basic Usage
//
//	schema, _ := d1q.NewSchema(project)
//	users := schema.T("users")
//	age := schema.F("age")
//
//	rows, err := d1q.From[User](exec, users).
//		Where(d1q.C(age, d1q.GT, 25)).
//		OrderBy(age).
//		All(ctx)
//
// Plans are append-only: Where calls conjoin with AND, OrderBy resets
// ordering and ThenBy appends, Take and Skip paginate. Terminal
// operations compile derived SQL forms (COUNT(*), EXISTS, LIMIT 1)
// instead of post-filtering in memory.
//
// # Joins, Grouping, Set Operations
//
// Join plans combine two tables on a single equality key pair with
// per-table column qualification. Group plans compile GROUP BY with
// aggregate projections and HAVING. Independent plans compose with
// Union, UnionAll, Intersect and Except; operands carrying their own
// ORDER BY, LIMIT or OFFSET are transparently wrapped in a subquery,
// which the dialect requires.
//
// # Errors
//
// Translation errors are deterministic, raised while building, and
// name the offending construct; they indicate a caller bug. Execution
// errors pass through from the executor unchanged. Single reports
// zero-row and multi-row results as distinct errors.
//
// # Output Format
//
// All values bind as positional ? parameters in left-to-right walk
// order; literals are never interpolated into SQL. Identifiers are
// quoted to handle reserved words.
package d1q

import "github.com/jdtoon/d1q/internal/qast"

// Field is a resolved column reference.
// This is re-exported from internal/qast for use by consumers.
type Field = qast.Field

// Table is a validated source-table reference.
type Table = qast.Table

// Operator represents comparison operators.
type Operator = qast.Operator

// Re-export operator constants for public API.
const (
	EQ = qast.EQ
	NE = qast.NE
	GT = qast.GT
	GE = qast.GE
	LT = qast.LT
	LE = qast.LE
)

// Direction represents sort direction.
type Direction = qast.Direction

// Re-export direction constants for public API.
const (
	ASC  = qast.ASC
	DESC = qast.DESC
)

// ConditionItem represents either a single condition or a group of
// conditions.
type ConditionItem = qast.ConditionItem

// Expr represents a scalar expression over columns and constants.
type Expr = qast.Expr

// Projection is one entry of a SELECT column list.
type Projection = qast.Projection

// AggregateFn is the closed set of supported aggregate functions.
type AggregateFn = qast.AggregateFn

// Re-export aggregate function constants for public API.
const (
	AggCount = qast.AggCount
	AggSum   = qast.AggSum
	AggAvg   = qast.AggAvg
	AggMin   = qast.AggMin
	AggMax   = qast.AggMax
)

// AggregateExpr is an aggregate function applied to an expression.
type AggregateExpr = qast.AggregateExpr

// AggregateCondition is a HAVING comparison over an aggregate.
type AggregateCondition = qast.AggregateCondition

// GroupSelection is one entry of a grouped projection.
type GroupSelection = qast.GroupSelection

// JoinKind represents the supported join kinds.
type JoinKind = qast.JoinKind

// Re-export join kind constants for public API.
const (
	InnerJoin = qast.InnerJoin
	LeftJoin  = qast.LeftJoin
)

// SetOperator represents SQL set operations between plans.
type SetOperator = qast.SetOperator

// Re-export set operator constants for public API.
const (
	SetUnion     = qast.SetUnion
	SetUnionAll  = qast.SetUnionAll
	SetIntersect = qast.SetIntersect
	SetExcept    = qast.SetExcept
)
