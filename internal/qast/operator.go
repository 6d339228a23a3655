package qast

// Operator represents comparison operators usable in predicates.
type Operator string

const (
	EQ Operator = "="
	NE Operator = "!="
	GT Operator = ">"
	GE Operator = ">="
	LT Operator = "<"
	LE Operator = "<="
)

// LogicOperator represents how predicate operands combine.
type LogicOperator string

const (
	AND LogicOperator = "AND"
	OR  LogicOperator = "OR"
)

// ArithOp represents binary arithmetic operators in computed expressions.
type ArithOp string

const (
	OpAdd ArithOp = "+"
	OpSub ArithOp = "-"
	OpMul ArithOp = "*"
	OpDiv ArithOp = "/"
)

// LikeAnchor selects how a LIKE pattern is anchored.
type LikeAnchor int

const (
	AnchorContains LikeAnchor = iota // %value%
	AnchorStarts                     // value%
	AnchorEnds                       // %value
)
