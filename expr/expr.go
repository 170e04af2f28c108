// Package expr implements the tagged-sum expression AST and evaluator for
// the derived-operator logical arithmetic in spec §4.3: AND/OR/XOR over
// null/empty/boolean values, with division producing a sticky div-by-zero
// null subtype. Grounded on frostdb's query/logicalplan Op/BinaryExpr/Visitor
// shape (a manual pointer-based AST replaced with an owned-indirection
// tagged sum per Design Notes §9), generalized from Arrow scalar comparisons
// to the graph Value evaluation in package types.
package expr

import "github.com/polarsignals/graphdb-core/types"

// Op enumerates the operators a BinaryExpr may carry.
type Op uint8

const (
	OpUnknown Op = iota
	OpAnd
	OpOr
	OpXor
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
)

func (o Op) String() string {
	switch o {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpXor:
		return "XOR"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	default:
		return "unknown"
	}
}

// Expr is a node in the tagged-sum expression tree. Every concrete node type
// implements Accept for the Visitor pattern and eval for direct evaluation
// (reached through the package-level Eval).
type Expr interface {
	Accept(v Visitor) bool
	eval(row RowLookup) types.Value
}

// RowLookup resolves a column name to its current Value for the row being
// evaluated; the iterator package supplies this as a closure over whichever
// iterator kind is currently positioned.
type RowLookup func(column string) (types.Value, bool)

// Visitor is the tree-walk seam frostdb's logicalplan.Visitor models: a
// PreVisit/Visit/PostVisit triple, any of which may abort the walk by
// returning false.
type Visitor interface {
	PreVisit(e Expr) bool
	Visit(e Expr) bool
	PostVisit(e Expr) bool
}

// Literal wraps a constant Value.
type Literal struct {
	Value types.Value
}

func (l *Literal) Accept(v Visitor) bool {
	if !v.PreVisit(l) {
		return false
	}
	if !v.Visit(l) {
		return false
	}
	return v.PostVisit(l)
}

func (l *Literal) eval(RowLookup) types.Value { return l.Value }

// Column references a named cell in the row under evaluation.
type Column struct {
	Name string
}

func (c *Column) Accept(v Visitor) bool {
	if !v.PreVisit(c) {
		return false
	}
	if !v.Visit(c) {
		return false
	}
	return v.PostVisit(c)
}

func (c *Column) eval(row RowLookup) types.Value {
	val, ok := row(c.Name)
	if !ok {
		return types.Empty()
	}
	return val
}

// BinaryExpr is Left Op Right, owning both children by indirection (never a
// raw/shared pointer cycle, per Design Notes §9).
type BinaryExpr struct {
	Left  Expr
	Op    Op
	Right Expr
}

func (e *BinaryExpr) Accept(v Visitor) bool {
	if !v.PreVisit(e) {
		return false
	}
	if !e.Left.Accept(v) {
		return false
	}
	if !v.Visit(e) {
		return false
	}
	if !e.Right.Accept(v) {
		return false
	}
	return v.PostVisit(e)
}

func (e *BinaryExpr) eval(row RowLookup) types.Value {
	return e.evalBinary(row)
}

// And, Or, Xor, Div are small constructors mirroring frostdb's
// logicalplan.Add/Sub/Mul/Div free functions.
func And(l, r Expr) *BinaryExpr { return &BinaryExpr{Left: l, Op: OpAnd, Right: r} }
func Or(l, r Expr) *BinaryExpr  { return &BinaryExpr{Left: l, Op: OpOr, Right: r} }
func Xor(l, r Expr) *BinaryExpr { return &BinaryExpr{Left: l, Op: OpXor, Right: r} }
func Div(l, r Expr) *BinaryExpr { return &BinaryExpr{Left: l, Op: OpDiv, Right: r} }
