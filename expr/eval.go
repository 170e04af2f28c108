package expr

import "github.com/polarsignals/graphdb-core/types"

// Eval evaluates e against row, returning the resulting Value. It is the
// package's single public evaluation entry point; every node type's
// unexported eval implements its own local logic and recurses back into
// Eval (via the node's own eval method) for its children.
func Eval(e Expr, row RowLookup) types.Value {
	return e.eval(row)
}

// classification distinguishes how a Value participates in the spec §4.3
// logical-operator collapsing rules.
type classification int

const (
	classTrue classification = iota
	classFalse
	classDivByZero
	classPlainNull
	classEmpty
)

func classify(v types.Value) classification {
	switch v.Kind {
	case types.KindBool:
		if v.Bool {
			return classTrue
		}
		return classFalse
	case types.KindEmpty:
		return classEmpty
	case types.KindNull:
		if v.NullKind == types.NullDivByZero {
			return classDivByZero
		}
		return classPlainNull
	default:
		// Any other concrete Value is classified as false: AsBool only
		// succeeds for KindBool, which is handled above. This only arises if
		// a caller feeds a non-logical cell into a logical operator.
		if b, ok := v.AsBool(); ok && b {
			return classTrue
		}
		return classFalse
	}
}

// evalAnd implements spec §4.3's AND collapsing table. div-by-zero is
// sticky (priority over the false-collapse), empty is transparent unless
// the other operand collapses to a definite false, and plain null only
// collapses away when paired with a definite false.
func evalAnd(l, r types.Value) types.Value {
	cl, cr := classify(l), classify(r)

	if cl == classDivByZero || cr == classDivByZero {
		return pickDivByZero(l, r)
	}
	if cl == classFalse || cr == classFalse {
		return types.Bool(false)
	}
	if cl == classEmpty || cr == classEmpty {
		return types.Empty()
	}
	if cl == classPlainNull || cr == classPlainNull {
		return types.Null(types.NullGeneric)
	}
	return types.Bool(cl == classTrue && cr == classTrue)
}

// evalOr implements spec §4.3's OR collapsing table: div-by-zero sticky,
// definite-true collapses everything, empty is transparent otherwise, plain
// null collapses away only when paired with a definite true.
func evalOr(l, r types.Value) types.Value {
	cl, cr := classify(l), classify(r)

	if cl == classDivByZero || cr == classDivByZero {
		return pickDivByZero(l, r)
	}
	if cl == classTrue || cr == classTrue {
		return types.Bool(true)
	}
	if cl == classEmpty || cr == classEmpty {
		return types.Empty()
	}
	if cl == classPlainNull || cr == classPlainNull {
		return types.Null(types.NullGeneric)
	}
	return types.Bool(cl == classTrue || cr == classTrue)
}

// evalXor implements "null XOR anything == null" (spec §4.3); div-by-zero
// stays sticky by the same reasoning as AND/OR, and empty is treated as
// transparent by extension of the empty-transparency rule stated for AND/OR
// (the spec does not give an explicit XOR/empty example; this is the
// natural generalization).
func evalXor(l, r types.Value) types.Value {
	cl, cr := classify(l), classify(r)

	if cl == classDivByZero || cr == classDivByZero {
		return pickDivByZero(l, r)
	}
	if cl == classPlainNull || cr == classPlainNull {
		return types.Null(types.NullGeneric)
	}
	if cl == classEmpty || cr == classEmpty {
		return types.Empty()
	}
	return types.Bool((cl == classTrue) != (cr == classTrue))
}

func pickDivByZero(l, r types.Value) types.Value {
	if classify(l) == classDivByZero {
		return l
	}
	return r
}

// evalDiv divides two numeric Values, producing a div-by-zero null (rather
// than a runtime error) when the denominator is zero.
func evalDiv(l, r types.Value) types.Value {
	lf, lok := asFloat(l)
	rf, rok := asFloat(r)
	if !lok || !rok {
		return types.Null(types.NullBadType)
	}
	if rf == 0 {
		return types.Null(types.NullDivByZero)
	}
	return types.Float(lf / rf)
}

func asFloat(v types.Value) (float64, bool) {
	switch v.Kind {
	case types.KindInt:
		return float64(v.Int), true
	case types.KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

func (e *BinaryExpr) evalBinary(row RowLookup) types.Value {
	l := e.Left.eval(row)
	r := e.Right.eval(row)
	switch e.Op {
	case OpAnd:
		return evalAnd(l, r)
	case OpOr:
		return evalOr(l, r)
	case OpXor:
		return evalXor(l, r)
	case OpDiv:
		return evalDiv(l, r)
	default:
		return types.Null(types.NullBadType)
	}
}
