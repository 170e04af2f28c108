// Package types is the graph data model shared by the WAL, cache, and
// iterator packages: Value, DataSet, Vertex, and Edge, generalized from the
// Arrow-scalar wrapping pattern frostdb's pqarrow/convert package uses for
// typed column cells.
package types

// NullKind distinguishes why a Value is null. Plain missingness (NullGeneric)
// is a different thing from an errorful null like NullDivByZero: the latter
// is "sticky" through short-circuitable logical operators (spec §4.3).
type NullKind uint8

const (
	NullGeneric NullKind = iota
	NullDivByZero
	NullOutOfRange
	NullOverflow
	NullBadType
	NullBadData
	NullErrorOverflow
	NullUnknownProp
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindEmpty
	KindBool
	KindInt
	KindFloat
	KindString
	KindDate
	KindTime
	KindDateTime
	KindList
	KindSet
	KindMap
	KindVertex
	KindEdge
	KindPath
	KindDataSet
)

// Date, Time, DateTime are lightweight calendar types; they intentionally
// avoid pulling in a timezone-aware civil-time library since the spec treats
// them as opaque comparable cells.
type Date struct{ Year, Month, Day int }

type Time struct {
	Hour, Minute, Sec int
	Microsec          int
}

type DateTime struct {
	Date
	Time
}

// Path is a sequence of vertex/edge steps; left opaque beyond what the
// iterator model needs (construction/serialization is out of scope).
type Path struct {
	Src   Vertex
	Steps []PathStep
}

type PathStep struct {
	Edge Edge
	Dst  Vertex
}

// Value is a tagged union over the scalar and composite cell types the
// spec enumerates in §3. Only the field matching Kind is meaningful.
type Value struct {
	Kind     Kind
	NullKind NullKind

	Bool     bool
	Int      int64
	Float    float64
	Str      string
	Date     Date
	Time     Time
	DateTime DateTime
	List     []Value
	Set      []Value
	Map      map[string]Value
	Vertex   *Vertex
	Edge     *Edge
	Path     *Path
	DataSet  *DataSet
}

func Null(kind NullKind) Value       { return Value{Kind: KindNull, NullKind: kind} }
func Empty() Value                   { return Value{Kind: KindEmpty} }
func Bool(b bool) Value              { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value              { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value          { return Value{Kind: KindFloat, Float: f} }
func String(s string) Value          { return Value{Kind: KindString, Str: s} }
func VertexValue(v *Vertex) Value    { return Value{Kind: KindVertex, Vertex: v} }
func EdgeValue(e *Edge) Value        { return Value{Kind: KindEdge, Edge: e} }
func DataSetValue(d *DataSet) Value  { return Value{Kind: KindDataSet, DataSet: d} }

func (v Value) IsNull() bool  { return v.Kind == KindNull }
func (v Value) IsEmpty() bool { return v.Kind == KindEmpty }

// AsBool returns the value's truthiness for logical operators, following
// null/empty-neutral semantics: only KindBool participates directly; callers
// of the logical operators in package expr use Value.Kind, not AsBool, to
// decide short-circuiting.
func (v Value) AsBool() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.Bool, true
}

// Equal is a shallow structural comparison sufficient for cache and
// iterator tests; it does not attempt type coercion. Vertices compare by VID
// only; List, Set, Map, Path and DataSet values never compare equal.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return a.NullKind == b.NullKind
	case KindEmpty:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindString:
		return a.Str == b.Str
	case KindDate:
		return a.Date == b.Date
	case KindTime:
		return a.Time == b.Time
	case KindDateTime:
		return a.DateTime == b.DateTime
	case KindVertex:
		return a.Vertex != nil && b.Vertex != nil && a.Vertex.VID == b.Vertex.VID
	case KindEdge:
		return EdgeEqual(a.Edge, b.Edge)
	default:
		return false
	}
}
