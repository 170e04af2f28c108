package types

import "strings"

// Column name conventions for a neighbor-response DataSet (spec §3):
//
//	col 0:        _vid
//	col 1:        _stats
//	cols 2..k-1:   _tag:<name>:<prop1>:<prop2>:...
//	cols k..n-1:   _edge:<+|-><name>:<prop1>:...:_dst:_type:_rank
//	last col:      _expr
const (
	ColVid   = "_vid"
	ColStats = "_stats"
	ColExpr  = "_expr"

	tagPrefix  = "_tag:"
	edgePrefix = "_edge:"
)

// TagColumn describes a parsed "_tag:<name>:<prop...>" column.
type TagColumn struct {
	TagName string
	Props   []string
}

// EdgeColumn describes a parsed "_edge:<sign><name>:<prop...>" column.
type EdgeColumn struct {
	Forward  bool // true for '+', false for '-'
	EdgeName string
	Props    []string
}

// IsTagColumn reports whether name has the "_tag:" prefix.
func IsTagColumn(name string) bool { return strings.HasPrefix(name, tagPrefix) }

// IsEdgeColumn reports whether name has the "_edge:" prefix.
func IsEdgeColumn(name string) bool { return strings.HasPrefix(name, edgePrefix) }

// ParseTagColumn splits a "_tag:<name>:<prop1>:<prop2>" column name. An empty
// prop list ("_tag:name") is valid: it means "does this vertex carry the
// tag", per spec §4.3.
func ParseTagColumn(name string) (TagColumn, bool) {
	if !IsTagColumn(name) {
		return TagColumn{}, false
	}
	rest := name[len(tagPrefix):]
	parts := strings.Split(rest, ":")
	if len(parts) == 0 || parts[0] == "" {
		return TagColumn{}, false
	}
	return TagColumn{TagName: parts[0], Props: parts[1:]}, true
}

// ParseEdgeColumn splits a "_edge:<+|-><name>:<prop1>:...:_dst:_type:_rank"
// column name. A missing sign or an empty edge name after the sign is
// invalid; an empty prop list is valid provided the trailing _dst/_type/_rank
// are implicit (we don't require them literally present in the column name
// itself -- the neighbors iterator reads them as keys of each edge record).
// When they do appear in the name, they are kept in Props like any other
// property.
func ParseEdgeColumn(name string) (EdgeColumn, bool) {
	if !IsEdgeColumn(name) {
		return EdgeColumn{}, false
	}
	rest := name[len(edgePrefix):]
	if rest == "" {
		return EdgeColumn{}, false
	}
	sign := rest[0]
	if sign != '+' && sign != '-' {
		return EdgeColumn{}, false
	}
	rest = rest[1:]
	parts := strings.Split(rest, ":")
	if len(parts) == 0 || parts[0] == "" {
		return EdgeColumn{}, false
	}
	return EdgeColumn{Forward: sign == '+', EdgeName: parts[0], Props: parts[1:]}, true
}
