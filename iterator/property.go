package iterator

import (
	"strings"

	"github.com/polarsignals/graphdb-core/types"
)

// propColSpec describes one flat property column: either "<tag>.<prop>" /
// "<edge>.<prop>", or one of the reserved "_vid"/"_src"/"_dst"/"_type"/
// "_rank" columns, per spec §4.3 "Property iterator".
type propColSpec struct {
	reserved string // "_vid", "_src", "_dst", "_type", "_rank", any other name without a ".", or "" if a tag/edge prop
	owner    string // tag or edge name
	prop     string
}

func parsePropCol(name string) propColSpec {
	switch name {
	case "_vid", "_src", "_dst", "_type", "_rank":
		return propColSpec{reserved: name}
	}
	if owner, prop, ok := strings.Cut(name, "."); ok {
		return propColSpec{owner: owner, prop: prop}
	}
	return propColSpec{reserved: name}
}

// PropertyIterator wraps a flat DataSet whose columns follow the
// "<tag>.<prop>" / "<edge>.<prop>" / reserved-name convention, used by the
// query executor to surface GetVertex/GetEdge views over tabular results.
type PropertyIterator struct {
	ds       *types.DataSet
	colIndex map[string]int
	specs    []propColSpec
	cursor   int
}

func NewProperty(ds *types.DataSet) *PropertyIterator {
	specs := make([]propColSpec, len(ds.ColNames))
	for i, n := range ds.ColNames {
		specs[i] = parsePropCol(n)
	}
	return &PropertyIterator{ds: ds, colIndex: buildColIndex(ds.ColNames), specs: specs, cursor: 0}
}

func (it *PropertyIterator) Kind() Kind         { return KindProperty }
func (it *PropertyIterator) Valid() bool        { return it.cursor >= 0 && it.cursor < len(it.ds.Rows) }
func (it *PropertyIterator) Size() int          { return len(it.ds.Rows) }
func (it *PropertyIterator) ColNames() []string { return it.ds.ColNames }
func (it *PropertyIterator) Next()              { it.cursor++ }
func (it *PropertyIterator) Reset(startIdx int) { it.cursor = startIdx }

func (it *PropertyIterator) GetColumn(name string) (types.Value, bool) {
	if !it.Valid() {
		return types.Value{}, false
	}
	i, ok := it.colIndex[name]
	if !ok {
		return types.Value{}, false
	}
	return it.ds.Rows[it.cursor][i], true
}

// GetTagProp returns prop of tag for the current row, or null if the
// dataset has no "<tag>.<prop>" column of that name.
func (it *PropertyIterator) GetTagProp(tag, prop string) types.Value {
	return it.lookupOwned(tag, prop)
}

// GetEdgeProp returns prop of edge for the current row, or null if the
// dataset has no "<edge>.<prop>" column of that name.
func (it *PropertyIterator) GetEdgeProp(edge, prop string) types.Value {
	return it.lookupOwned(edge, prop)
}

func (it *PropertyIterator) lookupOwned(owner, prop string) types.Value {
	if !it.Valid() {
		return types.Null(types.NullGeneric)
	}
	for i, spec := range it.specs {
		if spec.reserved == "" && spec.owner == owner && spec.prop == prop {
			return it.ds.Rows[it.cursor][i]
		}
	}
	return types.Null(types.NullUnknownProp)
}

// GetVertex synthesizes a Vertex from every "<tag>.<prop>" column present
// in the current row, grouping props back under their owning tag.
// excludeEdgeNames names owners that are actually edges, not tags -- the
// flat column convention doesn't otherwise tell the two apart.
func (it *PropertyIterator) GetVertex(excludeEdgeNames ...string) *types.Vertex {
	if !it.Valid() {
		return nil
	}
	vidIdx, ok := it.colIndex["_vid"]
	if !ok {
		return nil
	}
	exclude := make(map[string]bool, len(excludeEdgeNames))
	for _, n := range excludeEdgeNames {
		exclude[n] = true
	}

	v := &types.Vertex{VID: it.ds.Rows[it.cursor][vidIdx].Str}
	tagsByName := make(map[string]map[string]types.Value)
	var order []string
	for i, spec := range it.specs {
		if spec.reserved != "" || exclude[spec.owner] {
			continue
		}
		props, ok := tagsByName[spec.owner]
		if !ok {
			props = make(map[string]types.Value)
			tagsByName[spec.owner] = props
			order = append(order, spec.owner)
		}
		props[spec.prop] = it.ds.Rows[it.cursor][i]
	}
	for _, name := range order {
		v.Tags = append(v.Tags, types.Tag{Name: name, Props: tagsByName[name]})
	}
	return v
}

// GetEdge synthesizes an Edge named edgeName from the reserved
// _src/_dst/_type/_rank columns plus any "<edgeName>.<prop>" columns in
// the current row. The caller names the edge because the flat column
// convention doesn't otherwise distinguish an edge owner from a tag owner.
func (it *PropertyIterator) GetEdge(edgeName string) *types.Edge {
	if !it.Valid() {
		return nil
	}
	e := &types.Edge{Name: edgeName, Props: make(map[string]types.Value)}
	if i, ok := it.colIndex["_src"]; ok {
		e.Src = it.ds.Rows[it.cursor][i].Str
	}
	if i, ok := it.colIndex["_dst"]; ok {
		e.Dst = it.ds.Rows[it.cursor][i].Str
	}
	if i, ok := it.colIndex["_type"]; ok {
		e.Type = int32(it.ds.Rows[it.cursor][i].Int)
	}
	if i, ok := it.colIndex["_rank"]; ok {
		e.Rank = it.ds.Rows[it.cursor][i].Int
	}
	for i, spec := range it.specs {
		if spec.reserved == "" && spec.owner == edgeName {
			e.Props[spec.prop] = it.ds.Rows[it.cursor][i]
		}
	}
	return e
}
