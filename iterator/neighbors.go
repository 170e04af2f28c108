package iterator

import (
	"github.com/polarsignals/graphdb-core/errs"
	"github.com/polarsignals/graphdb-core/types"
)

// datasetCols is the parsed, column-convention-validated shape of one
// neighbor-response DataSet (spec §3): which column holds which tag/edge,
// so NeighborsIterator doesn't re-parse column names on every row.
type datasetCols struct {
	ds        *types.DataSet
	vidCol    int
	statsCol  int
	exprCol   int
	tagCols   []int // indices into ds.ColNames, in column order
	tags      []types.TagColumn
	edgeCols  []int
	edges     []types.EdgeColumn
}

// validateNeighborDataSet implements spec §4.3's neighbor-dataset
// validation rules. A valid dataset may have zero tag/edge columns.
func validateNeighborDataSet(ds *types.DataSet) (datasetCols, error) {
	n := len(ds.ColNames)
	if n < 3 {
		return datasetCols{}, errs.Invalidf("neighbor dataset too narrow: %d columns", n)
	}
	if ds.ColNames[0] != types.ColVid {
		return datasetCols{}, errs.Invalidf("neighbor dataset first column is %q, want %q", ds.ColNames[0], types.ColVid)
	}
	if ds.ColNames[1] != types.ColStats {
		return datasetCols{}, errs.Invalidf("neighbor dataset second column is %q, want %q", ds.ColNames[1], types.ColStats)
	}
	if ds.ColNames[n-1] != types.ColExpr {
		return datasetCols{}, errs.Invalidf("neighbor dataset last column is %q, want %q", ds.ColNames[n-1], types.ColExpr)
	}

	dc := datasetCols{ds: ds, vidCol: 0, statsCol: 1, exprCol: n - 1}
	for i := 2; i < n-1; i++ {
		name := ds.ColNames[i]
		switch {
		case types.IsTagColumn(name):
			tc, ok := types.ParseTagColumn(name)
			if !ok {
				return datasetCols{}, errs.Invalidf("malformed tag column %q", name)
			}
			dc.tagCols = append(dc.tagCols, i)
			dc.tags = append(dc.tags, tc)
		case types.IsEdgeColumn(name):
			ec, ok := types.ParseEdgeColumn(name)
			if !ok {
				return datasetCols{}, errs.Invalidf("malformed edge column %q", name)
			}
			dc.edgeCols = append(dc.edgeCols, i)
			dc.edges = append(dc.edges, ec)
		default:
			return datasetCols{}, errs.Invalidf("column %q is neither a tag nor an edge column", name)
		}
	}
	return dc, nil
}

// logicalRef locates one logical (vertex, edge) row: which dataset, which
// physical row within it, which edge column, and which edge within that
// column's chained list of destinations.
type logicalRef struct {
	dsIdx    int
	rowIdx   int
	edgeCol  int // index into datasetCols.edgeCols
	edgeIdx  int // index within that edge column's per-row edge list
}

// NeighborsIterator wraps a list of neighbor-response DataSets (spec §4.3),
// presenting one logical row per (vertex row, contained edge) pair: tag
// properties hang off the vertex, edge properties off the specific edge.
type NeighborsIterator struct {
	dcs   []datasetCols
	refs  []logicalRef
	valid bool
	pos   int
}

// NewNeighbors validates every dataset's column convention and builds the
// flattened logical-row list. An invalid input yields Valid() == false and
// an empty traversal, per Design Notes §9's invalid-state construction.
func NewNeighbors(datasets []*types.DataSet) *NeighborsIterator {
	it := &NeighborsIterator{}
	dcs := make([]datasetCols, len(datasets))
	for i, ds := range datasets {
		dc, err := validateNeighborDataSet(ds)
		if err != nil {
			return it // valid=false, zero rows
		}
		dcs[i] = dc
	}
	it.dcs = dcs

	for dsIdx, dc := range dcs {
		for rowIdx := range dc.ds.Rows {
			for ecIdx, col := range dc.edgeCols {
				cell := dc.ds.Rows[rowIdx][col]
				if cell.Kind != types.KindList {
					continue
				}
				for edgeIdx := range cell.List {
					it.refs = append(it.refs, logicalRef{dsIdx: dsIdx, rowIdx: rowIdx, edgeCol: ecIdx, edgeIdx: edgeIdx})
				}
			}
		}
	}
	it.valid = len(it.refs) > 0
	return it
}

func (it *NeighborsIterator) Kind() Kind        { return KindNeighbors }
func (it *NeighborsIterator) Valid() bool       { return it.valid && it.pos < len(it.refs) }
func (it *NeighborsIterator) Size() int         { return len(it.refs) }
func (it *NeighborsIterator) ColNames() []string { return nil }

func (it *NeighborsIterator) Next() { it.pos++ }

func (it *NeighborsIterator) cur() (datasetCols, logicalRef, bool) {
	if !it.Valid() {
		return datasetCols{}, logicalRef{}, false
	}
	ref := it.refs[it.pos]
	return it.dcs[ref.dsIdx], ref, true
}

// GetColumn resolves a physical column by name against the current logical
// row's underlying vertex row (e.g. "_vid", "_stats").
func (it *NeighborsIterator) GetColumn(name string) (types.Value, bool) {
	dc, ref, ok := it.cur()
	if !ok {
		return types.Value{}, false
	}
	idx := dc.ds.ColIndex(name)
	if idx < 0 {
		return types.Value{}, false
	}
	return dc.ds.Rows[ref.rowIdx][idx], true
}

// GetTagProp returns prop of tag for the current logical row's vertex, or
// null if the underlying dataset has no such tag column (a different
// tag/edge in a mixed-schema row), per spec §4.3.
func (it *NeighborsIterator) GetTagProp(tag, prop string) types.Value {
	dc, ref, ok := it.cur()
	if !ok {
		return types.Null(types.NullGeneric)
	}
	for i, tc := range dc.tags {
		if tc.TagName != tag {
			continue
		}
		propIdx := indexOf(tc.Props, prop)
		if propIdx < 0 {
			return types.Null(types.NullUnknownProp)
		}
		cell := dc.ds.Rows[ref.rowIdx][dc.tagCols[i]]
		if cell.Kind != types.KindMap {
			return types.Null(types.NullUnknownProp)
		}
		v, ok := cell.Map[prop]
		if !ok {
			return types.Null(types.NullUnknownProp)
		}
		return v
	}
	return types.Null(types.NullUnknownProp)
}

// GetEdgeProp returns prop of the current logical row's active edge, or
// null if the current edge isn't named edgeName.
func (it *NeighborsIterator) GetEdgeProp(edgeName, prop string) types.Value {
	dc, ref, ok := it.cur()
	if !ok {
		return types.Null(types.NullGeneric)
	}
	ec := dc.edges[ref.edgeCol]
	if ec.EdgeName != edgeName {
		return types.Null(types.NullUnknownProp)
	}
	cell := dc.ds.Rows[ref.rowIdx][dc.edgeCols[ref.edgeCol]]
	edgeRec := cell.List[ref.edgeIdx]
	if edgeRec.Kind != types.KindMap {
		return types.Null(types.NullUnknownProp)
	}
	v, ok := edgeRec.Map[prop]
	if !ok {
		return types.Null(types.NullUnknownProp)
	}
	return v
}

// GetVertex synthesizes a Vertex from every non-null tag cell attached to
// the current logical row's physical vertex row.
func (it *NeighborsIterator) GetVertex() *types.Vertex {
	dc, ref, ok := it.cur()
	if !ok {
		return nil
	}
	vidVal := dc.ds.Rows[ref.rowIdx][dc.vidCol]
	v := &types.Vertex{VID: vidVal.Str}
	for i, tc := range dc.tags {
		cell := dc.ds.Rows[ref.rowIdx][dc.tagCols[i]]
		if cell.Kind != types.KindMap {
			continue
		}
		v.Tags = append(v.Tags, types.Tag{Name: tc.TagName, Props: cell.Map})
	}
	return v
}

// GetEdge synthesizes an Edge for the current logical row: a '+' column
// keeps src/dst as stored; a '-' column swaps src/dst and negates the
// type sign, per spec §3's edge-direction convention.
func (it *NeighborsIterator) GetEdge() *types.Edge {
	dc, ref, ok := it.cur()
	if !ok {
		return nil
	}
	ec := dc.edges[ref.edgeCol]
	vidVal := dc.ds.Rows[ref.rowIdx][dc.vidCol]
	cell := dc.ds.Rows[ref.rowIdx][dc.edgeCols[ref.edgeCol]]
	rec := cell.List[ref.edgeIdx]

	dst := valueOrEmptyString(rec, "_dst")
	edgeType := int32(valueOrZeroInt(rec, "_type"))
	rank := valueOrZeroInt(rec, "_rank")

	props := make(map[string]types.Value, len(ec.Props))
	if rec.Kind == types.KindMap {
		for _, p := range ec.Props {
			if v, ok := rec.Map[p]; ok {
				props[p] = v
			}
		}
	}

	src := vidVal.Str
	if !ec.Forward {
		src, dst = dst, src
		edgeType = -edgeType
	}
	return &types.Edge{Src: src, Dst: dst, Type: edgeType, Rank: rank, Name: ec.EdgeName, Props: props}
}

// GetVertices returns every distinct vertex touched by the iterator,
// deduplicated by vid and preserving first-seen order.
func (it *NeighborsIterator) GetVertices() []types.Vertex {
	seen := make(map[string]bool)
	var out []types.Vertex
	saved := it.pos
	for it.pos = 0; it.pos < len(it.refs); it.pos++ {
		v := it.GetVertex()
		if v == nil || seen[v.VID] {
			continue
		}
		seen[v.VID] = true
		out = append(out, *v)
	}
	it.pos = saved
	return out
}

// GetEdges returns every logical edge in the iterator's order.
func (it *NeighborsIterator) GetEdges() []types.Edge {
	var out []types.Edge
	saved := it.pos
	for it.pos = 0; it.pos < len(it.refs); it.pos++ {
		e := it.GetEdge()
		if e != nil {
			out = append(out, *e)
		}
	}
	it.pos = saved
	return out
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

func valueOrEmptyString(rec types.Value, key string) string {
	if rec.Kind != types.KindMap {
		return ""
	}
	if v, ok := rec.Map[key]; ok && v.Kind == types.KindString {
		return v.Str
	}
	return ""
}

func valueOrZeroInt(rec types.Value, key string) int64 {
	if rec.Kind != types.KindMap {
		return 0
	}
	if v, ok := rec.Map[key]; ok && v.Kind == types.KindInt {
		return v.Int
	}
	return 0
}
