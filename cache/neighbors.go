package cache

import (
	"strconv"

	"github.com/polarsignals/graphdb-core/errs"
	"github.com/polarsignals/graphdb-core/expr"
	"github.com/polarsignals/graphdb-core/types"
)

// NeighborsRequest mirrors the shape of a get_neighbors RPC request that the
// cache's read-through wrapper may be able to short-circuit.
type NeighborsRequest struct {
	// VIDs is the request's per-partition vertex list, flattened;
	// partitioning itself is the storage layer's concern, not the cache's.
	VIDs []string
	// EdgeTypes is the set of edge types requested per vertex.
	EdgeTypes []int32

	Filter    expr.Expr
	Limit     int64 // 0 means unset
	RandomRef bool
	// VertexProps must be explicitly populated for the short-circuit path to
	// be eligible; nil/empty means the caller never set it, which rejects,
	// per spec §4.2 (StorageClientCache.cpp's checkCondition() treats a
	// vertexProps ref with no value the same way: an unconditional reject,
	// not an empty-but-valid request).
	VertexProps []string
}

// rejects reports whether req must be rejected from the short-circuit path
// outright, per spec §4.2: "Reject the short-circuit if the request carries
// a filter expression, a random-sampling flag, a limit, or missing
// vertex-props field" and the Open Question resolution that the first three
// flags (filter / limit / random_ref) are rejected on logical OR, not a
// duplicate check of one flag. The fourth condition (missing vertex-props)
// is unambiguous and unconditional, independent of that Open Question.
func (req *NeighborsRequest) rejects() (bool, string) {
	switch {
	case req.Filter != nil:
		return true, "contains filter expression"
	case req.Limit != 0:
		return true, "contains limit"
	case req.RandomRef:
		return true, "contains random_ref sampling flag"
	case len(req.VertexProps) == 0:
		return true, "missing vertex-props field"
	default:
		return false, ""
	}
}

// GetNeighborsShortCircuit implements the read-through wrapper of spec
// §4.2: on a request carrying none of the four disqualifying conditions,
// every (vid, edge-type) pair is looked up in the edge-topology pool; any single
// miss aborts the whole short-circuit (the caller must fall back to the
// storage RPC). On a full hit, a neighbor-response DataSet is synthesized
// with empty _stats/_expr columns and one dst-list cell per edge column.
func (c *Cache) GetNeighborsShortCircuit(req *NeighborsRequest) (*types.DataSet, error) {
	if reject, reason := req.rejects(); reject {
		c.metrics.shortCircuitReject.Inc()
		return nil, errs.Invalidf("get_neighbors short-circuit rejected: %s", reason)
	}

	colNames := make([]string, 0, 2+len(req.EdgeTypes)+1)
	colNames = append(colNames, "_vid", "_stats")
	for _, et := range req.EdgeTypes {
		colNames = append(colNames, edgeColumnName(et))
	}
	colNames = append(colNames, "_expr")

	rows := make([]types.Row, 0, len(req.VIDs))
	for _, vid := range req.VIDs {
		row := make(types.Row, len(colNames))
		row[0] = types.String(vid)
		row[1] = types.Empty()
		row[len(colNames)-1] = types.Empty()

		for i, et := range req.EdgeTypes {
			dsts, err := c.GetEdges(NewEdgeKey(vid, et))
			if err != nil {
				c.metrics.shortCircuitMiss.Inc()
				return nil, errs.NotFoundf("get_neighbors short-circuit miss for vid %q type %d", vid, et)
			}
			vals := make([]types.Value, len(dsts))
			for j, d := range dsts {
				vals[j] = types.String(d)
			}
			row[2+i] = types.Value{Kind: types.KindList, List: vals}
		}
		rows = append(rows, row)
	}

	c.metrics.shortCircuitOK.Inc()
	return &types.DataSet{ColNames: colNames, Rows: rows}, nil
}

func edgeColumnName(edgeType int32) string {
	sign := "+"
	et := edgeType
	if et < 0 {
		sign = "-"
		et = -et
	}
	return "_edge:" + sign + "type" + strconv.Itoa(int(et))
}
