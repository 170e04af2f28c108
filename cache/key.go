package cache

import "encoding/binary"

// EdgeKey is the raw concatenation vid_bytes || type_bytes(i32 native-endian)
// described in spec §6. External stability is not required; this layout only
// needs to round-trip within one process's cache instance.
type EdgeKey struct {
	raw string
}

// NewEdgeKey builds the edge-pool key for (vid, edge-type).
func NewEdgeKey(vid string, edgeType int32) EdgeKey {
	buf := make([]byte, len(vid)+4)
	copy(buf, vid)
	binary.NativeEndian.PutUint32(buf[len(vid):], uint32(edgeType))
	return EdgeKey{raw: string(buf)}
}

// VertexKey is the vertex-property pool's key: a plain vid.
type VertexKey struct {
	raw string
}

func NewVertexKey(vid string) VertexKey { return VertexKey{raw: vid} }
