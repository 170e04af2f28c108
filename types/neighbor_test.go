package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTagColumn(t *testing.T) {
	tc, ok := ParseTagColumn("_tag:tag1:prop1:prop2")
	require.True(t, ok)
	require.Equal(t, "tag1", tc.TagName)
	require.Equal(t, []string{"prop1", "prop2"}, tc.Props)

	tc, ok = ParseTagColumn("_tag:tag1")
	require.True(t, ok, "empty prop list is valid")
	require.Equal(t, "tag1", tc.TagName)
	require.Empty(t, tc.Props)

	_, ok = ParseTagColumn("_edge:+e1")
	require.False(t, ok)
}

func TestParseEdgeColumn(t *testing.T) {
	ec, ok := ParseEdgeColumn("_edge:+edge1:prop1:prop2")
	require.True(t, ok)
	require.True(t, ec.Forward)
	require.Equal(t, "edge1", ec.EdgeName)
	require.Equal(t, []string{"prop1", "prop2"}, ec.Props)

	ec, ok = ParseEdgeColumn("_edge:-edge1")
	require.True(t, ok)
	require.False(t, ec.Forward)

	_, ok = ParseEdgeColumn("_edge:edge1")
	require.False(t, ok, "missing sign is invalid")

	_, ok = ParseEdgeColumn("_edge:+")
	require.False(t, ok, "empty edge name after sign is invalid")

	_, ok = ParseEdgeColumn("_edge:-:prop1")
	require.False(t, ok, "empty edge name with trailing props is invalid")
}

func TestDataSetValidate(t *testing.T) {
	ds := &DataSet{
		ColNames: []string{"a", "b"},
		Rows: []Row{
			{Int(1), Int(2)},
			{Int(3)},
		},
	}
	require.Error(t, ds.Validate())

	ds.Rows[1] = Row{Int(3), Int(4)}
	require.NoError(t, ds.Validate())
}

func TestValueEqual(t *testing.T) {
	require.True(t, Equal(Int(1), Int(1)))
	require.False(t, Equal(Int(1), Int(2)))
	require.True(t, Equal(Null(NullGeneric), Null(NullGeneric)))
	require.False(t, Equal(Null(NullGeneric), Null(NullDivByZero)))
	require.True(t, Equal(Empty(), Empty()))
	require.False(t, Equal(Empty(), Null(NullGeneric)))
}

func TestEdgeEqual(t *testing.T) {
	a := &Edge{Src: "a", Dst: "b", Type: 1, Rank: 0, Name: "e", Props: map[string]Value{"p": Int(1)}}
	b := &Edge{Src: "a", Dst: "b", Type: 1, Rank: 0, Name: "e", Props: map[string]Value{"p": Int(1)}}
	require.True(t, EdgeEqual(a, b))

	c := &Edge{Src: "a", Dst: "b", Type: 1, Rank: 0, Name: "e", Props: map[string]Value{"p": Int(2)}}
	require.False(t, EdgeEqual(a, c))
}
