/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

package expansion

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suryajasper/wave/graph"
	"github.com/suryajasper/wave/lang"
	"github.com/suryajasper/wave/types/symbolic"
	"github.com/suryajasper/wave/types/xslices"
)

func TestComputeStrides(t *testing.T) {
	scaling := graph.NewDimMap().Set(dimM, 4).Set(dimN, 2)
	assert.Equal(t, []int{2, 1}, ComputeStrides(scaling), "last dimension varies fastest")

	three := graph.NewDimMap().Set(dimM, 4).Set(dimN, 2).Set(dimK, 3)
	assert.Equal(t, []int{6, 3, 1}, ComputeStrides(three))

	assert.Empty(t, ComputeStrides(graph.NewDimMap()))
}

func TestScalingQueries(t *testing.T) {
	scaling := graph.NewDimMap().Set(dimM, 2).Set(dimN, 2)
	queries := scalingQueries(scaling)
	got := xslices.Map(queries, func(q *graph.DimMap) string { return q.String() })
	want := []string{"{M:0, N:0}", "{M:0, N:1}", "{M:1, N:0}", "{M:1, N:1}"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("query order mismatch (-want +got):\n%s", diff)
	}

	// No dimensions to scale still yields one (empty) coordinate.
	queries = scalingQueries(graph.NewDimMap())
	require.Len(t, queries, 1)
	assert.Equal(t, 0, queries[0].Len())
}

func TestExpandedName(t *testing.T) {
	g := graph.New("names")
	node := g.IterArg("x", lang.NewRegister([]any{dimM, dimN}, dtypes.Float32))
	query := graph.NewDimMap().Set(dimM, 1).Set(dimN, 0)
	assert.Equal(t, "x_M:1_N:0", ExpandedName(node, query))

	// Long dimension names are abbreviated with a marker.
	long := symbolic.Symbol("BATCH")
	other := g.IterArg("y", lang.NewRegister([]any{long}, dtypes.Float32))
	assert.Equal(t, "y_BATC*:2", ExpandedName(other, graph.NewDimMap().Set(long, 2)))
}

func TestExpandedNameSharedMemory(t *testing.T) {
	g := graph.New("shared")
	mem := g.Placeholder("a", lang.NewMemory([]any{dimM}, lang.AddressSpaceShared, dtypes.Float16))
	read := g.Read("read_a", mem, lang.NewRegister([]any{dimM}, dtypes.Float16), 4, nil)
	assert.Equal(t, "read_a_shared_M:0", ExpandedName(read, graph.NewDimMap().Set(dimM, 0)))

	global := g.Placeholder("b", lang.NewMemory([]any{dimM}, lang.AddressSpaceGlobal, dtypes.Float16))
	readG := g.Read("read_b", global, lang.NewRegister([]any{dimM}, dtypes.Float16), 4, nil)
	assert.Equal(t, "read_b_M:0", ExpandedName(readG, graph.NewDimMap().Set(dimM, 0)))
}

func TestIsExpandable(t *testing.T) {
	g := graph.New("eligibility")
	mem := g.Placeholder("a", lang.NewMemory([]any{dimM}, lang.AddressSpaceGlobal, dtypes.Float32))
	iter := g.IterArg("acc", lang.NewRegister([]any{dimM}, dtypes.Float32))
	read := g.Read("read", mem, lang.NewRegister([]any{dimM}, dtypes.Float32), 1, nil)

	assert.False(t, IsExpandable(mem), "kernel-signature placeholders are indexed, not expanded")
	assert.True(t, IsExpandable(iter))
	assert.True(t, IsExpandable(read))
	assert.False(t, IsExpandable(nil))
}

func TestReshapeDimQueriesMerge(t *testing.T) {
	g := graph.New("reshape")
	arg := g.IterArg("x", lang.NewRegister([]any{dimM}, dtypes.Float32))
	arg.SetVectorShapes(map[symbolic.Symbol]int{dimM: 8})
	reshape := g.Reshape("reshape", arg, map[symbolic.Symbol]int{dimM: 2})
	reshape.SetVectorShapes(map[symbolic.Symbol]int{dimM: 8})

	// Source width 8, target width 2: each target coordinate concatenates the 4
	// consecutive source coordinates of its slice, with no gaps or overlaps.
	queries := reshapeDimQueries(reshape, graph.NewDimMap().Set(dimM, 0))
	require.Len(t, queries, 4)
	seen := map[int]int{}
	for _, q := range queries {
		seen[q.At(dimM)]++
	}
	assert.Equal(t, map[int]int{0: 1, 1: 1, 2: 1, 3: 1}, seen)

	queries = reshapeDimQueries(reshape, graph.NewDimMap().Set(dimM, 1))
	got := xslices.Map(queries, func(q *graph.DimMap) int { return q.At(dimM) })
	assert.Equal(t, []int{4, 5, 6, 7}, got)
}

func TestReshapeDimQueriesSplit(t *testing.T) {
	g := graph.New("reshape")
	arg := g.IterArg("x", lang.NewRegister([]any{dimM}, dtypes.Float32))
	arg.SetVectorShapes(map[symbolic.Symbol]int{dimM: 2})
	reshape := g.Reshape("reshape", arg, map[symbolic.Symbol]int{dimM: 8})
	reshape.SetVectorShapes(map[symbolic.Symbol]int{dimM: 2})

	// Source width 2, target width 8: four target coordinates share one source.
	for v, wantSource := range []int{0, 0, 0, 0} {
		queries := reshapeDimQueries(reshape, graph.NewDimMap().Set(dimM, v))
		require.Len(t, queries, 1)
		assert.Equal(t, wantSource, queries[0].At(dimM))
	}
	queries := reshapeDimQueries(reshape, graph.NewDimMap().Set(dimM, 5))
	require.Len(t, queries, 1)
	assert.Equal(t, 1, queries[0].At(dimM))
}

func TestReshapeDimQueriesCrossProduct(t *testing.T) {
	g := graph.New("reshape")
	arg := g.IterArg("x", lang.NewRegister([]any{dimM, dimN}, dtypes.Float32))
	arg.SetVectorShapes(map[symbolic.Symbol]int{dimM: 4, dimN: 2})
	reshape := g.Reshape("reshape", arg, map[symbolic.Symbol]int{dimM: 2, dimN: 4})
	reshape.SetVectorShapes(map[symbolic.Symbol]int{dimM: 4, dimN: 2})

	// M merges two sources, N splits: the queries are their cross product with N
	// (the later dimension) varying fastest.
	queries := reshapeDimQueries(reshape, graph.NewDimMap().Set(dimM, 1).Set(dimN, 3))
	got := xslices.Map(queries, func(q *graph.DimMap) string { return q.String() })
	want := []string{"{M:2, N:1}", "{M:3, N:1}"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("source queries mismatch (-want +got):\n%s", diff)
	}
}
