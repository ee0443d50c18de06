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
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suryajasper/wave/constraints"
	"github.com/suryajasper/wave/graph"
	"github.com/suryajasper/wave/lang"
	"github.com/suryajasper/wave/types/symbolic"
	"github.com/suryajasper/wave/types/xslices"
)

func liveNames(g *graph.Graph) []string {
	return xslices.Map(g.Walk(nil), func(n *graph.Node) string { return n.Name() })
}

func findLive(t *testing.T, g *graph.Graph, name string) *graph.Node {
	t.Helper()
	for _, node := range g.Walk(nil) {
		if node.Name() == name {
			return node
		}
	}
	t.Fatalf("no live node named %q in graph %q", name, g.Name())
	return nil
}

// TestExpandSingleDim tiles one dimension to 8 elements with vector width 2 and a
// single wave: the operation must expand into exactly 4 sibling clones, each with
// its own operand clone.
func TestExpandSingleDim(t *testing.T) {
	g := graph.New("single")
	x := g.IterArg("x", lang.NewRegister([]any{dimM}, dtypes.Float32))
	x.SetVectorShapes(map[symbolic.Symbol]int{dimM: 2})
	op := g.Reshape("op", x, map[symbolic.Symbol]int{dimM: 2})
	op.SetVectorShapes(map[symbolic.Symbol]int{dimM: 2})
	output := g.Output(op)

	cons := []constraints.Constraint{
		&constraints.HardwareConstraint{ThreadsPerWave: 64, WavesPerBlock: [3]int{1, 1, 1}},
		&constraints.WorkgroupConstraint{Dim: dimM, TileSize: blockM, WorkgroupDim: 0, Primary: true},
	}
	ctx := symbolic.NewContext().Bind(blockM, 8)

	must.M(Expand(g, cons, ctx))

	clones := output.Inputs()
	require.Len(t, clones, 4)
	names := xslices.Map(clones, func(n *graph.Node) string { return n.Name() })
	assert.Equal(t, []string{"op_M:0", "op_M:1", "op_M:2", "op_M:3"}, names)

	// Independent siblings: every clone resolves its operand at its own
	// coordinate, no operand clone is shared.
	operands := map[*graph.Node]bool{}
	for ii, clone := range clones {
		require.Len(t, clone.Inputs(), 1)
		operand := clone.Inputs()[0]
		assert.Equal(t, ExpandedName(x, graph.NewDimMap().Set(dimM, ii)), operand.Name())
		operands[operand] = true
	}
	assert.Len(t, operands, 4)

	// The originals are superseded and gone.
	assert.NotContains(t, liveNames(g), "op")
	assert.NotContains(t, liveNames(g), "x")
}

// buildGemm wires the classic read->mma->write region over (M, N, K).
func buildGemm(t *testing.T) (*graph.Graph, []constraints.Constraint, *symbolic.Context) {
	t.Helper()
	g := graph.New("gemm")
	memA := g.Placeholder("a", lang.NewMemory([]any{dimM, dimK}, lang.AddressSpaceGlobal, dtypes.Float16))
	memB := g.Placeholder("b", lang.NewMemory([]any{dimN, dimK}, lang.AddressSpaceGlobal, dtypes.Float16))
	memC := g.Placeholder("c", lang.NewMemory([]any{dimM, dimN}, lang.AddressSpaceGlobal, dtypes.Float32))

	readA := g.Read("read_a", memA, lang.NewRegister([]any{dimM, dimK}, dtypes.Float16), 4, nil)
	readA.SetVectorShapes(map[symbolic.Symbol]int{dimM: 4, dimK: 16})
	readB := g.Read("read_b", memB, lang.NewRegister([]any{dimN, dimK}, dtypes.Float16), 4, nil)
	readB.SetVectorShapes(map[symbolic.Symbol]int{dimN: 2, dimK: 16})
	acc := g.NewRegister("acc", lang.NewRegister([]any{dimM, dimN}, dtypes.Float32), 0.0)
	acc.SetVectorShapes(map[symbolic.Symbol]int{dimM: 4, dimN: 2})
	mma := g.MMA("mma", readA, readB, acc)
	mma.SetVectorShapes(map[symbolic.Symbol]int{dimM: 4, dimN: 2})
	write := g.Write("write_c", mma, memC, 4, nil)
	write.SetVectorShapes(map[symbolic.Symbol]int{dimM: 4, dimN: 2})
	g.Output(write)

	cons := []constraints.Constraint{
		&constraints.HardwareConstraint{ThreadsPerWave: 64, WavesPerBlock: [3]int{1, 1, 1}},
		&constraints.WorkgroupConstraint{Dim: dimM, TileSize: blockM, WorkgroupDim: 0, Primary: true},
		&constraints.WorkgroupConstraint{Dim: dimN, TileSize: blockN, WorkgroupDim: 1, Primary: true},
	}
	// M scales by ceil(8/4)=2, N by ceil(4/2)=2.
	ctx := symbolic.NewContext().Bind(blockM, 8).Bind(blockN, 4)
	return g, cons, ctx
}

func TestExpandGemm(t *testing.T) {
	g, cons, ctx := buildGemm(t)
	must.M(Expand(g, cons, ctx))

	names := liveNames(g)
	for _, want := range []string{
		"write_c_M:0_N:0", "write_c_M:0_N:1", "write_c_M:1_N:0", "write_c_M:1_N:1",
		"mma_M:0_N:0", "mma_M:0_N:1", "mma_M:1_N:0", "mma_M:1_N:1",
		"read_a_M:0", "read_a_M:1", "read_b_N:0", "read_b_N:1",
		"acc_M:0_N:0", "acc_M:0_N:1", "acc_M:1_N:0", "acc_M:1_N:1",
	} {
		assert.Contains(t, names, want)
	}
	for _, gone := range []string{"write_c", "mma", "read_a", "read_b", "acc"} {
		assert.NotContains(t, names, gone)
	}
	// Signature placeholders are indexed directly, never cloned.
	for _, kept := range []string{"a", "b", "c"} {
		assert.Contains(t, names, kept)
	}

	// Sharing: both N-clones of an M-row consume the identical read_a clone.
	mma00 := findLive(t, g, "mma_M:0_N:0")
	mma01 := findLive(t, g, "mma_M:0_N:1")
	require.Same(t, mma00.Inputs()[0], mma01.Inputs()[0])
	assert.Equal(t, "read_a_M:0", mma00.Inputs()[0].Name())
	assert.NotSame(t, mma00.Inputs()[1], mma01.Inputs()[1], "read_b differs along N")

	// Each mma clone carries its coordinate.
	assert.True(t, mma00.DimQuery().Equal(graph.NewDimMap().Set(dimM, 0).Set(dimN, 0)))
}

func TestExpandMarksLastMMA(t *testing.T) {
	g, cons, ctx := buildGemm(t)
	must.M(Expand(g, cons, ctx))

	for _, tc := range []struct {
		name string
		last bool
	}{
		{"mma_M:0_N:0", false},
		{"mma_M:0_N:1", false},
		{"mma_M:1_N:0", false},
		{"mma_M:1_N:1", true},
	} {
		assert.Equal(t, tc.last, findLive(t, g, tc.name).LastMMA(), tc.name)
	}
}

func TestExpandMemoization(t *testing.T) {
	g := graph.New("shared")
	x := g.IterArg("x", lang.NewRegister([]any{dimM}, dtypes.Float32))
	x.SetVectorShapes(map[symbolic.Symbol]int{dimM: 2})
	double := g.Binary("add", x, x)
	double.SetVectorShapes(map[symbolic.Symbol]int{dimM: 2})
	square := g.Binary("mul", x, x)
	square.SetVectorShapes(map[symbolic.Symbol]int{dimM: 2})
	g.Output(double, square)

	cons := []constraints.Constraint{
		&constraints.HardwareConstraint{ThreadsPerWave: 64, WavesPerBlock: [3]int{1, 1, 1}},
		&constraints.WorkgroupConstraint{Dim: dimM, TileSize: symbolic.Const(4), WorkgroupDim: 0},
	}
	must.M(Expand(g, cons, symbolic.NewContext()))

	// Both consumers at the same coordinate share the identical operand clone.
	add0 := findLive(t, g, "add_M:0")
	mul0 := findLive(t, g, "mul_M:0")
	require.Same(t, add0.Inputs()[0], add0.Inputs()[1])
	require.Same(t, add0.Inputs()[0], mul0.Inputs()[0])
	assert.Equal(t, "x_M:0", add0.Inputs()[0].Name())

	// x expanded into exactly 2 clones, not one per request.
	xClones := g.Walk(func(n *graph.Node) bool { return n.Op() == graph.OpTypeIterArg })
	assert.Len(t, xClones, 2)
}

func TestExpandReshapeGranularityChange(t *testing.T) {
	g := graph.New("reshape")
	x := g.IterArg("x", lang.NewRegister([]any{dimM}, dtypes.Float32))
	x.SetVectorShapes(map[symbolic.Symbol]int{dimM: 8})
	reshape := g.Reshape("reshape", x, map[symbolic.Symbol]int{dimM: 2})
	reshape.SetVectorShapes(map[symbolic.Symbol]int{dimM: 8})
	g.Output(reshape)

	cons := []constraints.Constraint{
		&constraints.HardwareConstraint{ThreadsPerWave: 64, WavesPerBlock: [3]int{1, 1, 1}},
		&constraints.WorkgroupConstraint{Dim: dimM, TileSize: symbolic.Const(16), WorkgroupDim: 0},
	}
	must.M(Expand(g, cons, symbolic.NewContext()))

	// The reshape itself scales by ceil(16/8)=2; each clone concatenates the 4
	// source coordinates of its slice.
	r0 := findLive(t, g, "reshape_M:0")
	require.Len(t, r0.Inputs(), 4)
	got := xslices.Map(r0.Inputs(), func(n *graph.Node) string { return n.Name() })
	assert.Equal(t, []string{"x_M:0", "x_M:1", "x_M:2", "x_M:3"}, got)

	r1 := findLive(t, g, "reshape_M:1")
	got = xslices.Map(r1.Inputs(), func(n *graph.Node) string { return n.Name() })
	assert.Equal(t, []string{"x_M:4", "x_M:5", "x_M:6", "x_M:7"}, got)
}

func TestExpandCleanup(t *testing.T) {
	g, cons, ctx := buildGemm(t)
	// An extra register and iter arg nothing consumes after expansion.
	g.NewRegister("orphan", lang.NewRegister([]any{dimM}, dtypes.Float32), 0)
	g.IterArg("stale", lang.NewRegister([]any{dimM}, dtypes.Float32))

	must.M(Expand(g, cons, ctx))

	for _, node := range g.Walk(nil) {
		switch node.Op() {
		case graph.OpTypeNewRegister, graph.OpTypeIterArg:
			assert.Positive(t, node.NumConsumers(), "node %q survived cleanup without consumers", node.Name())
		}
	}
	names := liveNames(g)
	assert.NotContains(t, names, "orphan")
	assert.NotContains(t, names, "stale")
}

func TestExpandRequiresHardwareConstraint(t *testing.T) {
	g, _, ctx := buildGemm(t)
	err := Expand(g, []constraints.Constraint{
		&constraints.WorkgroupConstraint{Dim: dimM, TileSize: blockM, WorkgroupDim: 0},
	}, ctx)
	require.Error(t, err)
}
