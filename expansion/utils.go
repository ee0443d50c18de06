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
	"fmt"

	"github.com/suryajasper/wave/graph"
	"github.com/suryajasper/wave/lang"
	"github.com/suryajasper/wave/types/symbolic"
	"github.com/suryajasper/wave/types/xslices"
)

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// IsExpandable reports whether a value participates in expansion. Plain
// kernel-signature placeholders never do: consumers index them directly at their
// resolved coordinates. Loop-carried iteration arguments do.
func IsExpandable(node *graph.Node) bool {
	if node == nil || node.Erased() {
		return false
	}
	switch node.Op() {
	case graph.OpTypePlaceholder, graph.OpTypeOutput, graph.OpTypeInvalid:
		return false
	}
	return true
}

// expandedDims returns the dimensions a node's clone coordinates range over: its
// indexing dimensions, plus the reduction dimension for a reduce operation.
func expandedDims(node *graph.Node) []symbolic.Symbol {
	dims := node.IndexingDims()
	if node.Op() != graph.OpTypeReduce {
		return dims
	}
	rdim := node.ReductionDim()
	for _, dim := range dims {
		if dim == rdim {
			return dims
		}
	}
	out := make([]symbolic.Symbol, 0, len(dims)+1)
	out = append(out, dims...)
	return append(out, rdim)
}

// GetIndexedDims projects allDims onto the dimensions the node actually indexes,
// preserving the node's dimension order.
func GetIndexedDims(allDims *graph.DimMap, node *graph.Node) *graph.DimMap {
	return allDims.Restrict(expandedDims(node))
}

// maxNameChars is how much of a dimension symbol survives in a clone name before
// abbreviation.
const maxNameChars = 4

// ExpandedName returns the diagnostic name of the clone of node at coordinate
// dims: the original name with one _<dim>:<value> suffix per coordinate dimension.
// Dimension symbols longer than four characters are abbreviated with a '*' marker.
// Reads and writes whose storage lives in shared memory get a "_shared" infix
// before the coordinate suffixes.
func ExpandedName(node *graph.Node, dims *graph.DimMap) string {
	name := node.Name()
	switch node.Op() {
	case graph.OpTypeRead, graph.OpTypeWrite:
		if mem, ok := node.MemoryOperand().Type().(*lang.Memory); ok &&
			mem.AddressSpace() == lang.AddressSpaceShared {
			name += "_shared"
		}
	}
	for _, dim := range dims.Dims() {
		keyStr := string(dim)
		if len(keyStr) > maxNameChars {
			keyStr = keyStr[:maxNameChars] + "*"
		}
		name += fmt.Sprintf("_%s:%d", keyStr, dims.At(dim))
	}
	return name
}

// ComputeStrides returns the stride of each dimension of the scaling map, in map
// order, with the last dimension varying fastest.
func ComputeStrides(dimScaling *graph.DimMap) []int {
	dims := dimScaling.Dims()
	strides := xslices.SliceWithValue(len(dims), 1)
	stride := 1
	for ii := len(dims) - 1; ii >= 0; ii-- {
		strides[ii] = stride
		stride *= dimScaling.At(dims[ii])
	}
	return strides
}

// scalingQueries enumerates every point of the cross product of the per-dimension
// scaling ranges, in row-major order (last dimension varies fastest), each as a
// dim query.
func scalingQueries(scaling *graph.DimMap) []*graph.DimMap {
	dims := scaling.Dims()
	if len(dims) == 0 {
		return []*graph.DimMap{graph.NewDimMap()}
	}
	total := 1
	for _, dim := range dims {
		total *= scaling.At(dim)
	}
	queries := make([]*graph.DimMap, 0, total)
	counters := make([]int, len(dims))
	for {
		query := graph.NewDimMap()
		for ii, dim := range dims {
			query.Set(dim, counters[ii])
		}
		queries = append(queries, query)

		ii := len(counters) - 1
		for ; ii >= 0; ii-- {
			counters[ii]++
			if counters[ii] < scaling.At(dims[ii]) {
				break
			}
			counters[ii] = 0
		}
		if ii < 0 {
			break
		}
	}
	return queries
}
