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
	"github.com/suryajasper/wave/graph"
	"github.com/suryajasper/wave/types/symbolic"
	"github.com/suryajasper/wave/types/xslices"
)

// reshapeDimQueries returns the source coordinates that feed the clone of a
// reshape at the given target coordinate. A reshape changes the expansion
// granularity between its source vector shapes and its declared target vector
// shapes, so target coordinate v of a dimension maps to:
//
//   - source width s < target width t (split): the single source coordinate
//     v / (t/s); several target clones share one source clone.
//   - source width s > target width t (merge): the s/t consecutive source
//     coordinates starting at v * (s/t); one target clone concatenates them.
//
// The queries are the cross product of the per-dimension ranges, enumerated with
// the last dimension of the target coordinate varying fastest. The source clones
// themselves are resolved through the session memo, so a source coordinate shared
// by several reshape clones is only ever expanded once.
func reshapeDimQueries(reshape *graph.Node, query *graph.DimMap) []*graph.DimMap {
	srcShapes := reshape.VectorShapes()
	dstShapes := reshape.TargetVectorShapes()

	var dims []symbolic.Symbol
	perDim := make(map[symbolic.Symbol][]int)
	for _, dim := range query.Dims() {
		dstWidth, found := dstShapes[dim]
		if !found {
			continue
		}
		value := query.At(dim)
		srcWidth := srcShapes[dim]
		if srcWidth < dstWidth {
			scaleFactor := dstWidth / srcWidth
			perDim[dim] = []int{value / scaleFactor}
		} else {
			scaleFactor := srcWidth / dstWidth
			perDim[dim] = xslices.Iota(value*scaleFactor, scaleFactor)
		}
		dims = append(dims, dim)
	}

	total := 1
	for _, dim := range dims {
		total *= len(perDim[dim])
	}
	queries := make([]*graph.DimMap, 0, total)
	counters := make([]int, len(dims))
	for range total {
		q := graph.NewDimMap()
		for ii, dim := range dims {
			q.Set(dim, perDim[dim][counters[ii]])
		}
		queries = append(queries, q)
		for ii := len(counters) - 1; ii >= 0; ii-- {
			counters[ii]++
			if counters[ii] < len(perDim[dims[ii]]) {
				break
			}
			counters[ii] = 0
		}
	}
	return queries
}
