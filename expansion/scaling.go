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
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/suryajasper/wave/constraints"
	"github.com/suryajasper/wave/graph"
	"github.com/suryajasper/wave/lang"
	"github.com/suryajasper/wave/types/symbolic"
)

// DimScaling computes, per logical dimension of node, how many physical replicas
// the constraint set requires. A dimension bound by a workgroup or tiling
// constraint scales by ceil(tileSize / (waveCount * vectorWidth)), with the wave
// count read from the hardware constraint's waves-per-block along the workgroup
// axis (loop-tiled dimensions do not subdivide across waves). Dimensions the node
// indexes that no constraint covers, but whose extent is statically bound, scale
// by ceil(extent / vectorWidth). A vector width of zero marks a batch dimension
// and is never scaled.
//
// The result is keyed per node, consumed immediately by the clone enumeration and
// not retained.
func DimScaling(node *graph.Node, cons []constraints.Constraint, ctx *symbolic.Context) (*graph.DimMap, error) {
	scaling := graph.NewDimMap()
	vectorShapes := node.VectorShapes()
	if vectorShapes == nil {
		return scaling, nil
	}

	hw, err := constraints.Hardware(cons)
	if err != nil {
		return nil, err
	}

	// Map each dimension to its declared shape entry, so derived shapes like K/2
	// can have the tile size substituted in before resolving.
	dimToShape := make(map[symbolic.Symbol]symbolic.Expr)
	if typ := node.Type(); typ != nil {
		for _, sizeExpr := range typ.SymbolicShape() {
			dim, ok := symbolic.InferDim(sizeExpr)
			if !ok {
				continue
			}
			dimToShape[dim] = sizeExpr
		}
	}

	for _, c := range cons {
		var dim symbolic.Symbol
		var tileExpr symbolic.Expr
		waveCount := 1
		switch v := c.(type) {
		case *constraints.WorkgroupConstraint:
			dim, tileExpr = v.Dim, v.TileSize
			waveCount = hw.WavesPerBlock[v.WorkgroupDim]
		case *constraints.TilingConstraint:
			dim, tileExpr = v.Dim, v.TileSize
		default:
			continue
		}

		if shape, found := dimToShape[dim]; found && !symbolic.Equal(shape, dim) {
			tileExpr = symbolic.Subs(shape, map[symbolic.Symbol]symbolic.Expr{dim: tileExpr})
		}
		vectorWidth, found := vectorShapes[dim]
		if !found {
			continue
		}
		if vectorWidth == 0 {
			// Batch dimension, never replicated.
			continue
		}
		tileSize, ok := ctx.StaticValue(tileExpr)
		if !ok {
			return nil, errors.Errorf("tile size %s for dimension %s must be statically known", tileExpr, dim)
		}
		if waveCount <= 0 || vectorWidth < 0 {
			return nil, errors.Errorf("wave count and vector width must be positive for dimension %s, got waveCount=%d, vectorWidth=%d",
				dim, waveCount, vectorWidth)
		}
		if tileSize%waveCount != 0 || (tileSize/waveCount)%vectorWidth != 0 {
			klog.Warningf("tile size is not divisible by wave count and vector size: dim=%s, tileSize=%d, waveCount=%d, vectorWidth=%d",
				dim, tileSize, waveCount, vectorWidth)
		}
		scaling.Set(dim, ceilDiv(tileSize, waveCount*vectorWidth))
	}

	if _, isScalar := node.Type().(*lang.Scalar); isScalar {
		return graph.NewDimMap(), nil
	}

	// Dimensions the node indexes that carry no constraint still scale when their
	// extent is statically bound.
	for _, dim := range node.IndexingDims() {
		if scaling.Has(dim) {
			continue
		}
		extent, bound := ctx.Value(dim)
		if !bound {
			continue
		}
		vectorWidth, found := vectorShapes[dim]
		if !found || vectorWidth <= 0 {
			continue
		}
		scaling.Set(dim, ceilDiv(extent, vectorWidth))
	}

	if node.Op() == graph.OpTypeReduce {
		rdim := node.ReductionDim()
		if !scaling.Has(rdim) {
			if extent, bound := ctx.Value(rdim); bound {
				if vectorWidth, found := vectorShapes[rdim]; found && vectorWidth > 0 {
					scaling.Set(rdim, ceilDiv(extent, vectorWidth))
				}
			}
		}
	}

	return scaling, nil
}
