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

// Package expansion rewrites a symbolically-shaped dataflow graph into its
// hardware decomposition: every operation is cloned once per replica coordinate
// the constraint set requires, with operands rewired through the corresponding
// clones of their producers.
//
// The rewrite is driven from the graph outputs and memoized per (node,
// coordinate), so a sub-expression shared by several consumers expands once and
// is reused. Reshape operations, which change the expansion granularity between
// producer and consumer, resolve each clone to one or several source-coordinate
// clones of their operand. Once all clones exist, the superseded original nodes
// and any unused register or loop-carried values are erased.
package expansion

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/suryajasper/wave/constraints"
	"github.com/suryajasper/wave/graph"
	"github.com/suryajasper/wave/types/symbolic"
)

// memoKey identifies one (node, coordinate) expansion request. The coordinate is
// the canonical rendering of the dim query, so two queries over the same
// dimension values hit the same entry regardless of insertion order.
type memoKey struct {
	id    graph.NodeId
	query string
}

// expansionContext is the session state of one Expand invocation. It owns the
// clone memo and a per-node scaling cache; both live exactly as long as the pass.
type expansionContext struct {
	g    *graph.Graph
	cons []constraints.Constraint
	ctx  *symbolic.Context

	memo    map[memoKey]*graph.Node
	scaling map[graph.NodeId]*graph.DimMap

	// originals collects the pre-expansion nodes superseded by clones, the seed of
	// the cleanup worklist.
	originals []*graph.Node
}

// Expand rewrites g in place: every operation reachable from the graph outputs is
// replaced by its full set of replica clones under the given constraint set, then
// the superseded originals and any unused registers and loop-carried arguments
// are removed. The symbol context must bind every tile size and problem extent
// the constraints refer to.
func Expand(g *graph.Graph, cons []constraints.Constraint, ctx *symbolic.Context) error {
	if err := constraints.Validate(cons, ctx); err != nil {
		return errors.WithMessage(err, "invalid constraint set for expansion")
	}
	ec := &expansionContext{
		g:       g,
		cons:    cons,
		ctx:     ctx,
		memo:    make(map[memoKey]*graph.Node),
		scaling: make(map[graph.NodeId]*graph.DimMap),
	}

	for _, output := range g.Outputs() {
		var expanded []*graph.Node
		for _, operand := range output.Inputs() {
			clones, err := ec.expandOperand(operand)
			if err != nil {
				return err
			}
			expanded = append(expanded, clones...)
		}
		output.SetInputs(expanded)
	}

	RemoveOriginalNodes(ec.originals)
	RemoveUnusedRegisters(g)
	RemoveUnusedIterArgs(g)
	return nil
}

// expandOperand expands one output operand into its full clone set, in row-major
// coordinate order.
func (ec *expansionContext) expandOperand(node *graph.Node) ([]*graph.Node, error) {
	if !IsExpandable(node) {
		return []*graph.Node{node}, nil
	}
	scaling, err := ec.dimScaling(node)
	if err != nil {
		return nil, err
	}
	queries := scalingQueries(scaling)
	clones := make([]*graph.Node, 0, len(queries))
	for _, query := range queries {
		clone, err := ec.expandNode(node, &ExpansionMetadata{DimQuery: query})
		if err != nil {
			return nil, err
		}
		clones = append(clones, clone)
	}
	ec.retire(node)
	return clones, nil
}

// dimScaling resolves and caches the scaling map of a node. The cache also keeps
// the divisibility advisory from repeating per clone.
func (ec *expansionContext) dimScaling(node *graph.Node) (*graph.DimMap, error) {
	if scaling, found := ec.scaling[node.Id()]; found {
		return scaling, nil
	}
	scaling, err := DimScaling(node, ec.cons, ec.ctx)
	if err != nil {
		return nil, errors.WithMessagef(err, "resolving dimension scaling of %q", node.Name())
	}
	ec.scaling[node.Id()] = scaling
	return scaling, nil
}

// retire queues an original node for erasure once its consumers are gone.
func (ec *expansionContext) retire(node *graph.Node) {
	for _, queued := range ec.originals {
		if queued == node {
			return
		}
	}
	ec.originals = append(ec.originals, node)
}

// expandNode returns the clone of node at the coordinate in meta.DimQuery,
// creating it (and recursively the clones of its operands) on first request. The
// query may carry more dimensions than the node indexes; it is projected onto the
// node's own dimensions first, so consumers with richer coordinates share clones.
func (ec *expansionContext) expandNode(node *graph.Node, meta *ExpansionMetadata) (*graph.Node, error) {
	if !IsExpandable(node) {
		meta.DoNotExpand = true
		return node, nil
	}
	query := GetIndexedDims(meta.DimQuery, node)
	if query.Len() == 0 {
		// Coordinate-independent value, passed through unchanged.
		meta.DoNotExpand = true
		return node, nil
	}
	key := memoKey{id: node.Id(), query: query.CanonicalKey()}
	if clone, found := ec.memo[key]; found {
		return clone, nil
	}

	var inputs []*graph.Node
	var err error
	if node.Op() == graph.OpTypeReshape {
		inputs, err = ec.expandReshapeSources(node, query)
	} else {
		inputs, err = ec.expandInputs(node, query)
	}
	if err != nil {
		return nil, err
	}

	if node.Op() == graph.OpTypeMMA {
		meta.LastMMANode, err = ec.isLastCoordinate(node, query)
		if err != nil {
			return nil, err
		}
	}
	clone := node.CloneWith(ExpandedName(node, query), inputs)
	clone.SetDimQuery(query)
	clone.SetLastMMA(meta.LastMMANode)
	ec.memo[key] = clone
	ec.retire(node)
	klog.V(2).Infof("expanded %q at %s -> %q", node.Name(), query, clone.Name())
	return clone, nil
}

// expandInputs resolves the operands of a non-reshape clone: each expandable
// operand at the same coordinate, other operands unchanged.
func (ec *expansionContext) expandInputs(node *graph.Node, query *graph.DimMap) ([]*graph.Node, error) {
	inputs := make([]*graph.Node, 0, len(node.Inputs()))
	for _, input := range node.Inputs() {
		resolved, err := ec.expandNode(input, &ExpansionMetadata{DimQuery: query})
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, resolved)
	}
	return inputs, nil
}

// expandReshapeSources resolves the operand clones a reshape clone concatenates:
// one per source coordinate of the granularity change, resolved through the memo
// so coordinates shared between reshape clones expand once.
func (ec *expansionContext) expandReshapeSources(node *graph.Node, query *graph.DimMap) ([]*graph.Node, error) {
	source := node.Inputs()[0]
	sourceQueries := reshapeDimQueries(node, query)
	inputs := make([]*graph.Node, 0, len(sourceQueries))
	for ii, sourceQuery := range sourceQueries {
		meta := &ExpansionMetadata{
			DimQuery:       sourceQuery,
			SourceDimQuery: query,
			NumQueries:     len(sourceQueries),
			QueryIndex:     ii,
		}
		resolved, err := ec.expandNode(source, meta)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, resolved)
	}
	return inputs, nil
}

// isLastCoordinate reports whether query is the final point of node's scaling
// cross product, marking the terminal clone of an accumulation chain.
func (ec *expansionContext) isLastCoordinate(node *graph.Node, query *graph.DimMap) (bool, error) {
	scaling, err := ec.dimScaling(node)
	if err != nil {
		return false, err
	}
	for _, dim := range query.Dims() {
		if !scaling.Has(dim) {
			continue
		}
		if query.At(dim) != scaling.At(dim)-1 {
			return false, nil
		}
	}
	return true, nil
}
