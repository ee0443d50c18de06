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

package graph

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"

	"github.com/suryajasper/wave/lang"
	"github.com/suryajasper/wave/types/symbolic"
)

// OpType identifies the operation performed by a Node. It is a closed set: every
// pass dispatches on it with a type switch rather than duck typing.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpType -output=gen_optype_enumer.go node.go

const (
	OpTypeInvalid OpType = iota

	// OpTypePlaceholder is a kernel-signature input. Never replicated by
	// expansion: consumers index it directly at their resolved coordinate.
	OpTypePlaceholder

	// OpTypeIterArg is a loop-carried value entering an iteration body. Unlike a
	// plain placeholder, it participates in expansion.
	OpTypeIterArg

	// OpTypeNewRegister materializes a virtual register value, e.g. an
	// accumulator filled with a constant.
	OpTypeNewRegister

	OpTypeRead
	OpTypeWrite
	OpTypeMMA
	OpTypeBinary
	OpTypeReduce

	// OpTypeReshape changes the expansion granularity of a value between a
	// producer and a consumer; its expanded form concatenates several source
	// replicas or selects a fraction of one.
	OpTypeReshape

	// OpTypeOutput anchors the graph results.
	OpTypeOutput
)

// Node is one operation in the dataflow graph. Nodes live in the graph's arena and
// are identified by a stable NodeId; erasing a node marks it erased without
// invalidating other nodes' ids.
type Node struct {
	graph *Graph
	id    NodeId
	op    OpType
	name  string

	// typ is the symbolic type of the produced value; nil for nodes that produce
	// no value (Write, Output).
	typ lang.Type

	// inputNodes are the operand edges, in operand order. A node may consume the
	// same operand more than once.
	inputNodes []*Node

	// consumers counts, per consumer node, how many operand slots of that
	// consumer point here. Erasure requires the total to be zero.
	consumers map[NodeId]int

	prev, next *Node
	erased     bool

	// vectorShapes is the per-dimension width (in elements) each instance of this
	// operation processes per replica; nil means the node does not expand.
	vectorShapes map[symbolic.Symbol]int

	// indexingDims are the logical dimensions the operation indexes, in shape
	// order.
	indexingDims []symbolic.Symbol

	// Per-OpType payloads.
	reductionDim       symbolic.Symbol         // Reduce
	targetVectorShapes map[symbolic.Symbol]int // Reshape
	mapping            *lang.IndexMapping      // Read/Write, optional
	elementsPerThread  int                     // Read/Write
	initValue          float64                 // NewRegister

	// dimQuery is the concrete replica coordinate of an expanded clone; nil on
	// pre-expansion nodes.
	dimQuery *DimMap

	// lastMMA marks the terminal clone of an accumulation chain.
	lastMMA bool
}

// Op returns the operation type.
func (n *Node) Op() OpType { return n.op }

// Graph that holds this Node.
func (n *Node) Graph() *Graph { return n.graph }

// Id is the stable id of this node within the graph arena.
func (n *Node) Id() NodeId { return n.id }

// Name is the diagnostic name of the node. Expanded clones carry the original name
// plus one coordinate suffix per dimension.
func (n *Node) Name() string { return n.name }

// Type returns the symbolic type of the produced value, or nil.
func (n *Node) Type() lang.Type { return n.typ }

// DType returns the element type of the produced value.
func (n *Node) DType() dtypes.DType {
	if n.typ == nil {
		return dtypes.InvalidDType
	}
	return n.typ.DType()
}

// Inputs are the operand edges, in operand order.
func (n *Node) Inputs() []*Node { return n.inputNodes }

// NumConsumers returns how many operand slots in the graph point at this node.
func (n *Node) NumConsumers() (total int) {
	for _, count := range n.consumers {
		total += count
	}
	return
}

// Consumers returns the distinct consumer nodes.
func (n *Node) Consumers() (users []*Node) {
	for id := range n.consumers {
		users = append(users, n.graph.nodes[id])
	}
	return
}

// Erased reports whether the node has been erased from the graph.
func (n *Node) Erased() bool { return n.erased }

// VectorShapes returns the per-dimension vector width of the operation, or nil if
// the node does not participate in expansion.
func (n *Node) VectorShapes() map[symbolic.Symbol]int { return n.vectorShapes }

// SetVectorShapes overrides the node's per-dimension vector widths.
func (n *Node) SetVectorShapes(shapes map[symbolic.Symbol]int) { n.vectorShapes = shapes }

// IndexingDims returns the logical dimensions the operation indexes, in shape
// order.
func (n *Node) IndexingDims() []symbolic.Symbol { return n.indexingDims }

// ReductionDim returns the reduction dimension of a Reduce node.
func (n *Node) ReductionDim() symbolic.Symbol {
	if n.op != OpTypeReduce {
		exceptions.Panicf("node %q (%s) has no reduction dimension", n.name, n.op)
	}
	return n.reductionDim
}

// TargetVectorShapes returns the vector widths a Reshape converts its source to.
func (n *Node) TargetVectorShapes() map[symbolic.Symbol]int {
	if n.op != OpTypeReshape {
		exceptions.Panicf("node %q (%s) has no target vector shape", n.name, n.op)
	}
	return n.targetVectorShapes
}

// Mapping returns the index mapping of a Read/Write node, or nil for plain strided
// access.
func (n *Node) Mapping() *lang.IndexMapping { return n.mapping }

// ElementsPerThread returns how many elements each lane moves per Read/Write.
func (n *Node) ElementsPerThread() int { return n.elementsPerThread }

// InitValue returns the fill value of a NewRegister node.
func (n *Node) InitValue() float64 { return n.initValue }

// MemoryOperand returns the storage operand of a Read or Write node, nil for other
// ops.
func (n *Node) MemoryOperand() *Node {
	switch n.op {
	case OpTypeRead:
		return n.inputNodes[0]
	case OpTypeWrite:
		return n.inputNodes[1]
	}
	return nil
}

// DimQuery returns the replica coordinate of an expanded clone, or nil for
// pre-expansion nodes.
func (n *Node) DimQuery() *DimMap { return n.dimQuery }

// SetDimQuery tags the node with its replica coordinate.
func (n *Node) SetDimQuery(q *DimMap) { n.dimQuery = q }

// LastMMA reports whether this clone terminates an accumulation chain.
func (n *Node) LastMMA() bool { return n.lastMMA }

// SetLastMMA marks the node as the terminal clone of an accumulation chain.
func (n *Node) SetLastMMA(last bool) { n.lastMMA = last }

// AssertValid panics if n is nil or erased.
func (n *Node) AssertValid() {
	if n == nil {
		exceptions.Panicf("Node is nil")
	}
	if n.erased {
		exceptions.Panicf("node %q has been erased", n.name)
	}
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	if n == nil {
		return "Node(nil)"
	}
	inputs := make([]string, len(n.inputNodes))
	for ii, input := range n.inputNodes {
		inputs[ii] = input.name
	}
	str := fmt.Sprintf("%s[%s](%s)", n.name, n.op, strings.Join(inputs, ", "))
	if n.typ != nil {
		str += " -> " + n.typ.String()
	}
	if n.dimQuery != nil {
		str += " @" + n.dimQuery.String()
	}
	if n.erased {
		str += " [erased]"
	}
	return str
}
