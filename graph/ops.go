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
	"slices"

	"github.com/gomlx/exceptions"

	"github.com/suryajasper/wave/lang"
	"github.com/suryajasper/wave/types/symbolic"
)

// indexingDimsOf infers the logical dimensions indexed by a value of the given
// type: one per shape entry that refers to a dimension symbol. Constant entries
// contribute nothing.
func indexingDimsOf(typ lang.Type) (dims []symbolic.Symbol) {
	if typ == nil {
		return nil
	}
	for _, entry := range typ.SymbolicShape() {
		if dim, ok := symbolic.InferDim(entry); ok {
			dims = append(dims, dim)
		}
	}
	return
}

// Placeholder creates a kernel-signature input. Placeholders are indexed directly
// by their consumers' resolved coordinates and are never themselves expanded.
func (g *Graph) Placeholder(name string, typ lang.Type) *Node {
	if typ == nil {
		exceptions.Panicf("graph.Placeholder(%q): a symbolic type is required", name)
	}
	return g.registerNode(&Node{
		op:           OpTypePlaceholder,
		name:         name,
		typ:          typ,
		indexingDims: indexingDimsOf(typ),
	})
}

// IterArg creates a loop-carried iteration argument. It behaves as a placeholder
// for wiring purposes but does participate in expansion.
func (g *Graph) IterArg(name string, typ lang.Type) *Node {
	return g.registerNode(&Node{
		op:           OpTypeIterArg,
		name:         name,
		typ:          typ,
		indexingDims: indexingDimsOf(typ),
	})
}

// NewRegister creates a virtual register value filled with initValue.
func (g *Graph) NewRegister(name string, typ *lang.Register, initValue float64) *Node {
	return g.registerNode(&Node{
		op:           OpTypeNewRegister,
		name:         name,
		typ:          typ,
		initValue:    initValue,
		indexingDims: indexingDimsOf(typ),
	})
}

// Read creates a memory read: memory must be a node with a Memory type. The
// optional mapping describes a gather-style access; nil means plain strided
// access.
func (g *Graph) Read(name string, memory *Node, typ *lang.Register, elementsPerThread int, mapping *lang.IndexMapping) *Node {
	if _, ok := memory.Type().(*lang.Memory); !ok {
		exceptions.Panicf("graph.Read(%q): operand %q is not memory-typed", name, memory.Name())
	}
	return g.registerNode(&Node{
		op:                OpTypeRead,
		name:              name,
		typ:               typ,
		inputNodes:        []*Node{memory},
		elementsPerThread: elementsPerThread,
		mapping:           mapping,
		indexingDims:      indexingDimsOf(typ),
	})
}

// Write creates a memory write of value into memory. It produces no value; its
// indexing dimensions come from the written value.
func (g *Graph) Write(name string, value, memory *Node, elementsPerThread int, mapping *lang.IndexMapping) *Node {
	if _, ok := memory.Type().(*lang.Memory); !ok {
		exceptions.Panicf("graph.Write(%q): operand %q is not memory-typed", name, memory.Name())
	}
	return g.registerNode(&Node{
		op:                OpTypeWrite,
		name:              name,
		inputNodes:        []*Node{value, memory},
		elementsPerThread: elementsPerThread,
		mapping:           mapping,
		indexingDims:      indexingDimsOf(value.Type()),
	})
}

// MMA creates a matrix-multiply-accumulate over lhs, rhs and the accumulator acc.
// Its type and indexing dimensions follow the accumulator.
func (g *Graph) MMA(name string, lhs, rhs, acc *Node) *Node {
	return g.registerNode(&Node{
		op:           OpTypeMMA,
		name:         name,
		typ:          acc.Type(),
		inputNodes:   []*Node{lhs, rhs, acc},
		indexingDims: indexingDimsOf(acc.Type()),
	})
}

// Binary creates a generic elementwise binary operation. The name doubles as the
// operation mnemonic (e.g. "add", "maximum").
func (g *Graph) Binary(name string, lhs, rhs *Node) *Node {
	return g.registerNode(&Node{
		op:           OpTypeBinary,
		name:         name,
		typ:          lhs.Type(),
		inputNodes:   []*Node{lhs, rhs},
		indexingDims: indexingDimsOf(lhs.Type()),
	})
}

// Reduce creates a reduction of arg along dim, seeded with init.
func (g *Graph) Reduce(name string, arg, init *Node, dim symbolic.Symbol, typ lang.Type) *Node {
	return g.registerNode(&Node{
		op:           OpTypeReduce,
		name:         name,
		typ:          typ,
		inputNodes:   []*Node{arg, init},
		reductionDim: dim,
		indexingDims: indexingDimsOf(typ),
	})
}

// Reshape creates a granularity change of arg towards the given target vector
// widths. Before expansion a reshape has a single operand; its expanded clones may
// concatenate several source replicas.
func (g *Graph) Reshape(name string, arg *Node, targetVectorShapes map[symbolic.Symbol]int) *Node {
	return g.registerNode(&Node{
		op:                 OpTypeReshape,
		name:               name,
		typ:                arg.Type(),
		inputNodes:         []*Node{arg},
		targetVectorShapes: targetVectorShapes,
		indexingDims:       indexingDimsOf(arg.Type()),
	})
}

// Output anchors the graph results.
func (g *Graph) Output(values ...*Node) *Node {
	node := g.registerNode(&Node{
		op:         OpTypeOutput,
		name:       "output",
		inputNodes: slices.Clone(values),
	})
	g.outputs = append(g.outputs, node)
	return node
}

// CloneWith creates a copy of the node with the given name and operands, inserted
// into the program order immediately after the original. All op payloads (vector
// shapes, reduction dim, mapping, ...) are carried over.
func (n *Node) CloneWith(name string, inputs []*Node) *Node {
	n.AssertValid()
	clone := &Node{
		op:                 n.op,
		name:               name,
		typ:                n.typ,
		inputNodes:         slices.Clone(inputs),
		vectorShapes:       n.vectorShapes,
		indexingDims:       n.indexingDims,
		reductionDim:       n.reductionDim,
		targetVectorShapes: n.targetVectorShapes,
		mapping:            n.mapping,
		elementsPerThread:  n.elementsPerThread,
		initValue:          n.initValue,
	}
	g := n.graph
	g.registerNode(clone)
	g.InsertAfter(clone, n)
	return clone
}

// ReplaceInput rewires every operand slot of n currently pointing at old to point
// at replacement, keeping consumer counts consistent.
func (n *Node) ReplaceInput(old, replacement *Node) {
	n.AssertValid()
	replaced := 0
	for ii, input := range n.inputNodes {
		if input == old {
			n.inputNodes[ii] = replacement
			replaced++
		}
	}
	if replaced == 0 {
		return
	}
	old.consumers[n.id] -= replaced
	if old.consumers[n.id] <= 0 {
		delete(old.consumers, n.id)
	}
	replacement.consumers[n.id] += replaced
}

// SetInputs replaces the full operand list of n, keeping consumer counts
// consistent. The output anchor uses this after expansion to point at the whole
// clone set at once.
func (n *Node) SetInputs(inputs []*Node) {
	n.AssertValid()
	for _, input := range n.inputNodes {
		input.consumers[n.id]--
		if input.consumers[n.id] <= 0 {
			delete(input.consumers, n.id)
		}
	}
	n.inputNodes = slices.Clone(inputs)
	for _, input := range n.inputNodes {
		input.AssertValid()
		input.consumers[n.id]++
	}
}
