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

// Package graph implements the mutable dataflow graph the rewriting passes operate
// on: a DAG of operations over symbolically-shaped values, with heavy operand
// sharing and loop-carried values.
//
// Nodes live in an arena and carry stable ids; erasure marks a node dead and
// detaches its operand edges without invalidating ids, so passes that mutate the
// graph in place can keep indexing by NodeId throughout. Program order is a linked
// list threaded through the nodes: newly created clones are inserted adjacent to
// the operation they replace.
//
// The graph is single-threaded by design; it is built and rewritten synchronously
// within one compilation invocation.
package graph

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
)

// NodeId is a stable node index within a Graph's arena.
type NodeId int

// InvalidNodeId indicates a node that failed to be created.
const InvalidNodeId = NodeId(-1)

// Graph holds the operations and dependencies of one kernel region.
type Graph struct {
	name string

	// nodes is the arena: append-only, indexed by NodeId, including erased nodes.
	nodes []*Node

	// head/tail thread the program order through live nodes.
	head, tail *Node

	outputs []*Node
}

// New creates an empty graph.
func New(name string) *Graph {
	return &Graph{name: name}
}

// Name of the kernel region this graph describes.
func (g *Graph) Name() string { return g.name }

// NumNodes returns the arena size, counting erased nodes.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NodeById returns the node with the given arena id, which may be erased.
func (g *Graph) NodeById(id NodeId) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		exceptions.Panicf("graph %q has no node id=%d (%d nodes)", g.name, id, len(g.nodes))
	}
	return g.nodes[id]
}

// Outputs returns the Output nodes anchoring the graph results.
func (g *Graph) Outputs() []*Node { return g.outputs }

// registerNode places the node in the arena and links it at the end of the program
// order, wiring consumer edges for its operands.
func (g *Graph) registerNode(node *Node) *Node {
	node.id = NodeId(len(g.nodes))
	node.graph = g
	node.consumers = make(map[NodeId]int)
	g.nodes = append(g.nodes, node)

	node.prev = g.tail
	if g.tail != nil {
		g.tail.next = node
	} else {
		g.head = node
	}
	g.tail = node

	for _, input := range node.inputNodes {
		input.AssertValid()
		input.consumers[node.id]++
	}
	return node
}

// InsertAfter moves node immediately after anchor in program order. Both must be
// live nodes of this graph.
func (g *Graph) InsertAfter(node, anchor *Node) {
	node.AssertValid()
	anchor.AssertValid()
	if node == anchor {
		return
	}
	g.unlink(node)
	node.prev = anchor
	node.next = anchor.next
	if anchor.next != nil {
		anchor.next.prev = node
	} else {
		g.tail = node
	}
	anchor.next = node
}

func (g *Graph) unlink(node *Node) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		g.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		g.tail = node.prev
	}
	node.prev, node.next = nil, nil
}

// Erase removes a node from the graph: it must have no remaining consumers. Its
// operand edges are detached (decrementing each operand's consumer count), it
// leaves the program order, and its arena slot is flagged erased. The NodeId stays
// valid for lookups.
func (g *Graph) Erase(node *Node) {
	node.AssertValid()
	if total := node.NumConsumers(); total > 0 {
		exceptions.Panicf("cannot erase node %q: it still has %d consumers", node.name, total)
	}
	for _, input := range node.inputNodes {
		input.consumers[node.id]--
		if input.consumers[node.id] <= 0 {
			delete(input.consumers, node.id)
		}
	}
	g.unlink(node)
	node.erased = true
}

// Walk calls visit for every live node in program order and returns the nodes for
// which visit returned true. A nil visit collects every live node.
func (g *Graph) Walk(visit func(*Node) bool) (nodes []*Node) {
	for node := g.head; node != nil; node = node.next {
		if visit == nil || visit(node) {
			nodes = append(nodes, node)
		}
	}
	return
}

// String converts the graph to a multi-line listing in program order.
func (g *Graph) String() string {
	parts := []string{fmt.Sprintf("Graph %q: %d nodes", g.name, len(g.nodes))}
	ii := 0
	for node := g.head; node != nil; node = node.next {
		parts = append(parts, fmt.Sprintf("#%d\t%s", ii, node))
		ii++
	}
	return strings.Join(parts, "\n")
}
