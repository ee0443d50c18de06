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
)

// RemoveOriginalNodes erases the pre-expansion nodes superseded by clones,
// together with everything reachable only through them. It runs an explicit
// worklist over the seed nodes and their operands rather than recursing, so the
// walk is bounded on deep graphs: a node is erased once its consumer count drops
// to zero, which in turn may free its operands further down the queue.
func RemoveOriginalNodes(seeds []*graph.Node) {
	queue := make([]*graph.Node, len(seeds))
	copy(queue, seeds)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node.Erased() {
			continue
		}
		queue = append(queue, node.Inputs()...)
		if node.NumConsumers() == 0 {
			node.Graph().Erase(node)
		}
	}
}

// RemoveUnusedRegisters erases register-creation nodes nothing consumes.
func RemoveUnusedRegisters(g *graph.Graph) {
	registers := g.Walk(func(n *graph.Node) bool {
		return n.Op() == graph.OpTypeNewRegister
	})
	for _, node := range registers {
		if node.NumConsumers() == 0 {
			g.Erase(node)
		}
	}
}

// RemoveUnusedIterArgs erases loop-carried iteration arguments nothing consumes,
// typically the originals left behind once every consumer was rewired to their
// clones.
func RemoveUnusedIterArgs(g *graph.Graph) {
	iterArgs := g.Walk(func(n *graph.Node) bool {
		return n.Op() == graph.OpTypeIterArg
	})
	for _, node := range iterArgs {
		if node.NumConsumers() == 0 {
			g.Erase(node)
		}
	}
}
