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

package lang

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"

	"github.com/suryajasper/wave/types/symbolic"
)

// MappingEntry associates one coordinate-space symbol with the expression, over the
// synthesized iterators, that produces its index.
type MappingEntry struct {
	Target symbolic.Symbol
	Value  symbolic.Expr
}

// SymbolsMap is an ordered mapping from coordinate-space symbols to index
// expressions. Order is significant: it is the declared coordinate order of the
// mapped space.
type SymbolsMap []MappingEntry

// Entry is a convenience constructor for one SymbolsMap entry. The value follows
// the usual promotion rules: ints become constants, strings become symbols.
func Entry(target symbolic.Symbol, value any) MappingEntry {
	return MappingEntry{Target: target, Value: symbolic.Promote(value)}
}

// Keys returns the coordinate symbols in declared order.
func (m SymbolsMap) Keys() []symbolic.Symbol {
	keys := make([]symbolic.Symbol, len(m))
	for ii, entry := range m {
		keys[ii] = entry.Target
	}
	return keys
}

// Values returns the index expressions in declared order.
func (m SymbolsMap) Values() []symbolic.Expr {
	values := make([]symbolic.Expr, len(m))
	for ii, entry := range m {
		values[ii] = entry.Value
	}
	return values
}

// Get returns the expression mapped to sym.
func (m SymbolsMap) Get(sym symbolic.Symbol) (symbolic.Expr, bool) {
	for _, entry := range m {
		if entry.Target == sym {
			return entry.Value, true
		}
	}
	return nil, false
}

// IndexMapping represents a coordinate transform between an iteration domain and an
// input/output coordinate space, used by gather/scatter-style memory operations.
//
// Construction synthesizes one iterator symbol per position ($index0..$indexN-1) and
// infers the iteration shape by unification: every place an iterator appears verbatim
// in the input or output mapping claims the coordinate's symbol as that iterator's
// size. Two differing claims for the same iterator are an "iterator conflict" and
// fail construction; an iterator never appearing verbatim leaves the iteration
// domain undeterminable and also fails.
//
// An IndexMapping is immutable once built; Substitute returns a new instance.
type IndexMapping struct {
	iters          map[symbolic.Symbol]int
	iterationShape []symbolic.Symbol
	inputMapping   SymbolsMap
	outputMapping  SymbolsMap

	dynamicValMappings []SymbolsMap
	dynamicValIndices  map[symbolic.Symbol]int
}

// Iterator returns the synthesized iterator symbol for the given position.
func Iterator(index int) symbolic.Symbol {
	return symbolic.Symbol(fmt.Sprintf("$index%d", index))
}

// DynamicVal returns the symbol standing for the index-th runtime-indexed offset.
func DynamicVal(index int) symbolic.Symbol {
	return symbolic.Symbol(fmt.Sprintf("$dynamic_val%d", index))
}

// NewIndexMapping builds an IndexMapping with numIterators iterators and the given
// input and output coordinate mappings. Optional trailing SymbolsMaps describe
// runtime-indexed (dynamic value) offsets.
//
// It panics at the declaration site on an iterator conflict or an undeterminable
// iteration domain.
func NewIndexMapping(numIterators int, inputs, outputs SymbolsMap, dynamicVals ...SymbolsMap) *IndexMapping {
	iters := make(map[symbolic.Symbol]int, numIterators)
	for ii := 0; ii < numIterators; ii++ {
		iters[Iterator(ii)] = ii
	}

	iterationShape := make([]symbolic.Symbol, numIterators)
	claimedBy := make(map[symbolic.Symbol]int, numIterators)
	unify := func(entry MappingEntry) {
		sym, ok := entry.Value.(symbolic.Symbol)
		if !ok {
			return
		}
		ii, ok := iters[sym]
		if !ok {
			return
		}
		current := iterationShape[ii]
		if current != "" && current != entry.Target {
			exceptions.Panicf("lang.IndexMapping: iterator conflict: %s and %s both claim %s",
				current, entry.Target, sym)
		}
		if other, claimed := claimedBy[entry.Target]; claimed && other != ii {
			exceptions.Panicf("lang.IndexMapping: iterator conflict: %s sizes both %s and %s",
				entry.Target, Iterator(other), sym)
		}
		iterationShape[ii] = entry.Target
		claimedBy[entry.Target] = ii
	}
	for _, entry := range inputs {
		unify(entry)
	}
	for _, entry := range outputs {
		unify(entry)
	}
	for ii, size := range iterationShape {
		if size == "" {
			exceptions.Panicf("lang.IndexMapping: cannot determine iteration domain, iterator %s has no size symbol",
				Iterator(ii))
		}
	}

	dynamicValIndices := make(map[symbolic.Symbol]int, len(dynamicVals))
	for ii := range dynamicVals {
		dynamicValIndices[DynamicVal(ii)] = ii
	}
	return &IndexMapping{
		iters:              iters,
		iterationShape:     iterationShape,
		inputMapping:       inputs,
		outputMapping:      outputs,
		dynamicValMappings: dynamicVals,
		dynamicValIndices:  dynamicValIndices,
	}
}

// NumIterators returns the number of synthesized iterators.
func (m *IndexMapping) NumIterators() int { return len(m.iters) }

// NumDynamicVals returns the number of runtime-indexed offsets.
func (m *IndexMapping) NumDynamicVals() int { return len(m.dynamicValIndices) }

// IterationShape returns the inferred size symbol of each iterator, in iterator
// order.
func (m *IndexMapping) IterationShape() []symbolic.Symbol {
	return m.iterationShape
}

// InputShape returns the input coordinate symbols in declared order.
func (m *IndexMapping) InputShape() []symbolic.Symbol { return m.inputMapping.Keys() }

// OutputShape returns the output coordinate symbols in declared order.
func (m *IndexMapping) OutputShape() []symbolic.Symbol { return m.outputMapping.Keys() }

// DynamicValMappings returns the coordinate mappings of the runtime-indexed
// offsets.
func (m *IndexMapping) DynamicValMappings() []SymbolsMap { return m.dynamicValMappings }

// DynamicValIndex returns the position of a dynamic-value symbol.
func (m *IndexMapping) DynamicValIndex(sym symbolic.Symbol) (int, bool) {
	ii, ok := m.dynamicValIndices[sym]
	return ii, ok
}

func mapIndices(mapping SymbolsMap, symbols []symbolic.Symbol) []symbolic.Expr {
	if symbols == nil {
		return mapping.Values()
	}
	indices := make([]symbolic.Expr, len(symbols))
	for ii, sym := range symbols {
		expr, ok := mapping.Get(sym)
		if !ok {
			exceptions.Panicf("lang.IndexMapping: %s is not mapped", sym)
		}
		indices[ii] = expr
	}
	return indices
}

// MapInputIndices returns the input index expressions. With symbols == nil they
// come in declared coordinate order; otherwise in the order of the given symbols,
// used to align with a downstream operand order.
func (m *IndexMapping) MapInputIndices(symbols []symbolic.Symbol) []symbolic.Expr {
	return mapIndices(m.inputMapping, symbols)
}

// MapOutputIndices is the output-side analog of MapInputIndices.
func (m *IndexMapping) MapOutputIndices(symbols []symbolic.Symbol) []symbolic.Expr {
	return mapIndices(m.outputMapping, symbols)
}

func (m *IndexMapping) isIdentity(mapping SymbolsMap) bool {
	if len(m.iters) != len(mapping) {
		return false
	}
	for ii, entry := range mapping {
		if !symbolic.Equal(entry.Value, Iterator(ii)) {
			return false
		}
	}
	return true
}

// IsInputIdentity reports whether the input mapping is exactly the unpermuted
// iterator sequence. Identity mappings are special-cased by memory-access lowering
// as pure strided access, as opposed to a general gather.
func (m *IndexMapping) IsInputIdentity() bool { return m.isIdentity(m.inputMapping) }

// IsOutputIdentity reports whether the output mapping is exactly the unpermuted
// iterator sequence.
func (m *IndexMapping) IsOutputIdentity() bool { return m.isIdentity(m.outputMapping) }

// IsIdentity reports whether both sides are identity.
func (m *IndexMapping) IsIdentity() bool {
	return m.IsInputIdentity() && m.IsOutputIdentity()
}

// Substitute returns a new IndexMapping with the given symbol substitutions applied
// to both coordinate mappings. Used when specializing an access pattern for a
// particular tiling. The receiver is not modified.
func (m *IndexMapping) Substitute(subs map[symbolic.Symbol]symbolic.Expr) *IndexMapping {
	substitute := func(mapping SymbolsMap) SymbolsMap {
		out := make(SymbolsMap, len(mapping))
		for ii, entry := range mapping {
			out[ii] = MappingEntry{Target: entry.Target, Value: symbolic.Subs(entry.Value, subs)}
		}
		return out
	}
	return NewIndexMapping(m.NumIterators(), substitute(m.inputMapping), substitute(m.outputMapping))
}

// String implements fmt.Stringer.
func (m *IndexMapping) String() string {
	format := func(mapping SymbolsMap) string {
		parts := make([]string, len(mapping))
		for ii, entry := range mapping {
			parts[ii] = fmt.Sprintf("%s: %s", entry.Target, entry.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("IndexMapping(iters=%d, inputs=%s, outputs=%s, dynamicVals=%d)",
		m.NumIterators(), format(m.inputMapping), format(m.outputMapping), m.NumDynamicVals())
}
