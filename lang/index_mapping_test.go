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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suryajasper/wave/types/symbolic"
)

func TestIndexMappingIdentity(t *testing.T) {
	X, Y := symbolic.Symbol("X"), symbolic.Symbol("Y")
	mapping := NewIndexMapping(2,
		SymbolsMap{Entry(X, Iterator(0)), Entry(Y, Iterator(1))},
		SymbolsMap{Entry(X, Iterator(0)), Entry(Y, Iterator(1))})

	require.Equal(t, 2, mapping.NumIterators())
	require.Equal(t, []symbolic.Symbol{X, Y}, mapping.IterationShape())
	assert.True(t, mapping.IsInputIdentity())
	assert.True(t, mapping.IsOutputIdentity())
	assert.True(t, mapping.IsIdentity())
	require.Equal(t, []symbolic.Symbol{X, Y}, mapping.InputShape())
	require.Equal(t, []symbolic.Symbol{X, Y}, mapping.OutputShape())
}

func TestIndexMappingConflict(t *testing.T) {
	X := symbolic.Symbol("X")
	// The single coordinate symbol X would have to size two different iterators.
	require.Panics(t, func() {
		NewIndexMapping(2,
			SymbolsMap{Entry(X, Iterator(0))},
			SymbolsMap{Entry(X, Iterator(1))})
	})

	// Two different size symbols claimed for the same iterator.
	Y := symbolic.Symbol("Y")
	require.Panics(t, func() {
		NewIndexMapping(1,
			SymbolsMap{Entry(X, Iterator(0))},
			SymbolsMap{Entry(Y, Iterator(0))})
	})
}

func TestIndexMappingUndeterminableDomain(t *testing.T) {
	X, Y := symbolic.Symbol("X"), symbolic.Symbol("Y")
	// Iterator 1 never appears verbatim in either mapping.
	require.Panics(t, func() {
		NewIndexMapping(2,
			SymbolsMap{Entry(X, Iterator(0)), Entry(Y, symbolic.Mul(Iterator(1), symbolic.Const(2)))},
			SymbolsMap{Entry(X, Iterator(0))})
	})
}

func TestIndexMappingGather(t *testing.T) {
	X, Y := symbolic.Symbol("X"), symbolic.Symbol("Y")
	// Input gathers rows through a dynamic value; output is plain strided.
	mapping := NewIndexMapping(2,
		SymbolsMap{
			Entry(X, symbolic.Add(DynamicVal(0), Iterator(0))),
			Entry(Y, Iterator(1)),
		},
		SymbolsMap{Entry(X, Iterator(0)), Entry(Y, Iterator(1))},
		SymbolsMap{Entry(X, Iterator(0))})

	require.Equal(t, 1, mapping.NumDynamicVals())
	idx, ok := mapping.DynamicValIndex(DynamicVal(0))
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	assert.False(t, mapping.IsInputIdentity())
	assert.True(t, mapping.IsOutputIdentity())

	// Caller-specified symbol order aligns with downstream operand order.
	exprs := mapping.MapOutputIndices([]symbolic.Symbol{Y, X})
	require.Len(t, exprs, 2)
	assert.True(t, symbolic.Equal(exprs[0], Iterator(1)))
	assert.True(t, symbolic.Equal(exprs[1], Iterator(0)))

	require.Panics(t, func() { mapping.MapOutputIndices([]symbolic.Symbol{"Z"}) })
}

func TestIndexMappingSubstitute(t *testing.T) {
	X, Y, K := symbolic.Symbol("X"), symbolic.Symbol("Y"), symbolic.Symbol("K")
	mapping := NewIndexMapping(2,
		SymbolsMap{Entry(X, symbolic.Add(Iterator(0), K)), Entry(Y, Iterator(1)), Entry(K, Iterator(0))},
		SymbolsMap{Entry(K, Iterator(0)), Entry(Y, Iterator(1))})

	specialized := mapping.Substitute(map[symbolic.Symbol]symbolic.Expr{K: symbolic.Const(32)})
	got, ok := specialized.inputMapping.Get(X)
	require.True(t, ok)
	assert.True(t, symbolic.Equal(got, symbolic.Add(Iterator(0), symbolic.Const(32))))

	// The original mapping is untouched.
	got, ok = mapping.inputMapping.Get(X)
	require.True(t, ok)
	assert.True(t, symbolic.Equal(got, symbolic.Add(Iterator(0), K)))
}
