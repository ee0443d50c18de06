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

package xslices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	in := []int{0, 1, 2}
	out := Map(in, func(v int) int32 { return int32(v + 1) })
	assert.Equal(t, []int32{1, 2, 3}, out)
	assert.Empty(t, Map(nil, func(v int) int { return v }))
}

func TestIota(t *testing.T) {
	assert.Equal(t, []int{4, 5, 6, 7}, Iota(4, 4))
	assert.Empty(t, Iota(0, 0))
}

func TestSliceWithValue(t *testing.T) {
	assert.Equal(t, []int{1, 1, 1}, SliceWithValue(3, 1))
}

func TestLast(t *testing.T) {
	require.Equal(t, 3, Last([]int{1, 2, 3}))
	require.Panics(t, func() { Last([]int{}) })
}
