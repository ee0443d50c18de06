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
	"slices"
	"strings"

	"github.com/suryajasper/wave/types/symbolic"
)

// DimMap is an insertion-ordered mapping from logical dimension to an integer. It
// serves both as a dimension-scaling map (dimension -> expansion factor) and as a
// dim query (dimension -> replica coordinate). Order is significant: it determines
// stride computation and the order of coordinate suffixes in clone names.
type DimMap struct {
	dims   []symbolic.Symbol
	values map[symbolic.Symbol]int
}

// NewDimMap returns an empty DimMap.
func NewDimMap() *DimMap {
	return &DimMap{values: make(map[symbolic.Symbol]int)}
}

// Set assigns value to dim, appending dim to the order if new. It returns the map
// to allow chaining.
func (m *DimMap) Set(dim symbolic.Symbol, value int) *DimMap {
	if _, found := m.values[dim]; !found {
		m.dims = append(m.dims, dim)
	}
	m.values[dim] = value
	return m
}

// Get returns the value assigned to dim.
func (m *DimMap) Get(dim symbolic.Symbol) (int, bool) {
	if m == nil {
		return 0, false
	}
	v, found := m.values[dim]
	return v, found
}

// At returns the value assigned to dim, or 0 when absent.
func (m *DimMap) At(dim symbolic.Symbol) int {
	v, _ := m.Get(dim)
	return v
}

// Has reports whether dim is present.
func (m *DimMap) Has(dim symbolic.Symbol) bool {
	_, found := m.Get(dim)
	return found
}

// Len returns the number of dimensions in the map.
func (m *DimMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.dims)
}

// Dims returns the dimensions in insertion order.
func (m *DimMap) Dims() []symbolic.Symbol {
	if m == nil {
		return nil
	}
	return slices.Clone(m.dims)
}

// Clone returns an independent copy preserving order.
func (m *DimMap) Clone() *DimMap {
	out := NewDimMap()
	for _, dim := range m.dims {
		out.Set(dim, m.values[dim])
	}
	return out
}

// Restrict returns a new DimMap with only the given dimensions, in the order they
// are given, skipping dimensions not present in m. This projects a full coordinate
// onto the dimensions one operation actually indexes.
func (m *DimMap) Restrict(dims []symbolic.Symbol) *DimMap {
	out := NewDimMap()
	for _, dim := range dims {
		if v, found := m.Get(dim); found {
			out.Set(dim, v)
		}
	}
	return out
}

// Equal reports whether two maps hold the same dimension/value pairs, regardless
// of order.
func (m *DimMap) Equal(other *DimMap) bool {
	if m.Len() != other.Len() {
		return false
	}
	for _, dim := range m.dims {
		v, found := other.Get(dim)
		if !found || v != m.values[dim] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer, printing pairs in insertion order.
func (m *DimMap) String() string {
	if m == nil {
		return "{}"
	}
	parts := make([]string, len(m.dims))
	for ii, dim := range m.dims {
		parts[ii] = fmt.Sprintf("%s:%d", dim, m.values[dim])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// CanonicalKey serializes the map with dimensions in sorted order, so that two
// maps holding the same pairs produce the same key regardless of insertion order.
// Used as the coordinate half of expansion memo keys.
func (m *DimMap) CanonicalKey() string {
	if m == nil {
		return ""
	}
	sorted := slices.Clone(m.dims)
	slices.Sort(sorted)
	var sb strings.Builder
	for _, dim := range sorted {
		fmt.Fprintf(&sb, "%s=%d;", dim, m.values[dim])
	}
	return sb.String()
}
