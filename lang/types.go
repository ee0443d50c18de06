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

// Package lang declares the symbolic types of a kernel signature: Memory for
// addressable storage, Register for virtual register values, and IndexMapping for
// gather/scatter-style coordinate transforms.
//
// These are compile-time tags: they are declared once per kernel signature,
// immutable afterwards, and never instantiated as runtime values. They are attached
// to graph nodes and read by the rewriting passes.
//
// Construction is validated eagerly. A malformed declaration -- empty shape, a shape
// entry that is not an index expression, an invalid dtype or address space -- panics
// at the declaration site with a description of the offending value, so that no
// partially-constructed type is ever observable.
package lang

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"

	"github.com/suryajasper/wave/types/symbolic"
	"github.com/suryajasper/wave/types/xslices"
)

// Type is the symbolic type of a graph value: either Memory (addressable storage),
// Register (a per-lane virtual register value), or Scalar (a shapeless value).
type Type interface {
	// SymbolicShape is the ordered logical shape, one index expression per axis.
	// It is empty for Scalar.
	SymbolicShape() []symbolic.Expr

	// DType is the element type.
	DType() dtypes.DType

	// Rank is the number of axes of the symbolic shape.
	Rank() int

	fmt.Stringer
}

// promoteShape promotes each shape entry to an index expression and validates the
// result, panicking with the declaration-site context on failure.
func promoteShape(what string, shape []any) []symbolic.Expr {
	if len(shape) == 0 {
		exceptions.Panicf("lang.%s: shape must have at least one entry", what)
	}
	return xslices.Map(shape, func(entry any) symbolic.Expr {
		switch v := entry.(type) {
		case symbolic.Expr:
			return v
		case string:
			return symbolic.Symbol(v)
		case int:
			return symbolic.Const(v)
		default:
			exceptions.Panicf("lang.%s: shape entry %v (%T) is not an index expression", what, entry, entry)
			return nil
		}
	})
}

func checkDType(what string, dtype dtypes.DType) {
	if dtype == dtypes.InvalidDType {
		exceptions.Panicf("lang.%s: dtype is invalid, an element type is required", what)
	}
}

func shapeString(shape []symbolic.Expr) string {
	parts := xslices.Map(shape, func(e symbolic.Expr) string { return e.String() })
	return "(" + strings.Join(parts, ", ") + ")"
}

// Memory represents storage anywhere in the memory hierarchy except registers,
// parameterized by a symbolic shape, an address space and an element type.
//
// The symbolic shape is the logical shape of the buffer, which may differ from its
// physical shape: a GEMM output buffer of logical shape (M, N) may be physically
// allocated as (M', N'), declared with WithPhysicalLayout.
type Memory struct {
	shape  []symbolic.Expr
	space  AddressSpace
	dtype  dtypes.DType
	layout *MemoryLayout
	usage  Usage
}

// NewMemory declares a Memory type. Shape entries may be symbolic.Expr,
// symbolic.Symbol, a symbol name or a constant int (promoted). The register address
// space is rejected: use NewRegister instead, so that address-space semantics stay
// unambiguous.
func NewMemory(shape []any, space AddressSpace, dtype dtypes.DType) *Memory {
	exprs := promoteShape("Memory", shape)
	checkDType("Memory", dtype)
	if space == AddressSpaceRegister {
		exceptions.Panicf("lang.Memory does not support the register address space, use lang.Register instead")
	}
	if !space.IsAAddressSpace() || space == AddressSpaceInvalid {
		exceptions.Panicf("lang.Memory: %v is not a valid address space", space)
	}
	return &Memory{shape: exprs, space: space, dtype: dtype}
}

// WithPhysicalLayout returns a copy of the declaration carrying a physical layout
// distinct from the logical shape.
func (m *Memory) WithPhysicalLayout(layout *MemoryLayout) *Memory {
	m2 := *m
	m2.layout = layout
	return &m2
}

// WithUsage returns a copy of the declaration tagged with a buffer usage.
func (m *Memory) WithUsage(usage Usage) *Memory {
	m2 := *m
	m2.usage = usage
	return &m2
}

// SymbolicShape implements Type.
func (m *Memory) SymbolicShape() []symbolic.Expr { return m.shape }

// DType implements Type.
func (m *Memory) DType() dtypes.DType { return m.dtype }

// Rank implements Type.
func (m *Memory) Rank() int { return len(m.shape) }

// AddressSpace returns the memory tier the buffer lives in.
func (m *Memory) AddressSpace() AddressSpace { return m.space }

// PhysicalLayout returns the physical layout, or nil if the buffer is laid out
// exactly as its logical shape.
func (m *Memory) PhysicalLayout() *MemoryLayout { return m.layout }

// Usage returns the buffer usage tag.
func (m *Memory) Usage() Usage { return m.usage }

// String implements fmt.Stringer.
func (m *Memory) String() string {
	return fmt.Sprintf("Memory[%s, %s, %s]", shapeString(m.shape), m.space, m.dtype)
}

// Register represents a virtual register value, parameterized by a symbolic shape
// and an element type. Its address space is fixed to AddressSpaceRegister.
type Register struct {
	shape []symbolic.Expr
	dtype dtypes.DType
}

// NewRegister declares a Register type. Shape entries follow the same promotion
// rules as NewMemory.
func NewRegister(shape []any, dtype dtypes.DType) *Register {
	exprs := promoteShape("Register", shape)
	checkDType("Register", dtype)
	return &Register{shape: exprs, dtype: dtype}
}

// SymbolicShape implements Type.
func (r *Register) SymbolicShape() []symbolic.Expr { return r.shape }

// DType implements Type.
func (r *Register) DType() dtypes.DType { return r.dtype }

// Rank implements Type.
func (r *Register) Rank() int { return len(r.shape) }

// AddressSpace always returns AddressSpaceRegister.
func (r *Register) AddressSpace() AddressSpace { return AddressSpaceRegister }

// String implements fmt.Stringer.
func (r *Register) String() string {
	return fmt.Sprintf("Register[%s, %s]", shapeString(r.shape), r.dtype)
}

// Scalar is the type of a shapeless, coordinate-independent value, e.g. a bound
// kernel scalar argument. Scalar-typed operations are never replicated by the
// dimension-expansion pass.
type Scalar struct {
	dtype dtypes.DType
}

// NewScalar declares a Scalar type.
func NewScalar(dtype dtypes.DType) *Scalar {
	checkDType("Scalar", dtype)
	return &Scalar{dtype: dtype}
}

// SymbolicShape implements Type: a scalar has no shape.
func (s *Scalar) SymbolicShape() []symbolic.Expr { return nil }

// DType implements Type.
func (s *Scalar) DType() dtypes.DType { return s.dtype }

// Rank implements Type.
func (s *Scalar) Rank() int { return 0 }

// String implements fmt.Stringer.
func (s *Scalar) String() string { return fmt.Sprintf("Scalar[%s]", s.dtype) }
