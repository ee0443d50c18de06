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
	"github.com/suryajasper/wave/types/symbolic"
)

// AddressSpace is the tier of the memory hierarchy a kernel buffer lives in.
type AddressSpace int

//go:generate go tool enumer -type=AddressSpace -trimprefix=AddressSpace -output=gen_addressspace_enumer.go kernel_buffer.go

const (
	AddressSpaceInvalid AddressSpace = iota
	AddressSpaceGlobal
	AddressSpaceShared
	AddressSpaceRegister
)

// Usage tags what a kernel-signature buffer is used for. It is optional metadata:
// downstream codegen uses it to order and annotate bindings.
type Usage int

const (
	UsageNone Usage = iota
	UsageInput
	UsageOutput
	UsageTemporary
)

// String implements fmt.Stringer.
func (u Usage) String() string {
	switch u {
	case UsageNone:
		return "none"
	case UsageInput:
		return "input"
	case UsageOutput:
		return "output"
	case UsageTemporary:
		return "temporary"
	}
	return "Usage(?)"
}

// MemoryLayout describes the physical shape of a buffer whose layout in memory
// differs from its logical shape. E.g. a logically (M, N) output buffer may be
// physically allocated as (M', N') with padding.
type MemoryLayout struct {
	Shape []symbolic.Expr
}

// NewMemoryLayout creates a physical layout from shape entries. Entries follow the
// same promotion rules as logical shapes: integers become constants.
func NewMemoryLayout(shape ...any) *MemoryLayout {
	return &MemoryLayout{Shape: promoteShape("MemoryLayout", shape)}
}
