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

// Package constraints declares the tiling constraints that drive the hardware
// decomposition of a kernel: how each logical dimension is distributed over
// workgroups, waves and loop iterations, and what the hardware itself fixes
// (threads per wave, waves per block).
//
// The constraint set is owned by the pass driver; the rewriting passes read it and
// are allowed to populate exactly two derived fields, once, during setup: the
// induction variable of a TilingConstraint and the wave id of a WaveConstraint.
package constraints

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/suryajasper/wave/types/symbolic"
)

// Constraint is one declarative tiling/hardware constraint. It is a closed set:
// WorkgroupConstraint, TilingConstraint, WaveConstraint, HardwareConstraint and
// SymbolicAlias are the only implementations.
type Constraint interface {
	fmt.Stringer
	constraint()
}

// WorkgroupConstraint distributes a logical dimension across workgroups: each
// workgroup along the given grid axis covers TileSize elements of Dim.
type WorkgroupConstraint struct {
	Dim      symbolic.Symbol
	TileSize symbolic.Expr

	// WorkgroupDim is the grid axis (0, 1, 2, ...) the dimension is mapped to.
	WorkgroupDim int

	// Primary marks the constraint that determines the grid extent when several
	// dimensions share a grid axis.
	Primary bool
}

// TilingConstraint distributes a logical dimension across the iterations of a
// loop: each iteration covers TileSize elements of Dim. Tiling constraints do not
// subdivide across waves.
type TilingConstraint struct {
	Dim      symbolic.Symbol
	TileSize symbolic.Expr

	// InductionVar is derived: the induction variable of the loop that tiles Dim.
	// It is populated once during setup, by the pass that creates the loop
	// structure, and read-only afterwards.
	InductionVar symbolic.Symbol
}

// WaveConstraint distributes a logical dimension across the waves of a workgroup.
type WaveConstraint struct {
	Dim      symbolic.Symbol
	TileSize symbolic.Expr

	// WaveID is derived: the expression computing this wave's index along Dim from
	// the hardware thread ids. Populated once during setup from the hardware and
	// workgroup constraints, read-only afterwards.
	WaveID symbolic.Expr
}

// HardwareConstraint fixes the hardware decomposition itself: wave width, waves
// per workgroup along each grid axis, and the default per-dimension vector width
// each operation instance processes.
//
// Exactly one hardware constraint must be present in a constraint set.
type HardwareConstraint struct {
	ThreadsPerWave int
	WavesPerBlock  [3]int

	// VectorShapes is the default vector width per logical dimension; an operation
	// may override it. A width of zero marks a batch-like dimension that is never
	// replicated.
	VectorShapes map[symbolic.Symbol]int
}

// SymbolicAlias declares that Source is a derived alias of Target; constraints on
// Target are re-derived for Source by the driver with Apply mapping a Target
// expression into Source's space.
type SymbolicAlias struct {
	Source, Target symbolic.Symbol
	Apply          func(symbolic.Expr) symbolic.Expr
}

func (*WorkgroupConstraint) constraint() {}
func (*TilingConstraint) constraint()    {}
func (*WaveConstraint) constraint()      {}
func (*HardwareConstraint) constraint()  {}
func (*SymbolicAlias) constraint()       {}

// String implements fmt.Stringer.
func (c *WorkgroupConstraint) String() string {
	return fmt.Sprintf("Workgroup(%s, tile=%s, wg=%d)", c.Dim, c.TileSize, c.WorkgroupDim)
}

// String implements fmt.Stringer.
func (c *TilingConstraint) String() string {
	return fmt.Sprintf("Tiling(%s, tile=%s)", c.Dim, c.TileSize)
}

// String implements fmt.Stringer.
func (c *WaveConstraint) String() string {
	return fmt.Sprintf("Wave(%s, tile=%s)", c.Dim, c.TileSize)
}

// String implements fmt.Stringer.
func (c *HardwareConstraint) String() string {
	return fmt.Sprintf("Hardware(threadsPerWave=%d, wavesPerBlock=%v)", c.ThreadsPerWave, c.WavesPerBlock)
}

// String implements fmt.Stringer.
func (c *SymbolicAlias) String() string {
	return fmt.Sprintf("SymbolicAlias(%s -> %s)", c.Source, c.Target)
}

// ThreadsPerBlock returns the workgroup size in threads along each grid axis.
func (c *HardwareConstraint) ThreadsPerBlock() [3]int {
	return [3]int{
		c.WavesPerBlock[0] * c.ThreadsPerWave,
		c.WavesPerBlock[1],
		c.WavesPerBlock[2],
	}
}

// Hardware returns the single hardware constraint of the set. It is a fatal
// configuration error for a constraint set to carry zero or several of them.
func Hardware(cons []Constraint) (*HardwareConstraint, error) {
	var hw *HardwareConstraint
	for _, c := range cons {
		if h, ok := c.(*HardwareConstraint); ok {
			if hw != nil {
				return nil, errors.Errorf("exactly one hardware constraint must be provided, got several")
			}
			hw = h
		}
	}
	if hw == nil {
		return nil, errors.Errorf("exactly one hardware constraint must be provided, got none")
	}
	return hw, nil
}

// Validate checks that the constraint set is complete enough for the rewriting
// passes: exactly one hardware constraint, and every workgroup/tiling tile size
// statically resolvable under ctx. All independent failures are reported together.
func Validate(cons []Constraint, ctx *symbolic.Context) error {
	var err error
	if _, hwErr := Hardware(cons); hwErr != nil {
		err = multierr.Append(err, hwErr)
	}
	for _, c := range cons {
		switch v := c.(type) {
		case *WorkgroupConstraint:
			if _, ok := ctx.StaticValue(v.TileSize); !ok {
				err = multierr.Append(err,
					errors.Errorf("tile size %s of %s is not statically known", v.TileSize, v))
			}
		case *TilingConstraint:
			if _, ok := ctx.StaticValue(v.TileSize); !ok {
				err = multierr.Append(err,
					errors.Errorf("tile size %s of %s is not statically known", v.TileSize, v))
			}
		}
	}
	return err
}
