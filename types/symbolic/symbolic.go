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

// Package symbolic defines index symbols and index expressions, the currency in which
// symbolic shapes, tile sizes and access patterns are written.
//
// An Expr is one of: a Const, a Symbol, or a Binary expression combining two
// sub-expressions with an integer operator. Division is floor division, as it is used
// to carve logical dimensions into hardware tiles. Expressions are immutable: Subs
// returns a new expression, never rewrites in place.
//
// A Context holds the bindings from symbols to their static (compile-time) integer
// values. Anything the compiler must know ahead of time -- tile sizes, wave counts,
// problem extents -- is resolved against a Context; see Context.StaticValue.
package symbolic

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
)

// Symbol is a named index symbol, e.g. a logical problem dimension ("M") or a
// synthesized iterator ("$index0").
//
// Symbol implements Expr, so it can be used directly wherever an index expression
// is expected.
type Symbol string

// Expr is an integer index expression over symbols.
//
// It is a closed set: Const, Symbol and Binary are the only implementations.
type Expr interface {
	fmt.Stringer

	// FreeSymbols appends the symbols appearing in the expression to dst and
	// returns it. A symbol appearing twice is appended twice.
	FreeSymbols(dst []Symbol) []Symbol

	expr()
}

// Const is an integer literal index expression.
type Const int

// BinaryOp enumerates the operators a Binary expression can carry.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	// OpFloorDiv is floor division; all divisions in tiling arithmetic round down.
	OpFloorDiv
	OpMod
)

var binaryOpStr = [...]string{OpAdd: "+", OpSub: "-", OpMul: "*", OpFloorDiv: "/", OpMod: "%"}

// String returns the operator as it appears in a printed expression.
func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binaryOpStr) {
		return fmt.Sprintf("BinaryOp(%d)", int(op))
	}
	return binaryOpStr[op]
}

// Binary is a binary index expression, e.g. K/2 or BLOCK_M*4.
type Binary struct {
	Op       BinaryOp
	LHS, RHS Expr
}

func (Symbol) expr()  {}
func (Const) expr()   {}
func (*Binary) expr() {}

// String implements fmt.Stringer.
func (s Symbol) String() string { return string(s) }

// String implements fmt.Stringer.
func (c Const) String() string { return fmt.Sprintf("%d", int(c)) }

// String implements fmt.Stringer.
func (b *Binary) String() string {
	return fmt.Sprintf("(%s%s%s)", b.LHS, b.Op, b.RHS)
}

// FreeSymbols implements Expr.
func (s Symbol) FreeSymbols(dst []Symbol) []Symbol { return append(dst, s) }

// FreeSymbols implements Expr.
func (c Const) FreeSymbols(dst []Symbol) []Symbol { return dst }

// FreeSymbols implements Expr.
func (b *Binary) FreeSymbols(dst []Symbol) []Symbol {
	return b.RHS.FreeSymbols(b.LHS.FreeSymbols(dst))
}

// Add returns lhs+rhs.
func Add(lhs, rhs Expr) Expr { return &Binary{Op: OpAdd, LHS: lhs, RHS: rhs} }

// Sub returns lhs-rhs.
func Sub(lhs, rhs Expr) Expr { return &Binary{Op: OpSub, LHS: lhs, RHS: rhs} }

// Mul returns lhs*rhs.
func Mul(lhs, rhs Expr) Expr { return &Binary{Op: OpMul, LHS: lhs, RHS: rhs} }

// FloorDiv returns lhs/rhs rounding down.
func FloorDiv(lhs, rhs Expr) Expr { return &Binary{Op: OpFloorDiv, LHS: lhs, RHS: rhs} }

// Mod returns lhs%rhs.
func Mod(lhs, rhs Expr) Expr { return &Binary{Op: OpMod, LHS: lhs, RHS: rhs} }

// Promote converts a value to an Expr. It accepts an Expr (returned unchanged), a
// Symbol, a string (taken as a Symbol) or an untyped/typed integer, which is promoted
// to a Const. Anything else panics: shape entries must resolve to index expressions.
func Promote(value any) Expr {
	switch v := value.(type) {
	case Expr:
		return v
	case string:
		return Symbol(v)
	case int:
		return Const(v)
	case int64:
		return Const(int(v))
	default:
		exceptions.Panicf("symbolic.Promote: %v (%T) is not an index expression", value, value)
	}
	return nil
}

// Equal reports whether two expressions are structurally identical.
func Equal(a, b Expr) bool {
	switch av := a.(type) {
	case Symbol:
		bv, ok := b.(Symbol)
		return ok && av == bv
	case Const:
		bv, ok := b.(Const)
		return ok && av == bv
	case *Binary:
		bv, ok := b.(*Binary)
		return ok && av.Op == bv.Op && Equal(av.LHS, bv.LHS) && Equal(av.RHS, bv.RHS)
	}
	return false
}

// Subs returns expr with every occurrence of the keys of subs replaced by the
// corresponding expression. The input is never modified.
func Subs(expr Expr, subs map[Symbol]Expr) Expr {
	switch v := expr.(type) {
	case Symbol:
		if replacement, found := subs[v]; found {
			return replacement
		}
		return v
	case Const:
		return v
	case *Binary:
		lhs := Subs(v.LHS, subs)
		rhs := Subs(v.RHS, subs)
		if lhs == v.LHS && rhs == v.RHS {
			return v
		}
		return &Binary{Op: v.Op, LHS: lhs, RHS: rhs}
	}
	return expr
}

// InferDim returns the logical dimension a shape entry refers to: the single free
// symbol of the expression. A bare symbol infers to itself; a derived entry such as
// K/2 infers to K. It returns false for a constant entry or one mixing several
// symbols.
func InferDim(expr Expr) (Symbol, bool) {
	free := expr.FreeSymbols(nil)
	if len(free) == 0 {
		return "", false
	}
	first := free[0]
	for _, sym := range free[1:] {
		if sym != first {
			return "", false
		}
	}
	return first, true
}

// SymbolsString formats a list of symbols for diagnostics, e.g. "(M, N)".
func SymbolsString(symbols []Symbol) string {
	parts := make([]string, len(symbols))
	for ii, sym := range symbols {
		parts[ii] = string(sym)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
