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

package symbolic

// Context holds the bindings from index symbols to their compile-time integer
// values. One Context is shared by a whole compilation invocation: the driver binds
// problem extents and tile-size hyperparameters before the rewriting passes run.
type Context struct {
	subs map[Symbol]int
}

// NewContext returns an empty binding context.
func NewContext() *Context {
	return &Context{subs: make(map[Symbol]int)}
}

// Bind assigns a static integer value to sym. Binding the same symbol again
// overwrites the previous value.
func (c *Context) Bind(sym Symbol, value int) *Context {
	c.subs[sym] = value
	return c
}

// IsBound reports whether sym has a static value.
func (c *Context) IsBound(sym Symbol) bool {
	_, found := c.subs[sym]
	return found
}

// Value returns the static value bound to sym.
func (c *Context) Value(sym Symbol) (int, bool) {
	v, found := c.subs[sym]
	return v, found
}

// StaticValue evaluates expr under the context bindings. It returns false if any
// symbol in the expression is unbound, or on division/modulo by zero.
func (c *Context) StaticValue(expr Expr) (int, bool) {
	switch v := expr.(type) {
	case Const:
		return int(v), true
	case Symbol:
		return c.Value(v)
	case *Binary:
		lhs, ok := c.StaticValue(v.LHS)
		if !ok {
			return 0, false
		}
		rhs, ok := c.StaticValue(v.RHS)
		if !ok {
			return 0, false
		}
		switch v.Op {
		case OpAdd:
			return lhs + rhs, true
		case OpSub:
			return lhs - rhs, true
		case OpMul:
			return lhs * rhs, true
		case OpFloorDiv:
			if rhs == 0 {
				return 0, false
			}
			return floorDiv(lhs, rhs), true
		case OpMod:
			if rhs == 0 {
				return 0, false
			}
			return lhs - floorDiv(lhs, rhs)*rhs, true
		}
	}
	return 0, false
}

// floorDiv rounds towards negative infinity, matching the floor-division semantics of
// index expressions (Go's integer division truncates towards zero instead).
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
