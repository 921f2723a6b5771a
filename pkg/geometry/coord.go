// Package geometry builds MPB unit-cell descriptions from simple value
// objects: coordinate expressions, primitives (Rod, Block) and the
// Geometry assembly that renders them in the solver's object syntax.
package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is a single lattice coordinate or extent: either a plain number
// or a symbolic lattice-relative expression that is passed through to the
// solver verbatim, e.g. "(* 3 (sqrt 3))".
type Coord struct {
	symbolic bool
	value    float64
	expr     string
}

// Lit creates a literal numeric coordinate.
func Lit(v float64) Coord {
	return Coord{value: v}
}

// Expr creates a symbolic coordinate from a format template and its
// parameters. The rendered text must be a valid expression in the
// solver's scripting syntax; Validate checks parenthesis balance.
func Expr(format string, args ...any) Coord {
	return Coord{symbolic: true, expr: fmt.Sprintf(format, args...)}
}

// IsSymbolic reports whether the coordinate is a lattice expression.
func (c Coord) IsSymbolic() bool { return c.symbolic }

// Value returns the numeric value of a literal coordinate.
func (c Coord) Value() float64 { return c.value }

// Doubled returns a coordinate twice as large, preserving symbolic form.
func (c Coord) Doubled() Coord {
	if c.symbolic {
		return Coord{symbolic: true, expr: fmt.Sprintf("(* 2 %s)", c.expr)}
	}
	return Coord{value: 2 * c.value}
}

// Validate checks that a symbolic expression is plausible solver syntax:
// non-empty with balanced parentheses. Literals always validate.
func (c Coord) Validate() error {
	if !c.symbolic {
		return nil
	}
	if strings.TrimSpace(c.expr) == "" {
		return fmt.Errorf("empty coordinate expression")
	}
	depth := 0
	for _, r := range c.expr {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("unbalanced parentheses in %q", c.expr)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("unbalanced parentheses in %q", c.expr)
	}
	return nil
}

// String renders the coordinate in solver syntax.
func (c Coord) String() string {
	if c.symbolic {
		return c.expr
	}
	return strconv.FormatFloat(c.value, 'g', -1, 64)
}
