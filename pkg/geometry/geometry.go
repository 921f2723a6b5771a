package geometry

import (
	"fmt"
	"strings"

	"github.com/lightwell/phcband/pkg/material"
)

// Geometry composes a lattice, cell extents and an ordered list of
// primitives into one MPB unit-cell description. Primitive order is part
// of the solver's override semantics and is preserved verbatim.
type Geometry struct {
	width, height Coord
	depth         float64
	threeD        bool
	triangular    bool
	objects       []Object

	// substrateIndex is 1 until a substrate is added, then the object
	// list length immediately before the substrate was appended. Band
	// diagram cropping scales by this value.
	substrateIndex int
}

// New creates a 2D geometry. Width and height are in units of the
// lattice constant; symbolic extents describe rectangular supercells.
func New(width, height Coord, triangular bool, objects ...Object) *Geometry {
	return &Geometry{
		width:          width,
		height:         height,
		triangular:     triangular,
		objects:        objects,
		substrateIndex: 1,
	}
}

// NewSlab creates a 3D geometry with the given supercell height along z.
func NewSlab(width, height Coord, depth float64, triangular bool, objects ...Object) *Geometry {
	g := New(width, height, triangular, objects...)
	g.depth = depth
	g.threeD = true
	return g
}

// Objects returns the primitive list in insertion order.
func (g *Geometry) Objects() []Object { return g.objects }

// Is3D reports whether the geometry has a z extent.
func (g *Geometry) Is3D() bool { return g.threeD }

// Triangular reports whether the lattice basis is triangular.
func (g *Geometry) Triangular() bool { return g.triangular }

// SubstrateIndex returns 1 for substrate-free geometries, otherwise the
// primitive count at the time the substrate was added.
func (g *Geometry) SubstrateIndex() int { return g.substrateIndex }

// HasSubstrate reports whether AddSubstrate has been called.
func (g *Geometry) HasSubstrate() bool { return g.substrateIndex > 1 }

// AddSubstrate appends a slab of the given material filling the cell
// from its bottom (-depth/2) up to startAt along z, and records the
// substrate index for later plot cropping. Only valid for 3D geometries.
func (g *Geometry) AddSubstrate(m material.Material, startAt float64) error {
	if !g.threeD {
		return fmt.Errorf("substrate requires a 3D geometry")
	}
	thickness := startAt + g.depth/2
	if thickness <= 0 {
		return fmt.Errorf("substrate starting at %v lies below the cell", startAt)
	}
	g.substrateIndex = len(g.objects)
	g.objects = append(g.objects, Block{
		X:        Lit(0),
		Y:        Lit(0),
		Z:        Lit(startAt - thickness/2),
		Material: m,
		// oversized in the plane so the substrate spans supercells too
		Size: [3]Coord{g.width.Doubled(), g.height.Doubled(), Lit(thickness)},
	})
	return nil
}

// Validate checks cell extents and every primitive.
func (g *Geometry) Validate() error {
	for _, c := range []Coord{g.width, g.height} {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("cell size: %w", err)
		}
		if !c.IsSymbolic() && c.Value() <= 0 {
			return fmt.Errorf("cell size must be positive, got %v", c.Value())
		}
	}
	if g.threeD && g.depth <= 0 {
		return fmt.Errorf("3D geometry needs a positive depth, got %v", g.depth)
	}
	for i, o := range g.objects {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}

// Render emits the lattice declaration followed by every primitive in
// insertion order, substrate included.
func (g *Geometry) Render() string {
	var b strings.Builder

	b.WriteString("(set! geometry-lattice (make lattice")
	if g.threeD {
		fmt.Fprintf(&b, " (size %s %s %s)", g.width, g.height, Lit(g.depth))
		if g.triangular {
			b.WriteString("\n        (basis1 (/ (sqrt 3) 2) 0.5 0)")
			b.WriteString("\n        (basis2 (/ (sqrt 3) 2) -0.5 0)")
			b.WriteString("\n        (basis3 0 0 1)")
		}
	} else {
		fmt.Fprintf(&b, " (size %s %s no-size)", g.width, g.height)
		if g.triangular {
			b.WriteString("\n        (basis1 (/ (sqrt 3) 2) 0.5)")
			b.WriteString("\n        (basis2 (/ (sqrt 3) 2) -0.5)")
		}
	}
	b.WriteString("))\n\n")

	b.WriteString("(set! geometry (list")
	for _, o := range g.objects {
		b.WriteString("\n    ")
		b.WriteString(o.String())
	}
	b.WriteString("))\n")

	return b.String()
}
