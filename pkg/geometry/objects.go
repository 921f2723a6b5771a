package geometry

import (
	"fmt"

	"github.com/lightwell/phcband/pkg/material"
)

// Object is a geometric primitive able to render itself into MPB's
// object syntax. Primitives are thin value objects: no overlap or
// plausibility checks, the solver's own override semantics apply in
// list order.
type Object interface {
	String() string
	Validate() error
}

// Rod is an infinite cylinder along z, the hole/pillar primitive.
type Rod struct {
	X, Y     Coord
	Material material.Material
	Radius   float64
}

func (r Rod) String() string {
	return fmt.Sprintf(
		"(make cylinder (center %s %s) (radius %s) (height infinity) (material %s))",
		r.X, r.Y, Lit(r.Radius), r.Material)
}

func (r Rod) Validate() error {
	if r.Radius <= 0 {
		return fmt.Errorf("rod radius must be positive, got %v", r.Radius)
	}
	if err := r.X.Validate(); err != nil {
		return fmt.Errorf("rod x: %w", err)
	}
	if err := r.Y.Validate(); err != nil {
		return fmt.Errorf("rod y: %w", err)
	}
	return nil
}

// Block is an axis-aligned rectangular box.
type Block struct {
	X, Y, Z  Coord
	Material material.Material
	Size     [3]Coord
}

func (b Block) String() string {
	return fmt.Sprintf(
		"(make block (center %s %s %s) (size %s %s %s) (material %s))",
		b.X, b.Y, b.Z, b.Size[0], b.Size[1], b.Size[2], b.Material)
}

func (b Block) Validate() error {
	for _, c := range []Coord{b.X, b.Y, b.Z} {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("block center: %w", err)
		}
	}
	for _, c := range b.Size {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("block size: %w", err)
		}
		if !c.IsSymbolic() && c.Value() <= 0 {
			return fmt.Errorf("block size must be positive, got %v", c.Value())
		}
	}
	return nil
}
