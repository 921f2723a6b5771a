// Package material models dielectric materials and their MPB
// representation. A material is resolved once at construction time into a
// canonical form: a name plus a (possibly anisotropic) permittivity tensor
// diagonal.
package material

import (
	"fmt"
	"strconv"
)

// Material is an immutable dielectric description. Construct one with
// Named, Scalar, Anisotropic or Parse; the zero value is not valid.
type Material struct {
	name  string
	eps   [3]float64
	aniso bool
}

// Named looks a material up in the built-in dielectric table.
func Named(name string) (Material, error) {
	m, ok := table[name]
	if !ok {
		return Material{}, fmt.Errorf("unknown material %q", name)
	}
	return m, nil
}

// Scalar creates a material directly from an isotropic epsilon value.
// Its name is derived from the value so that job names stay deterministic.
func Scalar(eps float64) Material {
	return Material{
		name: "eps" + strconv.FormatFloat(eps, 'g', -1, 64),
		eps:  [3]float64{eps, eps, eps},
	}
}

// Anisotropic creates a named material with a diagonal epsilon tensor.
func Anisotropic(name string, diag [3]float64) Material {
	return Material{name: name, eps: diag, aniso: true}
}

// Parse resolves the duck-typed material argument accepted by the
// recipe CLI: a bare number is an epsilon value, anything else is a name
// looked up in the dielectric table.
func Parse(s string) (Material, error) {
	if eps, err := strconv.ParseFloat(s, 64); err == nil {
		return Scalar(eps), nil
	}
	return Named(s)
}

// Name returns the canonical material name used in job names.
func (m Material) Name() string { return m.name }

// Epsilon returns the in-plane permittivity (the xx tensor component).
func (m Material) Epsilon() float64 { return m.eps[0] }

// IsAnisotropic reports whether the epsilon tensor diagonal is not uniform.
func (m Material) IsAnisotropic() bool { return m.aniso }

// String renders the material in MPB's object syntax.
func (m Material) String() string {
	if m.aniso {
		return fmt.Sprintf("(make dielectric (epsilon-diag %s %s %s))",
			fmtEps(m.eps[0]), fmtEps(m.eps[1]), fmtEps(m.eps[2]))
	}
	return fmt.Sprintf("(make dielectric (epsilon %s))", fmtEps(m.eps[0]))
}

func fmtEps(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
