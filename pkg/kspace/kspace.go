// Package kspace builds ordered sequences of reciprocal-space sample
// points: canonical high-symmetry paths through the Brillouin zone and
// explicit point lists, both with even interpolation between anchors.
package kspace

import (
	"strconv"
)

// Vec3 is a point in reciprocal-lattice coordinates.
type Vec3 struct {
	X, Y, Z float64
}

// V is a shorthand constructor for Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// String renders the point as an MPB vector3 expression.
func (v Vec3) String() string {
	return "(vector3 " + fmtF(v.X) + " " + fmtF(v.Y) + " " + fmtF(v.Z) + ")"
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Tick is an x-axis label hint: the label of a high-symmetry vertex and
// its index into the final, deduplicated point sequence.
type Tick struct {
	Index int
	Label string
}

// KSpace is an ordered, interpolated, deduplicated sequence of
// reciprocal-space points, optionally carrying vertex labels for the
// band-diagram x-axis.
type KSpace struct {
	points []Vec3
	ticks  []Tick
}

// Triangular returns the canonical high-symmetry path for a triangular
// lattice: Gamma - M - K - Gamma, each adjacent pair bridged by
// kInterpolation evenly spaced interior points, 3*kInterpolation + 4
// points in total.
func Triangular(kInterpolation int) *KSpace {
	return NewLabeled(
		[]Vec3{
			V(0, 0, 0),
			V(0.5, 0, 0),
			V(1.0/3.0, 1.0/3.0, 0),
			V(0, 0, 0),
		},
		[]string{"Gamma", "M", "K", "Gamma"},
		kInterpolation,
	)
}

// New builds a path from an explicit vertex list with kInterpolation
// interior points between each consecutive pair. Zero interpolation
// samples only the given points. No labels are attached.
func New(vertices []Vec3, kInterpolation int) *KSpace {
	return NewLabeled(vertices, nil, kInterpolation)
}

// NewLabeled is New with a label per vertex; labels may be nil. A vertex
// coinciding with the previously emitted point is not duplicated, and
// its label (if any) refers to the already-present point.
func NewLabeled(vertices []Vec3, labels []string, kInterpolation int) *KSpace {
	if kInterpolation < 0 {
		kInterpolation = 0
	}
	k := &KSpace{}
	for i, v := range vertices {
		if i > 0 {
			prev := vertices[i-1]
			for step := 1; step <= kInterpolation; step++ {
				t := float64(step) / float64(kInterpolation+1)
				k.points = append(k.points, Vec3{
					X: prev.X + (v.X-prev.X)*t,
					Y: prev.Y + (v.Y-prev.Y)*t,
					Z: prev.Z + (v.Z-prev.Z)*t,
				})
			}
		}
		// shared segment endpoints appear once
		if n := len(k.points); n == 0 || k.points[n-1] != v {
			k.points = append(k.points, v)
		}
		if labels != nil && i < len(labels) && labels[i] != "" {
			k.ticks = append(k.ticks, Tick{Index: len(k.points) - 1, Label: labels[i]})
		}
	}
	return k
}

// FromScalars builds an uninterpolated path of points along one axis:
// (k, 0, 0) per value, or (0, k, 0) when yDirection is set.
func FromScalars(ks []float64, yDirection bool) *KSpace {
	points := make([]Vec3, len(ks))
	for i, v := range ks {
		if yDirection {
			points[i] = V(0, v, 0)
		} else {
			points[i] = V(v, 0, 0)
		}
	}
	return New(points, 0)
}

// Points returns the final point sequence in traversal order. For a
// closed path the first and last entries are the same physical point;
// callers wanting points of interest must drop the duplicate themselves.
func (k *KSpace) Points() []Vec3 { return k.points }

// Len returns the number of sample points.
func (k *KSpace) Len() int { return len(k.points) }

// HasLabels reports whether the path carries high-symmetry labels.
func (k *KSpace) HasLabels() bool { return len(k.ticks) > 0 }

// Ticks returns the axis label hints, indexed into Points().
func (k *KSpace) Ticks() []Tick { return k.ticks }
