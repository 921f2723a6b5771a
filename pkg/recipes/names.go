package recipes

import (
	"fmt"

	"github.com/lightwell/phcband/pkg/material"
)

// Job folder names double as the on-disk memoization key: identical
// physical parameters must always produce identical names. Radius and
// thickness are formatted as the value times 1000, rounded and
// zero-padded to three digits; parameters differing only beyond the
// third decimal share a folder, which is expected cache reuse.

// JobName2D names a bulk 2D triangular-holes simulation.
func JobName2D(m material.Material, radius float64) string {
	return fmt.Sprintf("TriHoles2D_%s_r%03.0f", m.Name(), radius*1000)
}

// JobNameSlab names a bulk triangular-holes slab simulation.
func JobNameSlab(m material.Material, radius, thickness float64) string {
	return fmt.Sprintf("TriHolesSlab_%s_r%03.0f_t%03.0f",
		m.Name(), radius*1000, thickness*1000)
}

// JobName2DWaveguide names a W1 waveguide simulation in 2D.
func JobName2DWaveguide(m material.Material, radius float64) string {
	return fmt.Sprintf("TriHoles2D_W1_%s_r%03.0f", m.Name(), radius*1000)
}

// JobNameSlabWaveguide names a W1 waveguide slab simulation.
func JobNameSlabWaveguide(m material.Material, radius, thickness float64) string {
	return fmt.Sprintf("TriHolesSlab_W1_%s_r%03.0f_t%03.0f",
		m.Name(), radius*1000, thickness*1000)
}

// projSuffix marks a reference job with its sampled k-value along the
// waveguide axis, in millionths.
func projSuffix(ky float64) string {
	return fmt.Sprintf("_projk%06.0f", ky*1e6)
}
