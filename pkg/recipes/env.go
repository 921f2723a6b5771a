// Package recipes assembles geometries and k-paths for the standard
// photonic-crystal configurations (triangular lattices of holes, slabs,
// W1 waveguides) and delegates them to the run-mode orchestrator.
// Waveguide recipes first ensure the matrix of unperturbed reference
// simulations their band projection depends on.
package recipes

import (
	"go.uber.org/zap"

	"github.com/lightwell/phcband/pkg/ctl"
	"github.com/lightwell/phcband/pkg/kspace"
	"github.com/lightwell/phcband/pkg/sim"
)

// Env bundles the collaborators shared by every recipe.
type Env struct {
	Runner   *sim.Runner
	Defaults ctl.Defaults

	// ContainingFolder holds job working directories.
	ContainingFolder string
	// ProjectedBandsFolder caches unperturbed reference simulations.
	ProjectedBandsFolder string

	// Parallel bounds concurrent reference simulations; 0 or 1 runs
	// them sequentially in k-value order.
	Parallel int

	Log *zap.Logger
}

func (e *Env) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

func (e *Env) containingFolder() string {
	if e.ContainingFolder == "" {
		return "."
	}
	return e.ContainingFolder
}

func (e *Env) projectedBandsFolder() string {
	if e.ProjectedBandsFolder == "" {
		return "../projected_bands_repo"
	}
	return e.ProjectedBandsFolder
}

// axisHint prefers the path's own high-symmetry labels over a plain
// tick count.
func axisHint(d ctl.Defaults, ks *kspace.KSpace) sim.AxisHint {
	if ks.HasLabels() {
		return sim.AxisHint{Path: ks}
	}
	return sim.AxisHint{Ticks: d.XAxisTicks}
}

// linspace returns num evenly spaced values from start to stop,
// endpoints included.
func linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return nil
	}
	if num == 1 {
		return []float64{start}
	}
	vals := make([]float64, num)
	step := (stop - start) / float64(num-1)
	for i := range vals {
		vals[i] = start + float64(i)*step
	}
	vals[num-1] = stop
	return vals
}
