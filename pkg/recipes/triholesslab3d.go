package recipes

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lightwell/phcband/pkg/ctl"
	"github.com/lightwell/phcband/pkg/geometry"
	"github.com/lightwell/phcband/pkg/kspace"
	"github.com/lightwell/phcband/pkg/material"
	"github.com/lightwell/phcband/pkg/sim"
)

// TriHolesSlab3DOpts parameterizes a slab with a triangular lattice of
// holes. Zero-valued numeric fields take the canonical defaults.
type TriHolesSlab3DOpts struct {
	Material material.Material
	// Radius of the holes in units of the lattice constant.
	Radius float64
	// Thickness of the slab in units of the lattice constant.
	Thickness float64

	NumBands       int     // default 8
	KInterpolation int     // default 11
	Resolution     int     // default 32
	MeshSize       int     // default 7
	SupercellZ     float64 // default 6

	RunMode sim.RunMode

	SaveFieldPatterns    bool
	ConvertFieldPatterns bool

	ContainingFolder   string
	JobNameSuffix      string
	BandsTitleAppendix string

	CustomKSpace *kspace.KSpace

	Modes []ctl.Mode // default zeven, zodd

	// SubstrateMaterial adds a substrate below the slab; holes are not
	// extended into it.
	SubstrateMaterial *material.Material
}

func (o TriHolesSlab3DOpts) withDefaults() TriHolesSlab3DOpts {
	if o.NumBands == 0 {
		o.NumBands = 8
	}
	if o.KInterpolation == 0 {
		o.KInterpolation = 11
	}
	if o.Resolution == 0 {
		o.Resolution = 32
	}
	if o.MeshSize == 0 {
		o.MeshSize = 7
	}
	if o.SupercellZ == 0 {
		o.SupercellZ = 6
	}
	if o.Modes == nil {
		o.Modes = []ctl.Mode{ctl.ModeZEven, ctl.ModeZOdd}
	}
	return o
}

// TriHolesSlab3D builds a photonic-crystal slab with a triangular
// lattice of holes and drives it through the requested run mode.
func TriHolesSlab3D(ctx context.Context, env *Env, opts TriHolesSlab3DOpts) (*sim.Job, error) {
	opts = opts.withDefaults()
	mat := opts.Material

	geom := geometry.NewSlab(geometry.Lit(1), geometry.Lit(1), opts.SupercellZ, true,
		geometry.Block{
			X: geometry.Lit(0), Y: geometry.Lit(0), Z: geometry.Lit(0),
			Material: mat,
			// oversized in the plane so the slab certainly fills the cell
			Size: [3]geometry.Coord{
				geometry.Lit(2), geometry.Lit(2), geometry.Lit(opts.Thickness),
			},
		},
		geometry.Rod{
			X:        geometry.Lit(0),
			Y:        geometry.Lit(0),
			Material: material.Air,
			Radius:   opts.Radius,
		})

	if opts.SubstrateMaterial != nil {
		if err := geom.AddSubstrate(*opts.SubstrateMaterial, -0.5*opts.Thickness); err != nil {
			return nil, err
		}
	}

	ks := opts.CustomKSpace
	if ks == nil {
		ks = kspace.Triangular(opts.KInterpolation)
	}

	var poi []kspace.Vec3
	if opts.SaveFieldPatterns && ks.Len() > 0 {
		poi = ks.Points()[:ks.Len()-1]
	}

	jobName := JobNameSlab(mat, opts.Radius, opts.Thickness) + opts.JobNameSuffix
	folder := opts.ContainingFolder
	if folder == "" {
		folder = env.containingFolder()
	}

	job := &sim.Job{
		Name:         jobName,
		Geometry:     geom,
		KSpace:       ks,
		NumBands:     opts.NumBands,
		Resolution:   opts.Resolution,
		MeshSize:     opts.MeshSize,
		InitCode:     env.Defaults.InitCode,
		RunCode:      env.Defaults.RunCode(opts.Modes, poi),
		WorkDir:      filepath.Join(folder, jobName),
		ClearWorkDir: opts.RunMode.ClearsWorkDir(),
	}

	title := fmt.Sprintf("Hex. PhC slab; %s, thickness=%.3f, radius=%.3f",
		mat.Name(), opts.Thickness, opts.Radius) + opts.BandsTitleAppendix

	return env.Runner.Do(ctx, job, opts.RunMode, sim.PostOpts{
		Title:                title,
		Modes:                opts.Modes,
		Crop:                 sim.CropAt(0.8 / float64(geom.SubstrateIndex())),
		ConvertFieldPatterns: opts.ConvertFieldPatterns,
		// the closing Gamma is not plotted a second time
		FieldPatternKSelection: []int{0, 2},
		XAxis:                  axisHint(env.Defaults, ks),
	})
}
