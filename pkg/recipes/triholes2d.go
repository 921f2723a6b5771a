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

// TriHoles2DOpts parameterizes a bulk 2D simulation of a triangular
// lattice of air holes. Zero-valued numeric fields take the canonical
// defaults.
type TriHoles2DOpts struct {
	Material material.Material
	// Radius of the holes in units of the lattice constant.
	Radius float64

	NumBands       int // default 8
	KInterpolation int // default 11
	Resolution     int // default 32
	MeshSize       int // default 7

	RunMode sim.RunMode

	// SaveFieldPatterns outputs field patterns at every path point
	// except the duplicated closing Gamma.
	SaveFieldPatterns    bool
	ConvertFieldPatterns bool

	// ContainingFolder overrides the environment's job folder root.
	ContainingFolder   string
	JobNameSuffix      string
	BandsTitleAppendix string

	// CustomKSpace replaces the canonical Gamma-M-K-Gamma path;
	// KInterpolation is ignored when set.
	CustomKSpace *kspace.KSpace

	Modes []ctl.Mode // default te, tm
}

func (o TriHoles2DOpts) withDefaults() TriHoles2DOpts {
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
	if o.Modes == nil {
		o.Modes = []ctl.Mode{ctl.ModeTE, ctl.ModeTM}
	}
	return o
}

// TriHoles2D builds a 2D triangular lattice of holes and drives it
// through the requested run mode.
func TriHoles2D(ctx context.Context, env *Env, opts TriHoles2DOpts) (*sim.Job, error) {
	opts = opts.withDefaults()
	mat := opts.Material

	geom := geometry.New(geometry.Lit(1), geometry.Lit(1), true,
		geometry.Rod{
			X:        geometry.Lit(0),
			Y:        geometry.Lit(0),
			Material: material.Air,
			Radius:   opts.Radius,
		})

	ks := opts.CustomKSpace
	if ks == nil {
		ks = kspace.Triangular(opts.KInterpolation)
	}

	// points of interest for field patterns, closing Gamma dropped
	var poi []kspace.Vec3
	if opts.SaveFieldPatterns && ks.Len() > 0 {
		poi = ks.Points()[:ks.Len()-1]
	}

	jobName := JobName2D(mat, opts.Radius) + opts.JobNameSuffix
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
		InitCode:     env.Defaults.InitCode + fmt.Sprintf("(set! default-material %s)\n", mat),
		RunCode:      env.Defaults.RunCode(opts.Modes, poi),
		WorkDir:      filepath.Join(folder, jobName),
		ClearWorkDir: opts.RunMode.ClearsWorkDir(),
	}

	title := fmt.Sprintf("2D hex. PhC; %s, radius=%.3f", mat.Name(), opts.Radius) +
		opts.BandsTitleAppendix

	return env.Runner.Do(ctx, job, opts.RunMode, sim.PostOpts{
		Title:                title,
		Modes:                opts.Modes,
		Crop:                 sim.AutoCrop(),
		ConvertFieldPatterns: opts.ConvertFieldPatterns,
		// the closing Gamma is not plotted a second time
		FieldPatternKSelection: []int{0, 2},
		XAxis:                  axisHint(env.Defaults, ks),
	})
}
