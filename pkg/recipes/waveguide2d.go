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

// Waveguide2DOpts parameterizes a W1 waveguide along the
// nearest-neighbor (Gamma->K) direction of a 2D triangular lattice of
// holes, simulated in a rectangular supercell.
type Waveguide2DOpts struct {
	Material material.Material
	Radius   float64

	// Mode is the single polarization to run.
	Mode ctl.Mode // default te

	NumBands int // default 8

	// KSteps samples evenly over [0, 0.5] along the waveguide
	// direction; KValues, when set, lists the samples explicitly.
	KSteps  int // default 17
	KValues []float64

	// YDirection points the waveguide along y instead of x.
	YDirection bool

	// SupercellSize is the supercell extent perpendicular to the
	// waveguide in units of sqrt(3) lattice constants; evened up to
	// the next odd number.
	SupercellSize int // default 5

	Resolution int // default 32
	MeshSize   int // default 7

	RunMode sim.RunMode

	// ProjectedBandsFolder overrides the environment's reference
	// repository.
	ProjectedBandsFolder string

	// Field patterns are saved only at these (k-vector, band) pairs.
	SaveFieldPatternsKVecs    []kspace.Vec3
	SaveFieldPatternsBandNums []int

	ConvertFieldPatterns bool

	JobNameSuffix      string
	BandsTitleAppendix string

	PlotCropY              sim.Crop
	FieldPatternKSelection []int
}

func (o Waveguide2DOpts) withDefaults() Waveguide2DOpts {
	if o.Mode == "" {
		o.Mode = ctl.ModeTE
	}
	if o.NumBands == 0 {
		o.NumBands = 8
	}
	if o.KSteps == 0 {
		o.KSteps = 17
	}
	if o.SupercellSize == 0 {
		o.SupercellSize = 5
	}
	if o.Resolution == 0 {
		o.Resolution = 32
	}
	if o.MeshSize == 0 {
		o.MeshSize = 7
	}
	return o
}

// TriHoles2DWaveguide builds a W1 waveguide in a 2D triangular lattice
// of holes. Before the waveguide simulation itself it ensures the
// complete matrix of unperturbed reference simulations needed for band
// projection, reusing any found on disk.
func TriHoles2DWaveguide(ctx context.Context, env *Env, opts Waveguide2DOpts) (*sim.Job, error) {
	opts = opts.withDefaults()
	mat := opts.Material

	kVals := opts.KValues
	if kVals == nil {
		kVals = linspace(0, 0.5, opts.KSteps)
	}

	repoRoot := opts.ProjectedBandsFolder
	if repoRoot == "" {
		repoRoot = env.projectedBandsFolder()
	}

	build := func(ctx context.Context, ks *kspace.KSpace, suffix, titleAppendix, folder string) (*sim.Job, error) {
		return TriHoles2D(ctx, env, TriHoles2DOpts{
			Material:             mat,
			Radius:               opts.Radius,
			CustomKSpace:         ks,
			NumBands:             env.Defaults.NumProjectedBands,
			Resolution:           opts.Resolution,
			MeshSize:             opts.MeshSize,
			RunMode:              sim.ModeSim,
			ContainingFolder:     folder,
			SaveFieldPatterns:    false,
			ConvertFieldPatterns: false,
			JobNameSuffix:        suffix,
			BandsTitleAppendix:   titleAppendix,
			Modes:                []ctl.Mode{opts.Mode},
		})
	}

	projectBands, err := EnsureProjectedBands(
		ctx, env, repoRoot, JobName2D(mat, opts.Radius), opts.Mode, kVals, build)
	if err != nil {
		return nil, err
	}

	sc := opts.SupercellSize
	if sc%2 == 0 {
		sc++
	}
	sch := sc / 2

	var geom *geometry.Geometry
	if opts.YDirection {
		geom = geometry.New(
			geometry.Expr("(* (sqrt 3) %d)", sc), geometry.Lit(1), false,
			waveguideRods(opts.Radius, sch, true)...)
	} else {
		geom = geometry.New(
			geometry.Lit(1), geometry.Expr("(* (sqrt 3) %d)", sc), false,
			waveguideRods(opts.Radius, sch, false)...)
	}

	ks := kspace.FromScalars(kVals, opts.YDirection)

	jobName := JobName2DWaveguide(mat, opts.Radius) + opts.JobNameSuffix

	runCode := env.Defaults.RunPrefix() + env.Defaults.GatedRunCode(
		opts.Mode, opts.SaveFieldPatternsKVecs, opts.SaveFieldPatternsBandNums)

	job := &sim.Job{
		Name:         jobName,
		Geometry:     geom,
		KSpace:       ks,
		NumBands:     opts.NumBands,
		Resolution:   opts.Resolution,
		MeshSize:     opts.MeshSize,
		InitCode:     env.Defaults.InitCode + fmt.Sprintf("(set! default-material %s)\n", mat),
		RunCode:      runCode,
		WorkDir:      filepath.Join(env.containingFolder(), jobName),
		ClearWorkDir: opts.RunMode.ClearsWorkDir(),
	}

	title := fmt.Sprintf("2D hex. PhC W1; %s, radius=%.3f", mat.Name(), opts.Radius) +
		opts.BandsTitleAppendix

	return env.Runner.Do(ctx, job, opts.RunMode, sim.PostOpts{
		Title:                  title,
		Modes:                  []ctl.Mode{opts.Mode},
		Crop:                   opts.PlotCropY,
		ConvertFieldPatterns:   opts.ConvertFieldPatterns,
		FieldPatternKSelection: opts.FieldPatternKSelection,
		XAxis:                  sim.AxisHint{Ticks: env.Defaults.XAxisTicks},
		ProjectBands:           projectBands,
	})
}

// waveguideRods builds the hole pattern of a W1 supercell: the center
// row with the hole at the origin removed (the waveguide itself), plus
// the perimeter rows offset by half a lattice constant. Hole positions
// are lattice-relative sqrt(3) expressions evaluated by the solver.
func waveguideRods(radius float64, sch int, yDirection bool) []geometry.Object {
	var rods []geometry.Object

	for c := -sch; c <= sch; c++ {
		if c == 0 {
			continue
		}
		pos := geometry.Expr("(* %d (sqrt 3))", c)
		rod := geometry.Rod{Material: material.Air, Radius: radius}
		if yDirection {
			rod.X, rod.Y = pos, geometry.Lit(0)
		} else {
			rod.X, rod.Y = geometry.Lit(0), pos
		}
		rods = append(rods, rod)
	}

	for c := -sch; c <= sch; c++ {
		pos := geometry.Expr("(* %.1f (sqrt 3))", float64(c)+0.5)
		rod := geometry.Rod{Material: material.Air, Radius: radius}
		if yDirection {
			rod.X, rod.Y = pos, geometry.Lit(0.5)
		} else {
			rod.X, rod.Y = geometry.Lit(0.5), pos
		}
		rods = append(rods, rod)
	}

	return rods
}
