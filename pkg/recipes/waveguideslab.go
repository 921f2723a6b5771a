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

// WaveguideSlabOpts parameterizes a W1 waveguide in a photonic-crystal
// slab, simulated in a cuboid supercell.
type WaveguideSlabOpts struct {
	Material  material.Material
	Radius    float64
	Thickness float64

	Mode ctl.Mode // default zeven

	NumBands int // default 8

	KSteps  int // default 17
	KValues []float64

	YDirection bool

	SupercellSize int     // default 5, evened up to odd
	SupercellZ    float64 // default 6

	Resolution int // default 32
	MeshSize   int // default 7

	RunMode sim.RunMode

	ProjectedBandsFolder string

	SaveFieldPatternsKVecs    []kspace.Vec3
	SaveFieldPatternsBandNums []int

	ConvertFieldPatterns bool

	JobNameSuffix      string
	BandsTitleAppendix string

	PlotCropY              sim.Crop
	FieldPatternKSelection []int
}

func (o WaveguideSlabOpts) withDefaults() WaveguideSlabOpts {
	if o.Mode == "" {
		o.Mode = ctl.ModeZEven
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
	if o.SupercellZ == 0 {
		o.SupercellZ = 6
	}
	if o.Resolution == 0 {
		o.Resolution = 32
	}
	if o.MeshSize == 0 {
		o.MeshSize = 7
	}
	return o
}

// TriHolesSlab3DWaveguide builds a W1 waveguide in a triangular-holes
// slab. The unperturbed slab references are ensured first; when the
// parent run mode does not actually simulate, missing references are
// only constructed, not run.
func TriHolesSlab3DWaveguide(ctx context.Context, env *Env, opts WaveguideSlabOpts) (*sim.Job, error) {
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

	subRunMode := sim.ModeNone
	if opts.RunMode == sim.ModeSim {
		subRunMode = sim.ModeSim
	}

	build := func(ctx context.Context, ks *kspace.KSpace, suffix, titleAppendix, folder string) (*sim.Job, error) {
		return TriHolesSlab3D(ctx, env, TriHolesSlab3DOpts{
			Material:             mat,
			Radius:               opts.Radius,
			Thickness:            opts.Thickness,
			CustomKSpace:         ks,
			NumBands:             env.Defaults.NumProjectedBands,
			Resolution:           opts.Resolution,
			MeshSize:             opts.MeshSize,
			SupercellZ:           opts.SupercellZ,
			RunMode:              subRunMode,
			ContainingFolder:     folder,
			SaveFieldPatterns:    false,
			ConvertFieldPatterns: false,
			JobNameSuffix:        suffix,
			BandsTitleAppendix:   titleAppendix,
			Modes:                []ctl.Mode{opts.Mode},
		})
	}

	projectBands, err := EnsureProjectedBands(
		ctx, env, repoRoot, JobNameSlab(mat, opts.Radius, opts.Thickness),
		opts.Mode, kVals, build)
	if err != nil {
		return nil, err
	}

	sc := opts.SupercellSize
	if sc%2 == 0 {
		sc++
	}
	sch := sc / 2

	slab := geometry.Block{
		X: geometry.Lit(0), Y: geometry.Lit(0), Z: geometry.Lit(0),
		Material: mat,
	}

	var geom *geometry.Geometry
	if opts.YDirection {
		slab.Size = [3]geometry.Coord{
			// oversized in the plane so the slab certainly fills the cell
			geometry.Expr("(* (sqrt 3) %d)", sc+1),
			geometry.Lit(2),
			geometry.Lit(opts.Thickness),
		}
		geom = geometry.NewSlab(
			geometry.Expr("(* (sqrt 3) %d)", sc), geometry.Lit(1),
			opts.SupercellZ, false,
			append([]geometry.Object{slab}, waveguideRods(opts.Radius, sch, true)...)...)
	} else {
		slab.Size = [3]geometry.Coord{
			geometry.Lit(2),
			geometry.Expr("(* (sqrt 3) %d)", sc+1),
			geometry.Lit(opts.Thickness),
		}
		geom = geometry.NewSlab(
			geometry.Lit(1), geometry.Expr("(* (sqrt 3) %d)", sc),
			opts.SupercellZ, false,
			append([]geometry.Object{slab}, waveguideRods(opts.Radius, sch, false)...)...)
	}

	ks := kspace.FromScalars(kVals, opts.YDirection)

	jobName := JobNameSlabWaveguide(mat, opts.Radius, opts.Thickness) + opts.JobNameSuffix

	runCode := env.Defaults.RunPrefix() + env.Defaults.GatedRunCode(
		opts.Mode, opts.SaveFieldPatternsKVecs, opts.SaveFieldPatternsBandNums)

	job := &sim.Job{
		Name:         jobName,
		Geometry:     geom,
		KSpace:       ks,
		NumBands:     opts.NumBands,
		Resolution:   opts.Resolution,
		MeshSize:     opts.MeshSize,
		InitCode:     env.Defaults.InitCode,
		RunCode:      runCode,
		WorkDir:      filepath.Join(env.containingFolder(), jobName),
		ClearWorkDir: opts.RunMode.ClearsWorkDir(),
	}

	title := fmt.Sprintf("Hex. PhC slab W1; %s, thickness=%.3f, radius=%.3f",
		mat.Name(), opts.Thickness, opts.Radius) + opts.BandsTitleAppendix

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
