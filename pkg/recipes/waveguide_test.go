package recipes

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightwell/phcband/pkg/ctl"
	"github.com/lightwell/phcband/pkg/kspace"
	"github.com/lightwell/phcband/pkg/sim"
)

func TestTriHoles2DWaveguideRunsReferencesFirst(t *testing.T) {
	te := newTestEnv(t)
	job, err := TriHoles2DWaveguide(context.Background(), te.env, Waveguide2DOpts{
		Material: sinMat(t),
		Radius:   0.38,
		KValues:  []float64{0, 0.5},
		RunMode:  sim.ModeSim,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"TriHoles2D_SiN_r380_projk000000",
		"TriHoles2D_SiN_r380_projk500000",
		"TriHoles2D_W1_SiN_r380",
	}, te.solver.runs, "references run before the waveguide, in k-value order")

	opts := te.post.opts[job.Name]
	require.Len(t, opts.ProjectBands, 2)
	assert.Contains(t, opts.ProjectBands[0], "TriHoles2D_SiN_r380_projk000000")
	assert.Contains(t, opts.ProjectBands[1], "TriHoles2D_SiN_r380_projk500000")
	assert.Equal(t, []ctl.Mode{ctl.ModeTE}, opts.Modes)
}

func TestTriHoles2DWaveguideMemoizedReferences(t *testing.T) {
	te := newTestEnv(t)
	for _, ky := range []float64{0, 0.5} {
		writeMarker(t, te.env.ProjectedBandsFolder, "TriHoles2D_SiN_r380", ky, ctl.ModeTE)
	}

	job, err := TriHoles2DWaveguide(context.Background(), te.env, Waveguide2DOpts{
		Material: sinMat(t),
		Radius:   0.38,
		KValues:  []float64{0, 0.5},
		RunMode:  sim.ModeSim,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"TriHoles2D_W1_SiN_r380"}, te.solver.runs,
		"completed references are reused without re-running")
	assert.Len(t, te.post.opts[job.Name].ProjectBands, 2)
}

func TestTriHoles2DWaveguideReferenceFailureAborts(t *testing.T) {
	te := newTestEnv(t)
	te.solver.fail = map[string]error{
		"TriHoles2D_SiN_r380_projk000000": os.ErrPermission,
	}

	job, err := TriHoles2DWaveguide(context.Background(), te.env, Waveguide2DOpts{
		Material: sinMat(t),
		Radius:   0.38,
		KValues:  []float64{0, 0.5},
		RunMode:  sim.ModeSim,
	})
	require.Error(t, err)
	assert.Nil(t, job)

	assert.Equal(t, []string{"TriHoles2D_SiN_r380_projk000000"}, te.solver.runs,
		"the waveguide build aborts on the first reference failure")
}

func TestTriHoles2DWaveguideJobAssembly(t *testing.T) {
	te := newTestEnv(t)
	job, err := TriHoles2DWaveguide(context.Background(), te.env, Waveguide2DOpts{
		Material:      sinMat(t),
		Radius:        0.38,
		KValues:       []float64{0, 0.25, 0.5},
		SupercellSize: 4,
		RunMode:       sim.ModeNone,
	})
	require.NoError(t, err)

	assert.Equal(t, "TriHoles2D_W1_SiN_r380", job.Name)
	assert.Contains(t, job.InitCode, "default-material")

	// even supercell sizes widen to the next odd number
	geo := job.Geometry.Render()
	assert.Contains(t, geo, "(size 1 (* (sqrt 3) 5) no-size)")
	// 4 center-row holes (origin removed) plus 5 perimeter holes
	assert.Len(t, job.Geometry.Objects(), 9)

	// uninterpolated scan along the waveguide direction
	require.Equal(t, 3, job.KSpace.Len())
	assert.Equal(t, kspace.V(0.25, 0, 0), job.KSpace.Points()[1])

	assert.Contains(t, job.RunCode, "(optimize-grid-size!)")
	assert.NotContains(t, job.RunCode, "member?",
		"no field-pattern selection, plain run directive")
}

func TestTriHoles2DWaveguideYDirection(t *testing.T) {
	te := newTestEnv(t)
	job, err := TriHoles2DWaveguide(context.Background(), te.env, Waveguide2DOpts{
		Material:   sinMat(t),
		Radius:     0.38,
		KValues:    []float64{0.25},
		YDirection: true,
		RunMode:    sim.ModeNone,
	})
	require.NoError(t, err)

	assert.Contains(t, job.Geometry.Render(), "(size (* (sqrt 3) 5) 1 no-size)")
	assert.Equal(t, kspace.V(0, 0.25, 0), job.KSpace.Points()[0])
}

func TestTriHoles2DWaveguideGatedFieldOutput(t *testing.T) {
	te := newTestEnv(t)
	job, err := TriHoles2DWaveguide(context.Background(), te.env, Waveguide2DOpts{
		Material:                  sinMat(t),
		Radius:                    0.38,
		KValues:                   []float64{0.25},
		SaveFieldPatternsKVecs:    []kspace.Vec3{kspace.V(0.25, 0, 0)},
		SaveFieldPatternsBandNums: []int{2, 4},
		RunMode:                   sim.ModeNone,
	})
	require.NoError(t, err)

	assert.Contains(t, job.RunCode, "(define (member? x list)")
	assert.Contains(t, job.RunCode, "(define output-bands-list (list 2 4))")
	assert.Contains(t, job.RunCode, "(output-at-kpoint (vector3 0.25 0 0) output-func)")
}

func TestTriHolesSlab3DWaveguideCtlDoesNotRunReferences(t *testing.T) {
	te := newTestEnv(t)
	job, err := TriHolesSlab3DWaveguide(context.Background(), te.env, WaveguideSlabOpts{
		Material:  sinMat(t),
		Radius:    0.34,
		Thickness: 0.8,
		KValues:   []float64{0, 0.5},
		RunMode:   sim.ModeCtl,
	})
	require.NoError(t, err)

	assert.Empty(t, te.solver.runs,
		"a ctl-only parent run must not simulate references")

	_, statErr := os.Stat(job.CtlPath())
	assert.NoError(t, statErr, "the waveguide script itself is written")
}

func TestTriHolesSlab3DWaveguideSimRunsReferences(t *testing.T) {
	te := newTestEnv(t)
	job, err := TriHolesSlab3DWaveguide(context.Background(), te.env, WaveguideSlabOpts{
		Material:  sinMat(t),
		Radius:    0.34,
		Thickness: 0.8,
		KValues:   []float64{0, 0.5},
		RunMode:   sim.ModeSim,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"TriHolesSlab_SiN_r340_t800_projk000000",
		"TriHolesSlab_SiN_r340_t800_projk500000",
		"TriHolesSlab_W1_SiN_r340_t800",
	}, te.solver.runs)

	opts := te.post.opts[job.Name]
	assert.Equal(t, []ctl.Mode{ctl.ModeZEven}, opts.Modes)
	assert.Len(t, opts.ProjectBands, 2)
}

func TestTriHolesSlab3DWaveguideJobAssembly(t *testing.T) {
	te := newTestEnv(t)
	job, err := TriHolesSlab3DWaveguide(context.Background(), te.env, WaveguideSlabOpts{
		Material:  sinMat(t),
		Radius:    0.34,
		Thickness: 0.8,
		KValues:   []float64{0.25},
		RunMode:   sim.ModeNone,
	})
	require.NoError(t, err)

	assert.Equal(t, "TriHolesSlab_W1_SiN_r340_t800", job.Name)
	assert.NotContains(t, job.InitCode, "default-material")

	geo := job.Geometry.Render()
	assert.Contains(t, geo, "(size 1 (* (sqrt 3) 5) 6)")
	// the slab background is oversized one lattice row beyond the cell
	assert.Contains(t, geo, "(size 2 (* (sqrt 3) 6) 0.8)")
}
