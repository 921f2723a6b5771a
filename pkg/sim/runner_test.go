package sim

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightwell/phcband/pkg/ctl"
	"github.com/lightwell/phcband/pkg/kspace"
)

type fakeSolver struct {
	runs       []string
	processors []int
	err        error
}

func (f *fakeSolver) Run(_ context.Context, job *Job, numProcessors int) error {
	f.runs = append(f.runs, job.Name)
	f.processors = append(f.processors, numProcessors)
	return f.err
}

type fakePost struct {
	processed  []string
	displayed  []string
	lastOpts   PostOpts
	processErr error
	displayErr error
}

func (f *fakePost) Process(_ context.Context, job *Job, opts PostOpts) error {
	f.processed = append(f.processed, job.Name)
	f.lastOpts = opts
	return f.processErr
}

func (f *fakePost) Display(_ context.Context, job *Job) error {
	f.displayed = append(f.displayed, job.Name)
	return f.displayErr
}

func testJob(t *testing.T) *Job {
	t.Helper()
	return &Job{
		Name:       "TriHoles2D_SiN_r380",
		KSpace:     kspace.Triangular(2),
		NumBands:   8,
		Resolution: 32,
		MeshSize:   7,
		InitCode:   "(set! filename-prefix \"\")\n",
		RunCode:    "(run-te)\n",
		WorkDir:    filepath.Join(t.TempDir(), "TriHoles2D_SiN_r380"),
	}
}

func TestParseRunMode(t *testing.T) {
	for _, s := range []string{"", "ctl", "sim", "postpc", "display"} {
		m, err := ParseRunMode(s)
		require.NoError(t, err, s)
		assert.Equal(t, RunMode(s), m)
	}
	for _, s := range []string{"simulate", "SIM", "plot", " "} {
		_, err := ParseRunMode(s)
		assert.Error(t, err, s)
	}
}

func TestClearsWorkDir(t *testing.T) {
	assert.False(t, ModeNone.ClearsWorkDir())
	assert.True(t, ModeCtl.ClearsWorkDir())
	assert.True(t, ModeSim.ClearsWorkDir())
	assert.False(t, ModePostPC.ClearsWorkDir())
	assert.False(t, ModeDisplay.ClearsWorkDir())
}

func TestRangesFileName(t *testing.T) {
	assert.Equal(t, "job_te_ranges.csv", RangesFileName("job", ctl.ModeTE))
	assert.Equal(t, "job_zeven_ranges.csv", RangesFileName("job", ctl.ModeZEven))
}

func TestJobPaths(t *testing.T) {
	j := &Job{Name: "job", WorkDir: "/tmp/work"}
	assert.Equal(t, "/tmp/work/job.ctl", j.CtlPath())
	assert.Equal(t, "/tmp/work/job.out", j.OutPath())
	assert.Equal(t, "/tmp/work/job_tm_ranges.csv", j.RangesPath(ctl.ModeTM))
}

func TestJobValidate(t *testing.T) {
	j := testJob(t)
	require.NoError(t, j.Validate())

	bad := *j
	bad.Name = ""
	assert.Error(t, bad.Validate())

	bad = *j
	bad.WorkDir = ""
	assert.Error(t, bad.Validate())

	bad = *j
	bad.NumBands = 0
	assert.Error(t, bad.Validate())
}

func TestWriteCtl(t *testing.T) {
	j := testJob(t)
	require.NoError(t, j.WriteCtl())

	data, err := os.ReadFile(j.CtlPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "(set! num-bands 8)")
	assert.Contains(t, string(data), "(run-te)")
}

func TestWriteCtlClearsStaleResults(t *testing.T) {
	j := testJob(t)
	require.NoError(t, os.MkdirAll(j.WorkDir, 0o755))
	stale := j.RangesPath(ctl.ModeTE)
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	j.ClearWorkDir = true
	require.NoError(t, j.WriteCtl())

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale results must be cleared")
	_, err = os.Stat(j.CtlPath())
	assert.NoError(t, err)
}

func TestWriteCtlKeepsResultsWithoutClear(t *testing.T) {
	j := testJob(t)
	require.NoError(t, os.MkdirAll(j.WorkDir, 0o755))
	marker := j.RangesPath(ctl.ModeTE)
	require.NoError(t, os.WriteFile(marker, []byte("kept"), 0o644))

	require.NoError(t, j.WriteCtl())

	_, err := os.Stat(marker)
	assert.NoError(t, err)
}

func TestDoInvalidModeRejectedBeforeAnyMutation(t *testing.T) {
	solver := &fakeSolver{}
	post := &fakePost{}
	r := NewRunner(solver, post, 1, nil)

	j := testJob(t)
	_, err := r.Do(context.Background(), j, RunMode("simulate"), PostOpts{})
	require.Error(t, err)

	_, statErr := os.Stat(j.WorkDir)
	assert.True(t, os.IsNotExist(statErr), "no directory may be created for an invalid mode")
	assert.Empty(t, solver.runs)
	assert.Empty(t, post.processed)
}

func TestDoModeNoneHasNoSideEffects(t *testing.T) {
	solver := &fakeSolver{}
	post := &fakePost{}
	r := NewRunner(solver, post, 1, nil)

	j := testJob(t)
	got, err := r.Do(context.Background(), j, ModeNone, PostOpts{})
	require.NoError(t, err)
	assert.Same(t, j, got)

	_, statErr := os.Stat(j.WorkDir)
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, solver.runs)
	assert.Empty(t, post.processed)
}

func TestDoModeCtl(t *testing.T) {
	solver := &fakeSolver{}
	post := &fakePost{}
	r := NewRunner(solver, post, 1, nil)

	j := testJob(t)
	_, err := r.Do(context.Background(), j, ModeCtl, PostOpts{})
	require.NoError(t, err)

	_, statErr := os.Stat(j.CtlPath())
	assert.NoError(t, statErr)
	assert.Empty(t, solver.runs, "ctl mode must not invoke the solver")
	assert.Empty(t, post.processed)
}

func TestDoModeSim(t *testing.T) {
	solver := &fakeSolver{}
	post := &fakePost{}
	r := NewRunner(solver, post, 4, nil)

	j := testJob(t)
	opts := PostOpts{Title: "test run", Modes: []ctl.Mode{ctl.ModeTE}}
	_, err := r.Do(context.Background(), j, ModeSim, opts)
	require.NoError(t, err)

	require.Equal(t, []string{j.Name}, solver.runs)
	assert.Equal(t, []int{4}, solver.processors)
	require.Equal(t, []string{j.Name}, post.processed)
	assert.Equal(t, "test run", post.lastOpts.Title)

	_, statErr := os.Stat(j.CtlPath())
	assert.NoError(t, statErr, "the script is written before the solver runs")
}

func TestDoModeSimSolverFailure(t *testing.T) {
	solver := &fakeSolver{err: errors.New("solver exploded")}
	post := &fakePost{}
	r := NewRunner(solver, post, 1, nil)

	j := testJob(t)
	got, err := r.Do(context.Background(), j, ModeSim, PostOpts{})
	require.Error(t, err)
	assert.Nil(t, got, "a failed run yields no job")
	assert.Contains(t, err.Error(), j.Name)
	assert.Empty(t, post.processed, "post-processing is skipped after a solver failure")
}

func TestDoModePostPCDoesNotClear(t *testing.T) {
	solver := &fakeSolver{}
	post := &fakePost{}
	r := NewRunner(solver, post, 1, nil)

	j := testJob(t)
	j.ClearWorkDir = true
	require.NoError(t, os.MkdirAll(j.WorkDir, 0o755))
	result := j.RangesPath(ctl.ModeTE)
	require.NoError(t, os.WriteFile(result, []byte("data"), 0o644))

	_, err := r.Do(context.Background(), j, ModePostPC, PostOpts{})
	require.NoError(t, err)

	_, statErr := os.Stat(result)
	assert.NoError(t, statErr, "postpc must keep prior results")
	assert.Empty(t, solver.runs)
	assert.Equal(t, []string{j.Name}, post.processed)
}

func TestDoModeDisplay(t *testing.T) {
	solver := &fakeSolver{}
	post := &fakePost{}
	r := NewRunner(solver, post, 1, nil)

	j := testJob(t)
	_, err := r.Do(context.Background(), j, ModeDisplay, PostOpts{})
	require.NoError(t, err)
	assert.Equal(t, []string{j.Name}, post.displayed)
	assert.Empty(t, solver.runs)
	assert.Empty(t, post.processed)
}

func TestExternalPostSkipsWithoutCommand(t *testing.T) {
	p := NewExternalPost("", "", nil)
	j := testJob(t)
	assert.NoError(t, p.Process(context.Background(), j, PostOpts{}))
}

func TestExternalPostArgs(t *testing.T) {
	p := NewExternalPost("pypostprocess", "", nil)
	j := &Job{Name: "job", WorkDir: "/tmp/work"}

	path := kspace.Triangular(1)
	opts := PostOpts{
		Title:                  "hex lattice",
		Modes:                  []ctl.Mode{ctl.ModeTE, ctl.ModeAll},
		Crop:                   AutoCrop(),
		ConvertFieldPatterns:   true,
		FieldPatternKSelection: []int{0, 2},
		XAxis:                  AxisHint{Path: path},
	}
	args := p.args(j, opts)

	assert.Equal(t, []string{
		"job",
		"--title", "hex lattice",
		"--mode", "te",
		"--mode", "all",
		"--crop", "auto",
		"--convert-patterns",
		"--k-selection", "0,2",
		"--x-label", "Gamma:0",
		"--x-label", "M:2",
		"--x-label", "K:4",
		"--x-label", "Gamma:6",
	}, args)
}

func TestExternalPostArgsCropAndTicks(t *testing.T) {
	p := NewExternalPost("pypostprocess", "", nil)
	j := &Job{Name: "job", WorkDir: "/tmp/work"}

	opts := PostOpts{
		Title: "W1",
		Modes: []ctl.Mode{ctl.ModeZEven},
		Crop:  CropAt(0.4),
		XAxis: AxisHint{Ticks: 5},
		ProjectBands: []string{
			"/repo/bulk/bulk_projk000000",
			"/repo/bulk/bulk_projk250000",
		},
	}
	args := p.args(j, opts)

	assert.Equal(t, []string{
		"job",
		"--title", "W1",
		"--mode", "zeven",
		"--crop", "0.4",
		"--x-ticks", "5",
		"--project", "/repo/bulk/bulk_projk000000",
		"--project", "/repo/bulk/bulk_projk250000",
	}, args)
}
