package recipes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightwell/phcband/pkg/ctl"
	"github.com/lightwell/phcband/pkg/kspace"
	"github.com/lightwell/phcband/pkg/sim"
)

// builderSpy records every invocation of the bulk builder and can fail
// at a chosen k-value index.
type builderSpy struct {
	suffixes []string
	paths    []*kspace.KSpace
	folders  []string
	failAt   int // -1 never fails
}

func newBuilderSpy() *builderSpy {
	return &builderSpy{failAt: -1}
}

func (b *builderSpy) build(_ context.Context, ks *kspace.KSpace, suffix, _, folder string) (*sim.Job, error) {
	b.suffixes = append(b.suffixes, suffix)
	b.paths = append(b.paths, ks)
	b.folders = append(b.folders, folder)
	if b.failAt >= 0 && len(b.suffixes)-1 == b.failAt {
		return nil, errors.New("solver exploded")
	}
	return &sim.Job{Name: "ref" + suffix}, nil
}

func writeMarker(t *testing.T, repoRoot, jobName string, ky float64, mode ctl.Mode) {
	t.Helper()
	name := jobName + projSuffix(ky)
	folder := filepath.Join(repoRoot, jobName, name)
	require.NoError(t, os.MkdirAll(folder, 0o755))
	marker := filepath.Join(folder, sim.RangesFileName(name, mode))
	require.NoError(t, os.WriteFile(marker, []byte("band,min,max\n"), 0o644))
}

func TestEnsureProjectedBandsRunsMissing(t *testing.T) {
	repoRoot := t.TempDir()
	spy := newBuilderSpy()
	kVals := []float64{0, 0.25, 0.5}

	folders, err := EnsureProjectedBands(context.Background(), &Env{},
		repoRoot, "bulk", ctl.ModeTE, kVals, spy.build)
	require.NoError(t, err)

	// one invocation per k-value, in k-value order
	assert.Equal(t,
		[]string{"_projk000000", "_projk250000", "_projk500000"},
		spy.suffixes)

	require.Len(t, folders, 3)
	for i, ky := range kVals {
		want := filepath.Join(repoRoot, "bulk", "bulk"+projSuffix(ky))
		abs, err := filepath.Abs(want)
		require.NoError(t, err)
		assert.Equal(t, abs, folders[i])
	}

	// every builder call received the repository as containing folder
	repo, err := filepath.Abs(filepath.Join(repoRoot, "bulk"))
	require.NoError(t, err)
	for _, f := range spy.folders {
		assert.Equal(t, repo, f)
	}
}

func TestEnsureProjectedBandsReferencePath(t *testing.T) {
	spy := newBuilderSpy()
	_, err := EnsureProjectedBands(context.Background(), &Env{},
		t.TempDir(), "bulk", ctl.ModeTE, []float64{0.25}, spy.build)
	require.NoError(t, err)
	require.Len(t, spy.paths, 1)

	ks := spy.paths[0]
	// two anchors bridged by 15 interior points
	assert.Equal(t, 17, ks.Len())

	pts := ks.Points()
	// rectangular K scaled by 2*ky, then offset by the triangular M
	assert.Equal(t, kspace.V(0.125, -0.125, 0), pts[0])
	assert.Equal(t, kspace.V(0.625, 0.375, 0), pts[16])
}

func TestEnsureProjectedBandsMemoized(t *testing.T) {
	repoRoot := t.TempDir()
	kVals := []float64{0, 0.25, 0.5}
	for _, ky := range kVals {
		writeMarker(t, repoRoot, "bulk", ky, ctl.ModeTE)
	}

	spy := newBuilderSpy()
	folders, err := EnsureProjectedBands(context.Background(), &Env{},
		repoRoot, "bulk", ctl.ModeTE, kVals, spy.build)
	require.NoError(t, err)

	assert.Empty(t, spy.suffixes, "completed references must not be re-run")

	// the folder list is complete and ordered even when fully memoized
	require.Len(t, folders, 3)
	for i, ky := range kVals {
		assert.Contains(t, folders[i], "bulk"+projSuffix(ky))
	}
}

func TestEnsureProjectedBandsPartiallyMemoized(t *testing.T) {
	repoRoot := t.TempDir()
	kVals := []float64{0, 0.25, 0.5}
	writeMarker(t, repoRoot, "bulk", 0.25, ctl.ModeTE)

	spy := newBuilderSpy()
	folders, err := EnsureProjectedBands(context.Background(), &Env{},
		repoRoot, "bulk", ctl.ModeTE, kVals, spy.build)
	require.NoError(t, err)

	assert.Equal(t, []string{"_projk000000", "_projk500000"}, spy.suffixes)
	assert.Len(t, folders, 3)
}

func TestEnsureProjectedBandsMarkerModeMatters(t *testing.T) {
	repoRoot := t.TempDir()
	// a TM marker does not satisfy a TE run
	writeMarker(t, repoRoot, "bulk", 0.25, ctl.ModeTM)

	spy := newBuilderSpy()
	_, err := EnsureProjectedBands(context.Background(), &Env{},
		repoRoot, "bulk", ctl.ModeTE, []float64{0.25}, spy.build)
	require.NoError(t, err)
	assert.Equal(t, []string{"_projk250000"}, spy.suffixes)
}

func TestEnsureProjectedBandsFailFast(t *testing.T) {
	repoRoot := t.TempDir()
	spy := newBuilderSpy()
	spy.failAt = 1

	folders, err := EnsureProjectedBands(context.Background(), &Env{},
		repoRoot, "bulk", ctl.ModeTE, []float64{0, 0.25, 0.5}, spy.build)
	require.Error(t, err)
	assert.Nil(t, folders)

	// no further simulations after the first failure
	assert.Equal(t, []string{"_projk000000", "_projk250000"}, spy.suffixes)
	assert.Contains(t, err.Error(), "bulk"+projSuffix(0.25),
		"the error names the failing reference folder")
}

func TestEnsureProjectedBandsParallel(t *testing.T) {
	repoRoot := t.TempDir()
	kVals := []float64{0, 0.25, 0.5}
	writeMarker(t, repoRoot, "bulk", 0.5, ctl.ModeTE)

	spy := &sequencedSpy{}
	env := &Env{Parallel: 2}
	folders, err := EnsureProjectedBands(context.Background(), env,
		repoRoot, "bulk", ctl.ModeTE, kVals, spy.build)
	require.NoError(t, err)

	// start order may vary, the folder list stays in k-value order
	require.Len(t, folders, 3)
	for i, ky := range kVals {
		assert.Contains(t, folders[i], "bulk"+projSuffix(ky))
	}
	assert.ElementsMatch(t, []string{"_projk000000", "_projk250000"}, spy.snapshot())
}

// sequencedSpy is a concurrency-safe builder recorder.
type sequencedSpy struct {
	mu       sync.Mutex
	suffixes []string
}

func (s *sequencedSpy) build(_ context.Context, _ *kspace.KSpace, suffix, _, _ string) (*sim.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suffixes = append(s.suffixes, suffix)
	return &sim.Job{Name: "ref" + suffix}, nil
}

func (s *sequencedSpy) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.suffixes))
	copy(out, s.suffixes)
	return out
}
