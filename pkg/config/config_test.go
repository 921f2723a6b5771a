package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "mpb", cfg.Solver.Binary)
	assert.Equal(t, "mpb-mpi", cfg.Solver.MPIBinary)
	assert.Equal(t, "mpirun", cfg.Solver.MPIRun)
	assert.Equal(t, 2, cfg.Solver.NumProcessors)
	assert.Equal(t, "xdg-open", cfg.Post.Viewer)
	assert.Equal(t, ".", cfg.ContainingFolder)
	assert.Equal(t, "../projected_bands_repo", cfg.ProjectedBandsFolder)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProjectFile)
	yaml := `
solver:
  binary: /opt/mpb/bin/mpb
  num_processors: 8
post:
  command: pypostprocess
containing_folder: /data/runs
parallel: 4
new_mpb: false
num_projected_bands: 6
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/mpb/bin/mpb", cfg.Solver.Binary)
	assert.Equal(t, 8, cfg.Solver.NumProcessors)
	assert.Equal(t, "pypostprocess", cfg.Post.Command)
	assert.Equal(t, "/data/runs", cfg.ContainingFolder)
	assert.Equal(t, 4, cfg.Parallel)

	// unset fields keep the defaults
	assert.Equal(t, "mpb-mpi", cfg.Solver.MPIBinary)
	assert.Equal(t, "xdg-open", cfg.Post.Viewer)
	assert.Equal(t, "../projected_bands_repo", cfg.ProjectedBandsFolder)

	d := cfg.Defaults()
	assert.False(t, d.NewMPB)
	assert.Equal(t, 6, d.NumProjectedBands)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ProjectFile)
	require.NoError(t, os.WriteFile(path, []byte("solver: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadProjectMissingFile(t *testing.T) {
	cfg, err := LoadProject(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDefaultsWithoutOverrides(t *testing.T) {
	d := Default().Defaults()
	assert.True(t, d.NewMPB)
	assert.Equal(t, 4, d.NumProjectedBands)
	assert.Equal(t, 121, d.DOS.Points)
}
